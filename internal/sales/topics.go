package sales

const (
	TopicBillCreated = "htx.bill.created"
	TopicStockLow    = "htx.stock.low"
)

// Partition key = order id for bills and htx name for stock alerts, so events
// about one entity stay in order.
func PartitionKey(id string) []byte { return []byte(id) }
