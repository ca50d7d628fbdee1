package billing

// PaymentMethod is stored as the label the salesperson saw.
type PaymentMethod string

const (
	PaymentTransfer PaymentMethod = "Chuyển khoản"
	PaymentCash     PaymentMethod = "Tiền mặt"
)

type DeliveryMethod string

const (
	DeliveryPickup        DeliveryMethod = "pickup"
	DeliveryShipToAddress DeliveryMethod = "ship to address"
)

var nextPayment = map[PaymentMethod]PaymentMethod{
	PaymentTransfer: PaymentCash,
	PaymentCash:     PaymentTransfer,
}

// Toggle flips between transfer and cash. Unknown labels reset to transfer.
func (m PaymentMethod) Toggle() PaymentMethod {
	if n, ok := nextPayment[m]; ok {
		return n
	}
	return PaymentTransfer
}

func (m PaymentMethod) Valid() bool {
	_, ok := nextPayment[m]
	return ok
}

var nextDelivery = map[DeliveryMethod]DeliveryMethod{
	DeliveryPickup:        DeliveryShipToAddress,
	DeliveryShipToAddress: DeliveryPickup,
}

func (m DeliveryMethod) Toggle() DeliveryMethod {
	if n, ok := nextDelivery[m]; ok {
		return n
	}
	return DeliveryPickup
}

func (m DeliveryMethod) Valid() bool {
	_, ok := nextDelivery[m]
	return ok
}

// NeedsAddress reports whether an address is part of the order.
func (m DeliveryMethod) NeedsAddress() bool {
	return m == DeliveryShipToAddress
}

// Delivery is the delivery choice plus its address.
type Delivery struct {
	Method  DeliveryMethod `json:"delivery_method"`
	Address string         `json:"delivery_address"`
}

// Toggle switches the method; leaving "ship to address" drops the address.
func (d Delivery) Toggle() Delivery {
	d.Method = d.Method.Toggle()
	if !d.Method.NeedsAddress() {
		d.Address = ""
	}
	return d
}
