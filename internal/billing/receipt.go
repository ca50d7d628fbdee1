package billing

// ReceiptLine is one printed row of a bill.
type ReceiptLine struct {
	Item      Item `json:"item"`
	UnitPrice int  `json:"unit_price"`
	Qty       int  `json:"qty"`
	Amount    int  `json:"amount"`
}

type Receipt struct {
	Lines []ReceiptLine `json:"lines"`
	Total int           `json:"total"`
}

// BuildReceipt lists items with a positive quantity. A non-zero storedTotal
// wins over the recomputed sum, matching what the order was saved with.
func BuildReceipt(sel Selection, prices PriceList, storedTotal int) Receipt {
	var r Receipt
	sum := 0
	for _, it := range Items {
		qty := sel.Get(it)
		if qty <= 0 {
			continue
		}
		line := ReceiptLine{Item: it, UnitPrice: prices.Price(it), Qty: qty, Amount: qty * prices.Price(it)}
		sum += line.Amount
		r.Lines = append(r.Lines, line)
	}
	r.Total = sum
	if storedTotal != 0 {
		r.Total = storedTotal
	}
	return r
}
