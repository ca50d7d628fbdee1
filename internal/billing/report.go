package billing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BillSummary is the slice of an order revenue reporting needs.
type BillSummary struct {
	Selection     Selection
	TotalAmount   int
	PaymentMethod string
}

type Report struct {
	Total    int        `json:"total"`
	PerItem  Quantities `json:"per_item"`
	Transfer int        `json:"transfer"`
	Cash     int        `json:"cash"`
	Bills    int        `json:"bills"`
}

// Add merges two reports; Aggregate(a).Add(Aggregate(b)) == Aggregate(a ++ b).
func (r Report) Add(o Report) Report {
	return Report{
		Total:    r.Total + o.Total,
		PerItem:  r.PerItem.Add(o.PerItem),
		Transfer: r.Transfer + o.Transfer,
		Cash:     r.Cash + o.Cash,
		Bills:    r.Bills + o.Bills,
	}
}

type PaymentBucket int

const (
	BucketNone PaymentBucket = iota
	BucketTransfer
	BucketCash
)

var (
	transferNeedles = []string{"chuyen khoan", "bank transfer"}
	cashNeedles     = []string{"tien mat", "cash"}
)

// ClassifyPayment matches a free-text payment label case- and
// diacritic-insensitively.
func ClassifyPayment(label string) PaymentBucket {
	n := normalizeLabel(label)
	for _, s := range transferNeedles {
		if strings.Contains(n, s) {
			return BucketTransfer
		}
	}
	for _, s := range cashNeedles {
		if strings.Contains(n, s) {
			return BucketCash
		}
	}
	return BucketNone
}

func normalizeLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Aggregate sums a bill list in one pass. Per-item subtotals are always
// recomputed from current prices; a bill's total is its stored amount when
// non-zero. Bills whose payment label is not recognised count toward Total
// but toward neither bucket.
func Aggregate(bills []BillSummary, prices PriceList) Report {
	var r Report
	for _, b := range bills {
		var sub Quantities
		computed := 0
		for _, it := range Items {
			amt := LineAmount(b.Selection, prices, it)
			sub = sub.With(it, amt)
			computed += amt
		}
		total := computed
		if b.TotalAmount != 0 {
			total = b.TotalAmount
		}

		r.Total += total
		r.PerItem = r.PerItem.Add(sub)
		r.Bills++
		switch ClassifyPayment(b.PaymentMethod) {
		case BucketTransfer:
			r.Transfer += total
		case BucketCash:
			r.Cash += total
		}
	}
	return r
}
