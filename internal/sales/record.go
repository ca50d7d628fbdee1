package sales

import "fmt"

// ResourceKind selects which admin tab a Record belongs to.
type ResourceKind int

const (
	KindInventory ResourceKind = iota + 1
	KindDriver
	KindSaleUser
	KindOrder
)

var kindNames = map[ResourceKind]string{
	KindInventory: "inventory",
	KindDriver:    "drivers",
	KindSaleUser:  "sales",
	KindOrder:     "bills",
}

func (k ResourceKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

func ParseResourceKind(s string) (ResourceKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown resource kind %q", s)
}

// Record is one row of an admin table. Each kind keeps its own field set.
type Record interface {
	Kind() ResourceKind
	Key() string
}

func (InventoryRow) Kind() ResourceKind { return KindInventory }
func (r InventoryRow) Key() string      { return r.Name }

func (Driver) Kind() ResourceKind { return KindDriver }
func (d Driver) Key() string      { return d.ID }

func (SaleUser) Kind() ResourceKind { return KindSaleUser }
func (s SaleUser) Key() string      { return s.ID }

func (Order) Kind() ResourceKind { return KindOrder }
func (o Order) Key() string      { return o.ID }

// Records widens a typed slice for tab rendering.
func Records[T Record](rows []T) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r)
	}
	return out
}
