package sales

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// OrderFilter narrows order listings. DateTo is inclusive of the whole day.
type OrderFilter struct {
	SaleUsername string
	DateFrom     time.Time
	DateTo       time.Time
}

func ParseOrderFilter(q url.Values) (OrderFilter, error) {
	f := OrderFilter{SaleUsername: strings.TrimSpace(q.Get("sale_username"))}
	var err error
	if s := q.Get("date_from"); s != "" {
		if f.DateFrom, err = time.Parse(DateLayout, s); err != nil {
			return f, fmt.Errorf("date_from: %w", err)
		}
	}
	if s := q.Get("date_to"); s != "" {
		if f.DateTo, err = time.Parse(DateLayout, s); err != nil {
			return f, fmt.Errorf("date_to: %w", err)
		}
	}
	return f, nil
}

func (f OrderFilter) Values() url.Values {
	q := url.Values{}
	if f.SaleUsername != "" {
		q.Set("sale_username", f.SaleUsername)
	}
	if !f.DateFrom.IsZero() {
		q.Set("date_from", f.DateFrom.Format(DateLayout))
	}
	if !f.DateTo.IsZero() {
		q.Set("date_to", f.DateTo.Format(DateLayout))
	}
	return q
}

// where renders the SQL predicate and its args, numbering from $1.
func (f OrderFilter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.SaleUsername != "" {
		add("o.sale_username = $%d", f.SaleUsername)
	}
	if !f.DateFrom.IsZero() {
		add("o.created_at >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add("o.created_at < $%d", f.DateTo.AddDate(0, 0, 1))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// DriverQuery matches drivers by substring. Any, when set, matches any of the
// three fields; the others must all match.
type DriverQuery struct {
	Name         string
	LicensePlate string
	Phone        string
	Any          string
}

func (q DriverQuery) where() (string, []any) {
	var conds []string
	var args []any
	like := func(col, v string) {
		args = append(args, "%"+v+"%")
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
	}
	if q.LicensePlate != "" {
		like("license_plate", q.LicensePlate)
	}
	if q.Phone != "" {
		like("phone", q.Phone)
	}
	if q.Name != "" {
		like("name", q.Name)
	}
	if q.Any != "" {
		args = append(args, "%"+q.Any+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR license_plate ILIKE $%d OR phone ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
