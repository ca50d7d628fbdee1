package billing

// Clamp forces every selected quantity into [0, stock]. Call it after every
// stock refresh so an old selection never exceeds what was just observed.
func Clamp(stock Stock, sel Selection) Selection {
	var out Selection
	for _, it := range Items {
		out = out.With(it, max(0, min(stock.Get(it), sel.Get(it))))
	}
	return out
}

// Adjust moves one item by exactly one step in the direction of delta.
// Stepping past 0 or past the available stock leaves sel unchanged.
func Adjust(stock Stock, sel Selection, it Item, delta int) Selection {
	cur := sel.Get(it)
	switch {
	case delta > 0 && cur < stock.Get(it):
		return sel.With(it, cur+1)
	case delta < 0 && cur > 0:
		return sel.With(it, cur-1)
	}
	return sel
}

// Remaining is the stock left after the selection, for display.
func Remaining(stock Stock, sel Selection, it Item) int {
	return max(0, stock.Get(it)-sel.Get(it))
}

// Shortage describes one item a reservation could not cover.
type Shortage struct {
	Item      Item `json:"item"`
	Required  int  `json:"required"`
	Available int  `json:"available"`
}

// Shortages lists every item where sel asks for more than stock holds.
func Shortages(stock Stock, sel Selection) []Shortage {
	var out []Shortage
	for _, it := range Items {
		if sel.Get(it) > stock.Get(it) {
			out = append(out, Shortage{Item: it, Required: sel.Get(it), Available: stock.Get(it)})
		}
	}
	return out
}

// Deduct removes sel from stock. Callers check Shortages first.
func Deduct(stock Stock, sel Selection) Stock {
	var out Stock
	for _, it := range Items {
		out = out.With(it, stock.Get(it)-max(0, sel.Get(it)))
	}
	return out
}
