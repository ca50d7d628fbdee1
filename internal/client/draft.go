package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ariefcatur/htx-sale/internal/billing"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

var (
	ErrNoDraft        = errors.New("no cached draft")
	ErrDraftMalformed = errors.New("cached draft is malformed")
)

// Draft is an exported bill that was never sent to the server. It carries
// the prices it was totalled with so the preview does not need the network.
type Draft struct {
	Order     sales.NewOrder    `json:"order"`
	Prices    billing.PriceList `json:"prices"`
	CreatedAt time.Time         `json:"created_at"`
}

// AsOrder renders the draft the way a persisted order is displayed.
func (d Draft) AsOrder() sales.Order {
	return d.Order.DraftOrder(d.Prices, d.CreatedAt)
}

func SaveDraft(path string, d Draft) error {
	return writeJSONFile(path, d)
}

func LoadDraft(path string) (Draft, error) {
	var d Draft
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return d, ErrNoDraft
	}
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrDraftMalformed, err)
	}
	if strings.TrimSpace(d.Order.HTX) == "" || d.Order.DraftID == "" {
		return Draft{}, fmt.Errorf("%w: missing htx or draft id", ErrDraftMalformed)
	}
	return d, nil
}
