package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Image               string          `json:"image"`
	Quantity            int             `json:"quantity"`
	Category            string          `json:"category"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

func (i Item) UnitPrice() decimal.Decimal { return i.Price }
func (i Item) Units() int                 { return i.Quantity }
func (i Item) Label() string              { return i.Name }
func (i Item) CategoryName() string       { return i.Category }

// Valid reports whether a persisted item is well formed enough to keep.
func (i Item) Valid() bool {
	return strings.TrimSpace(i.ID) != "" &&
		strings.TrimSpace(i.Name) != "" &&
		i.Category != "" &&
		i.Price.IsPositive() &&
		i.Quantity > 0
}

// State is the cart as rendered. Total and ItemCount are always derived from
// Items.
type State struct {
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	IsOpen    bool            `json:"isOpen"`
}
