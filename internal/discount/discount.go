// Package discount resolves promo codes against a fixed table.
package discount

import (
	"strings"

	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
	"github.com/shopspring/decimal"
)

const MsgInvalidCode = "Invalid discount code"

type Code struct {
	Percentage decimal.Decimal
	MinOrder   decimal.Decimal
	Message    string
}

type Result struct {
	Discount decimal.Decimal `json:"discount"`
	IsValid  bool            `json:"isValid"`
	Message  string          `json:"message"`
}

// Resolver looks codes up case-insensitively. It is immutable; redemptions
// are not tracked, so a code applies any number of times.
type Resolver struct {
	codes map[string]Code
}

var defaultCodes = map[string]Code{
	"WELCOME10": {Percentage: decimal.NewFromInt(10), MinOrder: decimal.NewFromInt(20), Message: "10% off your first order!"},
	"SAVE20":    {Percentage: decimal.NewFromInt(20), MinOrder: decimal.NewFromInt(50), Message: "20% off orders over $50!"},
	"FREESHIP":  {Percentage: decimal.Zero, MinOrder: decimal.Zero, Message: "Free delivery!"},
	"STUDENT15": {Percentage: decimal.NewFromInt(15), MinOrder: decimal.NewFromInt(25), Message: "15% student discount!"},
}

func Default() *Resolver {
	return New(defaultCodes)
}

func New(codes map[string]Code) *Resolver {
	cp := make(map[string]Code, len(codes))
	for k, v := range codes {
		cp[strings.ToUpper(k)] = v
	}
	return &Resolver{codes: cp}
}

func (r *Resolver) Lookup(code string) (Code, bool) {
	c, ok := r.codes[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

func (r *Resolver) Apply(subtotal decimal.Decimal, code string) Result {
	c, ok := r.Lookup(code)
	if !ok {
		return Result{Discount: decimal.Zero, Message: MsgInvalidCode}
	}
	if subtotal.LessThan(c.MinOrder) {
		return Result{
			Discount: decimal.Zero,
			Message:  "Minimum order of " + pricing.FormatCurrency(c.MinOrder) + " required",
		}
	}
	return Result{
		Discount: subtotal.Mul(c.Percentage).Div(decimal.NewFromInt(100)),
		IsValid:  true,
		Message:  c.Message,
	}
}
