// Package pricing computes cart money: subtotal, tax, delivery and service
// fees, tip, and the aggregate breakdown shown at checkout.
//
// All functions are pure and assume non-negative inputs. Amounts are kept
// exact; rounding happens only for display.
package pricing

import (
	"github.com/shopspring/decimal"
)

var (
	DefaultTaxRate           = decimal.RequireFromString("0.08")
	DefaultDeliveryThreshold = decimal.NewFromInt(25)

	flatDeliveryFee = decimal.RequireFromString("3.99")
	serviceFeeRate  = decimal.RequireFromString("0.03")
	minServiceFee   = decimal.RequireFromString("1.99")
	hundred         = decimal.NewFromInt(100)
)

// Line is anything priced per unit with a quantity.
type Line interface {
	UnitPrice() decimal.Decimal
	Units() int
}

// Breakdown is the itemised price of an order. Discount is only ever set by
// WithDiscount; Total never includes it otherwise.
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	ServiceFee  decimal.Decimal `json:"serviceFee"`
	Tip         decimal.Decimal `json:"tip"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

func Subtotal[T Line](items []T) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Units()))))
	}
	return sum
}

// ItemCount sums quantities.
func ItemCount[T Line](items []T) int {
	n := 0
	for _, it := range items {
		n += it.Units()
	}
	return n
}

func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate)
}

// DeliveryFee is waived once subtotal reaches threshold (inclusive).
func DeliveryFee(subtotal, threshold decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return flatDeliveryFee
}

// ServiceFee is 3% of subtotal with a 1.99 floor.
func ServiceFee(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Max(subtotal.Mul(serviceFeeRate), minServiceFee)
}

func Tip(subtotal, tipPercent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(tipPercent.Div(hundred))
}

// Total aggregates every component except the discount, which callers
// subtract with WithDiscount.
func Total[T Line](items []T, tipPercent, taxRate decimal.Decimal) Breakdown {
	subtotal := Subtotal(items)
	b := Breakdown{
		Subtotal:    subtotal,
		Tax:         Tax(subtotal, taxRate),
		DeliveryFee: DeliveryFee(subtotal, DefaultDeliveryThreshold),
		ServiceFee:  ServiceFee(subtotal),
		Tip:         Tip(subtotal, tipPercent),
		Discount:    decimal.Zero,
	}
	b.Total = b.Subtotal.Add(b.Tax).Add(b.DeliveryFee).Add(b.ServiceFee).Add(b.Tip)
	return b
}

// WithDiscount returns a copy with discount recorded and subtracted from Total.
func (b Breakdown) WithDiscount(discount decimal.Decimal) Breakdown {
	b.Total = b.Total.Add(b.Discount).Sub(discount)
	b.Discount = discount
	return b
}

// Rounded returns the breakdown rounded to cents for display.
func (b Breakdown) Rounded() Breakdown {
	return Breakdown{
		Subtotal:    Round2(b.Subtotal),
		Tax:         Round2(b.Tax),
		DeliveryFee: Round2(b.DeliveryFee),
		ServiceFee:  Round2(b.ServiceFee),
		Tip:         Round2(b.Tip),
		Discount:    Round2(b.Discount),
		Total:       Round2(b.Total),
	}
}

func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
