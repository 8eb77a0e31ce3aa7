package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as US dollars, e.g. "$1,234.50" or "-$3.00".
func FormatCurrency(amount decimal.Decimal) string {
	r := amount.Round(2)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	f, _ := r.Float64()
	return sign + usd.Sprintf("$%.2f", f)
}

// Named lines can be listed in a receipt.
type Named interface {
	Line
	Label() string
}

// OrderSummary renders the plain-text receipt for items priced as b, so the
// receipt always agrees with the breakdown shown next to it.
func OrderSummary[T Named](items []T, b Breakdown) string {
	var sb strings.Builder
	sb.WriteString("Order Summary:\n\n")
	for _, it := range items {
		line := it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Units())))
		usd.Fprintf(&sb, "%dx %s - %s\n", it.Units(), it.Label(), FormatCurrency(line))
	}
	sb.WriteString("\n")
	sb.WriteString("Subtotal: " + FormatCurrency(b.Subtotal) + "\n")
	sb.WriteString("Tax: " + FormatCurrency(b.Tax) + "\n")
	sb.WriteString("Delivery Fee: " + FormatCurrency(b.DeliveryFee) + "\n")
	sb.WriteString("Service Fee: " + FormatCurrency(b.ServiceFee) + "\n")
	if b.Tip.IsPositive() {
		sb.WriteString("Tip: " + FormatCurrency(b.Tip) + "\n")
	}
	if b.Discount.IsPositive() {
		sb.WriteString("Discount: " + FormatCurrency(b.Discount.Neg()) + "\n")
	}
	sb.WriteString("\nTotal: " + FormatCurrency(b.Total))
	return sb.String()
}

// Categories lists the distinct categories in first-seen order.
func Categories[T interface{ CategoryName() string }](items []T) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		c := it.CategoryName()
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
