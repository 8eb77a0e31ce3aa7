package orders

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

var ErrEmptyCart = errors.New("cart is empty")

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError maps checkout fields to what is wrong with them.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid checkout: " + strings.Join(parts, "; ")
}

func (e *ValidationError) set(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// Validate checks the required delivery fields and the payment method.
func (r CheckoutRequest) Validate() error {
	v := &ValidationError{}
	required := []struct{ field, value, msg string }{
		{"firstName", r.FirstName, "First name is required"},
		{"lastName", r.LastName, "Last name is required"},
		{"phone", r.Phone, "Phone number is required"},
		{"address", r.Address, "Address is required"},
		{"city", r.City, "City is required"},
		{"zipCode", r.ZipCode, "ZIP code is required"},
	}
	for _, f := range required {
		if f.value == "" {
			v.set(f.field, f.msg)
		}
	}
	if !emailRe.MatchString(r.Email) {
		v.set("email", "Valid email is required")
	}
	if !r.PaymentMethod.Valid() {
		v.set("paymentMethod", "Choose card, paypal, apple-pay or cash")
	}
	if r.TipPercent != nil && r.TipPercent.IsNegative() {
		v.set("tipPercent", "Tip cannot be negative")
	}
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}
