package orders

import (
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/cart"
	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentPayPal   PaymentMethod = "paypal"
	PaymentApplePay PaymentMethod = "apple-pay"
	PaymentCash     PaymentMethod = "cash"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCard, PaymentPayPal, PaymentApplePay, PaymentCash:
		return true
	}
	return false
}

// Customer is the delivery contact from the checkout form.
type Customer struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Phone                string `json:"phone"`
	Email                string `json:"email"`
	Address              string `json:"address"`
	Apartment            string `json:"apartment,omitempty"`
	City                 string `json:"city"`
	ZipCode              string `json:"zipCode"`
	DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
}

// Card details are accepted and dropped; no payment is processed.
type Card struct {
	Number string `json:"cardNumber,omitempty"`
	Expiry string `json:"cardExpiry,omitempty"`
	CVC    string `json:"cardCvc,omitempty"`
	Name   string `json:"cardName,omitempty"`
}

type CheckoutRequest struct {
	Customer
	Card
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	// nil means DefaultTipPercent
	TipPercent   *decimal.Decimal `json:"tipPercent,omitempty"`
	DiscountCode string           `json:"discountCode,omitempty"`
}

type DeliveryEstimate struct {
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Display string `json:"display"`
}

type Order struct {
	ID            string            `json:"id"`
	ClientID      string            `json:"-"`
	UserID        string            `json:"userId,omitempty"`
	Status        Status            `json:"status"`
	Customer      Customer          `json:"customer"`
	Items         []cart.Item       `json:"items"`
	Breakdown     pricing.Breakdown `json:"breakdown"`
	DiscountCode  string            `json:"discountCode,omitempty"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Delivery      DeliveryEstimate  `json:"delivery"`
	PlacedAt      time.Time         `json:"placedAt"`
}
