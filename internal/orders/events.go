package orders

import (
	"encoding/json"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
	"github.com/google/uuid"
)

const EventOrderPlaced = "OrderPlaced"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type PlacedLine struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID       string            `json:"order_id"`
	ClientID      string            `json:"client_id"`
	UserID        string            `json:"user_id,omitempty"`
	Email         string            `json:"email"`
	CustomerName  string            `json:"customer_name"`
	Items         []PlacedLine      `json:"items"`
	Breakdown     pricing.Breakdown `json:"breakdown"`
	DiscountCode  string            `json:"discount_code,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Delivery      DeliveryEstimate  `json:"delivery"`
}

func newEnvelope(eventType, producer, orderID string, at time.Time, payload any) ([]byte, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    at.UTC(),
		Producer:      producer,
		CorrelationID: orderID,
		Payload:       p,
	})
}

func placedPayload(o Order) OrderPlacedPayload {
	lines := make([]PlacedLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, PlacedLine{ItemID: it.ID, Name: it.Name, Quantity: it.Quantity, Price: it.Price.StringFixed(2)})
	}
	return OrderPlacedPayload{
		OrderID:       o.ID,
		ClientID:      o.ClientID,
		UserID:        o.UserID,
		Email:         o.Customer.Email,
		CustomerName:  o.Customer.FirstName + " " + o.Customer.LastName,
		Items:         lines,
		Breakdown:     o.Breakdown,
		DiscountCode:  o.DiscountCode,
		PaymentMethod: o.PaymentMethod,
		Delivery:      o.Delivery,
	}
}
