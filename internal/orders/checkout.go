// Package orders turns a client's cart into a placed order and tracks the
// order's status afterwards. Placement is simulated: nothing is charged and
// the cart is cleared once the order id is issued.
package orders

import (
	"context"
	"time"

	"github.com/ariefcatur/go-freshbite.git/internal/cart"
	"github.com/ariefcatur/go-freshbite.git/internal/discount"
	"github.com/ariefcatur/go-freshbite.git/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var DefaultTipPercent = decimal.NewFromInt(15)

const DefaultDelay = 2 * time.Second

// Publisher hands an encoded event to the message bus.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Cart is the part of cart.Store checkout needs.
type Cart interface {
	Snapshot() cart.State
	Clear(ctx context.Context) error
}

type Options struct {
	Publisher Publisher   // nil disables events
	Statuses  StatusStore // nil uses an in-process store
	Discounts *discount.Resolver
	TaxRate   decimal.Decimal
	Delay     time.Duration
	Producer  string
	Now       func() time.Time
	Rand      Random
	Logger    *zap.Logger
}

type Service struct {
	pub       Publisher
	statuses  StatusStore
	discounts *discount.Resolver
	taxRate   decimal.Decimal
	delay     time.Duration
	producer  string
	now       func() time.Time
	rand      Random
	log       *zap.Logger
}

func NewService(o Options) *Service {
	s := &Service{
		pub:       o.Publisher,
		statuses:  o.Statuses,
		discounts: o.Discounts,
		taxRate:   o.TaxRate,
		delay:     o.Delay,
		producer:  o.Producer,
		now:       o.Now,
		rand:      o.Rand,
		log:       o.Logger,
	}
	if s.statuses == nil {
		s.statuses = NewMemoryStatuses()
	}
	if s.discounts == nil {
		s.discounts = discount.Default()
	}
	if s.taxRate.IsZero() {
		s.taxRate = pricing.DefaultTaxRate
	}
	if s.delay < 0 {
		s.delay = 0
	}
	if s.producer == "" {
		s.producer = "freshbite-api"
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.rand == nil {
		s.rand = globalRand{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Quote prices the cart the way PlaceOrder would, without placing anything.
// An unknown or unmet discount code is reported as a *ValidationError.
func (s *Service) Quote(items []cart.Item, tipPercent *decimal.Decimal, code string) (pricing.Breakdown, error) {
	tip := DefaultTipPercent
	if tipPercent != nil {
		tip = *tipPercent
	}
	b := pricing.Total(items, tip, s.taxRate)
	if code == "" {
		return b, nil
	}
	res := s.discounts.Apply(b.Subtotal, code)
	if !res.IsValid {
		return b, &ValidationError{Fields: map[string]string{"discountCode": res.Message}}
	}
	return b.WithDiscount(res.Discount), nil
}

// TaxRate is the rate Quote and PlaceOrder apply.
func (s *Service) TaxRate() decimal.Decimal { return s.taxRate }

type PlaceInput struct {
	ClientID string
	UserID   string
	Request  CheckoutRequest
}

func (s *Service) PlaceOrder(ctx context.Context, c Cart, in PlaceInput) (Order, error) {
	req := in.Request
	if err := req.Validate(); err != nil {
		return Order{}, err
	}
	st := c.Snapshot()
	if len(st.Items) == 0 {
		return Order{}, ErrEmptyCart
	}
	breakdown, err := s.Quote(st.Items, req.TipPercent, req.DiscountCode)
	if err != nil {
		return Order{}, err
	}

	if err := sleep(ctx, s.delay); err != nil {
		return Order{}, err
	}

	now := s.now()
	o := Order{
		ID:            NewOrderID(now, s.rand),
		ClientID:      in.ClientID,
		UserID:        in.UserID,
		Status:        StatusPlaced,
		Customer:      req.Customer,
		Items:         st.Items,
		Breakdown:     breakdown.Rounded(),
		DiscountCode:  req.DiscountCode,
		PaymentMethod: req.PaymentMethod,
		Delivery:      EstimateDelivery(s.rand),
		PlacedAt:      now.UTC(),
	}
	log := s.log.With(zap.String("order_id", o.ID), zap.String("client_id", in.ClientID))

	if err := c.Clear(ctx); err != nil {
		log.Warn("clear cart after order failed", zap.Error(err))
	}
	if err := s.statuses.Create(ctx, o.ID, in.ClientID, now); err != nil {
		log.Warn("record order status failed", zap.Error(err))
	}
	s.publish(ctx, log, o)

	log.Info("order placed",
		zap.String("total", o.Breakdown.Total.StringFixed(2)),
		zap.Int("items", pricing.ItemCount(o.Items)),
		zap.String("delivery", o.Delivery.Display))
	return o, nil
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, o Order) {
	if s.pub == nil {
		return
	}
	b, err := newEnvelope(EventOrderPlaced, s.producer, o.ID, o.PlacedAt, placedPayload(o))
	if err != nil {
		log.Error("encode order event failed", zap.Error(err))
		return
	}
	if err := s.pub.Publish(ctx, PartitionKey(o.ID), b); err != nil {
		log.Error("publish order event failed", zap.Error(err))
	}
}

// Status returns the order's status. Orders placed by another client are
// reported as not found.
func (s *Service) Status(ctx context.Context, clientID, orderID string) (StatusRecord, error) {
	rec, err := s.statuses.Get(ctx, orderID)
	if err != nil {
		return StatusRecord{}, err
	}
	if rec.ClientID != clientID {
		return StatusRecord{}, ErrOrderNotFound
	}
	return rec, nil
}

func (s *Service) Cancel(ctx context.Context, clientID, orderID string) error {
	if _, err := s.Status(ctx, clientID, orderID); err != nil {
		return err
	}
	return s.statuses.Transition(ctx, orderID, StatusCancelled, s.now())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
