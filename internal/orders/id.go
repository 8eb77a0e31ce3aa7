package orders

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Random is the entropy checkout needs. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewOrderID returns FB-<millis base36>-<9 random base36 chars>, upper-cased.
func NewOrderID(now time.Time, r Random) string {
	var sb strings.Builder
	sb.WriteString("FB-")
	sb.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	sb.WriteByte('-')
	for i := 0; i < 9; i++ {
		sb.WriteByte(base36[r.IntN(len(base36))])
	}
	return strings.ToUpper(sb.String())
}

const (
	baseDeliveryMin = 25
	baseDeliveryMax = 40
	deliveryJitter  = 0.3
)

// EstimateDelivery scales the 25-40 minute window by a random 0-30%.
func EstimateDelivery(r Random) DeliveryEstimate {
	f := 1 + r.Float64()*deliveryJitter
	lo := int(math.Round(baseDeliveryMin * f))
	hi := int(math.Round(baseDeliveryMax * f))
	return DeliveryEstimate{Min: lo, Max: hi, Display: fmt.Sprintf("%d-%d min", lo, hi)}
}
