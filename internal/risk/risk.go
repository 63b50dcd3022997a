// Package risk enforces per-instrument position limits on outgoing orders.
package risk

import (
	"math"

	"github.com/coachpo/quoter/internal/schema"
)

const (
	// DefaultSessionLength is the timestamp span over which directional risk appetite decays.
	DefaultSessionLength int64 = 1_000_000
	minDecayFactor             = 0.2
)

// BuyRoom is how many units can be bought before position exceeds limit.
func BuyRoom(position, limit int64) int64 {
	return limit - position
}

// SellRoom is how many units can be sold before position falls below -limit.
func SellRoom(position, limit int64) int64 {
	return limit + position
}

// ClampSize bounds size by room; the result may be zero or negative, meaning no order.
func ClampSize(size, room int64) int64 {
	if room < size {
		return room
	}
	return size
}

// DecayedLimit shrinks limit linearly over the session, never below 20% of it.
func DecayedLimit(limit, timestamp, sessionLength int64) int64 {
	if sessionLength <= 0 {
		sessionLength = DefaultSessionLength
	}
	factor := math.Max(minDecayFactor, 1-float64(timestamp)/float64(sessionLength))
	return int64(math.Floor(float64(limit) * factor))
}

// Guard admits orders for one instrument during one tick. It tracks accepted
// volume per side so that full execution of every admitted order keeps
// |position| within the limit.
type Guard struct {
	limit    int64
	position int64
	bought   int64
	sold     int64
}

// NewGuard creates a guard for an instrument at the given position and limit.
func NewGuard(position, limit int64) *Guard {
	return &Guard{limit: limit, position: position}
}

// Admit clamps the order to the remaining room on its side. It reports false
// when nothing is left to trade, in which case the order must be dropped.
func (g *Guard) Admit(order schema.Order) (schema.Order, bool) {
	size := order.Size()
	if size <= 0 {
		return schema.Order{}, false
	}
	switch order.Side() {
	case schema.TradeSideBuy:
		size = ClampSize(size, BuyRoom(g.position, g.limit)-g.bought)
		if size <= 0 {
			return schema.Order{}, false
		}
		g.bought += size
	case schema.TradeSideSell:
		size = ClampSize(size, SellRoom(g.position, g.limit)-g.sold)
		if size <= 0 {
			return schema.Order{}, false
		}
		g.sold += size
	}
	return schema.NewOrder(order.Symbol, order.Side(), order.Price, size), true
}
