package strategy

import (
	"math"

	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/risk"
)

// Basket quotes around the weighted sum of its components' latest mids.
// Component legs are never hedged here.
type Basket struct {
	Params config.BasketParams
}

// Kind implements Strategy.
func (s *Basket) Kind() config.Kind { return config.KindBasket }

// Synthetic returns the basket's theoretical price, or false when a component has no price yet.
func (s *Basket) Synthetic(in Input) (float64, bool) {
	var total float64
	for _, comp := range s.Params.Components {
		mid, ok := in.History.Latest(comp.Symbol)
		if !ok {
			return 0, false
		}
		total += comp.Weight * mid
	}
	return total, true
}

// Quote implements Strategy.
func (s *Basket) Quote(in Input) Quote {
	p := s.Params
	synthetic, ok := s.Synthetic(in)
	if !ok {
		return skipped(SkipMissingComponent)
	}

	in.logger().Debug("basket synthetic",
		zap.String("symbol", in.Symbol),
		zap.Float64("synthetic", synthetic),
		zap.Float64("premium", in.Mid()-synthetic),
	)

	return Quote{Orders: postPair(in,
		int64(math.Floor(synthetic-p.Edge)),
		int64(math.Floor(synthetic+p.Edge)),
		risk.ClampSize(p.Volume, risk.BuyRoom(in.Position, in.Limit)),
		risk.ClampSize(p.Volume, risk.SellRoom(in.Position, in.Limit)),
	)}
}
