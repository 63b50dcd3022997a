package strategy

import (
	"math"

	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/history"
	"github.com/coachpo/quoter/internal/risk"
)

// Baseline quotes a fixed edge around a short moving average adjusted by
// momentum, depth imbalance and inventory.
type Baseline struct {
	Params config.BaselineParams
}

// Kind implements Strategy.
func (s *Baseline) Kind() config.Kind { return config.KindBaseline }

// Quote implements Strategy.
func (s *Baseline) Quote(in Input) Quote {
	p := s.Params
	prices := in.History.Prices(in.Symbol)
	if len(prices) < p.Window {
		return skipped(SkipShortHistory)
	}

	fair := history.Mean(history.Tail(prices, p.Window)) +
		p.MomentumWeight*history.Momentum(prices, p.MomentumWindow) +
		p.ImbalanceWeight*in.Book.DepthImbalance() -
		p.SkewMultiplier*float64(in.Position)

	in.logger().Debug("baseline fair value",
		zap.String("symbol", in.Symbol),
		zap.Float64("fair_value", fair),
	)

	return Quote{Orders: postPair(in,
		int64(math.Floor(fair-p.Edge)),
		int64(math.Floor(fair+p.Edge)),
		risk.ClampSize(p.Volume, risk.BuyRoom(in.Position, in.Limit)),
		risk.ClampSize(p.Volume, risk.SellRoom(in.Position, in.Limit)),
	)}
}
