package strategy

import (
	"math"

	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/history"
	"github.com/coachpo/quoter/internal/risk"
)

const (
	triggerStandard  = "standard"
	triggerExecAware = "exec_aware"
	maxFillBoost     = 2
)

// MarketMaking posts two-sided quotes around a fair value built from a moving
// average, touch imbalance, momentum and inventory skew.
type MarketMaking struct {
	Params config.MarketMakingParams
}

// Kind implements Strategy.
func (s *MarketMaking) Kind() config.Kind { return config.KindMarketMaking }

// Quote implements Strategy.
func (s *MarketMaking) Quote(in Input) Quote {
	p := s.Params
	prices := in.History.Prices(in.Symbol)
	if len(prices) == 0 {
		return skipped(SkipShortHistory)
	}

	momentum := history.Momentum(prices, p.MomentumWindow)
	volatility := history.StdDev(history.Tail(prices, config.VolatilityWindow))
	fair := history.Mean(history.Tail(prices, p.Window)) +
		p.ImbalanceWeight*in.Top.Imbalance() +
		p.MomentumWeight*momentum -
		float64(in.Position)*p.SkewMultiplier

	fillBias := in.Fills.Bias(in.Symbol, in.Timestamp)
	boost := fillBias
	if boost < 0 {
		boost = -boost
	}
	if boost > maxFillBoost {
		boost = maxFillBoost
	}
	size := p.BaseVolume + boost
	spread := p.Spread.Evaluate(in.Top.Bid, in.Top.Ask)

	trigger := triggerStandard
	if math.Abs(momentum) > 2 || math.Abs(float64(fillBias)) > 1 {
		trigger = triggerExecAware
	}
	in.logger().Debug("market making fair value",
		zap.String("symbol", in.Symbol),
		zap.Float64("fair_value", fair),
		zap.Float64("momentum", momentum),
		zap.Float64("volatility", volatility),
		zap.Bool("high_volatility", volatility > p.VolatilityThreshold),
		zap.Int64("fill_bias", fillBias),
		zap.Float64("spread", spread),
		zap.String("trigger", trigger),
	)

	return Quote{Orders: postPair(in,
		int64(math.Floor(fair-spread/2)),
		int64(math.Floor(fair+spread/2)),
		risk.ClampSize(size, risk.BuyRoom(in.Position, in.Limit)),
		risk.ClampSize(size, risk.SellRoom(in.Position, in.Limit)),
	)}
}
