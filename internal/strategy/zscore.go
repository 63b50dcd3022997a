package strategy

import (
	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/history"
	"github.com/coachpo/quoter/internal/risk"
	"github.com/coachpo/quoter/internal/schema"
)

const zEpsilon = 1e-6

// ZScore takes liquidity when the mid strays zEntry standard deviations from its long mean.
type ZScore struct {
	Params config.ZScoreParams
}

// Kind implements Strategy.
func (s *ZScore) Kind() config.Kind { return config.KindZScore }

// Quote implements Strategy.
func (s *ZScore) Quote(in Input) Quote {
	p := s.Params
	prices := in.History.Prices(in.Symbol)
	if len(prices) < p.LongWindow {
		return skipped(SkipShortHistory)
	}

	long := history.Tail(prices, p.LongWindow)
	longMA := history.Mean(long)
	shortMA := history.Mean(history.Tail(prices, p.ShortWindow))
	z := (in.Mid() - longMA) / (history.StdDev(long) + zEpsilon)

	in.logger().Debug("zscore signal",
		zap.String("symbol", in.Symbol),
		zap.Float64("z", z),
		zap.Float64("short_ma", shortMA),
		zap.Float64("long_ma", longMA),
	)

	switch {
	case z <= -p.ZEntry && in.Position < in.Limit:
		size := risk.ClampSize(p.Volume, risk.BuyRoom(in.Position, in.Limit))
		if size > 0 {
			return Quote{Orders: []schema.Order{schema.NewOrder(in.Symbol, schema.TradeSideBuy, in.Top.Ask, size)}}
		}
	case z >= p.ZEntry && in.Position > -in.Limit:
		size := risk.ClampSize(p.Volume, risk.SellRoom(in.Position, in.Limit))
		if size > 0 {
			return Quote{Orders: []schema.Order{schema.NewOrder(in.Symbol, schema.TradeSideSell, in.Top.Bid, size)}}
		}
	}
	return Quote{}
}
