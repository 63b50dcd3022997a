package strategy

import (
	"math"

	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/risk"
	"github.com/coachpo/quoter/internal/schema"
)

const minTrainingPrices = 3

// Directional crosses the spread when the online direction model is confident.
// It records one feature vector per tick and trains on the previous one once
// the realised move is known.
type Directional struct {
	Params        config.DirectionalParams
	SessionLength int64
}

// Kind implements Strategy.
func (s *Directional) Kind() config.Kind { return config.KindDirectional }

// Features builds the model input for the current tick.
func Features(in Input) schema.FeatureVector {
	mid := in.Mid()
	var momentum float64
	if prices := in.History.Prices(in.Symbol); len(prices) >= 2 {
		momentum = prices[len(prices)-1] - prices[len(prices)-2]
	}
	return schema.FeatureVector{
		mid / 1000,
		in.Top.Spread() / 100,
		in.Book.DepthImbalance(),
		momentum / 100,
	}
}

// Quote implements Strategy.
func (s *Directional) Quote(in Input) Quote {
	if in.Model == nil {
		return Quote{}
	}
	p := s.Params
	x := Features(in)

	prices := in.History.Prices(in.Symbol)
	features := in.History.Features(in.Symbol)
	trained := false
	if len(prices) >= minTrainingPrices && len(features) > 0 {
		label := 0.0
		if prices[len(prices)-1] > prices[len(prices)-2] {
			label = 1
		}
		in.Model.Update(features[len(features)-1], label)
		trained = true
	}
	in.History.RecordFeature(in.Symbol, x)

	proba := in.Model.PredictProba(x)
	confidence := math.Abs(proba-0.5) * 2
	safeLimit := risk.DecayedLimit(in.Limit, in.Timestamp, s.SessionLength)
	size := int64(math.Floor(float64(p.MaxVolume) * confidence))

	in.logger().Debug("directional signal",
		zap.String("symbol", in.Symbol),
		zap.Float64("proba", proba),
		zap.Float64("confidence", confidence),
		zap.Int64("safe_limit", safeLimit),
		zap.Bool("trained", trained),
	)

	switch {
	case proba > p.High:
		size = risk.ClampSize(size, risk.BuyRoom(in.Position, safeLimit))
		if size > 0 {
			return Quote{Orders: []schema.Order{schema.NewOrder(in.Symbol, schema.TradeSideBuy, in.Top.Ask, size)}}
		}
	case proba < p.Low:
		size = risk.ClampSize(size, risk.SellRoom(in.Position, safeLimit))
		if size > 0 {
			return Quote{Orders: []schema.Order{schema.NewOrder(in.Symbol, schema.TradeSideSell, in.Top.Bid, size)}}
		}
	}
	return Quote{}
}
