// Package strategy turns book, history and inventory into quotes for each strategy family.
package strategy

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/fills"
	"github.com/coachpo/quoter/internal/history"
	"github.com/coachpo/quoter/internal/model"
	"github.com/coachpo/quoter/internal/schema"
)

// Skip reasons reported when a strategy declines to quote.
const (
	SkipShortHistory     = "short_history"
	SkipMissingComponent = "missing_component"
)

// Input is everything a strategy may read for one instrument on one tick.
// History, Fills and Model are session state; directional strategies mutate them.
type Input struct {
	Symbol    string
	Timestamp int64
	Book      schema.Book
	Top       schema.Top
	Position  int64
	Limit     int64
	History   *history.Store
	Fills     *fills.Memory
	Model     *model.Direction
	Logger    *zap.Logger
}

// Mid is the current mid-price.
func (in Input) Mid() float64 { return in.Top.Mid() }

func (in Input) logger() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}

// Quote is a strategy's decision for one instrument.
type Quote struct {
	Orders []schema.Order
	// Skipped is set when the strategy could not form a view this tick.
	Skipped string
}

func skipped(reason string) Quote { return Quote{Skipped: reason} }

// Strategy produces orders for a single instrument.
type Strategy interface {
	Kind() config.Kind
	Quote(in Input) Quote
}

// Selector maps configured symbols to their strategy, in configuration order.
type Selector struct {
	symbols    []string
	strategies map[string]Strategy
}

// NewSelector builds one strategy per configured instrument.
func NewSelector(cfg config.AppConfig) (*Selector, error) {
	sel := &Selector{
		symbols:    make([]string, 0, len(cfg.Instruments)),
		strategies: make(map[string]Strategy, len(cfg.Instruments)),
	}
	for _, inst := range cfg.Instruments {
		strat, err := build(inst, cfg)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", inst.Symbol, err)
		}
		sel.symbols = append(sel.symbols, inst.Symbol)
		sel.strategies[inst.Symbol] = strat
	}
	return sel, nil
}

func build(inst config.InstrumentConfig, cfg config.AppConfig) (Strategy, error) {
	switch inst.Strategy {
	case config.KindMarketMaking:
		if inst.MarketMaking == nil {
			return nil, fmt.Errorf("missing marketMaking parameters")
		}
		return &MarketMaking{Params: *inst.MarketMaking}, nil
	case config.KindZScore:
		if inst.ZScore == nil {
			return nil, fmt.Errorf("missing zscore parameters")
		}
		return &ZScore{Params: *inst.ZScore}, nil
	case config.KindBaseline:
		params := config.DefaultBaselineParams()
		if inst.Baseline != nil {
			params = *inst.Baseline
		}
		return &Baseline{Params: params}, nil
	case config.KindDirectional:
		params := config.DefaultDirectionalParams()
		if inst.Directional != nil {
			params = *inst.Directional
		}
		return &Directional{Params: params, SessionLength: cfg.Session.Length}, nil
	case config.KindBasket:
		if inst.Basket == nil {
			return nil, fmt.Errorf("missing basket parameters")
		}
		return &Basket{Params: *inst.Basket}, nil
	default:
		return nil, fmt.Errorf("unsupported strategy %q", inst.Strategy)
	}
}

// Symbols returns the configured symbols in order.
func (s *Selector) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// For returns the strategy bound to symbol.
func (s *Selector) For(symbol string) (Strategy, bool) {
	strat, ok := s.strategies[symbol]
	return strat, ok
}

// postPair emits a passive buy and sell, each only when its clamped size is positive.
func postPair(in Input, buyPrice, sellPrice, buySize, sellSize int64) []schema.Order {
	var orders []schema.Order
	if buySize > 0 {
		orders = append(orders, schema.NewOrder(in.Symbol, schema.TradeSideBuy, buyPrice, buySize))
	}
	if sellSize > 0 {
		orders = append(orders, schema.NewOrder(in.Symbol, schema.TradeSideSell, sellPrice, sellSize))
	}
	return orders
}
