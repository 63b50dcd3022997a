// Package engine runs one decision per simulator tick across all configured instruments.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/fills"
	"github.com/coachpo/quoter/internal/logging"
	"github.com/coachpo/quoter/internal/model"
	"github.com/coachpo/quoter/internal/risk"
	"github.com/coachpo/quoter/internal/schema"
	"github.com/coachpo/quoter/internal/state"
	"github.com/coachpo/quoter/internal/strategy"
)

// SkipEmptyBook marks an instrument whose book lacks a bid or an ask.
const SkipEmptyBook = "empty_book"

// Engine holds immutable configuration and may serve several sessions
// concurrently as long as each brings its own State.
type Engine struct {
	cfg           config.AppConfig
	selector      *strategy.Selector
	limits        map[string]int64
	logger        *zap.Logger
	meterProvider metric.MeterProvider
	metrics       *engineMetrics
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Without it the process-wide logger is used.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		if mp != nil {
			e.meterProvider = mp
		}
	}
}

// New builds an engine for a validated configuration.
func New(cfg config.AppConfig, opts ...Option) (*Engine, error) {
	selector, err := strategy.NewSelector(cfg)
	if err != nil {
		return nil, fmt.Errorf("build selector: %w", err)
	}
	e := &Engine{
		cfg:      cfg,
		selector: selector,
		limits:   make(map[string]int64, len(cfg.Instruments)),
		logger:   logging.L(),
	}
	for _, inst := range cfg.Instruments {
		e.limits[inst.Symbol] = inst.PositionLimit
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.meterProvider == nil {
		e.meterProvider = otel.GetMeterProvider()
	}
	e.metrics = newEngineMetrics(e.meterProvider)
	return e, nil
}

// Decision is the result of one Step.
type Decision struct {
	// Orders holds admitted orders per symbol; symbols without orders are absent.
	Orders map[string][]schema.Order
	// Skipped maps symbols that formed no view this tick to the reason.
	Skipped map[string]string
}

// Output is the result of one Run: orders plus the blob for the next call.
type Output struct {
	Orders map[string][]schema.Order
	State  []byte
}

// Run decodes the previous blob, steps the engine and encodes the new blob.
// A malformed blob is logged and replaced by an empty state.
func (e *Engine) Run(ctx context.Context, tick schema.Tick, blob []byte) (Output, error) {
	st, err := state.Decode(blob, e.cfg)
	if err != nil {
		e.logger.Warn("discarding unreadable state blob", zap.Error(err), zap.Int64("timestamp", tick.Timestamp))
	}
	decision := e.Step(ctx, tick, st)
	encoded, err := state.Encode(st)
	if err != nil {
		return Output{}, err
	}
	return Output{Orders: decision.Orders, State: encoded}, nil
}

// Step advances st by one tick and returns the orders to send.
func (e *Engine) Step(ctx context.Context, tick schema.Tick, st *state.State) Decision {
	started := time.Now()
	defer e.metrics.recordTick(ctx, started)

	decision := Decision{
		Orders:  make(map[string][]schema.Order),
		Skipped: make(map[string]string),
	}

	symbols := e.selector.Symbols()
	tops := make(map[string]schema.Top, len(symbols))
	for _, symbol := range symbols {
		top, ok := tick.Books[symbol].Top()
		if !ok {
			continue
		}
		tops[symbol] = top
		st.History.Record(symbol, top.Mid())
	}

	for _, symbol := range symbols {
		top, ok := tops[symbol]
		if !ok {
			e.skip(ctx, decision, symbol, SkipEmptyBook)
			continue
		}
		strat, _ := e.selector.For(symbol)
		in := strategy.Input{
			Symbol:    symbol,
			Timestamp: tick.Timestamp,
			Book:      tick.Books[symbol],
			Top:       top,
			Position:  tick.Position(symbol),
			Limit:     e.limits[symbol],
			History:   st.History,
			Fills:     st.Fills,
			Logger:    e.logger,
		}
		if strat.Kind() == config.KindDirectional {
			in.Model = model.FromParams(st.Models[symbol], e.cfg.Model.LearningRate)
		}

		quote := strat.Quote(in)
		if in.Model != nil {
			st.Models[symbol] = in.Model.Params()
		}
		if quote.Skipped != "" {
			e.skip(ctx, decision, symbol, quote.Skipped)
			continue
		}

		guard := risk.NewGuard(in.Position, in.Limit)
		for _, order := range quote.Orders {
			admitted, ok := guard.Admit(order)
			if !ok {
				continue
			}
			decision.Orders[symbol] = append(decision.Orders[symbol], admitted)
			e.metrics.recordOrder(ctx, admitted)
		}
	}

	e.recordFills(tick, st.Fills)
	return decision
}

func (e *Engine) skip(ctx context.Context, decision Decision, symbol, reason string) {
	decision.Skipped[symbol] = reason
	e.metrics.recordSkip(ctx, symbol, reason)
	e.logger.Debug("instrument skipped", zap.String("symbol", symbol), zap.String("reason", reason))
}

// recordFills stores this call's own trades; strategies see them from the next tick on.
func (e *Engine) recordFills(tick schema.Tick, memory *fills.Memory) {
	for symbol, trades := range tick.OwnTrades {
		records := make([]fills.Record, 0, len(trades))
		for _, trade := range trades {
			qty := trade.Quantity
			if qty < 0 {
				qty = -qty
			}
			records = append(records, fills.Record{
				Timestamp: trade.Timestamp,
				Side:      trade.SideFor(e.cfg.AgentID),
				Price:     trade.Price,
				Quantity:  qty,
			})
		}
		memory.Add(symbol, records...)
	}
}
