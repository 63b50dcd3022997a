// Package feed decodes recorded simulator ticks from JSON-lines streams.
package feed

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/coachpo/quoter/errs"
	"github.com/coachpo/quoter/internal/schema"
)

const maxLineBytes = 4 << 20

type rawDepth struct {
	BuyOrders  map[string]int64 `json:"buy_orders"`
	SellOrders map[string]int64 `json:"sell_orders"`
}

type rawTrade struct {
	Symbol    string          `json:"symbol"`
	Timestamp int64           `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Buyer     string          `json:"buyer"`
	Seller    string          `json:"seller"`
	Side      string          `json:"side"`
}

type rawTick struct {
	Timestamp   int64                 `json:"timestamp"`
	OrderDepths map[string]rawDepth   `json:"order_depths"`
	Position    map[string]int64      `json:"position"`
	OwnTrades   map[string][]rawTrade `json:"own_trades"`
}

// Feeder reads one tick per line.
type Feeder struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewFeeder reads ticks from r.
func NewFeeder(r io.Reader) *Feeder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Feeder{scanner: scanner}
}

// Open reads ticks from a file. Close releases it.
func Open(path string) (*Feeder, error) {
	// #nosec G304 -- file path is operator provided via CLI arguments.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tick feed: %w", err)
	}
	f := NewFeeder(file)
	f.closer = file
	return f, nil
}

// Close releases the underlying file, if any.
func (f *Feeder) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Next returns the next tick, or io.EOF when the stream is exhausted. Blank lines are ignored.
func (f *Feeder) Next() (schema.Tick, error) {
	for f.scanner.Scan() {
		f.line++
		line := bytes.TrimSpace(f.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		tick, err := decodeTick(line)
		if err != nil {
			return schema.Tick{}, errs.New("feed", errs.CodeInvalid,
				errs.WithMessage("malformed tick"),
				errs.WithField("line", strconv.Itoa(f.line)),
				errs.WithCause(err))
		}
		return tick, nil
	}
	if err := f.scanner.Err(); err != nil {
		return schema.Tick{}, fmt.Errorf("read tick feed: %w", err)
	}
	return schema.Tick{}, io.EOF
}

func decodeTick(line []byte) (schema.Tick, error) {
	var raw rawTick
	if err := json.Unmarshal(line, &raw); err != nil {
		return schema.Tick{}, fmt.Errorf("unmarshal tick: %w", err)
	}

	tick := schema.Tick{
		Timestamp: raw.Timestamp,
		Books:     make(map[string]schema.Book, len(raw.OrderDepths)),
		Positions: raw.Position,
		OwnTrades: make(map[string][]schema.OwnTrade, len(raw.OwnTrades)),
	}
	if tick.Positions == nil {
		tick.Positions = make(map[string]int64)
	}

	for symbol, depth := range raw.OrderDepths {
		buy, err := parseLevels(depth.BuyOrders)
		if err != nil {
			return schema.Tick{}, fmt.Errorf("%s buy_orders: %w", symbol, err)
		}
		sell, err := parseLevels(depth.SellOrders)
		if err != nil {
			return schema.Tick{}, fmt.Errorf("%s sell_orders: %w", symbol, err)
		}
		tick.Books[symbol] = schema.NewBook(buy, sell)
	}

	for symbol, trades := range raw.OwnTrades {
		out := make([]schema.OwnTrade, 0, len(trades))
		for _, tr := range trades {
			price, err := integral(tr.Price)
			if err != nil {
				return schema.Tick{}, fmt.Errorf("%s own trade: %w", symbol, err)
			}
			side := schema.TradeSide(tr.Side)
			switch side {
			case "", schema.TradeSideBuy, schema.TradeSideSell:
			default:
				return schema.Tick{}, fmt.Errorf("%s own trade: unknown side %q", symbol, tr.Side)
			}
			if tr.Symbol == "" {
				tr.Symbol = symbol
			}
			out = append(out, schema.OwnTrade{
				Symbol:    tr.Symbol,
				Timestamp: tr.Timestamp,
				Price:     price,
				Quantity:  tr.Quantity,
				Buyer:     tr.Buyer,
				Seller:    tr.Seller,
				Side:      side,
			})
		}
		tick.OwnTrades[symbol] = out
	}
	return tick, nil
}

func parseLevels(levels map[string]int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(levels))
	for key, qty := range levels {
		price, err := decimal.NewFromString(key)
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", key, err)
		}
		tick, err := integral(price)
		if err != nil {
			return nil, err
		}
		out[tick] += qty
	}
	return out, nil
}

var errFractionalPrice = errors.New("price is not a whole tick")

func integral(d decimal.Decimal) (int64, error) {
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %s", errFractionalPrice, d.String())
	}
	return d.IntPart(), nil
}
