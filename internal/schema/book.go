// Package schema defines the market and order types exchanged between the simulator and the quote engine.
// Decoding recorded wire formats is the feed package's job.
package schema

import "math"

const imbalanceEpsilon = 1e-6

// Book is the resting order book for one instrument at one tick.
// Prices are integer ticks; quantities are always stored as absolute values.
type Book struct {
	Buy  map[int64]int64
	Sell map[int64]int64
}

// NewBook builds a book from raw price levels, normalising negative sell quantities.
func NewBook(buy, sell map[int64]int64) Book {
	book := Book{
		Buy:  make(map[int64]int64, len(buy)),
		Sell: make(map[int64]int64, len(sell)),
	}
	for price, qty := range buy {
		book.Buy[price] = absInt64(qty)
	}
	for price, qty := range sell {
		book.Sell[price] = absInt64(qty)
	}
	return book
}

// TwoSided reports whether both sides of the book carry at least one level.
func (b Book) TwoSided() bool {
	return len(b.Buy) > 0 && len(b.Sell) > 0
}

// BestBid returns the highest buy price and its resting size.
func (b Book) BestBid() (int64, int64, bool) {
	if len(b.Buy) == 0 {
		return 0, 0, false
	}
	best := int64(math.MinInt64)
	for price := range b.Buy {
		if price > best {
			best = price
		}
	}
	return best, absInt64(b.Buy[best]), true
}

// BestAsk returns the lowest sell price and its resting size.
func (b Book) BestAsk() (int64, int64, bool) {
	if len(b.Sell) == 0 {
		return 0, 0, false
	}
	best := int64(math.MaxInt64)
	for price := range b.Sell {
		if price < best {
			best = price
		}
	}
	return best, absInt64(b.Sell[best]), true
}

// Top captures the touch of a two-sided book.
type Top struct {
	Bid     int64
	BidSize int64
	Ask     int64
	AskSize int64
}

// Top returns the best bid and ask levels, or false when either side is empty.
func (b Book) Top() (Top, bool) {
	bid, bidSize, okBid := b.BestBid()
	ask, askSize, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return Top{}, false
	}
	return Top{Bid: bid, BidSize: bidSize, Ask: ask, AskSize: askSize}, true
}

// Mid is the average of best bid and best ask.
func (t Top) Mid() float64 {
	return float64(t.Bid+t.Ask) / 2
}

// Spread is best ask minus best bid in ticks.
func (t Top) Spread() float64 {
	return float64(t.Ask - t.Bid)
}

// Imbalance is the normalised size difference between the best bid and best ask.
func (t Top) Imbalance() float64 {
	bid := float64(t.BidSize)
	ask := float64(t.AskSize)
	return (bid - ask) / (bid + ask + imbalanceEpsilon)
}

// DepthImbalance is the normalised difference between total resting buy and sell volume.
func (b Book) DepthImbalance() float64 {
	var bid, ask int64
	for _, qty := range b.Buy {
		bid += absInt64(qty)
	}
	for _, qty := range b.Sell {
		ask += absInt64(qty)
	}
	return (float64(bid) - float64(ask)) / (float64(bid) + float64(ask) + imbalanceEpsilon)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
