package config

import "strings"

// Kind names a strategy family. Each configured instrument belongs to exactly one.
type Kind string

const (
	// KindMarketMaking posts two-sided quotes around an adaptive fair value.
	KindMarketMaking Kind = "market_making"
	// KindZScore takes liquidity when price deviates from its long mean by a z-score threshold.
	KindZScore Kind = "zscore"
	// KindBaseline posts fixed-edge quotes around a short moving average.
	KindBaseline Kind = "baseline"
	// KindDirectional crosses the spread on an online-learned direction signal.
	KindDirectional Kind = "directional"
	// KindBasket quotes a basket around the synthetic price of its components.
	KindBasket Kind = "basket"
)

// Kinds lists every supported strategy family.
func Kinds() []Kind {
	return []Kind{KindMarketMaking, KindZScore, KindBaseline, KindDirectional, KindBasket}
}

// Valid reports whether the kind is recognised.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

func normalizeKind(k Kind) Kind {
	return Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(k))), "-", "_"))
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
