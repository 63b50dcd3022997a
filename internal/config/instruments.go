package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// InstrumentConfig binds one symbol to its position limit and strategy family.
// Only the parameter block matching Strategy is read.
type InstrumentConfig struct {
	Symbol        string              `yaml:"symbol"`
	PositionLimit int64               `yaml:"positionLimit"`
	Strategy      Kind                `yaml:"strategy"`
	MarketMaking  *MarketMakingParams `yaml:"marketMaking,omitempty"`
	ZScore        *ZScoreParams       `yaml:"zscore,omitempty"`
	Baseline      *BaselineParams     `yaml:"baseline,omitempty"`
	Directional   *DirectionalParams  `yaml:"directional,omitempty"`
	Basket        *BasketParams       `yaml:"basket,omitempty"`
}

// MarketMakingParams configures the adaptive market-making family.
type MarketMakingParams struct {
	Window         int     `yaml:"window"`
	MomentumWindow int     `yaml:"momentumWindow"`
	SkewMultiplier float64 `yaml:"skewMultiplier"`
	// VolatilityThreshold splits a high- and low-volatility regime. Both regimes
	// currently apply the same adjustment.
	VolatilityThreshold float64    `yaml:"volatilityThreshold"`
	ImbalanceWeight     float64    `yaml:"imbalanceWeight"`
	MomentumWeight      float64    `yaml:"momentumWeight"`
	Spread              SpreadRule `yaml:"spread"`
	BaseVolume          int64      `yaml:"baseVolume"`
}

// ZScoreParams configures the z-score mean-reversion family.
type ZScoreParams struct {
	ShortWindow int     `yaml:"shortWindow"`
	LongWindow  int     `yaml:"longWindow"`
	ZEntry      float64 `yaml:"zEntry"`
	Volume      int64   `yaml:"volume"`
}

// BaselineParams configures the statistical baseline family.
type BaselineParams struct {
	Window          int     `yaml:"window"`
	MomentumWindow  int     `yaml:"momentumWindow"`
	MomentumWeight  float64 `yaml:"momentumWeight"`
	ImbalanceWeight float64 `yaml:"imbalanceWeight"`
	SkewMultiplier  float64 `yaml:"skewMultiplier"`
	Edge            float64 `yaml:"edge"`
	Volume          int64   `yaml:"volume"`
}

// DefaultBaselineParams returns the baseline parameters used when fields are omitted.
func DefaultBaselineParams() BaselineParams {
	return BaselineParams{
		Window:          20,
		MomentumWindow:  6,
		MomentumWeight:  0.1,
		ImbalanceWeight: 0.3,
		SkewMultiplier:  0.03,
		Edge:            1,
		Volume:          10,
	}
}

// UnmarshalYAML decodes over the defaults so omitted fields keep their default value.
func (p *BaselineParams) UnmarshalYAML(node *yaml.Node) error {
	type plain BaselineParams
	*p = DefaultBaselineParams()
	return node.Decode((*plain)(p))
}

// DirectionalParams configures the online-learned directional family.
type DirectionalParams struct {
	High      float64 `yaml:"high"`
	Low       float64 `yaml:"low"`
	MaxVolume int64   `yaml:"maxVolume"`
}

// DefaultDirectionalParams returns the directional parameters used when fields are omitted.
func DefaultDirectionalParams() DirectionalParams {
	return DirectionalParams{High: 0.8, Low: 0.2, MaxVolume: 10}
}

// UnmarshalYAML decodes over the defaults so omitted fields keep their default value.
func (p *DirectionalParams) UnmarshalYAML(node *yaml.Node) error {
	type plain DirectionalParams
	*p = DefaultDirectionalParams()
	return node.Decode((*plain)(p))
}

// BasketComponent is one weighted leg of a basket's synthetic price.
type BasketComponent struct {
	Symbol string  `yaml:"symbol"`
	Weight float64 `yaml:"weight"`
}

// BasketParams configures the synthetic-basket family.
type BasketParams struct {
	Components []BasketComponent `yaml:"components"`
	Edge       float64           `yaml:"edge"`
	Volume     int64             `yaml:"volume"`
}

// UnmarshalYAML decodes over the defaults so omitted fields keep their default value.
func (p *BasketParams) UnmarshalYAML(node *yaml.Node) error {
	type plain BasketParams
	*p = BasketParams{Edge: 1, Volume: 10}
	return node.Decode((*plain)(p))
}

func (c *InstrumentConfig) normalise() {
	c.Symbol = normalizeSymbol(c.Symbol)
	c.Strategy = normalizeKind(c.Strategy)
	switch c.Strategy {
	case KindBaseline:
		if c.Baseline == nil {
			defaults := DefaultBaselineParams()
			c.Baseline = &defaults
		}
	case KindDirectional:
		if c.Directional == nil {
			defaults := DefaultDirectionalParams()
			c.Directional = &defaults
		}
	case KindBasket:
		if c.Basket != nil {
			for i := range c.Basket.Components {
				c.Basket.Components[i].Symbol = normalizeSymbol(c.Basket.Components[i].Symbol)
			}
		}
	}
}

// maxWindow returns the longest price lookback the instrument's strategy needs.
func (c InstrumentConfig) maxWindow() int {
	switch c.Strategy {
	case KindMarketMaking:
		if c.MarketMaking != nil {
			return maxInt(c.MarketMaking.Window, c.MarketMaking.MomentumWindow, VolatilityWindow)
		}
	case KindZScore:
		if c.ZScore != nil {
			return maxInt(c.ZScore.ShortWindow, c.ZScore.LongWindow)
		}
	case KindBaseline:
		if c.Baseline != nil {
			return maxInt(c.Baseline.Window, c.Baseline.MomentumWindow)
		}
	}
	return 0
}

func (c InstrumentConfig) validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol required")
	}
	if c.PositionLimit < 0 {
		return fmt.Errorf("positionLimit must be >= 0")
	}
	switch c.Strategy {
	case KindMarketMaking:
		p := c.MarketMaking
		if p == nil {
			return fmt.Errorf("marketMaking parameters required")
		}
		if p.Window <= 0 {
			return fmt.Errorf("marketMaking window must be > 0")
		}
		if p.MomentumWindow < 0 {
			return fmt.Errorf("marketMaking momentumWindow must be >= 0")
		}
		if p.BaseVolume < 0 {
			return fmt.Errorf("marketMaking baseVolume must be >= 0")
		}
		if err := p.Spread.validate(); err != nil {
			return fmt.Errorf("marketMaking %w", err)
		}
	case KindZScore:
		p := c.ZScore
		if p == nil {
			return fmt.Errorf("zscore parameters required")
		}
		if p.LongWindow <= 0 || p.ShortWindow <= 0 {
			return fmt.Errorf("zscore windows must be > 0")
		}
		if p.ShortWindow > p.LongWindow {
			return fmt.Errorf("zscore shortWindow must be <= longWindow")
		}
		if p.ZEntry <= 0 {
			return fmt.Errorf("zscore zEntry must be > 0")
		}
		if p.Volume <= 0 {
			return fmt.Errorf("zscore volume must be > 0")
		}
	case KindBaseline:
		p := c.Baseline
		if p == nil {
			return fmt.Errorf("baseline parameters required")
		}
		if p.Window <= 0 {
			return fmt.Errorf("baseline window must be > 0")
		}
		if p.MomentumWindow < 0 || p.Volume < 0 || p.Edge < 0 {
			return fmt.Errorf("baseline momentumWindow, edge and volume must be >= 0")
		}
	case KindDirectional:
		p := c.Directional
		if p == nil {
			return fmt.Errorf("directional parameters required")
		}
		if !(p.Low > 0 && p.Low < p.High && p.High < 1) {
			return fmt.Errorf("directional thresholds require 0 < low < high < 1")
		}
		if p.MaxVolume < 0 {
			return fmt.Errorf("directional maxVolume must be >= 0")
		}
	case KindBasket:
		p := c.Basket
		if p == nil || len(p.Components) == 0 {
			return fmt.Errorf("basket components required")
		}
		seen := make(map[string]struct{}, len(p.Components))
		for _, comp := range p.Components {
			if comp.Symbol == "" {
				return fmt.Errorf("basket component symbol required")
			}
			if comp.Symbol == c.Symbol {
				return fmt.Errorf("basket cannot contain itself")
			}
			if _, dup := seen[comp.Symbol]; dup {
				return fmt.Errorf("basket component %s listed twice", comp.Symbol)
			}
			seen[comp.Symbol] = struct{}{}
		}
		if p.Volume < 0 || p.Edge < 0 {
			return fmt.Errorf("basket edge and volume must be >= 0")
		}
	default:
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	return nil
}

// VolatilityWindow is the lookback of the market-making volatility diagnostic.
const VolatilityWindow = 10

func maxInt(values ...int) int {
	out := 0
	for _, v := range values {
		if v > out {
			out = v
		}
	}
	return out
}
