package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type spreadKind int

const (
	spreadUnset spreadKind = iota
	spreadFixed
	spreadClamped
)

// SpreadRule decides the full quoted spread of a market-making instrument.
// It is either a fixed width or a clamp of the observed touch spread.
type SpreadRule struct {
	kind    spreadKind
	value   float64
	min     float64
	max     float64
	divisor float64
}

// FixedSpread always quotes value ticks wide.
func FixedSpread(value float64) SpreadRule {
	return SpreadRule{kind: spreadFixed, value: value}
}

// ClampedSpread quotes clamp(min, max, round((ask-bid)/divisor)).
func ClampedSpread(minimum, maximum, divisor float64) SpreadRule {
	return SpreadRule{kind: spreadClamped, min: minimum, max: maximum, divisor: divisor}
}

// IsSet reports whether the rule was configured.
func (r SpreadRule) IsSet() bool { return r.kind != spreadUnset }

// IsFixed reports whether the rule is a fixed width.
func (r SpreadRule) IsFixed() bool { return r.kind == spreadFixed }

// Evaluate returns the spread for the given touch.
func (r SpreadRule) Evaluate(bid, ask int64) float64 {
	switch r.kind {
	case spreadFixed:
		return r.value
	case spreadClamped:
		width := math.Round(float64(ask-bid) / r.divisor)
		return math.Max(r.min, math.Min(r.max, width))
	default:
		return 0
	}
}

func (r SpreadRule) validate() error {
	switch r.kind {
	case spreadFixed:
		if r.value < 0 {
			return fmt.Errorf("fixed spread must be >= 0")
		}
	case spreadClamped:
		if r.divisor <= 0 {
			return fmt.Errorf("clamped spread divisor must be > 0")
		}
		if r.min < 0 || r.max < r.min {
			return fmt.Errorf("clamped spread requires 0 <= min <= max")
		}
	default:
		return fmt.Errorf("spread required")
	}
	return nil
}

func (r SpreadRule) String() string {
	switch r.kind {
	case spreadFixed:
		return strconv.FormatFloat(r.value, 'f', -1, 64)
	case spreadClamped:
		return fmt.Sprintf("clamp(%g,%g,(ask-bid)/%g)", r.min, r.max, r.divisor)
	default:
		return "unset"
	}
}

// UnmarshalYAML accepts a number for a fixed spread or a {min,max,divisor} mapping for a clamped one.
func (r *SpreadRule) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*r = SpreadRule{}
		return nil
	}
	switch node.Kind {
	case yaml.ScalarNode:
		text := strings.TrimSpace(node.Value)
		if text == "" {
			*r = SpreadRule{}
			return nil
		}
		val, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("spread: invalid value %q", node.Value)
		}
		*r = FixedSpread(val)
		return nil
	case yaml.MappingNode:
		raw := struct {
			Min     *float64 `yaml:"min"`
			Max     *float64 `yaml:"max"`
			Divisor *float64 `yaml:"divisor"`
		}{}
		if err := node.Decode(&raw); err != nil {
			return fmt.Errorf("spread: %w", err)
		}
		minimum, maximum, divisor := 1.0, 5.0, 2.0
		if raw.Min != nil {
			minimum = *raw.Min
		}
		if raw.Max != nil {
			maximum = *raw.Max
		}
		if raw.Divisor != nil {
			divisor = *raw.Divisor
		}
		*r = ClampedSpread(minimum, maximum, divisor)
		return nil
	default:
		return fmt.Errorf("spread: expected number or mapping")
	}
}
