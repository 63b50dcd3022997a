package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSpreadRuleEvaluate(t *testing.T) {
	clamped := ClampedSpread(1, 5, 2)
	cases := []struct {
		bid, ask int64
		want     float64
	}{
		{100, 101, 1}, // round(0.5) = 1
		{100, 102, 1},
		{100, 107, 4}, // round(3.5) = 4
		{100, 120, 5},
		{100, 100, 1},
	}
	for _, tc := range cases {
		if got := clamped.Evaluate(tc.bid, tc.ask); got != tc.want {
			t.Fatalf("Evaluate(%d,%d) = %v, want %v", tc.bid, tc.ask, got, tc.want)
		}
	}
	if got := FixedSpread(2).Evaluate(1, 50); got != 2 {
		t.Fatalf("fixed spread should ignore touch, got %v", got)
	}
	if got := (SpreadRule{}).Evaluate(1, 50); got != 0 {
		t.Fatalf("unset spread should evaluate to zero, got %v", got)
	}
}

func TestSpreadRuleUnmarshal(t *testing.T) {
	var doc struct {
		A SpreadRule `yaml:"a"`
		B SpreadRule `yaml:"b"`
		C SpreadRule `yaml:"c"`
	}
	if err := yaml.Unmarshal([]byte("a: 2.0\nb: {max: 3}\nc: ''\n"), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !doc.A.IsFixed() || doc.A.Evaluate(0, 0) != 2 {
		t.Fatalf("expected fixed 2, got %s", doc.A)
	}
	if doc.B.IsFixed() || !doc.B.IsSet() {
		t.Fatalf("expected clamped rule, got %s", doc.B)
	}
	if got := doc.B.Evaluate(0, 100); got != 3 {
		t.Fatalf("expected custom max respected, got %v", got)
	}
	if doc.C.IsSet() {
		t.Fatalf("empty scalar should leave rule unset")
	}
}

func TestSpreadRuleUnmarshalRejectsGarbage(t *testing.T) {
	var doc struct {
		A SpreadRule `yaml:"a"`
	}
	if err := yaml.Unmarshal([]byte("a: wide\n"), &doc); err == nil {
		t.Fatal("expected error for non-numeric scalar")
	}
	if err := yaml.Unmarshal([]byte("a: [1, 2]\n"), &doc); err == nil {
		t.Fatal("expected error for sequence")
	}
}
