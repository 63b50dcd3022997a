package risk

import (
	"testing"

	"github.com/coachpo/quoter/internal/schema"
)

func TestGuard_ClampsToRemainingRoom(t *testing.T) {
	g := NewGuard(45, 50)

	got, ok := g.Admit(schema.NewOrder("KELP", schema.TradeSideBuy, 100, 10))
	if !ok {
		t.Fatal("buy with room should be admitted")
	}
	if got.Quantity != 5 {
		t.Fatalf("expected buy clamped to 5, got %d", got.Quantity)
	}

	if _, ok := g.Admit(schema.NewOrder("KELP", schema.TradeSideBuy, 99, 1)); ok {
		t.Fatal("second buy should be rejected once room is consumed")
	}

	sell, ok := g.Admit(schema.NewOrder("KELP", schema.TradeSideSell, 102, 10))
	if !ok || sell.Quantity != -10 {
		t.Fatalf("expected full sell of 10, got %+v ok=%v", sell, ok)
	}
}

func TestGuard_NeverBreachesLimit(t *testing.T) {
	for position := int64(-60); position <= 60; position += 7 {
		g := NewGuard(position, 50)
		var bought, sold int64
		for i := 0; i < 5; i++ {
			if o, ok := g.Admit(schema.NewOrder("X", schema.TradeSideBuy, 10, 17)); ok {
				bought += o.Size()
			}
			if o, ok := g.Admit(schema.NewOrder("X", schema.TradeSideSell, 11, 17)); ok {
				sold += o.Size()
			}
		}
		if after := position + bought; bought > 0 && after > 50 {
			t.Fatalf("position %d: buys take position to %d", position, after)
		}
		if after := position - sold; sold > 0 && after < -50 {
			t.Fatalf("position %d: sells take position to %d", position, after)
		}
	}
}

func TestGuard_ZeroLimitBlocksEverything(t *testing.T) {
	g := NewGuard(0, 0)
	if _, ok := g.Admit(schema.NewOrder("SQUID_INK", schema.TradeSideBuy, 10, 5)); ok {
		t.Fatal("zero limit must block buys")
	}
	if _, ok := g.Admit(schema.NewOrder("SQUID_INK", schema.TradeSideSell, 10, 5)); ok {
		t.Fatal("zero limit must block sells")
	}
}

func TestGuard_RejectsEmptyOrder(t *testing.T) {
	g := NewGuard(0, 10)
	if _, ok := g.Admit(schema.Order{Symbol: "X", Price: 1}); ok {
		t.Fatal("zero quantity must be dropped")
	}
}

func TestDecayedLimit(t *testing.T) {
	cases := []struct {
		limit, ts, session, want int64
	}{
		{200, 0, 1_000_000, 200},
		{200, 500_000, 1_000_000, 100},
		{200, 900_000, 1_000_000, 40},
		{200, 2_000_000, 1_000_000, 40},
		{400, 250_000, 0, 300},
		{0, 0, 1_000_000, 0},
	}
	for _, tc := range cases {
		if got := DecayedLimit(tc.limit, tc.ts, tc.session); got != tc.want {
			t.Fatalf("DecayedLimit(%d,%d,%d) = %d, want %d", tc.limit, tc.ts, tc.session, got, tc.want)
		}
	}
}

func TestRoomHelpers(t *testing.T) {
	if BuyRoom(-10, 50) != 60 || SellRoom(-10, 50) != 40 {
		t.Fatal("unexpected room")
	}
	if ClampSize(15, 4) != 4 || ClampSize(3, 4) != 3 {
		t.Fatal("unexpected clamp")
	}
}
