package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBookNormalisesSellQuantities(t *testing.T) {
	book := NewBook(map[int64]int64{99: 5, 98: 7}, map[int64]int64{101: -3, 102: -9})
	require.Equal(t, map[int64]int64{101: 3, 102: 9}, book.Sell)

	top, ok := book.Top()
	require.True(t, ok)
	require.Equal(t, Top{Bid: 99, BidSize: 5, Ask: 101, AskSize: 3}, top)
	require.InDelta(t, 100.0, top.Mid(), 1e-12)
	require.InDelta(t, 2.0, top.Spread(), 1e-12)
	require.InDelta(t, 2.0/8.0, top.Imbalance(), 1e-6)
	require.InDelta(t, (12.0-12.0)/24.0, book.DepthImbalance(), 1e-6)
}

func TestOneSidedBookHasNoTop(t *testing.T) {
	bidsOnly := NewBook(map[int64]int64{99: 5}, nil)
	require.False(t, bidsOnly.TwoSided())
	_, ok := bidsOnly.Top()
	require.False(t, ok)

	_, _, ok = bidsOnly.BestAsk()
	require.False(t, ok)
	price, size, ok := bidsOnly.BestBid()
	require.True(t, ok)
	require.Equal(t, int64(99), price)
	require.Equal(t, int64(5), size)

	var empty Book
	require.False(t, empty.TwoSided())
	require.InDelta(t, 0.0, empty.DepthImbalance(), 1e-12)
}

func TestOrderSideAndSize(t *testing.T) {
	buy := NewOrder("KELP", TradeSideBuy, 2000, 4)
	sell := NewOrder("KELP", TradeSideSell, 2002, 4)
	require.Equal(t, int64(4), buy.Quantity)
	require.Equal(t, int64(-4), sell.Quantity)
	require.Equal(t, TradeSideSell, sell.Side())
	require.Equal(t, int64(4), sell.Size())
}

func TestOwnTradeSideFor(t *testing.T) {
	require.Equal(t, TradeSideBuy, OwnTrade{Buyer: "ME", Seller: "BOT"}.SideFor("ME"))
	require.Equal(t, TradeSideSell, OwnTrade{Buyer: "BOT", Seller: "ME"}.SideFor("ME"))
	require.Equal(t, TradeSideSell, OwnTrade{Buyer: "ME", Side: TradeSideSell}.SideFor("ME"))

	tick := Tick{}
	require.Equal(t, int64(0), tick.Position("KELP"))
}

func TestMarketTypesCarryNoWireTags(t *testing.T) {
	for _, typ := range []reflect.Type{reflect.TypeOf(Book{}), reflect.TypeOf(Tick{}), reflect.TypeOf(OwnTrade{})} {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			_, tagged := field.Tag.Lookup("json")
			require.False(t, tagged, "%s.%s is decoded by the feed, not by tags", typ.Name(), field.Name)
		}
	}
}
