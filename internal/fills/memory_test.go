package fills

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/quoter/internal/schema"
)

func buy(ts int64) Record  { return Record{Timestamp: ts, Side: schema.TradeSideBuy, Price: 100, Quantity: 1} }
func sell(ts int64) Record { return Record{Timestamp: ts, Side: schema.TradeSideSell, Price: 101, Quantity: 1} }

func TestAddKeepsNewestUpToCapacity(t *testing.T) {
	m := NewMemory(3, 1000)
	for ts := int64(1); ts <= 5; ts++ {
		m.Add("KELP", buy(ts))
	}
	log := m.Log("KELP")
	require.Len(t, log, 3)
	require.Equal(t, int64(3), log[0].Timestamp)
	require.Equal(t, int64(5), log[2].Timestamp)
}

func TestRecentFiltersByWindowInclusive(t *testing.T) {
	m := NewMemory(0, 0)
	m.Add("KELP", buy(0), buy(500), sell(1000))

	recent := m.Recent("KELP", 1500)
	require.Len(t, recent, 2)
	require.Equal(t, int64(500), recent[0].Timestamp)
}

func TestBiasCountsBuysMinusSells(t *testing.T) {
	m := NewMemory(20, 1000)
	m.Add("RESIN", buy(100), buy(200), buy(300), sell(400))
	require.Equal(t, int64(2), m.Bias("RESIN", 1000))
	require.Equal(t, int64(-1), m.Bias("RESIN", 1350))
	require.Zero(t, m.Bias("UNKNOWN", 1000))
}

func TestRestoreAndSnapshot(t *testing.T) {
	logs := map[string][]Record{"KELP": {buy(1), buy(2), sell(3)}}
	m := Restore(logs, 2, 1000)
	require.Len(t, m.Log("KELP"), 2)

	snap := m.Snapshot()
	snap["KELP"][0].Price = 0
	require.Equal(t, int64(100), m.Log("KELP")[0].Price)
}
