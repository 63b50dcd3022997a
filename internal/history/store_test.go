package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/quoter/internal/schema"
)

func TestRecordCreatesMissingSymbol(t *testing.T) {
	s := NewStore(5, 5)
	_, ok := s.Latest("KELP")
	require.False(t, ok)

	s.Record("KELP", 2001.5)
	latest, ok := s.Latest("KELP")
	require.True(t, ok)
	require.InDelta(t, 2001.5, latest, 1e-9)
}

func TestRecordTrimsOldestFirst(t *testing.T) {
	s := NewStore(3, 3)
	for i := 1; i <= 10; i++ {
		s.Record("RESIN", float64(i))
		require.LessOrEqual(t, len(s.Prices("RESIN")), 3)
	}
	require.Equal(t, []float64{8, 9, 10}, s.Prices("RESIN"))
}

func TestRecordFeatureTrims(t *testing.T) {
	s := NewStore(10, 2)
	s.RecordFeature("JAMS", schema.FeatureVector{1})
	s.RecordFeature("JAMS", schema.FeatureVector{2})
	s.RecordFeature("JAMS", schema.FeatureVector{3})
	got := s.Features("JAMS")
	require.Len(t, got, 2)
	require.Equal(t, 2.0, got[0][0])
	require.Equal(t, 3.0, got[1][0])
}

func TestNewStoreDefaultsCaps(t *testing.T) {
	s := NewStore(0, -1)
	require.Equal(t, DefaultPriceCap, s.PriceCap())
	require.Equal(t, DefaultFeatureCap, s.FeatureCap())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewStore(5, 5)
	s.Record("KELP", 1)
	snap := s.Snapshot()
	snap.Prices["KELP"][0] = 99
	require.Equal(t, []float64{1}, s.Prices("KELP"))
}

func TestRestoreTrimsToCap(t *testing.T) {
	snap := Snapshot{
		Prices:   map[string][]float64{"KELP": {1, 2, 3, 4, 5}},
		Features: map[string][]schema.FeatureVector{"JAMS": {{1}, {2}, {3}}},
	}
	s := Restore(snap, 2, 1)
	require.Equal(t, []float64{4, 5}, s.Prices("KELP"))
	require.Len(t, s.Features("JAMS"), 1)
	require.Equal(t, 3.0, s.Features("JAMS")[0][0])
	// restoring must not alias the snapshot
	snap.Prices["KELP"][4] = 0
	require.Equal(t, []float64{4, 5}, s.Prices("KELP"))
}

func TestStats(t *testing.T) {
	values := []float64{48, 50, 52, 50}
	require.InDelta(t, 50, Mean(values), 1e-12)
	require.InDelta(t, 1.4142135623, StdDev(values), 1e-9)
	require.Equal(t, []float64{52, 50}, Tail(values, 2))
	require.Equal(t, values, Tail(values, 10))
	require.Nil(t, Tail(values, 0))

	require.InDelta(t, 0.0, Momentum(values, 5), 1e-12)
	require.InDelta(t, 2.0, Momentum(values, 4), 1e-12)
	require.InDelta(t, -2.0, Momentum(values, 2), 1e-12)
	require.Zero(t, Mean(nil))
	require.Zero(t, StdDev(nil))
}
