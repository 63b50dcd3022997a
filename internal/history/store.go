// Package history keeps capped rolling buffers of mid-prices and feature vectors per instrument.
package history

import "github.com/coachpo/quoter/internal/schema"

const (
	// DefaultPriceCap bounds retained mid-prices per instrument.
	DefaultPriceCap = 100
	// DefaultFeatureCap bounds retained feature vectors per instrument.
	DefaultFeatureCap = 100
)

// Store is an append-only, capped history of mid-prices and feature vectors.
// It is not safe for concurrent use; each session owns its own Store.
type Store struct {
	priceCap   int
	featureCap int
	prices     map[string][]float64
	features   map[string][]schema.FeatureVector
}

// Snapshot is the persisted form of a Store.
type Snapshot struct {
	Prices   map[string][]float64
	Features map[string][]schema.FeatureVector
}

// NewStore creates an empty store. Non-positive caps fall back to the defaults.
func NewStore(priceCap, featureCap int) *Store {
	if priceCap <= 0 {
		priceCap = DefaultPriceCap
	}
	if featureCap <= 0 {
		featureCap = DefaultFeatureCap
	}
	return &Store{
		priceCap:   priceCap,
		featureCap: featureCap,
		prices:     make(map[string][]float64),
		features:   make(map[string][]schema.FeatureVector),
	}
}

// Restore rebuilds a store from a snapshot, trimming every buffer to its cap.
func Restore(snap Snapshot, priceCap, featureCap int) *Store {
	s := NewStore(priceCap, featureCap)
	for symbol, values := range snap.Prices {
		s.prices[symbol] = trim(append([]float64(nil), values...), s.priceCap)
	}
	for symbol, vectors := range snap.Features {
		s.features[symbol] = trim(append([]schema.FeatureVector(nil), vectors...), s.featureCap)
	}
	return s
}

// Record appends a mid-price for symbol, dropping the oldest entries beyond the cap.
func (s *Store) Record(symbol string, mid float64) {
	s.prices[symbol] = trim(append(s.prices[symbol], mid), s.priceCap)
}

// RecordFeature appends a feature vector for symbol, dropping the oldest entries beyond the cap.
func (s *Store) RecordFeature(symbol string, v schema.FeatureVector) {
	s.features[symbol] = trim(append(s.features[symbol], v), s.featureCap)
}

// Prices returns the retained mid-prices for symbol, oldest first. Callers must not mutate it.
func (s *Store) Prices(symbol string) []float64 {
	return s.prices[symbol]
}

// Features returns the retained feature vectors for symbol, oldest first. Callers must not mutate it.
func (s *Store) Features(symbol string) []schema.FeatureVector {
	return s.features[symbol]
}

// Latest returns the newest mid-price for symbol.
func (s *Store) Latest(symbol string) (float64, bool) {
	values := s.prices[symbol]
	if len(values) == 0 {
		return 0, false
	}
	return values[len(values)-1], true
}

// PriceCap returns the configured mid-price cap.
func (s *Store) PriceCap() int { return s.priceCap }

// FeatureCap returns the configured feature cap.
func (s *Store) FeatureCap() int { return s.featureCap }

// Snapshot returns a deep copy of the store contents.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Prices:   make(map[string][]float64, len(s.prices)),
		Features: make(map[string][]schema.FeatureVector, len(s.features)),
	}
	for symbol, values := range s.prices {
		snap.Prices[symbol] = append([]float64(nil), values...)
	}
	for symbol, vectors := range s.features {
		snap.Features[symbol] = append([]schema.FeatureVector(nil), vectors...)
	}
	return snap
}

func trim[T any](values []T, limit int) []T {
	if len(values) <= limit {
		return values
	}
	// Copy so the dropped prefix does not stay reachable through the backing array.
	return append([]T(nil), values[len(values)-limit:]...)
}
