// Package state holds the engine's per-session memory and its blob codec.
package state

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/coachpo/quoter/errs"
	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/fills"
	"github.com/coachpo/quoter/internal/history"
	"github.com/coachpo/quoter/internal/model"
	"github.com/coachpo/quoter/internal/schema"
)

// Version tags the blob layout written by Encode.
const Version = 1

// State is everything the engine carries from one tick to the next.
type State struct {
	History *history.Store
	Fills   *fills.Memory
	Models  map[string]model.Params
}

// New returns an empty state sized from configuration.
func New(cfg config.AppConfig) *State {
	return &State{
		History: history.NewStore(cfg.History.PriceCap, cfg.History.FeatureCap),
		Fills:   fills.NewMemory(cfg.Fills.Capacity, cfg.Fills.RecencyWindow),
		Models:  make(map[string]model.Params),
	}
}

type blob struct {
	Version          int                       `json:"version"`
	PriceHistories   map[string][]float64      `json:"price_histories"`
	FeatureHistories map[string][][]float64    `json:"feature_histories"`
	LastFills        map[string][]fills.Record `json:"last_fills"`
	ModelWeights     map[string][]float64      `json:"model_weights"`
	ModelBias        map[string]float64        `json:"model_bias"`
}

// Encode serialises the state to a self-describing JSON blob.
func Encode(s *State) ([]byte, error) {
	snap := s.History.Snapshot()
	out := blob{
		Version:          Version,
		PriceHistories:   snap.Prices,
		FeatureHistories: make(map[string][][]float64, len(snap.Features)),
		LastFills:        s.Fills.Snapshot(),
		ModelWeights:     make(map[string][]float64, len(s.Models)),
		ModelBias:        make(map[string]float64, len(s.Models)),
	}
	for symbol, vectors := range snap.Features {
		rows := make([][]float64, len(vectors))
		for i, v := range vectors {
			rows[i] = append([]float64(nil), v[:]...)
		}
		out.FeatureHistories[symbol] = rows
	}
	for symbol, p := range s.Models {
		out.ModelWeights[symbol] = append([]float64(nil), p.Weights[:]...)
		out.ModelBias[symbol] = p.Bias
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode rebuilds state from a blob. An empty blob yields an empty state. A
// malformed blob also yields an empty state, together with an invalid_request
// error the caller may log before continuing.
func Decode(data []byte, cfg config.AppConfig) (*State, error) {
	if len(data) == 0 {
		return New(cfg), nil
	}
	var in blob
	if err := json.Unmarshal(data, &in); err != nil {
		return New(cfg), errs.New("state", errs.CodeInvalid,
			errs.WithMessage("state blob is not valid JSON"),
			errs.WithRemediation("state reset to empty"),
			errs.WithCause(err))
	}
	if in.Version != 0 && in.Version != Version {
		return New(cfg), errs.New("state", errs.CodeInvalid,
			errs.WithMessage("unsupported state blob version"),
			errs.WithField("version", fmt.Sprint(in.Version)))
	}

	features := make(map[string][]schema.FeatureVector, len(in.FeatureHistories))
	for symbol, rows := range in.FeatureHistories {
		for _, row := range rows {
			if len(row) != schema.FeatureDim {
				continue
			}
			var v schema.FeatureVector
			copy(v[:], row)
			features[symbol] = append(features[symbol], v)
		}
	}

	models := make(map[string]model.Params, len(in.ModelWeights))
	for symbol, weights := range in.ModelWeights {
		if len(weights) != schema.FeatureDim {
			// The model restarts from zero rather than guessing at the layout.
			continue
		}
		var p model.Params
		copy(p.Weights[:], weights)
		p.Bias = in.ModelBias[symbol]
		models[symbol] = p
	}

	return &State{
		History: history.Restore(history.Snapshot{Prices: in.PriceHistories, Features: features},
			cfg.History.PriceCap, cfg.History.FeatureCap),
		Fills:  fills.Restore(in.LastFills, cfg.Fills.Capacity, cfg.Fills.RecencyWindow),
		Models: models,
	}, nil
}
