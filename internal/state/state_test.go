package state

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/coachpo/quoter/errs"
	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/fills"
	"github.com/coachpo/quoter/internal/model"
	"github.com/coachpo/quoter/internal/schema"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		History: config.HistoryConfig{PriceCap: 5, FeatureCap: 3},
		Fills:   config.FillsConfig{Capacity: 2, RecencyWindow: 1000},
	}
}

func TestDecodeEmptyBlob(t *testing.T) {
	s, err := Decode(nil, testConfig())
	require.NoError(t, err)
	require.Empty(t, s.History.Prices("KELP"))
	require.Empty(t, s.Models)
}

func TestDecodeMalformedBlobResets(t *testing.T) {
	s, err := Decode([]byte("{not json"), testConfig())
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.CodeInvalid))
	require.NotNil(t, s)
	require.Empty(t, s.History.Snapshot().Prices)

	_, err = Decode([]byte(`{"version":99}`), testConfig())
	require.True(t, errs.Is(err, errs.CodeInvalid))
}

func TestRoundTripIsStable(t *testing.T) {
	cfg := testConfig()
	s := New(cfg)
	for _, p := range []float64{1, 2, 3} {
		s.History.Record("KELP", p)
	}
	s.History.RecordFeature("JAMS", schema.FeatureVector{1, 2, 3, 4})
	s.Fills.Add("KELP", fills.Record{Timestamp: 100, Side: schema.TradeSideBuy, Price: 2000, Quantity: 3})
	s.Models["JAMS"] = model.Params{Weights: schema.FeatureVector{0.1, -0.2, 0.3, -0.4}, Bias: 0.5}

	first, err := Encode(s)
	require.NoError(t, err)

	decoded, err := Decode(first, cfg)
	require.NoError(t, err)
	second, err := Encode(decoded)
	require.NoError(t, err)
	require.JSONEq(t, string(first), string(second))

	require.Equal(t, []float64{1, 2, 3}, decoded.History.Prices("KELP"))
	require.Equal(t, s.Models["JAMS"], decoded.Models["JAMS"])
	require.Equal(t, s.Fills.Log("KELP"), decoded.Fills.Log("KELP"))
}

func TestEncodeUsesDocumentedKeys(t *testing.T) {
	data, err := Encode(New(testConfig()))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"version", "price_histories", "feature_histories", "last_fills", "model_weights", "model_bias"} {
		require.Contains(t, raw, key)
	}
}

func TestDecodeTrimsToCapsAndDropsBadModels(t *testing.T) {
	blob := []byte(`{
		"version": 1,
		"price_histories": {"KELP": [1,2,3,4,5,6,7,8]},
		"feature_histories": {"JAMS": [[1,2,3,4],[1,2],[5,6,7,8]]},
		"last_fills": {"KELP": [
			{"timestamp": 1, "side": "buy", "price": 10, "qty": 1},
			{"timestamp": 2, "side": "sell", "price": 11, "qty": 1},
			{"timestamp": 3, "side": "buy", "price": 12, "qty": 1}
		]},
		"model_weights": {"JAMS": [1,2,3], "DJEMBES": [0,0,0,1]},
		"model_bias": {"JAMS": 9, "DJEMBES": 2}
	}`)
	s, err := Decode(blob, testConfig())
	require.NoError(t, err)

	require.Equal(t, []float64{4, 5, 6, 7, 8}, s.History.Prices("KELP"))
	require.Equal(t, []schema.FeatureVector{{1, 2, 3, 4}, {5, 6, 7, 8}}, s.History.Features("JAMS"))
	require.Len(t, s.Fills.Log("KELP"), 2)
	require.Equal(t, int64(2), s.Fills.Log("KELP")[0].Timestamp)

	_, ok := s.Models["JAMS"]
	require.False(t, ok, "wrong-length weights reset the model")
	require.Equal(t, model.Params{Weights: schema.FeatureVector{0, 0, 0, 1}, Bias: 2}, s.Models["DJEMBES"])
}
