package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/config"
	"github.com/coachpo/quoter/internal/engine"
	"github.com/coachpo/quoter/internal/snapshot"
	"github.com/coachpo/quoter/internal/state"
)

const testConfig = `
agentId: SUBMISSION
instruments:
  - symbol: RESIN
    positionLimit: 50
    strategy: market_making
    marketMaking: {window: 5, spread: 2, baseVolume: 5}
`

const testSession = `{"timestamp":0,"order_depths":{"RESIN":{"buy_orders":{"9998":5},"sell_orders":{"10002":-5}}}}
{"timestamp":100,"order_depths":{"RESIN":{"buy_orders":{"9999":5},"sell_orders":{"10001":-5}}},"position":{"RESIN":5},"own_trades":{"RESIN":[{"timestamp":0,"price":9999,"quantity":5,"buyer":"SUBMISSION","seller":"BOT"}]}}
{"timestamp":200,"order_depths":{"RESIN":{"buy_orders":{},"sell_orders":{"10001":-5}}}}
`

func newTestEngine(t *testing.T) (*engine.Engine, config.AppConfig) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	eng, err := engine.New(cfg)
	require.NoError(t, err)
	return eng, cfg
}

func writeSession(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(testSession), 0o600))
	return path
}

func readLines(t *testing.T, path string) []orderLine {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var out []orderLine
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line orderLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		out = append(out, line)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestSessionName(t *testing.T) {
	require.Equal(t, "day1", sessionName("/data/day1.jsonl"))
	require.Equal(t, "day2.v1", sessionName("day2.v1.ndjson"))
	require.Equal(t, "day3", sessionName("day3.log"))
}

func TestRunSessionWritesOrdersAndState(t *testing.T) {
	eng, cfg := newTestEngine(t)
	dir := t.TempDir()
	store := snapshot.NewMemoryStore()

	summary, err := runSession(context.Background(), eng, store, writeSession(t, dir, "day1.jsonl"), filepath.Join(dir, "out"), zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 3, summary.Ticks)

	lines := readLines(t, summary.Output)
	require.Len(t, lines, 3)
	require.Equal(t, int64(0), lines[0].Timestamp)
	require.Len(t, lines[0].Orders["RESIN"], 2)
	require.Equal(t, int64(9999), lines[0].Orders["RESIN"][0].Price)
	require.Equal(t, int64(5), lines[1].Orders["RESIN"][0].Quantity)
	require.Empty(t, lines[2].Orders, "one-sided book produces no orders")

	rec, err := store.Get(context.Background(), snapshot.Key{Session: "day1"})
	require.NoError(t, err)
	require.Equal(t, uint64(3), rec.Version)
	st, err := state.Decode(rec.Data, cfg)
	require.NoError(t, err)
	require.Equal(t, []float64{10000, 10000}, st.History.Prices("RESIN"))
	require.Len(t, st.Fills.Log("RESIN"), 1)
}

func TestRunSessionsIsolatesState(t *testing.T) {
	eng, _ := newTestEngine(t)
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	store, err := newStore(stateDir)
	require.NoError(t, err)

	paths := []string{writeSession(t, dir, "a.jsonl"), writeSession(t, dir, "b.jsonl")}
	summaries, err := runSessions(context.Background(), eng, store, paths, filepath.Join(dir, "out"), 2, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Session < summaries[j].Session })
	require.Equal(t, summaries[0].Orders, summaries[1].Orders)

	for _, name := range []string{"a", "b"} {
		rec, err := store.Get(context.Background(), snapshot.Key{Session: name})
		require.NoError(t, err)
		require.Equal(t, uint64(3), rec.Version, "session %s", name)
	}
}

func TestRunSessionsRejectsDuplicateNames(t *testing.T) {
	eng, _ := newTestEngine(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "x"), 0o750))
	first := writeSession(t, dir, "day.jsonl")
	second := writeSession(t, filepath.Join(dir, "x"), "day.jsonl")

	_, err := runSessions(context.Background(), eng, snapshot.NewMemoryStore(), []string{first, second}, filepath.Join(dir, "out"), 2, zap.NewNop())
	require.Error(t, err)
}

func TestRunSessionMissingFeed(t *testing.T) {
	eng, _ := newTestEngine(t)
	dir := t.TempDir()
	_, err := runSession(context.Background(), eng, snapshot.NewMemoryStore(), filepath.Join(dir, "missing.jsonl"), dir, zap.NewNop())
	require.Error(t, err)
}
