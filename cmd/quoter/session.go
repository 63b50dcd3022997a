package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/coachpo/quoter/internal/engine"
	"github.com/coachpo/quoter/internal/feed"
	"github.com/coachpo/quoter/internal/schema"
	"github.com/coachpo/quoter/internal/snapshot"
)

type orderLine struct {
	Timestamp int64                     `json:"timestamp"`
	Orders    map[string][]schema.Order `json:"orders"`
}

type sessionSummary struct {
	Session string
	Output  string
	Ticks   int
	Orders  int
}

// sessionName derives the snapshot key and output name from a feed path.
func sessionName(path string) string {
	base := filepath.Base(path)
	for _, ext := range []string{".jsonl", ".ndjson", ".json"} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// runSessions replays every feed concurrently. Each session has its own state
// key, so sessions never observe each other's history.
func runSessions(ctx context.Context, eng *engine.Engine, store snapshot.Store, paths []string, outDir string, workers int, logger *zap.Logger) ([]sessionSummary, error) {
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("create out dir: %w", err)
	}
	if workers <= 0 {
		workers = 1
	}

	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		name := sessionName(path)
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("sessions %s and %s share the name %q", prev, path, name)
		}
		seen[name] = path
	}

	var (
		mu        sync.Mutex
		summaries []sessionSummary
	)
	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
	for _, path := range paths {
		path := path // per-iteration copy; go directive is 1.21
		p.Go(func(ctx context.Context) error {
			summary, err := runSession(ctx, eng, store, path, outDir, logger)
			if err != nil {
				return fmt.Errorf("session %s: %w", path, err)
			}
			mu.Lock()
			summaries = append(summaries, summary)
			mu.Unlock()
			return nil
		})
	}
	err := p.Wait()
	return summaries, err
}

func runSession(ctx context.Context, eng *engine.Engine, store snapshot.Store, path, outDir string, logger *zap.Logger) (sessionSummary, error) {
	name := sessionName(path)
	key := snapshot.Key{Session: name}
	if err := key.Validate(); err != nil {
		return sessionSummary{}, err
	}
	log := logger.With(zap.String("session", name))

	feeder, err := feed.Open(path)
	if err != nil {
		return sessionSummary{}, err
	}
	defer func() { _ = feeder.Close() }()

	outPath := filepath.Join(outDir, name+".orders.jsonl")
	// #nosec G304 -- output directory is operator provided.
	outFile, err := os.Create(outPath)
	if err != nil {
		return sessionSummary{}, fmt.Errorf("create output: %w", err)
	}
	defer func() { _ = outFile.Close() }()
	writer := bufio.NewWriter(outFile)
	encoder := json.NewEncoder(writer)

	summary := sessionSummary{Session: name, Output: outPath}
	for {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("replay interrupted: %w", err)
		}
		tick, err := feeder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}

		prev, err := snapshot.Load(ctx, store, key)
		if err != nil {
			return summary, err
		}
		out, err := eng.Run(ctx, tick, prev.Data)
		if err != nil {
			return summary, fmt.Errorf("tick %d: %w", tick.Timestamp, err)
		}
		if _, err := snapshot.Save(ctx, store, key, prev.Version, out.State); err != nil {
			return summary, fmt.Errorf("save state: %w", err)
		}

		if err := encoder.Encode(orderLine{Timestamp: tick.Timestamp, Orders: out.Orders}); err != nil {
			return summary, fmt.Errorf("write orders: %w", err)
		}
		summary.Ticks++
		for _, orders := range out.Orders {
			summary.Orders += len(orders)
		}
	}

	if err := writer.Flush(); err != nil {
		return summary, fmt.Errorf("flush output: %w", err)
	}
	log.Debug("session replayed", zap.Int("ticks", summary.Ticks))
	return summary, nil
}
