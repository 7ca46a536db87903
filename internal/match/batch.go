package match

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchResult is the outcome slot for one query in a batch run.
type BatchResult struct {
	Query   Query    `json:"query"`
	Outcome *Outcome `json:"outcome,omitempty"`
	Err     error    `json:"-"`
}

// BatchStats aggregates a batch run.
type BatchStats struct {
	Total     int     `json:"total"`
	Confident int     `json:"confident"`
	Errors    int     `json:"errors"`
	MatchRate float64 `json:"match_rate"`
}

// MatchAll applies Match independently to each query with bounded
// concurrency. Result order mirrors query order (index-preserving slots).
// Per-query failures (e.g. an empty query row) are recorded in their slot and
// do not abort the batch; only context cancellation does.
func (m *Matcher) MatchAll(ctx context.Context, queries []Query, workers int) ([]BatchResult, BatchStats, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]BatchResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := m.Match(q)
			results[i] = BatchResult{Query: q, Outcome: out, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, BatchStats{}, err
	}

	stats := BatchStats{Total: len(queries)}
	for _, r := range results {
		if r.Err != nil {
			stats.Errors++
			continue
		}
		if r.Outcome.Confident {
			stats.Confident++
		}
	}
	if stats.Total > 0 {
		stats.MatchRate = float64(stats.Confident) / float64(stats.Total)
	}

	zap.L().Info("batch match complete",
		zap.Int("total", stats.Total),
		zap.Int("confident", stats.Confident),
		zap.Int("errors", stats.Errors),
		zap.Float64("match_rate", stats.MatchRate),
	)
	return results, stats, nil
}
