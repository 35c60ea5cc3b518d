package sim

import (
	"context"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"autobattle/internal/config"
	"autobattle/internal/util"
)

type Summary struct {
	Runs          int                `json:"runs"`
	Wins          [2]int             `json:"wins"`
	Draws         int                `json:"draws"`
	WinRate       [2]float64         `json:"win_rate"`
	AvgDurationMS float64            `json:"avg_duration_ms"`
	DamageByChamp map[string]float64 `json:"damage_by_champion"`
	AvgCasts      map[string]float64 `json:"avg_casts_by_champion"`
}

// RunBatch plays n independent rounds on at most workers goroutines and
// aggregates them in run order. The first failing round cancels the rest.
func RunBatch(ctx context.Context, cfg *config.Config, seed int64, n, workers int, log *zap.Logger) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "batch")
	defer span.End()
	if log == nil {
		log = zap.NewNop()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error {
			res, err := RunSingle(ctx, cfg, Options{Seed: util.Derive(seed, i), Log: log.With(zap.Int("run", i))})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch")
		return nil, err
	}

	sum := Summarize(results)
	span.SetAttributes(
		attribute.Int("batch.runs", n),
		attribute.Int("batch.workers", workers),
		attribute.Float64("batch.win_rate_0", sum.WinRate[0]),
	)
	return sum, nil
}

// Summarize folds round results into win rates and per-champion averages.
func Summarize(results []*Result) *Summary {
	s := &Summary{
		Runs:          len(results),
		DamageByChamp: map[string]float64{},
		AvgCasts:      map[string]float64{},
	}
	if len(results) == 0 {
		return s
	}
	totalMS := 0.0
	for _, r := range results {
		switch r.Winner {
		case 0, 1:
			s.Wins[r.Winner]++
		default:
			s.Draws++
		}
		totalMS += float64(r.DurationMS)
		for _, u := range r.Units {
			s.DamageByChamp[u.Champion] += u.DamageDealt
			s.AvgCasts[u.Champion] += float64(u.Casts)
		}
	}
	runs := float64(len(results))
	for team := range s.WinRate {
		s.WinRate[team] = float64(s.Wins[team]) / runs
	}
	s.AvgDurationMS = totalMS / runs
	for k := range s.AvgCasts {
		s.AvgCasts[k] /= runs
	}
	return s
}
