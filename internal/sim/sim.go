// Package sim drives rounds built from config: it places units, activates
// trait synergies, installs the data-driven content hooks and runs the loop.
package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"autobattle/internal/combat"
	"autobattle/internal/config"
	"autobattle/internal/util"
)

var tracer = otel.Tracer("autobattle/internal/sim")

type Options struct {
	Seed   int64
	Record bool
	Log    *zap.Logger
}

type UnitResult struct {
	ID          combat.UnitID `json:"id"`
	Champion    string        `json:"champion"`
	Team        int           `json:"team"`
	Star        int           `json:"star"`
	Alive       bool          `json:"alive"`
	Health      float64       `json:"health"`
	DamageDealt float64       `json:"damage_dealt"`
	DamageTaken float64       `json:"damage_taken"`
	Healed      float64       `json:"healed"`
	Casts       int           `json:"casts"`
	Kills       int           `json:"kills"`
}

type Result struct {
	RoundID    uuid.UUID      `json:"round_id"`
	Seed       int64          `json:"seed"`
	Winner     int            `json:"winner"`
	DurationMS int64          `json:"duration_ms"`
	Ticks      int            `json:"ticks"`
	Synergies  [2][]string    `json:"synergies"`
	Units      []UnitResult   `json:"units"`
	Events     []combat.Event `json:"events,omitempty"`
}

// NewEnv builds a started round for cfg. The round id is drawn from the
// seeded RNG, so the same seed always yields the same id.
func NewEnv(cfg *config.Config, opts Options) (*combat.Env, error) {
	rng := util.New(opts.Seed)
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return nil, fmt.Errorf("round id: %w", err)
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	env := combat.NewEnv(rng, Registry(cfg), log.With(zap.Stringer("round", id)))
	env.RoundID = id
	env.Board = cfg.HexBoard()
	env.Record(opts.Record)

	units, err := Units(cfg)
	if err != nil {
		return nil, err
	}
	env.Synergies = Synergies(cfg, units)
	for _, u := range units {
		if err := env.AddUnit(u); err != nil {
			return nil, err
		}
	}
	env.StartRound()
	return env, nil
}

// RunSingle plays one round to elimination or the time limit.
func RunSingle(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	ctx, span := tracer.Start(ctx, "round", trace.WithAttributes(attribute.Int64("round.seed", opts.Seed)))
	defer span.End()

	env, err := NewEnv(cfg, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build round")
		return nil, err
	}
	winner, err := env.Run(ctx, cfg.Sim.TickMS, cfg.Sim.MaxMS)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run round")
		return nil, fmt.Errorf("round %s: %w", env.RoundID, err)
	}

	res := &Result{
		RoundID:    env.RoundID,
		Seed:       opts.Seed,
		Winner:     winner,
		DurationMS: env.TimeMS,
		Ticks:      env.Ticks,
		Events:     env.Events(),
	}
	for team, syns := range env.Synergies {
		for _, s := range syns {
			res.Synergies[team] = append(res.Synergies[team], fmt.Sprintf("%s:%d", s.Key, s.Level))
		}
	}
	for _, u := range env.Units() {
		res.Units = append(res.Units, UnitResult{
			ID:          u.ID,
			Champion:    u.Def.Key,
			Team:        u.Team,
			Star:        u.Star,
			Alive:       !u.Dead(),
			Health:      u.Health(),
			DamageDealt: u.DamageDealt,
			DamageTaken: u.DamageTaken,
			Healed:      u.Healed,
			Casts:       u.Casts,
			Kills:       u.Kills,
		})
	}

	span.SetAttributes(
		attribute.String("round.id", env.RoundID.String()),
		attribute.Int("round.winner", winner),
		attribute.Int64("round.duration_ms", env.TimeMS),
		attribute.Int("round.ticks", env.Ticks),
	)
	env.Log.Debug("round finished", zap.Int("winner", winner), zap.Int64("ms", env.TimeMS), zap.Int("ticks", env.Ticks))
	return res, nil
}
