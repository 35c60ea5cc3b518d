package combat

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"autobattle/internal/hex"
)

// Uniform yields values in [0, 1). *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// Env is the round context: clock, roster, effect pool, RNG and the
// round-scoped tables. Create one per round.
type Env struct {
	RoundID  uuid.UUID
	TimeMS   int64
	DeltaMS  int64
	Ticks    int
	Rng      Uniform
	Log      *zap.Logger
	Registry *Registry
	Board    hex.Board

	Synergies [2][]*Synergy
	Augments  [2][]string

	units        []*Unit
	byID         map[UnitID]*Unit
	effects      []Effect
	pending      []Effect
	nextEffectID int
	nextUnitID   UnitID

	thresholds map[string]bool
	cooldowns  map[string]int64
	eliminated [2]bool

	record bool
	events []Event
}

// NewEnv builds an empty round. A nil registry or logger is replaced with a
// default.
func NewEnv(rng Uniform, reg *Registry, log *zap.Logger) *Env {
	if reg == nil {
		reg = NewRegistry()
	}
	if reg.Solver == nil {
		reg.Solver = StatSolver{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Env{
		Rng:        rng,
		Log:        log,
		Registry:   reg,
		Board:      hex.DefaultBoard(),
		byID:       map[UnitID]*Unit{},
		thresholds: map[string]bool{},
		cooldowns:  map[string]int64{},
	}
}

// Record switches the event timeline on or off.
func (env *Env) Record(on bool) { env.record = on }

func (env *Env) Events() []Event { return env.events }

// AddUnit joins u to the roster, assigning an ID when it has none.
func (env *Env) AddUnit(u *Unit) error {
	if u.ID == 0 {
		env.nextUnitID++
		u.ID = env.nextUnitID
	}
	if _, dup := env.byID[u.ID]; dup {
		return fmt.Errorf("add unit %d: duplicate id", u.ID)
	}
	if !env.Board.InBounds(u.StartHex) {
		return fmt.Errorf("add unit %s: start hex %v outside board", u.Name(), u.StartHex)
	}
	env.nextUnitID = max(env.nextUnitID, u.ID)
	env.units = append(env.units, u)
	env.byID[u.ID] = u
	return nil
}

func (env *Env) Units() []*Unit { return env.units }

// Unit looks up a roster member. Zero and unknown ids yield nil.
func (env *Env) Unit(id UnitID) *Unit {
	if id == 0 {
		return nil
	}
	return env.byID[id]
}

// MustUnit is Unit with an error for unknown ids.
func (env *Env) MustUnit(id UnitID) (*Unit, error) {
	u := env.Unit(id)
	if u == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownUnit, id)
	}
	return u, nil
}

func (env *Env) AliveUnits(team int) []*Unit {
	var out []*Unit
	for _, u := range env.units {
		if u.Team == team && !u.dead {
			out = append(out, u)
		}
	}
	return out
}

// Enemies lists the attackable units opposing u.
func (env *Env) Enemies(u *Unit) []*Unit {
	var out []*Unit
	for _, o := range env.units {
		if o.Team != u.Team && o.Attackable() {
			out = append(out, o)
		}
	}
	return out
}

// interactable lists units of team (or every team for anyTeam) that
// effects may resolve against, in roster order.
func (env *Env) interactable(team int) []*Unit {
	var out []*Unit
	for _, u := range env.units {
		if (team == anyTeam || u.Team == team) && u.Interactable() {
			out = append(out, u)
		}
	}
	return out
}

// nearestEnemy picks uniformly among the attackable enemies at minimal hex
// distance. The RNG is consulted only on a tie.
func (env *Env) nearestEnemy(u *Unit) *Unit {
	best := math.MaxInt
	var ties []*Unit
	for _, o := range env.Enemies(u) {
		d := u.HexDistanceTo(o)
		switch {
		case d < best:
			best = d
			ties = append(ties[:0], o)
		case d == best:
			ties = append(ties, o)
		}
	}
	switch len(ties) {
	case 0:
		return nil
	case 1:
		return ties[0]
	}
	i := int(env.Rng.Float64() * float64(len(ties)))
	return ties[min(i, len(ties)-1)]
}

// byDistance returns the interactable unit of team closest to (or farthest
// from) from's position. Ties keep roster order.
func (env *Env) byDistance(from *Unit, team int, farthest bool) *Unit {
	if from == nil {
		return nil
	}
	var pick *Unit
	bestSq := 0.0
	for _, u := range env.interactable(team) {
		if u == from {
			continue
		}
		d := from.Coord.DistSq(u.Coord)
		if pick == nil || (farthest && d > bestSq) || (!farthest && d < bestSq) {
			pick, bestSq = u, d
		}
	}
	return pick
}

// nextBounce finds the closest unhit attackable teammate of from within
// hexRange (0 for unlimited).
func (env *Env) nextBounce(from *Unit, e *EffectBase, hexRange int) *Unit {
	var pick *Unit
	best := math.MaxInt
	for _, u := range env.units {
		if u == from || u.Team != from.Team || !u.Attackable() || e.hasCollided(u.ID) {
			continue
		}
		d := hex.Distance(from.ActiveHex, u.ActiveHex)
		if hexRange > 0 && d > hexRange {
			continue
		}
		if d < best {
			pick, best = u, d
		}
	}
	return pick
}

// occupiedExcept reports cells claimed by colliding units other than u.
func (env *Env) occupiedExcept(u *Unit) func(hex.Coord) bool {
	return func(c hex.Coord) bool {
		for _, o := range env.units {
			if o != u && o.Collides() && o.ActiveHex == c {
				return true
			}
		}
		return false
	}
}

// QueueEffect schedules e. It joins the pool at the start of the next tick,
// which is also its first update.
func (env *Env) QueueEffect(src *Unit, spell *Spell, e Effect) {
	b := e.Base()
	b.init(env, src, spell)
	e.prepare(env)
	env.pending = append(env.pending, e)
}

// Effects lists live effects, excluding those queued this tick.
func (env *Env) Effects() []Effect { return env.effects }

func (env *Env) emit(ev Event) {
	if env.record {
		env.events = append(env.events, ev)
	}
}

func (env *Env) logLine(u *Unit, format string, args ...any) {
	if !env.record {
		return
	}
	payload := map[string]any{"text": fmt.Sprintf(format, args...)}
	if u != nil {
		payload["source"] = u.Name()
		payload["id"] = u.ID
	}
	env.emit(Event{T: env.TimeMS, Type: "LogLine", Payload: payload})
}

func (env *Env) cooldownReady(key string) bool { return env.TimeMS >= env.cooldowns[key] }

func (env *Env) setCooldown(key string, ms int64) { env.cooldowns[key] = env.TimeMS + ms }

// markThreshold records a threshold firing. It returns false if it already fired.
func (env *Env) markThreshold(id UnitID, key string) bool {
	k := strconv.Itoa(int(id)) + "|" + key
	if env.thresholds[k] {
		return false
	}
	env.thresholds[k] = true
	return true
}

func (env *Env) eliminate(team int) {
	if env.eliminated[team] {
		return
	}
	env.eliminated[team] = true
	env.Log.Debug("team eliminated", zap.Int("team", team), zap.Int64("ms", env.TimeMS))
	env.emit(Event{T: env.TimeMS, Type: "Eliminated", Payload: map[string]any{"team": team}})
}

// Over reports whether either team has been eliminated.
func (env *Env) Over() bool { return env.eliminated[0] || env.eliminated[1] }

// Winner is the surviving team, or -1 for a draw or an unfinished round.
func (env *Env) Winner() int {
	switch {
	case env.eliminated[0] && !env.eliminated[1]:
		return 1
	case env.eliminated[1] && !env.eliminated[0]:
		return 0
	}
	return -1
}

// StartRound resets every unit and the round-scoped tables.
func (env *Env) StartRound() {
	env.TimeMS = 0
	env.Ticks = 0
	env.effects = nil
	env.pending = nil
	env.thresholds = map[string]bool{}
	env.cooldowns = map[string]int64{}
	env.eliminated = [2]bool{}
	env.events = nil
	for _, u := range env.units {
		u.Reset(env)
	}
	for team := 0; team < 2; team++ {
		if len(env.AliveUnits(team)) == 0 {
			env.eliminate(team)
		}
	}
}

// Tick advances the clock by diffMS, admits queued effects, updates every
// unit then every effect once, and drops finished effects.
func (env *Env) Tick(diffMS int64) {
	env.DeltaMS = diffMS
	env.TimeMS += diffMS
	env.Ticks++
	env.effects = append(env.effects, env.pending...)
	env.pending = nil
	for _, u := range env.units {
		if env.Over() {
			break
		}
		u.Update(env)
	}
	live := env.effects[:0]
	for _, e := range env.effects {
		if e.Base().state == EffectExpired {
			continue
		}
		if e.Update(env) {
			live = append(live, e)
		} else {
			e.Base().Expire()
		}
	}
	for i := len(live); i < len(env.effects); i++ {
		env.effects[i] = nil
	}
	env.effects = live
}

// Run ticks until a team is eliminated, maxMS elapses, or ctx is done.
func (env *Env) Run(ctx context.Context, diffMS, maxMS int64) (int, error) {
	if diffMS <= 0 {
		return -1, fmt.Errorf("run: tick must be positive, got %d", diffMS)
	}
	for !env.Over() && env.TimeMS < maxMS {
		if env.Ticks%64 == 0 {
			if err := ctx.Err(); err != nil {
				return -1, err
			}
		}
		env.Tick(diffMS)
	}
	return env.Winner(), nil
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}
