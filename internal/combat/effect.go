package combat

import "fmt"

type EffectState int

const (
	EffectPending EffectState = iota
	EffectStarted
	EffectActivated
	EffectExpired
)

func (s EffectState) String() string {
	switch s {
	case EffectStarted:
		return "started"
	case EffectActivated:
		return "activated"
	case EffectExpired:
		return "expired"
	}
	return "pending"
}

// TeamFilter selects which units an effect hit-tests, relative to its source.
type TeamFilter int

const (
	TargetEnemies TeamFilter = iota
	TargetAllies
	TargetAll
)

// anyTeam is the resolved team for TargetAll.
const anyTeam = -1

// CollisionFn runs for every unit an effect resolves against. dmg is nil
// when the effect carries no damage calculation.
type CollisionFn func(env *Env, e *EffectBase, with *Unit, dmg *DamageResult)

// BonusPayload is a ledger entry granted on hit. A positive DurationMS
// expires the variables that long after application.
type BonusPayload struct {
	Key        string
	DurationMS int64
	Vars       []BonusVariable
}

// EffectBase carries the lifecycle and payload shared by every effect kind.
// Relative delays are turned into absolute times when the effect is queued.
type EffectBase struct {
	ID     int
	HitID  string
	Source UnitID
	Spell  *Spell
	Team   TeamFilter

	// StartsAfterMS defaults to the spell's cast time when a spell is given.
	StartsAfterMS    int64
	ActivatesAfterMS int64
	// ExpiresAfterMS is measured from activation; zero applies a single time.
	ExpiresAfterMS int64

	StartsAtMS    int64
	ActivatesAtMS int64
	ExpiresAtMS   int64

	DamageCalculation  Calculation
	BonusCalculations  []Calculation
	DamageModifier     *DamageModifier
	ModifiesOnMultiHit bool
	SourceType         SourceType
	IsAoE              bool
	Bonuses            *BonusPayload
	StatusEffects      []StatusPayload

	OnStart    func(env *Env, e *EffectBase)
	OnActivate func(env *Env, e *EffectBase)
	OnCollided CollisionFn

	state        EffectState
	targetTeam   int
	persistent   bool
	collidedWith []UnitID
}

// Effect is a battlefield entity advanced once per tick. Update returning
// false removes it at the end of the tick.
type Effect interface {
	Base() *EffectBase
	Update(env *Env) bool
	prepare(env *Env)
}

func (e *EffectBase) Base() *EffectBase  { return e }
func (e *EffectBase) State() EffectState { return e.state }

// CollidedWith lists the units this effect has already resolved against.
func (e *EffectBase) CollidedWith() []UnitID { return e.collidedWith }

// Expire prunes the effect regardless of its clock.
func (e *EffectBase) Expire() { e.state = EffectExpired }

func (e *EffectBase) init(env *Env, src *Unit, spell *Spell) {
	env.nextEffectID++
	e.ID = env.nextEffectID
	e.Spell = spell
	if src != nil {
		e.Source = src.ID
	}
	switch {
	case spell != nil && src != nil:
		e.HitID = fmt.Sprintf("%d:%s:%d", src.ID, spell.Key, src.castCount)
	default:
		e.HitID = fmt.Sprintf("e%d", e.ID)
	}
	e.targetTeam = anyTeam
	if src != nil {
		switch e.Team {
		case TargetEnemies:
			e.targetTeam = src.OpposingTeam()
		case TargetAllies:
			e.targetTeam = src.Team
		}
	}
	if e.SourceType == 0 {
		e.SourceType = SourceSpell
	}
	if e.StartsAfterMS == 0 && spell != nil {
		e.StartsAfterMS = DefaultCastMS
		if spell.CastTimeMS > 0 {
			e.StartsAfterMS = spell.CastTimeMS
		}
	}
	e.StartsAtMS = env.TimeMS + e.StartsAfterMS
	e.ActivatesAtMS = e.StartsAtMS + e.ActivatesAfterMS
	e.ExpiresAtMS = e.ActivatesAtMS + e.ExpiresAfterMS
	if e.DamageModifier != nil {
		m := *e.DamageModifier
		e.DamageModifier = &m
	}
	e.state = EffectPending
}

// advance runs the lifecycle. active reports whether hit-testing may run
// this tick.
func (e *EffectBase) advance(env *Env) (alive, active bool) {
	now := env.TimeMS
	switch e.state {
	case EffectExpired:
		return false, false
	case EffectActivated:
		if !e.persistent && now > e.ExpiresAtMS {
			e.state = EffectExpired
			return false, false
		}
		return true, true
	}
	if e.state == EffectPending {
		if now < e.StartsAtMS {
			return true, false
		}
		e.state = EffectStarted
		if e.OnStart != nil {
			e.OnStart(env, e)
		}
	}
	if now < e.ActivatesAtMS {
		return true, false
	}
	e.state = EffectActivated
	if e.OnActivate != nil {
		e.OnActivate(env, e)
	}
	return e.state != EffectExpired, e.state != EffectExpired
}

// singleShot reports whether the effect should resolve on one tick only.
func (e *EffectBase) singleShot() bool { return e.ExpiresAfterMS <= 0 }

func (e *EffectBase) hasCollided(id UnitID) bool {
	for _, c := range e.collidedWith {
		if c == id {
			return true
		}
	}
	return false
}

func (e *EffectBase) hitsTeam(team int) bool {
	return e.targetTeam == anyTeam || e.targetTeam == team
}

// apply resolves the effect against unit at most once. ok is false when the
// unit was already resolved against.
func (e *EffectBase) apply(env *Env, src, unit *Unit) (res *DamageResult, ok bool) {
	if e.hasCollided(unit.ID) {
		return nil, false
	}
	if e.DamageCalculation != nil {
		var mod *DamageModifier
		if e.DamageModifier != nil && (!e.ModifiesOnMultiHit || unit.wasHitBy(e.HitID)) {
			mod = e.DamageModifier
		}
		res = unit.Damage(env, Hit{
			Source:     src,
			SourceType: e.SourceType,
			Calc:       e.DamageCalculation,
			IsOriginal: true,
			IsAoE:      e.IsAoE,
			Modifier:   mod,
		})
	}
	for _, calc := range e.BonusCalculations {
		unit.Damage(env, Hit{Source: src, SourceType: SourceBonus, Calc: calc, IsAoE: e.IsAoE})
	}
	if res == nil || !res.SpellShielded {
		if b := e.Bonuses; b != nil {
			vars := append([]BonusVariable(nil), b.Vars...)
			if b.DurationMS > 0 {
				for i := range vars {
					vars[i].ExpiresAtMS = env.TimeMS + b.DurationMS
				}
			}
			unit.Bonuses.Set(b.Key, vars...)
		}
		for _, st := range e.StatusEffects {
			unit.ApplyStatus(env, st.Kind, st.DurationMS, st.Amount)
		}
		if e.OnCollided != nil {
			e.OnCollided(env, e, unit, res)
		}
	}
	e.collidedWith = append(e.collidedWith, unit.ID)
	unit.hitBy = append(unit.hitBy, e.HitID)
	return res, true
}

func (u *Unit) wasHitBy(hitID string) bool {
	for _, h := range u.hitBy {
		if h == hitID {
			return true
		}
	}
	return false
}
