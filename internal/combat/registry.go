package combat

import "go.uber.org/zap"

// Spell is the per-champion data handed to Cast/Passive hooks.
type Spell struct {
	Key        string
	CastTimeMS int64
	Missile    *Missile
	Vars       map[string]float64
	Calcs      map[string]Calculation
}

// Var returns a spell variable, logging and yielding 0 when it is missing.
func (s *Spell) Var(env *Env, name string) float64 {
	if s == nil {
		return 0
	}
	v, ok := s.Vars[name]
	if !ok {
		env.Log.Warn("missing spell variable", zap.String("spell", s.Key), zap.String("var", name))
	}
	return v
}

// Calc returns a named calculation, or nil with a warning.
func (s *Spell) Calc(env *Env, name string) Calculation {
	if s == nil {
		return nil
	}
	c, ok := s.Calcs[name]
	if !ok {
		env.Log.Warn("missing spell calculation", zap.String("spell", s.Key), zap.String("calc", name))
	}
	return c
}

// ChampionEffects are a champion's ability callbacks. Cast returning false
// means nothing valid was found; mana and cooldown are not consumed.
type ChampionEffects struct {
	Cast         func(env *Env, spell *Spell, u *Unit) bool
	Passive      func(env *Env, spell *Spell, target, source *Unit, dmg *DamageResult)
	PassiveCasts bool
}

type ItemEffects struct {
	Modify        func(env *Env, r *DamageResult, holder, target *Unit)
	DamageDealt   func(env *Env, r DamageResult, holder, target *Unit)
	DamageTaken   func(env *Env, r DamageResult, holder, source *Unit)
	BasicAttack   func(env *Env, target, holder *Unit)
	Cast          func(env *Env, holder *Unit)
	DeathOfHolder func(env *Env, holder *Unit)
	HPThreshold   *HPThreshold
}

type TraitEffects struct {
	Modify      func(env *Env, syn *Synergy, r *DamageResult, holder, target *Unit)
	DamageDealt func(env *Env, syn *Synergy, r DamageResult, holder, target *Unit)
	DamageTaken func(env *Env, syn *Synergy, r DamageResult, holder, source *Unit)
	BasicAttack func(env *Env, syn *Synergy, target, holder *Unit)
	Cast        func(env *Env, syn *Synergy, caster *Unit)
	AllyDeath   func(env *Env, syn *Synergy, dead *Unit, team int)
	EnemyDeath  func(env *Env, syn *Synergy, dead *Unit, team int)
	HPThreshold *HPThreshold
}

type AugmentEffects struct {
	Modify      func(env *Env, r *DamageResult, holder, target *Unit)
	DamageDealt func(env *Env, r DamageResult, holder, target *Unit)
	DamageTaken func(env *Env, r DamageResult, holder, source *Unit)
	Cast        func(env *Env, caster *Unit)
	AllyDeath   func(env *Env, dead *Unit, team int)
	EnemyDeath  func(env *Env, dead *Unit, team int)
	HealShield  func(env *Env, amount float64, target, source *Unit)
	HPThreshold *HPThreshold
}

// Synergy is an active trait breakpoint for a team. A Team synergy applies
// its variables to every unit of the team, trait or not.
type Synergy struct {
	Key   string
	Level int
	Team  bool
	Vars  map[string]float64
}

// HPThreshold fires once per round when health first falls to Percent of
// max. DamageReduction (percent) applies to the overflow of the crossing hit.
type HPThreshold struct {
	Percent         float64
	DamageReduction float64
	OnTrigger       func(env *Env, u *Unit)
}

// Registry maps content keys to their hook tables.
type Registry struct {
	Champions map[string]ChampionEffects
	Items     map[string]ItemEffects
	Traits    map[string]TraitEffects
	Augments  map[string]AugmentEffects
	Solver    Solver
	// CanCrit decides crit eligibility for magic and true damage.
	CanCrit func(source *Unit, r *DamageResult) bool
}

func NewRegistry() *Registry {
	return &Registry{
		Champions: map[string]ChampionEffects{},
		Items:     map[string]ItemEffects{},
		Traits:    map[string]TraitEffects{},
		Augments:  map[string]AugmentEffects{},
		Solver:    StatSolver{},
		CanCrit:   SpellCritPolicy,
	}
}

// SpellCritPolicy lets magic and true damage crit when the source has SpellCrit.
func SpellCritPolicy(source *Unit, r *DamageResult) bool {
	return source != nil && source.Bonus(StatSpellCrit) > 0
}

func (r *Registry) canCrit(source *Unit, res *DamageResult) bool {
	if res.DamageType == DamagePhysical {
		return true
	}
	if r.CanCrit == nil {
		return false
	}
	return r.CanCrit(source, res)
}
