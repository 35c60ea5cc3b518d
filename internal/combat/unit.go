package combat

import (
	"math"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"autobattle/internal/hex"
)

type BaseStats struct {
	HP             float64 `json:"hp"`
	AD             float64 `json:"ad"`
	Armor          float64 `json:"armor"`
	MagicResist    float64 `json:"magic_resist"`
	AttackSpeed    float64 `json:"attack_speed"`
	Range          int     `json:"range"`
	MoveSpeed      float64 `json:"move_speed"`
	Mana           float64 `json:"mana"`
	MaxMana        float64 `json:"max_mana"`
	CritChance     float64 `json:"crit_chance"`
	CritMultiplier float64 `json:"crit_multiplier"`
}

// Missile speeds are in league units per second; Width is a diameter in
// league units.
type Missile struct {
	Name         string
	SpeedInitial float64
	Acceleration float64
	SpeedMin     float64
	SpeedMax     float64
	Width        float64
}

// UnitDef is the static champion data a placement is built from.
type UnitDef struct {
	Key             string
	Name            string
	Stats           BaseStats
	Traits          []string
	Spell           *Spell
	AttackMissile   *Missile
	JumpsToBackline bool
}

// Item is an equipped item: its key for hook lookup plus flat stat bonuses.
type Item struct {
	Key   string
	Stats []BonusVariable
}

type pendingBonus struct {
	atMS int64
	key  string
	vars []BonusVariable
}

type thresholdRef struct {
	key string
	th  *HPThreshold
}

// Unit is a combatant. Identity and placement survive Reset; everything
// else is recomputed per round.
type Unit struct {
	ID       UnitID
	Def      UnitDef
	Team     int
	Star     int
	Items    []Item
	StartHex hex.Coord

	ActiveHex hex.Coord
	Coord     hex.Vec2

	Bonuses Ledger
	Status  StatusTable

	health    float64
	healthMax float64
	mana      float64
	dead      bool
	target    UnitID

	starMult  float64
	synergies []*Synergy
	traits    []string

	empowered      []*EmpoweredAuto
	scalings       []*Scaling
	shields        []*Shield
	bleeds         []*Bleed
	pendingBonuses []pendingBonus
	thresholds     []thresholdRef
	hitBy          []string

	moving               bool
	customMoveSpeed      float64
	onMoveComplete       func(env *Env, u *Unit)
	movesBeforeDropping  int
	wasInRange           bool
	jumped               bool
	attackStarted        bool
	attackStartAtMS      int64
	basicAttackCount     int
	manaLockUntilMS      int64
	performActionUntilMS int64
	castCount            int

	DamageDealt float64
	DamageTaken float64
	Healed      float64
	Casts       int
	Kills       int
}

// NewUnit places a champion. The ID is assigned when the unit joins an Env.
func NewUnit(def UnitDef, start hex.Coord, team, star int, items ...Item) *Unit {
	if star < 1 {
		star = 1
	}
	u := &Unit{Def: def, Team: team, Star: star, Items: items, StartHex: start}
	u.ActiveHex = start
	u.Coord = hex.ToPoint(start)
	u.starMult = math.Pow(1.8, float64(star-1))
	return u
}

// Reset re-derives every base stat and clears all transient state.
func (u *Unit) Reset(env *Env) {
	u.starMult = math.Pow(1.8, float64(u.Star-1))
	u.dead = false
	u.target = 0
	u.ActiveHex = u.StartHex
	u.Coord = hex.ToPoint(u.StartHex)
	u.Status.Reset()
	u.Bonuses.Clear()
	u.empowered = nil
	u.scalings = nil
	u.shields = nil
	u.bleeds = nil
	u.pendingBonuses = nil
	u.thresholds = nil
	u.hitBy = nil
	u.moving = false
	u.customMoveSpeed = 0
	u.onMoveComplete = nil
	u.movesBeforeDropping = MovesBeforeDropping
	u.wasInRange = false
	u.jumped = false
	u.attackStarted = false
	u.attackStartAtMS = 0
	u.basicAttackCount = 0
	u.manaLockUntilMS = 0
	u.performActionUntilMS = 0
	u.castCount = 0
	u.DamageDealt, u.DamageTaken, u.Healed = 0, 0, 0
	u.Casts, u.Kills = 0, 0

	u.traits = append([]string(nil), u.Def.Traits...)
	u.synergies = nil
	for _, syn := range env.Synergies[u.Team] {
		if !syn.Team && !u.HasTrait(syn.Key) {
			continue
		}
		u.synergies = append(u.synergies, syn)
		u.Bonuses.Set(syn.Key, varsOf(syn.Vars)...)
		if te, ok := env.Registry.Traits[syn.Key]; ok && te.HPThreshold != nil {
			u.thresholds = append(u.thresholds, thresholdRef{key: syn.Key, th: te.HPThreshold})
		}
	}
	for i, it := range u.Items {
		u.Bonuses.Add(it.Key, it.Stats...)
		if ie, ok := env.Registry.Items[it.Key]; ok && ie.HPThreshold != nil {
			u.thresholds = append(u.thresholds, thresholdRef{key: itemKey(i, it.Key), th: ie.HPThreshold})
		}
	}
	for _, key := range env.Augments[u.Team] {
		if ae, ok := env.Registry.Augments[key]; ok && ae.HPThreshold != nil {
			u.thresholds = append(u.thresholds, thresholdRef{key: "augment:" + key, th: ae.HPThreshold})
		}
	}

	u.healthMax = (u.Def.Stats.HP*u.starMult + u.Bonus(StatHealth)) * (1 + u.Bonus(StatHPMultiplier))
	u.health = u.healthMax
	u.mana = math.Min(u.MaxMana(), u.Def.Stats.Mana+u.Bonus(StatMana))
}

func itemKey(index int, key string) string {
	return key + "#" + strconv.Itoa(index)
}

// varsOf converts a synergy's variables in a stable order.
func varsOf(m map[string]float64) []BonusVariable {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]BonusVariable, 0, len(keys))
	for _, k := range keys {
		out = append(out, BonusVariable{Stat: Stat(k), Amount: m[k]})
	}
	return out
}

func (u *Unit) Name() string {
	if u.Def.Name != "" {
		return u.Def.Name
	}
	return u.Def.Key
}

func (u *Unit) Health() float64       { return u.health }
func (u *Unit) HealthMax() float64    { return u.healthMax }
func (u *Unit) Mana() float64         { return u.mana }
func (u *Unit) Dead() bool            { return u.dead }
func (u *Unit) Moving() bool          { return u.moving }
func (u *Unit) TargetID() UnitID      { return u.target }
func (u *Unit) CastCount() int        { return u.castCount }
func (u *Unit) Synergies() []*Synergy { return u.synergies }
func (u *Unit) OpposingTeam() int     { return 1 - u.Team }

func (u *Unit) HasTrait(key string) bool {
	for _, t := range u.traits {
		if t == key {
			return true
		}
	}
	return false
}

func (u *Unit) HasItem(key string) bool {
	for _, it := range u.Items {
		if it.Key == key {
			return true
		}
	}
	return false
}

// SetHealth clamps to [0, healthMax]. It never kills; use Damage or Die.
func (u *Unit) SetHealth(v float64) {
	u.health = math.Max(0, math.Min(u.healthMax, v))
}

func (u *Unit) SetMana(v float64) {
	u.mana = math.Max(0, math.Min(u.MaxMana(), v))
}

// IncreaseMaxHealth raises both max and current health.
func (u *Unit) IncreaseMaxHealth(amount float64) {
	u.healthMax += amount
	u.health += amount
}

func (u *Unit) HealthProportion() float64 {
	if u.healthMax <= 0 {
		return 0
	}
	return u.health / u.healthMax
}

// Bonus sums every star variant of s in the ledger.
func (u *Unit) Bonus(s Stat) float64 {
	return u.Bonuses.Sum(s.Variants(u.Star)...)
}

func (u *Unit) AttackDamage() float64 {
	return u.Def.Stats.AD*u.starMult*(1+u.Bonus(StatAttackDamagePercent)) + u.Bonus(StatAttackDamage)
}

func (u *Unit) AbilityPower() float64 { return 100 + u.Bonus(StatAbilityPower) }
func (u *Unit) Armor() float64        { return u.Def.Stats.Armor + u.Bonus(StatArmor) }
func (u *Unit) MagicResist() float64  { return u.Def.Stats.MagicResist + u.Bonus(StatMagicResist) }
func (u *Unit) MaxMana() float64      { return u.Def.Stats.MaxMana + u.Bonus(StatMaxMana) }
func (u *Unit) MoveSpeed() float64    { return u.Def.Stats.MoveSpeed + u.Bonus(StatMoveSpeed) }
func (u *Unit) Range() int            { return u.Def.Stats.Range + int(u.Bonus(StatHexRangeIncrease)) }
func (u *Unit) CritChance() float64   { return u.Def.Stats.CritChance + u.Bonus(StatCritChance) }
// CritMultiplier converts crit chance past 100% into extra multiplier.
func (u *Unit) CritMultiplier() float64 {
	return u.Def.Stats.CritMultiplier + u.Bonus(StatCritMultiplier) + math.Max(0, u.CritChance()-1)
}
func (u *Unit) CritReduction() float64   { return u.Bonus(StatCritReduction) / 100 }
func (u *Unit) Dodge() float64           { return u.Bonus(StatDodgeChance) / 100 }
func (u *Unit) DodgePrevention() float64 { return u.Bonus(StatDodgePrevention) / 100 }

// AttackSpeed is attacks per second, bounded to [0.2, 5].
func (u *Unit) AttackSpeed() float64 {
	as := u.Def.Stats.AttackSpeed * (1 + u.Bonus(StatAttackSpeed)/100)
	return math.Max(0.2, math.Min(5, as))
}

// Vamp is the percent of damage dealt returned to the source as healing.
func (u *Unit) Vamp(r *DamageResult) float64 {
	v := u.Bonus(StatVampOmni)
	switch r.SourceType {
	case SourceAttack:
		if r.DamageType == DamagePhysical {
			v += u.Bonus(StatVampPhysical)
		}
	case SourceSpell:
		v += u.Bonus(StatVampSpell)
	}
	return v
}

// StatValue reads a derived stat for calculations.
func (u *Unit) StatValue(s Stat) (float64, error) {
	switch s {
	case StatAttackDamage:
		return u.AttackDamage(), nil
	case StatAbilityPower:
		return u.AbilityPower(), nil
	case StatArmor:
		return u.Armor(), nil
	case StatMagicResist:
		return u.MagicResist(), nil
	case StatAttackSpeed:
		return u.AttackSpeed(), nil
	case StatHealth:
		return u.healthMax, nil
	case StatMaxMana:
		return u.MaxMana(), nil
	case StatMoveSpeed:
		return u.MoveSpeed(), nil
	}
	if !s.Known() {
		return 0, ErrUnknownStat
	}
	return u.Bonus(s), nil
}

// QueueBonus adds an entry under key once startsAfterMS has elapsed.
func (u *Unit) QueueBonus(env *Env, startsAfterMS int64, key string, vars ...BonusVariable) {
	u.pendingBonuses = append(u.pendingBonuses, pendingBonus{atMS: env.TimeMS + startsAfterMS, key: key, vars: vars})
}

func (u *Unit) updateBonuses(env *Env) {
	out := u.pendingBonuses[:0]
	for _, pb := range u.pendingBonuses {
		if env.TimeMS >= pb.atMS {
			u.Bonuses.Add(pb.key, pb.vars...)
			continue
		}
		out = append(out, pb)
	}
	u.pendingBonuses = out
	u.Bonuses.Prune(env.TimeMS)
}

// ApplyStatus routes through the table and logs blocked applications.
func (u *Unit) ApplyStatus(env *Env, kind StatusKind, durationMS int64, amount float64) bool {
	ok := u.Status.Apply(env.TimeMS, kind, durationMS, amount)
	if !ok {
		env.Log.Debug("status blocked", zap.Int("unit", int(u.ID)), zap.Stringer("status", kind))
		return false
	}
	env.emit(Event{T: env.TimeMS, Type: "Status", Payload: map[string]any{
		"unit": u.ID, "status": kind.String(), "until": u.Status[kind].ExpiresAtMS,
	}})
	return true
}

func (u *Unit) updateStatuses(env *Env) {
	u.Status.Update(env.TimeMS)
	u.checkStunFloor()
}

// checkStunFloor clears a detain stun once health reaches its floor.
func (u *Unit) checkStunFloor() {
	st := &u.Status[StatusStunned]
	if st.Active && st.Amount > 0 && u.health <= st.Amount {
		u.Status.Clear(StatusStunned)
	}
}

// ClearNegativeEffects removes every CC and reduction status.
func (u *Unit) ClearNegativeEffects() {
	for _, k := range []StatusKind{StatusStunned, StatusSilenced, StatusAttackSpeedSlow, StatusArmorReduction, StatusMagicResistReduction, StatusGrievousWounds} {
		u.Status.Clear(k)
	}
}

func (u *Unit) Interactable() bool { return !u.dead && !u.Status.Active(StatusBanished) }
func (u *Unit) Attackable() bool   { return u.Interactable() && !u.Status.Active(StatusStealth) }
func (u *Unit) Collides() bool     { return !u.dead }

// CanPerformAction is false while stunned, moving or locked by a cast.
func (u *Unit) CanPerformAction(now int64) bool {
	return !u.dead && !u.moving && u.Def.Stats.Range > 0 && !u.Status.Active(StatusStunned) && u.performActionUntilMS <= now
}

func (u *Unit) HexDistanceTo(o *Unit) int { return hex.Distance(u.ActiveHex, o.ActiveHex) }

// GainHealth heals, applying grievous wounds and the healer's heal boost
// when isHeal. Without a source u boosts its own healing.
func (u *Unit) GainHealth(env *Env, source *Unit, amount float64, isHeal bool) {
	if u.dead || amount <= 0 {
		return
	}
	if source != nil {
		for _, key := range env.Augments[u.Team] {
			if ae, ok := env.Registry.Augments[key]; ok && ae.HealShield != nil {
				ae.HealShield(env, amount, u, source)
			}
		}
	}
	if isHeal {
		booster := u
		if source != nil {
			booster = source
		}
		amount *= 1 + booster.Bonus(StatHealShieldBoost)
		if u.Status.Active(StatusGrievousWounds) {
			cut := u.Status[StatusGrievousWounds].Amount
			if cut <= 0 || cut > 1 {
				cut = 0.5
			}
			amount *= 1 - cut
		}
	}
	before := u.health
	u.SetHealth(u.health + amount)
	u.Healed += u.health - before
}

// GainMana is ignored during a mana lock.
func (u *Unit) GainMana(env *Env, amount float64) {
	if env.TimeMS < u.manaLockUntilMS {
		return
	}
	u.SetMana(u.mana + amount)
}

// Die marks the unit dead and runs death hooks. Calling it twice is an error.
func (u *Unit) Die(env *Env, source *Unit) error {
	if u.dead {
		env.Log.Warn("double death", zap.Int("unit", int(u.ID)), zap.Int64("ms", env.TimeMS))
		return ErrAlreadyDead
	}
	u.dead = true
	u.health = 0
	u.moving = false
	u.onMoveComplete = nil
	if source != nil && source != u {
		source.Kills++
	}
	env.emit(Event{T: env.TimeMS, Type: "Death", Payload: map[string]any{"unit": u.ID, "name": u.Name()}})

	bleeds := u.bleeds
	u.bleeds = nil
	for _, b := range bleeds {
		if b.OnDeath != nil {
			b.OnDeath(env, b, u)
		}
	}
	for _, it := range u.Items {
		if ie, ok := env.Registry.Items[it.Key]; ok && ie.DeathOfHolder != nil {
			ie.DeathOfHolder(env, u)
		}
	}

	if len(env.AliveUnits(u.Team)) == 0 {
		env.eliminate(u.Team)
		return nil
	}
	for team := 0; team < 2; team++ {
		for _, syn := range env.Synergies[team] {
			te, ok := env.Registry.Traits[syn.Key]
			if !ok {
				continue
			}
			if team == u.Team && te.AllyDeath != nil {
				te.AllyDeath(env, syn, u, team)
			} else if team != u.Team && te.EnemyDeath != nil {
				te.EnemyDeath(env, syn, u, team)
			}
		}
		for _, key := range env.Augments[team] {
			ae, ok := env.Registry.Augments[key]
			if !ok {
				continue
			}
			if team == u.Team && ae.AllyDeath != nil {
				ae.AllyDeath(env, u, team)
			} else if team != u.Team && ae.EnemyDeath != nil {
				ae.EnemyDeath(env, u, team)
			}
		}
	}
	return nil
}
