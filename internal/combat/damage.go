package combat

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// DamageModifier is an ad-hoc adjustment carried by a single hit.
type DamageModifier struct {
	Increase               float64
	Multiplier             float64
	CritChance             float64
	AlwaysCrits            bool
	IgnoresInvulnerability bool
	DamageType             DamageType
}

// Stack folds o into m: numeric fields add, flags OR, the first type override stays.
func (m *DamageModifier) Stack(o DamageModifier) {
	m.Increase += o.Increase
	m.Multiplier += o.Multiplier
	m.CritChance += o.CritChance
	m.AlwaysCrits = m.AlwaysCrits || o.AlwaysCrits
	m.IgnoresInvulnerability = m.IgnoresInvulnerability || o.IgnoresInvulnerability
	if m.DamageType == DamageNone {
		m.DamageType = o.DamageType
	}
}

// DamageResult is the in-flight and final state of one resolution.
type DamageResult struct {
	IsOriginalSource bool       `json:"original"`
	SourceType       SourceType `json:"source_type"`
	DamageType       DamageType `json:"damage_type"`
	RawDamage        float64    `json:"raw"`
	TakingDamage     float64    `json:"taking"`
	HealthDamage     float64    `json:"health"`
	ArmorShred       float64    `json:"armor_shred,omitempty"`
	MagicResistShred float64    `json:"mr_shred,omitempty"`
	DidCrit          bool       `json:"crit,omitempty"`
	SpellShielded    bool       `json:"spell_shielded,omitempty"`
	Rejected         bool       `json:"rejected,omitempty"`
}

// Hit describes one incoming resolution. Source may be nil.
type Hit struct {
	Source     *Unit
	SourceType SourceType
	Calc       Calculation
	IsOriginal bool
	IsAoE      bool
	Modifier   *DamageModifier
}

// Damage resolves a hit against u. It returns nil if u is already dead.
func (u *Unit) Damage(env *Env, h Hit) *DamageResult {
	if u.dead {
		return nil
	}
	src := h.Source
	mod := DamageModifier{}
	if h.Modifier != nil {
		mod = *h.Modifier
	}
	if h.SourceType == 0 {
		h.SourceType = SourceSpell
	}

	// 1. resolve
	raw, dtype, err := env.Registry.Solver.Solve(src, u, h.Calc)
	if err != nil {
		env.Log.Warn("unresolvable calculation", zap.Error(err), zap.Int("target", int(u.ID)), calcField(h.Calc))
		raw = 0
	}
	if mod.DamageType != DamageNone {
		dtype = mod.DamageType
	}
	res := &DamageResult{IsOriginalSource: h.IsOriginal, SourceType: h.SourceType, DamageType: dtype, RawDamage: raw}

	// 2. modify hooks on the source side
	if src != nil {
		for _, it := range src.Items {
			if ie, ok := env.Registry.Items[it.Key]; ok && ie.Modify != nil {
				ie.Modify(env, res, src, u)
			}
		}
		for _, syn := range src.synergies {
			if te, ok := env.Registry.Traits[syn.Key]; ok && te.Modify != nil {
				te.Modify(env, syn, res, src, u)
			}
		}
		for _, key := range env.Augments[src.Team] {
			if ae, ok := env.Registry.Augments[key]; ok && ae.Modify != nil {
				ae.Modify(env, res, src, u)
			}
		}
	}

	// 3. healing
	if res.DamageType == DamageHeal {
		u.GainHealth(env, src, res.RawDamage, true)
		return res
	}

	spellShieldAmount := 0.0
	if h.IsOriginal && (res.DamageType == DamageMagic || res.DamageType == DamageTrue) {
		if s := u.consumeSpellShield(); s != nil {
			res.SpellShielded = true
			if s.Amount <= 0 {
				res.Rejected = true
				env.logLine(u, "spell shield blocks %s", calcName(h.Calc))
				return res
			}
			spellShieldAmount = s.Amount
		}
	}

	// 4. dodge
	if res.SourceType == SourceAttack {
		prevention := 0.0
		if src != nil {
			prevention = src.DodgePrevention()
		}
		res.RawDamage *= 1 - math.Min(1, math.Max(0, u.Dodge()-prevention))
	}

	// 5. reject
	if res.RawDamage <= 0 {
		res.Rejected = true
		env.Log.Debug("non-positive damage", zap.Int("target", int(u.ID)), calcField(h.Calc), zap.Float64("raw", res.RawDamage))
		return res
	}

	// 6, 7. increase and multiplier
	res.RawDamage = math.Max(0, res.RawDamage+mod.Increase-spellShieldAmount)
	increase := 0.0
	if src != nil {
		increase = src.Bonus(StatDamageIncrease)
	}
	res.RawDamage *= math.Max(0, 1+mod.Multiplier+increase)

	// 8. defense
	defense := 0.0
	switch res.DamageType {
	case DamagePhysical:
		cut := res.ArmorShred + u.Status.Amount(StatusArmorReduction)
		defense = u.Armor() * math.Max(0, 1-cut)
	case DamageMagic:
		cut := res.MagicResistShred + u.Status.Amount(StatusMagicResistReduction)
		defense = u.MagicResist() * math.Max(0, 1-cut)
	}

	// 9. crit
	if env.Registry.canCrit(src, res) {
		chance := mod.CritChance
		mult := 0.0
		if src != nil {
			chance += src.CritChance()
			mult = src.CritMultiplier()
		}
		if mod.AlwaysCrits || (chance > 0 && (chance >= 1 || env.Rng.Float64() < chance)) {
			res.DidCrit = true
			res.RawDamage += res.RawDamage * mult * (1 - u.CritReduction())
		}
	}

	// 10, 11. mitigation
	taking := res.RawDamage
	if res.DamageType != DamageTrue {
		taking *= 100 / (100 + defense)
		dr := math.Min(1, u.Bonus(StatDamageReduction)/100+u.shieldDamageReduction())
		taking *= 1 - dr
		if h.IsAoE {
			if aoe := u.Status.Amount(StatusAoEDamageReduction); aoe > 0 {
				taking *= 1 - math.Min(100, aoe)/100
			}
		}
	}

	// 12. invulnerability
	if u.Status.Active(StatusInvulnerable) && !mod.IgnoresInvulnerability {
		taking = 0
	}
	res.TakingDamage = taking

	// 13. shields, weakest first; active shields strike back at attackers
	if res.SourceType == SourceAttack && src != nil {
		u.shieldRetaliate(env, src)
	}
	healthDamage := taking
	for _, s := range u.activeShields(false) {
		if healthDamage <= 0 {
			break
		}
		healthDamage = s.absorb(healthDamage)
	}
	res.HealthDamage = healthDamage

	// 14. health and mana
	originalHealth := u.health
	u.SetHealth(u.health - healthDamage)
	u.checkStunFloor()
	u.GainMana(env, math.Min(MaxManaFromDamage, res.RawDamage*0.01+taking*0.07))
	u.DamageTaken += taking
	if src != nil {
		src.DamageDealt += taking
	}
	env.emit(Event{T: env.TimeMS, Type: "Damage", Payload: map[string]any{
		"target": u.ID, "source": unitID(src), "type": res.DamageType.String(),
		"source_type": res.SourceType.String(), "raw": res.RawDamage, "taking": taking,
		"health": u.health, "crit": res.DidCrit,
	}})

	// 15. vamp, hooks, thresholds
	if src != nil && !src.dead && taking > 0 {
		if v := src.Vamp(res); v > 0 {
			src.GainHealth(env, src, taking*v/100, true)
		}
	}
	if src != nil && h.IsOriginal {
		for _, it := range src.Items {
			if ie, ok := env.Registry.Items[it.Key]; ok && ie.DamageDealt != nil {
				ie.DamageDealt(env, *res, src, u)
			}
		}
		for _, syn := range src.synergies {
			if te, ok := env.Registry.Traits[syn.Key]; ok && te.DamageDealt != nil {
				te.DamageDealt(env, syn, *res, src, u)
			}
		}
		for _, key := range env.Augments[src.Team] {
			if ae, ok := env.Registry.Augments[key]; ok && ae.DamageDealt != nil {
				ae.DamageDealt(env, *res, src, u)
			}
		}
	}
	for _, it := range u.Items {
		if ie, ok := env.Registry.Items[it.Key]; ok && ie.DamageTaken != nil {
			ie.DamageTaken(env, *res, u, src)
		}
	}
	for _, syn := range u.synergies {
		if te, ok := env.Registry.Traits[syn.Key]; ok && te.DamageTaken != nil {
			te.DamageTaken(env, syn, *res, u, src)
		}
	}
	for _, key := range env.Augments[u.Team] {
		if ae, ok := env.Registry.Augments[key]; ok && ae.DamageTaken != nil {
			ae.DamageTaken(env, *res, u, src)
		}
	}
	if !u.dead {
		u.checkHPThresholds(env, originalHealth, healthDamage)
	}

	// 16. death
	if u.health <= 0 && !u.dead {
		_ = u.Die(env, src)
	}
	return res
}

// checkHPThresholds fires each threshold crossed by this hit, once per round.
// The part of the hit past the threshold is reduced by its DamageReduction.
func (u *Unit) checkHPThresholds(env *Env, originalHealth, healthDamage float64) {
	for _, ref := range u.thresholds {
		thresholdHealth := u.healthMax * ref.th.Percent / 100
		if originalHealth <= thresholdHealth || originalHealth-healthDamage > thresholdHealth {
			continue
		}
		if !env.markThreshold(u.ID, ref.key) {
			continue
		}
		damageAfter := healthDamage - (originalHealth - thresholdHealth)
		u.SetHealth(thresholdHealth - damageAfter*(1-ref.th.DamageReduction/100))
		env.logLine(u, "crosses %.0f%% health threshold (%s)", ref.th.Percent, ref.key)
		if ref.th.OnTrigger != nil {
			ref.th.OnTrigger(env, u)
		}
		originalHealth = thresholdHealth
		healthDamage = thresholdHealth - u.health
	}
}

// shieldRetaliate deals each active shield's BonusDamage to the attacker, at
// most once per ShieldBonusCooldown for every shield and attacker.
func (u *Unit) shieldRetaliate(env *Env, attacker *Unit) {
	for _, s := range u.shields {
		if attacker.dead {
			return
		}
		if s.state != ShieldActive || s.IsSpellShield || s.BonusDamage == nil {
			continue
		}
		key := fmt.Sprintf("%d|%s|%d|BARRIER", u.ID, s.Key, attacker.ID)
		if env.cooldownReady(key) {
			env.setCooldown(key, ShieldBonusCooldown)
			attacker.Damage(env, Hit{Source: u, SourceType: SourceBonus, Calc: s.BonusDamage})
		}
	}
}

// TakeBonusDamage is a non-original, bonus-typed hit.
func (u *Unit) TakeBonusDamage(env *Env, source *Unit, calc Calculation, isAoE bool) *DamageResult {
	return u.Damage(env, Hit{Source: source, SourceType: SourceBonus, Calc: calc, IsAoE: isAoE})
}

func unitID(u *Unit) UnitID {
	if u == nil {
		return 0
	}
	return u.ID
}

func calcName(c Calculation) string {
	if c == nil {
		return "<nil>"
	}
	return c.CalcKey()
}

func calcField(c Calculation) zap.Field { return zap.String("calc", calcName(c)) }
