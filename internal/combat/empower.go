package combat

import "go.uber.org/zap"

type StatusPayload struct {
	Kind       StatusKind
	DurationMS int64
	Amount     float64
}

type Bounce struct {
	BouncesRemaining  int
	DamageCalculation Calculation
	DamageModifier    *DamageModifier
	HexRange          int
}

// EmpoweredAuto modifies upcoming basic attacks. Amount is how many autos it
// applies to; ActivatesAfterAmount skips that many autos first; NthAuto
// restricts it to every nth auto.
type EmpoweredAuto struct {
	Key                  string
	Amount               int
	ActivatesAfterAmount int
	NthAuto              int
	ExpiresAtMS          int64

	DamageModifier    *DamageModifier
	BonusCalculations []Calculation
	StatusEffects     []StatusPayload
	Bounce            *Bounce

	Missile                *Missile
	ReturnMissile          *Missile
	DamageCalculation      Calculation
	StackingDamageModifier *DamageModifier
	Bonuses                *BonusPayload
	DestroysOnCollision    *bool
	HexEffect              *CellsPayload
	OnCollided             CollisionFn
	OnActivate             func(env *Env, u *Unit)
}

func (u *Unit) AddEmpoweredAuto(e *EmpoweredAuto) {
	if e.Amount <= 0 {
		e.Amount = 1
	}
	u.empowered = append(u.empowered, e)
}

func (u *Unit) EmpoweredAutos() []*EmpoweredAuto { return u.empowered }

func (u *Unit) empowerApplies(e *EmpoweredAuto) bool {
	if e.NthAuto > 0 && !u.isNthBasicAttack(e.NthAuto, 0) {
		return false
	}
	return e.ActivatesAfterAmount <= 0
}

// mergeEmpoweredAutos folds every applicable empowered auto into one. For
// exclusive fields the earliest queued source wins and later ones are logged.
func (u *Unit) mergeEmpoweredAutos(env *Env) *EmpoweredAuto {
	merged := &EmpoweredAuto{}
	owner := map[string]string{}
	claim := func(field string, e *EmpoweredAuto) bool {
		if prev, taken := owner[field]; taken {
			env.Log.Warn("conflicting empowered auto field",
				zap.Int("unit", int(u.ID)), zap.String("field", field),
				zap.String("kept", prev), zap.String("dropped", e.Key))
			return false
		}
		owner[field] = e.Key
		return true
	}

	live := u.empowered[:0]
	for _, e := range u.empowered {
		if e.ExpiresAtMS > 0 && env.TimeMS >= e.ExpiresAtMS {
			continue
		}
		live = append(live, e)
	}
	u.empowered = live

	for _, e := range u.empowered {
		if !u.empowerApplies(e) {
			continue
		}
		if e.DamageModifier != nil {
			if merged.DamageModifier == nil {
				merged.DamageModifier = &DamageModifier{}
			}
			merged.DamageModifier.Stack(*e.DamageModifier)
		}
		merged.BonusCalculations = append(merged.BonusCalculations, e.BonusCalculations...)
		merged.StatusEffects = append(merged.StatusEffects, e.StatusEffects...)
		if e.Bounce != nil {
			if merged.Bounce == nil {
				merged.Bounce = &Bounce{}
			}
			merged.Bounce.merge(*e.Bounce)
		}
		if e.Missile != nil && claim("missile", e) {
			merged.Missile = e.Missile
		}
		if e.ReturnMissile != nil && claim("returnMissile", e) {
			merged.ReturnMissile = e.ReturnMissile
		}
		if e.DamageCalculation != nil && claim("damageCalculation", e) {
			merged.DamageCalculation = e.DamageCalculation
		}
		if e.StackingDamageModifier != nil && claim("stackingDamageModifier", e) {
			merged.StackingDamageModifier = e.StackingDamageModifier
		}
		if e.Bonuses != nil && claim("bonuses", e) {
			merged.Bonuses = e.Bonuses
		}
		if e.DestroysOnCollision != nil && claim("destroysOnCollision", e) {
			merged.DestroysOnCollision = e.DestroysOnCollision
		}
		if e.HexEffect != nil && claim("hexEffect", e) {
			merged.HexEffect = e.HexEffect
		}
		if e.OnCollided != nil && claim("onCollided", e) {
			merged.OnCollided = e.OnCollided
		}
	}
	if merged.Bounce != nil && merged.Bounce.BouncesRemaining <= 0 {
		merged.Bounce = nil
	}
	return merged
}

func (b *Bounce) merge(o Bounce) {
	b.BouncesRemaining = max(b.BouncesRemaining, o.BouncesRemaining)
	b.HexRange = max(b.HexRange, o.HexRange)
	if b.DamageCalculation == nil {
		b.DamageCalculation = o.DamageCalculation
	}
	if b.DamageModifier == nil {
		b.DamageModifier = o.DamageModifier
	}
}

// consumeEmpoweredAutos spends one charge from every applicable entry.
func (u *Unit) consumeEmpoweredAutos(env *Env) {
	var spent []*EmpoweredAuto
	out := make([]*EmpoweredAuto, 0, len(u.empowered))
	for _, e := range u.empowered {
		switch {
		case e.NthAuto > 0 && !u.isNthBasicAttack(e.NthAuto, 0):
		case e.ActivatesAfterAmount > 0:
			e.ActivatesAfterAmount--
		case e.Amount > 1:
			e.Amount--
		default:
			spent = append(spent, e)
			continue
		}
		out = append(out, e)
	}
	u.empowered = out
	for _, e := range spent {
		if e.OnActivate != nil {
			e.OnActivate(env, u)
		}
	}
}
