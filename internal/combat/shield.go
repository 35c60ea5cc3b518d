package combat

import "sort"

type ShieldState int

const (
	ShieldPending ShieldState = iota
	ShieldActive
	ShieldInactive
)

// Shield absorbs damage while active. A repeating shield re-arms every
// RepeatsEveryMS with RepeatAmount (or its original Amount).
type Shield struct {
	Key    string
	Source UnitID

	Amount         float64
	RepeatAmount   float64
	ActivatesAtMS  int64
	ExpiresAfterMS int64
	RepeatsEveryMS int64

	// DamageReduction is a fraction applied to incoming damage while active.
	DamageReduction float64
	IsSpellShield   bool
	BonusDamage     Calculation

	OnRemoved func(env *Env, s *Shield)

	state        ShieldState
	baseAmount   float64
	expiresAtMS  int64
	nextRepeatMS int64
}

func (s *Shield) State() ShieldState { return s.state }
func (s *Shield) Active() bool       { return s.state == ShieldActive }

func (s *Shield) activate(now int64) {
	s.state = ShieldActive
	s.expiresAtMS = 0
	if s.ExpiresAfterMS > 0 {
		s.expiresAtMS = now + s.ExpiresAfterMS
	}
	if s.RepeatsEveryMS > 0 {
		s.nextRepeatMS = now + s.RepeatsEveryMS
	}
}

// update advances the shield and reports whether it should stay attached.
func (s *Shield) update(now int64) bool {
	switch s.state {
	case ShieldPending:
		if now < s.ActivatesAtMS {
			return true
		}
		s.baseAmount = s.Amount
		s.activate(now)
	case ShieldActive:
		if s.expiresAtMS > 0 && now >= s.expiresAtMS {
			s.state = ShieldInactive
			s.Amount = 0
		}
	}
	if s.state == ShieldInactive {
		if s.RepeatsEveryMS <= 0 {
			return false
		}
		if now >= s.nextRepeatMS {
			s.Amount = s.RepeatAmount
			if s.Amount <= 0 {
				s.Amount = s.baseAmount
			}
			s.activate(now)
		}
	}
	return true
}

// absorb takes up to damage from the shield and returns the remainder.
func (s *Shield) absorb(damage float64) float64 {
	if damage <= s.Amount {
		s.Amount -= damage
		damage = 0
	} else {
		damage -= s.Amount
		s.Amount = 0
	}
	if s.Amount <= 0 {
		s.state = ShieldInactive
	}
	return damage
}

// QueueShield attaches a shield. A zero ActivatesAtMS activates on the next
// update. The amount is boosted by the shielding source, or by u without one.
func (u *Unit) QueueShield(env *Env, s *Shield) {
	if s.ActivatesAtMS == 0 {
		s.ActivatesAtMS = env.TimeMS
	}
	booster := u
	if src := env.Unit(s.Source); src != nil {
		booster = src
	}
	s.Amount *= 1 + booster.Bonus(StatHealShieldBoost)
	s.state = ShieldPending
	if s.Key != "" {
		out := u.shields[:0]
		for _, old := range u.shields {
			if old.Key != s.Key {
				out = append(out, old)
			}
		}
		u.shields = out
	}
	u.shields = append(u.shields, s)
	env.emit(Event{T: env.TimeMS, Type: "Shield", Payload: map[string]any{
		"unit": u.ID, "key": s.Key, "amount": s.Amount, "spell": s.IsSpellShield,
	}})
}

func (u *Unit) updateShields(env *Env) {
	out := u.shields[:0]
	for _, s := range u.shields {
		if s.update(env.TimeMS) {
			out = append(out, s)
		} else if s.OnRemoved != nil {
			s.OnRemoved(env, s)
		}
	}
	u.shields = out
}

// Shields lists the attached shields.
func (u *Unit) Shields() []*Shield { return u.shields }

// ShieldAmount sums the absorb amount of active non-spell shields.
func (u *Unit) ShieldAmount() float64 {
	total := 0.0
	for _, s := range u.shields {
		if s.state == ShieldActive && !s.IsSpellShield {
			total += s.Amount
		}
	}
	return total
}

func (u *Unit) activeShields(spell bool) []*Shield {
	var out []*Shield
	for _, s := range u.shields {
		if s.state == ShieldActive && s.IsSpellShield == spell && (spell || s.Amount > 0) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount < out[j].Amount })
	return out
}

// consumeSpellShield removes and returns the weakest active spell shield.
func (u *Unit) consumeSpellShield() *Shield {
	shields := u.activeShields(true)
	if len(shields) == 0 {
		return nil
	}
	s := shields[0]
	s.state = ShieldInactive
	s.RepeatsEveryMS = 0
	return s
}

func (u *Unit) shieldDamageReduction() float64 {
	dr := 0.0
	for _, s := range u.shields {
		if s.state == ShieldActive && !s.IsSpellShield {
			dr += s.DamageReduction
		}
	}
	return dr
}
