package combat

// Scaling grants IntervalAmount (or CalculateAmount) to each of Stats every
// IntervalMS. Health and Mana are applied directly; other stats accumulate
// in the ledger under Key.
type Scaling struct {
	Key             string
	Source          UnitID
	ActivatedAtMS   int64
	IntervalMS      int64
	IntervalAmount  float64
	CalculateAmount func(env *Env, u *Unit) float64
	Stats           []Stat
	ExpiresAfterMS  int64

	nextMS int64
}

func (u *Unit) AddScaling(env *Env, s *Scaling) {
	if s.ActivatedAtMS == 0 {
		s.ActivatedAtMS = env.TimeMS
	}
	s.nextMS = s.ActivatedAtMS + s.IntervalMS
	u.scalings = append(u.scalings, s)
}

func (u *Unit) Scalings() []*Scaling { return u.scalings }

func (s *Scaling) expired(now int64) bool {
	return s.ExpiresAfterMS > 0 && now >= s.ActivatedAtMS+s.ExpiresAfterMS
}

func (u *Unit) updateScalings(env *Env) {
	now := env.TimeMS
	out := u.scalings[:0]
	for _, s := range u.scalings {
		for s.IntervalMS > 0 && now >= s.nextMS && !s.expired(s.nextMS) {
			s.nextMS += s.IntervalMS
			u.applyScaling(env, s)
		}
		if !s.expired(now) {
			out = append(out, s)
		}
	}
	u.scalings = out
}

func (u *Unit) applyScaling(env *Env, s *Scaling) {
	amount := s.IntervalAmount
	if s.CalculateAmount != nil {
		amount = s.CalculateAmount(env, u)
	}
	var vars []BonusVariable
	for _, st := range s.Stats {
		switch st {
		case StatHealth:
			u.GainHealth(env, env.Unit(s.Source), amount, false)
		case StatMana:
			u.GainMana(env, amount)
		default:
			vars = append(vars, BonusVariable{Stat: st, Amount: amount})
		}
	}
	if len(vars) > 0 {
		u.Bonuses.Add(s.Key, vars...)
	}
}
