package combat

// Bleed is a damage-over-time entry. A unit holds at most one bleed per Key.
type Bleed struct {
	Key                 string
	Source              UnitID
	Calc                Calculation
	SourceType          SourceType
	ActivatesAtMS       int64
	RepeatsEveryMS      int64
	RemainingIterations int
	IsAoE               bool

	OnDeath func(env *Env, b *Bleed, u *Unit)
}

// AddBleedIfStronger attaches b unless a bleed with the same key already has
// at least as many iterations left.
func (u *Unit) AddBleedIfStronger(env *Env, b *Bleed) bool {
	if b.RemainingIterations <= 0 || u.dead {
		return false
	}
	if b.ActivatesAtMS == 0 {
		b.ActivatesAtMS = env.TimeMS
	}
	if b.SourceType == 0 {
		b.SourceType = SourceBonus
	}
	for i, old := range u.bleeds {
		if old.Key != b.Key {
			continue
		}
		if b.RemainingIterations <= old.RemainingIterations {
			return false
		}
		u.bleeds[i] = b
		return true
	}
	u.bleeds = append(u.bleeds, b)
	return true
}

func (u *Unit) Bleeds() []*Bleed { return u.bleeds }

func (u *Unit) updateBleeds(env *Env) {
	if len(u.bleeds) == 0 {
		return
	}
	due := append([]*Bleed(nil), u.bleeds...)
	for _, b := range due {
		for !u.dead && b.RemainingIterations > 0 && env.TimeMS >= b.ActivatesAtMS {
			b.RemainingIterations--
			b.ActivatesAtMS += max(b.RepeatsEveryMS, 1)
			u.Damage(env, Hit{Source: env.Unit(b.Source), SourceType: b.SourceType, Calc: b.Calc, IsAoE: b.IsAoE})
		}
		if u.dead {
			return
		}
	}
	out := u.bleeds[:0]
	for _, b := range u.bleeds {
		if b.RemainingIterations > 0 {
			out = append(out, b)
		}
	}
	u.bleeds = out
}
