package combat

// Pair binds a source to a target at cast time.
type Pair struct {
	Source UnitID
	Target UnitID
}

// FixedTarget resolves against pre-bound pairs. With TickEveryMS > 0 it
// re-fires until it expires; every pulse may hit the same targets again.
type FixedTarget struct {
	EffectBase
	Pairs       []Pair
	TickEveryMS int64

	nextTickMS int64
	pulses     int
}

func (f *FixedTarget) prepare(*Env) {}

func (f *FixedTarget) Pulses() int { return f.pulses }

func (f *FixedTarget) Update(env *Env) bool {
	if !f.anyTargetAlive(env) {
		f.Expire()
		return false
	}
	alive, active := f.advance(env)
	if !alive {
		return false
	}
	if !active || env.TimeMS < f.nextTickMS {
		return true
	}
	f.collidedWith = f.collidedWith[:0]
	for _, p := range f.Pairs {
		target := env.Unit(p.Target)
		if target == nil || !target.Interactable() {
			continue
		}
		src := env.Unit(p.Source)
		if src == nil {
			src = env.Unit(f.Source)
		}
		f.apply(env, src, target)
	}
	f.pulses++
	if f.TickEveryMS <= 0 || f.singleShot() {
		return false
	}
	f.nextTickMS = env.TimeMS + f.TickEveryMS
	return true
}

func (f *FixedTarget) anyTargetAlive(env *Env) bool {
	for _, p := range f.Pairs {
		if t := env.Unit(p.Target); t != nil && !t.dead {
			return true
		}
	}
	return false
}
