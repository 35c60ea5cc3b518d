package combat

import (
	"math"

	"go.uber.org/zap"

	"autobattle/internal/hex"
)

// CollisionMode controls hit-testing along the path.
type CollisionMode int

const (
	// CollideTargetOnly resolves against the bound target on arrival.
	CollideTargetOnly CollisionMode = iota
	// CollideFirst completes on the first enemy touched.
	CollideFirst
	// CollidePierce resolves against every enemy touched.
	CollidePierce
)

// TargetDeathAction picks what a projectile does when its target dies mid-flight.
type TargetDeathAction int

const (
	TargetDeathPrune TargetDeathAction = iota
	TargetDeathContinue
	TargetDeathClosestFromSource
	TargetDeathFarthestFromSource
	TargetDeathClosestFromTarget
	TargetDeathFarthestFromTarget
)

// Projectile travels from its source toward a unit, a cell, or along a fixed
// bearing for FixedHexRange hexes. It never expires on its own clock.
type Projectile struct {
	EffectBase

	Missile       Missile
	StartsFrom    *hex.Coord
	Target        UnitID
	TargetHex     *hex.Coord
	FixedHexRange int
	ChangeRadians float64
	Collision     CollisionMode
	TargetDeath   TargetDeathAction

	StackingDamageModifier *DamageModifier
	Bounce                 *Bounce
	ReturnMissile          *Missile
	HexEffect              *CellsPayload

	Coord hex.Vec2

	targetCoord hex.Vec2
	speed       float64
	radiusSq    float64
	fixedDir    hex.Vec2
	maxDistance float64
	traveled    float64
	returning   bool
}

func (p *Projectile) prepare(env *Env) {
	p.persistent = true
	src := env.Unit(p.Source)
	switch {
	case p.StartsFrom != nil:
		p.Coord = hex.ToPoint(*p.StartsFrom)
	case src != nil:
		p.Coord = src.Coord
	}
	if p.Bounce != nil {
		b := *p.Bounce
		p.Bounce = &b
	}
	switch {
	case p.TargetHex != nil:
		p.targetCoord = hex.ToPoint(*p.TargetHex)
	case p.Target != 0:
		if t := env.Unit(p.Target); t != nil {
			p.targetCoord = t.Coord
		}
	case src != nil:
		if t := src.Target(env); t != nil {
			p.Target = t.ID
			p.targetCoord = t.Coord
		}
	}
	p.resetSpeed(env)
	p.updateRadius()
	if p.FixedHexRange > 0 {
		p.fixedDir = hex.Dir(p.Coord.Angle(p.targetCoord) + p.ChangeRadians)
		p.maxDistance = float64(p.FixedHexRange)
		p.targetCoord = p.Coord.Add(p.fixedDir.Scale(p.maxDistance))
	}
}

func (p *Projectile) resetSpeed(env *Env) {
	p.speed = p.Missile.SpeedInitial
	if p.speed <= 0 {
		env.Log.Warn("missile without speed", zap.String("missile", p.Missile.Name), zap.Int("source", int(p.Source)))
		p.speed = DefaultMissileSpeed
	}
}

func (p *Projectile) updateRadius() {
	r := (p.Missile.Width/LeagueUnitsPerHex + UnitSize) / 2
	p.radiusSq = r * r
}

func (p *Projectile) Returning() bool { return p.returning }

func (p *Projectile) Update(env *Env) bool {
	alive, active := p.advance(env)
	if !alive {
		return false
	}
	if !active {
		return true
	}
	src := env.Unit(p.Source)
	if !p.returning && p.Target != 0 {
		t := env.Unit(p.Target)
		if t == nil || t.dead {
			if !p.retarget(env, t) {
				p.Expire()
				return false
			}
		} else if p.maxDistance == 0 {
			p.targetCoord = t.Coord
		}
	}
	if p.returning && src != nil && !src.dead {
		p.targetCoord = src.Coord
	}

	total := float64(env.DeltaMS) / 1000 * p.speed / LeagueUnitsPerHex
	dir := p.fixedDir
	if p.maxDistance == 0 {
		delta := p.targetCoord.Sub(p.Coord)
		if math.Abs(delta.X) <= total && math.Abs(delta.Y) <= total {
			p.Coord = p.targetCoord
			if !p.returning && p.Target != 0 && !p.hasCollided(p.Target) {
				if t := env.Unit(p.Target); t != nil && t.Interactable() && !p.hit(env, src, t, true) {
					return true
				}
			}
			return p.finish(env, src)
		}
		dir = delta.Norm()
	}

	checks := max(1, int(math.Ceil(total/SafeDistancePerCheck)))
	step := total / float64(checks)
	for range checks {
		if p.Collision != CollideTargetOnly {
			final := p.Collision == CollideFirst
			for _, u := range env.interactable(p.targetTeam) {
				if p.hasCollided(u.ID) || u.Coord.DistSq(p.Coord) >= p.radiusSq {
					continue
				}
				if !p.hit(env, src, u, final) {
					continue
				}
				if final {
					return p.finish(env, src)
				}
				if p.StackingDamageModifier != nil {
					if p.DamageModifier == nil {
						p.DamageModifier = &DamageModifier{}
					}
					p.DamageModifier.Stack(*p.StackingDamageModifier)
				}
			}
		}
		if p.maxDistance > 0 {
			p.traveled += step
			if p.traveled >= p.maxDistance {
				if !p.returning && p.Target != 0 && !p.hasCollided(p.Target) {
					if t := env.Unit(p.Target); t != nil && t.Interactable() && !p.hit(env, src, t, true) {
						return true
					}
				}
				return p.finish(env, src)
			}
		}
		p.Coord = p.Coord.Add(dir.Scale(step))
	}

	if a := p.Missile.Acceleration; a != 0 {
		p.speed += a * float64(env.DeltaMS) / 1000
		if a > 0 && p.Missile.SpeedMax > 0 {
			p.speed = math.Min(p.speed, p.Missile.SpeedMax)
		} else if a < 0 {
			p.speed = math.Max(p.speed, math.Max(p.Missile.SpeedMin, 1))
		}
	}
	return true
}

// hit resolves against u. It returns false when the projectile bounced to
// a new target and should keep flying.
func (p *Projectile) hit(env *Env, src, u *Unit, final bool) bool {
	res, ok := p.apply(env, src, u)
	if !ok || !final || (res != nil && res.SpellShielded) {
		return true
	}
	if p.HexEffect != nil {
		env.QueueEffect(src, nil, p.HexEffect.At(env.Board, u.ActiveHex))
	}
	b := p.Bounce
	if b == nil || b.BouncesRemaining <= 0 {
		return true
	}
	next := env.nextBounce(u, &p.EffectBase, b.HexRange)
	if next == nil {
		return true
	}
	if b.DamageModifier != nil {
		if p.DamageModifier == nil {
			p.DamageModifier = &DamageModifier{}
		}
		p.DamageModifier.Stack(*b.DamageModifier)
	}
	if b.DamageCalculation != nil {
		p.DamageCalculation = b.DamageCalculation
	}
	b.BouncesRemaining--
	p.setTarget(next)
	return false
}

func (p *Projectile) setTarget(u *Unit) {
	p.Target = u.ID
	p.targetCoord = u.Coord
	p.maxDistance = 0
}

func (p *Projectile) retarget(env *Env, dead *Unit) bool {
	if dead == nil {
		return false
	}
	var next *Unit
	switch p.TargetDeath {
	case TargetDeathPrune:
		return false
	case TargetDeathContinue:
		p.Target = 0
		p.targetCoord = hex.ToPoint(dead.ActiveHex)
		return true
	case TargetDeathClosestFromSource:
		next = env.byDistance(env.Unit(p.Source), dead.Team, false)
	case TargetDeathFarthestFromSource:
		next = env.byDistance(env.Unit(p.Source), dead.Team, true)
	case TargetDeathClosestFromTarget:
		next = env.byDistance(dead, dead.Team, false)
	case TargetDeathFarthestFromTarget:
		next = env.byDistance(dead, dead.Team, true)
	}
	if next == nil {
		return false
	}
	p.setTarget(next)
	return true
}

// finish either turns the projectile around or ends it.
func (p *Projectile) finish(env *Env, src *Unit) bool {
	if p.ReturnMissile == nil {
		return false
	}
	if !p.returning {
		p.returning = true
		p.maxDistance = 0
		p.Missile = *p.ReturnMissile
		p.resetSpeed(env)
		p.updateRadius()
		p.HitID += ":return"
		if src != nil {
			p.targetCoord = src.Coord
		}
		return true
	}
	if p.OnCollided != nil && src != nil {
		p.OnCollided(env, &p.EffectBase, src, nil)
	}
	return false
}

// ProjectileSpread returns bearing offsets for count projectiles centered
// on the aim direction.
func ProjectileSpread(count int, radiansBetween float64) []float64 {
	out := make([]float64, count)
	mid := float64(count-1) / 2
	for i := range out {
		out[i] = (float64(i) - mid) * radiansBetween
	}
	return out
}
