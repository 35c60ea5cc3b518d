package combat

import (
	"math"

	"autobattle/internal/hex"
)

// Shape is a hit-test over continuous board positions.
type Shape interface {
	Contains(p hex.Vec2) bool
}

type Circle struct {
	Center hex.Vec2
	Radius float64
}

func (c Circle) Contains(p hex.Vec2) bool {
	return c.Center.DistSq(p) <= c.Radius*c.Radius
}

// Cone spans HalfAngle radians either side of Bearing, out to Length.
type Cone struct {
	Origin    hex.Vec2
	Bearing   float64
	Length    float64
	HalfAngle float64
}

func (c Cone) Contains(p hex.Vec2) bool {
	d := p.Sub(c.Origin)
	if d.Len() > c.Length {
		return false
	}
	if d.Len() == 0 {
		return true
	}
	return math.Abs(angleDiff(c.Origin.Angle(p), c.Bearing)) <= c.HalfAngle
}

// Rectangle extends Length from Origin along Bearing and Width/2 to either side.
// A zero Bearing is axis aligned.
type Rectangle struct {
	Origin  hex.Vec2
	Bearing float64
	Length  float64
	Width   float64
}

func (r Rectangle) Contains(p hex.Vec2) bool {
	local := p.Sub(r.Origin).Rotate(-r.Bearing)
	return local.X >= 0 && local.X <= r.Length && math.Abs(local.Y) <= r.Width/2
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// AreaByShape re-tests its shape every active tick until it expires.
type AreaByShape struct {
	EffectBase
	Shape Shape
}

func (a *AreaByShape) prepare(*Env) {}

func (a *AreaByShape) Update(env *Env) bool {
	alive, active := a.advance(env)
	if !alive {
		return false
	}
	if !active {
		return true
	}
	if a.Shape == nil {
		return false
	}
	src := env.Unit(a.Source)
	for _, u := range env.interactable(a.targetTeam) {
		if !a.hasCollided(u.ID) && a.Shape.Contains(u.Coord) {
			a.apply(env, src, u)
		}
	}
	return !a.singleShot()
}
