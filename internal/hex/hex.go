// Package hex implements the board grid: odd-row offset cells, cube distance,
// rings, pixel conversion and occupied-cell avoidance pathing.
package hex

import "math"

// Coord is an odd-r offset cell: odd rows are shifted half a cell right.
type Coord struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

type cube struct{ q, r, s int }

var cubeDirections = [6]cube{
	{1, 0, -1}, {1, -1, 0}, {0, -1, 1},
	{-1, 0, 1}, {-1, 1, 0}, {0, 1, -1},
}

func (c Coord) cube() cube {
	q := c.Col - (c.Row-(c.Row&1))/2
	return cube{q: q, r: c.Row, s: -q - c.Row}
}

func (c cube) coord() Coord {
	return Coord{Col: c.q + (c.r-(c.r&1))/2, Row: c.r}
}

func (c cube) add(o cube) cube  { return cube{c.q + o.q, c.r + o.r, c.s + o.s} }
func (c cube) sub(o cube) cube  { return cube{c.q - o.q, c.r - o.r, c.s - o.s} }
func (c cube) scale(k int) cube { return cube{c.q * k, c.r * k, c.s * k} }
func (c cube) length() int      { return max(abs(c.q), abs(c.r), abs(c.s)) }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Distance is the number of steps between two cells.
func Distance(a, b Coord) int {
	return a.cube().sub(b.cube()).length()
}

// Neighbors lists the six adjacent cells in a fixed order, unbounded.
func Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, 6)
	cc := c.cube()
	for _, d := range cubeDirections {
		out = append(out, cc.add(d).coord())
	}
	return out
}

// Ring lists the cells at exactly radius steps from center, unbounded.
func Ring(center Coord, radius int) []Coord {
	if radius <= 0 {
		return []Coord{center}
	}
	out := make([]Coord, 0, 6*radius)
	cur := center.cube().add(cubeDirections[4].scale(radius))
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			out = append(out, cur.coord())
			cur = cur.add(cubeDirections[side])
		}
	}
	return out
}

// Within lists every cell whose distance from center is at most radius.
func Within(center Coord, radius int, includeCenter bool) []Coord {
	var out []Coord
	if includeCenter {
		out = append(out, center)
	}
	for r := 1; r <= radius; r++ {
		out = append(out, Ring(center, r)...)
	}
	return out
}

func Contains(cells []Coord, c Coord) bool {
	for _, x := range cells {
		if x == c {
			return true
		}
	}
	return false
}

var rowHeight = math.Sqrt(3) / 2

// ToPoint returns the cell center.
func ToPoint(c Coord) Vec2 {
	return Vec2{X: float64(c.Col) + 0.5*float64(c.Row&1), Y: float64(c.Row) * rowHeight}
}

// FromPoint returns the cell containing p.
func FromPoint(p Vec2) Coord {
	rf := p.Y / rowHeight
	qf := p.X - rf/2
	sf := -qf - rf
	q, r, s := math.Round(qf), math.Round(rf), math.Round(sf)
	dq, dr, ds := math.Abs(q-qf), math.Abs(r-rf), math.Abs(s-sf)
	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}
	return cube{q: int(q), r: int(r), s: int(-q - r)}.coord()
}
