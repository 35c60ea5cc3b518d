package hex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func genCoord(t *rapid.T, label string) Coord {
	return Coord{
		Col: rapid.IntRange(-20, 20).Draw(t, label+".col"),
		Row: rapid.IntRange(-20, 20).Draw(t, label+".row"),
	}
}

func TestDistanceProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a, b, c := genCoord(t, "a"), genCoord(t, "b"), genCoord(t, "c")
		if Distance(a, a) != 0 {
			t.Fatalf("Distance(a, a) = %d", Distance(a, a))
		}
		if Distance(a, b) != Distance(b, a) {
			t.Fatalf("asymmetric distance %v %v", a, b)
		}
		if Distance(a, c) > Distance(a, b)+Distance(b, c) {
			t.Fatalf("triangle inequality broken for %v %v %v", a, b, c)
		}
	})
}

func TestNeighborsAreAdjacent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCoord(t, "c")
		ns := Neighbors(c)
		if len(ns) != 6 {
			t.Fatalf("len(Neighbors) = %d, want 6", len(ns))
		}
		for _, n := range ns {
			if d := Distance(c, n); d != 1 {
				t.Fatalf("Distance(%v, %v) = %d, want 1", c, n, d)
			}
			if d := ToPoint(c).Sub(ToPoint(n)).Len(); math.Abs(d-1) > 1e-9 {
				t.Fatalf("pixel distance %v -> %v = %f, want 1", c, n, d)
			}
		}
	})
}

func TestPointRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCoord(t, "c")
		if got := FromPoint(ToPoint(c)); got != c {
			t.Fatalf("FromPoint(ToPoint(%v)) = %v", c, got)
		}
	})
}

func TestRingAndWithin(t *testing.T) {
	center := Coord{Col: 3, Row: 3}
	ring := Ring(center, 2)
	require.Len(t, ring, 12)
	for _, c := range ring {
		assert.Equal(t, 2, Distance(center, c))
	}
	assert.Len(t, Within(center, 2, true), 19)
	assert.Len(t, Within(center, 2, false), 18)
	assert.Equal(t, []Coord{center}, Ring(center, 0))
}

func TestBoardFiltersOutOfBounds(t *testing.T) {
	b := DefaultBoard()
	corner := Coord{Col: 0, Row: 0}
	for _, n := range b.Neighbors(corner) {
		assert.True(t, b.InBounds(n), "neighbor %v", n)
	}
	assert.Less(t, len(b.Within(corner, 1, true)), 7)
	assert.Equal(t, 0, b.TeamForRow(3))
	assert.Equal(t, 1, b.TeamForRow(4))
	assert.Equal(t, 7, b.EnemyBackRow(0))
	assert.Equal(t, 0, b.EnemyBackRow(1))
}

func TestNextStepAvoidsBlockedCells(t *testing.T) {
	b := DefaultBoard()
	from := Coord{Col: 3, Row: 0}
	to := Coord{Col: 3, Row: 4}
	wall := map[Coord]bool{}
	for col := 0; col < 6; col++ {
		wall[Coord{Col: col, Row: 2}] = true
	}
	blocked := func(c Coord) bool { return wall[c] }

	step, ok := b.NextStep(from, to, blocked)
	require.True(t, ok)
	assert.Equal(t, 1, Distance(from, step))
	assert.False(t, wall[step])

	// Walk to completion; the only gap is column 6.
	cur := from
	passedGap := false
	for i := 0; i < 20 && cur != to; i++ {
		cur, ok = b.NextStep(cur, to, blocked)
		require.True(t, ok)
		require.False(t, wall[cur])
		if cur.Row == 2 {
			passedGap = true
			assert.Equal(t, 6, cur.Col)
		}
	}
	assert.Equal(t, to, cur)
	assert.True(t, passedGap)
}

func TestNextStepAllowsOccupiedDestination(t *testing.T) {
	b := DefaultBoard()
	from := Coord{Col: 2, Row: 2}
	to := Coord{Col: 2, Row: 4}
	step, ok := b.NextStep(from, to, func(c Coord) bool { return c == to })
	require.True(t, ok)
	assert.Equal(t, 1, Distance(step, to))
}

func TestNextStepUnreachable(t *testing.T) {
	b := DefaultBoard()
	to := Coord{Col: 3, Row: 7}
	_, ok := b.NextStep(Coord{Col: 3, Row: 0}, to, func(c Coord) bool { return c.Row == 4 })
	assert.False(t, ok)
}

func TestClosestAvailable(t *testing.T) {
	b := DefaultBoard()
	c := Coord{Col: 3, Row: 7}
	got, ok := b.ClosestAvailable(c, 10, func(x Coord) bool { return x == c })
	require.True(t, ok)
	assert.Equal(t, 1, Distance(c, got))

	got, ok = b.ClosestAvailable(c, 10, nil)
	require.True(t, ok)
	assert.Equal(t, c, got)
}

func TestVec2(t *testing.T) {
	a := Vec2{X: 1, Y: 1}
	b := Vec2{X: 4, Y: 5}
	assert.InDelta(t, 5.0, b.Sub(a).Len(), 1e-9)
	assert.InDelta(t, 25.0, a.DistSq(b), 1e-9)
	assert.InDelta(t, 1.0, b.Norm().Len(), 1e-9)
	assert.Equal(t, Vec2{}, Vec2{}.Norm())
	assert.InDelta(t, math.Pi/2, Vec2{}.Angle(Vec2{Y: 2}), 1e-9)
	r := Vec2{X: 1}.Rotate(math.Pi / 2)
	assert.InDelta(t, 0, r.X, 1e-9)
	assert.InDelta(t, 1, r.Y, 1e-9)
}
