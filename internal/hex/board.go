package hex

const (
	DefaultCols = 7
	DefaultRows = 8
)

// Board bounds the playable cells. Team 0 owns the lower half of the rows.
type Board struct {
	Cols int
	Rows int
}

func DefaultBoard() Board { return Board{Cols: DefaultCols, Rows: DefaultRows} }

func (b Board) InBounds(c Coord) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < b.Cols && c.Row < b.Rows
}

func (b Board) RowsPerSide() int { return b.Rows / 2 }

// TeamForRow is the team whose half contains row.
func (b Board) TeamForRow(row int) int {
	if row < b.RowsPerSide() {
		return 0
	}
	return 1
}

// EnemyBackRow is the last row on the opposing half for team.
func (b Board) EnemyBackRow(team int) int {
	if team == 0 {
		return b.Rows - 1
	}
	return 0
}

// Neighbors lists the in-bounds neighbors of c.
func (b Board) Neighbors(c Coord) []Coord {
	all := Neighbors(c)
	out := all[:0]
	for _, n := range all {
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

func (b Board) Ring(center Coord, radius int) []Coord {
	return b.filter(Ring(center, radius))
}

func (b Board) Within(center Coord, radius int, includeCenter bool) []Coord {
	return b.filter(Within(center, radius, includeCenter))
}

func (b Board) filter(cells []Coord) []Coord {
	out := cells[:0]
	for _, c := range cells {
		if b.InBounds(c) {
			out = append(out, c)
		}
	}
	return out
}

// NextStep returns the first cell on a shortest path from -> to that avoids
// cells reported by blocked. The destination itself is always enterable.
func (b Board) NextStep(from, to Coord, blocked func(Coord) bool) (Coord, bool) {
	if from == to || !b.InBounds(to) {
		return Coord{}, false
	}
	// BFS from the destination so the parent of "from" is the step to take.
	parent := map[Coord]Coord{to: to}
	queue := []Coord{to}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range b.Neighbors(cur) {
			if _, seen := parent[n]; seen {
				continue
			}
			if n == from {
				return cur, true
			}
			if blocked != nil && blocked(n) {
				continue
			}
			parent[n] = cur
			queue = append(queue, n)
		}
	}
	return Coord{}, false
}

// ClosestAvailable finds the nearest in-bounds cell to c that blocked does not
// report, searching up to maxRadius rings out. Ties keep ring order.
func (b Board) ClosestAvailable(c Coord, maxRadius int, blocked func(Coord) bool) (Coord, bool) {
	for r := 0; r <= maxRadius; r++ {
		for _, cell := range b.Ring(c, r) {
			if blocked == nil || !blocked(cell) {
				return cell, true
			}
		}
	}
	return Coord{}, false
}
