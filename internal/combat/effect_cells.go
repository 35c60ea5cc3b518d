package combat

import "autobattle/internal/hex"

// AreaByCells resolves against every interactable unit standing on Cells.
// A single-shot area resolves once on activation; otherwise units entering
// the cells before expiry are hit as well.
type AreaByCells struct {
	EffectBase
	Cells []hex.Coord
}

func (a *AreaByCells) prepare(*Env) {}

func (a *AreaByCells) Update(env *Env) bool {
	alive, active := a.advance(env)
	if !alive {
		return false
	}
	if !active {
		return true
	}
	src := env.Unit(a.Source)
	for _, u := range env.interactable(a.targetTeam) {
		if hex.Contains(a.Cells, u.ActiveHex) {
			a.apply(env, src, u)
		}
	}
	return !a.singleShot()
}

// CellsPayload describes an AreaByCells created around a hex at runtime,
// such as a projectile's impact cell.
type CellsPayload struct {
	Radius        int
	RingOnly      bool
	IncludeCenter bool
	Team          TeamFilter

	ActivatesAfterMS  int64
	ExpiresAfterMS    int64
	DamageCalculation Calculation
	DamageModifier    *DamageModifier
	StatusEffects     []StatusPayload
	Bonuses           *BonusPayload
	OnCollided        CollisionFn
}

// Cells lists the board cells the payload covers around center.
func (p *CellsPayload) Cells(board hex.Board, center hex.Coord) []hex.Coord {
	if p.RingOnly {
		return board.Ring(center, p.Radius)
	}
	return board.Within(center, p.Radius, p.IncludeCenter || p.Radius == 0)
}

// At builds the area centered on center.
func (p *CellsPayload) At(board hex.Board, center hex.Coord) *AreaByCells {
	return &AreaByCells{
		EffectBase: EffectBase{
			Team:              p.Team,
			ActivatesAfterMS:  p.ActivatesAfterMS,
			ExpiresAfterMS:    p.ExpiresAfterMS,
			DamageCalculation: p.DamageCalculation,
			DamageModifier:    p.DamageModifier,
			StatusEffects:     p.StatusEffects,
			Bonuses:           p.Bonuses,
			OnCollided:        p.OnCollided,
			IsAoE:             true,
		},
		Cells: p.Cells(board, center),
	}
}
