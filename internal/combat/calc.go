package combat

import "fmt"

// Calculation is a spell calculation descriptor. The engine never looks
// inside; a Solver turns it into an amount and a damage type.
type Calculation interface {
	CalcKey() string
}

//go:generate go tool mockgen -destination=./mocks/solver_mock.go -package=mocks . Solver

// Solver resolves a Calculation for a source/target pair. Source may be nil.
type Solver interface {
	Solve(source, target *Unit, calc Calculation) (float64, DamageType, error)
}

// Flat is a fixed amount.
type Flat struct {
	Amount float64
	Type   DamageType
}

func (f Flat) CalcKey() string { return fmt.Sprintf("flat:%s", f.Type) }

// Scaled sums Base and per-stat ratios read from the source (or the target
// when FromTarget is set). APScaled multiplies the total by AP/100.
type Scaled struct {
	Name       string
	Base       float64
	Ratios     []Ratio
	FromTarget bool
	APScaled   bool
	Type       DamageType
}

func (s Scaled) CalcKey() string { return s.Name }

type Ratio struct {
	Stat  Stat
	Ratio float64
}

// AttackCalc is the default basic attack: 100% AD as physical.
func AttackCalc() Calculation {
	return Scaled{Name: "BasicAttack", Ratios: []Ratio{{Stat: StatAttackDamage, Ratio: 1}}, Type: DamagePhysical}
}

// StatSolver understands Flat and Scaled.
type StatSolver struct{}

func (StatSolver) Solve(source, target *Unit, calc Calculation) (float64, DamageType, error) {
	switch c := calc.(type) {
	case nil:
		return 0, DamageNone, ErrMissingCalc
	case Flat:
		return c.Amount, c.Type, nil
	case *Flat:
		return c.Amount, c.Type, nil
	case Scaled:
		return solveScaled(source, target, c)
	case *Scaled:
		return solveScaled(source, target, *c)
	}
	return 0, DamageNone, fmt.Errorf("%w: unsupported %T", ErrMissingCalc, calc)
}

func solveScaled(source, target *Unit, c Scaled) (float64, DamageType, error) {
	from := source
	if c.FromTarget {
		from = target
	}
	total := c.Base
	for _, r := range c.Ratios {
		if from == nil {
			return 0, c.Type, fmt.Errorf("%w: %s needs a unit for %s", ErrMissingCalc, c.Name, r.Stat)
		}
		v, err := from.StatValue(r.Stat)
		if err != nil {
			return 0, c.Type, err
		}
		total += v * r.Ratio
	}
	if c.APScaled && source != nil {
		total *= source.AbilityPower() / 100
	}
	return total, c.Type, nil
}
