package combat

import "errors"

type Event struct {
	T       int64          `json:"t"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// UnitID is stable for a placement across rounds. Zero means "none".
type UnitID int

type DamageType int

const (
	DamageNone DamageType = iota
	DamagePhysical
	DamageMagic
	DamageTrue
	DamageHeal
)

func (d DamageType) String() string {
	switch d {
	case DamagePhysical:
		return "physical"
	case DamageMagic:
		return "magic"
	case DamageTrue:
		return "true"
	case DamageHeal:
		return "heal"
	}
	return "none"
}

// SourceType zero value means "unset"; effects default it to spell.
type SourceType int

const (
	SourceAttack SourceType = iota + 1
	SourceSpell
	SourceBonus
)

func (s SourceType) String() string {
	switch s {
	case SourceAttack:
		return "attack"
	case SourceSpell:
		return "spell"
	case SourceBonus:
		return "bonus"
	}
	return "unset"
}

const (
	LeagueUnitsPerHex    = 180.0
	UnitSize             = 0.5  // collision diameter, hexes
	SafeDistancePerCheck = 0.25 // projectile sub-step, hexes
	DefaultCastMS        = 250
	DefaultManaLockMS    = 1000
	BacklineJumpMS       = 1000
	MaxHexCount          = 10
	MovesBeforeDropping  = 3
	ShieldBonusCooldown  = 1000
	MaxManaFromDamage    = 42.5
	BaseManaPerAttack    = 10
	DefaultMissileSpeed  = 1800 // league units per second
)

var (
	ErrAlreadyDead = errors.New("unit already dead")
	ErrUnknownStat = errors.New("unknown stat")
	ErrUnknownUnit = errors.New("unknown unit")
	ErrMissingCalc = errors.New("missing spell calculation")
)
