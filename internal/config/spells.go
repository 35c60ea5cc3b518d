package config

type SpellsConfig struct {
	Spells []SpellDef `yaml:"spells"`
}

// SpellDef is a data-driven ability. Kind picks the effect that carries it:
// projectile, cells, shape or target.
type SpellDef struct {
	ID       string      `yaml:"id"`
	Kind     string      `yaml:"kind"`
	CastMS   int64       `yaml:"cast_ms"`
	Damage   *CalcDef    `yaml:"damage"`
	Statuses []StatusDef `yaml:"statuses"`
	Bonus    *BonusDef   `yaml:"bonus"`
	Shield   *ShieldDef  `yaml:"self_shield"`
	Missile  *MissileDef `yaml:"missile"`

	// projectile
	Count         int     `yaml:"count"`
	SpreadRadians float64 `yaml:"spread_radians"`
	FixedRange    int     `yaml:"fixed_range"`
	Pierce        bool    `yaml:"pierce"`
	Returns       bool    `yaml:"returns"`
	Bounces       int     `yaml:"bounces"`
	BounceRange   int     `yaml:"bounce_range"`

	// cells
	Center   string `yaml:"center"`
	Radius   int    `yaml:"radius"`
	RingOnly bool   `yaml:"ring_only"`

	// shape
	Shape *ShapeDef `yaml:"shape"`

	// target, cells and shape
	DurationMS int64 `yaml:"duration_ms"`
	TickMS     int64 `yaml:"tick_ms"`

	Note string `yaml:"note"`
}

// CalcDef sums Base and stat ratios; Type is physical, magic, true or heal.
type CalcDef struct {
	Type     string             `yaml:"type"`
	Base     float64            `yaml:"base"`
	Ratios   map[string]float64 `yaml:"ratios"`
	APScaled bool               `yaml:"ap_scaled"`
}

type StatusDef struct {
	ID         string  `yaml:"id"`
	DurationMS int64   `yaml:"duration_ms"`
	Amount     float64 `yaml:"amount"`
}

type BonusDef struct {
	Stats      map[string]float64 `yaml:"stats"`
	DurationMS int64              `yaml:"duration_ms"`
}

type ShieldDef struct {
	Amount          float64 `yaml:"amount"`
	DurationMS      int64   `yaml:"duration_ms"`
	DamageReduction float64 `yaml:"damage_reduction"`
	Spell           bool    `yaml:"spell"`
}

// ShapeDef is a circle, cone or rectangle aimed from the caster at its target.
type ShapeDef struct {
	Type      string  `yaml:"type"`
	Radius    float64 `yaml:"radius"`
	Length    float64 `yaml:"length"`
	Width     float64 `yaml:"width"`
	HalfAngle float64 `yaml:"half_angle"`
}
