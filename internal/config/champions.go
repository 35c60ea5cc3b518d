package config

type ChampionsConfig struct {
	Champions []ChampionDef `yaml:"champions"`
}

type ChampionDef struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Traits          []string    `yaml:"traits"`
	Stats           StatsDef    `yaml:"stats"`
	Spell           string      `yaml:"spell"`
	AttackMissile   *MissileDef `yaml:"attack_missile"`
	JumpsToBackline bool        `yaml:"jumps_to_backline"`
	Note            string      `yaml:"note"`
}

type StatsDef struct {
	HP             float64 `yaml:"hp"`
	AD             float64 `yaml:"ad"`
	Armor          float64 `yaml:"armor"`
	MagicResist    float64 `yaml:"magic_resist"`
	AttackSpeed    float64 `yaml:"attack_speed"`
	Range          int     `yaml:"range"`
	MoveSpeed      float64 `yaml:"move_speed"`
	Mana           float64 `yaml:"mana"`
	MaxMana        float64 `yaml:"max_mana"`
	CritChance     float64 `yaml:"crit_chance"`
	CritMultiplier float64 `yaml:"crit_multiplier"`
}

// MissileDef speeds are league units per second.
type MissileDef struct {
	Name         string  `yaml:"name"`
	Speed        float64 `yaml:"speed"`
	Acceleration float64 `yaml:"acceleration"`
	SpeedMin     float64 `yaml:"speed_min"`
	SpeedMax     float64 `yaml:"speed_max"`
	Width        float64 `yaml:"width"`
}
