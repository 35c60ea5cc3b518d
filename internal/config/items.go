package config

type ItemsConfig struct {
	Items []ItemDef `yaml:"items"`
}

type ItemDef struct {
	ID        string             `yaml:"id"`
	Stats     map[string]float64 `yaml:"stats"`
	Threshold *ThresholdDef      `yaml:"threshold"`
	// OnHitTrue adds flat true damage to every basic attack.
	OnHitTrue float64 `yaml:"on_hit_true"`
	Note      string  `yaml:"note"`
}

// ThresholdDef grants DamageReduction for DurationMS once health falls to
// Percent of max.
type ThresholdDef struct {
	Percent         float64 `yaml:"percent"`
	DamageReduction float64 `yaml:"damage_reduction"`
	DurationMS      int64   `yaml:"duration_ms"`
}
