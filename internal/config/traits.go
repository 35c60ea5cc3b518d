package config

type TraitsConfig struct {
	Traits []TraitDef `yaml:"traits"`
}

type TraitDef struct {
	ID          string          `yaml:"id"`
	Breakpoints []BreakpointDef `yaml:"breakpoints"`
	Note        string          `yaml:"note"`
}

// BreakpointDef activates with Min distinct champions. Team breakpoints
// apply to every unit on the team, not only trait holders.
type BreakpointDef struct {
	Min   int                `yaml:"min"`
	Team  bool               `yaml:"team"`
	Stats map[string]float64 `yaml:"stats"`
}
