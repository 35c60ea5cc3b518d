package config

type BoardConfig struct {
	Cols  int            `yaml:"cols"`
	Rows  int            `yaml:"rows"`
	Units []PlacementDef `yaml:"units"`
}

// PlacementDef puts a champion on the board. Team is derived from Row when
// omitted.
type PlacementDef struct {
	Champion string   `yaml:"champion"`
	Col      int      `yaml:"col"`
	Row      int      `yaml:"row"`
	Star     int      `yaml:"star"`
	Items    []string `yaml:"items"`
	Team     *int     `yaml:"team"`
}

type SimConfig struct {
	TickMS int64 `yaml:"tick_ms"`
	MaxMS  int64 `yaml:"max_ms"`
	Seed   int64 `yaml:"seed"`
}
