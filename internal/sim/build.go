package sim

import (
	"fmt"
	"sort"

	"autobattle/internal/combat"
	"autobattle/internal/config"
	"autobattle/internal/hex"
)

func varsOf(m map[string]float64) []combat.BonusVariable {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]combat.BonusVariable, 0, len(keys))
	for _, k := range keys {
		out = append(out, combat.BonusVariable{Stat: combat.Stat(k), Amount: m[k]})
	}
	return out
}

func missileOf(m *config.MissileDef) *combat.Missile {
	if m == nil {
		return nil
	}
	return &combat.Missile{
		Name:         m.Name,
		SpeedInitial: m.Speed,
		Acceleration: m.Acceleration,
		SpeedMin:     m.SpeedMin,
		SpeedMax:     m.SpeedMax,
		Width:        m.Width,
	}
}

// UnitDef converts a champion definition, attaching its spell data.
func UnitDef(cfg *config.Config, ch config.ChampionDef) combat.UnitDef {
	def := combat.UnitDef{
		Key:    ch.ID,
		Name:   ch.Name,
		Traits: append([]string(nil), ch.Traits...),
		Stats: combat.BaseStats{
			HP:             ch.Stats.HP,
			AD:             ch.Stats.AD,
			Armor:          ch.Stats.Armor,
			MagicResist:    ch.Stats.MagicResist,
			AttackSpeed:    ch.Stats.AttackSpeed,
			Range:          ch.Stats.Range,
			MoveSpeed:      ch.Stats.MoveSpeed,
			Mana:           ch.Stats.Mana,
			MaxMana:        ch.Stats.MaxMana,
			CritChance:     ch.Stats.CritChance,
			CritMultiplier: ch.Stats.CritMultiplier,
		},
		AttackMissile:   missileOf(ch.AttackMissile),
		JumpsToBackline: ch.JumpsToBackline,
	}
	if sp, ok := cfg.Spell(ch.Spell); ok {
		spell := &combat.Spell{Key: sp.ID, CastTimeMS: sp.CastMS, Missile: missileOf(sp.Missile), Calcs: map[string]combat.Calculation{}}
		if sp.Damage != nil {
			spell.Calcs["damage"] = calcOf(sp.ID, sp.Damage)
		}
		def.Spell = spell
	}
	return def
}

func damageTypeOf(name string) combat.DamageType {
	switch name {
	case "physical":
		return combat.DamagePhysical
	case "magic":
		return combat.DamageMagic
	case "true":
		return combat.DamageTrue
	case "heal":
		return combat.DamageHeal
	}
	return combat.DamageNone
}

func calcOf(name string, c *config.CalcDef) combat.Calculation {
	sc := combat.Scaled{Name: name, Base: c.Base, APScaled: c.APScaled, Type: damageTypeOf(c.Type)}
	for _, v := range varsOf(c.Ratios) {
		sc.Ratios = append(sc.Ratios, combat.Ratio{Stat: v.Stat, Ratio: v.Amount})
	}
	return sc
}

// Units places every board unit. IDs follow board order, starting at 1.
func Units(cfg *config.Config) ([]*combat.Unit, error) {
	out := make([]*combat.Unit, 0, len(cfg.Board.Units))
	for i, p := range cfg.Board.Units {
		ch, ok := cfg.Champion(p.Champion)
		if !ok {
			return nil, fmt.Errorf("board unit %d: unknown champion %q", i, p.Champion)
		}
		var items []combat.Item
		for _, key := range p.Items {
			it, ok := cfg.Item(key)
			if !ok {
				return nil, fmt.Errorf("board unit %d: unknown item %q", i, key)
			}
			items = append(items, combat.Item{Key: it.ID, Stats: varsOf(it.Stats)})
		}
		u := combat.NewUnit(UnitDef(cfg, ch), hex.Coord{Col: p.Col, Row: p.Row}, cfg.PlacementTeam(p), p.Star, items...)
		u.ID = combat.UnitID(i + 1)
		out = append(out, u)
	}
	return out, nil
}

// Synergies picks, per team, the highest met breakpoint of every trait.
// A breakpoint counts distinct champions, so duplicates add nothing.
func Synergies(cfg *config.Config, units []*combat.Unit) [2][]*combat.Synergy {
	var holders [2]map[string]map[string]bool
	for team := range holders {
		holders[team] = map[string]map[string]bool{}
	}
	for _, u := range units {
		if u.Team != 0 && u.Team != 1 {
			continue
		}
		for _, tr := range u.Def.Traits {
			if holders[u.Team][tr] == nil {
				holders[u.Team][tr] = map[string]bool{}
			}
			holders[u.Team][tr][u.Def.Key] = true
		}
	}

	var out [2][]*combat.Synergy
	for team := range out {
		for _, tr := range cfg.Traits.Traits {
			count := len(holders[team][tr.ID])
			level := 0
			for i, bp := range tr.Breakpoints {
				if count >= bp.Min {
					level = i + 1
				}
			}
			if level == 0 {
				continue
			}
			bp := tr.Breakpoints[level-1]
			out[team] = append(out[team], &combat.Synergy{Key: tr.ID, Level: level, Team: bp.Team, Vars: bp.Stats})
		}
	}
	return out
}
