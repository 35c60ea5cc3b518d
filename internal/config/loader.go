package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"autobattle/internal/combat"
	"autobattle/internal/hex"
)

const (
	DefaultTickMS = 33
	DefaultMaxMS  = 60000
)

// Config is one round definition loaded from a directory.
type Config struct {
	Champions ChampionsConfig
	Spells    SpellsConfig
	Items     ItemsConfig
	Traits    TraitsConfig
	Board     BoardConfig
	Sim       SimConfig
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadAll reads every config file from dir. items, traits and sim are
// optional; the rest must exist.
func LoadAll(dir string) (*Config, error) {
	var c Config
	files := []struct {
		name     string
		out      any
		optional bool
	}{
		{"champions.yaml", &c.Champions, false},
		{"spells.yaml", &c.Spells, false},
		{"items.yaml", &c.Items, true},
		{"traits.yaml", &c.Traits, true},
		{"board.yaml", &c.Board, false},
		{"sim.yaml", &c.Sim, true},
	}
	for _, f := range files {
		err := loadYAML(filepath.Join(dir, f.name), f.out)
		if f.optional && errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", f.name, err)
		}
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults fills zero-valued settings.
func (c *Config) ApplyDefaults() {
	if c.Sim.TickMS <= 0 {
		c.Sim.TickMS = DefaultTickMS
	}
	if c.Sim.MaxMS <= 0 {
		c.Sim.MaxMS = DefaultMaxMS
	}
	if c.Board.Cols <= 0 {
		c.Board.Cols = hex.DefaultCols
	}
	if c.Board.Rows <= 0 {
		c.Board.Rows = hex.DefaultRows
	}
	for i := range c.Champions.Champions {
		st := &c.Champions.Champions[i].Stats
		if st.AttackSpeed <= 0 {
			st.AttackSpeed = 0.7
		}
		if st.CritChance == 0 {
			st.CritChance = 0.25
		}
		if st.CritMultiplier == 0 {
			st.CritMultiplier = 0.3
		}
		if st.MoveSpeed <= 0 {
			st.MoveSpeed = 550
		}
	}
	for i := range c.Board.Units {
		if c.Board.Units[i].Star <= 0 {
			c.Board.Units[i].Star = 1
		}
	}
}

func (c *Config) HexBoard() hex.Board { return hex.Board{Cols: c.Board.Cols, Rows: c.Board.Rows} }

func (c *Config) Champion(id string) (ChampionDef, bool) {
	for _, ch := range c.Champions.Champions {
		if ch.ID == id {
			return ch, true
		}
	}
	return ChampionDef{}, false
}

func (c *Config) Spell(id string) (SpellDef, bool) {
	for _, s := range c.Spells.Spells {
		if s.ID == id {
			return s, true
		}
	}
	return SpellDef{}, false
}

func (c *Config) Item(id string) (ItemDef, bool) {
	for _, it := range c.Items.Items {
		if it.ID == id {
			return it, true
		}
	}
	return ItemDef{}, false
}

// PlacementTeam is the explicit team or the half of the board the row is on.
func (c *Config) PlacementTeam(p PlacementDef) int {
	if p.Team != nil {
		return *p.Team
	}
	return c.HexBoard().TeamForRow(p.Row)
}

var (
	spellKinds  = map[string]bool{"projectile": true, "cells": true, "shape": true, "target": true}
	shapeTypes  = map[string]bool{"circle": true, "cone": true, "rectangle": true}
	damageTypes = map[string]bool{"physical": true, "magic": true, "true": true, "heal": true}
)

// Validate reports every reference and value problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }
	stats := func(where string, m map[string]float64) {
		for name := range m {
			if _, err := combat.ParseStat(name); err != nil {
				add("%s: %w", where, err)
			}
		}
	}

	seen := map[string]bool{}
	for _, ch := range c.Champions.Champions {
		where := "champion " + ch.ID
		if ch.ID == "" {
			add("champion without id")
		}
		if seen[ch.ID] {
			add("%s: duplicate id", where)
		}
		seen[ch.ID] = true
		if ch.Stats.HP <= 0 {
			add("%s: hp must be positive", where)
		}
		if ch.Spell != "" {
			if _, ok := c.Spell(ch.Spell); !ok {
				add("%s: unknown spell %q", where, ch.Spell)
			}
		}
	}
	for _, s := range c.Spells.Spells {
		where := "spell " + s.ID
		if !spellKinds[s.Kind] {
			add("%s: unknown kind %q", where, s.Kind)
		}
		if s.Damage != nil {
			if !damageTypes[s.Damage.Type] {
				add("%s: unknown damage type %q", where, s.Damage.Type)
			}
			stats(where, s.Damage.Ratios)
		}
		for _, st := range s.Statuses {
			if _, ok := combat.ParseStatusKind(st.ID); !ok {
				add("%s: unknown status %q", where, st.ID)
			}
		}
		if s.Bonus != nil {
			stats(where, s.Bonus.Stats)
		}
		if s.Kind == "shape" && (s.Shape == nil || !shapeTypes[s.Shape.Type]) {
			add("%s: shape spell needs a circle, cone or rectangle", where)
		}
	}
	for _, it := range c.Items.Items {
		stats("item "+it.ID, it.Stats)
	}
	for _, tr := range c.Traits.Traits {
		prev := 0
		for _, bp := range tr.Breakpoints {
			if bp.Min <= prev {
				add("trait %s: breakpoints must ascend", tr.ID)
			}
			prev = bp.Min
			stats("trait "+tr.ID, bp.Stats)
		}
	}

	board := c.HexBoard()
	cells := map[hex.Coord]bool{}
	for i, p := range c.Board.Units {
		where := fmt.Sprintf("board unit %d (%s)", i, p.Champion)
		if _, ok := c.Champion(p.Champion); !ok {
			add("%s: unknown champion", where)
		}
		at := hex.Coord{Col: p.Col, Row: p.Row}
		if !board.InBounds(at) {
			add("%s: %v outside %dx%d board", where, at, board.Cols, board.Rows)
		}
		if cells[at] {
			add("%s: %v already occupied", where, at)
		}
		cells[at] = true
		if team := c.PlacementTeam(p); team != 0 && team != 1 {
			add("%s: team must be 0 or 1", where)
		}
		for _, key := range p.Items {
			if _, ok := c.Item(key); !ok {
				add("%s: unknown item %q", where, key)
			}
		}
	}
	return errors.Join(errs...)
}
