package sim

import (
	"autobattle/internal/combat"
	"autobattle/internal/config"
	"autobattle/internal/hex"
)

// Registry installs the data-driven spell and item hooks for cfg.
func Registry(cfg *config.Config) *combat.Registry {
	reg := combat.NewRegistry()
	for _, ch := range cfg.Champions.Champions {
		sp, ok := cfg.Spell(ch.Spell)
		if !ok {
			continue
		}
		reg.Champions[ch.ID] = combat.ChampionEffects{Cast: caster(sp)}
	}
	for _, it := range cfg.Items.Items {
		reg.Items[it.ID] = itemEffects(it)
	}
	return reg
}

func statusesOf(defs []config.StatusDef) []combat.StatusPayload {
	var out []combat.StatusPayload
	for _, d := range defs {
		kind, ok := combat.ParseStatusKind(d.ID)
		if !ok {
			continue
		}
		out = append(out, combat.StatusPayload{Kind: kind, DurationMS: d.DurationMS, Amount: d.Amount})
	}
	return out
}

func healing(sp config.SpellDef) bool {
	return sp.Damage != nil && sp.Damage.Type == "heal"
}

// caster builds the Cast hook for a spell. It returns false without a
// target, so the unit keeps its mana and tries again next tick.
func caster(sp config.SpellDef) func(env *combat.Env, spell *combat.Spell, u *combat.Unit) bool {
	statuses := statusesOf(sp.Statuses)
	team := combat.TargetEnemies
	if healing(sp) {
		team = combat.TargetAllies
	}

	return func(env *combat.Env, spell *combat.Spell, u *combat.Unit) bool {
		target := u.Target(env)
		if target == nil && !(sp.Kind == "cells" && sp.Center == "self") && !(sp.Kind == "target" && healing(sp)) {
			return false
		}
		base := func() combat.EffectBase {
			return combat.EffectBase{
				Team:              team,
				DamageCalculation: spell.Calc(env, "damage"),
				StatusEffects:     statuses,
			}
		}
		castMS := spell.CastTimeMS
		if castMS <= 0 {
			castMS = combat.DefaultCastMS
		}

		switch sp.Kind {
		case "target":
			e := base()
			e.ExpiresAfterMS = sp.DurationMS
			to := u
			if !healing(sp) {
				to = target
			}
			env.QueueEffect(u, spell, &combat.FixedTarget{
				EffectBase:  e,
				Pairs:       []combat.Pair{{Source: u.ID, Target: to.ID}},
				TickEveryMS: sp.TickMS,
			})

		case "cells":
			center := u.ActiveHex
			if sp.Center != "self" {
				center = target.ActiveHex
			}
			payload := &combat.CellsPayload{
				Radius:            sp.Radius,
				RingOnly:          sp.RingOnly,
				IncludeCenter:     true,
				Team:              team,
				DamageCalculation: spell.Calc(env, "damage"),
				StatusEffects:     statuses,
			}
			for _, at := range pulses(sp, castMS) {
				area := payload.At(env.Board, center)
				area.StartsAfterMS = at.startsAfterMS
				area.ExpiresAfterMS = at.expiresAfterMS
				env.QueueEffect(u, spell, area)
			}

		case "shape":
			shape := shapeOf(sp.Shape, u.Coord, target.Coord)
			for _, at := range pulses(sp, castMS) {
				e := base()
				e.StartsAfterMS = at.startsAfterMS
				e.ExpiresAfterMS = at.expiresAfterMS
				env.QueueEffect(u, spell, &combat.AreaByShape{EffectBase: e, Shape: shape})
			}

		case "projectile":
			missile := spell.Missile
			if missile == nil {
				missile = u.Def.AttackMissile
			}
			if missile == nil {
				missile = &combat.Missile{Name: spell.Key, SpeedInitial: combat.DefaultMissileSpeed}
			}
			collision := combat.CollideTargetOnly
			switch {
			case sp.Pierce:
				collision = combat.CollidePierce
			case sp.FixedRange > 0:
				collision = combat.CollideFirst
			}
			count := max(1, sp.Count)
			for _, offset := range combat.ProjectileSpread(count, sp.SpreadRadians) {
				p := &combat.Projectile{
					EffectBase:    base(),
					Missile:       *missile,
					Target:        target.ID,
					FixedHexRange: sp.FixedRange,
					ChangeRadians: offset,
					Collision:     collision,
				}
				if sp.Bounces > 0 {
					p.Bounce = &combat.Bounce{BouncesRemaining: sp.Bounces, HexRange: sp.BounceRange}
				}
				if sp.Returns {
					ret := *missile
					p.ReturnMissile = &ret
				}
				env.QueueEffect(u, spell, p)
			}

		default:
			return false
		}

		if sp.Shield != nil {
			u.QueueShield(env, &combat.Shield{
				Key:             spell.Key,
				Source:          u.ID,
				Amount:          sp.Shield.Amount,
				ExpiresAfterMS:  sp.Shield.DurationMS,
				DamageReduction: sp.Shield.DamageReduction,
				IsSpellShield:   sp.Shield.Spell,
			})
		}
		if sp.Bonus != nil {
			vars := varsOf(sp.Bonus.Stats)
			if sp.Bonus.DurationMS > 0 {
				for i := range vars {
					vars[i].ExpiresAtMS = env.TimeMS + sp.Bonus.DurationMS
				}
			}
			u.Bonuses.Set(spell.Key, vars...)
		}
		return true
	}
}

type pulse struct {
	startsAfterMS  int64
	expiresAfterMS int64
}

// pulses splits a ticking area into single-shot areas TickMS apart. Without
// a tick the area lasts DurationMS and hits each unit once.
func pulses(sp config.SpellDef, castMS int64) []pulse {
	if sp.TickMS <= 0 || sp.DurationMS <= 0 {
		return []pulse{{startsAfterMS: castMS, expiresAfterMS: sp.DurationMS}}
	}
	var out []pulse
	for at := int64(0); at <= sp.DurationMS; at += sp.TickMS {
		out = append(out, pulse{startsAfterMS: castMS + at})
	}
	return out
}

func shapeOf(d *config.ShapeDef, from, to hex.Vec2) combat.Shape {
	if d == nil {
		return nil
	}
	bearing := from.Angle(to)
	switch d.Type {
	case "cone":
		return combat.Cone{Origin: from, Bearing: bearing, Length: d.Length, HalfAngle: d.HalfAngle}
	case "rectangle":
		return combat.Rectangle{Origin: from, Bearing: bearing, Length: d.Length, Width: d.Width}
	}
	return combat.Circle{Center: to, Radius: d.Radius}
}

func itemEffects(it config.ItemDef) combat.ItemEffects {
	var ie combat.ItemEffects
	if th := it.Threshold; th != nil {
		key := "threshold:" + it.ID
		ie.HPThreshold = &combat.HPThreshold{
			Percent:         th.Percent,
			DamageReduction: th.DamageReduction,
			OnTrigger: func(env *combat.Env, u *combat.Unit) {
				if th.DurationMS <= 0 {
					return
				}
				u.Bonuses.Set(key, combat.BonusVariable{
					Stat:        combat.StatDamageReduction,
					Amount:      th.DamageReduction,
					ExpiresAtMS: env.TimeMS + th.DurationMS,
				})
			},
		}
	}
	if it.OnHitTrue > 0 {
		calc := combat.Flat{Amount: it.OnHitTrue, Type: combat.DamageTrue}
		ie.DamageDealt = func(env *combat.Env, r combat.DamageResult, holder, target *combat.Unit) {
			if r.SourceType != combat.SourceAttack || !r.IsOriginalSource || target == nil {
				return
			}
			target.TakeBonusDamage(env, holder, calc, false)
		}
	}
	return ie
}
