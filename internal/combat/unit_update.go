package combat

import (
	"math"

	"go.uber.org/zap"

	"autobattle/internal/hex"
)

// Update advances the unit by one tick.
func (u *Unit) Update(env *Env) {
	if u.dead {
		return
	}
	u.updateBonuses(env)
	u.updateStatuses(env)
	u.updateShields(env)
	u.updateBleeds(env)
	if u.dead {
		return
	}
	u.updateScalings(env)
	if u.dead {
		return
	}
	if u.moving {
		u.updateMove(env)
		return
	}
	if u.Def.JumpsToBackline && !u.jumped {
		u.jumped = true
		u.jumpToBackline(env)
		return
	}

	u.updateTarget(env)
	now := env.TimeMS
	if u.CanPerformAction(now) && u.ReadyToCast(now) {
		if u.CastAbility(env) {
			return
		}
	}
	if u.CanAttackTarget(env) {
		if u.CanPerformAction(now) {
			u.updateAttack(env)
		}
		return
	}
	u.updateMove(env)
}

// Target resolves the current target through the roster.
func (u *Unit) Target(env *Env) *Unit {
	if u.target == 0 {
		return nil
	}
	return env.Unit(u.target)
}

func (u *Unit) SetTarget(t *Unit) {
	u.wasInRange = false
	if t == nil {
		u.target = 0
		return
	}
	u.target = t.ID
	u.movesBeforeDropping = MovesBeforeDropping
}

func (u *Unit) inRangeOf(t *Unit) bool {
	return t != nil && u.HexDistanceTo(t) <= u.Range()
}

func (u *Unit) CanAttackTarget(env *Env) bool {
	t := u.Target(env)
	return t != nil && u.wasInRange && t.Attackable()
}

func (u *Unit) updateTarget(env *Env) {
	t := u.Target(env)
	if t != nil && (!t.Attackable() || (u.movesBeforeDropping <= 0 && !u.inRangeOf(t))) {
		u.SetTarget(nil)
		t = nil
	}
	if t == nil {
		t = env.nearestEnemy(u)
		if t != nil {
			u.SetTarget(t)
		}
	}
	if t != nil {
		u.wasInRange = u.inRangeOf(t)
		if u.wasInRange {
			u.movesBeforeDropping = MovesBeforeDropping
		}
	}
}

// setActiveHex claims a cell immediately; Coord catches up while moving.
func (u *Unit) setActiveHex(c hex.Coord) {
	u.movesBeforeDropping--
	u.ActiveHex = c
}

func (u *Unit) updateMove(env *Env) {
	if !u.moving {
		if u.CanAttackTarget(env) || !u.CanPerformAction(env.TimeMS) {
			return
		}
		t := u.Target(env)
		if t == nil {
			return
		}
		next, ok := env.Board.NextStep(u.ActiveHex, t.ActiveHex, env.occupiedExcept(u))
		if !ok {
			return
		}
		u.moving = true
		u.setActiveHex(next)
	}

	dest := hex.ToPoint(u.ActiveHex)
	speed := u.customMoveSpeed
	if speed <= 0 {
		speed = u.MoveSpeed()
	}
	step := float64(env.DeltaMS) / 1000 * speed / LeagueUnitsPerHex
	delta := dest.Sub(u.Coord)
	if delta.Len() <= step {
		u.Coord = dest
		u.moving = false
		u.customMoveSpeed = 0
		done := u.onMoveComplete
		u.onMoveComplete = nil
		if done != nil {
			done(env, u)
		}
		return
	}
	u.Coord = u.Coord.Add(delta.Norm().Scale(step))
}

// CustomMoveTo moves the unit outside of pathing. With durationMS > 0 the
// speed is derived from the travel distance; otherwise speed (league
// units/s) or the unit's move speed is used. onComplete fires once on arrival.
func (u *Unit) CustomMoveTo(env *Env, dest hex.Coord, checkAvailable bool, speed float64, durationMS int64, onComplete func(env *Env, u *Unit)) bool {
	if checkAvailable {
		free, ok := env.Board.ClosestAvailable(dest, MaxHexCount, env.occupiedExcept(u))
		if !ok {
			return false
		}
		dest = free
	}
	if !env.Board.InBounds(dest) {
		return false
	}
	if durationMS > 0 {
		dist := hex.ToPoint(dest).Sub(u.Coord).Len()
		speed = dist / (float64(durationMS) / 1000) * LeagueUnitsPerHex
	}
	u.moving = true
	u.customMoveSpeed = speed
	u.onMoveComplete = onComplete
	u.setActiveHex(dest)
	return true
}

func (u *Unit) jumpToBackline(env *Env) {
	dest := hex.Coord{Col: u.StartHex.Col, Row: env.Board.EnemyBackRow(u.Team)}
	if u.CustomMoveTo(env, dest, true, 0, BacklineJumpMS, nil) {
		u.Status.Apply(env.TimeMS, StatusStealth, BacklineJumpMS, 0)
		env.logLine(u, "jumps to the backline at %v", u.ActiveHex)
	}
}

// ReadyToCast requires full mana, no mana lock, no silence and a cast hook.
func (u *Unit) ReadyToCast(now int64) bool {
	if u.MaxMana() <= 0 || u.mana < u.MaxMana() || now < u.manaLockUntilMS {
		return false
	}
	return !u.Status.Active(StatusSilenced)
}

// CastAbility runs the champion's cast hook. A false result leaves mana
// untouched.
func (u *Unit) CastAbility(env *Env) bool {
	ce, ok := env.Registry.Champions[u.Def.Key]
	if !ok || ce.Cast == nil {
		return false
	}
	if !ce.Cast(env, u.Def.Spell, u) {
		env.Log.Debug("cast found nothing", zap.Int("unit", int(u.ID)), zap.String("champion", u.Def.Key))
		return false
	}
	u.postCast(env, true)
	return true
}

func (u *Unit) postCast(env *Env, initial bool) {
	now := env.TimeMS
	for _, it := range u.Items {
		if ie, ok := env.Registry.Items[it.Key]; ok && ie.Cast != nil {
			ie.Cast(env, u)
		}
	}
	if !initial {
		return
	}
	u.castCount++
	u.Casts++
	for _, syn := range u.synergies {
		if te, ok := env.Registry.Traits[syn.Key]; ok && te.Cast != nil {
			te.Cast(env, syn, u)
		}
	}
	for _, key := range env.Augments[u.Team] {
		if ae, ok := env.Registry.Augments[key]; ok && ae.Cast != nil {
			ae.Cast(env, u)
		}
	}
	castMS := int64(DefaultCastMS)
	if u.Def.Spell != nil && u.Def.Spell.CastTimeMS > 0 {
		castMS = u.Def.Spell.CastTimeMS
	}
	u.performActionUntilMS = now + castMS
	u.attackStartAtMS = now + castMS
	u.mana = u.Bonus(StatManaRestore)
	u.manaLockUntilMS = now + DefaultManaLockMS
	env.emit(Event{T: now, Type: "Cast", Payload: map[string]any{"unit": u.ID, "name": u.Name(), "count": u.castCount}})
}

func (u *Unit) isNthBasicAttack(n, remainder int) bool {
	return n > 0 && u.basicAttackCount%n == remainder%n
}

func (u *Unit) msBetweenAttacks() float64 {
	as := u.AttackSpeed()
	if slow := u.Status.Amount(StatusAttackSpeedSlow); slow > 0 {
		as *= 1 - math.Min(slow, 100)/100
	}
	if as <= 0 {
		return math.Inf(1)
	}
	return 1000 / as
}

func (u *Unit) updateAttack(env *Env) {
	target := u.Target(env)
	if target == nil {
		return
	}
	now := env.TimeMS
	interval := u.msBetweenAttacks()
	if !u.attackStarted {
		u.attackStarted = true
		u.attackStartAtMS = now
		return
	}
	if float64(now) < float64(u.attackStartAtMS)+interval {
		return
	}
	u.basicAttackCount++
	auto := u.mergeEmpoweredAutos(env)
	windup := int64(interval / 4)
	calc := auto.DamageCalculation
	if calc == nil {
		calc = AttackCalc()
	}
	onCollided := func(env *Env, e *EffectBase, with *Unit, dmg *DamageResult) {
		u.completeAutoAttack(env, e, with, dmg, auto)
	}

	missile := auto.Missile
	if missile == nil {
		missile = u.Def.AttackMissile
	}
	if missile == nil {
		env.QueueEffect(u, nil, &FixedTarget{
			EffectBase: EffectBase{
				ActivatesAfterMS:  windup,
				SourceType:        SourceAttack,
				DamageCalculation: calc,
				BonusCalculations: auto.BonusCalculations,
				DamageModifier:    auto.DamageModifier,
				StatusEffects:     auto.StatusEffects,
				Bonuses:           auto.Bonuses,
				OnCollided:        onCollided,
			},
			Pairs: []Pair{{Source: u.ID, Target: target.ID}},
		})
	} else {
		p := &Projectile{
			EffectBase: EffectBase{
				StartsAfterMS:     windup,
				SourceType:        SourceAttack,
				DamageCalculation: calc,
				BonusCalculations: auto.BonusCalculations,
				DamageModifier:    auto.DamageModifier,
				StatusEffects:     auto.StatusEffects,
				Bonuses:           auto.Bonuses,
				OnCollided:        onCollided,
			},
			Missile:                *missile,
			Target:                 target.ID,
			Bounce:                 auto.Bounce,
			ReturnMissile:          auto.ReturnMissile,
			StackingDamageModifier: auto.StackingDamageModifier,
			HexEffect:              auto.HexEffect,
		}
		if auto.DestroysOnCollision != nil {
			p.Collision = CollidePierce
			if *auto.DestroysOnCollision {
				p.Collision = CollideFirst
			}
			p.FixedHexRange = MaxHexCount
		}
		env.QueueEffect(u, nil, p)
	}
	u.attackStartAtMS = now
	u.consumeEmpoweredAutos(env)

	for _, it := range u.Items {
		if ie, ok := env.Registry.Items[it.Key]; ok && ie.BasicAttack != nil {
			ie.BasicAttack(env, target, u)
		}
	}
	for _, syn := range u.synergies {
		if te, ok := env.Registry.Traits[syn.Key]; ok && te.BasicAttack != nil {
			te.BasicAttack(env, syn, target, u)
		}
	}
}

func (u *Unit) completeAutoAttack(env *Env, e *EffectBase, with *Unit, dmg *DamageResult, auto *EmpoweredAuto) {
	if len(e.collidedWith) == 0 {
		if ce, ok := env.Registry.Champions[u.Def.Key]; ok && ce.Passive != nil && (!ce.PassiveCasts || u.ReadyToCast(env.TimeMS)) {
			ce.Passive(env, u.Def.Spell, with, u, dmg)
			if ce.PassiveCasts {
				u.postCast(env, true)
			}
		}
		u.GainMana(env, BaseManaPerAttack+u.Bonus(StatManaRestorePerAttack))
	}
	if auto.OnCollided != nil {
		auto.OnCollided(env, e, with, dmg)
	}
}
