package combat_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"autobattle/internal/combat"
	"autobattle/internal/combat/mocks"
	"autobattle/internal/hex"
)

type fixedRng struct{ v float64 }

func (r fixedRng) Float64() float64 { return r.v }

func idle(key string, hp float64) combat.UnitDef {
	return combat.UnitDef{Key: key, Stats: combat.BaseStats{HP: hp, AttackSpeed: 1, MaxMana: 100, MoveSpeed: 550}}
}

func fighter(key string, hp, ad float64) combat.UnitDef {
	d := idle(key, hp)
	d.Stats.AD = ad
	d.Stats.Range = 1
	return d
}

func startRound(t *testing.T, rng combat.Uniform, reg *combat.Registry, units ...*combat.Unit) *combat.Env {
	t.Helper()
	if rng == nil {
		rng = rand.New(rand.NewSource(7))
	}
	env := combat.NewEnv(rng, reg, zaptest.NewLogger(t))
	env.Record(true)
	for _, u := range units {
		require.NoError(t, env.AddUnit(u))
	}
	env.StartRound()
	return env
}

func tickUntil(t *testing.T, env *combat.Env, diffMS, maxMS int64, done func() bool) {
	t.Helper()
	for env.TimeMS < maxMS {
		env.Tick(diffMS)
		if done() {
			return
		}
	}
	t.Fatalf("condition not reached by %dms", maxMS)
}

func TestBasicAttackEndToEnd(t *testing.T) {
	a := combat.NewUnit(fighter("a", 1000, 100), hex.Coord{Col: 3, Row: 3}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 3, Row: 4}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	tickUntil(t, env, 100, 5000, func() bool { return b.Health() < 1000 })

	assert.InDelta(t, 900, b.Health(), 1e-9)
	assert.InDelta(t, 8, b.Mana(), 1e-9)
	assert.InDelta(t, 10, a.Mana(), 1e-9)
	assert.Equal(t, b.ID, a.TargetID())
	assert.Equal(t, int64(1400), env.TimeMS)
}

func TestShieldAbsorbsHit(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	shield := &combat.Shield{Key: "barrier", Amount: 50}
	b.QueueShield(env, shield)
	env.Tick(33)
	require.True(t, shield.Active())

	res := b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 30, Type: combat.DamageTrue}})
	require.NotNil(t, res)
	assert.Equal(t, 30.0, res.TakingDamage)
	assert.Zero(t, res.HealthDamage)
	assert.Equal(t, 20.0, shield.Amount)
	assert.Equal(t, 1000.0, b.Health())
}

func TestDamageReductionShieldWithoutAmount(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	ward := &combat.Shield{Key: "ward", DamageReduction: 0.5, ExpiresAfterMS: 5000}
	b.QueueShield(env, ward)
	env.Tick(33)
	require.True(t, ward.Active())

	res := b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageMagic}})
	assert.InDelta(t, 50, res.TakingDamage, 1e-9)
	assert.InDelta(t, 950, b.Health(), 1e-9)
	assert.True(t, ward.Active())
}

func TestShieldRetaliatesOnlyAgainstAttacks(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	thorns := &combat.Shield{Key: "thorns", Amount: 500, BonusDamage: combat.Flat{Amount: 40, Type: combat.DamageTrue}}
	b.QueueShield(env, thorns)
	env.Tick(33)

	b.Damage(env, combat.Hit{Source: a, SourceType: combat.SourceSpell, Calc: combat.Flat{Amount: 50, Type: combat.DamageTrue}})
	assert.Equal(t, 1000.0, a.Health(), "spells are not struck back")

	b.Damage(env, combat.Hit{Source: a, SourceType: combat.SourceAttack, Calc: combat.Flat{Amount: 50, Type: combat.DamageTrue}})
	assert.InDelta(t, 960, a.Health(), 1e-9)

	b.Damage(env, combat.Hit{Source: a, SourceType: combat.SourceAttack, Calc: combat.Flat{Amount: 50, Type: combat.DamageTrue}})
	assert.InDelta(t, 960, a.Health(), 1e-9, "once per second")
	assert.InDelta(t, 350, thorns.Amount, 1e-9)
}

func TestDamageDealtHooksOnlyForOriginalHits(t *testing.T) {
	calls := 0
	reg := combat.NewRegistry()
	reg.Items["charm"] = combat.ItemEffects{
		DamageDealt: func(*combat.Env, combat.DamageResult, *combat.Unit, *combat.Unit) { calls++ },
	}
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1, combat.Item{Key: "charm"})
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, reg, a, b)

	require.True(t, b.AddBleedIfStronger(env, &combat.Bleed{Key: "cut", Source: a.ID,
		Calc: combat.Flat{Amount: 10, Type: combat.DamageTrue}, RepeatsEveryMS: 100, RemainingIterations: 3}))
	for range 10 {
		env.Tick(33)
	}
	assert.InDelta(t, 970, b.Health(), 1e-9)

	b.TakeBonusDamage(env, a, combat.Flat{Amount: 10, Type: combat.DamageTrue}, false)
	assert.InDelta(t, 960, b.Health(), 1e-9)
	assert.Zero(t, calls)

	b.Damage(env, combat.Hit{Source: a, IsOriginal: true, Calc: combat.Flat{Amount: 10, Type: combat.DamageTrue}})
	assert.Equal(t, 1, calls)
}

func TestAugmentHPThreshold(t *testing.T) {
	fired := 0
	reg := combat.NewRegistry()
	reg.Augments["last_stand"] = combat.AugmentEffects{HPThreshold: &combat.HPThreshold{
		Percent:         40,
		DamageReduction: 50,
		OnTrigger:       func(*combat.Env, *combat.Unit) { fired++ },
	}}
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := combat.NewEnv(rand.New(rand.NewSource(3)), reg, zaptest.NewLogger(t))
	env.Augments[1] = []string{"last_stand"}
	require.NoError(t, env.AddUnit(a))
	require.NoError(t, env.AddUnit(b))
	env.StartRound()

	b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 700, Type: combat.DamageTrue}})
	assert.InDelta(t, 350, b.Health(), 1e-9)
	a.Damage(env, combat.Hit{Source: b, Calc: combat.Flat{Amount: 700, Type: combat.DamageTrue}})
	assert.InDelta(t, 300, a.Health(), 1e-9, "only the augment's team")
	assert.Equal(t, 1, fired)
}

func TestHPThresholdFiresOnce(t *testing.T) {
	fired := 0
	reg := combat.NewRegistry()
	reg.Items["stoneplate"] = combat.ItemEffects{HPThreshold: &combat.HPThreshold{
		Percent:         40,
		DamageReduction: 50,
		OnTrigger:       func(*combat.Env, *combat.Unit) { fired++ },
	}}
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1, combat.Item{Key: "stoneplate"})
	env := startRound(t, nil, reg, a, b)

	b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 700, Type: combat.DamageTrue}})
	assert.InDelta(t, 350, b.Health(), 1e-9)
	assert.Equal(t, 1, fired)

	b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageTrue}})
	assert.InDelta(t, 250, b.Health(), 1e-9)
	assert.Equal(t, 1, fired)
}

func TestTrueDamageBypassesMitigation(t *testing.T) {
	def := idle("b", 1000)
	def.Stats.Armor = 100
	def.Stats.MagicResist = 100
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(def, hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)
	b.Bonuses.Add("wall", combat.BonusVariable{Stat: combat.StatDamageReduction, Amount: 50})

	res := b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageTrue}})
	assert.Equal(t, 100.0, res.TakingDamage)

	res = b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamagePhysical}})
	assert.InDelta(t, 25, res.TakingDamage, 1e-9)

	res = b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageMagic}})
	assert.InDelta(t, 25, res.TakingDamage, 1e-9)
}

func TestArmorReductionStatus(t *testing.T) {
	def := idle("b", 1000)
	def.Stats.Armor = 100
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(def, hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)
	b.ApplyStatus(env, combat.StatusArmorReduction, 1000, 0.5)

	res := b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 150, Type: combat.DamagePhysical}})
	assert.InDelta(t, 100, res.TakingDamage, 1e-9)
}

func TestAttackDodge(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)
	b.Bonuses.Add("evade", combat.BonusVariable{Stat: combat.StatDodgeChance, Amount: 40})
	a.Bonuses.Add("focus", combat.BonusVariable{Stat: combat.StatDodgePrevention, Amount: 15})

	res := b.Damage(env, combat.Hit{Source: a, SourceType: combat.SourceAttack, Calc: combat.Flat{Amount: 100, Type: combat.DamageTrue}})
	assert.InDelta(t, 75, res.TakingDamage, 1e-9)

	res = b.Damage(env, combat.Hit{Source: a, SourceType: combat.SourceSpell, Calc: combat.Flat{Amount: 100, Type: combat.DamageTrue}})
	assert.InDelta(t, 100, res.TakingDamage, 1e-9, "dodge only applies to attacks")
}

func TestCritPolicy(t *testing.T) {
	def := idle("a", 1000)
	def.Stats.CritChance = 1
	def.Stats.CritMultiplier = 0.5
	a := combat.NewUnit(def, hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	res := b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamagePhysical}})
	assert.True(t, res.DidCrit)
	assert.InDelta(t, 150, res.TakingDamage, 1e-9)

	res = b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageMagic}})
	assert.False(t, res.DidCrit, "magic needs the spell crit capability")

	a.Bonuses.Add("gauntlet", combat.BonusVariable{Stat: combat.StatSpellCrit, Amount: 1})
	res = b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageMagic}})
	assert.True(t, res.DidCrit)
}

func TestExcessCritChanceBoostsMultiplier(t *testing.T) {
	def := idle("a", 1000)
	def.Stats.CritChance = 1.5
	def.Stats.CritMultiplier = 0.3
	a := combat.NewUnit(def, hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	assert.InDelta(t, 0.8, a.CritMultiplier(), 1e-9)
	res := b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamagePhysical}})
	assert.True(t, res.DidCrit)
	assert.InDelta(t, 180, res.TakingDamage, 1e-9)
}

func TestVampHealsSource(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)
	a.SetHealth(500)
	a.Bonuses.Add("blade", combat.BonusVariable{Stat: combat.StatVampOmni, Amount: 20})

	b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageTrue}})
	assert.InDelta(t, 520, a.Health(), 1e-9)
}

func TestInvulnerable(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)
	b.ApplyStatus(env, combat.StatusInvulnerable, 1000, 0)

	b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageTrue}})
	assert.Equal(t, 1000.0, b.Health())

	b.Damage(env, combat.Hit{Source: a, Calc: combat.Flat{Amount: 100, Type: combat.DamageTrue},
		Modifier: &combat.DamageModifier{IgnoresInvulnerability: true}})
	assert.Equal(t, 900.0, b.Health())
}

func TestDoubleDeathIsAnError(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	require.NoError(t, b.Die(env, a))
	err := b.Die(env, a)
	assert.True(t, errors.Is(err, combat.ErrAlreadyDead))
	assert.Equal(t, 1, a.Kills)
	assert.True(t, env.Over())
	assert.Equal(t, 0, env.Winner())
}

func TestDeathHooksOnlyWithSurvivors(t *testing.T) {
	var allyDeaths, enemyDeaths int
	reg := combat.NewRegistry()
	reg.Traits["guardian"] = combat.TraitEffects{
		AllyDeath:  func(*combat.Env, *combat.Synergy, *combat.Unit, int) { allyDeaths++ },
		EnemyDeath: func(*combat.Env, *combat.Synergy, *combat.Unit, int) { enemyDeaths++ },
	}
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b1 := combat.NewUnit(idle("b1", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	b2 := combat.NewUnit(idle("b2", 1000), hex.Coord{Col: 1, Row: 7}, 1, 1)
	env := combat.NewEnv(fixedRng{}, reg, zaptest.NewLogger(t))
	env.Synergies[0] = []*combat.Synergy{{Key: "guardian", Level: 1}}
	env.Synergies[1] = []*combat.Synergy{{Key: "guardian", Level: 1}}
	for _, u := range []*combat.Unit{a, b1, b2} {
		require.NoError(t, env.AddUnit(u))
	}
	env.StartRound()

	require.NoError(t, b1.Die(env, a))
	assert.Equal(t, 1, allyDeaths)
	assert.Equal(t, 1, enemyDeaths)

	require.NoError(t, b2.Die(env, a))
	assert.Equal(t, 1, allyDeaths, "no hooks once the team is eliminated")
	assert.Equal(t, 0, env.Winner())
	assert.Equal(t, 2, a.Kills)
}

func TestProjectileSubstepsAtLargeTicks(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 3, Row: 0}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	hits := 0
	aim := hex.Coord{Col: 6, Row: 0}
	p := &combat.Projectile{
		EffectBase: combat.EffectBase{
			DamageCalculation: combat.Flat{Amount: 10, Type: combat.DamageMagic},
			OnCollided:        func(*combat.Env, *combat.EffectBase, *combat.Unit, *combat.DamageResult) { hits++ },
		},
		Missile:       combat.Missile{Name: "lance", SpeedInitial: 5 * combat.LeagueUnitsPerHex},
		TargetHex:     &aim,
		FixedHexRange: 6,
		Collision:     combat.CollidePierce,
	}
	env.QueueEffect(a, nil, p)
	for range 4 {
		env.Tick(1000)
	}

	assert.Equal(t, 1, hits)
	assert.InDelta(t, 990, b.Health(), 1e-9)
	assert.Equal(t, []combat.UnitID{b.ID}, p.CollidedWith())
	assert.Empty(t, env.Effects())
}

func TestProjectileBounces(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b1 := combat.NewUnit(idle("b1", 1000), hex.Coord{Col: 2, Row: 0}, 1, 1)
	b2 := combat.NewUnit(idle("b2", 1000), hex.Coord{Col: 4, Row: 0}, 1, 1)
	far := combat.NewUnit(idle("far", 1000), hex.Coord{Col: 6, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b1, b2, far)

	p := &combat.Projectile{
		EffectBase: combat.EffectBase{DamageCalculation: combat.Flat{Amount: 100, Type: combat.DamageTrue}},
		Missile:    combat.Missile{SpeedInitial: 1800},
		Target:     b1.ID,
		Bounce:     &combat.Bounce{BouncesRemaining: 1, DamageCalculation: combat.Flat{Amount: 40, Type: combat.DamageTrue}, HexRange: 3},
	}
	env.QueueEffect(a, nil, p)
	for range 30 {
		env.Tick(50)
	}

	assert.InDelta(t, 900, b1.Health(), 1e-9)
	assert.InDelta(t, 960, b2.Health(), 1e-9)
	assert.Equal(t, 1000.0, far.Health(), "one bounce only")
}

func TestProjectilePrunedWhenTargetDies(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 6, Row: 6}, 1, 1)
	c := combat.NewUnit(idle("c", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b, c)

	p := &combat.Projectile{
		EffectBase: combat.EffectBase{DamageCalculation: combat.Flat{Amount: 100, Type: combat.DamageTrue}},
		Missile:    combat.Missile{SpeedInitial: 100},
		Target:     b.ID,
	}
	env.QueueEffect(a, nil, p)
	env.Tick(33)
	require.Len(t, env.Effects(), 1)

	require.NoError(t, b.Die(env, nil))
	env.Tick(33)
	assert.Empty(t, env.Effects())
	assert.Equal(t, combat.EffectExpired, p.State())
}

func TestAreaByShapeHitsOnce(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 3, Row: 5}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	area := &combat.AreaByShape{
		EffectBase: combat.EffectBase{
			DamageCalculation: combat.Flat{Amount: 50, Type: combat.DamageTrue},
			ExpiresAfterMS:    1000,
			StatusEffects:     []combat.StatusPayload{{Kind: combat.StatusSilenced, DurationMS: 2000}},
		},
		Shape: combat.Circle{Center: hex.ToPoint(hex.Coord{Col: 3, Row: 5}), Radius: 0.5},
	}
	env.QueueEffect(a, nil, area)
	for range 10 {
		env.Tick(200)
	}
	assert.InDelta(t, 950, b.Health(), 1e-9)
	assert.True(t, b.Status.Active(combat.StatusSilenced))
	assert.Empty(t, env.Effects())
}

func TestAreaByCellsRing(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 3, Row: 3}, 0, 1)
	near := combat.NewUnit(idle("near", 1000), hex.Coord{Col: 3, Row: 4}, 1, 1)
	far := combat.NewUnit(idle("far", 1000), hex.Coord{Col: 3, Row: 6}, 1, 1)
	env := startRound(t, nil, nil, a, near, far)

	payload := &combat.CellsPayload{Radius: 1, RingOnly: true, DamageCalculation: combat.Flat{Amount: 100, Type: combat.DamageTrue}}
	env.QueueEffect(a, nil, payload.At(env.Board, a.ActiveHex))
	env.Tick(33)
	env.Tick(33)

	assert.InDelta(t, 900, near.Health(), 1e-9)
	assert.Equal(t, 1000.0, far.Health())
	assert.Equal(t, 1000.0, a.Health(), "the source team is not hit")
}

func TestFixedTargetTicks(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 6, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	ft := &combat.FixedTarget{
		EffectBase: combat.EffectBase{
			DamageCalculation: combat.Flat{Amount: 10, Type: combat.DamageTrue},
			ExpiresAfterMS:    1000,
		},
		Pairs:       []combat.Pair{{Source: a.ID, Target: b.ID}},
		TickEveryMS: 250,
	}
	env.QueueEffect(a, nil, ft)
	for range 20 {
		env.Tick(100)
	}
	assert.Equal(t, 4, ft.Pulses())
	assert.InDelta(t, 960, b.Health(), 1e-9)
}

func TestEffectLifecycleCallbacks(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 6, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	var order []string
	ft := &combat.FixedTarget{
		EffectBase: combat.EffectBase{
			StartsAfterMS:    100,
			ActivatesAfterMS: 200,
			OnStart:          func(*combat.Env, *combat.EffectBase) { order = append(order, "start") },
			OnActivate:       func(*combat.Env, *combat.EffectBase) { order = append(order, "activate") },
			OnCollided: func(_ *combat.Env, _ *combat.EffectBase, with *combat.Unit, _ *combat.DamageResult) {
				order = append(order, "hit")
			},
		},
		Pairs: []combat.Pair{{Source: a.ID, Target: b.ID}},
	}
	env.QueueEffect(a, nil, ft)
	assert.Equal(t, int64(100), ft.StartsAtMS)
	assert.Equal(t, int64(300), ft.ActivatesAtMS)

	env.Tick(100)
	assert.Equal(t, combat.EffectStarted, ft.State(), "an effect queued between ticks updates on the next one")
	assert.Equal(t, []string{"start"}, order)
	env.Tick(100)
	assert.Equal(t, combat.EffectStarted, ft.State())
	env.Tick(100)
	env.Tick(100)
	assert.Equal(t, []string{"start", "activate", "hit"}, order)
}

func TestTargetTieBreakIsSeeded(t *testing.T) {
	pick := func(rng combat.Uniform) combat.UnitID {
		a := combat.NewUnit(fighter("a", 1000, 10), hex.Coord{Col: 3, Row: 3}, 0, 1)
		left := combat.NewUnit(idle("left", 1000), hex.Coord{Col: 3, Row: 4}, 1, 1)
		right := combat.NewUnit(idle("right", 1000), hex.Coord{Col: 4, Row: 4}, 1, 1)
		env := startRound(t, rng, nil, a, left, right)
		env.Tick(33)
		return a.TargetID()
	}

	assert.Equal(t, combat.UnitID(2), pick(fixedRng{0}))
	assert.Equal(t, combat.UnitID(3), pick(fixedRng{0.99}))
	for seed := int64(1); seed < 6; seed++ {
		assert.Equal(t, pick(rand.New(rand.NewSource(seed))), pick(rand.New(rand.NewSource(seed))))
	}
}

func TestSolverIsInjected(t *testing.T) {
	ctrl := gomock.NewController(t)
	solver := mocks.NewMockSolver(ctrl)
	reg := combat.NewRegistry()
	reg.Solver = solver

	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 0, Row: 7}, 1, 1)
	env := startRound(t, nil, reg, a, b)
	calc := combat.Scaled{Name: "Smite"}

	solver.EXPECT().Solve(a, b, calc).Return(250.0, combat.DamageMagic, nil)
	res := b.Damage(env, combat.Hit{Source: a, Calc: calc})
	assert.Equal(t, combat.DamageMagic, res.DamageType)
	assert.InDelta(t, 750, b.Health(), 1e-9)

	solver.EXPECT().Solve(a, b, calc).Return(0.0, combat.DamageNone, combat.ErrMissingCalc)
	res = b.Damage(env, combat.Hit{Source: a, Calc: calc})
	assert.True(t, res.Rejected)
	assert.InDelta(t, 750, b.Health(), 1e-9)
}

func TestRunEndsWithWinner(t *testing.T) {
	a := combat.NewUnit(fighter("a", 2000, 120), hex.Coord{Col: 3, Row: 1}, 0, 1)
	b := combat.NewUnit(fighter("b", 600, 40), hex.Coord{Col: 3, Row: 6}, 1, 1)
	env := startRound(t, nil, nil, a, b)

	winner, err := env.Run(context.Background(), 33, 60000)
	require.NoError(t, err)
	assert.Equal(t, 0, winner)
	assert.True(t, b.Dead())
	assert.False(t, a.Dead())
	assert.NotEmpty(t, env.Events())
}

func TestRunHonorsContext(t *testing.T) {
	a := combat.NewUnit(idle("a", 1000), hex.Coord{Col: 0, Row: 0}, 0, 1)
	b := combat.NewUnit(idle("b", 1000), hex.Coord{Col: 6, Row: 7}, 1, 1)
	env := startRound(t, nil, nil, a, b)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.Run(ctx, 33, 60000)
	assert.ErrorIs(t, err, context.Canceled)
}
