package combat

import "fmt"

// Stat names a ledger variable.
type Stat string

const (
	StatHealth               Stat = "Health"
	StatHPMultiplier         Stat = "HPMultiplier"
	StatMana                 Stat = "Mana"
	StatMaxMana              Stat = "MaxMana"
	StatManaRestore          Stat = "ManaRestore"
	StatManaRestorePerAttack Stat = "ManaRestorePerAttack"
	StatAttackDamage         Stat = "AD"
	StatAttackDamagePercent  Stat = "ADPercent"
	StatAbilityPower         Stat = "AP"
	StatArmor                Stat = "Armor"
	StatMagicResist          Stat = "MagicResist"
	StatAttackSpeed          Stat = "AS"
	StatCritChance           Stat = "CritChance"
	StatCritMultiplier       Stat = "CritMultiplier"
	StatCritReduction        Stat = "CritReduction"
	StatDodgeChance          Stat = "DodgeChance"
	StatDodgePrevention      Stat = "DodgePrevention"
	StatHexRangeIncrease     Stat = "HexRangeIncrease"
	StatMoveSpeed            Stat = "MoveSpeed"
	StatDamageIncrease       Stat = "DamageIncrease"
	StatDamageReduction      Stat = "DamageReduction"
	StatHealShieldBoost      Stat = "HealShieldBoost"
	StatVampOmni             Stat = "VampOmni"
	StatVampPhysical         Stat = "VampPhysical"
	StatVampSpell            Stat = "VampSpell"
	StatSpellCrit            Stat = "SpellCrit"
)

var knownStats = map[Stat]bool{}

func init() {
	for _, s := range []Stat{
		StatHealth, StatHPMultiplier, StatMana, StatMaxMana, StatManaRestore,
		StatManaRestorePerAttack, StatAttackDamage, StatAttackDamagePercent,
		StatAbilityPower, StatArmor, StatMagicResist, StatAttackSpeed,
		StatCritChance, StatCritMultiplier, StatCritReduction, StatDodgeChance,
		StatDodgePrevention, StatHexRangeIncrease, StatMoveSpeed,
		StatDamageIncrease, StatDamageReduction, StatHealShieldBoost,
		StatVampOmni, StatVampPhysical, StatVampSpell, StatSpellCrit,
	} {
		knownStats[s] = true
	}
}

// ParseStat validates a stat name coming from content data.
func ParseStat(name string) (Stat, error) {
	s := Stat(name)
	if !knownStats[s] {
		return "", fmt.Errorf("%w: %q", ErrUnknownStat, name)
	}
	return s, nil
}

func (s Stat) Known() bool { return knownStats[s] }

// Variants are the ledger keys that all contribute to s for a given star level.
func (s Stat) Variants(star int) []Stat {
	return []Stat{s, "Bonus" + s, Stat(fmt.Sprintf("%dStar%s", star, s))}
}
