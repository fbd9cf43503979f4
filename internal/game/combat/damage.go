package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Damage pipeline multipliers.
const (
	CritMultiplier       = 1.5
	WeaknessMultiplier   = 1.4
	ResistanceMultiplier = 0.75
	GuardMultiplier      = 0.6
)

// Mitigation is the outcome of running raw damage through a target's defenses.
type Mitigation struct {
	// Damage is the final HP loss; always >= 0.
	Damage int
	// Immune is true when the element was negated entirely.
	Immune bool
	// Absorbed is the damage soaked by flat armor.
	Absorbed int
	// Wear is how much armor the target loses from this hit.
	Wear int
}

// DamageCalculator computes raw damage and mitigation. Implementations must
// not mutate their arguments.
type DamageCalculator interface {
	// Raw returns the pre-crit damage of s used by attacker; never negative.
	Raw(attacker *actor.Actor, s *skill.Skill) int
	// Crit draws once from src and returns raw, possibly multiplied.
	Crit(attacker *actor.Actor, raw int, src dice.Source) (int, bool)
	// Mitigate runs raw through target's defenses.
	Mitigate(target *actor.Actor, element skill.Element, raw int, pierceArmor, guardActive bool) Mitigation
}

// StandardCalculator is the default DamageCalculator.
type StandardCalculator struct{}

// Raw implements DamageCalculator.
//
// Postcondition: returns round(base + str*scaleStr + int*scaleInt) floored at 0.
func (StandardCalculator) Raw(attacker *actor.Actor, s *skill.Skill) int {
	st := attacker.Stats
	raw := stats.Round(float64(s.BasePower) +
		float64(st.Strength)*s.ScaleStrength +
		float64(st.Intellect)*s.ScaleIntellect)
	return max(0, raw)
}

// Crit implements DamageCalculator.
func (StandardCalculator) Crit(attacker *actor.Actor, raw int, src dice.Source) (int, bool) {
	if src.Float64() < attacker.Stats.CritChance {
		return stats.Round(float64(raw) * CritMultiplier), true
	}
	return raw, false
}

// Mitigate implements DamageCalculator.
//
// Postcondition: Damage >= 0; Absorbed <= target armor; Wear is 0 when
// nothing was absorbed and never exceeds the armor the target has.
func (StandardCalculator) Mitigate(target *actor.Actor, element skill.Element, raw int, pierceArmor, guardActive bool) Mitigation {
	if target.Immunities.Has(element) {
		return Mitigation{Immune: true}
	}

	m := 1.0
	if target.Weaknesses.Has(element) {
		m *= WeaknessMultiplier
	}
	if target.Resistances.Has(element) {
		m *= ResistanceMultiplier
	}
	if guardActive {
		m *= GuardMultiplier
	}
	v := stats.Round(float64(raw) * m)
	v = stats.Round(float64(v) * (1 - float64(target.Stats.DefensePercent)/100))

	var out Mitigation
	if !pierceArmor {
		armor := target.Stats.Armor
		out.Absorbed = min(armor, max(0, v-1))
		v -= out.Absorbed
		if out.Absorbed > 0 {
			out.Wear = min(armor, max(1, out.Absorbed/3))
		}
	}
	out.Damage = max(0, v)
	return out
}
