package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// fixedSrc returns the same values for every draw.
type fixedSrc struct {
	f float64
	n int
}

func (s fixedSrc) Intn(n int) int {
	if s.n >= n {
		return n - 1
	}
	return s.n
}

func (s fixedSrc) Float64() float64 { return s.f }

func newEnemy(name string, st stats.Stats) *actor.Actor {
	return actor.New(name, "", actor.KindEnemy, actor.TeamEnemy, st)
}

func newHero(name string, st stats.Stats) *actor.Actor {
	return actor.New(name, "", actor.KindPlayer, actor.TeamHero, st)
}

func TestStandardCalculator_ScenarioA(t *testing.T) {
	calc := combat.StandardCalculator{}
	attacker := newHero("A", stats.Stats{MaxHP: 10, HP: 10, Strength: 14})
	target := newEnemy("T", stats.Stats{MaxHP: 100, HP: 100, DefensePercent: 10, Armor: 5})
	s := &skill.Skill{ID: "slash", Element: skill.Physical, BasePower: 12, ScaleStrength: 1.1}

	raw := calc.Raw(attacker, s)
	require.Equal(t, 27, raw)

	raw, crit := calc.Crit(attacker, raw, fixedSrc{f: 0.5})
	assert.False(t, crit)

	res := calc.Mitigate(target, s.Element, raw, false, false)
	assert.Equal(t, 19, res.Damage)
	assert.Equal(t, 5, res.Absorbed)
	assert.Equal(t, 1, res.Wear)
	assert.False(t, res.Immune)
}

func TestStandardCalculator_Raw_FlooredAtZero(t *testing.T) {
	attacker := newHero("A", stats.Stats{MaxHP: 10, HP: 10})
	s := &skill.Skill{ID: "weak", BasePower: -20}
	assert.Equal(t, 0, combat.StandardCalculator{}.Raw(attacker, s))
}

func TestStandardCalculator_Crit(t *testing.T) {
	calc := combat.StandardCalculator{}
	attacker := newHero("A", stats.Stats{MaxHP: 10, HP: 10, CritChance: 0.1})

	dmg, crit := calc.Crit(attacker, 27, fixedSrc{f: 0.05})
	assert.True(t, crit)
	assert.Equal(t, 41, dmg) // 40.5 rounds half-up

	dmg, crit = calc.Crit(attacker, 27, fixedSrc{f: 0.1})
	assert.False(t, crit)
	assert.Equal(t, 27, dmg)
}

func TestStandardCalculator_GuardComposesWithAffinities(t *testing.T) {
	calc := combat.StandardCalculator{}
	plain := newEnemy("P", stats.Stats{MaxHP: 500, HP: 500})
	weak := newEnemy("W", stats.Stats{MaxHP: 500, HP: 500})
	weak.Weaknesses = skill.NewElementSet(skill.Fire)
	resist := newEnemy("R", stats.Stats{MaxHP: 500, HP: 500})
	resist.Resistances = skill.NewElementSet(skill.Fire)

	assert.Equal(t, 60, calc.Mitigate(plain, skill.Fire, 100, false, true).Damage)
	assert.Equal(t, 84, calc.Mitigate(weak, skill.Fire, 100, false, true).Damage)
	assert.Equal(t, 45, calc.Mitigate(resist, skill.Fire, 100, false, true).Damage)
	assert.Equal(t, 140, calc.Mitigate(weak, skill.Fire, 100, false, false).Damage)
	assert.Equal(t, 75, calc.Mitigate(resist, skill.Fire, 100, false, false).Damage)
}

func TestStandardCalculator_PierceSkipsArmor(t *testing.T) {
	target := newEnemy("T", stats.Stats{MaxHP: 100, HP: 100, Armor: 10})
	res := combat.StandardCalculator{}.Mitigate(target, skill.Physical, 20, true, false)
	assert.Equal(t, 20, res.Damage)
	assert.Zero(t, res.Absorbed)
	assert.Zero(t, res.Wear)
}

func TestStandardCalculator_ArmorLeavesOnePoint(t *testing.T) {
	target := newEnemy("T", stats.Stats{MaxHP: 100, HP: 100, Armor: 50})
	res := combat.StandardCalculator{}.Mitigate(target, skill.Physical, 9, false, false)
	assert.Equal(t, 1, res.Damage)
	assert.Equal(t, 8, res.Absorbed)
	assert.Equal(t, 2, res.Wear)
}

func TestProperty_Mitigate_ImmuneAlwaysZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		target := newEnemy("T", stats.Stats{
			MaxHP:          100,
			HP:             100,
			Armor:          rapid.IntRange(0, 50).Draw(rt, "armor"),
			DefensePercent: rapid.IntRange(0, 100).Draw(rt, "def"),
		})
		target.Immunities = skill.NewElementSet(skill.Fire)
		target.Weaknesses = skill.NewElementSet(skill.Fire)
		raw := rapid.IntRange(0, 100000).Draw(rt, "raw")
		res := combat.StandardCalculator{}.Mitigate(target, skill.Fire, raw,
			rapid.Bool().Draw(rt, "pierce"), rapid.Bool().Draw(rt, "guard"))
		if res.Damage != 0 || res.Wear != 0 || !res.Immune {
			rt.Fatalf("immune target took %+v", res)
		}
	})
}

func TestProperty_Mitigate_BoundsAndWear(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		armor := rapid.IntRange(0, 60).Draw(rt, "armor")
		target := newEnemy("T", stats.Stats{
			MaxHP:          100,
			HP:             100,
			Armor:          armor,
			DefensePercent: rapid.IntRange(0, 100).Draw(rt, "def"),
		})
		if rapid.Bool().Draw(rt, "weak") {
			target.Weaknesses = skill.NewElementSet(skill.Ice)
		}
		if rapid.Bool().Draw(rt, "resist") {
			target.Resistances = skill.NewElementSet(skill.Ice)
		}
		raw := rapid.IntRange(0, 5000).Draw(rt, "raw")
		res := combat.StandardCalculator{}.Mitigate(target, skill.Ice, raw, false, rapid.Bool().Draw(rt, "guard"))

		if res.Damage < 0 {
			rt.Fatalf("negative damage %d", res.Damage)
		}
		if res.Absorbed > armor {
			rt.Fatalf("absorbed %d exceeds armor %d", res.Absorbed, armor)
		}
		if res.Absorbed == 0 && res.Wear != 0 {
			rt.Fatalf("wear %d without absorption", res.Wear)
		}
		if res.Absorbed > 0 && res.Wear != min(armor, max(1, res.Absorbed/3)) {
			rt.Fatalf("wear %d for absorbed %d", res.Wear, res.Absorbed)
		}
		target.Stats.WearArmor(res.Wear)
		if target.Stats.Armor < 0 {
			rt.Fatalf("armor went negative")
		}
	})
}

func newSeeded(seed uint64) dice.Source { return dice.NewSeededSource(seed) }
