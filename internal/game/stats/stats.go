// Package stats provides the mutable attribute and resource bundle owned by
// every actor in a battle.
package stats

import "math"

// Stats holds an actor's resource pools and attributes.
//
// Invariant: 0 <= HP <= MaxHP, 0 <= MP <= MaxMP, 0 <= SP <= MaxSP,
// Armor >= 0 and 0 <= CritChance <= 1 after every mutation made through
// the methods below.
type Stats struct {
	MaxHP int `yaml:"max_hp"`
	HP    int `yaml:"hp"`
	MaxMP int `yaml:"max_mp"`
	MP    int `yaml:"mp"`
	MaxSP int `yaml:"max_sp"`
	SP    int `yaml:"sp"`

	Strength  int `yaml:"strength"`
	Intellect int `yaml:"intellect"`
	// DefensePercent is a flat percentage reduction applied after multipliers.
	DefensePercent int `yaml:"defense_percent"`
	// Armor absorbs flat damage and wears down as it does so.
	Armor      int     `yaml:"armor"`
	Speed      int     `yaml:"speed"`
	CritChance float64 `yaml:"crit_chance"`
}

// Round rounds x half-up (floor(x+0.5)), the rounding used by every damage
// and healing formula in the engine.
func Round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// IsAlive reports whether HP > 0.
func (s *Stats) IsAlive() bool { return s.HP > 0 }

// Clamp restores the invariant on every pool and bounded attribute.
//
// Postcondition: all pools within [0, max]; Armor >= 0; CritChance in [0, 1].
func (s *Stats) Clamp() {
	if s.MaxHP < 0 {
		s.MaxHP = 0
	}
	if s.MaxMP < 0 {
		s.MaxMP = 0
	}
	if s.MaxSP < 0 {
		s.MaxSP = 0
	}
	s.HP = clampInt(s.HP, 0, s.MaxHP)
	s.MP = clampInt(s.MP, 0, s.MaxMP)
	s.SP = clampInt(s.SP, 0, s.MaxSP)
	if s.Armor < 0 {
		s.Armor = 0
	}
	s.CritChance = math.Min(1, math.Max(0, s.CritChance))
}

// Damage reduces HP by amount and returns the HP actually lost.
//
// Precondition: amount >= 0; negative amounts are treated as 0.
// Postcondition: 0 <= HP <= MaxHP; return value <= amount.
func (s *Stats) Damage(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := s.HP
	s.HP -= amount
	s.Clamp()
	return before - s.HP
}

// Heal restores HP by amount and returns the HP actually gained.
//
// Postcondition: 0 <= HP <= MaxHP.
func (s *Stats) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := s.HP
	s.HP += amount
	s.Clamp()
	return s.HP - before
}

// RestoreMP restores mana and returns the amount gained.
func (s *Stats) RestoreMP(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := s.MP
	s.MP += amount
	s.Clamp()
	return s.MP - before
}

// RestoreSP restores stamina and returns the amount gained.
func (s *Stats) RestoreSP(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := s.SP
	s.SP += amount
	s.Clamp()
	return s.SP - before
}

// CanAfford reports whether both pools cover the given costs.
func (s *Stats) CanAfford(mp, sp int) bool {
	return s.MP >= mp && s.SP >= sp
}

// Spend debits mana and stamina together.
//
// Precondition: CanAfford(mp, sp) is true.
// Postcondition: on false return no pool was changed.
func (s *Stats) Spend(mp, sp int) bool {
	if !s.CanAfford(mp, sp) {
		return false
	}
	s.MP -= mp
	s.SP -= sp
	s.Clamp()
	return true
}

// WearArmor lowers Armor by amount, flooring at zero.
func (s *Stats) WearArmor(amount int) {
	s.Armor -= amount
	s.Clamp()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
