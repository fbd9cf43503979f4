package stats

import (
	"errors"
	"fmt"
)

// Delta is an additive stat modification carried by a piece of equipment.
//
// Pool deltas only raise maxima so that Apply followed by Revert nets to the
// original Stats; current pool values are never touched by Apply.
type Delta struct {
	MaxHP          int     `yaml:"max_hp"`
	MaxMP          int     `yaml:"max_mp"`
	MaxSP          int     `yaml:"max_sp"`
	Strength       int     `yaml:"strength"`
	Intellect      int     `yaml:"intellect"`
	DefensePercent int     `yaml:"defense_percent"`
	Armor          int     `yaml:"armor"`
	Speed          int     `yaml:"speed"`
	CritChance     float64 `yaml:"crit_chance"`
}

// Validate reports an error if a pool delta is negative.
func (d Delta) Validate() error {
	var errs []error
	if d.MaxHP < 0 {
		errs = append(errs, errors.New("max_hp delta must be >= 0"))
	}
	if d.MaxMP < 0 {
		errs = append(errs, errors.New("max_mp delta must be >= 0"))
	}
	if d.MaxSP < 0 {
		errs = append(errs, errors.New("max_sp delta must be >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("delta validation failed: %v", errs)
	}
	return nil
}

// Applied is the change an Apply call actually made. Clamping can cut a
// delta short, so reverting the nominal delta would not restore the original.
type Applied struct {
	delta      Delta
	critBefore float64
	critAfter  float64
}

// Delta returns the effective delta.
func (a Applied) Delta() Delta { return a.delta }

// Apply adds d to s and returns the change that took effect.
//
// Precondition: d.Validate() == nil.
func (s *Stats) Apply(d Delta) Applied {
	before := *s
	s.add(d, 1)
	return Applied{
		delta: Delta{
			MaxHP:          s.MaxHP - before.MaxHP,
			MaxMP:          s.MaxMP - before.MaxMP,
			MaxSP:          s.MaxSP - before.MaxSP,
			Strength:       s.Strength - before.Strength,
			Intellect:      s.Intellect - before.Intellect,
			DefensePercent: s.DefensePercent - before.DefensePercent,
			Armor:          s.Armor - before.Armor,
			Speed:          s.Speed - before.Speed,
			CritChance:     s.CritChance - before.CritChance,
		},
		critBefore: before.CritChance,
		critAfter:  s.CritChance,
	}
}

// Revert undoes a. Other changes made to s since the Apply are kept.
//
// Postcondition: if s has not changed since the Apply that returned a, s
// equals the Stats before that Apply.
func (s *Stats) Revert(a Applied) {
	untouched := s.CritChance == a.critAfter
	s.add(a.delta, -1)
	// Float subtraction does not always invert addition.
	if untouched {
		s.CritChance = a.critBefore
	}
}

func (s *Stats) add(d Delta, sign int) {
	s.MaxHP += sign * d.MaxHP
	s.MaxMP += sign * d.MaxMP
	s.MaxSP += sign * d.MaxSP
	s.Strength += sign * d.Strength
	s.Intellect += sign * d.Intellect
	s.DefensePercent += sign * d.DefensePercent
	s.Armor += sign * d.Armor
	s.Speed += sign * d.Speed
	s.CritChance += float64(sign) * d.CritChance
	s.Clamp()
}
