// Package skill defines the immutable combat-action templates actors use in
// battle and the YAML loader that builds them.
package skill

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// TargetShape selects which actors a skill resolves against.
type TargetShape int

const (
	TargetSingle TargetShape = iota
	TargetAllEnemies
	TargetAllAllies
)

// String returns the content name of the shape.
func (t TargetShape) String() string {
	switch t {
	case TargetSingle:
		return "single"
	case TargetAllEnemies:
		return "all_enemies"
	case TargetAllAllies:
		return "all_allies"
	default:
		return "unknown"
	}
}

// ParseTargetShape maps a content name to a TargetShape; "" means single.
func ParseTargetShape(s string) (TargetShape, error) {
	switch s {
	case "", "single":
		return TargetSingle, nil
	case "all_enemies":
		return TargetAllEnemies, nil
	case "all_allies":
		return TargetAllAllies, nil
	default:
		return 0, fmt.Errorf("unknown target shape %q", s)
	}
}

// Skill is an immutable combat-action template. Skills are shared between
// actors by pointer and must never be mutated after construction.
type Skill struct {
	ID             string
	Name           string
	Element        Element
	BasePower      int
	ScaleStrength  float64
	ScaleIntellect float64
	MPCost         int
	SPCost         int
	Target         TargetShape
	IgnoreLine     bool
	PierceArmor    bool
	// Status is applied to each surviving target when non-nil.
	Status         status.Effect
	StatusDuration int
}

// HasStatus reports whether the skill carries an attached status.
func (s *Skill) HasStatus() bool {
	return s.Status != nil && s.StatusDuration > 0
}

// basicAttack is the zero-cost pseudo-skill behind the plain Attack command.
var basicAttack = &Skill{
	ID:            "basic_attack",
	Name:          "Attack",
	Element:       Physical,
	ScaleStrength: 1.0,
	Target:        TargetSingle,
}

// BasicAttack returns the shared basic-attack pseudo-skill: physical,
// power 0, scaling 1.0 with strength, no costs.
func BasicAttack() *Skill { return basicAttack }
