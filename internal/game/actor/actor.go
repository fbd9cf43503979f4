// Package actor provides the combatants of a battle: player-controlled heroes
// and AI-controlled enemies, each owning stats, skills, inventory, equipment
// and active statuses.
package actor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// Kind distinguishes player-controlled actors from enemies.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns "player" or "enemy".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// ParseKind maps a content name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "player":
		return KindPlayer, nil
	case "enemy", "":
		return KindEnemy, nil
	default:
		return 0, fmt.Errorf("unknown actor kind %q", s)
	}
}

// Team is the side an actor fights on.
type Team int

const (
	TeamHero Team = iota
	TeamEnemy
)

// String returns "HERO" or "ENEMY".
func (t Team) String() string {
	if t == TeamHero {
		return "HERO"
	}
	return "ENEMY"
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamHero {
		return TeamEnemy
	}
	return TeamHero
}

// Position is the lane an actor stands in.
type Position int

const (
	Front Position = iota
	Back
)

// String returns "FRONT" or "BACK".
func (p Position) String() string {
	if p == Front {
		return "FRONT"
	}
	return "BACK"
}

// ParsePosition maps a content name to a Position; "" means front.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "", "front", "FRONT":
		return Front, nil
	case "back", "BACK":
		return Back, nil
	default:
		return 0, fmt.Errorf("unknown position %q", s)
	}
}

// Actor is one combatant. Actors are created fully formed by a factory and
// mutated by combat actions and status ticks; they are never removed from a
// battle, even at 0 HP.
type Actor struct {
	ID       string
	Class    string
	Name     string
	Kind     Kind
	Team     Team
	Position Position
	Stats    stats.Stats

	Inventory *inventory.Inventory
	Statuses  *status.Set

	Weaknesses  skill.ElementSet
	Resistances skill.ElementSet
	Immunities  skill.ElementSet

	// Behavior names the AI controller used when no player drives this actor.
	Behavior string

	skills   []*skill.Skill
	equipped map[inventory.Slot]*inventory.Equipment
	applied  map[inventory.Slot]stats.Applied
}

// New creates an actor with a fresh ID, empty inventory and no statuses.
//
// Postcondition: st is clamped; IsAlive() reports st.HP > 0.
func New(name, class string, kind Kind, team Team, st stats.Stats) *Actor {
	st.Clamp()
	return &Actor{
		ID:          uuid.New().String(),
		Class:       class,
		Name:        name,
		Kind:        kind,
		Team:        team,
		Stats:       st,
		Inventory:   inventory.New(),
		Statuses:    status.NewSet(),
		Weaknesses:  skill.NewElementSet(),
		Resistances: skill.NewElementSet(),
		Immunities:  skill.NewElementSet(),
		equipped:    make(map[inventory.Slot]*inventory.Equipment),
		applied:     make(map[inventory.Slot]stats.Applied),
	}
}

// IsAlive reports whether HP > 0.
func (a *Actor) IsAlive() bool { return a.Stats.IsAlive() }

// IsPlayer reports whether the actor is player-controlled.
func (a *Actor) IsPlayer() bool { return a.Kind == KindPlayer }

// Ref returns an event snapshot of the actor's identity.
func (a *Actor) Ref() event.Ref {
	return event.Ref{ID: a.ID, Name: a.Name, Team: a.Team.String()}
}

// MaxHP returns the current maximum HP.
func (a *Actor) MaxHP() int { return a.Stats.MaxHP }

// ApplyTrueDamage removes HP without mitigation.
//
// Postcondition: killed is true iff the actor was alive before and is dead after.
func (a *Actor) ApplyTrueDamage(amount int) (dealt int, killed bool) {
	was := a.IsAlive()
	dealt = a.Stats.Damage(amount)
	return dealt, was && !a.IsAlive()
}

// Learn adds s to the known skills unless a skill with the same ID is known.
//
// Postcondition: returns true iff s was added.
func (a *Actor) Learn(s *skill.Skill) bool {
	for _, k := range a.skills {
		if k.ID == s.ID {
			return false
		}
	}
	a.skills = append(a.skills, s)
	return true
}

// KnownSkills returns the learned skills in learning order.
func (a *Actor) KnownSkills() []*skill.Skill {
	out := make([]*skill.Skill, len(a.skills))
	copy(out, a.skills)
	return out
}

// Skills returns the learned skills followed by skills granted by equipment,
// without duplicates.
func (a *Actor) Skills() []*skill.Skill {
	out := a.KnownSkills()
	seen := make(map[string]struct{}, len(out))
	for _, s := range out {
		seen[s.ID] = struct{}{}
	}
	for _, slot := range []inventory.Slot{inventory.SlotWeapon, inventory.SlotHead, inventory.SlotBody, inventory.SlotAccessory} {
		eq := a.equipped[slot]
		if eq == nil {
			continue
		}
		for _, s := range eq.Grants {
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Equip puts eq in its slot, applying its stat delta. Any piece already in
// that slot is unequipped first and returned.
func (a *Actor) Equip(eq *inventory.Equipment) *inventory.Equipment {
	prev := a.Unequip(eq.Slot)
	a.equipped[eq.Slot] = eq
	a.applied[eq.Slot] = a.Stats.Apply(eq.Delta)
	return prev
}

// Unequip removes the piece in slot, reverting the stat change its Equip made.
//
// Postcondition: returns nil if the slot was empty; otherwise equip followed
// by unequip leaves Stats as they were before the equip.
func (a *Actor) Unequip(slot inventory.Slot) *inventory.Equipment {
	eq := a.equipped[slot]
	if eq == nil {
		return nil
	}
	a.Stats.Revert(a.applied[slot])
	delete(a.equipped, slot)
	delete(a.applied, slot)
	return eq
}

// Equipped returns the piece in slot, or nil.
func (a *Actor) Equipped(slot inventory.Slot) *inventory.Equipment {
	return a.equipped[slot]
}

// AddStatus attaches effect for turns turns.
func (a *Actor) AddStatus(effect status.Effect, turns int, pub event.Publisher) error {
	return a.Statuses.Add(effect, turns, a, pub)
}

// HasGuard reports whether an unexpired Guard is active.
func (a *Actor) HasGuard() bool { return a.Statuses.Has(status.KindGuard) }

// HasRoot reports whether an unexpired Root is active.
func (a *Actor) HasRoot() bool { return a.Statuses.Has(status.KindRoot) }

// Blocker returns the status preventing this actor from acting, or nil.
func (a *Actor) Blocker() status.Effect { return a.Statuses.Blocking() }

// TickStart runs start-of-turn status hooks.
func (a *Actor) TickStart(pub event.Publisher) error {
	return a.Statuses.TickStart(a, pub)
}

// TickEnd runs end-of-turn status hooks and expires finished statuses.
func (a *Actor) TickEnd(pub event.Publisher) ([]status.Effect, error) {
	return a.Statuses.TickEnd(a, pub)
}

// String returns "Name (Class)".
func (a *Actor) String() string {
	if a.Class == "" {
		return a.Name
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Class)
}
