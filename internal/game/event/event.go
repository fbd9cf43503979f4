// Package event provides the synchronous, ordered event bus that carries
// combat occurrences from the engine to presentation and logging listeners.
package event

import "fmt"

// Kind identifies what happened.
type Kind int

const (
	TurnStart Kind = iota
	TurnEnd
	Damage
	Heal
	Death
	StatusApplied
	RoundStart
	RoundEnd
	Narration
	BattleEnd
)

// String returns the upper-case wire name of the kind.
func (k Kind) String() string {
	switch k {
	case TurnStart:
		return "TURN_START"
	case TurnEnd:
		return "TURN_END"
	case Damage:
		return "DAMAGE"
	case Heal:
		return "HEAL"
	case Death:
		return "DEATH"
	case StatusApplied:
		return "STATUS_APPLIED"
	case RoundStart:
		return "ROUND_START"
	case RoundEnd:
		return "ROUND_END"
	case Narration:
		return "NARRATION"
	case BattleEnd:
		return "BATTLE_END"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// Ref is a snapshot of an actor's identity taken when the event was built.
// The zero Ref means "no actor".
type Ref struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Team string `json:"team,omitempty"`
}

// IsZero reports whether r names no actor.
func (r Ref) IsZero() bool { return r.ID == "" && r.Name == "" }

// GameEvent is an immutable record of one combat occurrence.
type GameEvent struct {
	Kind   Kind
	Actor  Ref
	Target Ref
	Amount int
	Detail string
}

// Listener consumes published events.
//
// A non-nil error halts the fan-out and is returned to the publisher.
type Listener interface {
	OnEvent(ev GameEvent) error
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(ev GameEvent) error

// OnEvent calls f(ev).
func (f ListenerFunc) OnEvent(ev GameEvent) error { return f(ev) }

// Publisher is the write side of the bus, handed to code that only emits.
type Publisher interface {
	Publish(ev GameEvent) error
}
