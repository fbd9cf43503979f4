package status

import "github.com/cory-johannsen/skirmish/internal/game/event"

// Active pairs an effect with its remaining duration in turns.
type Active struct {
	Effect    Effect
	Remaining int
}

// Set tracks all statuses currently applied to one actor, in application order.
// Several entries of the same kind may coexist.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	active []*Active
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{}
}

// Add appends effect with the given duration and runs its OnApply hook.
//
// Precondition: effect must not be nil; turns > 0.
// Postcondition: Has(effect.Kind()) is true.
func (s *Set) Add(effect Effect, turns int, h Holder, pub event.Publisher) error {
	s.active = append(s.active, &Active{Effect: effect, Remaining: turns})
	return effect.OnApply(h, pub)
}

// Has reports whether any active entry is of kind.
func (s *Set) Has(kind Kind) bool {
	for _, a := range s.active {
		if a.Effect.Kind() == kind {
			return true
		}
	}
	return false
}

// Count returns the number of active entries of kind.
func (s *Set) Count(kind Kind) int {
	n := 0
	for _, a := range s.active {
		if a.Effect.Kind() == kind {
			n++
		}
	}
	return n
}

// Blocking returns the first active effect that blocks the holder's action,
// or nil.
func (s *Set) Blocking() Effect {
	for _, a := range s.active {
		if a.Effect.BlocksAction() {
			return a.Effect
		}
	}
	return nil
}

// Len returns the number of active entries.
func (s *Set) Len() int { return len(s.active) }

// All returns a copy of the active entries. The pointed-to values are shared;
// callers must not modify them.
func (s *Set) All() []*Active {
	out := make([]*Active, len(s.active))
	copy(out, s.active)
	return out
}

// TickStart runs OnTurnStart for every entry in application order.
func (s *Set) TickStart(h Holder, pub event.Publisher) error {
	for _, a := range s.All() {
		if err := a.Effect.OnTurnStart(h, pub); err != nil {
			return err
		}
	}
	return nil
}

// TickEnd runs OnTurnEnd for every entry, decrements each remaining counter
// exactly once and prunes entries that reached zero.
//
// Postcondition: every returned effect has been removed from the set.
func (s *Set) TickEnd(h Holder, pub event.Publisher) ([]Effect, error) {
	for _, a := range s.active {
		if err := a.Effect.OnTurnEnd(h, pub); err != nil {
			return nil, err
		}
	}
	var expired []Effect
	kept := s.active[:0]
	for _, a := range s.active {
		a.Remaining--
		if a.Remaining <= 0 {
			expired = append(expired, a.Effect)
			continue
		}
		kept = append(kept, a)
	}
	clear(s.active[len(kept):])
	s.active = kept
	return expired, nil
}

// Clear removes every entry.
func (s *Set) Clear() {
	s.active = nil
}
