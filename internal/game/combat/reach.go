package combat

import "github.com/cory-johannsen/skirmish/internal/game/actor"

// CanReach reports whether target can be hit given its teammates. A living
// front line shields the back line unless ignoreLine is set.
//
// Precondition: teammates is target's full roster; target may be among them.
func CanReach(target *actor.Actor, teammates []*actor.Actor, ignoreLine bool) bool {
	if ignoreLine || target.Position == actor.Front {
		return true
	}
	for _, a := range teammates {
		if a.IsAlive() && a.Position == actor.Front {
			return false
		}
	}
	return true
}

// CanReach reports whether attacker can currently hit target. Reach is
// evaluated against the live roster, so it must be checked at execution time.
func (b *Battle) CanReach(attacker, target Handle, ignoreLine bool) bool {
	if b.Actor(attacker) == nil {
		return false
	}
	t := b.Actor(target)
	if t == nil {
		return false
	}
	return CanReach(t, b.actorsOf(b.Roster(t.Team)), ignoreLine)
}
