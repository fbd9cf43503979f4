package combat

import (
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// TurnSlot is one candidate for the acting order of a round.
type TurnSlot struct {
	Handle Handle
	Speed  int
}

// TurnOrderStrategy computes the acting order of a round.
type TurnOrderStrategy interface {
	// Order returns the handles of slots in acting order.
	Order(slots []TurnSlot, src dice.Source) []Handle
}

// TieBreak selects how SpeedOrder orders actors of equal speed.
type TieBreak int

const (
	// TieBreakJitter draws one random value per actor per round.
	TieBreakJitter TieBreak = iota
	// TieBreakRoster keeps roster order among equals.
	TieBreakRoster
)

// ParseTieBreak maps a config name to a TieBreak.
func ParseTieBreak(s string) (TieBreak, bool) {
	switch s {
	case "jitter", "":
		return TieBreakJitter, true
	case "roster":
		return TieBreakRoster, true
	default:
		return 0, false
	}
}

// SpeedOrder sorts by speed descending.
type SpeedOrder struct {
	TieBreak TieBreak
}

// Order implements TurnOrderStrategy.
//
// Postcondition: the result is a permutation of the slot handles with
// non-increasing speed. With TieBreakRoster no randomness is drawn; with
// TieBreakJitter exactly len(slots) values are drawn.
func (o SpeedOrder) Order(slots []TurnSlot, src dice.Source) []Handle {
	type keyed struct {
		TurnSlot
		jitter float64
	}
	ks := make([]keyed, len(slots))
	for i, s := range slots {
		ks[i] = keyed{TurnSlot: s}
		if o.TieBreak == TieBreakJitter {
			ks[i].jitter = src.Float64()
		}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].Speed != ks[j].Speed {
			return ks[i].Speed > ks[j].Speed
		}
		return ks[i].jitter > ks[j].jitter
	})
	out := make([]Handle, len(ks))
	for i, k := range ks {
		out[i] = k.Handle
	}
	return out
}
