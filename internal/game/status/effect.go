// Package status implements the timed status effects (burn, bleed, freeze,
// stun, root, guard) that can be attached to actors during a battle.
package status

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
)

// Kind identifies a status effect variant.
type Kind int

const (
	KindBurn Kind = iota + 1
	KindBleed
	KindFreeze
	KindStun
	KindRoot
	KindGuard
)

// String returns the lower-case content name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBurn:
		return "burn"
	case KindBleed:
		return "bleed"
	case KindFreeze:
		return "freeze"
	case KindStun:
		return "stun"
	case KindRoot:
		return "root"
	case KindGuard:
		return "guard"
	default:
		return "unknown"
	}
}

// ParseKind maps a content name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k := KindBurn; k <= KindGuard; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown status kind %q", s)
}

// Default damage-over-time rates as a fraction of max HP.
const (
	DefaultBurnRate  = 0.04
	DefaultBleedRate = 0.03
)

// Holder is the subset of an actor a status effect acts upon.
type Holder interface {
	Ref() event.Ref
	MaxHP() int
	IsAlive() bool
	// ApplyTrueDamage removes HP without mitigation and reports the HP lost
	// and whether this damage killed the holder.
	ApplyTrueDamage(amount int) (dealt int, killed bool)
}

// Effect is one status variant.
type Effect interface {
	Kind() Kind
	// Name is the display name shown in narration.
	Name() string
	OnApply(h Holder, pub event.Publisher) error
	OnTurnStart(h Holder, pub event.Publisher) error
	OnTurnEnd(h Holder, pub event.Publisher) error
	// BlocksAction reports whether the holder's action is skipped.
	BlocksAction() bool
}

// marker is the shared no-op behaviour of effects without tick effects.
type marker struct {
	kind   Kind
	name   string
	blocks bool
}

func (m marker) Kind() Kind                                { return m.kind }
func (m marker) Name() string                              { return m.name }
func (m marker) OnApply(Holder, event.Publisher) error     { return nil }
func (m marker) OnTurnStart(Holder, event.Publisher) error { return nil }
func (m marker) OnTurnEnd(Holder, event.Publisher) error   { return nil }
func (m marker) BlocksAction() bool                        { return m.blocks }

// Freeze skips the holder's action.
func Freeze() Effect { return marker{kind: KindFreeze, name: "Freeze", blocks: true} }

// Stun skips the holder's action.
func Stun() Effect { return marker{kind: KindStun, name: "Stun", blocks: true} }

// Root prevents the holder from changing lanes.
func Root() Effect { return marker{kind: KindRoot, name: "Root"} }

// Guard reduces incoming damage; it is read by the damage pipeline.
func Guard() Effect { return marker{kind: KindGuard, name: "Guard"} }

// DamageOverTime deals true damage at the start of each of the holder's turns.
type DamageOverTime struct {
	kind Kind
	name string
	// Rate is the fraction of max HP lost per tick.
	Rate float64
}

// Burn returns a burn effect at the default rate.
func Burn() *DamageOverTime { return &DamageOverTime{kind: KindBurn, name: "Burn", Rate: DefaultBurnRate} }

// Bleed returns a bleed effect at the default rate.
func Bleed() *DamageOverTime {
	return &DamageOverTime{kind: KindBleed, name: "Bleed", Rate: DefaultBleedRate}
}

func (d *DamageOverTime) Kind() Kind                              { return d.kind }
func (d *DamageOverTime) Name() string                            { return d.name }
func (d *DamageOverTime) OnApply(Holder, event.Publisher) error   { return nil }
func (d *DamageOverTime) OnTurnEnd(Holder, event.Publisher) error { return nil }
func (d *DamageOverTime) BlocksAction() bool                      { return false }

// TickDamage returns the damage dealt per tick to a holder with maxHP.
//
// Postcondition: returns >= 1.
func (d *DamageOverTime) TickDamage(maxHP int) int {
	return max(1, stats.Round(float64(maxHP)*d.Rate))
}

// OnTurnStart deals the tick damage, publishing DAMAGE and, on a kill, DEATH.
// A holder that is already dead takes no further damage.
func (d *DamageOverTime) OnTurnStart(h Holder, pub event.Publisher) error {
	if !h.IsAlive() {
		return nil
	}
	dealt, killed := h.ApplyTrueDamage(d.TickDamage(h.MaxHP()))
	if err := pub.Publish(event.GameEvent{
		Kind:   event.Damage,
		Target: h.Ref(),
		Amount: dealt,
		Detail: d.name,
	}); err != nil {
		return err
	}
	if killed {
		return pub.Publish(event.GameEvent{
			Kind:   event.Death,
			Target: h.Ref(),
			Detail: d.name,
		})
	}
	return nil
}

// New builds the effect for kind. rate overrides the damage-over-time rate
// when > 0 and is ignored by other kinds.
func New(kind Kind, rate float64) (Effect, error) {
	switch kind {
	case KindBurn:
		e := Burn()
		if rate > 0 {
			e.Rate = rate
		}
		return e, nil
	case KindBleed:
		e := Bleed()
		if rate > 0 {
			e.Rate = rate
		}
		return e, nil
	case KindFreeze:
		return Freeze(), nil
	case KindStun:
		return Stun(), nil
	case KindRoot:
		return Root(), nil
	case KindGuard:
		return Guard(), nil
	default:
		return nil, fmt.Errorf("unknown status kind %d", int(kind))
	}
}
