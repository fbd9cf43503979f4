package ai

import (
	"context"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Built-in behavior names as used in actor templates.
const (
	BehaviorAggressive = "aggressive"
	BehaviorTactical   = "tactical"
)

// DefaultAggression is the probability that Tactical attacks instead of defending.
const DefaultAggression = 0.7

// Aggressive attacks a uniformly random living opponent.
type Aggressive struct{}

// Decide implements combat.Controller.
//
// Postcondition: enqueues an Attack, or nothing if no opponent is alive.
func (Aggressive) Decide(_ context.Context, b *combat.Battle, self combat.Handle) error {
	opp := b.Opponents(self)
	if len(opp) == 0 {
		return nil
	}
	return b.Enqueue(combat.Attack{Target: opp[b.Source().Intn(len(opp))]})
}

// Tactical behaves as Aggressive with probability Aggression and defends otherwise.
type Tactical struct {
	Aggression float64
}

// NewTactical returns a Tactical using DefaultAggression.
func NewTactical() Tactical { return Tactical{Aggression: DefaultAggression} }

// Decide implements combat.Controller.
func (t Tactical) Decide(ctx context.Context, b *combat.Battle, self combat.Handle) error {
	if dice.Chance(b.Source(), t.Aggression) {
		return Aggressive{}.Decide(ctx, b, self)
	}
	return b.Enqueue(combat.Defend{})
}

// Options returns battle options registering the built-in behaviors and every
// planner in reg under its domain ID. Aggressive is the fallback for actors
// with an unknown or empty behavior name.
//
// Precondition: reg may be nil.
func Options(reg *Registry) []combat.Option {
	opts := []combat.Option{
		combat.WithBehavior(BehaviorAggressive, Aggressive{}),
		combat.WithBehavior(BehaviorTactical, NewTactical()),
		combat.WithDefaultBehavior(Aggressive{}),
	}
	if reg == nil {
		return opts
	}
	for _, id := range reg.IDs() {
		p, _ := reg.PlannerFor(id)
		opts = append(opts, combat.WithBehavior(id, p))
	}
	return opts
}
