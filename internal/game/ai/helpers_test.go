package ai_test

import (
	"context"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// fixedSrc returns f for every Float64 and min(n, limit-1) for every Intn.
type fixedSrc struct {
	f float64
	n int
}

func (s fixedSrc) Intn(limit int) int {
	if s.n >= limit {
		return limit - 1
	}
	return s.n
}

func (s fixedSrc) Float64() float64 { return s.f }

// mockScriptCaller always returns the given value for any hook call.
type mockScriptCaller struct {
	returnVal lua.LValue
	hooks     []string
}

func (m *mockScriptCaller) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.hooks = append(m.hooks, hook)
	if m.returnVal == nil {
		return lua.LNil, nil
	}
	return m.returnVal, nil
}

// bindingCaller records what the bound query reports during each hook call.
type bindingCaller struct {
	query scripting.CombatantQuery
	seen  []string
}

func (c *bindingCaller) SetQuery(q scripting.CombatantQuery) { c.query = q }

func (c *bindingCaller) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	if c.query == nil {
		c.seen = append(c.seen, "<unbound>")
		return lua.LFalse, nil
	}
	self := c.query.Combatant(args[0].String())
	c.seen = append(c.seen, self.Name)
	for _, e := range c.query.Enemies(args[0].String()) {
		c.seen = append(c.seen, "enemy:"+e.Name)
	}
	return lua.LFalse, nil
}

type recorder struct{ events []event.GameEvent }

func (r *recorder) OnEvent(ev event.GameEvent) error {
	r.events = append(r.events, ev)
	return nil
}

// by returns the events of kind emitted by the named actor.
func (r *recorder) by(kind event.Kind, name string) []event.GameEvent {
	var out []event.GameEvent
	for _, ev := range r.events {
		if ev.Kind == kind && ev.Actor.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

var defendAlways = combat.ControllerFunc(func(_ context.Context, b *combat.Battle, _ combat.Handle) error {
	return b.Enqueue(combat.Defend{})
})

func fighter(name string, kind actor.Kind, strength int) *actor.Actor {
	return actor.New(name, "", kind, actor.TeamEnemy, stats.Stats{
		MaxHP: 100, HP: 100, MaxMP: 10, MP: 10, MaxSP: 10, SP: 10, Strength: strength, Speed: 5,
	})
}

// runOneRound plays a single round with heroes driven by defendAlways.
func runOneRound(t *testing.T, heroes, enemies []*actor.Actor, src fixedSrc, reg *ai.Registry) *recorder {
	t.Helper()
	rec := &recorder{}
	opts := []combat.Option{
		combat.WithSource(src),
		combat.WithTurnOrder(combat.SpeedOrder{TieBreak: combat.TieBreakRoster}),
		combat.WithLogger(zaptest.NewLogger(t)),
		combat.WithListener(rec),
		combat.WithPlayerController(defendAlways),
		combat.WithMaxRounds(1),
	}
	b, err := combat.NewBattle(heroes, enemies, append(opts, ai.Options(reg)...)...)
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	if _, err := b.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return rec
}
