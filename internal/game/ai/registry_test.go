package ai_test

import (
	"testing"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := ai.NewRegistry()
	if err := reg.Register(goblinDomain(), &mockScriptCaller{}, "goblin_ai"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	p, ok := reg.PlannerFor("goblin_ai")
	if !ok || p.Domain().ID != "goblin_ai" {
		t.Fatal("expected planner for goblin_ai")
	}
	if _, ok := reg.PlannerFor("missing"); ok {
		t.Fatal("expected no planner for missing")
	}
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := ai.NewRegistry()
	if err := reg.Register(goblinDomain(), &mockScriptCaller{}, ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(goblinDomain(), &mockScriptCaller{}, ""); err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestRegistry_RejectsBuiltInNames(t *testing.T) {
	d := goblinDomain()
	d.ID = ai.BehaviorTactical
	if err := ai.NewRegistry().Register(d, &mockScriptCaller{}, ""); err == nil {
		t.Fatal("expected shadowing error")
	}
}

func TestRegistry_IDsSorted(t *testing.T) {
	reg := ai.NewRegistry()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		d := goblinDomain()
		d.ID = id
		if err := reg.Register(d, &mockScriptCaller{}, id); err != nil {
			t.Fatalf("Register %s: %v", id, err)
		}
	}
	got := reg.IDs()
	if len(got) != 3 || got[0] != "alpha" || got[1] != "mid" || got[2] != "zeta" {
		t.Fatalf("unexpected IDs %v", got)
	}
}
