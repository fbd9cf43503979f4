package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

func goblinDomain() *ai.Domain {
	return &ai.Domain{
		ID: "goblin_ai",
		Tasks: []*ai.Task{
			{ID: "behave"},
			{ID: "fight"},
		},
		Methods: []*ai.Method{
			{TaskID: "behave", ID: "cautious", Precondition: "is_hurt", Subtasks: []string{"guard"}},
			{TaskID: "behave", ID: "combat_mode", Subtasks: []string{"fight"}},
			{TaskID: "fight", ID: "attack_any", Subtasks: []string{"hit_weakest"}},
		},
		Operators: []*ai.Operator{
			{ID: "guard", Action: "defend"},
			{ID: "hit_weakest", Action: "attack", Target: "weakest_enemy"},
		},
	}
}

func TestNewPlanner_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { ai.NewPlanner(nil, &mockScriptCaller{}, "") })
	assert.Panics(t, func() { ai.NewPlanner(goblinDomain(), nil, "") })
}

func TestPlanner_Plan_ProducesAttackWhenPreconditionFalse(t *testing.T) {
	caller := &mockScriptCaller{returnVal: lua.LFalse}
	planner := ai.NewPlanner(goblinDomain(), caller, "goblin_ai")

	actions, err := planner.Plan(sampleState(), fixedSrc{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "attack" {
		t.Fatalf("expected one attack, got %+v", actions)
	}
	if actions[0].Target != 0 {
		t.Fatalf("expected weakest enemy handle 0, got %d", actions[0].Target)
	}
	if len(caller.hooks) != 1 || caller.hooks[0] != "is_hurt" {
		t.Fatalf("unexpected hook calls %v", caller.hooks)
	}
}

func TestPlanner_Plan_DefendsWhenPreconditionTrue(t *testing.T) {
	planner := ai.NewPlanner(goblinDomain(), &mockScriptCaller{returnVal: lua.LTrue}, "goblin_ai")
	actions, err := planner.Plan(sampleState(), fixedSrc{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(actions) != 1 || actions[0].Action != "defend" {
		t.Fatalf("expected defend, got %+v", actions)
	}
}

func TestPlanner_Plan_NilStateErrors(t *testing.T) {
	planner := ai.NewPlanner(goblinDomain(), &mockScriptCaller{}, "")
	if _, err := planner.Plan(nil, fixedSrc{}); err == nil {
		t.Fatal("expected error for nil state")
	}
}

func TestPlanner_Plan_RecursiveDomainTerminates(t *testing.T) {
	d := &ai.Domain{
		ID:      "loop",
		Tasks:   []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{TaskID: "behave", ID: "again", Subtasks: []string{"behave"}}},
	}
	actions, err := ai.NewPlanner(d, &mockScriptCaller{}, "").Plan(sampleState(), fixedSrc{})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(actions) != 0 {
		t.Fatalf("expected empty plan, got %+v", actions)
	}
}

func plannerRegistry(t *testing.T, d *ai.Domain, caller ai.ScriptCaller) *ai.Registry {
	t.Helper()
	reg := ai.NewRegistry()
	require.NoError(t, reg.Register(d, caller, d.ID))
	return reg
}

func TestPlanner_Decide_AttacksWeakestHero(t *testing.T) {
	knight := fighter("Knight", actor.KindPlayer, 1)
	mage := fighter("Mage", actor.KindPlayer, 1)
	mage.Stats.HP = 40
	goblin := fighter("Goblin", actor.KindEnemy, 10)
	goblin.Behavior = "goblin_ai"
	reg := plannerRegistry(t, goblinDomain(), &mockScriptCaller{returnVal: lua.LFalse})

	rec := runOneRound(t, []*actor.Actor{knight, mage}, []*actor.Actor{goblin}, fixedSrc{f: 0.99}, reg)

	hits := rec.by(event.Damage, "Goblin")
	require.Len(t, hits, 1)
	assert.Equal(t, "Mage", hits[0].Target.Name)
}

func TestPlanner_Decide_Defends(t *testing.T) {
	knight := fighter("Knight", actor.KindPlayer, 1)
	goblin := fighter("Goblin", actor.KindEnemy, 10)
	goblin.Behavior = "goblin_ai"
	reg := plannerRegistry(t, goblinDomain(), &mockScriptCaller{returnVal: lua.LTrue})

	rec := runOneRound(t, []*actor.Actor{knight}, []*actor.Actor{goblin}, fixedSrc{f: 0.99}, reg)

	assert.Empty(t, rec.by(event.Damage, "Goblin"))
	require.Len(t, rec.by(event.StatusApplied, "Goblin"), 1)
}

func TestPlanner_Decide_BindsQueryDuringHooks(t *testing.T) {
	knight := fighter("Knight", actor.KindPlayer, 1)
	goblin := fighter("Goblin", actor.KindEnemy, 10)
	goblin.Behavior = "goblin_ai"
	caller := &bindingCaller{}
	reg := plannerRegistry(t, goblinDomain(), caller)

	runOneRound(t, []*actor.Actor{knight}, []*actor.Actor{goblin}, fixedSrc{f: 0.99}, reg)

	assert.Equal(t, []string{"Goblin", "enemy:Knight"}, caller.seen)
	assert.Nil(t, caller.query, "query must be unbound after Decide")
}

func TestPlanner_Decide_PassHesitates(t *testing.T) {
	d := &ai.Domain{
		ID:        "idle",
		Tasks:     []*ai.Task{{ID: "behave"}},
		Methods:   []*ai.Method{{TaskID: "behave", ID: "wait", Subtasks: []string{"do_pass"}}},
		Operators: []*ai.Operator{{ID: "do_pass", Action: "pass"}},
	}
	knight := fighter("Knight", actor.KindPlayer, 1)
	goblin := fighter("Goblin", actor.KindEnemy, 10)
	goblin.Behavior = "idle"

	rec := runOneRound(t, []*actor.Actor{knight}, []*actor.Actor{goblin}, fixedSrc{f: 0.99}, plannerRegistry(t, d, &mockScriptCaller{}))

	narr := rec.by(event.Narration, "Goblin")
	require.Len(t, narr, 1)
	assert.Equal(t, "Goblin hesitates.", narr[0].Detail)
}

func TestPlanner_Decide_UnknownSkillFallsBackToAttack(t *testing.T) {
	d := &ai.Domain{
		ID:        "caster",
		Tasks:     []*ai.Task{{ID: "behave"}},
		Methods:   []*ai.Method{{TaskID: "behave", ID: "burn", Subtasks: []string{"fireball"}}},
		Operators: []*ai.Operator{{ID: "fireball", Action: "skill", Skill: "fireball", Target: "nearest_enemy"}},
	}
	knight := fighter("Knight", actor.KindPlayer, 1)
	goblin := fighter("Goblin", actor.KindEnemy, 10)
	goblin.Behavior = "caster"

	rec := runOneRound(t, []*actor.Actor{knight}, []*actor.Actor{goblin}, fixedSrc{f: 0.99}, plannerRegistry(t, d, &mockScriptCaller{}))

	hits := rec.by(event.Damage, "Goblin")
	require.Len(t, hits, 1)
	assert.Equal(t, "Attack", hits[0].Detail)
}

func TestPlanner_Decide_CastsKnownSkill(t *testing.T) {
	d := &ai.Domain{
		ID:        "caster",
		Tasks:     []*ai.Task{{ID: "behave"}},
		Methods:   []*ai.Method{{TaskID: "behave", ID: "burn", Subtasks: []string{"fireball"}}},
		Operators: []*ai.Operator{{ID: "fireball", Action: "skill", Skill: "fireball", Target: "nearest_enemy"}},
	}
	knight := fighter("Knight", actor.KindPlayer, 1)
	goblin := fighter("Goblin", actor.KindEnemy, 1)
	goblin.Behavior = "caster"
	goblin.Learn(&skill.Skill{ID: "fireball", Name: "Fireball", Element: skill.Fire, BasePower: 20, MPCost: 4, Target: skill.TargetSingle})

	rec := runOneRound(t, []*actor.Actor{knight}, []*actor.Actor{goblin}, fixedSrc{f: 0.99}, plannerRegistry(t, d, &mockScriptCaller{}))

	hits := rec.by(event.Damage, "Goblin")
	require.Len(t, hits, 1)
	assert.Equal(t, "Fireball", hits[0].Detail)
	assert.Equal(t, 6, goblin.Stats.MP)
}

func TestPlanner_Decide_EmptyPlanFallsBackToAggressive(t *testing.T) {
	d := &ai.Domain{
		ID:        "picky",
		Tasks:     []*ai.Task{{ID: "behave"}},
		Methods:   []*ai.Method{{TaskID: "behave", ID: "only_if", Precondition: "never", Subtasks: []string{"guard"}}},
		Operators: []*ai.Operator{{ID: "guard", Action: "defend"}},
	}
	knight := fighter("Knight", actor.KindPlayer, 1)
	goblin := fighter("Goblin", actor.KindEnemy, 10)
	goblin.Behavior = "picky"

	rec := runOneRound(t, []*actor.Actor{knight}, []*actor.Actor{goblin}, fixedSrc{f: 0.99}, plannerRegistry(t, d, &mockScriptCaller{returnVal: lua.LFalse}))

	assert.Len(t, rec.by(event.Damage, "Goblin"), 1)
}

var _ combat.Controller = (*ai.Planner)(nil)
