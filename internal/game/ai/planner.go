package ai

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// maxPlanSteps bounds decomposition to guard against recursive methods.
const maxPlanSteps = 32

// ScriptCaller is the interface required by the Planner to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// queryBinder is implemented by callers that expose battle state to scripts.
type queryBinder interface {
	SetQuery(q scripting.CombatantQuery)
}

// PlannedAction is one primitive action produced by the planner.
type PlannedAction struct {
	Action   string
	Target   combat.Handle // NoHandle when the target token did not resolve
	Skill    string
	Position actor.Position
}

// Planner evaluates an HTN domain for one actor per turn and enqueues the
// first executable action of the resulting plan.
//
// Invariant: domain and caller must not be nil.
type Planner struct {
	domain *Domain
	caller ScriptCaller
	scope  string
}

// NewPlanner constructs a Planner.
//
// Precondition: domain and caller must not be nil.
func NewPlanner(domain *Domain, caller ScriptCaller, scope string) *Planner {
	if domain == nil {
		panic("ai.NewPlanner: domain must not be nil")
	}
	if caller == nil {
		panic("ai.NewPlanner: caller must not be nil")
	}
	return &Planner{domain: domain, caller: caller, scope: scope}
}

// Domain returns the planner's domain.
func (p *Planner) Domain() *Domain { return p.domain }

// Plan evaluates the HTN domain against state and returns an ordered plan.
//
// Precondition: state and state.Self must not be nil.
// Postcondition: returns non-nil slice (may be empty); Lua failures are
// treated as precondition-false.
func (p *Planner) Plan(state *WorldState, src dice.Source) ([]PlannedAction, error) {
	if state == nil || state.Self == nil {
		return nil, fmt.Errorf("ai.Planner.Plan: state and state.Self must not be nil")
	}

	taskQueue := []string{RootTask}
	result := []PlannedAction{}

	for steps := 0; len(taskQueue) > 0 && steps < maxPlanSteps; steps++ {
		current := taskQueue[0]
		taskQueue = taskQueue[1:]

		if op, ok := p.domain.OperatorByID(current); ok {
			pa := PlannedAction{Action: op.Action, Target: combat.NoHandle, Skill: op.Skill}
			if op.Target != "" {
				pa.Target, _ = state.ResolveTarget(op.Target, src)
			}
			if op.Action == OpMove {
				pa.Position, _ = actor.ParsePosition(op.Position)
			}
			result = append(result, pa)
			continue
		}

		method := p.findApplicableMethod(current, state)
		if method == nil {
			continue
		}
		// Copy before prepending so the domain's slice is never aliased.
		next := make([]string, 0, len(method.Subtasks)+len(taskQueue))
		next = append(next, method.Subtasks...)
		taskQueue = append(next, taskQueue...)
	}
	return result, nil
}

// findApplicableMethod returns the first Method for taskID whose precondition passes,
// or nil if none applies.
func (p *Planner) findApplicableMethod(taskID string, state *WorldState) *Method {
	for _, m := range p.domain.MethodsForTask(taskID) {
		if m.Precondition == "" {
			return m
		}
		val, _ := p.caller.CallHook(p.scope, m.Precondition, lua.LString(state.Self.UID))
		if val == lua.LTrue {
			return m
		}
	}
	return nil
}

// Decide implements combat.Controller. The first planned action that can be
// executed is enqueued; "pass" enqueues nothing. When the plan yields no
// executable action the actor falls back to Aggressive.
func (p *Planner) Decide(ctx context.Context, b *combat.Battle, self combat.Handle) error {
	if qb, ok := p.caller.(queryBinder); ok {
		qb.SetQuery(NewBattleQuery(b))
		defer qb.SetQuery(nil)
	}
	plan, err := p.Plan(BuildWorldState(b, self), b.Source())
	if err != nil {
		return err
	}
	for _, pa := range plan {
		if pa.Action == OpPass {
			return nil
		}
		if a := p.toAction(b, self, pa); a != nil {
			return b.Enqueue(a)
		}
	}
	return Aggressive{}.Decide(ctx, b, self)
}

// toAction converts pa into a combat action, or nil if it cannot run now.
// An unknown or unaffordable skill degrades to a basic attack on the same target.
func (p *Planner) toAction(b *combat.Battle, self combat.Handle, pa PlannedAction) combat.Action {
	switch pa.Action {
	case OpAttack:
		if pa.Target == combat.NoHandle {
			return nil
		}
		return combat.Attack{Target: pa.Target}
	case OpSkill:
		s := findSkill(b.Actor(self), pa.Skill)
		if s == nil || !b.Actor(self).Stats.CanAfford(s.MPCost, s.SPCost) {
			if pa.Target == combat.NoHandle || b.Actor(pa.Target).Team == b.Actor(self).Team {
				return nil
			}
			return combat.Attack{Target: pa.Target}
		}
		if s.Target == skill.TargetSingle && pa.Target == combat.NoHandle {
			return nil
		}
		return combat.UseSkill{Skill: s, Target: pa.Target}
	case OpDefend:
		return combat.Defend{}
	case OpMove:
		return combat.Move{To: pa.Position}
	case OpFlee:
		return combat.Flee{}
	}
	return nil
}

func findSkill(a *actor.Actor, id string) *skill.Skill {
	for _, s := range a.Skills() {
		if s.ID == id {
			return s
		}
	}
	return nil
}
