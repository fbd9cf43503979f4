package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Target tokens understood by ResolveTarget.
const (
	TargetNearestEnemy = "nearest_enemy"
	TargetWeakestEnemy = "weakest_enemy"
	TargetRandomEnemy  = "random_enemy"
	TargetWeakestAlly  = "weakest_ally"
	TargetSelf         = "self"
)

// CombatantState captures an actor's combat-relevant state at planning time.
type CombatantState struct {
	Handle   combat.Handle
	UID      string
	Name     string
	Team     actor.Team
	Position actor.Position
	HP       int
	MaxHP    int
	MP       int
	SP       int
	Dead     bool
}

// HPPercent returns current HP as a percentage of MaxHP; 0 if MaxHP == 0.
func (c *CombatantState) HPPercent() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP) * 100
}

// WorldState is the snapshot passed to the HTN planner for one actor.
//
// Invariant: Self must not be nil and is also present in Combatants.
type WorldState struct {
	Self       *CombatantState
	Combatants []*CombatantState
}

// EnemiesOf returns all living combatants on the other team, in roster order.
func (ws *WorldState) EnemiesOf() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.Team != ws.Self.Team {
			out = append(out, c)
		}
	}
	return out
}

// AlliesOf returns all living teammates excluding Self.
func (ws *WorldState) AlliesOf() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if !c.Dead && c.Team == ws.Self.Team && c.UID != ws.Self.UID {
			out = append(out, c)
		}
	}
	return out
}

// HasLivingEnemies returns true when at least one living enemy exists.
func (ws *WorldState) HasLivingEnemies() bool {
	return len(ws.EnemiesOf()) > 0
}

// NearestEnemy returns the first living front-line enemy, falling back to the
// first living enemy, or nil.
func (ws *WorldState) NearestEnemy() *CombatantState {
	enemies := ws.EnemiesOf()
	for _, e := range enemies {
		if e.Position == actor.Front {
			return e
		}
	}
	if len(enemies) == 0 {
		return nil
	}
	return enemies[0]
}

// WeakestEnemy returns the living enemy with the lowest HP percentage, or nil.
//
// Postcondition: ties are broken by roster order.
func (ws *WorldState) WeakestEnemy() *CombatantState {
	return weakest(ws.EnemiesOf())
}

// WeakestAlly returns the living teammate, Self included, with the lowest HP
// percentage.
func (ws *WorldState) WeakestAlly() *CombatantState {
	return weakest(append([]*CombatantState{ws.Self}, ws.AlliesOf()...))
}

func weakest(cs []*CombatantState) *CombatantState {
	if len(cs) == 0 {
		return nil
	}
	w := cs[0]
	for _, c := range cs[1:] {
		if c.HPPercent() < w.HPPercent() {
			w = c
		}
	}
	return w
}

// ResolveTarget maps a target token to a handle. Unknown tokens are matched
// against combatant names.
//
// Postcondition: ok is false when no combatant matches.
func (ws *WorldState) ResolveTarget(token string, src dice.Source) (combat.Handle, bool) {
	var c *CombatantState
	switch token {
	case TargetNearestEnemy:
		c = ws.NearestEnemy()
	case TargetWeakestEnemy:
		c = ws.WeakestEnemy()
	case TargetWeakestAlly:
		c = ws.WeakestAlly()
	case TargetRandomEnemy:
		if enemies := ws.EnemiesOf(); len(enemies) > 0 {
			c = enemies[src.Intn(len(enemies))]
		}
	case TargetSelf, "":
		c = ws.Self
	default:
		for _, cand := range ws.Combatants {
			if !cand.Dead && cand.Name == token {
				c = cand
				break
			}
		}
	}
	if c == nil {
		return combat.NoHandle, false
	}
	return c.Handle, true
}
