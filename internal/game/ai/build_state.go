package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// BuildWorldState constructs a WorldState snapshot from b for the actor self.
//
// Precondition: self addresses an actor in b.
// Postcondition: ws.Self.Handle == self; every actor on both current rosters
// is represented in roster order, heroes first.
func BuildWorldState(b *combat.Battle, self combat.Handle) *WorldState {
	ws := &WorldState{}
	for _, team := range []actor.Team{actor.TeamHero, actor.TeamEnemy} {
		for _, h := range b.Roster(team) {
			c := stateOf(h, b.Actor(h))
			if h == self {
				ws.Self = c
			}
			ws.Combatants = append(ws.Combatants, c)
		}
	}
	if ws.Self == nil {
		ws.Self = stateOf(self, b.Actor(self))
	}
	return ws
}

func stateOf(h combat.Handle, a *actor.Actor) *CombatantState {
	return &CombatantState{
		Handle:   h,
		UID:      a.ID,
		Name:     a.Name,
		Team:     a.Team,
		Position: a.Position,
		HP:       a.Stats.HP,
		MaxHP:    a.Stats.MaxHP,
		MP:       a.Stats.MP,
		SP:       a.Stats.SP,
		Dead:     !a.IsAlive(),
	}
}

// BattleQuery exposes a battle to Lua scripts by actor UID.
type BattleQuery struct {
	b *combat.Battle
}

// NewBattleQuery wraps b.
func NewBattleQuery(b *combat.Battle) *BattleQuery { return &BattleQuery{b: b} }

// Combatant implements scripting.CombatantQuery.
func (q *BattleQuery) Combatant(uid string) *scripting.CombatantInfo {
	h, ok := q.find(uid)
	if !ok {
		return nil
	}
	return infoOf(q.b.Actor(h))
}

// Enemies implements scripting.CombatantQuery.
func (q *BattleQuery) Enemies(uid string) []*scripting.CombatantInfo {
	h, ok := q.find(uid)
	if !ok {
		return nil
	}
	return q.infos(q.b.Opponents(h), combat.NoHandle)
}

// Allies implements scripting.CombatantQuery. The asking actor is excluded.
func (q *BattleQuery) Allies(uid string) []*scripting.CombatantInfo {
	h, ok := q.find(uid)
	if !ok {
		return nil
	}
	return q.infos(q.b.Allies(h), h)
}

func (q *BattleQuery) find(uid string) (combat.Handle, bool) {
	for _, h := range q.b.Handles() {
		if q.b.Actor(h).ID == uid {
			return h, true
		}
	}
	return combat.NoHandle, false
}

func (q *BattleQuery) infos(hs []combat.Handle, skip combat.Handle) []*scripting.CombatantInfo {
	out := make([]*scripting.CombatantInfo, 0, len(hs))
	for _, h := range hs {
		if h != skip {
			out = append(out, infoOf(q.b.Actor(h)))
		}
	}
	return out
}

func infoOf(a *actor.Actor) *scripting.CombatantInfo {
	info := &scripting.CombatantInfo{
		UID:      a.ID,
		Name:     a.Name,
		Team:     a.Team.String(),
		Position: a.Position.String(),
		HP:       a.Stats.HP,
		MaxHP:    a.Stats.MaxHP,
		MP:       a.Stats.MP,
		MaxMP:    a.Stats.MaxMP,
		SP:       a.Stats.SP,
		MaxSP:    a.Stats.MaxSP,
	}
	for _, s := range a.Statuses.All() {
		info.Statuses = append(info.Statuses, s.Effect.Name())
	}
	return info
}
