package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/inventory"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// Costs and yields of the fixed actions.
const (
	DefendStaminaRestore = 3
	// DefendGuardTurns covers the defender's own end-of-turn tick plus the
	// following opponent turns up to its next turn end.
	DefendGuardTurns = 2
	MoveStaminaCost  = 2

	FleeMinChance = 0.1
	FleeMaxChance = 0.9
)

// Action is a deferred combat command executed on behalf of the acting actor.
//
// Execute returns an error only when publishing an event fails; in-game
// failures such as missing mana are narrated no-ops that still spend the turn.
type Action interface {
	Name() string
	Execute(b *Battle, self Handle) error
}

// targeted is implemented by actions that may address another actor.
type targeted interface {
	target() (Handle, bool)
}

// Attack strikes one opponent with the basic attack.
type Attack struct {
	Target Handle
}

func (Attack) Name() string { return "attack" }

func (a Attack) target() (Handle, bool) { return a.Target, true }

// Execute implements Action.
func (a Attack) Execute(b *Battle, self Handle) error {
	return b.strike(self, a.Target, skill.BasicAttack())
}

// UseSkill casts Skill. Target is used only for TargetSingle skills.
type UseSkill struct {
	Skill  *skill.Skill
	Target Handle
}

func (u UseSkill) Name() string { return "skill " + u.Skill.ID }

func (u UseSkill) target() (Handle, bool) {
	return u.Target, u.Skill.Target == skill.TargetSingle
}

// Execute implements Action.
//
// Postcondition: costs are spent once if affordable, regardless of how many
// targets are hit; otherwise nothing but a narration happens.
func (u UseSkill) Execute(b *Battle, self Handle) error {
	caster := b.actors[self]
	s := u.Skill
	if !caster.Stats.Spend(s.MPCost, s.SPCost) {
		return b.narrate(self, "%s lacks the MP or SP for %s.", caster.Name, s.Name)
	}
	if err := b.narrate(self, "%s uses %s.", caster.Name, s.Name); err != nil {
		return err
	}

	switch s.Target {
	case skill.TargetAllAllies:
		for _, h := range b.Roster(caster.Team) {
			if err := b.support(self, h, s); err != nil {
				return err
			}
		}
		return nil
	case skill.TargetAllEnemies:
		for _, h := range b.Roster(caster.Team.Opponent()) {
			if err := b.strike(self, h, s); err != nil {
				return err
			}
		}
		return nil
	default:
		return b.strike(self, u.Target, s)
	}
}

// Defend guards the actor and restores stamina.
type Defend struct{}

func (Defend) Name() string { return "defend" }

// Execute implements Action.
func (Defend) Execute(b *Battle, self Handle) error {
	a := b.actors[self]
	if err := a.AddStatus(status.Guard(), DefendGuardTurns, b.bus); err != nil {
		return err
	}
	a.Stats.RestoreSP(DefendStaminaRestore)
	return b.publish(event.GameEvent{
		Kind:   event.StatusApplied,
		Actor:  a.Ref(),
		Target: a.Ref(),
		Amount: DefendGuardTurns,
		Detail: "Guard",
	})
}

// Move changes the actor's lane.
type Move struct {
	To actor.Position
}

func (Move) Name() string { return "move" }

// Execute implements Action.
func (m Move) Execute(b *Battle, self Handle) error {
	a := b.actors[self]
	if a.HasRoot() {
		return b.narrate(self, "%s is rooted and cannot move.", a.Name)
	}
	if !a.Stats.Spend(0, MoveStaminaCost) {
		return b.narrate(self, "%s is too tired to move.", a.Name)
	}
	a.Position = m.To
	return b.narrate(self, "%s moves to the %s line.", a.Name, m.To)
}

// UseItem consumes Item from the actor's inventory.
//
// Precondition: the caller verified the actor carries Item.
type UseItem struct {
	Item *inventory.Consumable
}

func (UseItem) Name() string { return "item" }

// Execute implements Action.
func (u UseItem) Execute(b *Battle, self Handle) error {
	a := b.actors[self]
	a.Inventory.Remove(u.Item)
	healed := a.Stats.Heal(u.Item.RestoreHP)
	mp := a.Stats.RestoreMP(u.Item.RestoreMP)
	sp := a.Stats.RestoreSP(u.Item.RestoreSP)
	if err := b.narrate(self, "%s uses %s (+%d HP, +%d MP, +%d SP).", a.Name, u.Item.Name(), healed, mp, sp); err != nil {
		return err
	}
	if healed == 0 {
		return nil
	}
	return b.publish(event.GameEvent{
		Kind:   event.Heal,
		Actor:  a.Ref(),
		Target: a.Ref(),
		Amount: healed,
		Detail: u.Item.Name(),
	})
}

// Flee tries to end the battle by escaping.
type Flee struct{}

func (Flee) Name() string { return "flee" }

// FleeChance returns the escape probability for a side with average speed
// allies facing average speed opponents.
//
// Postcondition: result is in [FleeMinChance, FleeMaxChance].
func FleeChance(allies, opponents float64) float64 {
	p := allies / (opponents + 0.1) * 0.5
	return min(FleeMaxChance, max(FleeMinChance, p))
}

// Execute implements Action.
//
// Postcondition: on success the opposing roster is empty and the battle ends.
func (Flee) Execute(b *Battle, self Handle) error {
	a := b.actors[self]
	p := FleeChance(b.AverageSpeed(a.Team), b.AverageSpeed(a.Team.Opponent()))
	if b.src.Float64() >= p {
		return b.narrate(self, "%s tries to flee but fails.", a.Name)
	}
	b.rosters[a.Team.Opponent()] = nil
	team := a.Team
	b.escaped = &team
	return b.narrate(self, "%s flees and the %s side escapes.", a.Name, a.Team)
}

// strike resolves s from attacker against one target.
func (b *Battle) strike(attacker, target Handle, s *skill.Skill) error {
	src := b.Actor(attacker)
	dst := b.Actor(target)
	if dst == nil {
		return ErrNoSuchHandle
	}
	if !dst.IsAlive() {
		return b.narrate(attacker, "%s is already down.", dst.Name)
	}
	if !b.CanReach(attacker, target, s.IgnoreLine) {
		return b.narrate(attacker, "%s cannot reach %s behind the front line.", src.Name, dst.Name)
	}

	raw := b.calc.Raw(src, s)
	raw, crit := b.calc.Crit(src, raw, b.src)
	res := b.calc.Mitigate(dst, s.Element, raw, s.PierceArmor, dst.HasGuard())

	dealt, killed := dst.ApplyTrueDamage(res.Damage)
	dst.Stats.WearArmor(res.Wear)

	detail := s.Name
	switch {
	case res.Immune:
		detail += " (immune)"
	case crit:
		detail += " (critical)"
	}
	if err := b.publish(event.GameEvent{
		Kind:   event.Damage,
		Actor:  src.Ref(),
		Target: dst.Ref(),
		Amount: dealt,
		Detail: detail,
	}); err != nil {
		return err
	}

	if killed {
		return b.publish(event.GameEvent{Kind: event.Death, Actor: src.Ref(), Target: dst.Ref()})
	}
	if s.HasStatus() && !res.Immune && dst.IsAlive() {
		return b.applyStatus(src, dst, s.Status, s.StatusDuration)
	}
	return nil
}

// support resolves an ALL_ALLIES skill on one ally: healing by the raw power
// and the attached status, with no crit, mitigation or reach check.
func (b *Battle) support(caster, target Handle, s *skill.Skill) error {
	src := b.actors[caster]
	dst := b.actors[target]
	if !dst.IsAlive() {
		return nil
	}
	if amount := b.calc.Raw(src, s); amount > 0 {
		healed := dst.Stats.Heal(amount)
		if err := b.publish(event.GameEvent{
			Kind:   event.Heal,
			Actor:  src.Ref(),
			Target: dst.Ref(),
			Amount: healed,
			Detail: s.Name,
		}); err != nil {
			return err
		}
	}
	if s.HasStatus() {
		return b.applyStatus(src, dst, s.Status, s.StatusDuration)
	}
	return nil
}

func (b *Battle) applyStatus(src, dst *actor.Actor, e status.Effect, turns int) error {
	if err := dst.AddStatus(e, turns, b.bus); err != nil {
		return err
	}
	return b.publish(event.GameEvent{
		Kind:   event.StatusApplied,
		Actor:  src.Ref(),
		Target: dst.Ref(),
		Amount: turns,
		Detail: e.Name(),
	})
}
