package command

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/skill"
)

// Provider reads one integer in [min, max], blocking until valid input arrives.
type Provider interface {
	ReadInt(min, max int) (int, error)
}

// Menu is the combat.Controller for player-driven actors. Every sub-menu
// offers 0 to return to the top-level menu.
type Menu struct {
	in       Provider
	out      io.Writer
	logger   *zap.Logger
	commands []Command
}

// NewMenu creates a Menu over the built-in commands.
//
// Precondition: in and out must not be nil.
func NewMenu(in Provider, out io.Writer, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{in: in, out: out, logger: logger, commands: BuiltinCommands()}
}

// Decide implements combat.Controller.
//
// Postcondition: exactly one action is enqueued unless the provider fails or
// ctx is cancelled.
func (m *Menu) Decide(ctx context.Context, b *combat.Battle, self combat.Handle) error {
	a := b.Actor(self)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.printf("\n%s  HP %d/%d  MP %d/%d  SP %d/%d  [%s]\n",
			a.Name, a.Stats.HP, a.Stats.MaxHP, a.Stats.MP, a.Stats.MaxMP, a.Stats.SP, a.Stats.MaxSP, a.Position)
		for i, c := range m.commands {
			m.printf("  %d) %-7s %s\n", i+1, c.Name, c.Help)
		}
		n, err := m.in.ReadInt(1, len(m.commands))
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}
		cmd := m.commands[n-1]
		action, err := m.build(b, self, cmd)
		if err != nil {
			return err
		}
		if action == nil {
			continue
		}
		m.logger.Debug("player action selected",
			zap.String("actor", a.Name),
			zap.String("action", action.Name()),
		)
		return b.Enqueue(action)
	}
}

// build returns the action for cmd, or nil when the player backed out.
func (m *Menu) build(b *combat.Battle, self combat.Handle, cmd Command) (combat.Action, error) {
	a := b.Actor(self)
	switch cmd.Handler {
	case HandlerAttack:
		h, ok, err := m.chooseTarget(b, self, b.Opponents(self), false)
		if err != nil || !ok {
			return nil, err
		}
		return combat.Attack{Target: h}, nil
	case HandlerSkill:
		return m.chooseSkill(b, self)
	case HandlerDefend:
		return combat.Defend{}, nil
	case HandlerMove:
		to := actor.Back
		if a.Position == actor.Back {
			to = actor.Front
		}
		return combat.Move{To: to}, nil
	case HandlerItem:
		stacks := a.Inventory.ConsumableStacks()
		if len(stacks) == 0 {
			m.printf("You have no usable items.\n")
			return nil, nil
		}
		for i, st := range stacks {
			it := st.Item
			name := it.Name()
			if st.Count > 1 {
				name = fmt.Sprintf("%s x%d", name, st.Count)
			}
			m.printf("  %d) %s (+%d HP, +%d MP, +%d SP)\n", i+1, name, it.RestoreHP, it.RestoreMP, it.RestoreSP)
		}
		m.printf("  0) Back\n")
		n, err := m.in.ReadInt(0, len(stacks))
		if err != nil || n == 0 {
			return nil, readErr(err)
		}
		return combat.UseItem{Item: stacks[n-1].Item}, nil
	case HandlerFlee:
		return combat.Flee{}, nil
	}
	return nil, fmt.Errorf("unknown command handler %q", cmd.Handler)
}

func (m *Menu) chooseSkill(b *combat.Battle, self combat.Handle) (combat.Action, error) {
	a := b.Actor(self)
	skills := a.Skills()
	if len(skills) == 0 {
		m.printf("You know no skills.\n")
		return nil, nil
	}
	for i, s := range skills {
		m.printf("  %d) %s [%s, %s] %d MP %d SP\n", i+1, s.Name, s.Element, s.Target, s.MPCost, s.SPCost)
	}
	m.printf("  0) Back\n")
	n, err := m.in.ReadInt(0, len(skills))
	if err != nil || n == 0 {
		return nil, readErr(err)
	}
	s := skills[n-1]
	if s.Target != skill.TargetSingle {
		return combat.UseSkill{Skill: s, Target: combat.NoHandle}, nil
	}
	h, ok, err := m.chooseTarget(b, self, b.Opponents(self), s.IgnoreLine)
	if err != nil || !ok {
		return nil, err
	}
	return combat.UseSkill{Skill: s, Target: h}, nil
}

// chooseTarget lists candidates with their lane and HP and marks those the
// attacker cannot currently reach.
func (m *Menu) chooseTarget(b *combat.Battle, self combat.Handle, candidates []combat.Handle, ignoreLine bool) (combat.Handle, bool, error) {
	if len(candidates) == 0 {
		m.printf("There is no one to target.\n")
		return combat.NoHandle, false, nil
	}
	for i, h := range candidates {
		t := b.Actor(h)
		note := ""
		if !b.CanReach(self, h, ignoreLine) {
			note = " (out of reach)"
		}
		m.printf("  %d) %s [%s] HP %d/%d%s\n", i+1, t.Name, t.Position, t.Stats.HP, t.Stats.MaxHP, note)
	}
	m.printf("  0) Back\n")
	n, err := m.in.ReadInt(0, len(candidates))
	if err != nil {
		return combat.NoHandle, false, readErr(err)
	}
	if n == 0 {
		return combat.NoHandle, false, nil
	}
	return candidates[n-1], true, nil
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func readErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("reading choice: %w", err)
}
