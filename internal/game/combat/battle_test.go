package combat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/stats"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

type recorder struct{ events []event.GameEvent }

func (r *recorder) OnEvent(ev event.GameEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) count(kind event.Kind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) narrations() string {
	var lines []string
	for _, ev := range r.events {
		if ev.Kind == event.Narration {
			lines = append(lines, ev.Detail)
		}
	}
	return strings.Join(lines, "\n")
}

var attackFirst = combat.ControllerFunc(func(_ context.Context, b *combat.Battle, self combat.Handle) error {
	opp := b.Opponents(self)
	if len(opp) == 0 {
		return nil
	}
	return b.Enqueue(combat.Attack{Target: opp[0]})
})

var defendAlways = combat.ControllerFunc(func(_ context.Context, b *combat.Battle, _ combat.Handle) error {
	return b.Enqueue(combat.Defend{})
})

func hp(n int) stats.Stats { return stats.Stats{MaxHP: n, HP: n, MaxSP: 20, SP: 10} }

func newBattle(t *testing.T, heroes, enemies []*actor.Actor, rec *recorder, opts ...combat.Option) *combat.Battle {
	t.Helper()
	base := []combat.Option{
		combat.WithSource(fixedSrc{f: 0.99}),
		combat.WithTurnOrder(combat.SpeedOrder{TieBreak: combat.TieBreakRoster}),
		combat.WithLogger(zaptest.NewLogger(t)),
		combat.WithListener(rec),
	}
	b, err := combat.NewBattle(heroes, enemies, append(base, opts...)...)
	require.NoError(t, err)
	return b
}

func TestNewBattle_AssignsTeamsAndHandles(t *testing.T) {
	h := newHero("H", hp(10))
	e := newEnemy("E", hp(10))
	e.Team = actor.TeamHero
	b, err := combat.NewBattle([]*actor.Actor{h}, []*actor.Actor{e})
	require.NoError(t, err)
	assert.Equal(t, actor.TeamEnemy, e.Team)
	assert.Equal(t, []combat.Handle{0}, b.Roster(actor.TeamHero))
	assert.Equal(t, []combat.Handle{1}, b.Roster(actor.TeamEnemy))
	assert.Same(t, e, b.Actor(1))
	assert.Nil(t, b.Actor(2))
	assert.Nil(t, b.Actor(combat.NoHandle))
	assert.Equal(t, combat.StateReady, b.State())
}

func TestNewBattle_RejectsDuplicatesAndNil(t *testing.T) {
	h := newHero("H", hp(10))
	_, err := combat.NewBattle([]*actor.Actor{h}, []*actor.Actor{h})
	assert.Error(t, err)
	_, err = combat.NewBattle([]*actor.Actor{nil}, nil)
	assert.Error(t, err)
}

func TestBattle_Accessors(t *testing.T) {
	h1 := newHero("H1", stats.Stats{MaxHP: 10, HP: 10, Speed: 10})
	h2 := newHero("H2", stats.Stats{MaxHP: 10, HP: 0, Speed: 99})
	h3 := newHero("H3", stats.Stats{MaxHP: 10, HP: 10, Speed: 6})
	e := newEnemy("E", stats.Stats{MaxHP: 10, HP: 10, Speed: 8})
	b, err := combat.NewBattle([]*actor.Actor{h1, h2, h3}, []*actor.Actor{e})
	require.NoError(t, err)

	assert.Equal(t, []combat.Handle{0, 2}, b.Living(actor.TeamHero))
	assert.Equal(t, []combat.Handle{0, 2}, b.Allies(2))
	assert.Equal(t, []combat.Handle{3}, b.Opponents(0))
	assert.Equal(t, []combat.Handle{0, 2}, b.Opponents(3))
	assert.InDelta(t, 8.0, b.AverageSpeed(actor.TeamHero), 1e-9)
	assert.Len(t, b.Handles(), 4)
}

func TestRun_VictoryPublishesBattleEnd(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", stats.Stats{MaxHP: 100, HP: 100, Strength: 30, Speed: 10})
	e := newEnemy("E", stats.Stats{MaxHP: 50, HP: 50, Strength: 5, Speed: 5})
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(attackFirst), combat.WithDefaultBehavior(attackFirst))

	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, combat.ResultVictory, out.Result)
	assert.Equal(t, actor.TeamHero, out.Team)
	assert.Equal(t, 2, out.Rounds)
	assert.Equal(t, b.ID(), out.BattleID)
	assert.Equal(t, combat.StateTerminal, b.State())
	assert.Equal(t, 95, h.Stats.HP)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, event.BattleEnd, last.Kind)
	assert.Equal(t, "HERO", last.Actor.Team)
	assert.Equal(t, 1, rec.count(event.Death))

	_, err = b.Run(context.Background())
	assert.ErrorIs(t, err, combat.ErrAlreadyRun)
}

func TestRun_TerminatesMidRound(t *testing.T) {
	rec := &recorder{}
	fast := newHero("Fast", stats.Stats{MaxHP: 100, HP: 100, Strength: 50, Speed: 10})
	slow := newHero("Slow", stats.Stats{MaxHP: 100, HP: 100, Strength: 50, Speed: 5})
	e := newEnemy("E", stats.Stats{MaxHP: 10, HP: 10, Speed: 1})
	b := newBattle(t, []*actor.Actor{slow, fast}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(attackFirst), combat.WithDefaultBehavior(attackFirst))

	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, combat.ResultVictory, out.Result)
	assert.Equal(t, 1, out.Rounds)
	assert.Equal(t, 1, rec.count(event.TurnStart), "no one acts after the last enemy falls")
	assert.Equal(t, 0, rec.count(event.TurnEnd))
	assert.Equal(t, 0, rec.count(event.RoundEnd))
}

func TestRun_NoLivingSideEndsImmediately(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", hp(10))
	e := newEnemy("E", stats.Stats{MaxHP: 10})
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec)
	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, combat.ResultVictory, out.Result)
	assert.Equal(t, 0, out.Rounds)
}

func TestEnqueue_SingleSlot(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", stats.Stats{MaxHP: 100, HP: 100, MaxSP: 20, SP: 10, Strength: 40, Speed: 10})
	e := newEnemy("E", stats.Stats{MaxHP: 100, HP: 100, Speed: 1})

	var second error
	player := combat.ControllerFunc(func(_ context.Context, b *combat.Battle, self combat.Handle) error {
		if err := b.Enqueue(combat.Defend{}); err != nil {
			return err
		}
		second = b.Enqueue(combat.Attack{Target: b.Opponents(self)[0]})
		return nil
	})
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(player), combat.WithDefaultBehavior(defendAlways), combat.WithMaxRounds(1))

	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, second, combat.ErrActionPending)
	assert.Equal(t, combat.ResultDraw, out.Result)
	assert.Equal(t, 100, e.Stats.HP)
	assert.True(t, h.HasGuard())
	assert.Equal(t, 13, h.Stats.SP)
}

func TestEnqueue_OutsideTurnAndUnknownTarget(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", hp(10))
	e := newEnemy("E", hp(10))

	var enqueueErr error
	player := combat.ControllerFunc(func(_ context.Context, b *combat.Battle, _ combat.Handle) error {
		enqueueErr = b.Enqueue(combat.Attack{Target: 42})
		return nil
	})
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(player), combat.WithDefaultBehavior(defendAlways), combat.WithMaxRounds(1))
	assert.ErrorIs(t, b.Enqueue(combat.Defend{}), combat.ErrNoTurn)

	_, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, enqueueErr, combat.ErrNoSuchHandle)
	assert.Contains(t, rec.narrations(), "H hesitates.")
}

func TestRun_ListenerErrorPropagates(t *testing.T) {
	boom := errors.New("renderer failed")
	rec := &recorder{}
	h := newHero("H", stats.Stats{MaxHP: 100, HP: 100, Strength: 10, Speed: 10})
	e := newEnemy("E", hp(100))
	after := 0
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithListener(event.ListenerFunc(func(ev event.GameEvent) error {
			if ev.Kind == event.Damage {
				return boom
			}
			return nil
		})),
		combat.WithListener(event.ListenerFunc(func(ev event.GameEvent) error {
			if ev.Kind == event.Damage {
				after++
			}
			return nil
		})),
		combat.WithPlayerController(attackFirst), combat.WithDefaultBehavior(attackFirst))

	_, err := b.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, after, "fan-out stops at the failing listener")
	assert.Equal(t, 1, rec.count(event.Damage))
}

func TestRun_ControllerErrorPropagates(t *testing.T) {
	boom := errors.New("input closed")
	h := newHero("H", hp(10))
	e := newEnemy("E", hp(10))
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, &recorder{},
		combat.WithPlayerController(combat.ControllerFunc(func(context.Context, *combat.Battle, combat.Handle) error {
			return boom
		})))
	_, err := b.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_MissingControllerIsAnError(t *testing.T) {
	h := newHero("H", hp(10))
	e := newEnemy("E", hp(10))
	e.Behavior = "unknown"
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, &recorder{},
		combat.WithPlayerController(defendAlways))
	_, err := b.Run(context.Background())
	assert.ErrorContains(t, err, "no controller")
}

func TestRun_CancelledContext(t *testing.T) {
	h := newHero("H", hp(10))
	e := newEnemy("E", hp(10))
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, &recorder{},
		combat.WithPlayerController(defendAlways), combat.WithDefaultBehavior(defendAlways))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_BlockedActorSkipsSelectionButTicks(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", stats.Stats{MaxHP: 100, HP: 100, MaxSP: 20, Speed: 10})
	e := newEnemy("E", stats.Stats{MaxHP: 100, HP: 100, Speed: 1})
	require.NoError(t, e.AddStatus(status.Stun(), 1, event.Discard))

	calls := 0
	enemy := combat.ControllerFunc(func(_ context.Context, b *combat.Battle, _ combat.Handle) error {
		calls++
		return b.Enqueue(combat.Defend{})
	})
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(defendAlways), combat.WithDefaultBehavior(enemy), combat.WithMaxRounds(2))

	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, combat.ResultDraw, out.Result)
	assert.Equal(t, 2, out.Rounds)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, rec.count(event.TurnStart))
	assert.Equal(t, 4, rec.count(event.TurnEnd))
	assert.Contains(t, rec.narrations(), "E is affected by Stun and cannot act.")
	assert.Contains(t, rec.narrations(), "Stun wears off E.")
}

func TestRun_DamageOverTimeCanEndBattle(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", stats.Stats{MaxHP: 100, HP: 100, MaxSP: 20, Speed: 10})
	e := newEnemy("E", stats.Stats{MaxHP: 100, HP: 2, Speed: 1})
	require.NoError(t, e.AddStatus(status.Burn(), 3, event.Discard))

	called := false
	enemy := combat.ControllerFunc(func(context.Context, *combat.Battle, combat.Handle) error {
		called = true
		return nil
	})
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(defendAlways), combat.WithDefaultBehavior(enemy))

	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, combat.ResultVictory, out.Result)
	assert.Equal(t, actor.TeamHero, out.Team)
	assert.Equal(t, 1, out.Rounds)
	assert.False(t, called)
	assert.Equal(t, 1, rec.count(event.Death))
}

func TestRun_DefendGuardLastsUntilOpponentsAct(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", stats.Stats{MaxHP: 100, HP: 100, MaxSP: 20, SP: 0, Speed: 10})
	e := newEnemy("E", stats.Stats{MaxHP: 100, HP: 100, Strength: 20, Speed: 5})
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(defendAlways), combat.WithDefaultBehavior(attackFirst), combat.WithMaxRounds(1))

	_, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 88, h.Stats.HP) // 20 * 0.6
	assert.Equal(t, 3, h.Stats.SP)
	assert.Equal(t, 1, rec.count(event.StatusApplied))
}

func TestRun_MaxRoundsDraw(t *testing.T) {
	rec := &recorder{}
	h := newHero("H", hp(100))
	e := newEnemy("E", hp(100))
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, rec,
		combat.WithPlayerController(defendAlways), combat.WithDefaultBehavior(defendAlways), combat.WithMaxRounds(3))
	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, combat.ResultDraw, out.Result)
	assert.Equal(t, 3, out.Rounds)
	assert.Equal(t, 3, rec.count(event.RoundStart))
	assert.Equal(t, 3, rec.count(event.RoundEnd))
	assert.Equal(t, "draw after 3 rounds", out.String())
}

func TestRun_AutoModeUsesBehaviorForPlayers(t *testing.T) {
	h := newHero("H", stats.Stats{MaxHP: 100, HP: 100, Strength: 200, Speed: 10})
	h.Behavior = "striker"
	e := newEnemy("E", hp(100))
	playerCalled := false
	b := newBattle(t, []*actor.Actor{h}, []*actor.Actor{e}, &recorder{},
		combat.WithAuto(true),
		combat.WithPlayerController(combat.ControllerFunc(func(context.Context, *combat.Battle, combat.Handle) error {
			playerCalled = true
			return nil
		})),
		combat.WithBehavior("striker", attackFirst),
		combat.WithDefaultBehavior(defendAlways))
	out, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, playerCalled)
	assert.Equal(t, combat.ResultVictory, out.Result)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ACTION_SELECT", combat.StateActionSelect.String())
	assert.Equal(t, "STATE(99)", combat.State(99).String())
	assert.Equal(t, "ESCAPED", combat.ResultEscaped.String())
}
