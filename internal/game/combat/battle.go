// Package combat resolves a battle between two teams of actors through rounds
// of speed-ordered turns.
package combat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/actor"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// Handle addresses an actor in a Battle's arena.
type Handle int

// NoHandle is never a valid actor.
const NoHandle Handle = -1

var (
	// ErrActionPending is returned by Enqueue when the acting actor already
	// has an action queued this turn.
	ErrActionPending = errors.New("an action is already pending for this turn")
	// ErrNoTurn is returned by Enqueue when no actor is selecting an action.
	ErrNoTurn = errors.New("no actor is selecting an action")
	// ErrNoSuchHandle is returned when a handle does not address an actor.
	ErrNoSuchHandle = errors.New("no such actor")
	// ErrAlreadyRun is returned by Run on a battle that has already started.
	ErrAlreadyRun = errors.New("battle has already been run")
)

// State is a step of the round state machine.
type State int

const (
	StateReady State = iota
	StateRoundStart
	StateOrderComputed
	StateTickStart
	StateActionSelect
	StateActionExecute
	StateTickEnd
	StateRoundEnd
	StateTerminal
)

var stateNames = [...]string{
	"READY", "ROUND_START", "ORDER_COMPUTED", "TICK_START", "ACTION_SELECT",
	"ACTION_EXECUTE", "TICK_END", "ROUND_END", "TERMINAL",
}

// String returns the upper-case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("STATE(%d)", int(s))
	}
	return stateNames[s]
}

// Result classifies how a battle ended.
type Result int

const (
	// ResultVictory means the opposing side of Outcome.Team has no living members.
	ResultVictory Result = iota
	// ResultEscaped means Outcome.Team fled successfully.
	ResultEscaped
	// ResultDraw means the round limit was reached.
	ResultDraw
)

// String returns "VICTORY", "ESCAPED" or "DRAW".
func (r Result) String() string {
	switch r {
	case ResultVictory:
		return "VICTORY"
	case ResultEscaped:
		return "ESCAPED"
	case ResultDraw:
		return "DRAW"
	default:
		return fmt.Sprintf("RESULT(%d)", int(r))
	}
}

// Outcome summarises a finished battle.
type Outcome struct {
	BattleID string
	Result   Result
	// Team is the winner for ResultVictory and the escaping side for
	// ResultEscaped; it is meaningless for ResultDraw.
	Team   actor.Team
	Rounds int
}

// String renders the outcome for narration.
func (o Outcome) String() string {
	switch o.Result {
	case ResultVictory:
		return fmt.Sprintf("%s victory after %d rounds", o.Team, o.Rounds)
	case ResultEscaped:
		return fmt.Sprintf("%s escaped after %d rounds", o.Team, o.Rounds)
	default:
		return fmt.Sprintf("draw after %d rounds", o.Rounds)
	}
}

// Controller selects the action of one actor for the current turn by calling
// Battle.Enqueue exactly once.
type Controller interface {
	Decide(ctx context.Context, b *Battle, self Handle) error
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(ctx context.Context, b *Battle, self Handle) error

// Decide implements Controller.
func (f ControllerFunc) Decide(ctx context.Context, b *Battle, self Handle) error {
	return f(ctx, b, self)
}

// Battle owns the actor arena, both rosters and the pending-action slot, and
// drives the round state machine. A Battle is single-use and not safe for
// concurrent use.
type Battle struct {
	id        string
	actors    []*actor.Actor
	rosters   [2][]Handle
	src       dice.Source
	calc      DamageCalculator
	order     TurnOrderStrategy
	bus       *event.Bus
	logger    *zap.Logger
	maxRounds int
	auto      bool

	players         Controller
	behaviors       map[string]Controller
	defaultBehavior Controller

	state   State
	round   int
	acting  Handle
	pending Action
	escaped *actor.Team
}

// Option configures a Battle.
type Option func(*Battle)

// WithID overrides the generated battle ID.
func WithID(id string) Option { return func(b *Battle) { b.id = id } }

// WithSource sets the random source shared by every draw in the battle.
func WithSource(src dice.Source) Option { return func(b *Battle) { b.src = src } }

// WithCalculator replaces the StandardCalculator.
func WithCalculator(c DamageCalculator) Option { return func(b *Battle) { b.calc = c } }

// WithTurnOrder replaces the jitter SpeedOrder.
func WithTurnOrder(o TurnOrderStrategy) Option { return func(b *Battle) { b.order = o } }

// WithLogger sets the logger for state-machine transitions.
func WithLogger(l *zap.Logger) Option { return func(b *Battle) { b.logger = l } }

// WithListener subscribes l to the battle's events.
func WithListener(l event.Listener) Option { return func(b *Battle) { b.bus.Subscribe(l) } }

// WithPlayerController sets the controller for player actors.
func WithPlayerController(c Controller) Option { return func(b *Battle) { b.players = c } }

// WithBehavior registers the controller used by actors whose Behavior is name.
func WithBehavior(name string, c Controller) Option {
	return func(b *Battle) { b.behaviors[name] = c }
}

// WithDefaultBehavior sets the controller for AI actors without a registered behavior.
func WithDefaultBehavior(c Controller) Option { return func(b *Battle) { b.defaultBehavior = c } }

// WithMaxRounds ends the battle in a draw after n rounds; 0 means unlimited.
func WithMaxRounds(n int) Option { return func(b *Battle) { b.maxRounds = n } }

// WithAuto makes player actors use their AI behavior instead of the player controller.
func WithAuto(auto bool) Option { return func(b *Battle) { b.auto = auto } }

// NewBattle places heroes and enemies in a new arena. Each actor's Team is set
// to the side it is placed on.
//
// Precondition: no actor is nil or appears twice.
// Postcondition: heroes get handles 0..len(heroes)-1 followed by enemies.
func NewBattle(heroes, enemies []*actor.Actor, opts ...Option) (*Battle, error) {
	b := &Battle{
		id:        uuid.New().String(),
		src:       dice.NewCryptoSource(),
		calc:      StandardCalculator{},
		order:     SpeedOrder{TieBreak: TieBreakJitter},
		bus:       event.NewBus(),
		logger:    zap.NewNop(),
		behaviors: make(map[string]Controller),
		acting:    NoHandle,
	}
	seen := make(map[*actor.Actor]struct{})
	for team, side := range [][]*actor.Actor{heroes, enemies} {
		for _, a := range side {
			if a == nil {
				return nil, errors.New("nil actor in roster")
			}
			if _, dup := seen[a]; dup {
				return nil, fmt.Errorf("actor %q appears twice", a.Name)
			}
			seen[a] = struct{}{}
			a.Team = actor.Team(team)
			b.rosters[team] = append(b.rosters[team], Handle(len(b.actors)))
			b.actors = append(b.actors, a)
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// ID returns the battle ID.
func (b *Battle) ID() string { return b.id }

// State returns the current state-machine step.
func (b *Battle) State() State { return b.state }

// Round returns the current round number, starting at 1.
func (b *Battle) Round() int { return b.round }

// Acting returns the actor whose turn it is, or NoHandle.
func (b *Battle) Acting() Handle { return b.acting }

// Source returns the shared random source.
func (b *Battle) Source() dice.Source { return b.src }

// Logger returns the battle logger.
func (b *Battle) Logger() *zap.Logger { return b.logger }

// Actor returns the actor for h, or nil if h is out of range.
func (b *Battle) Actor(h Handle) *actor.Actor {
	if h < 0 || int(h) >= len(b.actors) {
		return nil
	}
	return b.actors[h]
}

// Handles returns every handle in the arena, including dead and fled actors.
func (b *Battle) Handles() []Handle {
	out := make([]Handle, len(b.actors))
	for i := range b.actors {
		out[i] = Handle(i)
	}
	return out
}

// Roster returns the current roster of team, living or not.
func (b *Battle) Roster(team actor.Team) []Handle {
	r := b.rosters[team]
	out := make([]Handle, len(r))
	copy(out, r)
	return out
}

// Living returns the living members of team's roster in roster order.
func (b *Battle) Living(team actor.Team) []Handle {
	var out []Handle
	for _, h := range b.rosters[team] {
		if b.actors[h].IsAlive() {
			out = append(out, h)
		}
	}
	return out
}

// Opponents returns the living members of the team opposing h.
func (b *Battle) Opponents(h Handle) []Handle {
	a := b.Actor(h)
	if a == nil {
		return nil
	}
	return b.Living(a.Team.Opponent())
}

// Allies returns the living members of h's team, h included.
func (b *Battle) Allies(h Handle) []Handle {
	a := b.Actor(h)
	if a == nil {
		return nil
	}
	return b.Living(a.Team)
}

// AverageSpeed returns the mean speed of team's living members, or 0.
func (b *Battle) AverageSpeed(team actor.Team) float64 {
	living := b.Living(team)
	if len(living) == 0 {
		return 0
	}
	total := 0
	for _, h := range living {
		total += b.actors[h].Stats.Speed
	}
	return float64(total) / float64(len(living))
}

// Enqueue fills the pending-action slot of the acting actor.
//
// Precondition: called from a Controller during ACTION_SELECT.
// Postcondition: returns ErrNoTurn outside action selection, ErrActionPending
// if an action is already queued, ErrNoSuchHandle if the action targets an
// unknown handle; otherwise the action will be executed this turn.
func (b *Battle) Enqueue(a Action) error {
	if b.state != StateActionSelect {
		return ErrNoTurn
	}
	if b.pending != nil {
		return ErrActionPending
	}
	if t, ok := a.(targeted); ok {
		if h, single := t.target(); single && b.Actor(h) == nil {
			return fmt.Errorf("enqueue %s: %w", a.Name(), ErrNoSuchHandle)
		}
	}
	b.pending = a
	return nil
}

// Run drives rounds until one side has no living members, a side escapes,
// or the round limit is reached.
//
// Precondition: Run has not been called before.
// Postcondition: on a nil error, State() is StateTerminal and a BATTLE_END
// event has been published. A listener or controller error aborts the battle
// and is returned as-is (wrapped).
func (b *Battle) Run(ctx context.Context) (Outcome, error) {
	if b.state != StateReady {
		return Outcome{}, ErrAlreadyRun
	}
	b.logger.Info("battle started",
		zap.String("battle", b.id),
		zap.Int("heroes", len(b.rosters[actor.TeamHero])),
		zap.Int("enemies", len(b.rosters[actor.TeamEnemy])),
	)
	for {
		if out, done := b.terminal(); done {
			return b.finish(out)
		}
		if b.maxRounds > 0 && b.round >= b.maxRounds {
			return b.finish(Outcome{Result: ResultDraw})
		}
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		b.round++
		b.state = StateRoundStart
		b.logger.Debug("round start", zap.String("battle", b.id), zap.Int("round", b.round))
		if err := b.publish(event.GameEvent{Kind: event.RoundStart, Amount: b.round}); err != nil {
			return Outcome{}, err
		}

		order := b.order.Order(b.turnSlots(), b.src)
		b.state = StateOrderComputed

		for _, h := range order {
			if err := ctx.Err(); err != nil {
				return Outcome{}, err
			}
			if !b.actors[h].IsAlive() {
				continue
			}
			ended, err := b.takeTurn(ctx, h)
			if err != nil {
				return Outcome{}, err
			}
			if ended {
				out, _ := b.terminal()
				return b.finish(out)
			}
		}

		b.state = StateRoundEnd
		if err := b.publish(event.GameEvent{Kind: event.RoundEnd, Amount: b.round}); err != nil {
			return Outcome{}, err
		}
	}
}

// turnSlots lists the living actors of both current rosters in roster order.
func (b *Battle) turnSlots() []TurnSlot {
	var slots []TurnSlot
	for _, team := range []actor.Team{actor.TeamHero, actor.TeamEnemy} {
		for _, h := range b.Living(team) {
			slots = append(slots, TurnSlot{Handle: h, Speed: b.actors[h].Stats.Speed})
		}
	}
	return slots
}

// takeTurn runs one actor's turn and reports whether the battle ended during it.
func (b *Battle) takeTurn(ctx context.Context, h Handle) (bool, error) {
	a := b.actors[h]
	b.acting = h
	defer func() { b.acting = NoHandle }()

	b.state = StateTickStart
	b.logger.Debug("turn start",
		zap.String("battle", b.id),
		zap.Int("round", b.round),
		zap.String("actor", a.Name),
	)
	if err := b.publish(event.GameEvent{Kind: event.TurnStart, Actor: a.Ref()}); err != nil {
		return false, err
	}
	if err := a.TickStart(b.bus); err != nil {
		return false, err
	}
	if _, done := b.terminal(); done {
		return true, nil
	}
	if !a.IsAlive() {
		return false, nil
	}

	if blocker := a.Blocker(); blocker != nil {
		if err := b.narrate(h, "%s is affected by %s and cannot act.", a.Name, blocker.Name()); err != nil {
			return false, err
		}
	} else {
		action, err := b.selectAction(ctx, h)
		if err != nil {
			return false, err
		}
		if action == nil {
			if err := b.narrate(h, "%s hesitates.", a.Name); err != nil {
				return false, err
			}
		} else {
			b.state = StateActionExecute
			b.logger.Debug("action execute",
				zap.String("battle", b.id),
				zap.String("actor", a.Name),
				zap.String("action", action.Name()),
			)
			if err := action.Execute(b, h); err != nil {
				return false, fmt.Errorf("executing %s for %s: %w", action.Name(), a.Name, err)
			}
			if _, done := b.terminal(); done {
				return true, nil
			}
		}
	}

	b.state = StateTickEnd
	expired, err := a.TickEnd(b.bus)
	if err != nil {
		return false, err
	}
	for _, e := range expired {
		if err := b.narrate(h, "%s wears off %s.", e.Name(), a.Name); err != nil {
			return false, err
		}
	}
	if err := b.publish(event.GameEvent{Kind: event.TurnEnd, Actor: a.Ref()}); err != nil {
		return false, err
	}
	_, done := b.terminal()
	return done, nil
}

// selectAction asks h's controller for an action and drains the pending slot.
func (b *Battle) selectAction(ctx context.Context, h Handle) (Action, error) {
	b.state = StateActionSelect
	b.pending = nil
	c := b.controllerFor(b.actors[h])
	if c == nil {
		return nil, fmt.Errorf("no controller for %s (behavior %q)", b.actors[h].Name, b.actors[h].Behavior)
	}
	if err := c.Decide(ctx, b, h); err != nil {
		return nil, fmt.Errorf("selecting action for %s: %w", b.actors[h].Name, err)
	}
	action := b.pending
	b.pending = nil
	return action, nil
}

func (b *Battle) controllerFor(a *actor.Actor) Controller {
	if a.IsPlayer() && !b.auto && b.players != nil {
		return b.players
	}
	if c, ok := b.behaviors[a.Behavior]; ok {
		return c
	}
	return b.defaultBehavior
}

// terminal reports whether a side has no living members or has escaped.
func (b *Battle) terminal() (Outcome, bool) {
	if b.escaped != nil {
		return Outcome{Result: ResultEscaped, Team: *b.escaped}, true
	}
	heroes := len(b.Living(actor.TeamHero)) > 0
	enemies := len(b.Living(actor.TeamEnemy)) > 0
	switch {
	case heroes && enemies:
		return Outcome{}, false
	case heroes:
		return Outcome{Result: ResultVictory, Team: actor.TeamHero}, true
	default:
		return Outcome{Result: ResultVictory, Team: actor.TeamEnemy}, true
	}
}

func (b *Battle) finish(out Outcome) (Outcome, error) {
	out.BattleID = b.id
	out.Rounds = b.round
	b.state = StateTerminal
	b.logger.Info("battle ended",
		zap.String("battle", b.id),
		zap.Stringer("result", out.Result),
		zap.Stringer("team", out.Team),
		zap.Int("rounds", out.Rounds),
	)
	ev := event.GameEvent{Kind: event.BattleEnd, Amount: out.Rounds, Detail: out.String()}
	if out.Result != ResultDraw {
		ev.Actor = event.Ref{Team: out.Team.String()}
	}
	if err := b.publish(ev); err != nil {
		return out, err
	}
	return out, nil
}

func (b *Battle) publish(ev event.GameEvent) error {
	return b.bus.Publish(ev)
}

func (b *Battle) narrate(h Handle, format string, args ...any) error {
	ev := event.GameEvent{Kind: event.Narration, Detail: fmt.Sprintf(format, args...)}
	if a := b.Actor(h); a != nil {
		ev.Actor = a.Ref()
	}
	return b.publish(ev)
}

func (b *Battle) actorsOf(hs []Handle) []*actor.Actor {
	out := make([]*actor.Actor, len(hs))
	for i, h := range hs {
		out[i] = b.actors[h]
	}
	return out
}
