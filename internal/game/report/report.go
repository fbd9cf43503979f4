// Package report turns the event stream of one battle into an archivable
// summary.
package report

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// EventRecord is the serialised form of one event.
type EventRecord struct {
	Kind   string    `json:"kind"`
	Actor  event.Ref `json:"actor,omitzero"`
	Target event.Ref `json:"target,omitzero"`
	Amount int       `json:"amount,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Report summarises a finished battle.
type Report struct {
	BattleID  string
	StartedAt time.Time
	EndedAt   time.Time
	Result    string
	// Winner is the team that won or escaped; empty for a draw.
	Winner string
	Rounds int
	// DamageDealt sums DAMAGE amounts by acting actor name. Status ticks,
	// which have no actor, are not counted.
	DamageDealt map[string]int
	Deaths      []string
	Events      []EventRecord
}

// Recorder is an event.Listener that accumulates a battle's events.
type Recorder struct {
	now     func() time.Time
	started time.Time
	events  []EventRecord
}

// NewRecorder creates a Recorder; now defaults to time.Now when nil.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

// OnEvent implements event.Listener.
func (r *Recorder) OnEvent(ev event.GameEvent) error {
	if r.started.IsZero() {
		r.started = r.now()
	}
	r.events = append(r.events, EventRecord{
		Kind:   ev.Kind.String(),
		Actor:  ev.Actor,
		Target: ev.Target,
		Amount: ev.Amount,
		Detail: ev.Detail,
	})
	return nil
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int { return len(r.events) }

// Report builds the summary for out.
//
// Postcondition: Events holds every recorded event in publication order.
func (r *Recorder) Report(out combat.Outcome) *Report {
	rep := &Report{
		BattleID:    out.BattleID,
		StartedAt:   r.started,
		EndedAt:     r.now(),
		Result:      out.Result.String(),
		Rounds:      out.Rounds,
		DamageDealt: make(map[string]int),
		Events:      append([]EventRecord(nil), r.events...),
	}
	if rep.StartedAt.IsZero() {
		rep.StartedAt = rep.EndedAt
	}
	if out.Result != combat.ResultDraw {
		rep.Winner = out.Team.String()
	}
	for _, ev := range r.events {
		switch ev.Kind {
		case event.Damage.String():
			if ev.Actor.Name != "" {
				rep.DamageDealt[ev.Actor.Name] += ev.Amount
			}
		case event.Death.String():
			rep.Deaths = append(rep.Deaths, ev.Target.Name)
		}
	}
	return rep
}
