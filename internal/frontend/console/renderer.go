package console

import (
	"fmt"
	"io"

	"github.com/cory-johannsen/skirmish/internal/game/event"
)

// Renderer narrates combat events to a terminal. It implements event.Listener.
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer creates a Renderer writing to out; color disables ANSI styling
// when false.
func NewRenderer(out io.Writer, color bool) *Renderer {
	return &Renderer{out: out, color: color}
}

// OnEvent implements event.Listener. Turn boundaries are not printed.
func (r *Renderer) OnEvent(ev event.GameEvent) error {
	line := r.Render(ev)
	if line == "" {
		return nil
	}
	_, err := fmt.Fprintln(r.out, line)
	return err
}

// Render formats ev as one line of text, or "" when ev is not shown.
func (r *Renderer) Render(ev event.GameEvent) string {
	switch ev.Kind {
	case event.RoundStart:
		return r.paint(Bold+BrightYellow, fmt.Sprintf("=== Round %d ===", ev.Amount))
	case event.Damage:
		if ev.Actor.IsZero() {
			return r.paint(Magenta, fmt.Sprintf("%s suffers %d damage from %s.", ev.Target.Name, ev.Amount, ev.Detail))
		}
		return r.paint(Red, fmt.Sprintf("%s hits %s with %s for %d damage.", ev.Actor.Name, ev.Target.Name, ev.Detail, ev.Amount))
	case event.Heal:
		return r.paint(Green, fmt.Sprintf("%s restores %d HP to %s.", ev.Actor.Name, ev.Amount, ev.Target.Name))
	case event.Death:
		return r.paint(Bold+BrightRed, fmt.Sprintf("%s falls!", ev.Target.Name))
	case event.StatusApplied:
		return r.paint(Cyan, fmt.Sprintf("%s is affected by %s for %d turns.", ev.Target.Name, ev.Detail, ev.Amount))
	case event.Narration:
		return r.paint(White, ev.Detail)
	case event.BattleEnd:
		return r.paint(Bold+BrightGreen, "*** "+ev.Detail+" ***")
	}
	return ""
}

func (r *Renderer) paint(color, text string) string {
	if !r.color {
		return text
	}
	return Colorize(color, text)
}
