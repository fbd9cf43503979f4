package event

import "fmt"

// Bus fans events out to listeners synchronously in subscription order.
// It is not safe for concurrent use; a battle publishes from one goroutine.
type Bus struct {
	listeners []Listener
}

// NewBus creates a Bus with the given initial listeners.
func NewBus(listeners ...Listener) *Bus {
	b := &Bus{}
	for _, l := range listeners {
		b.Subscribe(l)
	}
	return b
}

// Subscribe appends l to the fan-out list. nil listeners are ignored.
func (b *Bus) Subscribe(l Listener) {
	if l == nil {
		return
	}
	b.listeners = append(b.listeners, l)
}

// Len returns the number of subscribed listeners.
func (b *Bus) Len() int { return len(b.listeners) }

// Publish invokes every listener in subscription order before returning.
//
// Postcondition: if a listener fails, later listeners are not invoked and the
// error is returned wrapped with the event kind.
func (b *Bus) Publish(ev GameEvent) error {
	for _, l := range b.listeners {
		if err := l.OnEvent(ev); err != nil {
			return fmt.Errorf("publishing %s: %w", ev.Kind, err)
		}
	}
	return nil
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(GameEvent) error { return nil }
