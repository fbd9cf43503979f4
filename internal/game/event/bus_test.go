package event_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/game/event"
)

func TestBus_Publish_InSubscriptionOrder(t *testing.T) {
	var order []string
	bus := event.NewBus(
		event.ListenerFunc(func(event.GameEvent) error { order = append(order, "first"); return nil }),
		event.ListenerFunc(func(event.GameEvent) error { order = append(order, "second"); return nil }),
	)
	bus.Subscribe(event.ListenerFunc(func(event.GameEvent) error { order = append(order, "third"); return nil }))

	require.NoError(t, bus.Publish(event.GameEvent{Kind: event.Damage}))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_Publish_ErrorHaltsFanOut(t *testing.T) {
	boom := errors.New("boom")
	var reached bool
	bus := event.NewBus(
		event.ListenerFunc(func(event.GameEvent) error { return boom }),
		event.ListenerFunc(func(event.GameEvent) error { reached = true; return nil }),
	)

	err := bus.Publish(event.GameEvent{Kind: event.Death})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "DEATH")
	assert.False(t, reached, "listeners after a failing one must not run")
}

func TestBus_Subscribe_IgnoresNil(t *testing.T) {
	bus := event.NewBus(nil)
	assert.Equal(t, 0, bus.Len())
	assert.NoError(t, bus.Publish(event.GameEvent{}))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "TURN_START", event.TurnStart.String())
	assert.Equal(t, "STATUS_APPLIED", event.StatusApplied.String())
	assert.Equal(t, "KIND(99)", event.Kind(99).String())
}

func TestLogListener_WritesDebugEntry(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := event.LogListener(zap.New(core))
	require.NoError(t, l.OnEvent(event.GameEvent{Kind: event.Heal, Actor: event.Ref{Name: "Mira"}, Amount: 7}))
	entries := logs.FilterMessage("combat event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "HEAL", entries[0].ContextMap()["kind"])
}
