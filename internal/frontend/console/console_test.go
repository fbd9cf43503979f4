package console_test

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/frontend/console"
	"github.com/cory-johannsen/skirmish/internal/game/event"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", console.Colorize(console.Red, "danger"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mhealth: 42\033[0m", console.Colorf(console.Green, "health: %d", 42))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", console.StripANSI(input))
}

// Property: StripANSI(Colorize(color, text)) == text for any ASCII text.
func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{console.Red, console.Green, console.Blue, console.Yellow, console.Cyan, console.Bold, console.Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		color := rapid.SampledFrom(colors).Draw(t, "color")
		assert.Equal(t, text, console.StripANSI(console.Colorize(color, text)))
	})
}

func TestReader_RetriesUntilValid(t *testing.T) {
	var out bytes.Buffer
	r := console.NewReader(strings.NewReader("abc\n9\n  2 \n"), &out, 0)

	n, err := r.ReadInt(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, strings.Count(console.StripANSI(out.String()), "Enter a number from 1 to 3."))
}

func TestReader_EOF(t *testing.T) {
	r := console.NewReader(strings.NewReader(""), io.Discard, 0)
	_, err := r.ReadInt(0, 1)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReader_TooManyAttempts(t *testing.T) {
	r := console.NewReader(strings.NewReader("x\ny\nz\n1\n"), io.Discard, 3)
	_, err := r.ReadInt(1, 1)
	assert.ErrorIs(t, err, console.ErrTooManyAttempts)
}

func TestReader_ZeroLimitKeepsPrompting(t *testing.T) {
	r := console.NewReader(strings.NewReader(strings.Repeat("x\n", 50)+"1\n"), io.Discard, 0)
	n, err := r.ReadInt(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProperty_Reader_AcceptsEveryInRangeValue(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-5, 5).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+10).Draw(rt, "hi")
		v := rapid.IntRange(lo, hi).Draw(rt, "v")
		r := console.NewReader(strings.NewReader(strings.Repeat("x\n", 2)+strconv.Itoa(v)+"\n"), io.Discard, 0)
		n, err := r.ReadInt(lo, hi)
		if err != nil || n != v {
			rt.Fatalf("ReadInt = %d, %v; want %d", n, err, v)
		}
	})
}

func TestRenderer_Lines(t *testing.T) {
	knight := event.Ref{ID: "1", Name: "Knight", Team: "HERO"}
	slime := event.Ref{ID: "2", Name: "Slime", Team: "ENEMY"}
	r := console.NewRenderer(io.Discard, false)

	cases := []struct {
		ev   event.GameEvent
		want string
	}{
		{event.GameEvent{Kind: event.RoundStart, Amount: 3}, "=== Round 3 ==="},
		{event.GameEvent{Kind: event.Damage, Actor: knight, Target: slime, Amount: 7, Detail: "Attack"}, "Knight hits Slime with Attack for 7 damage."},
		{event.GameEvent{Kind: event.Damage, Target: slime, Amount: 1, Detail: "Burn"}, "Slime suffers 1 damage from Burn."},
		{event.GameEvent{Kind: event.Heal, Actor: knight, Target: knight, Amount: 5}, "Knight restores 5 HP to Knight."},
		{event.GameEvent{Kind: event.Death, Target: slime}, "Slime falls!"},
		{event.GameEvent{Kind: event.StatusApplied, Target: slime, Amount: 2, Detail: "Stun"}, "Slime is affected by Stun for 2 turns."},
		{event.GameEvent{Kind: event.Narration, Detail: "Knight hesitates."}, "Knight hesitates."},
		{event.GameEvent{Kind: event.BattleEnd, Detail: "HERO victory after 2 rounds"}, "*** HERO victory after 2 rounds ***"},
		{event.GameEvent{Kind: event.TurnStart, Actor: knight}, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, r.Render(tc.ev), tc.ev.Kind.String())
	}
}

func TestRenderer_OnEventWritesColoredLine(t *testing.T) {
	var out bytes.Buffer
	r := console.NewRenderer(&out, true)
	require.NoError(t, r.OnEvent(event.GameEvent{Kind: event.Death, Target: event.Ref{Name: "Slime"}}))
	require.NoError(t, r.OnEvent(event.GameEvent{Kind: event.TurnEnd}))

	assert.Contains(t, out.String(), "\033[")
	assert.Equal(t, "Slime falls!\n", console.StripANSI(out.String()))
}
