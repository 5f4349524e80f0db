package console_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/charsheet/internal/frontend/console"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
)

var _ prompt.Prompter = (*console.Terminal)(nil)

func newTerminal(input string) (*console.Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return console.NewTerminal(strings.NewReader(input), console.New(&out)), &out
}

var classes = []string{"Bard", "Cleric", "Fighter", "Wizard"}

func TestChoose_ByNumber(t *testing.T) {
	term, out := newTerminal("3\n")
	got, err := term.Choose(context.Background(), "Choose a class", classes, nil)
	require.NoError(t, err)
	assert.Equal(t, "Fighter", got)
	assert.Contains(t, out.String(), "Choose a class:")
	assert.Contains(t, out.String(), "  4. Wizard")
	assert.Contains(t, out.String(), "Select [1-4]: ")
}

func TestChoose_ByNameIgnoresCase(t *testing.T) {
	term, _ := newTerminal("  wIzArD \n")
	got, err := term.Choose(context.Background(), "Choose a class", classes, nil)
	require.NoError(t, err)
	assert.Equal(t, "Wizard", got)
}

func TestChoose_InvalidEntryReprompts(t *testing.T) {
	term, out := newTerminal("9\nPaladin\n1\n")
	got, err := term.Choose(context.Background(), "Choose a class", classes, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bard", got)
	assert.Contains(t, out.String(), `Invalid selection "9"`)
	assert.Contains(t, out.String(), `Invalid selection "Paladin"`)
	assert.Equal(t, 3, strings.Count(out.String(), "Select [1-4]: "))
}

func TestChoose_SelectedValuesAreNotOffered(t *testing.T) {
	term, out := newTerminal("1\n")
	got, err := term.Choose(context.Background(), "Choose a skill", []string{"Arcana", "History", "Insight"}, []string{"Arcana"})
	require.NoError(t, err)
	assert.Equal(t, "History", got)
	assert.NotContains(t, out.String(), "Arcana")
	assert.Contains(t, out.String(), "Select [1-2]: ")
}

func TestChoose_SingleOptionIsPickedWithoutReading(t *testing.T) {
	term, out := newTerminal("")
	got, err := term.Choose(context.Background(), "Choose a subrace", []string{"Hill Dwarf", "Mountain Dwarf"}, []string{"Hill Dwarf"})
	require.NoError(t, err)
	assert.Equal(t, "Mountain Dwarf", got)
	assert.Contains(t, out.String(), "Choose a subrace: Mountain Dwarf")
}

func TestChoose_NoOptions(t *testing.T) {
	term, _ := newTerminal("")
	_, err := term.Choose(context.Background(), "Choose a language", []string{"Common"}, []string{"Common"})
	assert.True(t, errors.Is(err, prompt.ErrNoOptions))
}

func TestChoose_Aborts(t *testing.T) {
	for name, input := range map[string]string{
		"quit":         "quit\n",
		"exit":         "EXIT\n",
		"end of input": "",
		"after error":  "nope\n",
	} {
		t.Run(name, func(t *testing.T) {
			term, _ := newTerminal(input)
			_, err := term.Choose(context.Background(), "Choose a class", classes, nil)
			assert.True(t, errors.Is(err, prompt.ErrAborted))
		})
	}
}

func TestChoose_CancelledWhileWaiting(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	term := console.NewTerminal(r, console.New(io.Discard))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := term.Choose(ctx, "Choose a class", classes, nil)
	assert.True(t, errors.Is(err, prompt.ErrAborted))
}

func TestChoose_AnswersAreConsumedInOrder(t *testing.T) {
	term, _ := newTerminal("2\nfighter\n")
	first, err := term.Choose(context.Background(), "Choose a class", classes, nil)
	require.NoError(t, err)
	second, err := term.Choose(context.Background(), "Choose another class", classes, []string{first})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cleric", "Fighter"}, []string{first, second})
}

func TestNewTerminal_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { console.NewTerminal(nil, console.New(io.Discard)) })
	assert.Panics(t, func() { console.NewTerminal(strings.NewReader(""), nil) })
}
