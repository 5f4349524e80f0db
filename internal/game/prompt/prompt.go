// Package prompt defines the single choice primitive through which every
// branching decision of the generator flows.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/charsheet/internal/game/dice"
)

var (
	// ErrAborted is returned when the user abandons a prompt.
	ErrAborted = errors.New("prompt: aborted by user")
	// ErrNoOptions is returned when every option has already been selected.
	ErrNoOptions = errors.New("prompt: no options remain")
)

//go:generate mockgen -destination=mock/mock_prompt.go -package=promptmock github.com/cory-johannsen/charsheet/internal/game/prompt Prompter,Notifier

// Prompter asks for one value out of options.
//
// Implementations MUST NOT offer any value contained in selected and MUST
// return one of the remaining options or an error.
type Prompter interface {
	Choose(ctx context.Context, message string, options, selected []string) (string, error)
}

// Notifier receives the non-fatal messages produced during generation.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// Remaining returns options with duplicates and selected values removed,
// preserving order.
//
// Postcondition: result contains no element of selected and no duplicates.
func Remaining(options, selected []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if slices.Contains(selected, o) || slices.Contains(out, o) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// ChooseN prompts n times, each time excluding previously chosen values and
// selected. It stops early once the options are exhausted.
//
// Precondition: n >= 0.
// Postcondition: len(result) <= n; result has no duplicates and shares no
// element with selected.
func ChooseN(ctx context.Context, p Prompter, message string, options, selected []string, n int) ([]string, error) {
	held := slices.Clone(selected)
	var out []string
	for i := 0; i < n; i++ {
		if len(Remaining(options, held)) == 0 {
			break
		}
		msg := message
		if n > 1 {
			msg = fmt.Sprintf("%s (%d of %d)", message, i+1, n)
		}
		v, err := p.Choose(ctx, msg, options, held)
		if err != nil {
			return out, err
		}
		out = append(out, v)
		held = append(held, v)
	}
	return out, nil
}

// Random picks uniformly among the remaining options without user input.
type Random struct {
	src dice.Source
}

// NewRandom returns a Random prompter drawing from src.
//
// Precondition: src must be non-nil.
func NewRandom(src dice.Source) *Random {
	if src == nil {
		panic("prompt: NewRandom requires a non-nil source")
	}
	return &Random{src: src}
}

// Choose returns a uniformly chosen remaining option.
func (r *Random) Choose(ctx context.Context, message string, options, selected []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAborted, err)
	}
	rest := Remaining(options, selected)
	if len(rest) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoOptions, message)
	}
	return rest[r.src.Intn(len(rest))], nil
}

// Discard is a Notifier that drops every message.
type Discard struct{}

func (Discard) Info(string)  {}
func (Discard) Warn(string)  {}
func (Discard) Error(string) {}
