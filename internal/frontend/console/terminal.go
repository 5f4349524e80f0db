package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/cory-johannsen/charsheet/internal/game/prompt"
)

// Terminal is an interactive prompt.Prompter. It prints a numbered menu and
// accepts either a number or an option name in any letter case. Invalid
// input is reported in red and the same menu is asked again. End of input,
// "quit", "exit", or cancellation of the context abort the prompt.
type Terminal struct {
	console *Console
	lines   <-chan string
	fold    cases.Caser
}

// NewTerminal reads answers from in and writes menus to c. Lines are read on
// a separate goroutine so a blocked read never delays cancellation.
//
// Precondition: in and c must be non-nil.
func NewTerminal(in io.Reader, c *Console) *Terminal {
	if in == nil || c == nil {
		panic("console: NewTerminal requires a reader and a console")
	}
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return &Terminal{console: c, lines: lines, fold: cases.Fold()}
}

// Choose implements prompt.Prompter.
//
// Postcondition: returns one of the remaining options, prompt.ErrAborted, or
// prompt.ErrNoOptions when nothing remains.
func (t *Terminal) Choose(ctx context.Context, message string, options, selected []string) (string, error) {
	remaining := prompt.Remaining(options, selected)
	style := t.console.Style()
	switch len(remaining) {
	case 0:
		return "", fmt.Errorf("%w: %s", prompt.ErrNoOptions, message)
	case 1:
		t.console.Println(fmt.Sprintf("%s %s", style.Paint(BrightWhite, message+":"), style.Paint(Cyan, remaining[0])))
		return remaining[0], nil
	}

	t.console.Println("")
	t.console.Println(style.Paint(BrightYellow, message+":"))
	for i, o := range remaining {
		t.console.Println(fmt.Sprintf("  %s. %s", style.Paint(Green, strconv.Itoa(i+1)), o))
	}
	for {
		t.console.Print(style.Paintf(BrightWhite, "Select [1-%d]: ", len(remaining)))
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			t.console.Println("")
			return "", fmt.Errorf("%w: %v", prompt.ErrAborted, ctx.Err())
		case line, ok = <-t.lines:
		}
		if !ok {
			t.console.Println("")
			return "", prompt.ErrAborted
		}
		line = strings.TrimSpace(line)
		if lower := strings.ToLower(line); lower == "quit" || lower == "exit" {
			return "", prompt.ErrAborted
		}
		if pick, ok := t.match(line, remaining); ok {
			return pick, nil
		}
		t.console.Println(style.Paintf(Red, "Invalid selection %q; enter 1-%d or an option name.", line, len(remaining)))
	}
}

func (t *Terminal) match(line string, options []string) (string, bool) {
	if n, err := strconv.Atoi(line); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	want := t.fold.String(line)
	for _, o := range options {
		if t.fold.String(o) == want {
			return o, true
		}
	}
	return "", false
}
