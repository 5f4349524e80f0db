// Package guide parses the guideline mini-language shared by catalog entries
// and feat perks.
//
// A guideline is a list of flags separated by "|". Each flag is either
// "NAME,INC" or "NAME=OPTS,INC". OPTS is a single option, a "&&" list of
// mutually exclusive options, and each option may itself be a "+" group whose
// members apply together. INC is a non-negative integer; 0 applies every
// listed option and a positive value asks for that many choices.
package guide

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed reports a guideline that does not follow the grammar.
	ErrMalformed = errors.New("guide: malformed guideline")
	// ErrNegativeIncrement reports a flag whose INC is below zero.
	ErrNegativeIncrement = errors.New("guide: negative increment")
)

// Option is one "+" group of an OPTS field. A single name is a group of one.
type Option []string

// String joins the group back with "+".
func (o Option) String() string { return strings.Join(o, "+") }

// Flag is one parsed guideline flag.
type Flag struct {
	Name      string
	Options   []Option
	Exclusive bool // OPTS was a "&&" list: exactly one option is chosen
	Increment int
}

// Auto reports whether the flag applies all of its options without asking.
func (f Flag) Auto() bool { return f.Increment == 0 }

// Values flattens every option group into one list in declared order.
func (f Flag) Values() []string {
	var out []string
	for _, o := range f.Options {
		out = append(out, o...)
	}
	return out
}

// Names returns each option rendered as a single string.
func (f Flag) Names() []string {
	out := make([]string, len(f.Options))
	for i, o := range f.Options {
		out[i] = o.String()
	}
	return out
}

// String renders f in guideline syntax.
func (f Flag) String() string {
	if len(f.Options) == 0 {
		return fmt.Sprintf("%s,%d", f.Name, f.Increment)
	}
	return fmt.Sprintf("%s=%s,%d", f.Name, strings.Join(f.Names(), "&&"), f.Increment)
}

// Parse parses a guideline string. An empty or blank string yields no flags.
//
// Postcondition: every returned Flag has a non-empty Name and
// Increment >= 0; errors wrap ErrMalformed or ErrNegativeIncrement.
func Parse(s string) ([]Flag, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var flags []Flag
	for _, raw := range strings.Split(s, "|") {
		f, err := parseFlag(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}

// MustParse parses s and panics on error.
func MustParse(s string) []Flag {
	flags, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return flags
}

func parseFlag(raw string) (Flag, error) {
	comma := strings.LastIndex(raw, ",")
	if comma < 0 {
		return Flag{}, fmt.Errorf("%w: flag %q has no increment", ErrMalformed, raw)
	}
	inc, err := strconv.Atoi(strings.TrimSpace(raw[comma+1:]))
	if err != nil {
		return Flag{}, fmt.Errorf("%w: flag %q increment: %v", ErrMalformed, raw, err)
	}
	if inc < 0 {
		return Flag{}, fmt.Errorf("%w: flag %q", ErrNegativeIncrement, raw)
	}
	head := raw[:comma]
	if strings.Contains(head, ",") {
		return Flag{}, fmt.Errorf("%w: flag %q has unpaired values", ErrMalformed, raw)
	}
	parts := strings.Split(head, "=")
	if len(parts) > 2 {
		return Flag{}, fmt.Errorf("%w: flag %q has more than one '='", ErrMalformed, raw)
	}
	f := Flag{Name: strings.TrimSpace(parts[0]), Increment: inc}
	if f.Name == "" {
		return Flag{}, fmt.Errorf("%w: flag %q has no name", ErrMalformed, raw)
	}
	if len(parts) == 1 {
		return f, nil
	}
	opts := strings.TrimSpace(parts[1])
	if opts == "" {
		return Flag{}, fmt.Errorf("%w: flag %q has empty options", ErrMalformed, raw)
	}
	groups := []string{opts}
	if strings.Contains(opts, "&&") {
		f.Exclusive = true
		groups = strings.Split(opts, "&&")
	}
	for _, g := range groups {
		o := Option(Expand(g))
		if len(o) == 0 || containsEmpty(o) {
			return Flag{}, fmt.Errorf("%w: flag %q has an empty option", ErrMalformed, raw)
		}
		f.Options = append(f.Options, o)
	}
	return f, nil
}

// Expand splits a "+" group into its trimmed members. A plain name expands to
// itself.
func Expand(option string) []string {
	parts := strings.Split(option, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 && parts[0] == "" {
		return nil
	}
	return parts
}

func containsEmpty(o Option) bool {
	for _, v := range o {
		if v == "" {
			return true
		}
	}
	return false
}
