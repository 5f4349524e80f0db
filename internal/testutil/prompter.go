// Package testutil provides scripted collaborators and HTTP helpers for tests.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/cory-johannsen/charsheet/internal/game/prompt"
)

// Abort is a scripted answer that makes the prompt return prompt.ErrAborted.
const Abort = "\x00abort"

// Prompt records one question asked of a Scripted prompter.
type Prompt struct {
	Message string
	Offered []string // options remaining after the selected values were removed
	Answer  string
}

// Scripted answers prompts from per-message rules first, then from a queue.
// When neither applies it picks the first offered option.
type Scripted struct {
	mu      sync.Mutex
	rules   []*rule
	answers []string
	Prompts []Prompt
}

type rule struct {
	match   string
	answers []string
}

// NewScripted returns a Scripted prompter that consumes answers in order.
func NewScripted(answers ...string) *Scripted {
	return &Scripted{answers: answers}
}

// Push appends answers to the queue.
func (s *Scripted) Push(answers ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, answers...)
}

// On answers prompts whose message contains match with answers, in order.
// Rules are consulted in the order they were added.
func (s *Scripted) On(match string, answers ...string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, &rule{match: match, answers: answers})
	return s
}

func (s *Scripted) next(message string) (string, bool) {
	for _, r := range s.rules {
		if len(r.answers) > 0 && strings.Contains(message, r.match) {
			a := r.answers[0]
			r.answers = r.answers[1:]
			return a, true
		}
	}
	if len(s.answers) > 0 {
		a := s.answers[0]
		s.answers = s.answers[1:]
		return a, true
	}
	return "", false
}

// Choose implements prompt.Prompter.
//
// Postcondition: returns an offered option, prompt.ErrAborted for Abort, or an
// error naming a scripted answer that was not offered.
func (s *Scripted) Choose(_ context.Context, message string, options, selected []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offered := prompt.Remaining(options, selected)
	rec := Prompt{Message: message, Offered: offered}
	if len(offered) == 0 {
		s.Prompts = append(s.Prompts, rec)
		return "", fmt.Errorf("%w: %s", prompt.ErrNoOptions, message)
	}
	answer, ok := s.next(message)
	if !ok {
		answer = offered[0]
	}
	rec.Answer = answer
	s.Prompts = append(s.Prompts, rec)
	if answer == Abort {
		return "", prompt.ErrAborted
	}
	if !slices.Contains(offered, answer) {
		return "", fmt.Errorf("testutil: scripted answer %q not offered for %q (offered %v)", answer, message, offered)
	}
	return answer, nil
}

// Asked returns the recorded prompts whose message contains match.
func (s *Scripted) Asked(match string) []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Prompt
	for _, p := range s.Prompts {
		if strings.Contains(p.Message, match) {
			out = append(out, p)
		}
	}
	return out
}

// Recorder is a prompt.Notifier that keeps every message.
type Recorder struct {
	mu     sync.Mutex
	Infos  []string
	Warns  []string
	Errors []string
}

func (r *Recorder) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Infos = append(r.Infos, msg)
}

func (r *Recorder) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warns = append(r.Warns, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}
