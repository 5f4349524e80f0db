// Package blueprint resolves catalog guidelines into concrete selections and
// assembles the race, subrace, background, class, and subclass partial
// records into one character.
package blueprint

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/guide"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// ErrUnknownFlag reports a guideline flag the resolver does not understand.
var ErrUnknownFlag = errors.New("blueprint: unknown guideline flag")

// listNouns maps every list flag to the noun used in its prompt.
var listNouns = map[string]string{
	character.ListSkills:       "skill proficiency",
	character.ListLanguages:    "language",
	character.ListArmors:       "armor proficiency",
	character.ListTools:        "tool proficiency",
	character.ListWeapons:      "weapon proficiency",
	character.ListSavingThrows: "saving throw",
	character.ListResistances:  "resistance",
	character.ListTraits:       "trait",
	character.ListSpells:       "spell",
}

// Entry is the caller-owned view of a rule entry that a guideline acts on.
// Exclusive flags empty the suppressed keys of Options, so Entry must never
// alias catalog data.
type Entry struct {
	Category  string
	ID        string
	Options   map[string][]string
	Abilities map[int]ruleset.Choice // class ability ranking
}

// NewEntry copies options into a fresh Entry.
func NewEntry(category, id string, options map[string][]string) *Entry {
	opts := make(map[string][]string, len(options))
	for k, v := range options {
		opts[k] = slices.Clone(v)
	}
	return &Entry{Category: category, ID: id, Options: opts}
}

// Resolver applies parsed guideline flags to a partial record.
type Resolver struct {
	catalog  *ruleset.Catalog
	prompter prompt.Prompter
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: all arguments must be non-nil.
func NewResolver(catalog *ruleset.Catalog, prompter prompt.Prompter, logger *zap.Logger) *Resolver {
	if catalog == nil || prompter == nil || logger == nil {
		panic("blueprint: NewResolver requires a catalog, prompter, and logger")
	}
	return &Resolver{catalog: catalog, prompter: prompter, logger: logger}
}

// Apply resolves flags in declared order against e and records the
// selections in rec. Values held by omitted, or already held by rec, are
// never offered again.
//
// Precondition: rec is non-nil; omitted may be nil.
// Postcondition: on success every flag has been applied or deliberately
// skipped; an aborted prompt is returned unchanged.
func (r *Resolver) Apply(ctx context.Context, flags []guide.Flag, e *Entry, rec, omitted *character.Character) error {
	suppressed := make(map[string]bool)
	for _, f := range flags {
		if suppressed[f.Name] {
			r.logger.Debug("guideline flag suppressed", zap.String("entry", e.ID), zap.String("flag", f.Name))
			continue
		}
		if f.Exclusive {
			names := f.Names()
			pick, err := r.prompter.Choose(ctx, fmt.Sprintf("%s: choose one of", e.ID), names, nil)
			if err != nil {
				return err
			}
			for _, n := range names {
				if n != pick {
					suppressed[n] = true
					delete(e.Options, n)
				}
			}
			r.logger.Debug("exclusive flag resolved", zap.String("entry", e.ID), zap.String("choice", pick))
			f = guide.Flag{Name: pick, Increment: f.Increment}
		}
		if err := r.applyFlag(ctx, f, e, rec, omitted); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) applyFlag(ctx context.Context, f guide.Flag, e *Entry, rec, omitted *character.Character) error {
	switch f.Name {
	case "ability":
		return r.Rank(ctx, e, rec)
	case "subclass":
		return r.subclass(ctx, e, rec)
	case "bonus":
		return r.bonus(ctx, f, e, rec)
	case "speed":
		vals := f.Values()
		if len(vals) != 1 {
			return fmt.Errorf("%w: %s speed needs exactly one value", guide.ErrMalformed, e.ID)
		}
		speed, err := strconv.Atoi(vals[0])
		if err != nil {
			return fmt.Errorf("%w: %s speed %q: %v", guide.ErrMalformed, e.ID, vals[0], err)
		}
		rec.Speed = speed
		return nil
	}
	if _, ok := listNouns[f.Name]; !ok {
		return fmt.Errorf("%w: %q in %s %q", ErrUnknownFlag, f.Name, e.Category, e.ID)
	}
	return r.list(ctx, f, e, rec, omitted)
}

// Rank resolves the class ability ranking, asking for every rank that lists
// alternatives.
func (r *Resolver) Rank(ctx context.Context, e *Entry, rec *character.Character) error {
	ranks := slices.Sorted(maps.Keys(e.Abilities))
	var ranking []character.Ability
	for _, rank := range ranks {
		choice := e.Abilities[rank]
		pick := ""
		if choice.Fixed() {
			pick = choice[0]
		} else {
			var err error
			pick, err = r.prompter.Choose(ctx, fmt.Sprintf("%s: choose your priority %d ability", e.ID, rank),
				choice, character.AbilityNames(ranking))
			if err != nil {
				return err
			}
		}
		a := character.Ability(pick)
		if !slices.Contains(ranking, a) {
			ranking = append(ranking, a)
		}
	}
	rec.Ranking = ranking
	r.logger.Debug("ability ranking resolved", zap.String("entry", e.ID), zap.Strings("ranking", character.AbilityNames(ranking)))
	return nil
}

func (r *Resolver) subclass(ctx context.Context, e *Entry, rec *character.Character) error {
	if rec.Level < 3 {
		rec.Subclass = ""
		return nil
	}
	options := e.Options["subclass"]
	if rec.Subclass != "" {
		if !slices.Contains(options, rec.Subclass) {
			return fmt.Errorf("%w: subclass %q is not available to %s", ruleset.ErrUnknownEntry, rec.Subclass, e.ID)
		}
		return nil
	}
	pick, err := r.prompter.Choose(ctx, fmt.Sprintf("%s: choose a subclass", e.ID), options, nil)
	if err != nil {
		return err
	}
	rec.Subclass = pick
	return nil
}

// bonus raises Increment distinct abilities by one each. An automatic flag
// raises every listed ability.
func (r *Resolver) bonus(ctx context.Context, f guide.Flag, e *Entry, rec *character.Character) error {
	pool := f.Values()
	if len(pool) == 0 {
		pool = e.Options["bonus"]
	}
	if len(pool) == 0 {
		pool = character.AbilityNames(character.Abilities)
	}
	var picks []string
	if f.Auto() {
		picks = pool
	} else {
		var held []string
		for a := range rec.Bonus {
			held = append(held, string(a))
		}
		var err error
		picks, err = prompt.ChooseN(ctx, r.prompter, fmt.Sprintf("%s: choose an ability to raise by 1", e.ID), pool, held, f.Increment)
		if err != nil {
			return err
		}
	}
	if rec.Bonus == nil {
		rec.Bonus = make(map[character.Ability]int)
	}
	for _, p := range picks {
		if !character.IsAbility(p) {
			return fmt.Errorf("%w: %s bonus names unknown ability %q", guide.ErrMalformed, e.ID, p)
		}
		rec.Bonus[character.Ability(p)]++
	}
	return nil
}

func (r *Resolver) list(ctx context.Context, f guide.Flag, e *Entry, rec, omitted *character.Character) error {
	pool := f.Values()
	if len(pool) == 0 {
		pool = e.Options[f.Name]
	}
	if f.Auto() {
		rec.Add(f.Name, pool...)
		return nil
	}
	if len(pool) == 0 {
		pool = r.catalog.Pool(f.Name)
	}
	held := slices.Clone(*rec.ListField(f.Name))
	if omitted != nil {
		held = append(held, *omitted.ListField(f.Name)...)
	}
	msg := fmt.Sprintf("%s: choose a %s", e.ID, listNouns[f.Name])
	picks, err := prompt.ChooseN(ctx, r.prompter, msg, pool, held, f.Increment)
	if err != nil {
		return err
	}
	rec.Add(f.Name, picks...)
	r.logger.Debug("guideline choices", zap.String("entry", e.ID), zap.String("flag", f.Name), zap.Strings("picks", picks))
	return nil
}
