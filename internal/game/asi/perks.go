package asi

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/guide"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// groupedKinds are the proficiency kinds whose pools are partitioned into
// named groups and offered group first, then item.
var groupedKinds = []string{ruleset.Weapons, ruleset.Tools}

// nouns names a proficiency kind in prompts.
var nouns = map[string]string{
	ruleset.Armors:    "armor",
	ruleset.Weapons:   "weapon",
	ruleset.Tools:     "tool",
	ruleset.Skills:    "skill",
	ruleset.Languages: "language",
}

// ApplyPerks grants the perks of feat id to c: fixed ability increases, the
// speed override, innate spells, and the flags of the perk option string.
// Increases that would exceed the cap and unknown flags produce warnings and
// are skipped.
//
// Postcondition: no ability raised here exceeds character.ScoreCap.
func (e *Engine) ApplyPerks(ctx context.Context, c *character.Character, id string, p ruleset.Perks) error {
	for _, a := range character.Abilities {
		if k, ok := p.Ability[a]; ok {
			e.raise(c, id, a, k)
		}
	}
	if p.Speed > 0 {
		c.Speed = p.Speed
	}
	for _, choice := range p.Spells {
		pick := choice[0]
		if !choice.Fixed() {
			if len(prompt.Remaining(choice, c.Spells)) == 0 {
				continue
			}
			var err error
			pick, err = e.prompter.Choose(ctx, fmt.Sprintf("%s: choose a spell", id), choice, c.Spells)
			if err != nil {
				return err
			}
		}
		c.Add(character.ListSpells, pick)
	}

	flags, err := guide.Parse(p.Options)
	if err != nil {
		return fmt.Errorf("feat %q perks: %w", id, err)
	}
	saves := slices.ContainsFunc(flags, func(f guide.Flag) bool { return f.Name == "savingthrows" })
	for _, f := range flags {
		switch f.Name {
		case "ability":
			raised, err := e.abilityFlag(ctx, c, id, f)
			if err != nil {
				return err
			}
			if saves {
				c.Add(character.ListSavingThrows, character.AbilityNames(raised)...)
			}
		case "savingthrows":
			c.Add(character.ListSavingThrows, f.Values()...)
		case "proficiency":
			if err := e.proficiencyFlag(ctx, c, id, f, p); err != nil {
				return err
			}
		case "speed":
			vals := f.Values()
			if len(vals) != 1 {
				e.notifier.Warn(fmt.Sprintf("%s: speed perk needs one value; skipped.", id))
				continue
			}
			speed, err := strconv.Atoi(vals[0])
			if err != nil || speed <= 0 {
				e.notifier.Warn(fmt.Sprintf("%s: speed perk %q is not a positive number; skipped.", id, vals[0]))
				continue
			}
			c.Speed = speed
		case "spells":
			if f.Auto() {
				c.Add(character.ListSpells, f.Values()...)
				continue
			}
			picks, err := prompt.ChooseN(ctx, e.prompter, fmt.Sprintf("%s: choose a spell", id), f.Values(), c.Spells, f.Increment)
			if err != nil {
				return err
			}
			c.Add(character.ListSpells, picks...)
		default:
			e.notifier.Warn(fmt.Sprintf("%s: unknown perk %q skipped.", id, f.Name))
		}
	}
	e.logger.Debug("feat perks applied", zap.String("feat", id))
	return nil
}

// raise adds k to a unless the result would exceed the cap.
func (e *Engine) raise(c *character.Character, id string, a character.Ability, k int) bool {
	if c.Scores.Get(a)+k > character.ScoreCap {
		e.notifier.Warn(fmt.Sprintf("%s: %s cannot exceed %d; bonus skipped.", id, a, character.ScoreCap))
		return false
	}
	c.Scores.Add(a, k)
	return true
}

// abilityFlag raises the abilities of one option group by the flag's
// increment. With several groups the user picks one among those that fit
// under the cap. Returns the abilities actually raised.
func (e *Engine) abilityFlag(ctx context.Context, c *character.Character, id string, f guide.Flag) ([]character.Ability, error) {
	amount := f.Increment
	if amount == 0 {
		amount = 1
	}
	group := guide.Option(nil)
	switch len(f.Options) {
	case 0:
		e.notifier.Warn(fmt.Sprintf("%s: ability perk names no ability; skipped.", id))
		return nil, nil
	case 1:
		group = f.Options[0]
	default:
		var fits []string
		byName := make(map[string]guide.Option, len(f.Options))
		for _, o := range f.Options {
			if fitsCap(c, o, amount) {
				fits = append(fits, o.String())
				byName[o.String()] = o
			}
		}
		if len(fits) == 0 {
			e.notifier.Warn(fmt.Sprintf("%s: every listed ability would exceed %d; bonus skipped.", id, character.ScoreCap))
			return nil, nil
		}
		pick, err := e.prompter.Choose(ctx, fmt.Sprintf("%s: choose an ability to raise by %d", id, amount), fits, nil)
		if err != nil {
			return nil, err
		}
		group = byName[pick]
	}
	var raised []character.Ability
	for _, name := range group {
		if !character.IsAbility(name) {
			e.notifier.Warn(fmt.Sprintf("%s: unknown ability %q skipped.", id, name))
			continue
		}
		a := character.Ability(name)
		if e.raise(c, id, a, amount) {
			raised = append(raised, a)
		}
	}
	return raised, nil
}

func fitsCap(c *character.Character, o guide.Option, amount int) bool {
	for _, name := range o {
		if !character.IsAbility(name) || c.Scores.Get(character.Ability(name))+amount > character.ScoreCap {
			return false
		}
	}
	return true
}

// proficiencyFlag grants proficiencies of the kinds named by the flag. An
// exclusive flag first asks which kind; a "+" group pools several kinds. An
// automatic flag adopts the feat's own list for every kind.
func (e *Engine) proficiencyFlag(ctx context.Context, c *character.Character, id string, f guide.Flag, p ruleset.Perks) error {
	if len(f.Options) == 0 {
		e.notifier.Warn(fmt.Sprintf("%s: proficiency perk names no type; skipped.", id))
		return nil
	}
	kinds := f.Options[0]
	if len(f.Options) > 1 {
		byName := make(map[string]guide.Option, len(f.Options))
		for _, o := range f.Options {
			byName[o.String()] = o
		}
		pick, err := e.prompter.Choose(ctx, fmt.Sprintf("%s: choose a proficiency type", id), f.Names(), nil)
		if err != nil {
			return err
		}
		kinds = byName[pick]
	}
	for _, k := range kinds {
		if _, ok := nouns[k]; !ok {
			e.notifier.Warn(fmt.Sprintf("%s: unknown proficiency type %q skipped.", id, k))
			return nil
		}
	}
	if f.Auto() {
		for _, k := range kinds {
			c.Add(k, p.List(k)...)
		}
		return nil
	}
	for i := 1; i <= f.Increment; i++ {
		kind, value, err := e.chooseProficiency(ctx, c, id, kinds, p, i, f.Increment)
		if err != nil {
			return err
		}
		if value == "" {
			e.notifier.Warn(fmt.Sprintf("%s: no %s proficiency left to choose.", id, guide.Option(kinds)))
			return nil
		}
		c.Add(kind, value)
		e.logger.Debug("perk proficiency", zap.String("feat", id), zap.String("kind", kind), zap.String("value", value))
	}
	return nil
}

// chooseProficiency offers one menu over every kind. Grouped kinds without a
// feat-specific list are offered as groups the character is not already
// proficient with, followed by a second menu of the group's items. Returns
// an empty value when nothing is left.
func (e *Engine) chooseProficiency(ctx context.Context, c *character.Character, id string, kinds []string, p ruleset.Perks, i, n int) (string, string, error) {
	var menu []string
	kindOf := make(map[string]string)
	groupItems := make(map[string][]string)
	for _, k := range kinds {
		own := p.List(k)
		if len(own) == 0 && slices.Contains(groupedKinds, k) {
			for _, g := range e.catalog.Groups(k) {
				if c.Has(k, g.Name) {
					continue
				}
				if items := unheld(c, k, g.Items); len(items) > 0 {
					menu = append(menu, g.Name)
					kindOf[g.Name] = k
					groupItems[g.Name] = items
				}
			}
			continue
		}
		pool := own
		if len(pool) == 0 {
			pool = e.catalog.Pool(k)
		}
		for _, v := range unheld(c, k, pool) {
			if _, dup := kindOf[v]; dup {
				continue
			}
			menu = append(menu, v)
			kindOf[v] = k
		}
	}
	if len(menu) == 0 {
		return "", "", nil
	}
	noun := nouns[kinds[0]]
	if len(kinds) > 1 {
		noun = "proficiency"
	}
	msg := fmt.Sprintf("%s: choose a %s", id, noun)
	if n > 1 {
		msg = fmt.Sprintf("%s (%d of %d)", msg, i, n)
	}
	pick, err := e.prompter.Choose(ctx, msg, menu, nil)
	if err != nil {
		return "", "", err
	}
	kind := kindOf[pick]
	items, grouped := groupItems[pick]
	if !grouped {
		return kind, pick, nil
	}
	item, err := e.prompter.Choose(ctx, fmt.Sprintf("%s: choose from %s", id, pick), items, nil)
	if err != nil {
		return "", "", err
	}
	return kind, item, nil
}

func unheld(c *character.Character, kind string, values []string) []string {
	var out []string
	for _, v := range values {
		if !c.Has(kind, v) {
			out = append(out, v)
		}
	}
	return out
}
