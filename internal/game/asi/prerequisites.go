package asi

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// ErrPrerequisite reports a feat whose prerequisites c does not meet.
var ErrPrerequisite = errors.New("prerequisites not met")

// CheckPrerequisites reports whether c may acquire feat id. Conditions are
// checked in order: possession, excluded classes, redundant proficiencies,
// ability minimums, spellcasting, required proficiencies, race, subrace.
// Ability minimums naming an unknown ability are ignored. A caster
// requirement always needs spell slots; its class list and primary ability
// threshold apply on top of that.
//
// Postcondition: returns nil or an error wrapping ErrPrerequisite.
func CheckPrerequisites(c *character.Character, id string, f ruleset.Feat) error {
	p := f.Prerequisites
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w: %s", id, ErrPrerequisite, fmt.Sprintf(format, args...))
	}
	if slices.Contains(c.Feats, id) {
		return fail("already acquired")
	}
	if slices.Contains(p.ExcludedClasses, c.Class) {
		return fail("not available to a %s", c.Class)
	}
	for _, prof := range p.Excludes {
		if c.Has(character.ListArmors, prof) || c.Has(character.ListWeapons, prof) {
			return fail("already proficient with %s", prof)
		}
	}
	for _, a := range character.Abilities {
		need, ok := p.Ability[string(a)]
		if !ok {
			continue
		}
		if got := c.Scores.Get(a); got < need {
			return fail("requires %s %d, have %d", a, need, got)
		}
	}
	if p.Caster != nil {
		if c.SpellSlots == 0 {
			return fail("requires the ability to cast spells")
		}
		if len(p.Caster.Classes) > 0 && !slices.Contains(p.Caster.Classes, c.Class) {
			return fail("requires one of the classes %v", p.Caster.Classes)
		}
		if p.Caster.Primary > 0 {
			primary := c.Primary()
			if primary == "" || c.Scores.Get(primary) < p.Caster.Primary {
				return fail("requires a primary ability of %d", p.Caster.Primary)
			}
		}
	}
	for _, prof := range p.Proficiency {
		if !c.Has(character.ListArmors, prof) && !c.Has(character.ListWeapons, prof) {
			return fail("requires proficiency with %s", prof)
		}
	}
	if len(p.Race) > 0 && !slices.Contains(p.Race, c.Race) {
		return fail("requires race %v", p.Race)
	}
	if len(p.Subrace) > 0 && !slices.Contains(p.Subrace, c.Subrace) {
		return fail("requires subrace %v", p.Subrace)
	}
	return nil
}
