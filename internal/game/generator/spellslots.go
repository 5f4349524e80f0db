package generator

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// ErrSpellSlots reports a record whose slot count disagrees with its class
// and subclass tables.
var ErrSpellSlots = errors.New("spell slots do not match the class tables")

// ExpectedSpellSlots returns the slot count c should carry: the larger of the
// class and subclass tables at c's level. A non-casting class with a
// non-magical subclass yields 0.
//
// Precondition: catalog must be non-nil.
func ExpectedSpellSlots(catalog *ruleset.Catalog, c *character.Character) int {
	want := 0
	if cl, ok := catalog.Class(c.Class); ok {
		want = ruleset.SlotsAt(cl.SpellSlots, c.Level)
	}
	if c.Subclass == "" {
		return want
	}
	if sub, ok := catalog.Subclass(c.Subclass); ok {
		want = max(want, ruleset.SlotsAt(sub.SpellSlots, c.Level))
	}
	return want
}

// CheckSpellSlots verifies c.SpellSlots against ExpectedSpellSlots.
//
// Postcondition: returns nil or an error wrapping ErrSpellSlots.
func CheckSpellSlots(catalog *ruleset.Catalog, c *character.Character) error {
	if want := ExpectedSpellSlots(catalog, c); c.SpellSlots != want {
		return fmt.Errorf("%w: %s %s level %d has %d, want %d",
			ErrSpellSlots, c.Class, c.Subclass, c.Level, c.SpellSlots, want)
	}
	return nil
}
