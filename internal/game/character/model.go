// Package character defines the character record accumulated by the
// generation pipeline, the pure rules derived from it, and the merge that
// combines partial records.
package character

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Height is a stature in feet and inches.
type Height struct {
	Feet   int
	Inches int
}

// HeightFromInches converts a total in inches.
func HeightFromInches(in int) Height { return Height{Feet: in / 12, Inches: in % 12} }

// String renders the height as 5'7".
func (h Height) String() string { return fmt.Sprintf("%d'%d\"", h.Feet, h.Inches) }

// Character is the record built by the generator. Partial records produced
// by each stage share this shape and are combined with Merge.
type Character struct {
	ID                string
	Race              string
	Subrace           string
	Sex               string
	Alignment         string
	Background        string
	BackgroundFeature string
	Class             string
	Subclass          string
	Ancestry          string
	Level             int

	Ranking     []Ability // class ability priority, primary first
	Scores      Scores
	Bonus       map[Ability]int // racial bonuses
	Proficiency int
	HitDie      string // "LdN"
	HitDieSides int
	HP          int

	Armors       []string
	Tools        []string
	Weapons      []string
	Languages    []string
	Skills       []string
	SavingThrows []string
	Resistances  []string
	Traits       []string
	Feats        []string
	Equipment    []string

	Features   map[int][]string // level → class and subclass features
	Spells     []string         // innate spells
	BonusMagic map[int][]string // level → always-prepared spells
	SpellSlots int

	Speed  int
	Size   string
	Height Height
	Weight int
}

// List names accepted by ListField.
const (
	ListArmors       = "armors"
	ListTools        = "tools"
	ListWeapons      = "weapons"
	ListLanguages    = "languages"
	ListSkills       = "skills"
	ListSavingThrows = "savingthrows"
	ListResistances  = "resistances"
	ListTraits       = "traits"
	ListFeats        = "feats"
	ListEquipment    = "equipment"
	ListSpells       = "spells"
)

// UniqueLists names the lists that must never hold a value twice.
var UniqueLists = []string{
	ListSkills, ListLanguages, ListArmors, ListTools, ListWeapons, ListFeats, ListSavingThrows,
}

// ListField returns a pointer to the named string list, or nil for an
// unknown name.
func (c *Character) ListField(name string) *[]string {
	switch name {
	case ListArmors:
		return &c.Armors
	case ListTools:
		return &c.Tools
	case ListWeapons:
		return &c.Weapons
	case ListLanguages:
		return &c.Languages
	case ListSkills:
		return &c.Skills
	case ListSavingThrows:
		return &c.SavingThrows
	case ListResistances:
		return &c.Resistances
	case ListTraits:
		return &c.Traits
	case ListFeats:
		return &c.Feats
	case ListEquipment:
		return &c.Equipment
	case ListSpells:
		return &c.Spells
	}
	return nil
}

// Has reports whether the named list holds value.
func (c *Character) Has(list, value string) bool {
	l := c.ListField(list)
	return l != nil && slices.Contains(*l, value)
}

// Add appends values missing from the named list and returns how many were
// added.
//
// Precondition: list is a name accepted by ListField.
func (c *Character) Add(list string, values ...string) int {
	l := c.ListField(list)
	if l == nil {
		panic("character: Add called with unknown list " + strconv.Quote(list))
	}
	n := 0
	for _, v := range values {
		if !slices.Contains(*l, v) {
			*l = append(*l, v)
			n++
		}
	}
	return n
}

// Primary returns the highest ranked ability, or "" before ranking.
func (c *Character) Primary() Ability {
	if len(c.Ranking) == 0 {
		return ""
	}
	return c.Ranking[0]
}

// SpellSlotsLabel renders the slot count, "0" for non-casters.
func (c *Character) SpellSlotsLabel() string { return strconv.Itoa(c.SpellSlots) }

// FeatureLevels returns the feature levels in ascending order.
func (c *Character) FeatureLevels() []int { return slices.Sorted(maps.Keys(c.Features)) }

// BonusMagicLevels returns the bonus magic levels in ascending order.
func (c *Character) BonusMagicLevels() []int { return slices.Sorted(maps.Keys(c.BonusMagic)) }

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	out := *c
	out.Ranking = slices.Clone(c.Ranking)
	out.Bonus = maps.Clone(c.Bonus)
	for _, name := range []string{
		ListArmors, ListTools, ListWeapons, ListLanguages, ListSkills, ListSavingThrows,
		ListResistances, ListTraits, ListFeats, ListEquipment, ListSpells,
	} {
		*out.ListField(name) = slices.Clone(*c.ListField(name))
	}
	out.Features = cloneLevels(c.Features)
	out.BonusMagic = cloneLevels(c.BonusMagic)
	return &out
}

func cloneLevels(m map[int][]string) map[int][]string {
	if m == nil {
		return nil
	}
	out := make(map[int][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

// Validate checks the structural invariants of a finished record: ability
// names, level range, proficiency bonus, feature levels, subclass gating,
// and list uniqueness.
func (c *Character) Validate() error {
	var errs []string
	for _, a := range c.Ranking {
		if !IsAbility(string(a)) {
			errs = append(errs, fmt.Sprintf("ranking holds unknown ability %q", a))
		}
	}
	for a := range c.Bonus {
		if !IsAbility(string(a)) {
			errs = append(errs, fmt.Sprintf("bonus holds unknown ability %q", a))
		}
	}
	for _, a := range c.SavingThrows {
		if !IsAbility(a) {
			errs = append(errs, fmt.Sprintf("saving throws hold unknown ability %q", a))
		}
	}
	if c.Level < MinLevel || c.Level > MaxLevel {
		errs = append(errs, fmt.Sprintf("level must be in [%d,%d], got %d", MinLevel, MaxLevel, c.Level))
	}
	if want := ProficiencyBonus(c.Level); c.Proficiency != want {
		errs = append(errs, fmt.Sprintf("proficiency must be %d at level %d, got %d", want, c.Level, c.Proficiency))
	}
	for l := range c.Features {
		if l < MinLevel || l > c.Level {
			errs = append(errs, fmt.Sprintf("features listed for level %d above character level %d", l, c.Level))
		}
	}
	if c.Level < 3 && c.Subclass != "" {
		errs = append(errs, fmt.Sprintf("subclass %q set below level 3", c.Subclass))
	}
	for _, name := range UniqueLists {
		l := *c.ListField(name)
		if len(slices.Compact(slices.Sorted(slices.Values(l)))) != len(l) {
			errs = append(errs, fmt.Sprintf("%s holds duplicates", name))
		}
	}
	if len(errs) > 0 {
		return errors.New("character: invalid record: " + strings.Join(errs, "; "))
	}
	return nil
}
