package ruleset

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/charsheet/internal/game/character"
)

// Choice is a catalog value written either as a single scalar or as a list
// of alternatives. A single value is granted outright; a list asks the user
// to pick one.
type Choice []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (c *Choice) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*c = Choice{n.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*c = list
		return nil
	}
	return fmt.Errorf("line %d: expected a name or a list of names", n.Line)
}

// Fixed reports whether the choice has exactly one value.
func (c Choice) Fixed() bool { return len(c) == 1 }

// Spells is an innate spell list written either as a list of choices or as a
// mapping from character level to the spells gained at that level.
type Spells struct {
	List   []Choice
	Levels map[int][]string
}

// UnmarshalYAML accepts a scalar, a sequence, or a level mapping.
func (s *Spells) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		return n.Decode(&s.Levels)
	case yaml.SequenceNode:
		return n.Decode(&s.List)
	case yaml.ScalarNode:
		s.List = []Choice{{n.Value}}
		return nil
	}
	return fmt.Errorf("line %d: expected a spell list or a level mapping", n.Line)
}

// IsZero reports whether no spells are declared.
func (s Spells) IsZero() bool { return len(s.List) == 0 && len(s.Levels) == 0 }

// Upto returns the level-mapped spells gained at or below level, ordered by
// level.
func (s Spells) Upto(level int) []string {
	var out []string
	for _, l := range sortedKeys(s.Levels) {
		if l <= level {
			out = append(out, s.Levels[l]...)
		}
	}
	return out
}

// Race is a base race entry.
type Race struct {
	Size        string                    `yaml:"size"`
	Speed       int                       `yaml:"speed"`
	Bonus       map[character.Ability]int `yaml:"bonus"`
	Languages   []string                  `yaml:"languages"`
	Skills      []string                  `yaml:"skills"`
	Armors      []string                  `yaml:"armors"`
	Weapons     []string                  `yaml:"weapons"`
	Tools       []string                  `yaml:"tools"`
	Resistances []string                  `yaml:"resistances"`
	Traits      []string                  `yaml:"traits"`
	Spells      Spells                    `yaml:"spells"`
	Ancestry    map[string]string         `yaml:"ancestry"` // ancestor → damage resistance
	Subraces    []string                  `yaml:"subraces"`
	Options     map[string][]string       `yaml:"options"`
	Guides      string                    `yaml:"guides"`
}

// Ancestors returns the ancestry keys in sorted order.
func (r Race) Ancestors() []string {
	out := make([]string, 0, len(r.Ancestry))
	for k := range r.Ancestry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Subrace refines a base race.
type Subrace struct {
	Race        string                    `yaml:"race"`
	Speed       int                       `yaml:"speed"`
	Bonus       map[character.Ability]int `yaml:"bonus"`
	Languages   []string                  `yaml:"languages"`
	Skills      []string                  `yaml:"skills"`
	Armors      []string                  `yaml:"armors"`
	Weapons     []string                  `yaml:"weapons"`
	Tools       []string                  `yaml:"tools"`
	Resistances []string                  `yaml:"resistances"`
	Traits      []string                  `yaml:"traits"`
	Spells      Spells                    `yaml:"spells"`
	Options     map[string][]string       `yaml:"options"`
	Guides      string                    `yaml:"guides"`
}

// Class is a base class entry.
type Class struct {
	HitDie       int                 `yaml:"hit_die"`
	Abilities    map[int]Choice      `yaml:"abilities"` // rank → ability or alternatives
	SavingThrows []string            `yaml:"savingthrows"`
	Armors       []string            `yaml:"armors"`
	Weapons      []string            `yaml:"weapons"`
	Tools        []string            `yaml:"tools"`
	Languages    []string            `yaml:"languages"`
	Skills       []string            `yaml:"skills"`
	Options      map[string][]string `yaml:"options"`
	Features     map[int][]string    `yaml:"features"`
	SpellSlots   []int               `yaml:"spellslots"` // indexed by level-1
	Equipment    []Choice            `yaml:"equipment"`
	Background   string              `yaml:"background"` // default background
	Subclasses   []string            `yaml:"subclasses"`
	Guides       string              `yaml:"guides"`
}

// Ranks returns the ability ranks in ascending order.
func (c Class) Ranks() []int { return sortedKeys(c.Abilities) }

// Subclass specializes a class from level 3.
type Subclass struct {
	Class      string              `yaml:"class"`
	Armors     []string            `yaml:"armors"`
	Weapons    []string            `yaml:"weapons"`
	Tools      []string            `yaml:"tools"`
	Languages  []string            `yaml:"languages"`
	Skills     []string            `yaml:"skills"`
	Options    map[string][]string `yaml:"options"`
	Features   map[int][]string    `yaml:"features"`
	BonusMagic map[int][]string    `yaml:"bonusmagic"`
	SpellSlots []int               `yaml:"spellslots"`
	Spells     Spells              `yaml:"spells"`
	Guides     string              `yaml:"guides"`
}

// SlotsAt returns the spell slot count at level from a level-indexed table.
// A missing table or level yields 0.
func SlotsAt(table []int, level int) int {
	if level < 1 || level > len(table) {
		return 0
	}
	return table[level-1]
}

// Background is a character background entry.
type Background struct {
	Skills    []string            `yaml:"skills"`
	Tools     []string            `yaml:"tools"`
	Languages []string            `yaml:"languages"`
	Options   map[string][]string `yaml:"options"`
	Equipment []Choice            `yaml:"equipment"`
	Feature   string              `yaml:"feature"`
	Guides    string              `yaml:"guides"`
}

// CasterRequirement gates a feat on spellcasting. With Classes set the
// character's class must be listed; with Primary set the highest ranked
// ability must score at least Primary; otherwise the character needs spell
// slots.
type CasterRequirement struct {
	Classes []string `yaml:"classes"`
	Primary int      `yaml:"primary"`
}

// Prerequisites lists the conditions a feat imposes.
type Prerequisites struct {
	Ability         map[string]int     `yaml:"ability"`
	Caster          *CasterRequirement `yaml:"caster"`
	Proficiency     []string           `yaml:"proficiency"`
	Race            []string           `yaml:"race"`
	Subrace         []string           `yaml:"subrace"`
	Excludes        []string           `yaml:"excludes"` // armor or weapon proficiencies that make the feat redundant
	ExcludedClasses []string           `yaml:"excluded_classes"`
}

// Perks lists what a feat grants.
type Perks struct {
	Ability   map[character.Ability]int `yaml:"ability"`
	Armors    []string                  `yaml:"armors"`
	Weapons   []string                  `yaml:"weapons"`
	Tools     []string                  `yaml:"tools"`
	Skills    []string                  `yaml:"skills"`
	Languages []string                  `yaml:"languages"`
	Speed     int                       `yaml:"speed"`
	Spells    []Choice                  `yaml:"spells"`
	Options   string                    `yaml:"options"`
}

// List returns the perk list named by a proficiency type.
func (p Perks) List(kind string) []string {
	switch kind {
	case "armors":
		return p.Armors
	case "weapons":
		return p.Weapons
	case "tools":
		return p.Tools
	case "skills":
		return p.Skills
	case "languages":
		return p.Languages
	}
	return nil
}

// Feat is a feat entry.
type Feat struct {
	Description   string        `yaml:"description"`
	Prerequisites Prerequisites `yaml:"prerequisites"`
	Perks         Perks         `yaml:"perks"`
}

// Skill binds a skill to its governing ability.
type Skill struct {
	Ability character.Ability `yaml:"ability"`
}

// MetricEntry holds the height and weight tables for one race and sex.
// Heights are in inches. An empty WeightMod multiplies by one.
type MetricEntry struct {
	BaseHeight int    `yaml:"base_height"`
	HeightMod  string `yaml:"height_mod"`
	BaseWeight int    `yaml:"base_weight"`
	WeightMod  string `yaml:"weight_mod"`
}

// Metric maps a sex to its MetricEntry.
type Metric map[string]MetricEntry

// Language is a spoken language entry.
type Language struct {
	Type   string `yaml:"type"` // Standard, Exotic, or Secret
	Script string `yaml:"script"`
}

// Alignment is one of the nine canonical alignments.
type Alignment struct {
	Abbreviation string `yaml:"abbreviation"`
}

// Group is a named set of equipment proficiencies such as "Martial".
type Group struct {
	Name  string
	Items []string
}

func sortedKeys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
