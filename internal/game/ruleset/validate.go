package ruleset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/guide"
)

// validate checks ability names, guidelines, and cross references. Feat
// prerequisite abilities are not checked; unknown names are skipped when the
// prerequisite is evaluated.
func (c *Catalog) validate() error {
	v := &violations{}

	for _, id := range c.ids[Races] {
		r := c.races[id]
		v.bonus("races", id, r.Bonus)
		v.guides("races", id, r.Guides)
		c.knownList(v, "races", id, Skills, r.Skills)
		c.knownList(v, "races", id, Languages, r.Languages)
		for _, s := range r.Subraces {
			sr, ok := c.subraces[s]
			switch {
			case !ok:
				v.add("races.%s: unknown subrace %q", id, s)
			case sr.Race != id:
				v.add("races.%s: subrace %q belongs to %q", id, s, sr.Race)
			}
		}
	}
	for _, id := range c.ids[Subraces] {
		s := c.subraces[id]
		if _, ok := c.races[s.Race]; !ok {
			v.add("subraces.%s: unknown race %q", id, s.Race)
		}
		v.bonus("subraces", id, s.Bonus)
		v.guides("subraces", id, s.Guides)
		c.knownList(v, "subraces", id, Skills, s.Skills)
		c.knownList(v, "subraces", id, Languages, s.Languages)
	}
	for _, id := range c.ids[Classes] {
		cl := c.classes[id]
		if cl.HitDie < 2 {
			v.add("classes.%s: hit_die must be at least 2, got %d", id, cl.HitDie)
		}
		if len(cl.Abilities) == 0 {
			v.add("classes.%s: abilities must not be empty", id)
		}
		for _, rank := range cl.Ranks() {
			for _, a := range cl.Abilities[rank] {
				v.ability("classes", id, a)
			}
		}
		for _, a := range cl.SavingThrows {
			v.ability("classes", id, a)
		}
		v.slots("classes", id, cl.SpellSlots)
		v.guides("classes", id, cl.Guides)
		c.knownList(v, "classes", id, Skills, cl.Skills)
		c.knownList(v, "classes", id, Skills, cl.Options[Skills])
		c.knownList(v, "classes", id, Languages, cl.Languages)
		if _, ok := c.backgrounds[cl.Background]; cl.Background != "" && !ok {
			v.add("classes.%s: unknown background %q", id, cl.Background)
		}
		for _, s := range cl.Subclasses {
			sc, ok := c.subclasses[s]
			switch {
			case !ok:
				v.add("classes.%s: unknown subclass %q", id, s)
			case sc.Class != id:
				v.add("classes.%s: subclass %q belongs to %q", id, s, sc.Class)
			}
		}
	}
	for _, id := range c.ids[Subclasses] {
		s := c.subclasses[id]
		if _, ok := c.classes[s.Class]; !ok {
			v.add("subclasses.%s: unknown class %q", id, s.Class)
		}
		v.slots("subclasses", id, s.SpellSlots)
		v.guides("subclasses", id, s.Guides)
		c.knownList(v, "subclasses", id, Skills, s.Skills)
		c.knownList(v, "subclasses", id, Languages, s.Languages)
	}
	for _, id := range c.ids[Backgrounds] {
		b := c.backgrounds[id]
		v.guides("backgrounds", id, b.Guides)
		c.knownList(v, "backgrounds", id, Skills, b.Skills)
		c.knownList(v, "backgrounds", id, Languages, b.Languages)
	}
	for _, id := range c.ids[Feats] {
		f := c.feats[id]
		v.bonus("feats", id, f.Perks.Ability)
		v.guides("feats", id, f.Perks.Options)
	}
	for _, id := range c.ids[Skills] {
		v.ability("skills", id, string(c.skills[id].Ability))
	}
	for _, id := range c.ids[Metrics] {
		_, race := c.races[id]
		_, sub := c.subraces[id]
		if !race && !sub {
			v.add("metrics.%s: not a race or subrace", id)
		}
		for sex := range c.metrics[id] {
			if !slices.Contains(character.Sexes, sex) {
				v.add("metrics.%s: unknown sex %q", id, sex)
			}
		}
	}
	return v.err()
}

type violations struct {
	errs []string
}

func (v *violations) add(format string, args ...any) {
	v.errs = append(v.errs, fmt.Sprintf(format, args...))
}

func (v *violations) ability(category, id, name string) {
	if !character.IsAbility(name) {
		v.add("%s.%s: unknown ability %q", category, id, name)
	}
}

func (v *violations) bonus(category, id string, m map[character.Ability]int) {
	for a := range m {
		v.ability(category, id, string(a))
	}
}

func (v *violations) guides(category, id, s string) {
	if _, err := guide.Parse(s); err != nil {
		v.add("%s.%s: %v", category, id, err)
	}
}

func (v *violations) slots(category, id string, table []int) {
	if len(table) != 0 && len(table) != character.MaxLevel {
		v.add("%s.%s: spellslots must list %d levels, got %d", category, id, character.MaxLevel, len(table))
	}
}

func (c *Catalog) knownList(v *violations, category, id, pool string, values []string) {
	for _, s := range values {
		if _, ok := c.raw[pool][s]; !ok {
			v.add("%s.%s: unknown %s entry %q", category, id, pool, s)
		}
	}
}

func (v *violations) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return fmt.Errorf("catalog validation failed: %s", strings.Join(v.errs, "; "))
}
