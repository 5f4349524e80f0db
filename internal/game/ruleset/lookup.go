package ruleset

import (
	"fmt"
	"slices"

	"golang.org/x/text/cases"

	"github.com/cory-johannsen/charsheet/internal/game/character"
)

// IDs returns the entry ids of category in catalog-declared order. An
// unknown category yields nil.
func (c *Catalog) IDs(category string) []string {
	return slices.Clone(c.ids[category])
}

// Entry returns a copy of the generic form of one entry.
//
// Postcondition: ok is false for an unknown category or id; mutating the
// result never reaches the catalog.
func (c *Catalog) Entry(category, id string) (map[string]any, bool) {
	v, ok := c.raw[category][id]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return deepCopy(m).(map[string]any), true
}

// Fields walks path through the generic form of an entry. Path elements
// match mapping keys by their printed form, so "features", "3" reaches the
// level-3 features.
//
// Postcondition: ok is false when any step is missing; the value is a copy.
func (c *Catalog) Fields(category, id string, path ...string) (any, bool) {
	cur, ok := c.raw[category][id]
	if !ok {
		return nil, false
	}
	for _, step := range path {
		switch m := cur.(type) {
		case map[string]any:
			if cur, ok = m[step]; !ok {
				return nil, false
			}
		case map[any]any:
			found := false
			for k, v := range m {
				if fmt.Sprint(k) == step {
					cur, found = v, true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return deepCopy(cur), true
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}

// Resolve maps a user-typed name to the declared id, ignoring case.
func (c *Catalog) Resolve(category, name string) (string, bool) {
	fold := cases.Fold()
	want := fold.String(name)
	for _, id := range c.ids[category] {
		if fold.String(id) == want {
			return id, true
		}
	}
	return "", false
}

// Race returns the named race.
func (c *Catalog) Race(id string) (Race, bool) {
	r, ok := c.races[id]
	return r, ok
}

// Subrace returns the named subrace.
func (c *Catalog) Subrace(id string) (Subrace, bool) {
	s, ok := c.subraces[id]
	return s, ok
}

// Class returns the named class.
func (c *Catalog) Class(id string) (Class, bool) {
	cl, ok := c.classes[id]
	return cl, ok
}

// Subclass returns the named subclass.
func (c *Catalog) Subclass(id string) (Subclass, bool) {
	s, ok := c.subclasses[id]
	return s, ok
}

// Background returns the named background.
func (c *Catalog) Background(id string) (Background, bool) {
	b, ok := c.backgrounds[id]
	return b, ok
}

// Feat returns the named feat.
func (c *Catalog) Feat(id string) (Feat, bool) {
	f, ok := c.feats[id]
	return f, ok
}

// Skill returns the named skill.
func (c *Catalog) Skill(id string) (Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

// Metric returns the height and weight tables for a race or subrace.
func (c *Catalog) Metric(id string) (Metric, bool) {
	m, ok := c.metrics[id]
	return m, ok
}

// Language returns the named language.
func (c *Catalog) Language(id string) (Language, bool) {
	l, ok := c.languages[id]
	return l, ok
}

// Groups returns the groups of an equipment category (armors, weapons, or
// tools) in declared order.
func (c *Catalog) Groups(category string) []Group {
	g, ok := c.groups[category]
	if !ok {
		return nil
	}
	out := make([]Group, 0, len(g))
	for _, name := range c.ids[category] {
		out = append(out, Group{Name: name, Items: slices.Clone(g[name])})
	}
	return out
}

// Pool returns every value a character could hold for a proficiency kind:
//
//   - skills, alignments: the declared ids
//   - languages: every language not of the Secret type
//   - armors: the armor group names
//   - weapons, tools: every item of every group
//   - savingthrows: the six abilities
//
// Any other kind yields nil.
func (c *Catalog) Pool(kind string) []string {
	switch kind {
	case Skills, Alignments, Armors:
		return c.IDs(kind)
	case Languages:
		var out []string
		for _, id := range c.ids[Languages] {
			if c.languages[id].Type != "Secret" {
				out = append(out, id)
			}
		}
		return out
	case Weapons, Tools:
		var out []string
		for _, g := range c.Groups(kind) {
			out = append(out, g.Items...)
		}
		return out
	case "savingthrows":
		out := make([]string, len(character.Abilities))
		for i, a := range character.Abilities {
			out[i] = string(a)
		}
		return out
	}
	return nil
}

// GroupOf returns the group an equipment item belongs to.
func (c *Catalog) GroupOf(category, item string) (string, bool) {
	for _, name := range c.ids[category] {
		if slices.Contains(c.groups[category][name], item) {
			return name, true
		}
	}
	return "", false
}
