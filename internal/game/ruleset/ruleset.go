// Package ruleset loads the rule catalog: races, subraces, classes,
// subclasses, backgrounds, feats, skills, metrics, and the proficiency pools
// they draw from. The catalog is read once and never mutated afterwards.
package ruleset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category names; each is also the base name of its catalog file.
const (
	Races       = "races"
	Subraces    = "subraces"
	Classes     = "classes"
	Subclasses  = "subclasses"
	Backgrounds = "backgrounds"
	Feats       = "feats"
	Skills      = "skills"
	Metrics     = "metrics"
	Languages   = "languages"
	Armors      = "armors"
	Weapons     = "weapons"
	Tools       = "tools"
	Alignments  = "alignments"
)

// Categories lists every category the catalog requires.
var Categories = []string{
	Races, Subraces, Classes, Subclasses, Backgrounds, Feats, Skills,
	Metrics, Languages, Armors, Weapons, Tools, Alignments,
}

var (
	// ErrInvalidCatalog reports an unreadable, malformed, or inconsistent
	// catalog. It is fatal at startup.
	ErrInvalidCatalog = errors.New("ruleset: invalid catalog")
	// ErrUnknownEntry reports a lookup of an id the catalog does not hold.
	ErrUnknownEntry = errors.New("ruleset: unknown entry")
)

// Catalog is the immutable rule catalog.
type Catalog struct {
	ids map[string][]string
	raw map[string]map[string]any

	races       map[string]Race
	subraces    map[string]Subrace
	classes     map[string]Class
	subclasses  map[string]Subclass
	backgrounds map[string]Background
	feats       map[string]Feat
	skills      map[string]Skill
	metrics     map[string]Metric
	languages   map[string]Language
	alignments  map[string]Alignment
	groups      map[string]map[string][]string // armors, weapons, tools
}

// LoadDir loads the catalog from the YAML files in dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns a validated Catalog or an error wrapping
// ErrInvalidCatalog.
func LoadDir(dir string) (*Catalog, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return Load(os.DirFS(dir))
}

// Load loads the catalog from the YAML files at the root of fsys. Each
// file's single top-level key must equal its base name.
//
// Postcondition: Returns a validated Catalog or an error wrapping
// ErrInvalidCatalog.
func Load(fsys fs.FS) (*Catalog, error) {
	files, err := yamlFiles(fsys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	c := &Catalog{
		ids:    make(map[string][]string),
		raw:    make(map[string]map[string]any),
		groups: make(map[string]map[string][]string),
	}
	for _, name := range files {
		if err := c.loadFile(fsys, name); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, name, err)
		}
	}
	for _, cat := range Categories {
		if _, ok := c.ids[cat]; !ok {
			return nil, fmt.Errorf("%w: missing %s.yaml", ErrInvalidCatalog, cat)
		}
	}
	c.expandOptionGroups()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return c, nil
}

func (c *Catalog) loadFile(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	category := strings.TrimSuffix(strings.TrimSuffix(path.Base(name), ".yaml"), ".yml")
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return errors.New("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode || len(root.Content) != 2 {
		return errors.New("expected a single top-level key")
	}
	if key := root.Content[0].Value; key != category {
		return fmt.Errorf("top-level key %q does not match file name %q", key, category)
	}
	if _, dup := c.ids[category]; dup {
		return fmt.Errorf("category %q defined twice", category)
	}
	body := root.Content[1]
	if body.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: expected a mapping of entries", category)
	}

	ids := make([]string, 0, len(body.Content)/2)
	raw := make(map[string]any, len(body.Content)/2)
	for i := 0; i < len(body.Content); i += 2 {
		id := body.Content[i].Value
		if _, dup := raw[id]; dup {
			return fmt.Errorf("duplicate entry %q", id)
		}
		var v any
		if err := body.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("entry %q: %w", id, err)
		}
		ids = append(ids, id)
		raw[id] = v
	}
	c.ids[category] = ids
	c.raw[category] = raw
	return c.decodeTyped(category, body)
}

func (c *Catalog) decodeTyped(category string, body *yaml.Node) error {
	switch category {
	case Races:
		return body.Decode(&c.races)
	case Subraces:
		return body.Decode(&c.subraces)
	case Classes:
		return body.Decode(&c.classes)
	case Subclasses:
		return body.Decode(&c.subclasses)
	case Backgrounds:
		return body.Decode(&c.backgrounds)
	case Feats:
		return body.Decode(&c.feats)
	case Skills:
		return body.Decode(&c.skills)
	case Metrics:
		return body.Decode(&c.metrics)
	case Languages:
		return body.Decode(&c.languages)
	case Alignments:
		return body.Decode(&c.alignments)
	case Armors, Weapons, Tools:
		var g map[string][]string
		if err := body.Decode(&g); err != nil {
			return err
		}
		c.groups[category] = g
		return nil
	}
	return fmt.Errorf("unrecognized category %q", category)
}

// expandOptionGroups replaces group names inside tools and weapons option
// lists with the group members, so "Musical instrument" offers every
// instrument.
func (c *Catalog) expandOptionGroups() {
	expand := func(opts map[string][]string) {
		for _, kind := range []string{Tools, Weapons} {
			list, ok := opts[kind]
			if !ok {
				continue
			}
			var out []string
			for _, v := range list {
				if items, ok := c.groups[kind][v]; ok {
					out = append(out, items...)
					continue
				}
				out = append(out, v)
			}
			opts[kind] = out
		}
	}
	for _, r := range c.races {
		expand(r.Options)
	}
	for _, s := range c.subraces {
		expand(s.Options)
	}
	for _, cl := range c.classes {
		expand(cl.Options)
	}
	for _, s := range c.subclasses {
		expand(s.Options)
	}
	for _, b := range c.backgrounds {
		expand(b.Options)
	}
}

func yamlFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") || strings.HasSuffix(n, ".yml") {
			names = append(names, n)
		}
	}
	return names, nil
}
