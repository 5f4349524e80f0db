package blueprint

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/guide"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// Request holds the top-level choices of one generation. Empty optional
// fields are prompted for or defaulted.
type Request struct {
	Race       string
	Subrace    string
	Sex        string
	Alignment  string
	Background string
	Class      string
	Subclass   string
	Level      int
}

// Assembler builds a character record from the catalog.
type Assembler struct {
	catalog  *ruleset.Catalog
	prompter prompt.Prompter
	notifier prompt.Notifier
	resolver *Resolver
	logger   *zap.Logger
}

// NewAssembler creates an Assembler.
//
// Precondition: all arguments must be non-nil.
func NewAssembler(catalog *ruleset.Catalog, prompter prompt.Prompter, notifier prompt.Notifier, logger *zap.Logger) *Assembler {
	if notifier == nil {
		panic("blueprint: NewAssembler requires a notifier")
	}
	return &Assembler{
		catalog:  catalog,
		prompter: prompter,
		notifier: notifier,
		resolver: NewResolver(catalog, prompter, logger),
		logger:   logger,
	}
}

// Assemble builds the race side (race, subrace, background) and the class
// side (class, subclass) and merges them. Proficiency is recomputed from the
// level afterwards.
//
// Postcondition: on success the record satisfies character.Validate apart
// from scores, hit point adjustments, and physical metrics, which later
// stages fill in.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*character.Character, error) {
	if req.Level < character.MinLevel || req.Level > character.MaxLevel {
		return nil, fmt.Errorf("blueprint: level must be in [%d,%d], got %d", character.MinLevel, character.MaxLevel, req.Level)
	}
	var err error
	if req.Race, err = a.canonical(ruleset.Races, req.Race); err != nil {
		return nil, err
	}
	if req.Class, err = a.canonical(ruleset.Classes, req.Class); err != nil {
		return nil, err
	}
	if req.Subrace != "" {
		if req.Subrace, err = a.canonical(ruleset.Subraces, req.Subrace); err != nil {
			return nil, err
		}
	}
	if req.Subclass != "" {
		if req.Subclass, err = a.canonical(ruleset.Subclasses, req.Subclass); err != nil {
			return nil, err
		}
		if req.Level < 3 {
			a.notifier.Warn(fmt.Sprintf("Subclass %s is chosen at level 3; ignored at level %d.", req.Subclass, req.Level))
			req.Subclass = ""
		}
	}

	raceRec, err := a.Race(ctx, req)
	if err != nil {
		return nil, err
	}
	raceSide := raceRec
	if raceRec.Subrace != "" {
		subRec, err := a.Subrace(ctx, raceRec.Subrace, req.Level, raceRec)
		if err != nil {
			return nil, err
		}
		raceSide = character.Merge(raceRec, subRec)
	}

	bg, err := a.background(ctx, req)
	if err != nil {
		return nil, err
	}
	bgRec, err := a.Background(ctx, bg, raceSide)
	if err != nil {
		return nil, err
	}
	raceSide = character.Merge(raceSide, bgRec)

	classRec, err := a.Class(ctx, req, raceSide)
	if err != nil {
		return nil, err
	}
	classSide := classRec
	if classRec.Subclass != "" {
		subRec, err := a.Subclass(ctx, classRec.Subclass, req, character.Merge(raceSide, classRec))
		if err != nil {
			return nil, err
		}
		classSide = character.Merge(classRec, subRec)
	}

	final := character.Merge(raceSide, classSide)
	final.Proficiency = character.ProficiencyBonus(final.Level)
	a.logger.Info("blueprint assembled",
		zap.String("race", final.Race),
		zap.String("subrace", final.Subrace),
		zap.String("class", final.Class),
		zap.String("subclass", final.Subclass),
		zap.String("background", final.Background),
		zap.Int("level", final.Level),
	)
	return final, nil
}

// Race builds the base race partial: alignment, ancestry, innate spells,
// subrace selection, and the race guideline.
func (a *Assembler) Race(ctx context.Context, req Request) (*character.Character, error) {
	race, ok := a.catalog.Race(req.Race)
	if !ok {
		return nil, fmt.Errorf("%w: race %q", ruleset.ErrUnknownEntry, req.Race)
	}
	rec := &character.Character{
		Race:        req.Race,
		Sex:         req.Sex,
		Level:       req.Level,
		Size:        race.Size,
		Speed:       race.Speed,
		Bonus:       maps.Clone(race.Bonus),
		Languages:   slices.Clone(race.Languages),
		Skills:      slices.Clone(race.Skills),
		Armors:      slices.Clone(race.Armors),
		Weapons:     slices.Clone(race.Weapons),
		Tools:       slices.Clone(race.Tools),
		Resistances: slices.Clone(race.Resistances),
		Traits:      slices.Clone(race.Traits),
	}

	alignment, err := a.pick(ctx, ruleset.Alignments, req.Alignment, a.catalog.IDs(ruleset.Alignments), "Choose an alignment")
	if err != nil {
		return nil, err
	}
	rec.Alignment = alignment

	if len(race.Ancestry) > 0 {
		ancestor, err := a.prompter.Choose(ctx, fmt.Sprintf("%s: choose your draconic ancestry", req.Race), race.Ancestors(), nil)
		if err != nil {
			return nil, err
		}
		rec.Ancestry = ancestor
		rec.Add(character.ListResistances, race.Ancestry[ancestor])
	}

	if err := a.innateSpells(ctx, req.Race, race.Spells, rec, nil); err != nil {
		return nil, err
	}

	switch {
	case len(race.Subraces) == 0 && req.Subrace != "":
		return nil, fmt.Errorf("%w: race %s has no subrace %q", ruleset.ErrUnknownEntry, req.Race, req.Subrace)
	case len(race.Subraces) > 0 && req.Subrace == "":
		sub, err := a.prompter.Choose(ctx, fmt.Sprintf("%s: choose a subrace", req.Race), race.Subraces, nil)
		if err != nil {
			return nil, err
		}
		rec.Subrace = sub
	case req.Subrace != "":
		if !slices.Contains(race.Subraces, req.Subrace) {
			return nil, fmt.Errorf("%w: race %s has no subrace %q", ruleset.ErrUnknownEntry, req.Race, req.Subrace)
		}
		rec.Subrace = req.Subrace
	}

	if err := a.guides(ctx, race.Guides, NewEntry(ruleset.Races, req.Race, race.Options), rec, nil); err != nil {
		return nil, err
	}
	a.logger.Debug("race partial built", zap.String("race", req.Race), zap.String("subrace", rec.Subrace))
	return rec, nil
}

// Subrace builds the subrace partial. Values already held by omitted are
// excluded from its choices.
func (a *Assembler) Subrace(ctx context.Context, id string, level int, omitted *character.Character) (*character.Character, error) {
	sub, ok := a.catalog.Subrace(id)
	if !ok {
		return nil, fmt.Errorf("%w: subrace %q", ruleset.ErrUnknownEntry, id)
	}
	rec := &character.Character{
		Subrace:     id,
		Level:       level,
		Speed:       sub.Speed,
		Bonus:       maps.Clone(sub.Bonus),
		Languages:   slices.Clone(sub.Languages),
		Skills:      slices.Clone(sub.Skills),
		Armors:      slices.Clone(sub.Armors),
		Weapons:     slices.Clone(sub.Weapons),
		Tools:       slices.Clone(sub.Tools),
		Resistances: slices.Clone(sub.Resistances),
		Traits:      slices.Clone(sub.Traits),
	}
	if err := a.innateSpells(ctx, id, sub.Spells, rec, omitted); err != nil {
		return nil, err
	}
	if err := a.guides(ctx, sub.Guides, NewEntry(ruleset.Subraces, id, sub.Options), rec, omitted); err != nil {
		return nil, err
	}
	a.logger.Debug("subrace partial built", zap.String("subrace", id))
	return rec, nil
}

// Background builds the background partial.
func (a *Assembler) Background(ctx context.Context, id string, omitted *character.Character) (*character.Character, error) {
	bg, ok := a.catalog.Background(id)
	if !ok {
		return nil, fmt.Errorf("%w: background %q", ruleset.ErrUnknownEntry, id)
	}
	rec := &character.Character{
		Background:        id,
		BackgroundFeature: bg.Feature,
		Skills:            slices.Clone(bg.Skills),
		Tools:             slices.Clone(bg.Tools),
		Languages:         slices.Clone(bg.Languages),
	}
	if err := a.equipment(ctx, id, bg.Equipment, rec); err != nil {
		return nil, err
	}
	if err := a.guides(ctx, bg.Guides, NewEntry(ruleset.Backgrounds, id, bg.Options), rec, omitted); err != nil {
		return nil, err
	}
	a.logger.Debug("background partial built", zap.String("background", id))
	return rec, nil
}

// Class builds the class partial: ability ranking, hit dice, average hit
// points, proficiency bonus, spell slots, features up to the level,
// equipment, and the class guideline including the subclass choice.
func (a *Assembler) Class(ctx context.Context, req Request, omitted *character.Character) (*character.Character, error) {
	cl, ok := a.catalog.Class(req.Class)
	if !ok {
		return nil, fmt.Errorf("%w: class %q", ruleset.ErrUnknownEntry, req.Class)
	}
	level := req.Level
	rec := &character.Character{
		Class:        req.Class,
		Subclass:     req.Subclass,
		Level:        level,
		HitDie:       fmt.Sprintf("%dd%d", level, cl.HitDie),
		HitDieSides:  cl.HitDie,
		HP:           character.AverageHitPoints(level, cl.HitDie),
		Proficiency:  character.ProficiencyBonus(level),
		SpellSlots:   ruleset.SlotsAt(cl.SpellSlots, level),
		SavingThrows: slices.Clone(cl.SavingThrows),
		Armors:       slices.Clone(cl.Armors),
		Weapons:      slices.Clone(cl.Weapons),
		Tools:        slices.Clone(cl.Tools),
		Languages:    slices.Clone(cl.Languages),
		Skills:       slices.Clone(cl.Skills),
		Feats:        []string{},
		Features:     upto(cl.Features, level),
	}
	if err := a.equipment(ctx, req.Class, cl.Equipment, rec); err != nil {
		return nil, err
	}
	entry := NewEntry(ruleset.Classes, req.Class, cl.Options)
	entry.Options["subclass"] = slices.Clone(cl.Subclasses)
	entry.Abilities = cl.Abilities
	if err := a.guides(ctx, cl.Guides, entry, rec, omitted); err != nil {
		return nil, err
	}
	if len(rec.Ranking) == 0 {
		if err := a.resolver.Rank(ctx, entry, rec); err != nil {
			return nil, err
		}
	}
	if level < 3 {
		rec.Subclass = ""
	}
	a.logger.Debug("class partial built",
		zap.String("class", req.Class),
		zap.String("hit_die", rec.HitDie),
		zap.Int("hp", rec.HP),
		zap.Int("spellslots", rec.SpellSlots),
	)
	return rec, nil
}

// Subclass builds the subclass partial with features and bonus magic
// truncated to the level.
func (a *Assembler) Subclass(ctx context.Context, id string, req Request, omitted *character.Character) (*character.Character, error) {
	sub, ok := a.catalog.Subclass(id)
	if !ok {
		return nil, fmt.Errorf("%w: subclass %q", ruleset.ErrUnknownEntry, id)
	}
	if sub.Class != req.Class {
		return nil, fmt.Errorf("%w: subclass %q belongs to %s, not %s", ruleset.ErrUnknownEntry, id, sub.Class, req.Class)
	}
	rec := &character.Character{
		Subclass:   id,
		Level:      req.Level,
		SpellSlots: ruleset.SlotsAt(sub.SpellSlots, req.Level),
		Armors:     slices.Clone(sub.Armors),
		Weapons:    slices.Clone(sub.Weapons),
		Tools:      slices.Clone(sub.Tools),
		Languages:  slices.Clone(sub.Languages),
		Skills:     slices.Clone(sub.Skills),
		Features:   upto(sub.Features, req.Level),
		BonusMagic: upto(sub.BonusMagic, req.Level),
	}
	if err := a.innateSpells(ctx, id, sub.Spells, rec, omitted); err != nil {
		return nil, err
	}
	if err := a.guides(ctx, sub.Guides, NewEntry(ruleset.Subclasses, id, sub.Options), rec, omitted); err != nil {
		return nil, err
	}
	a.logger.Debug("subclass partial built", zap.String("subclass", id))
	return rec, nil
}

// background picks the requested background, then the class default, then
// asks.
func (a *Assembler) background(ctx context.Context, req Request) (string, error) {
	if req.Background == "" {
		if cl, ok := a.catalog.Class(req.Class); ok {
			req.Background = cl.Background
		}
	}
	return a.pick(ctx, ruleset.Backgrounds, req.Background, a.catalog.IDs(ruleset.Backgrounds), "Choose a background")
}

// pick canonicalizes value within category, or asks when value is empty.
func (a *Assembler) pick(ctx context.Context, category, value string, options []string, message string) (string, error) {
	if value != "" {
		return a.canonical(category, value)
	}
	return a.prompter.Choose(ctx, message, options, nil)
}

func (a *Assembler) canonical(category, name string) (string, error) {
	id, ok := a.catalog.Resolve(category, name)
	if !ok {
		return "", fmt.Errorf("%w: %s %q", ruleset.ErrUnknownEntry, category, name)
	}
	return id, nil
}

func (a *Assembler) guides(ctx context.Context, s string, e *Entry, rec, omitted *character.Character) error {
	flags, err := guide.Parse(s)
	if err != nil {
		return fmt.Errorf("%s %q: %w", e.Category, e.ID, err)
	}
	return a.resolver.Apply(ctx, flags, e, rec, omitted)
}

// innateSpells grants fixed spells, asks for one spell from every list
// choice, and grants level-mapped spells up to the record's level.
func (a *Assembler) innateSpells(ctx context.Context, source string, spells ruleset.Spells, rec, omitted *character.Character) error {
	held := func() []string {
		out := slices.Clone(rec.Spells)
		if omitted != nil {
			out = append(out, omitted.Spells...)
		}
		return out
	}
	for _, choice := range spells.List {
		if choice.Fixed() {
			rec.Add(character.ListSpells, choice[0])
			continue
		}
		pick, err := a.prompter.Choose(ctx, fmt.Sprintf("%s: choose a spell", source), choice, held())
		if err != nil {
			return err
		}
		rec.Add(character.ListSpells, pick)
	}
	rec.Add(character.ListSpells, spells.Upto(rec.Level)...)
	return nil
}

// equipment grants fixed items and asks for one option of every list;
// "+" groups grant all of their members.
func (a *Assembler) equipment(ctx context.Context, source string, choices []ruleset.Choice, rec *character.Character) error {
	for _, choice := range choices {
		pick := choice[0]
		if !choice.Fixed() {
			var err error
			pick, err = a.prompter.Choose(ctx, fmt.Sprintf("%s: choose equipment", source), choice, nil)
			if err != nil {
				return err
			}
		}
		rec.Equipment = append(rec.Equipment, guide.Expand(pick)...)
	}
	return nil
}

func upto(m map[int][]string, level int) map[int][]string {
	var out map[int][]string
	for l, v := range m {
		if l > level {
			continue
		}
		if out == nil {
			out = make(map[int][]string)
		}
		out[l] = slices.Clone(v)
	}
	return out
}
