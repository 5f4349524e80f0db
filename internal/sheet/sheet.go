// Package sheet renders a finished character as a read-only HTML document.
package sheet

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("sheet").Funcs(template.FuncMap{
	"signed": Signed,
}).ParseFS(templatesFS, "templates/*.html"))

// CarryFactor and LiftFactor scale the Strength score into pounds carried
// and pounds pushed, dragged, or lifted.
const (
	CarryFactor = 15
	LiftFactor  = 30
)

// View is the data handed to the sheet template.
type View struct {
	*character.Character
	Abilities   []AbilityView
	Skills      []SkillView
	Features    []LevelView
	BonusMagic  []LevelView
	Initiative  int
	Passive     int // passive Perception
	SpellSlots  string
	ClassSkills []string
}

// AbilityView is one of the six ability blocks.
type AbilityView struct {
	Name       character.Ability
	Short      string
	Score      int
	Modifier   int
	Save       int
	Proficient bool // proficient in the saving throw
	Skills     []SkillView
	Carry      int // Strength only
	Lift       int // Strength only
}

// SkillView is one skill check.
type SkillView struct {
	Name       string
	Ability    character.Ability
	Modifier   int
	Proficient bool
	ClassSkill bool
}

// LevelView lists names unlocked at a level.
type LevelView struct {
	Level int
	Names []string
}

// Build derives the template view of c.
//
// Precondition: c and catalog must be non-nil.
func Build(c *character.Character, catalog *ruleset.Catalog) View {
	if c == nil || catalog == nil {
		panic("sheet: Build requires a character and a catalog")
	}
	v := View{Character: c, SpellSlots: c.SpellSlotsLabel(), ClassSkills: classSkills(c, catalog)}

	byAbility := make(map[character.Ability][]SkillView)
	for _, id := range catalog.IDs(ruleset.Skills) {
		s, _ := catalog.Skill(id)
		sv := SkillView{
			Name:       id,
			Ability:    s.Ability,
			Modifier:   character.Modifier(c.Scores.Get(s.Ability)),
			Proficient: slices.Contains(c.Skills, id),
			ClassSkill: slices.Contains(v.ClassSkills, id),
		}
		if sv.Proficient {
			sv.Modifier += c.Proficiency
		}
		byAbility[s.Ability] = append(byAbility[s.Ability], sv)
		v.Skills = append(v.Skills, sv)
		if id == "Perception" {
			v.Passive = 10 + sv.Modifier
		}
	}

	for _, a := range character.Abilities {
		score := c.Scores.Get(a)
		av := AbilityView{
			Name:       a,
			Short:      a.Short(),
			Score:      score,
			Modifier:   character.Modifier(score),
			Proficient: slices.Contains(c.SavingThrows, string(a)),
			Skills:     byAbility[a],
		}
		av.Save = av.Modifier
		if av.Proficient {
			av.Save += c.Proficiency
		}
		if a == character.Strength {
			av.Carry = score * CarryFactor
			av.Lift = score * LiftFactor
		}
		v.Abilities = append(v.Abilities, av)
	}
	v.Initiative = character.Modifier(c.Scores.Get(character.Dexterity))

	for _, l := range c.FeatureLevels() {
		v.Features = append(v.Features, LevelView{Level: l, Names: c.Features[l]})
	}
	for _, l := range c.BonusMagicLevels() {
		v.BonusMagic = append(v.BonusMagic, LevelView{Level: l, Names: c.BonusMagic[l]})
	}
	return v
}

// classSkills returns the skills the class may choose from. A class with no
// list of its own may choose any skill.
func classSkills(c *character.Character, catalog *ruleset.Catalog) []string {
	cl, ok := catalog.Class(c.Class)
	if !ok {
		return nil
	}
	if skills := cl.Options[ruleset.Skills]; len(skills) > 0 {
		return skills
	}
	return catalog.Pool(ruleset.Skills)
}

// Render writes the sheet of c to w.
func Render(w io.Writer, c *character.Character, catalog *ruleset.Catalog) error {
	if err := templates.ExecuteTemplate(w, "sheet.html", Build(c, catalog)); err != nil {
		return fmt.Errorf("rendering sheet %s: %w", c.ID, err)
	}
	return nil
}

// Bytes renders the sheet of c into memory.
func Bytes(c *character.Character, catalog *ruleset.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, c, catalog); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Signed formats a modifier with an explicit sign: +2, +0, -1.
func Signed(n int) string {
	if n < 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("+%d", n)
}
