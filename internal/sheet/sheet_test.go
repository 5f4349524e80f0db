package sheet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/sheet"
	"github.com/cory-johannsen/charsheet/internal/testutil"
)

func fighter() *character.Character {
	return &character.Character{
		ID:                "3f2a",
		Race:              "Dwarf",
		Subrace:           "Hill Dwarf",
		Sex:               "Male",
		Alignment:         "Lawful Good",
		Background:        "Soldier",
		BackgroundFeature: "Military Rank",
		Class:             "Fighter",
		Level:             1,
		Ranking:           []character.Ability{character.Strength, character.Constitution},
		Scores:            character.Scores{16, 12, 15, 10, 13, 8},
		Proficiency:       2,
		HitDie:            "1d10",
		HP:                12,
		Armors:            []string{"Light", "Medium", "Heavy", "Shield"},
		Weapons:           []string{"Simple", "Martial"},
		Languages:         []string{"Common", "Dwarvish"},
		Skills:            []string{"Athletics", "Intimidation", "Perception"},
		SavingThrows:      []string{"Strength", "Constitution"},
		Traits:            []string{"Darkvision", "Dwarven Resilience"},
		Feats:             []string{},
		Features:          map[int][]string{1: {"Fighting Style", "Second Wind"}},
		Equipment:         []string{"Chain mail"},
		Speed:             25,
		Size:              "Medium",
		Height:            character.HeightFromInches(50),
		Weight:            150,
	}
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+2", sheet.Signed(2))
	assert.Equal(t, "+0", sheet.Signed(0))
	assert.Equal(t, "-1", sheet.Signed(-1))
}

func TestBuild_AbilityBlocks(t *testing.T) {
	v := sheet.Build(fighter(), testutil.Catalog(t))
	require.Len(t, v.Abilities, 6)

	str := v.Abilities[0]
	assert.Equal(t, character.Strength, str.Name)
	assert.Equal(t, 3, str.Modifier)
	assert.Equal(t, 5, str.Save, "proficient save adds the bonus")
	assert.True(t, str.Proficient)
	assert.Equal(t, 240, str.Carry)
	assert.Equal(t, 480, str.Lift)

	dex := v.Abilities[1]
	assert.Equal(t, 1, dex.Save)
	assert.False(t, dex.Proficient)
	assert.Zero(t, dex.Carry, "only Strength carries")

	cha := v.Abilities[5]
	assert.Equal(t, -1, cha.Modifier)
	assert.Equal(t, 1, v.Initiative)
}

func TestBuild_SkillModifiersAndClassSkills(t *testing.T) {
	v := sheet.Build(fighter(), testutil.Catalog(t))
	skills := make(map[string]sheet.SkillView)
	for _, s := range v.Skills {
		skills[s.Name] = s
	}
	assert.Equal(t, 5, skills["Athletics"].Modifier)
	assert.True(t, skills["Athletics"].ClassSkill)
	assert.Equal(t, 1, skills["Intimidation"].Modifier)
	assert.Equal(t, 0, skills["Arcana"].Modifier)
	assert.False(t, skills["Arcana"].ClassSkill)
	assert.Equal(t, 13, v.Passive, "10 + Wis 1 + proficiency 2")

	var strSkills []string
	for _, s := range v.Abilities[0].Skills {
		strSkills = append(strSkills, s.Name)
	}
	assert.Equal(t, []string{"Athletics"}, strSkills)
}

func TestBuild_ClassWithoutSkillListMayChooseAny(t *testing.T) {
	c := fighter()
	c.Class = "Bard"
	catalog := testutil.Catalog(t)
	v := sheet.Build(c, catalog)
	assert.Equal(t, catalog.IDs("skills"), v.ClassSkills)
}

func TestBuild_LevelsAscend(t *testing.T) {
	c := fighter()
	c.Level = 3
	c.Features = map[int][]string{3: {"Improved Critical"}, 1: {"Second Wind"}, 2: {"Action Surge"}}
	v := sheet.Build(c, testutil.Catalog(t))
	require.Len(t, v.Features, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{v.Features[0].Level, v.Features[1].Level, v.Features[2].Level})
	assert.Empty(t, v.BonusMagic)
}

func TestBuild_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { sheet.Build(nil, testutil.Catalog(t)) })
	assert.Panics(t, func() { sheet.Build(fighter(), nil) })
}

func TestRender_Sections(t *testing.T) {
	doc, err := sheet.Bytes(fighter(), testutil.Catalog(t))
	require.NoError(t, err)
	html := string(doc)

	for _, id := range []string{"identity", "class", "abilities", "proficiencies", "feats", "traits", "spellcasting", "features", "equipment"} {
		assert.Contains(t, html, `<section id="`+id+`"`)
	}
	assert.NotContains(t, html, `id="bonusmagic"`)
	assert.Contains(t, html, "Dwarf (Hill Dwarf)")
	assert.Contains(t, html, "Soldier: Military Rank")
	assert.Contains(t, html, "Carrying capacity 240 lb.")
	assert.Contains(t, html, "Push, drag, or lift 480 lb.")
	assert.Contains(t, html, `<li class="class-skill">Athletics +5 &#10003;</li>`)
	assert.Contains(t, html, "Second Wind")
	assert.Contains(t, html, "4&#39;2&#34;", "height is escaped")
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
}

func TestRender_BonusMagic(t *testing.T) {
	c := fighter()
	c.Class, c.Subclass, c.Level = "Cleric", "Life Domain", 3
	c.BonusMagic = map[int][]string{1: {"Bless", "Cure Wounds"}, 3: {"Lesser Restoration"}}
	doc, err := sheet.Bytes(c, testutil.Catalog(t))
	require.NoError(t, err)
	assert.Contains(t, string(doc), `id="bonusmagic"`)
	assert.Contains(t, string(doc), "<h4>Level 3</h4><ul><li>Lesser Restoration</li></ul>")
}

func TestRender_EscapesCatalogText(t *testing.T) {
	c := fighter()
	c.Equipment = []string{"<script>alert(1)</script>"}
	doc, err := sheet.Bytes(c, testutil.Catalog(t))
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "<script>")
}

// Property: the save modifier is the ability modifier plus the bonus exactly
// when the save is proficient.
func TestPropertyBuild_SaveModifier(t *testing.T) {
	catalog := testutil.Catalog(t)
	rapid.Check(t, func(rt *rapid.T) {
		c := fighter()
		for i := range c.Scores {
			c.Scores[i] = rapid.IntRange(3, 24).Draw(rt, "score")
		}
		c.Level = rapid.IntRange(1, 20).Draw(rt, "level")
		c.Proficiency = character.ProficiencyBonus(c.Level)
		v := sheet.Build(c, catalog)
		for _, a := range v.Abilities {
			want := character.Modifier(a.Score)
			if a.Proficient {
				want += c.Proficiency
			}
			if a.Save != want {
				rt.Fatalf("%s save %d, want %d", a.Name, a.Save, want)
			}
		}
	})
}
