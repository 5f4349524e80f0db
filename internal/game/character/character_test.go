package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/character"
)

func TestProficiencyBonus_Table(t *testing.T) {
	want := map[int]int{1: 2, 4: 2, 5: 3, 8: 3, 9: 4, 12: 4, 13: 5, 16: 5, 17: 6, 20: 6}
	for level, bonus := range want {
		assert.Equal(t, bonus, character.ProficiencyBonus(level), "level %d", level)
	}
}

func TestProficiencyBonus_CeilingFormula(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 20).Draw(rt, "level")
		ceil := level / 4
		if level%4 != 0 {
			ceil++
		}
		assert.Equal(rt, ceil+1, character.ProficiencyBonus(level))
	})
}

func TestModifier(t *testing.T) {
	cases := map[int]int{1: -5, 7: -2, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 15: 2, 20: 5, 22: 6}
	for score, mod := range cases {
		assert.Equal(t, mod, character.Modifier(score), "score %d", score)
	}
}

func TestAverageHitPoints(t *testing.T) {
	assert.Equal(t, 10, character.AverageHitPoints(1, 10))
	assert.Equal(t, 10+4*6, character.AverageHitPoints(5, 10))
	assert.Equal(t, 6+19*4, character.AverageHitPoints(20, 6))
}

func TestHitPoints_FloorsAtLevel(t *testing.T) {
	assert.Equal(t, 3, character.HitPoints(3, 2, -5))
	assert.Equal(t, 13, character.HitPoints(1, 10, 3))
}

func TestHeight(t *testing.T) {
	h := character.HeightFromInches(67)
	assert.Equal(t, character.Height{Feet: 5, Inches: 7}, h)
	assert.Equal(t, `5'7"`, h.String())
}

func TestScores(t *testing.T) {
	var s character.Scores
	s.Set(character.Wisdom, 14)
	s.Add(character.Wisdom, 2)
	s.Set(character.Strength, 8)
	assert.Equal(t, 16, s.Get(character.Wisdom))
	assert.Equal(t, 24, s.Sum())
	assert.Equal(t, 0, s.Min())
	assert.Equal(t, 16, s.Max())
	assert.Equal(t, "Wis", character.Wisdom.Short())
	assert.True(t, character.IsAbility("Charisma"))
	assert.False(t, character.IsAbility("Luck"))
}

func TestAdd_SkipsDuplicates(t *testing.T) {
	c := &character.Character{}
	assert.Equal(t, 2, c.Add(character.ListSkills, "Arcana", "History", "Arcana"))
	assert.Equal(t, 0, c.Add(character.ListSkills, "History"))
	assert.Equal(t, []string{"Arcana", "History"}, c.Skills)
	assert.True(t, c.Has(character.ListSkills, "Arcana"))
	assert.False(t, c.Has("nonsense", "Arcana"))
	assert.Panics(t, func() { c.Add("nonsense", "x") })
}

func TestSpellSlotsLabel(t *testing.T) {
	assert.Equal(t, "0", (&character.Character{}).SpellSlotsLabel())
	assert.Equal(t, "9", (&character.Character{SpellSlots: 9}).SpellSlotsLabel())
}

func TestClone_IsIndependent(t *testing.T) {
	c := &character.Character{
		Skills:   []string{"Arcana"},
		Bonus:    map[character.Ability]int{character.Strength: 2},
		Features: map[int][]string{1: {"Rage"}},
	}
	d := c.Clone()
	d.Skills[0] = "History"
	d.Bonus[character.Strength] = 9
	d.Features[1][0] = "Other"
	assert.Equal(t, "Arcana", c.Skills[0])
	assert.Equal(t, 2, c.Bonus[character.Strength])
	assert.Equal(t, "Rage", c.Features[1][0])
}

func TestMerge_PerKindRules(t *testing.T) {
	race := &character.Character{
		Race:      "Dwarf",
		Speed:     25,
		Languages: []string{"Common", "Dwarvish"},
		Bonus:     map[character.Ability]int{character.Constitution: 2},
		Size:      "Medium",
	}
	sub := &character.Character{
		Race:      "Elf",
		Subrace:   "Mountain Dwarf",
		Speed:     30,
		Languages: []string{"Dwarvish", "Giant"},
		Bonus:     map[character.Ability]int{character.Strength: 2, character.Constitution: 1},
	}
	got := character.Merge(race, sub)
	assert.Equal(t, "Dwarf", got.Race, "strings keep the left value")
	assert.Equal(t, "Mountain Dwarf", got.Subrace, "zero left takes the right value")
	assert.Equal(t, 30, got.Speed, "integers keep the larger value")
	assert.Equal(t, []string{"Common", "Dwarvish", "Giant"}, got.Languages)
	assert.Equal(t, map[character.Ability]int{character.Constitution: 3, character.Strength: 2}, got.Bonus)
	assert.Equal(t, "Medium", got.Size)

	assert.Equal(t, []string{"Common", "Dwarvish"}, race.Languages, "inputs are not modified")
	assert.Equal(t, 2, race.Bonus[character.Constitution])
}

func TestMerge_FeatureLevelsConcatenate(t *testing.T) {
	class := &character.Character{Features: map[int][]string{1: {"Spellcasting"}, 2: {"Channel Divinity"}}}
	sub := &character.Character{Features: map[int][]string{1: {"Disciple of Life"}, 6: {"Blessed Healer"}}}
	got := character.Merge(class, sub)
	assert.Equal(t, map[int][]string{
		1: {"Spellcasting", "Disciple of Life"},
		2: {"Channel Divinity"},
		6: {"Blessed Healer"},
	}, got.Features)
}

func TestMerge_ScoresKeepLeft(t *testing.T) {
	a := &character.Character{Scores: character.Scores{10, 10, 10, 10, 10, 10}}
	b := &character.Character{Scores: character.Scores{18, 18, 18, 18, 18, 18}}
	assert.Equal(t, a.Scores, character.Merge(a, b).Scores)
	assert.Equal(t, b.Scores, character.Merge(&character.Character{}, b).Scores)
}

var listGen = rapid.SliceOfN(rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f"}), 0, 6)

func TestMerge_ListUnionProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := &character.Character{Skills: dedupe(listGen.Draw(rt, "a"))}
		b := &character.Character{Skills: dedupe(listGen.Draw(rt, "b")), Level: rapid.IntRange(0, 20).Draw(rt, "lb")}
		a.Level = rapid.IntRange(0, 20).Draw(rt, "la")
		got := character.Merge(a, b)
		assert.Equal(rt, max(a.Level, b.Level), got.Level)
		seen := map[string]bool{}
		for _, s := range got.Skills {
			require.False(rt, seen[s], "duplicate %q", s)
			seen[s] = true
		}
		for _, s := range append(a.Skills, b.Skills...) {
			assert.True(rt, seen[s], "missing %q", s)
		}
		assert.Equal(rt, len(seen), len(got.Skills))
	})
}

func TestMerge_Identity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := &character.Character{
			Class:  "Wizard",
			Level:  rapid.IntRange(1, 20).Draw(rt, "level"),
			Skills: dedupe(listGen.Draw(rt, "skills")),
		}
		got := character.Merge(a, &character.Character{})
		assert.Equal(rt, a.Class, got.Class)
		assert.Equal(rt, a.Level, got.Level)
		assert.Equal(rt, a.Skills, got.Skills)
	})
}

func TestValidate(t *testing.T) {
	good := &character.Character{
		Level:        3,
		Proficiency:  2,
		Ranking:      []character.Ability{character.Wisdom},
		SavingThrows: []string{"Wisdom", "Charisma"},
		Features:     map[int][]string{1: {"Spellcasting"}, 3: {"x"}},
	}
	require.NoError(t, good.Validate())

	bad := good.Clone()
	bad.Level = 2
	bad.Subclass = "Life Domain"
	bad.Skills = []string{"Arcana", "Arcana"}
	bad.SavingThrows = append(bad.SavingThrows, "Luck")
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "features listed for level 3")
	assert.Contains(t, err.Error(), "subclass \"Life Domain\" set below level 3")
	assert.Contains(t, err.Error(), "skills holds duplicates")
	assert.Contains(t, err.Error(), "unknown ability \"Luck\"")
}

func dedupe(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
