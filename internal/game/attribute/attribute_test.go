package attribute_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/attribute"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/testutil"
)

func TestAcceptable(t *testing.T) {
	assert.True(t, attribute.Acceptable([]int{15, 14, 13, 12, 10, 8}, 65))
	assert.False(t, attribute.Acceptable([]int{15, 14, 13, 12, 10, 7}, 65), "minimum below 8")
	assert.False(t, attribute.Acceptable([]int{14, 14, 13, 12, 10, 9}, 65), "no score reaches 15")
	assert.False(t, attribute.Acceptable([]int{15, 12, 10, 10, 9, 8}, 65), "sum below threshold")
	assert.False(t, attribute.Acceptable(nil, 0))
}

func TestRollScores_AllSixes(t *testing.T) {
	roller := dice.NewRoller(testutil.NewFixedSource(5), zaptest.NewLogger(t))
	rolls, err := attribute.RollScores(roller, attribute.MaxThreshold)
	require.NoError(t, err)
	assert.Equal(t, []int{18, 18, 18, 18, 18, 18}, rolls)
}

func TestRollScores_Unreachable(t *testing.T) {
	roller := dice.NewRoller(testutil.NewFixedSource(0), zap.NewNop())
	_, err := attribute.RollScores(roller, attribute.DefaultThreshold)
	assert.True(t, errors.Is(err, attribute.ErrThresholdUnreachable))

	_, err = attribute.RollScores(roller, attribute.MaxThreshold+1)
	assert.True(t, errors.Is(err, attribute.ErrThresholdUnreachable))
	_, err = attribute.RollScores(roller, -1)
	assert.True(t, errors.Is(err, attribute.ErrThresholdUnreachable))
}

func TestRollScores_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64Min(1).Draw(rt, "seed")
		threshold := rapid.IntRange(0, 75).Draw(rt, "threshold")
		roller := dice.NewRoller(dice.NewSeededSource(seed), zap.NewNop())
		rolls, err := attribute.RollScores(roller, threshold)
		if err != nil {
			rt.Fatalf("roll: %v", err)
		}
		if len(rolls) != 6 || !attribute.Acceptable(rolls, threshold) {
			rt.Fatalf("unacceptable rolls %v for threshold %d", rolls, threshold)
		}
	})
}

func TestAssign_RankedAbilitiesTakeLargest(t *testing.T) {
	rolls := []int{10, 15, 8, 13, 12, 14}
	scores := attribute.Assign(rolls, []character.Ability{character.Intelligence, character.Dexterity}, testutil.NewFixedSource(0))
	assert.Equal(t, 15, scores.Get(character.Intelligence))
	assert.Equal(t, 14, scores.Get(character.Dexterity))
	// The remaining rolls fill canonical order by always drawing index 0.
	assert.Equal(t, 13, scores.Get(character.Strength))
	assert.Equal(t, 12, scores.Get(character.Constitution))
	assert.Equal(t, 10, scores.Get(character.Wisdom))
	assert.Equal(t, 8, scores.Get(character.Charisma))
}

func TestAssign_IgnoresRepeatedAndUnknownRanks(t *testing.T) {
	rolls := []int{10, 15, 8, 13, 12, 14}
	scores := attribute.Assign(rolls, []character.Ability{character.Wisdom, character.Wisdom, "Luck", character.Charisma}, testutil.NewFixedSource(0))
	assert.Equal(t, 15, scores.Get(character.Wisdom))
	assert.Equal(t, 14, scores.Get(character.Charisma))
}

func TestAssign_PermutationProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rolls := rapid.SliceOfN(rapid.IntRange(3, 18), 6, 6).Draw(rt, "rolls")
		ranking := rapid.SliceOfNDistinct(rapid.SampledFrom(character.Abilities), 0, 3, func(a character.Ability) character.Ability { return a }).Draw(rt, "ranking")
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		scores := attribute.Assign(rolls, ranking, src)

		got := slices.Sorted(slices.Values(scores[:]))
		want := slices.Sorted(slices.Values(rolls))
		if !slices.Equal(got, want) {
			rt.Fatalf("scores %v are not a permutation of %v", scores, rolls)
		}
		if len(ranking) > 0 && scores.Get(ranking[0]) != slices.Max(rolls) {
			rt.Fatalf("primary %s got %d, want %d", ranking[0], scores.Get(ranking[0]), slices.Max(rolls))
		}
	})
}

func TestApplyBonus_MayExceedCap(t *testing.T) {
	scores := character.Scores{19, 10, 10, 10, 10, 10}
	got := attribute.ApplyBonus(scores, map[character.Ability]int{character.Strength: 2, character.Charisma: 1})
	assert.Equal(t, 21, got.Get(character.Strength))
	assert.Equal(t, 11, got.Get(character.Charisma))
	assert.Equal(t, 19, scores.Get(character.Strength), "input is not modified")
}

func TestGenerate(t *testing.T) {
	roller := dice.NewRoller(dice.NewSeededSource(7), zaptest.NewLogger(t))
	c := &character.Character{
		Ranking: []character.Ability{character.Strength, character.Constitution},
		Bonus:   map[character.Ability]int{character.Strength: 1},
	}
	require.NoError(t, attribute.Generate(roller, zaptest.NewLogger(t), c, attribute.DefaultThreshold))
	assert.GreaterOrEqual(t, c.Scores.Get(character.Strength), attribute.MinPeak+1)
	assert.GreaterOrEqual(t, c.Scores.Get(character.Strength), c.Scores.Get(character.Constitution))
	assert.GreaterOrEqual(t, c.Scores.Sum(), attribute.DefaultThreshold+1)
}
