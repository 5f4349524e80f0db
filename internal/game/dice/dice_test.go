package dice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/testutil"
)

func TestParse_Forms(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"2d6", dice.Expression{Raw: "2d6", Count: 2, Sides: 6}},
		{"2d6+3", dice.Expression{Raw: "2d6+3", Count: 2, Sides: 6, Modifier: 3}},
		{"1d8-1", dice.Expression{Raw: "1d8-1", Count: 1, Sides: 8, Modifier: -1}},
		{"4d6kh3", dice.Expression{Raw: "4d6kh3", Count: 4, Sides: 6, Keep: 3}},
		{"4D6KH3+1", dice.Expression{Raw: "4D6KH3+1", Count: 4, Sides: 6, Keep: 3, Modifier: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "d", "6", "0d6", "2d1", "4d6kh4", "4d6kh0", "2d6+", "x2d6"} {
		t.Run(in, func(t *testing.T) {
			_, err := dice.Parse(in)
			assert.True(t, errors.Is(err, dice.ErrInvalidExpression), "got %v", err)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("bogus") })
	assert.NotPanics(t, func() { dice.MustParse("1d12") })
}

func TestExpression_String_RoundTrips(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(2, 10).Draw(rt, "count")
		e := dice.Expression{
			Count:    count,
			Sides:    rapid.IntRange(2, 100).Draw(rt, "sides"),
			Keep:     rapid.IntRange(0, count-1).Draw(rt, "keep"),
			Modifier: rapid.IntRange(-10, 10).Draw(rt, "mod"),
		}
		parsed, err := dice.Parse(e.String())
		require.NoError(rt, err)
		e.Raw = e.String()
		assert.Equal(rt, e, parsed)
	})
}

func TestRoll_KeepHighest(t *testing.T) {
	src := testutil.NewFixedSource(0, 5, 2, 3) // faces 1, 6, 3, 4
	res := dice.MustParse("4d6kh3").Roll(src)
	assert.Equal(t, []int{6, 4, 3}, res.Kept)
	assert.Equal(t, []int{1}, res.Dropped)
	assert.Equal(t, 13, res.Total())
	assert.Equal(t, "4d6kh3 → [6 4 3] drop [1] = 13", res.String())
}

func TestRoll_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		keep := rapid.IntRange(0, count-1).Draw(rt, "keep")
		e := dice.Expression{Raw: "x", Count: count, Sides: sides, Keep: keep}
		res := e.Roll(dice.NewSeededSource(rapid.Uint64Min(1).Draw(rt, "seed")))
		want := count
		if keep > 0 {
			want = keep
		}
		require.Len(rt, res.Kept, want)
		assert.Len(rt, res.Dropped, count-want)
		for _, d := range append(res.Kept, res.Dropped...) {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
		for _, k := range res.Kept {
			for _, d := range res.Dropped {
				assert.GreaterOrEqual(rt, k, d)
			}
		}
	})
}

func TestResult_StringPanicsOnEmptyExpression(t *testing.T) {
	assert.Panics(t, func() { _ = dice.Result{Kept: []int{1}}.String() })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSources_InRangeAndPanicOnZero(t *testing.T) {
	for name, src := range map[string]dice.Source{
		"crypto": dice.NewCryptoSource(),
		"seeded": dice.NewSeededSource(7),
		"auto":   dice.NewSource(0),
	} {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 500; i++ {
				v := src.Intn(6)
				assert.GreaterOrEqual(t, v, 0)
				assert.Less(t, v, 6)
			}
			assert.Panics(t, func() { src.Intn(0) })
		})
	}
}

func TestRoller_RollExpr(t *testing.T) {
	r := dice.NewRoller(testutil.NewFixedSource(3), zaptest.NewLogger(t))
	res, err := r.RollExpr("2d8+1")
	require.NoError(t, err)
	assert.Equal(t, 9, res.Total())
	_, err = r.RollExpr("nope")
	assert.Error(t, err)
	assert.Equal(t, 3, r.Intn(10))
}

func TestNewRoller_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { dice.NewRoller(nil, zaptest.NewLogger(t)) })
}
