package generator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/asi"
	gattr "github.com/cory-johannsen/charsheet/internal/game/attribute"
	"github.com/cory-johannsen/charsheet/internal/game/blueprint"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/generator"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/testutil"
)

type fixture struct {
	gen      *generator.Generator
	prompter *testutil.Scripted
	notes    *testutil.Recorder
}

func newFixture(t *testing.T, seed uint64, tracer trace.Tracer) fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	p := testutil.NewScripted()
	notes := &testutil.Recorder{}
	roller := dice.NewRoller(dice.NewSeededSource(seed), logger)
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("test")
	}
	return fixture{
		gen:      generator.New(testutil.Catalog(t), p, notes, roller, tracer, logger),
		prompter: p,
		notes:    notes,
	}
}

func request(race, class, subclass string, level int) generator.Request {
	return generator.Request{
		Request: blueprint.Request{
			Race: race, Class: class, Subclass: subclass,
			Sex: "Male", Alignment: "True Neutral", Level: level,
		},
		Threshold: gattr.DefaultThreshold,
	}
}

func TestGenerate_HumanFighterLevel1(t *testing.T) {
	f := newFixture(t, 11, nil)
	c, err := f.gen.Generate(context.Background(), request("Human", "Fighter", "", 1))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Proficiency)
	assert.Equal(t, "1d10", c.HitDie)
	assert.Equal(t, 10+character.Modifier(c.Scores.Get(character.Constitution)), c.HP)
	assert.Equal(t, "", c.Subclass)
	assert.Equal(t, []int{1}, c.FeatureLevels())
	assert.Empty(t, c.Feats)
	assert.Empty(t, f.prompter.Asked("choose Ability or Feat"))

	assert.GreaterOrEqual(t, c.Scores.Min(), gattr.MinScore)
	assert.GreaterOrEqual(t, c.Scores.Max(), gattr.MinPeak)
	assert.GreaterOrEqual(t, c.Scores.Sum(), gattr.DefaultThreshold)

	_, err = uuid.Parse(c.ID)
	assert.NoError(t, err)
	inches := c.Height.Feet*12 + c.Height.Inches
	assert.GreaterOrEqual(t, inches, 58)
	assert.LessOrEqual(t, inches, 76)
	assert.GreaterOrEqual(t, c.Weight, 110+2*2)
	assert.Empty(t, f.notes.Warns)
}

func TestGenerate_DragonbornClericFallsBackToMaleMetrics(t *testing.T) {
	f := newFixture(t, 5, nil)
	f.prompter.On("draconic ancestry", "Red")
	req := request("Dragonborn", "Cleric", "Life Domain", 3)
	req.Sex = "Female"
	c, err := f.gen.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Red", c.Ancestry)
	assert.Equal(t, []string{"Fire"}, c.Resistances)
	assert.NotEmpty(t, c.BonusMagic)
	assert.Equal(t, 2, c.Proficiency)
	assert.Empty(t, f.prompter.Asked("choose Ability or Feat"))
	require.Len(t, f.notes.Warns, 1)
	assert.Equal(t, "No Female metrics for Dragonborn; using Male.", f.notes.Warns[0])
	assert.Positive(t, c.Weight)
}

func TestGenerate_RogueArcaneTricksterLevel8(t *testing.T) {
	f := newFixture(t, 8, nil)
	c, err := f.gen.Generate(context.Background(), request("Human", "Rogue", "Arcane Trickster", 8))
	require.NoError(t, err)

	assert.Len(t, f.prompter.Asked("choose Ability or Feat"), asi.Count(8, "Rogue"))
	assert.NotEqual(t, "0", c.SpellSlotsLabel())
	assert.Contains(t, c.Languages, "Thieves' cant")
}

func TestGenerate_FighterChampionLevel19(t *testing.T) {
	f := newFixture(t, 19, nil)
	c, err := f.gen.Generate(context.Background(), request("Human", "Fighter", "Champion", 19))
	require.NoError(t, err)

	assert.Len(t, f.prompter.Asked("choose Ability or Feat"), 7)
	assert.LessOrEqual(t, c.Scores.Max(), character.ScoreCap)
	assert.Equal(t, "0", c.SpellSlotsLabel())
	assert.Equal(t, 6, c.Proficiency)
	assert.Equal(t, "19d10", c.HitDie)
}

func TestGenerate_RolledHitPointsStayInRange(t *testing.T) {
	f := newFixture(t, 3, nil)
	req := request("Human", "Wizard", "", 5)
	req.RollHP = true
	c, err := f.gen.Generate(context.Background(), req)
	require.NoError(t, err)

	con := character.Modifier(c.Scores.Get(character.Constitution))
	low := character.HitPoints(5, 6+4*1, con)
	high := character.HitPoints(5, 6+4*6, con)
	assert.GreaterOrEqual(t, c.HP, low)
	assert.LessOrEqual(t, c.HP, high)
}

func TestGenerate_AbortPropagates(t *testing.T) {
	f := newFixture(t, 1, nil)
	f.prompter.On("Choose an alignment", testutil.Abort)
	req := request("Human", "Fighter", "", 1)
	req.Alignment = ""
	_, err := f.gen.Generate(context.Background(), req)
	assert.True(t, errors.Is(err, prompt.ErrAborted))
}

func TestGenerate_UnknownRace(t *testing.T) {
	f := newFixture(t, 1, nil)
	_, err := f.gen.Generate(context.Background(), request("Centaur", "Fighter", "", 1))
	assert.True(t, errors.Is(err, ruleset.ErrUnknownEntry))
}

func TestGenerate_ThresholdUnreachable(t *testing.T) {
	logger := zap.NewNop()
	roller := dice.NewRoller(testutil.NewFixedSource(0), logger)
	gen := generator.New(testutil.Catalog(t), testutil.NewScripted(), &testutil.Recorder{}, roller, noop.NewTracerProvider().Tracer("test"), logger)
	_, err := gen.Generate(context.Background(), request("Human", "Fighter", "", 1))
	assert.True(t, errors.Is(err, gattr.ErrThresholdUnreachable))
}

func TestGenerate_OpensSpanPerStage(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	f := newFixture(t, 2, tp.Tracer("test"))
	_, err := f.gen.Generate(context.Background(), request("Human", "Fighter", "", 4))
	require.NoError(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"assemble", "scores", "improvements", "generate"}, names)
}

// Average hit points can always be recomputed from the level, the hit die,
// and the Constitution modifier.
func TestGenerate_HitPointsRecomputeProperty(t *testing.T) {
	cat := testutil.Catalog(t)
	logger := zap.NewNop()
	tracer := noop.NewTracerProvider().Tracer("test")
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		gen := generator.New(cat, prompt.NewRandom(src), prompt.Discard{}, dice.NewRoller(src, logger), tracer, logger)
		req := generator.Request{
			Request: blueprint.Request{
				Race:  rapid.SampledFrom(cat.IDs(ruleset.Races)).Draw(rt, "race"),
				Class: rapid.SampledFrom(cat.IDs(ruleset.Classes)).Draw(rt, "class"),
				Sex:   rapid.SampledFrom(character.Sexes).Draw(rt, "sex"),
				Level: rapid.IntRange(character.MinLevel, character.MaxLevel).Draw(rt, "level"),
			},
			Threshold: gattr.DefaultThreshold,
		}
		c, err := gen.Generate(context.Background(), req)
		if err != nil {
			rt.Fatalf("generate %+v: %v", req.Request, err)
		}
		want := character.HitPoints(c.Level, character.AverageHitPoints(c.Level, c.HitDieSides), character.Modifier(c.Scores.Get(character.Constitution)))
		if c.HP != want {
			rt.Fatalf("hp %d, recomputed %d", c.HP, want)
		}
		if c.Proficiency != character.ProficiencyBonus(c.Level) {
			rt.Fatalf("proficiency %d at level %d", c.Proficiency, c.Level)
		}
	})
}
