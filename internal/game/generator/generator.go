// Package generator drives one character generation: blueprint assembly,
// ability scores, improvements, hit points, and physical metrics.
package generator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/asi"
	gattr "github.com/cory-johannsen/charsheet/internal/game/attribute"
	"github.com/cory-johannsen/charsheet/internal/game/blueprint"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// Request is a blueprint request plus the generation options.
type Request struct {
	blueprint.Request
	// Threshold is the minimum sum of the rolled scores.
	Threshold int
	// RollHP rolls one hit die per level above the first instead of taking
	// the average.
	RollHP bool
}

// Generator sequences the pipeline stages.
type Generator struct {
	catalog   *ruleset.Catalog
	assembler *blueprint.Assembler
	engine    *asi.Engine
	notifier  prompt.Notifier
	roller    *dice.Roller
	tracer    trace.Tracer
	logger    *zap.Logger
}

// New creates a Generator.
//
// Precondition: all arguments must be non-nil.
func New(catalog *ruleset.Catalog, p prompt.Prompter, n prompt.Notifier, roller *dice.Roller, tracer trace.Tracer, logger *zap.Logger) *Generator {
	if catalog == nil || p == nil || n == nil || roller == nil || tracer == nil || logger == nil {
		panic("generator: New requires every collaborator")
	}
	return &Generator{
		catalog:   catalog,
		assembler: blueprint.NewAssembler(catalog, p, n, logger),
		engine:    asi.NewEngine(catalog, p, n, logger),
		notifier:  n,
		roller:    roller,
		tracer:    tracer,
		logger:    logger,
	}
}

// Generate builds one complete character.
//
// Postcondition: on success the record passes character.Validate and
// CheckSpellSlots; an aborted
// prompt is returned wrapped so that errors.Is(err, prompt.ErrAborted) holds.
func (g *Generator) Generate(ctx context.Context, req Request) (*character.Character, error) {
	ctx, span := g.tracer.Start(ctx, "generate", trace.WithAttributes(
		attribute.String("race", req.Race),
		attribute.String("class", req.Class),
		attribute.Int("level", req.Level),
	))
	defer span.End()

	c, err := g.stage(ctx, "assemble", func(ctx context.Context) (*character.Character, error) {
		return g.assembler.Assemble(ctx, req.Request)
	})
	if err != nil {
		return nil, g.fail(span, err)
	}

	if _, err := g.stage(ctx, "scores", func(context.Context) (*character.Character, error) {
		return c, gattr.Generate(g.roller, g.logger, c, req.Threshold)
	}); err != nil {
		return nil, g.fail(span, err)
	}

	if _, err := g.stage(ctx, "improvements", func(ctx context.Context) (*character.Character, error) {
		_, err := g.engine.Apply(ctx, c)
		return c, err
	}); err != nil {
		return nil, g.fail(span, err)
	}

	c.HP = g.hitPoints(c, req.RollHP)
	g.metrics(c)
	c.ID = uuid.NewString()

	if err := c.Validate(); err != nil {
		return nil, g.fail(span, err)
	}
	if err := CheckSpellSlots(g.catalog, c); err != nil {
		return nil, g.fail(span, err)
	}
	span.SetAttributes(attribute.String("character.id", c.ID))
	g.logger.Info("character generated",
		zap.String("id", c.ID),
		zap.String("race", c.Race),
		zap.String("class", c.Class),
		zap.Int("level", c.Level),
		zap.Int("hp", c.HP),
	)
	return c, nil
}

func (g *Generator) stage(ctx context.Context, name string, fn func(context.Context) (*character.Character, error)) (*character.Character, error) {
	ctx, span := g.tracer.Start(ctx, name)
	defer span.End()
	c, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

func (g *Generator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// hitPoints returns the class hit points with the Constitution modifier
// applied per level. The base is the average unless roll is set. The
// assembled record carries the bare class average; this total differs from
// it by level times the Constitution modifier, so the two agree only when
// Constitution is 10 or 11.
func (g *Generator) hitPoints(c *character.Character, roll bool) int {
	base := character.AverageHitPoints(c.Level, c.HitDieSides)
	if roll && c.Level > 1 {
		res := g.roller.Roll(dice.Expression{
			Raw:   fmt.Sprintf("%dd%d", c.Level-1, c.HitDieSides),
			Count: c.Level - 1,
			Sides: c.HitDieSides,
		})
		base = c.HitDieSides + res.Total()
	}
	hp := character.HitPoints(c.Level, base, character.Modifier(c.Scores.Get(character.Constitution)))
	g.logger.Debug("hit points", zap.Int("base", base), zap.Int("hp", hp), zap.Bool("rolled", roll))
	return hp
}
