package generator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// metrics rolls height and weight from the subrace table, falling back to the
// race table. A missing sex falls back to the other sex with a warning.
func (g *Generator) metrics(c *character.Character) {
	entry, ok := g.metricEntry(c)
	if !ok {
		g.notifier.Warn(fmt.Sprintf("No height or weight table for %s; left blank.", raceLabel(c)))
		return
	}
	heightRoll := g.rollMod(entry.HeightMod)
	weightRoll := 1
	if entry.WeightMod != "" {
		weightRoll = g.rollMod(entry.WeightMod)
	}
	c.Height = character.HeightFromInches(entry.BaseHeight + heightRoll)
	c.Weight = entry.BaseWeight + heightRoll*weightRoll
	g.logger.Debug("physical metrics",
		zap.String("height", c.Height.String()),
		zap.Int("weight", c.Weight),
	)
}

func (g *Generator) metricEntry(c *character.Character) (ruleset.MetricEntry, bool) {
	var m ruleset.Metric
	found := false
	for _, id := range []string{c.Subrace, c.Race} {
		if id == "" {
			continue
		}
		if m, found = g.catalog.Metric(id); found {
			break
		}
	}
	if !found || len(m) == 0 {
		return ruleset.MetricEntry{}, false
	}
	if e, ok := m[c.Sex]; ok {
		return e, true
	}
	for _, sex := range character.Sexes {
		if e, ok := m[sex]; ok {
			g.notifier.Warn(fmt.Sprintf("No %s metrics for %s; using %s.", sexLabel(c.Sex), raceLabel(c), sex))
			return e, true
		}
	}
	return ruleset.MetricEntry{}, false
}

// rollMod rolls a metric modifier expression. Malformed expressions roll 0.
func (g *Generator) rollMod(expr string) int {
	if expr == "" {
		return 0
	}
	res, err := g.roller.RollExpr(expr)
	if err != nil {
		g.logger.Warn("invalid metric expression", zap.String("expression", expr), zap.Error(err))
		return 0
	}
	return res.Total()
}

func raceLabel(c *character.Character) string {
	if c.Subrace != "" {
		return c.Subrace
	}
	return c.Race
}

func sexLabel(sex string) string {
	if sex == "" {
		return "unspecified sex"
	}
	return sex
}
