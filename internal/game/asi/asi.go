// Package asi applies the level-driven ability score improvements: raising
// abilities or acquiring feats with their prerequisites and perks.
package asi

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// Branch and bonus options offered for every improvement.
const (
	BranchAbility = "Ability"
	BranchFeat    = "Feat"
	PlusTwo       = "+2 to one ability"
	PlusOne       = "+1 to two abilities"
)

// Count returns the number of improvements due at level for class.
//
// Postcondition: the result counts every multiple of four up to level except
// 20, plus Fighter bonuses at 6 and 14, a Rogue bonus at 8, and one at 19.
func Count(level int, class string) int {
	n := 0
	for k := 4; k <= level; k += 4 {
		if k != 20 {
			n++
		}
	}
	if class == "Fighter" && level >= 6 {
		n++
	}
	if class == "Rogue" && level >= 8 {
		n++
	}
	if class == "Fighter" && level >= 14 {
		n++
	}
	if level >= 19 {
		n++
	}
	return n
}

// Engine applies improvements to a character record.
type Engine struct {
	catalog  *ruleset.Catalog
	prompter prompt.Prompter
	notifier prompt.Notifier
	logger   *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: all arguments must be non-nil.
func NewEngine(catalog *ruleset.Catalog, prompter prompt.Prompter, notifier prompt.Notifier, logger *zap.Logger) *Engine {
	if catalog == nil || prompter == nil || notifier == nil || logger == nil {
		panic("asi: NewEngine requires a catalog, prompter, notifier, and logger")
	}
	return &Engine{catalog: catalog, prompter: prompter, notifier: notifier, logger: logger}
}

// Apply runs every improvement due at c's level.
//
// Precondition: c has its scores generated.
// Postcondition: no ability raised by an improvement exceeds the cap, and
// every acquired feat passed CheckPrerequisites against the record as it was
// before its perks were applied. Returns the number of improvements applied.
func (e *Engine) Apply(ctx context.Context, c *character.Character) (int, error) {
	n := Count(c.Level, c.Class)
	if n == 0 {
		return 0, nil
	}
	if c.Feats == nil {
		c.Feats = []string{}
	}
	applied := 0
	for i := 1; i <= n; i++ {
		var branches []string
		if len(raisable(c, 1)) >= 2 || len(raisable(c, 2)) >= 1 {
			branches = append(branches, BranchAbility)
		}
		if e.anyFeasibleFeat(c) {
			branches = append(branches, BranchFeat)
		}
		if len(branches) == 0 {
			e.notifier.Warn(fmt.Sprintf("Ability score improvement %d of %d has nothing to offer; skipped.", i, n))
			continue
		}
		branch, err := e.prompter.Choose(ctx, fmt.Sprintf("Ability score improvement %d of %d: choose Ability or Feat", i, n), branches, nil)
		if err != nil {
			return applied, err
		}
		switch branch {
		case BranchAbility:
			err = e.raiseAbilities(ctx, c)
		case BranchFeat:
			err = e.acquireFeat(ctx, c)
		}
		if err != nil {
			return applied, err
		}
		applied++
	}
	e.logger.Info("ability score improvements applied",
		zap.Int("due", n),
		zap.Int("applied", applied),
		zap.Strings("feats", c.Feats),
		zap.Ints("scores", c.Scores[:]),
	)
	return applied, nil
}

// raisable returns the abilities that can take amount without exceeding the
// cap, in canonical order.
func raisable(c *character.Character, amount int) []string {
	var out []string
	for _, a := range character.Abilities {
		if c.Scores.Get(a)+amount <= character.ScoreCap {
			out = append(out, string(a))
		}
	}
	return out
}

func (e *Engine) raiseAbilities(ctx context.Context, c *character.Character) error {
	var bonuses []string
	if len(raisable(c, 2)) > 0 {
		bonuses = append(bonuses, PlusTwo)
	}
	if len(raisable(c, 1)) >= 2 {
		bonuses = append(bonuses, PlusOne)
	}
	bonus, err := e.prompter.Choose(ctx, "Choose a bonus", bonuses, nil)
	if err != nil {
		return err
	}
	if bonus == PlusTwo {
		pick, err := e.prompter.Choose(ctx, "Choose an ability to raise by 2", raisable(c, 2), nil)
		if err != nil {
			return err
		}
		c.Scores.Add(character.Ability(pick), 2)
		e.logger.Debug("ability raised", zap.String("ability", pick), zap.Int("amount", 2))
		return nil
	}
	picks, err := prompt.ChooseN(ctx, e.prompter, "Choose an ability to raise by 1", raisable(c, 1), nil, 2)
	if err != nil {
		return err
	}
	for _, p := range picks {
		c.Scores.Add(character.Ability(p), 1)
	}
	e.logger.Debug("abilities raised", zap.Strings("abilities", picks), zap.Int("amount", 1))
	return nil
}

// featPool returns the catalog feats c does not hold, in declared order.
func (e *Engine) featPool(c *character.Character) []string {
	var out []string
	for _, id := range e.catalog.IDs(ruleset.Feats) {
		if !slices.Contains(c.Feats, id) {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) anyFeasibleFeat(c *character.Character) bool {
	for _, id := range e.featPool(c) {
		f, _ := e.catalog.Feat(id)
		if CheckPrerequisites(c, id, f) == nil {
			return true
		}
	}
	return false
}

// acquireFeat asks for a feat until one passes its prerequisites. Rejected
// feats are warned about and withdrawn from the menu.
func (e *Engine) acquireFeat(ctx context.Context, c *character.Character) error {
	pool := e.featPool(c)
	var rejected []string
	for {
		id, err := e.prompter.Choose(ctx, "Choose a feat", pool, rejected)
		if err != nil {
			return err
		}
		f, ok := e.catalog.Feat(id)
		if !ok {
			return fmt.Errorf("%w: feat %q", ruleset.ErrUnknownEntry, id)
		}
		if err := CheckPrerequisites(c, id, f); err != nil {
			e.notifier.Warn(fmt.Sprintf("%v; choose another feat.", err))
			rejected = append(rejected, id)
			continue
		}
		if err := e.ApplyPerks(ctx, c, id, f.Perks); err != nil {
			return err
		}
		c.Add(character.ListFeats, id)
		e.logger.Debug("feat acquired", zap.String("feat", id))
		return nil
	}
}
