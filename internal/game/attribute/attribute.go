// Package attribute rolls the six ability scores, binds them to abilities by
// class priority, and applies racial bonuses.
package attribute

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
)

const (
	// DefaultThreshold is the minimum sum of six rolled scores.
	DefaultThreshold = 65
	// MaxThreshold is the largest sum six 4d6kh3 rolls can produce.
	MaxThreshold = 6 * 18
	// MinScore is the lowest acceptable rolled score.
	MinScore = 8
	// MinPeak is the lowest acceptable highest rolled score.
	MinPeak = 15
	// MaxAttempts bounds how many sets are rolled before giving up.
	MaxAttempts = 100000
)

// ErrThresholdUnreachable is returned when no acceptable set was rolled.
var ErrThresholdUnreachable = errors.New("attribute: threshold unreachable")

var scoreExpr = dice.MustParse("4d6kh3")

// Acceptable reports whether rolls satisfy the minimum, peak, and sum
// constraints for threshold.
func Acceptable(rolls []int, threshold int) bool {
	if len(rolls) == 0 {
		return false
	}
	sum := 0
	for _, r := range rolls {
		sum += r
	}
	return sum >= threshold && slices.Min(rolls) >= MinScore && slices.Max(rolls) >= MinPeak
}

// RollScores rolls sets of six 4d6kh3 scores until one is acceptable.
//
// Precondition: roller is non-nil.
// Postcondition: on success the six rolls satisfy Acceptable; otherwise the
// error wraps ErrThresholdUnreachable.
func RollScores(roller *dice.Roller, threshold int) ([]int, error) {
	if threshold < 0 || threshold > MaxThreshold {
		return nil, fmt.Errorf("%w: %d is outside [0,%d]", ErrThresholdUnreachable, threshold, MaxThreshold)
	}
	rolls := make([]int, len(character.Abilities))
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		for i := range rolls {
			rolls[i] = roller.Roll(scoreExpr).Total()
		}
		if Acceptable(rolls, threshold) {
			return rolls, nil
		}
	}
	return nil, fmt.Errorf("%w: no set reached %d after %d attempts", ErrThresholdUnreachable, threshold, MaxAttempts)
}

// Assign binds rolls to abilities. Ranked abilities take the largest
// remaining roll in rank order; the rest draw a remaining roll uniformly at
// random in canonical order.
//
// Precondition: len(rolls) == 6; src is non-nil.
// Postcondition: the result is a permutation of rolls.
func Assign(rolls []int, ranking []character.Ability, src dice.Source) character.Scores {
	if len(rolls) != len(character.Abilities) {
		panic(fmt.Sprintf("attribute: Assign requires %d rolls, got %d", len(character.Abilities), len(rolls)))
	}
	remaining := slices.Clone(rolls)
	slices.SortFunc(remaining, func(a, b int) int { return b - a })
	var scores character.Scores
	bound := make(map[character.Ability]bool, len(character.Abilities))
	for _, a := range ranking {
		if bound[a] || !character.IsAbility(string(a)) {
			continue
		}
		scores.Set(a, remaining[0])
		remaining = remaining[1:]
		bound[a] = true
	}
	for _, a := range character.Abilities {
		if bound[a] {
			continue
		}
		i := src.Intn(len(remaining))
		scores.Set(a, remaining[i])
		remaining = slices.Delete(remaining, i, i+1)
		bound[a] = true
	}
	return scores
}

// ApplyBonus adds every racial bonus to scores. Bonuses may push a score
// above the improvement cap.
func ApplyBonus(scores character.Scores, bonus map[character.Ability]int) character.Scores {
	for a, k := range bonus {
		if character.IsAbility(string(a)) {
			scores.Add(a, k)
		}
	}
	return scores
}

// Generate rolls, assigns, and applies bonuses to c.Scores.
//
// Precondition: roller, logger, and c are non-nil.
func Generate(roller *dice.Roller, logger *zap.Logger, c *character.Character, threshold int) error {
	rolls, err := RollScores(roller, threshold)
	if err != nil {
		return err
	}
	assigned := Assign(rolls, c.Ranking, roller)
	c.Scores = ApplyBonus(assigned, c.Bonus)
	logger.Debug("ability scores generated",
		zap.Ints("rolls", rolls),
		zap.Ints("assigned", assigned[:]),
		zap.Ints("scores", c.Scores[:]),
	)
	return nil
}
