package character

import "slices"

// Ability is one of the six ability names.
type Ability string

const (
	Strength     Ability = "Strength"
	Dexterity    Ability = "Dexterity"
	Constitution Ability = "Constitution"
	Intelligence Ability = "Intelligence"
	Wisdom       Ability = "Wisdom"
	Charisma     Ability = "Charisma"
)

// Abilities lists the six abilities in canonical order.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// Sexes lists the recognized sexes.
var Sexes = []string{"Female", "Male"}

const (
	// MinLevel and MaxLevel bound a character's level.
	MinLevel = 1
	MaxLevel = 20
	// ScoreCap is the highest score an ability improvement may produce.
	ScoreCap = 20
)

// IsAbility reports whether name is one of the six abilities.
func IsAbility(name string) bool {
	return slices.Contains(Abilities, Ability(name))
}

// Index returns the canonical position of a, or -1.
func (a Ability) Index() int { return slices.Index(Abilities, a) }

// Short returns the three-letter abbreviation, e.g. "Str".
func (a Ability) Short() string {
	if len(a) < 3 {
		return string(a)
	}
	return string(a[:3])
}

// AbilityNames converts abilities to plain strings.
func AbilityNames(as []Ability) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = string(a)
	}
	return out
}

// Scores holds one score per ability in canonical order.
type Scores [6]int

// Get returns the score of a.
//
// Precondition: a is one of Abilities.
func (s Scores) Get(a Ability) int { return s[a.Index()] }

// Set stores v as the score of a.
//
// Precondition: a is one of Abilities.
func (s *Scores) Set(a Ability, v int) { s[a.Index()] = v }

// Add adds d to the score of a.
//
// Precondition: a is one of Abilities.
func (s *Scores) Add(a Ability, d int) { s[a.Index()] += d }

// Sum returns the total of all six scores.
func (s Scores) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Min returns the lowest score.
func (s Scores) Min() int { return slices.Min(s[:]) }

// Max returns the highest score.
func (s Scores) Max() int { return slices.Max(s[:]) }
