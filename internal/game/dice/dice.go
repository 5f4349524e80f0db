// Package dice rolls the polyhedral expressions used while generating a
// character: ability score rolls, rolled hit points, and height/weight
// modifiers.
package dice

import (
	"fmt"
	"strings"
)

// Source is the randomness provider for every random decision in the
// generator.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Result is the audit trail of one evaluated Expression.
//
// Postcondition: Total() == sum(Kept) + Modifier.
type Result struct {
	Expression string
	Kept       []int // dice counted toward the total, highest first when a keep rule applies
	Dropped    []int // dice discarded by a keep-highest rule
	Modifier   int
}

// Total returns the sum of the kept dice plus the modifier.
func (r Result) Total() int {
	total := r.Modifier
	for _, d := range r.Kept {
		total += d
	}
	return total
}

// String renders the roll as "4d6kh3 → [6 5 3] drop [1] = 14".
//
// Precondition: r.Expression is non-empty.
func (r Result) String() string {
	if r.Expression == "" {
		panic("dice: Result.String precondition violated: Expression must be non-empty")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s → %v", r.Expression, r.Kept)
	if len(r.Dropped) > 0 {
		fmt.Fprintf(&b, " drop %v", r.Dropped)
	}
	if r.Modifier != 0 {
		fmt.Fprintf(&b, " %+d", r.Modifier)
	}
	fmt.Fprintf(&b, " = %d", r.Total())
	return b.String()
}
