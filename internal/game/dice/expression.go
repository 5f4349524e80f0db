package dice

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned by Parse for text that is not a dice
// expression.
var ErrInvalidExpression = errors.New("dice: invalid expression")

// exprPattern matches "d20", "2d6", "2d6+3", "1d8-1", and "4d6kh3".
var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Expression is a parsed dice expression.
//
// Invariant: Count >= 1, Sides >= 2, 0 <= Keep < Count.
type Expression struct {
	Raw      string
	Count    int
	Sides    int
	Keep     int // keep the highest Keep dice; 0 keeps all
	Modifier int
}

// Parse parses a dice expression.
//
// Precondition: none.
// Postcondition: returns an Expression satisfying its invariant, or an error
// wrapping ErrInvalidExpression.
func Parse(s string) (Expression, error) {
	raw := strings.TrimSpace(s)
	m := exprPattern.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, s)
	}
	e := Expression{Raw: raw, Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		e.Keep, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		e.Modifier, _ = strconv.Atoi(m[4])
	}
	switch {
	case e.Count < 1:
		return Expression{}, fmt.Errorf("%w: %q needs at least one die", ErrInvalidExpression, s)
	case e.Sides < 2:
		return Expression{}, fmt.Errorf("%w: %q needs at least two sides", ErrInvalidExpression, s)
	case m[3] != "" && (e.Keep < 1 || e.Keep >= e.Count):
		return Expression{}, fmt.Errorf("%w: %q keeps %d of %d dice", ErrInvalidExpression, s, e.Keep, e.Count)
	}
	return e, nil
}

// MustParse parses s and panics on error. Intended for package-level values.
func MustParse(s string) Expression {
	e, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return e
}

// Roll evaluates e against src.
//
// Precondition: e came from Parse; src is non-nil.
// Postcondition: len(Kept) == Keep when Keep > 0, otherwise Count.
func (e Expression) Roll(src Source) Result {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	res := Result{Expression: e.Raw, Kept: rolled, Modifier: e.Modifier}
	if e.Keep > 0 {
		slices.SortFunc(rolled, func(a, b int) int { return b - a })
		res.Kept = rolled[:e.Keep]
		res.Dropped = rolled[e.Keep:]
	}
	return res
}

// String returns the canonical form of e.
func (e Expression) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dd%d", e.Count, e.Sides)
	if e.Keep > 0 {
		fmt.Fprintf(&b, "kh%d", e.Keep)
	}
	if e.Modifier != 0 {
		fmt.Fprintf(&b, "%+d", e.Modifier)
	}
	return b.String()
}
