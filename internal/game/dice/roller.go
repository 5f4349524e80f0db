package dice

import "go.uber.org/zap"

// Roller evaluates expressions against a Source and logs every roll at debug
// level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewRoller requires a non-nil source and logger")
	}
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source { return r.src }

// Intn delegates to the underlying Source so a Roller can stand in for one.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) Result {
	res := expr.Roll(r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("kept", res.Kept),
		zap.Ints("dropped", res.Dropped),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr parses and rolls expr.
//
// Postcondition: returns the logged Result or a parse error.
func (r *Roller) RollExpr(expr string) (Result, error) {
	e, err := Parse(expr)
	if err != nil {
		return Result{}, err
	}
	return r.Roll(e), nil
}
