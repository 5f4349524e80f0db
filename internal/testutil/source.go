package testutil

// FixedSource replays Values in a cycle, reducing each modulo n.
//
// Precondition: Values is non-empty.
type FixedSource struct {
	Values []int
	next   int
}

// NewFixedSource returns a FixedSource over values.
func NewFixedSource(values ...int) *FixedSource {
	if len(values) == 0 {
		panic("testutil: NewFixedSource requires at least one value")
	}
	return &FixedSource{Values: values}
}

// Intn implements dice.Source.
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return ((v % n) + n) % n
}
