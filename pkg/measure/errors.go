package measure

import "fmt"

// UnitParseError is returned when a quantity literal is malformed or names an
// unregistered unit.
type UnitParseError struct {
	Literal string
	Reason  string
}

func (e UnitParseError) Error() string {
	return fmt.Sprintf("cannot parse quantity %q: %s", e.Literal, e.Reason)
}

// DimensionMismatchError is returned when an operation requires operands of
// the same dimension or a conversion target of the source dimension.
type DimensionMismatchError struct {
	Op    string
	Left  Dimension
	Right Dimension
}

func (e DimensionMismatchError) Error() string {
	return fmt.Sprintf("cannot %s %s and %s quantities", e.Op, e.Left, e.Right)
}

// UnsupportedOperationError is returned when multiplying or dividing
// quantities would produce a dimension outside the recognized set.
type UnsupportedOperationError struct {
	Op    string
	Left  Dimension
	Right Dimension
}

func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("cannot %s %s by %s: no recognized result dimension", e.Op, e.Left, e.Right)
}
