package tensor

import "fmt"

// ShapeError reports operands whose shapes cannot be combined by a backend
// primitive.
//
// Backends panic with a *ShapeError; callers in this module never recover it.
type ShapeError struct {
	Op   string // Primitive that rejected the operands (e.g., "dot")
	Got  Shape  // Offending operand shape
	Want Shape  // Shape the primitive required
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape mismatch: got %s, want %s", e.Op, e.Got, e.Want)
}

// CheckShape panics with a *ShapeError if got and want differ.
// A negative dimension in want matches any size.
func CheckShape(op string, got, want Shape) {
	if len(got) != len(want) {
		panic(&ShapeError{Op: op, Got: got.Clone(), Want: want.Clone()})
	}
	for i := range want {
		if want[i] >= 0 && got[i] != want[i] {
			panic(&ShapeError{Op: op, Got: got.Clone(), Want: want.Clone()})
		}
	}
}
