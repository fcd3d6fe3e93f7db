package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownParameter is returned when a name does not match any parameter
// of the model.
var ErrUnknownParameter = errors.New("unknown parameter")

// DefinitionError reports a model definition that cannot be built or
// extended: an unsupported unit type, invalid sizes, or a constraint or
// penalty attached to a parameter the model does not have.
type DefinitionError struct {
	Model  string // Model variant (e.g., "RBM")
	Field  string // Offending field (e.g., "visible", "constraints")
	Reason string // Human-readable explanation
	Err    error  // Underlying cause, if any
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s: %s", e.Model, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *DefinitionError) Unwrap() error {
	return e.Err
}
