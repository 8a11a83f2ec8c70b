package assumption

import "errors"

var (
	// ErrInvalidInput marks a malformed assumption set or query.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownVariable marks a sensitivity target that is not a perturbable field.
	ErrUnknownVariable = errors.New("unknown variable")
)
