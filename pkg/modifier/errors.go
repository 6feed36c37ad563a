package modifier

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidID    = errors.New("invalid modifier identifier")
	ErrDuplicateID  = errors.New("identifier already used")
	ErrMandatory    = errors.New("mandatory modifiers may not be disabled")
	ErrIncompatible = errors.New("incompatible modifier")
	ErrDependency   = errors.New("missing modifier dependency")
	ErrOptions      = errors.New("invalid modifier options")
)

// ModifierError reports an invalid operation on a modifier.
type ModifierError struct {
	Modifier string
	ID       int
	Message  string
	Err      error
}

func (e *ModifierError) Error() string {
	return e.Modifier + " (" + strconv.Itoa(e.ID) + "): " + e.Message
}

func (e *ModifierError) Unwrap() error {
	return e.Err
}

// ExtendError reports a conflicting modifier registration.
type ExtendError struct {
	Message string
}

func (e *ExtendError) Error() string {
	return e.Message
}
