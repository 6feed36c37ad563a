package field

import "errors"

var (
	ErrInvalidSpec      = errors.New("invalid field options")
	ErrSizeOutOfRange   = errors.New("unauthorized field size")
	ErrValueOutOfRange  = errors.New("value should be between the minimum and maximum")
	ErrUnknownOption    = errors.New("unknown option")
	ErrIncompatibleType = errors.New("incompatible field type")
	ErrInvalidState     = errors.New("saved bytes do not match the saved size")
)

// FieldError reports a value or option rejected by a field.
type FieldError struct {
	Field   string
	Type    string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	name := e.Field
	if name == "" {
		name = "Field"
	}
	return name + " (" + e.Type + "): " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func newError(name, kind string, sentinel error, msg string) *FieldError {
	return &FieldError{Field: name, Type: kind, Message: msg, Err: sentinel}
}
