package schedule

import "fmt"

// ValidationError reports a missing or malformed input. The rejected operation made no changes.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a reference to an obligation, edit session or payment row that does not exist.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return e.What + " not found" }

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...any) error {
	return &NotFoundError{What: fmt.Sprintf(format, args...)}
}

// TransientIOError wraps a failed call across the persistence boundary. Retrying may succeed.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransientIOError) Unwrap() error { return e.Err }
