package processor

import "fmt"

// Error is a normalised processor failure. Message is the processor's own
// human-readable message and is safe to pass back to callers.
type Error struct {
	Op         string
	Message    string
	Code       string
	Type       string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("processor %s failed", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}
