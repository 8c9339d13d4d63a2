package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeBadRoom    = "bad_room_id"
	ErrCodeBadRequest = "bad_request"
)

var ErrBadRoom = errors.New("invalid room id")

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
