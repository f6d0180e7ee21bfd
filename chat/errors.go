package chat

import (
	"errors"
	"fmt"

	"rag-chat-client/api"
	"rag-chat-client/utils"
)

var (
	// ErrNoActiveSession is returned when an operation needs an active session and there is none
	ErrNoActiveSession = errors.New("no active session")
	// ErrBusy is returned when an exchange is already in flight for the session
	ErrBusy = errors.New("a message is already being sent for this session")
)

// ValidationError is a local rejection raised before any network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// UserMessage turns an error into text suitable for a dialog
func UserMessage(action string, err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}

	for _, local := range []error{utils.ErrMissingHistory, utils.ErrEmptyFile, utils.ErrFileTooLarge, utils.ErrUnsupportedType} {
		if errors.Is(err, local) {
			return fmt.Sprintf("Failed to %s: %v", action, err)
		}
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return fmt.Sprintf("Failed to %s: %s", action, httpErr.Message)
	}

	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		return fmt.Sprintf("Failed to %s. Please check that the server is reachable and try again.", action)
	}

	return fmt.Sprintf("Failed to %s. Please try again.", action)
}
