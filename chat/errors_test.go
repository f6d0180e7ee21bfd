package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"rag-chat-client/api"
	"rag-chat-client/utils"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", invalid("title", "Title cannot be empty"), "Title cannot be empty"},
		{"wrapped validation", fmt.Errorf("rename: %w", invalid("title", "Title cannot be empty")), "Title cannot be empty"},
		{"backend message", &api.HTTPError{Op: "rename session", StatusCode: 404, Message: "Session not found"}, "Failed to rename session: Session not found"},
		{"bare status", &api.HTTPError{Op: "rename session", StatusCode: 500}, "Failed to rename session. Please try again."},
		{"network", &api.NetworkError{Op: "rename session", Err: errors.New("connection refused")}, "Failed to rename session. Please check that the server is reachable and try again."},
		{"local file", fmt.Errorf("notes.txt: %w", utils.ErrEmptyFile), "Failed to rename session: notes.txt: " + utils.ErrEmptyFile.Error()},
		{"other", errors.New("boom"), "Failed to rename session. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage("rename session", tt.err))
		})
	}
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(invalid("name", "required")))
	assert.False(t, IsValidation(ErrNoActiveSession))
	assert.False(t, IsValidation(nil))
}
