package api

import (
	"context"
	"net/http"
)

type sessionIDResponse struct {
	SessionID string `json:"session_id"`
}

// CreateSession asks the backend for a new, empty session
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var resp sessionIDResponse
	if err := c.doJSON(ctx, "create session", http.MethodPost, "/sessions", nil, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// ListSessions returns the session index in backend order
func (c *Client) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	var sessions []SessionSummary
	if err := c.doJSON(ctx, "list sessions", http.MethodGet, "/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession returns the full transcript of a session
func (c *Client) GetSession(ctx context.Context, id string) ([]Message, error) {
	var messages []Message
	if err := c.doJSON(ctx, "load session", http.MethodGet, "/sessions/"+escape(id), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// RenameSession sets a session title
func (c *Client) RenameSession(ctx context.Context, id, title string) error {
	body := map[string]string{"title": title}
	return c.doJSON(ctx, "rename session", http.MethodPost, "/sessions/"+escape(id)+"/rename", body, nil)
}

// DeleteSession removes a session
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.doJSON(ctx, "delete session", http.MethodDelete, "/sessions/"+escape(id), nil, nil)
}

// ExportSession returns the portable bundle for a session
func (c *Client) ExportSession(ctx context.Context, id string) (*SessionBundle, error) {
	var bundle SessionBundle
	if err := c.doJSON(ctx, "export session", http.MethodGet, "/sessions/"+escape(id)+"/export", nil, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// ImportSession submits a bundle and returns the id of the new session
func (c *Client) ImportSession(ctx context.Context, bundle *SessionBundle) (string, error) {
	var resp sessionIDResponse
	if err := c.doJSON(ctx, "import session", http.MethodPost, "/sessions/import", bundle, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

// ClearSession empties a session transcript
func (c *Client) ClearSession(ctx context.Context, id string) error {
	body := map[string]string{"session_id": id}
	return c.doJSON(ctx, "clear session", http.MethodPost, "/clear", body, nil)
}
