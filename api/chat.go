package api

import (
	"context"
	"net/http"
)

// Chat sends one user message and waits for the assistant reply
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON(ctx, "chat", http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSettings returns the persisted model configuration
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.doJSON(ctx, "load settings", http.MethodGet, "/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings persists the model configuration and returns what the backend stored
func (c *Client) SaveSettings(ctx context.Context, s Settings) (*Settings, error) {
	var saved Settings
	if err := c.doJSON(ctx, "save settings", http.MethodPost, "/settings", s, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ResetSettings restores the backend defaults
func (c *Client) ResetSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.doJSON(ctx, "reset settings", http.MethodPost, "/settings/reset", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Models returns the model catalogue
func (c *Client) Models(ctx context.Context) (*ModelCatalog, error) {
	var catalog ModelCatalog
	if err := c.doJSON(ctx, "list models", http.MethodGet, "/models", nil, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// RAGStatus reports whether retrieval is available
func (c *Client) RAGStatus(ctx context.Context) (*FeatureStatus, error) {
	var st FeatureStatus
	if err := c.doJSON(ctx, "rag status", http.MethodGet, "/rag/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// WebSearchStatus reports whether web search is available
func (c *Client) WebSearchStatus(ctx context.Context) (*FeatureStatus, error) {
	var st FeatureStatus
	if err := c.doJSON(ctx, "web search status", http.MethodGet, "/web-search/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
