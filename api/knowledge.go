package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// ListKnowledgeBases returns every knowledge base with its chunk count
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBase, error) {
	var kbs []KnowledgeBase
	if err := c.doJSON(ctx, "list knowledge bases", http.MethodGet, "/knowledge-bases", nil, &kbs); err != nil {
		return nil, err
	}
	return kbs, nil
}

// CreateKnowledgeBase creates an empty knowledge base
func (c *Client) CreateKnowledgeBase(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	return c.doJSON(ctx, "create knowledge base", http.MethodPost, "/knowledge-bases", body, nil)
}

// DeleteKnowledgeBase removes a knowledge base and its documents
func (c *Client) DeleteKnowledgeBase(ctx context.Context, name string) error {
	return c.doJSON(ctx, "delete knowledge base", http.MethodDelete, "/knowledge-bases/"+escape(name), nil, nil)
}

// UploadFile sends a single document to a knowledge base as multipart form field "file"
func (c *Client) UploadFile(ctx context.Context, kbName, fileName, contentType string, content io.Reader) (*UploadResult, error) {
	const op = "upload file"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create form part: %w", op, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("%s: failed to read file: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s: failed to finish form: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/knowledge-bases/"+escape(kbName)+"/upload", &buf, w.FormDataContentType())
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	var result UploadResult
	if err := c.do(req, op, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
