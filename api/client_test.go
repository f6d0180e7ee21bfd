package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestChatSendsNullKnowledgeBase(t *testing.T) {
	var raw map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = io.WriteString(w, `{"response":"hi","rag_sources":[{"file_name":"a.pdf","score":0.5}]}`)
	}))

	resp, err := client.Chat(context.Background(), ChatRequest{Message: "hello", SessionID: "s1", UseWebSearch: true})
	require.NoError(t, err)

	assert.Equal(t, "hi", resp.Response)
	require.Len(t, resp.RAGSources, 1)
	assert.Equal(t, "a.pdf", resp.RAGSources[0].FileName)

	v, present := raw["kb_name"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, false, raw["use_rag"])
	assert.Equal(t, true, raw["use_web_search"])
	assert.Equal(t, "s1", raw["session_id"])
}

func TestHTTPErrorCarriesBackendMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Title cannot be empty"}`)
	}))

	err := client.RenameSession(context.Background(), "s1", " ")
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Title cannot be empty", httpErr.Message)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestChatFailureBodyUsesResponseField(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"response":"Error: upstream down"}`)
	}))

	_, err := client.Chat(context.Background(), ChatRequest{Message: "x", SessionID: "s"})
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "Error: upstream down", httpErr.Message)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(srv.URL)
	srv.Close()

	_, err := client.ListSessions(context.Background())
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "list sessions", netErr.Op)
}

func TestUndecodableBodyIsNetworkError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))

	_, err := client.GetSettings(context.Background())
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{}`)
	}))

	require.NoError(t, client.DeleteKnowledgeBase(context.Background(), "team docs"))
	assert.Equal(t, "/knowledge-bases/team%20docs", gotPath)
}

func TestUploadFileSendsMultipartFile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/knowledge-bases/docs/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "notes.md", header.Filename)
		assert.Equal(t, "text/markdown", header.Header.Get("Content-Type"))
		assert.Equal(t, "# notes", string(data))
		_, _ = io.WriteString(w, `{"message":"ok","file_name":"notes.md","kb_name":"docs"}`)
	}))

	res, err := client.UploadFile(context.Background(), "docs", "notes.md", "text/markdown", strings.NewReader("# notes"))
	require.NoError(t, err)
	assert.Equal(t, "docs", res.KBName)
}

func TestExportImportBundleShape(t *testing.T) {
	var imported SessionBundle
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions/abc/export", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"session_id":"abc","history":[{"role":"user","content":"q"},{"role":"assistant","content":"a"}],"settings":{"model":"m","system_prompt":"p","temperature":0.7,"max_tokens":1000}}`)
	})
	mux.HandleFunc("/sessions/import", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&imported))
		_, _ = io.WriteString(w, `{"session_id":"new"}`)
	})
	client := newTestClient(t, mux)

	bundle, err := client.ExportSession(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, bundle.Settings)
	assert.Equal(t, 1000, bundle.Settings.MaxTokens)

	id, err := client.ImportSession(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, "new", id)
	assert.Equal(t, bundle.History, imported.History)
}

func TestModelCatalogFind(t *testing.T) {
	catalog := ModelCatalog{
		Production: []Model{{ID: "a", Name: "A"}},
		Preview:    []Model{{ID: "b", Name: "B"}},
	}
	m, ok := catalog.Find("b")
	assert.True(t, ok)
	assert.Equal(t, "B", m.Name)
	_, ok = catalog.Find("zzz")
	assert.False(t, ok)
}
