package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"rag-chat-client/api"
	"rag-chat-client/utils"
)

type fakeSession struct {
	id      string
	title   string
	history []api.Message
}

// fakeBackend is an in-memory chat backend serving the HTTP contracts
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int
	sessions []*fakeSession
	settings api.Settings
	defaults api.Settings
	kbs      []api.KnowledgeBase
	uploads  map[string][]string
	catalog  api.ModelCatalog

	ragAvailable bool
	webAvailable bool

	chatFail     bool
	chatStarted  chan struct{}
	chatGate     chan struct{}
	chatRequests []api.ChatRequest
	reply        api.ChatResponse
	calls        map[string]int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	fb := &fakeBackend{
		settings: api.Settings{Model: "llama-4-scout-17b-16e-instruct", SystemPrompt: "You are a helpful assistant.", Temperature: 0.7, MaxTokens: 1000},
		defaults: api.Settings{Model: "llama-4-scout-17b-16e-instruct", SystemPrompt: "You are a helpful assistant.", Temperature: 0.7, MaxTokens: 1000},
		uploads:  make(map[string][]string),
		catalog: api.ModelCatalog{
			Production: []api.Model{{ID: "llama-4-scout-17b-16e-instruct", Name: "Llama 4 Scout", Parameters: "109 billion", Speed: "~2600"}},
			Preview:    []api.Model{{ID: "qwen-3-32b", Name: "Qwen 3 32B", Parameters: "32 billion", Speed: "~2100"}},
		},
		ragAvailable: true,
		webAvailable: true,
		reply:        api.ChatResponse{Response: "Hello from the assistant"},
		calls:        make(map[string]int),
	}

	srv := httptest.NewServer(fb.routes())
	t.Cleanup(srv.Close)
	return fb, api.NewClient(srv.URL)
}

func (fb *fakeBackend) count(name string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[name]
}

func (fb *fakeBackend) find(id string) *fakeSession {
	for _, s := range fb.sessions {
		if s.id == id {
			return s
		}
	}
	return nil
}

func (fb *fakeBackend) addSession(title string, history ...api.Message) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.nextID++
	id := fmt.Sprintf("s%03d", fb.nextID)
	fb.sessions = append(fb.sessions, &fakeSession{id: id, title: title, history: history})
	return id
}

func (fb *fakeBackend) messageCount(id string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if s := fb.find(id); s != nil {
		return len(s.history)
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, fn http.HandlerFunc) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			fb.mu.Lock()
			fb.calls[pattern]++
			fb.mu.Unlock()
			fn(w, r)
		})
	}

	handle("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		id := fb.addSession("New Chat")
		writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
	})

	handle("GET /sessions", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		out := make([]api.SessionSummary, 0, len(fb.sessions))
		for _, s := range fb.sessions {
			out = append(out, api.SessionSummary{ID: s.id, Title: s.title, MessageCount: len(s.history)})
		}
		writeJSON(w, http.StatusOK, out)
	})

	handle("GET /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		s := fb.find(r.PathValue("id"))
		if s == nil {
			writeJSON(w, http.StatusOK, []api.Message{})
			return
		}
		writeJSON(w, http.StatusOK, s.history)
	})

	handle("POST /sessions/{id}/rename", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title string `json:"title"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		s := fb.find(r.PathValue("id"))
		if s == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
			return
		}
		s.title = body.Title
		writeJSON(w, http.StatusOK, map[string]string{"status": "success", "title": body.Title})
	})

	handle("DELETE /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		id := r.PathValue("id")
		for i, s := range fb.sessions {
			if s.id == id {
				fb.sessions = append(fb.sessions[:i], fb.sessions[i+1:]...)
				break
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	})

	handle("GET /sessions/{id}/export", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		id := r.PathValue("id")
		var history []api.Message
		if s := fb.find(id); s != nil {
			history = append(history, s.history...)
		}
		settings := fb.settings
		writeJSON(w, http.StatusOK, api.SessionBundle{SessionID: id, History: history, Settings: &settings})
	})

	handle("POST /sessions/import", func(w http.ResponseWriter, r *http.Request) {
		var bundle api.SessionBundle
		if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil || bundle.History == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid import data"})
			return
		}
		id := fb.addSession("Imported", bundle.History...)
		writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
	})

	handle("POST /clear", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		fb.mu.Lock()
		if s := fb.find(body.SessionID); s != nil {
			s.history = nil
		}
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"response": "Conversation history cleared"})
	})

	handle("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req api.ChatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		fb.mu.Lock()
		fb.chatRequests = append(fb.chatRequests, req)
		started, gate, fail, reply := fb.chatStarted, fb.chatGate, fb.chatFail, fb.reply
		fb.mu.Unlock()

		if started != nil {
			started <- struct{}{}
		}
		if gate != nil {
			<-gate
		}
		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"response": "Error: model unavailable"})
			return
		}

		fb.mu.Lock()
		if s := fb.find(req.SessionID); s != nil {
			s.history = append(s.history,
				api.Message{Role: api.RoleUser, Content: req.Message},
				api.Message{Role: api.RoleAssistant, Content: reply.Response},
			)
		}
		fb.mu.Unlock()
		writeJSON(w, http.StatusOK, reply)
	})

	handle("GET /settings", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		writeJSON(w, http.StatusOK, fb.settings)
	})

	handle("POST /settings", func(w http.ResponseWriter, r *http.Request) {
		var s api.Settings
		_ = json.NewDecoder(r.Body).Decode(&s)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.settings = s
		writeJSON(w, http.StatusOK, fb.settings)
	})

	handle("POST /settings/reset", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.settings = fb.defaults
		writeJSON(w, http.StatusOK, fb.settings)
	})

	handle("GET /models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, fb.catalog)
	})

	handle("GET /rag/status", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		writeJSON(w, http.StatusOK, api.FeatureStatus{Available: fb.ragAvailable})
	})

	handle("GET /web-search/status", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		writeJSON(w, http.StatusOK, api.FeatureStatus{Available: fb.webAvailable})
	})

	handle("GET /knowledge-bases", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		out := append([]api.KnowledgeBase{}, fb.kbs...)
		writeJSON(w, http.StatusOK, out)
	})

	handle("POST /knowledge-bases", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		for _, kb := range fb.kbs {
			if kb.Name == body.Name {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create knowledge base"})
				return
			}
		}
		fb.kbs = append(fb.kbs, api.KnowledgeBase{Name: body.Name})
		writeJSON(w, http.StatusOK, map[string]string{"message": "created", "name": body.Name})
	})

	handle("DELETE /knowledge-bases/{name}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		name := r.PathValue("name")
		for i, kb := range fb.kbs {
			if kb.Name == name {
				fb.kbs = append(fb.kbs[:i], fb.kbs[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Knowledge base not found"})
	})

	handle("POST /knowledge-bases/{name}/upload", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file provided"})
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if len(data) == 0 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process file"})
			return
		}

		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.uploads[name] = append(fb.uploads[name], header.Filename)
		for i := range fb.kbs {
			if fb.kbs[i].Name == name {
				fb.kbs[i].VectorsCount += 3
			}
		}
		writeJSON(w, http.StatusOK, api.UploadResult{Message: "ok", FileName: header.Filename, KBName: name})
	})

	return mux
}

// recordingTranscript captures everything drawn
type recordingTranscript struct {
	mu       sync.Mutex
	entries  []Entry
	captions []string
	loading  bool
	resets   int
}

func (r *recordingTranscript) Reset(entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]Entry(nil), entries...)
	r.loading = false
	r.resets++
}

func (r *recordingTranscript) Append(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

func (r *recordingTranscript) ShowLoading(caption string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captions = append(r.captions, caption)
	r.loading = true
}

func (r *recordingTranscript) HideLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
}

func (r *recordingTranscript) snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// recordingControls captures every enable/disable of the send control
type recordingControls struct {
	mu      sync.Mutex
	history []bool
	cleared int
	focused int
}

func (c *recordingControls) SetSendEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, enabled)
}

func (c *recordingControls) ClearInput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
}

func (c *recordingControls) FocusInput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused++
}

func (c *recordingControls) enabledHistory() []bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]bool(nil), c.history...)
}

// stubConfirmer answers every confirmation with answer
type stubConfirmer struct {
	answer bool
	asked  []string
}

func (c *stubConfirmer) Confirm(title, message string) bool {
	c.asked = append(c.asked, title)
	return c.answer
}

type recordingNotifier struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (n *recordingNotifier) ShowError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) ShowInfo(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, message)
}

func testLogger() *utils.Logger {
	return utils.NewNopLogger()
}
