package chat

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rag-chat-client/api"
	"rag-chat-client/utils"
)

// NoKnowledgeBaseLabel is the "none" option of knowledge base selects
const NoKnowledgeBaseLabel = "None (No RAG)"

// KnowledgeBaseLabel is how a knowledge base appears in selects
func KnowledgeBaseLabel(kb api.KnowledgeBase) string {
	return fmt.Sprintf("%s (%d chunks)", kb.Name, kb.VectorsCount)
}

// UploadReport aggregates a multi-file upload
type UploadReport struct {
	Total     int
	Succeeded int
	Failures  map[string]error
}

func (r UploadReport) String() string {
	return fmt.Sprintf("Uploaded %d of %d files", r.Succeeded, r.Total)
}

// KnowledgeBaseManager keeps the knowledge base list and notifies every view that shows it
type KnowledgeBaseManager struct {
	backend KnowledgeBackend
	confirm Confirmer
	checker *utils.UploadChecker
	logger  *utils.Logger

	mu   sync.RWMutex
	kbs  []api.KnowledgeBase
	subs []func([]api.KnowledgeBase)
}

// NewKnowledgeBaseManager creates a manager; a nil confirmer declines deletions
func NewKnowledgeBaseManager(backend KnowledgeBackend, confirm Confirmer, logger *utils.Logger) *KnowledgeBaseManager {
	if confirm == nil {
		confirm = declineAll{}
	}
	return &KnowledgeBaseManager{
		backend: backend,
		confirm: confirm,
		checker: utils.NewUploadChecker(),
		logger:  logger,
	}
}

// Subscribe registers fn for list changes
func (m *KnowledgeBaseManager) Subscribe(fn func([]api.KnowledgeBase)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// KnowledgeBases returns the cached list
func (m *KnowledgeBaseManager) KnowledgeBases() []api.KnowledgeBase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]api.KnowledgeBase, len(m.kbs))
	copy(out, m.kbs)
	return out
}

// Names returns the cached knowledge base names
func (m *KnowledgeBaseManager) Names() []string {
	kbs := m.KnowledgeBases()
	names := make([]string, 0, len(kbs))
	for _, kb := range kbs {
		names = append(names, kb.Name)
	}
	return names
}

// List reloads the list from the backend and notifies subscribers
func (m *KnowledgeBaseManager) List(ctx context.Context) ([]api.KnowledgeBase, error) {
	kbs, err := m.backend.ListKnowledgeBases(ctx)
	if err != nil {
		m.logger.Error("Failed to list knowledge bases: %v", err)
		return nil, err
	}

	m.mu.Lock()
	m.kbs = kbs
	subs := make([]func([]api.KnowledgeBase), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(m.KnowledgeBases())
	}
	return m.KnowledgeBases(), nil
}

func (m *KnowledgeBaseManager) refreshQuietly(ctx context.Context) {
	if _, err := m.List(ctx); err != nil {
		m.logger.Warn("Knowledge base list is stale: %v", err)
	}
}

// Create adds a knowledge base. Empty names are rejected locally; duplicates by the backend.
func (m *KnowledgeBaseManager) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required"); err != nil {
		return invalid("name", "Please enter a knowledge base name")
	}

	if err := m.backend.CreateKnowledgeBase(ctx, name); err != nil {
		m.logger.Error("Failed to create knowledge base %q: %v", name, err)
		return err
	}
	m.logger.Info("Created knowledge base %q", name)

	m.refreshQuietly(ctx)
	return nil
}

// Upload sends one file to a knowledge base. Empty, oversized or unsupported files
// are rejected without a request.
func (m *KnowledgeBaseManager) Upload(ctx context.Context, kbName, path string) error {
	if strings.TrimSpace(kbName) == "" {
		return invalid("knowledge_base", "Please select a knowledge base")
	}
	if _, err := m.checker.Check(path); err != nil {
		m.logger.Warn("Skipping upload of %s: %v", path, err)
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := m.backend.UploadFile(ctx, kbName, filepath.Base(path), utils.GetMimeType(path), f); err != nil {
		m.logger.Error("Failed to upload %s to %q: %v", path, kbName, err)
		return err
	}
	m.logger.Info("Uploaded %s to knowledge base %q", filepath.Base(path), kbName)
	return nil
}

// UploadFiles uploads paths one after another; a failed file does not stop the rest.
// The list is refreshed afterwards because chunk counts changed.
func (m *KnowledgeBaseManager) UploadFiles(ctx context.Context, kbName string, paths []string) (UploadReport, error) {
	report := UploadReport{Total: len(paths), Failures: make(map[string]error)}
	if strings.TrimSpace(kbName) == "" {
		return report, invalid("knowledge_base", "Please select a knowledge base")
	}
	if len(paths) == 0 {
		return report, invalid("files", "Please select files to upload")
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := m.Upload(ctx, kbName, p); err != nil {
			report.Failures[p] = err
			continue
		}
		report.Succeeded++
	}

	m.refreshQuietly(ctx)
	return report, nil
}

// Delete removes a knowledge base after confirmation and refreshes every subscribed view.
// Declining returns false and changes nothing.
func (m *KnowledgeBaseManager) Delete(ctx context.Context, name string) (bool, error) {
	if !m.confirm.Confirm("Delete Knowledge Base", fmt.Sprintf("Are you sure you want to delete %q?", name)) {
		return false, nil
	}

	err := m.backend.DeleteKnowledgeBase(ctx, name)
	switch {
	case api.IsStatus(err, http.StatusNotFound):
		// removed elsewhere; the list is stale
		m.logger.Warn("Knowledge base %q was already deleted", name)
	case err != nil:
		m.logger.Error("Failed to delete knowledge base %q: %v", name, err)
		return false, err
	default:
		m.logger.Info("Deleted knowledge base %q", name)
	}

	m.refreshQuietly(ctx)
	return true, nil
}
