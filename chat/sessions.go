package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rag-chat-client/api"
	"rag-chat-client/utils"
)

// SessionsView is what the session list renders
type SessionsView struct {
	ActiveID string
	Sessions []api.SessionSummary
}

// SessionStore owns the active session id and the cached session index.
// Operations that change the index finish by refreshing it.
type SessionStore struct {
	backend    SessionBackend
	transcript Transcript
	confirm    Confirmer
	logger     *utils.Logger

	mu       sync.RWMutex
	activeID string
	index    []api.SessionSummary
	subs     []func(SessionsView)
}

// NewSessionStore creates a store. A nil transcript discards output and a nil confirmer
// declines every destructive action.
func NewSessionStore(backend SessionBackend, transcript Transcript, confirm Confirmer, logger *utils.Logger) *SessionStore {
	if transcript == nil {
		transcript = nopTranscript{}
	}
	if confirm == nil {
		confirm = declineAll{}
	}
	return &SessionStore{
		backend:    backend,
		transcript: transcript,
		confirm:    confirm,
		logger:     logger,
	}
}

// ActiveID returns the active session id, "" if none
func (s *SessionStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Sessions returns a copy of the cached index
func (s *SessionStore) Sessions() []api.SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]api.SessionSummary, len(s.index))
	copy(out, s.index)
	return out
}

// Find returns the cached summary for id
func (s *SessionStore) Find(id string) (api.SessionSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, summary := range s.index {
		if summary.ID == id {
			return summary, true
		}
	}
	return api.SessionSummary{}, false
}

// Subscribe registers fn for index and active-session changes
func (s *SessionStore) Subscribe(fn func(SessionsView)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *SessionStore) publish() {
	s.mu.RLock()
	view := SessionsView{ActiveID: s.activeID, Sessions: make([]api.SessionSummary, len(s.index))}
	copy(view.Sessions, s.index)
	subs := make([]func(SessionsView), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(view)
	}
}

func (s *SessionStore) setActive(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
}

// Create starts a new session, clears the transcript and makes it active
func (s *SessionStore) Create(ctx context.Context) (string, error) {
	id, err := s.backend.CreateSession(ctx)
	if err != nil {
		s.logger.Error("Failed to create session: %v", err)
		return "", err
	}

	s.setActive(id)
	s.transcript.Reset(nil)
	s.logger.Info("Created session %s", id)

	s.refreshQuietly(ctx)
	return id, nil
}

// Refresh reloads the session index from the backend and publishes it
func (s *SessionStore) Refresh(ctx context.Context) ([]api.SessionSummary, error) {
	sessions, err := s.backend.ListSessions(ctx)
	if err != nil {
		s.logger.Error("Failed to list sessions: %v", err)
		return nil, err
	}

	s.mu.Lock()
	s.index = sessions
	s.mu.Unlock()

	s.publish()
	return s.Sessions(), nil
}

// refreshQuietly refreshes after a mutation that already succeeded; a failure is only logged.
func (s *SessionStore) refreshQuietly(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Session index is stale: %v", err)
		s.publish()
	}
}

// Load fetches a transcript, makes the session active and shows its non-system messages
func (s *SessionStore) Load(ctx context.Context, id string) ([]api.Message, error) {
	messages, err := s.backend.GetSession(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load session %s: %v", id, err)
		return nil, err
	}

	visible := VisibleMessages(messages)
	s.setActive(id)
	s.transcript.Reset(TranscriptEntries(visible))
	s.logger.Info("Loaded session %s (%d messages)", id, len(visible))

	s.publish()
	return visible, nil
}

// Open makes preferredID active when it is still in the index, otherwise creates a new session
func (s *SessionStore) Open(ctx context.Context, preferredID string) (string, error) {
	if _, err := s.Refresh(ctx); err != nil {
		return "", err
	}
	if preferredID != "" {
		if _, ok := s.Find(preferredID); ok {
			if _, err := s.Load(ctx, preferredID); err == nil {
				return preferredID, nil
			}
		}
	}
	return s.Create(ctx)
}

// Rename sets a new title; an empty title after trimming is a ValidationError
func (s *SessionStore) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if err := validate.Var(title, "required"); err != nil {
		return invalid("title", "Title cannot be empty")
	}

	if err := s.backend.RenameSession(ctx, id, title); err != nil {
		s.logger.Error("Failed to rename session %s: %v", id, err)
		return err
	}
	s.logger.Info("Renamed session %s to %q", id, title)

	s.refreshQuietly(ctx)
	return nil
}

// Delete removes a session after confirmation. Declining returns false and changes nothing.
// Deleting the active session creates a new one so there is always an active session.
func (s *SessionStore) Delete(ctx context.Context, id string) (bool, error) {
	title := "this chat"
	if summary, ok := s.Find(id); ok && summary.Title != "" {
		title = summary.Title
	}
	msg := fmt.Sprintf("Delete chat session?\n\nTitle: %s\n\nThis action cannot be undone. All messages in this chat will be permanently deleted.", title)
	if !s.confirm.Confirm("Delete Session", msg) {
		return false, nil
	}

	if err := s.backend.DeleteSession(ctx, id); err != nil {
		s.logger.Error("Failed to delete session %s: %v", id, err)
		return false, err
	}
	s.logger.Info("Deleted session %s", id)

	if s.ActiveID() == id {
		if _, err := s.Create(ctx); err != nil {
			s.setActive("")
			s.transcript.Reset(nil)
			s.refreshQuietly(ctx)
			return true, fmt.Errorf("failed to replace deleted active session: %w", err)
		}
		return true, nil
	}

	s.refreshQuietly(ctx)
	return true, nil
}

// Export returns the portable bundle for a session
func (s *SessionStore) Export(ctx context.Context, id string) (*api.SessionBundle, error) {
	bundle, err := s.backend.ExportSession(ctx, id)
	if err != nil {
		s.logger.Error("Failed to export session %s: %v", id, err)
		return nil, err
	}
	return bundle, nil
}

// Import submits a bundle, then loads the new session as active
func (s *SessionStore) Import(ctx context.Context, bundle *api.SessionBundle) (string, error) {
	if bundle == nil || bundle.History == nil {
		return "", invalid("history", "Invalid import data: missing history")
	}

	id, err := s.backend.ImportSession(ctx, bundle)
	if err != nil {
		s.logger.Error("Failed to import session: %v", err)
		return "", err
	}
	s.logger.Info("Imported session %s (%d messages)", id, len(bundle.History))

	if _, err := s.Load(ctx, id); err != nil {
		s.refreshQuietly(ctx)
		return id, err
	}
	s.refreshQuietly(ctx)
	return id, nil
}

// Clear empties the active session's transcript after confirmation
func (s *SessionStore) Clear(ctx context.Context) (bool, error) {
	id := s.ActiveID()
	if id == "" {
		return false, ErrNoActiveSession
	}
	if !s.confirm.Confirm("Clear Conversation", "Clear all messages in this chat? This action cannot be undone.") {
		return false, nil
	}

	if err := s.backend.ClearSession(ctx, id); err != nil {
		s.logger.Error("Failed to clear session %s: %v", id, err)
		return false, err
	}
	s.transcript.Reset(nil)
	s.logger.Info("Cleared session %s", id)

	s.refreshQuietly(ctx)
	return true, nil
}
