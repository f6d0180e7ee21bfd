package chat

import (
	"context"
	"io"

	"rag-chat-client/api"
)

// SessionBackend is the part of the backend the session store needs
type SessionBackend interface {
	CreateSession(ctx context.Context) (string, error)
	ListSessions(ctx context.Context) ([]api.SessionSummary, error)
	GetSession(ctx context.Context, id string) ([]api.Message, error)
	RenameSession(ctx context.Context, id, title string) error
	DeleteSession(ctx context.Context, id string) error
	ExportSession(ctx context.Context, id string) (*api.SessionBundle, error)
	ImportSession(ctx context.Context, bundle *api.SessionBundle) (string, error)
	ClearSession(ctx context.Context, id string) error
}

// SettingsBackend covers settings, model catalogue and feature status
type SettingsBackend interface {
	GetSettings(ctx context.Context) (*api.Settings, error)
	SaveSettings(ctx context.Context, s api.Settings) (*api.Settings, error)
	ResetSettings(ctx context.Context) (*api.Settings, error)
	Models(ctx context.Context) (*api.ModelCatalog, error)
	RAGStatus(ctx context.Context) (*api.FeatureStatus, error)
	WebSearchStatus(ctx context.Context) (*api.FeatureStatus, error)
}

// KnowledgeBackend covers knowledge base management
type KnowledgeBackend interface {
	ListKnowledgeBases(ctx context.Context) ([]api.KnowledgeBase, error)
	CreateKnowledgeBase(ctx context.Context, name string) error
	DeleteKnowledgeBase(ctx context.Context, name string) error
	UploadFile(ctx context.Context, kbName, fileName, contentType string, content io.Reader) (*api.UploadResult, error)
}

// ChatBackend sends one exchange
type ChatBackend interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// Transcript is the visible conversation
type Transcript interface {
	// Reset replaces everything shown with entries.
	Reset(entries []Entry)
	Append(entries ...Entry)
	ShowLoading(caption string)
	HideLoading()
}

// InputControls is the message entry and its send button
type InputControls interface {
	SetSendEnabled(enabled bool)
	ClearInput()
	FocusInput()
}

// Confirmer asks the user to approve a destructive action. It blocks until answered.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Notifier shows messages to the user
type Notifier interface {
	ShowError(message string)
	ShowInfo(message string)
}

type nopTranscript struct{}

func (nopTranscript) Reset([]Entry)      {}
func (nopTranscript) Append(...Entry)    {}
func (nopTranscript) ShowLoading(string) {}
func (nopTranscript) HideLoading()       {}

type nopControls struct{}

func (nopControls) SetSendEnabled(bool) {}
func (nopControls) ClearInput()         {}
func (nopControls) FocusInput()         {}

// declineAll refuses every confirmation
type declineAll struct{}

func (declineAll) Confirm(string, string) bool { return false }

type nopNotifier struct{}

func (nopNotifier) ShowError(string) {}
func (nopNotifier) ShowInfo(string)  {}
