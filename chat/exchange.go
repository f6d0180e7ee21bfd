package chat

import (
	"context"
	"strings"
	"sync"

	"rag-chat-client/api"
	"rag-chat-client/utils"
)

// RequestState governs whether a session can send
type RequestState int

const (
	RequestIdle RequestState = iota
	RequestSending
	RequestError
)

func (s RequestState) String() string {
	switch s {
	case RequestSending:
		return "sending"
	case RequestError:
		return "error"
	default:
		return "idle"
	}
}

// Outcome is the terminal state of one Send call
type Outcome int

const (
	// OutcomeSkipped means a precondition failed and nothing happened
	OutcomeSkipped Outcome = iota
	OutcomeRendered
	OutcomeFailed
)

// ExchangeController runs one chat exchange at a time per session
type ExchangeController struct {
	backend    ChatBackend
	sessions   *SessionStore
	toggles    *ToggleController
	transcript Transcript
	controls   InputControls
	logger     *utils.Logger

	mu     sync.Mutex
	states map[string]RequestState
}

// NewExchangeController wires the exchange to the stores it reads
func NewExchangeController(backend ChatBackend, sessions *SessionStore, toggles *ToggleController, transcript Transcript, controls InputControls, logger *utils.Logger) *ExchangeController {
	if transcript == nil {
		transcript = nopTranscript{}
	}
	if controls == nil {
		controls = nopControls{}
	}
	return &ExchangeController{
		backend:    backend,
		sessions:   sessions,
		toggles:    toggles,
		transcript: transcript,
		controls:   controls,
		logger:     logger,
		states:     make(map[string]RequestState),
	}
}

// State returns the request state of a session
func (e *ExchangeController) State(sessionID string) RequestState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[sessionID]
}

// begin moves the session to Sending; false if an exchange is already in flight.
func (e *ExchangeController) begin(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.states[sessionID] == RequestSending {
		return false
	}
	e.states[sessionID] = RequestSending
	return true
}

// finish settles the session; a failed exchange stays in RequestError until the next begin.
func (e *ExchangeController) finish(sessionID string, failed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if failed {
		e.states[sessionID] = RequestError
		return
	}
	delete(e.states, sessionID)
}

// NewChatRequest builds the request body from the toggle state read at send time
func NewChatRequest(message, sessionID string, state ToggleState) api.ChatRequest {
	return api.ChatRequest{
		Message:      message,
		SessionID:    sessionID,
		UseRAG:       state.RAGEnabled,
		KBName:       state.KnowledgeBaseName(),
		UseWebSearch: state.WebSearchEnabled,
	}
}

// Send runs one exchange and blocks until it settles. The user message is shown
// immediately and never rolled back; send controls stay disabled until the reply is
// rendered or the fallback is shown. Empty text, no active session or an exchange already
// in flight for the session make it a no-op.
func (e *ExchangeController) Send(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return OutcomeSkipped
	}
	sessionID := e.sessions.ActiveID()
	if sessionID == "" {
		e.logger.Warn("Send ignored: %v", ErrNoActiveSession)
		return OutcomeSkipped
	}
	if !e.begin(sessionID) {
		e.logger.Debug("Send ignored: %v", ErrBusy)
		return OutcomeSkipped
	}

	log := e.logger.With("session_id", sessionID)
	failed := false
	e.controls.SetSendEnabled(false)
	defer func() {
		e.finish(sessionID, failed)
		e.controls.SetSendEnabled(true)
		e.controls.FocusInput()
	}()

	e.transcript.Append(Entry{Kind: EntryUser, Text: text})
	e.controls.ClearInput()

	state := e.toggles.Snapshot()
	e.transcript.ShowLoading(LoadingCaption(state))

	log.Info("Sending message (rag=%v kb=%q web=%v)", state.RAGEnabled, state.KnowledgeBase, state.WebSearchEnabled)
	resp, err := e.backend.Chat(ctx, NewChatRequest(text, sessionID, state))

	e.transcript.HideLoading()

	// a reply for a session the user has since left is persisted but not drawn
	visible := e.sessions.ActiveID() == sessionID

	if err != nil {
		log.Error("Chat request failed: %v", err)
		failed = true
		if visible {
			e.transcript.Append(Entry{Kind: EntryAssistant, Text: FallbackReply, Failed: true})
		}
		return OutcomeFailed
	}

	if visible {
		e.transcript.Append(RenderReply(resp)...)
	}
	e.sessions.refreshQuietly(ctx)
	return OutcomeRendered
}
