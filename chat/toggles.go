package chat

import (
	"slices"
	"sync"

	"rag-chat-client/utils"
)

// SelectKnowledgeBaseFirst is shown when RAG is requested without a knowledge base
const SelectKnowledgeBaseFirst = "Please select a knowledge base first"

// ToggleState is the single logical feature state every control surface renders.
// RAGEnabled implies KnowledgeBase != "".
type ToggleState struct {
	RAGEnabled       bool
	KnowledgeBase    string // "" means none
	WebSearchEnabled bool

	RAGAvailable       bool
	WebSearchAvailable bool
}

// HasKnowledgeBase reports whether a knowledge base is selected
func (s ToggleState) HasKnowledgeBase() bool {
	return s.KnowledgeBase != ""
}

// KnowledgeBaseName returns the selected knowledge base or nil for none
func (s ToggleState) KnowledgeBaseName() *string {
	if s.KnowledgeBase == "" {
		return nil
	}
	name := s.KnowledgeBase
	return &name
}

type toggleSubscriber struct {
	id int
	fn func(ToggleState)
}

// ToggleController is the only writer of ToggleState. Every mutation notifies all
// subscribers synchronously, in subscription order, before it returns. Mutations are
// serialized together with their notifications, so the last state a subscriber sees is
// always the current one. Subscribers must not mutate the controller.
type ToggleController struct {
	notifier Notifier
	logger   *utils.Logger

	// notifyMu is held across mutate and notify; mu guards the fields below.
	notifyMu sync.Mutex
	mu       sync.Mutex
	state  ToggleState
	subs   []toggleSubscriber
	nextID int
}

// NewToggleController starts with both features off and assumed available
func NewToggleController(notifier Notifier, logger *utils.Logger) *ToggleController {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ToggleController{
		notifier: notifier,
		logger:   logger,
		state: ToggleState{
			RAGAvailable:       true,
			WebSearchAvailable: true,
		},
	}
}

// Snapshot returns the current state
func (c *ToggleController) Snapshot() ToggleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn, calls it once with the current state and returns an unsubscribe func.
func (c *ToggleController) Subscribe(fn func(ToggleState)) func() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, toggleSubscriber{id: id, fn: fn})
	state := c.state
	c.mu.Unlock()

	fn(state)

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// update applies mutate, then notifies every subscriber with the result.
// Subscribers run without mu held so they may read the controller.
func (c *ToggleController) update(mutate func(s *ToggleState) bool) bool {
	return c.commit(mutate, true)
}

// commit is update with the option to stay silent when mutate reports no change.
func (c *ToggleController) commit(mutate func(s *ToggleState) bool, notifyUnchanged bool) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	changed := mutate(&c.state)
	if !changed && !notifyUnchanged {
		c.mu.Unlock()
		return false
	}
	state := c.state
	subs := make([]toggleSubscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		s.fn(state)
	}
	return changed
}

// ToggleRAG flips RAG. Without a selected knowledge base it changes nothing and prompts the user.
func (c *ToggleController) ToggleRAG() bool {
	return c.SetRAG(!c.Snapshot().RAGEnabled)
}

// SetRAG sets RAG explicitly. Enabling needs a selected knowledge base and an available service;
// a refused request still re-notifies so surfaces that changed optimistically snap back.
func (c *ToggleController) SetRAG(enabled bool) bool {
	refused := false
	changed := c.update(func(s *ToggleState) bool {
		if enabled && (!s.HasKnowledgeBase() || !s.RAGAvailable) {
			refused = true
			return false
		}
		if s.RAGEnabled == enabled {
			return false
		}
		s.RAGEnabled = enabled
		return true
	})
	if refused {
		c.notifier.ShowInfo(SelectKnowledgeBaseFirst)
		return false
	}
	if changed {
		c.logger.Info("RAG %s", onOff(enabled))
	}
	return changed
}

// SelectKnowledgeBase selects name ("" for none). Moving from none to a name enables RAG;
// moving to none disables it; switching between names leaves RAG as it was.
func (c *ToggleController) SelectKnowledgeBase(name string) {
	c.update(func(s *ToggleState) bool {
		prev := s.KnowledgeBase
		s.KnowledgeBase = name
		switch {
		case name == "":
			s.RAGEnabled = false
		case prev == "" && s.RAGAvailable:
			s.RAGEnabled = true
		}
		return prev != name
	})
	c.logger.Debug("Knowledge base selected: %q", name)
}

// ToggleWebSearch flips web search unconditionally
func (c *ToggleController) ToggleWebSearch() {
	c.update(func(s *ToggleState) bool {
		s.WebSearchEnabled = !s.WebSearchEnabled
		return true
	})
}

// SetWebSearch sets web search explicitly
func (c *ToggleController) SetWebSearch(enabled bool) {
	c.update(func(s *ToggleState) bool {
		if s.WebSearchEnabled == enabled {
			return false
		}
		s.WebSearchEnabled = enabled
		return true
	})
}

// SetAvailability records the backend feature status; an unavailable feature is switched off.
func (c *ToggleController) SetAvailability(ragAvailable, webSearchAvailable bool) {
	c.update(func(s *ToggleState) bool {
		s.RAGAvailable = ragAvailable
		s.WebSearchAvailable = webSearchAvailable
		if !ragAvailable {
			s.RAGEnabled = false
		}
		if !webSearchAvailable {
			s.WebSearchEnabled = false
		}
		return true
	})
}

// SyncKnowledgeBases deselects the current knowledge base when it no longer exists.
// The check and the deselect happen in one step, so a selection made concurrently is kept.
func (c *ToggleController) SyncKnowledgeBases(names []string) {
	var dropped string
	c.commit(func(s *ToggleState) bool {
		if s.KnowledgeBase == "" || slices.Contains(names, s.KnowledgeBase) {
			return false
		}
		dropped = s.KnowledgeBase
		s.KnowledgeBase = ""
		s.RAGEnabled = false
		return true
	}, false)
	if dropped != "" {
		c.logger.Info("Selected knowledge base %q no longer exists", dropped)
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
