package api

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents one transcript entry as stored by the backend
type Message struct {
	Role    string `json:"role"` // "user" or "assistant" or "system"
	Content string `json:"content"`
}

// SessionSummary is one row of the session index
type SessionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"message_count"`
}

// SessionBundle is the portable form of a session used by export and import
type SessionBundle struct {
	SessionID string    `json:"session_id,omitempty"`
	History   []Message `json:"history"`
	Settings  *Settings `json:"settings,omitempty"`
}

// Settings is the model configuration persisted by the backend
type Settings struct {
	Model        string  `json:"model"`
	SystemPrompt string  `json:"system_prompt"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
}

// ChatRequest is the body of POST /chat. KBName is sent as null when no knowledge base is selected.
type ChatRequest struct {
	Message      string  `json:"message"`
	SessionID    string  `json:"session_id"`
	UseRAG       bool    `json:"use_rag"`
	KBName       *string `json:"kb_name"`
	UseWebSearch bool    `json:"use_web_search"`
}

// KnowledgeSource is a retrieval citation
type KnowledgeSource struct {
	FileName string  `json:"file_name"`
	Score    float64 `json:"score"`
	Text     string  `json:"text,omitempty"`
}

// WebResult is a web search citation
type WebResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date,omitempty"`
}

// ChatResponse is the reply to POST /chat
type ChatResponse struct {
	Response         string            `json:"response"`
	Thinking         string            `json:"thinking,omitempty"`
	RAGSources       []KnowledgeSource `json:"rag_sources,omitempty"`
	WebSearchResults []WebResult       `json:"web_search_results,omitempty"`
}

// Model describes one selectable backend model
type Model struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Parameters string `json:"parameters"`
	Speed      string `json:"speed"`
}

// ModelCatalog groups models by release channel
type ModelCatalog struct {
	Production []Model `json:"production"`
	Preview    []Model `json:"preview"`
}

// Find returns the model with the given id from either group.
func (c ModelCatalog) Find(id string) (Model, bool) {
	for _, m := range c.Production {
		if m.ID == id {
			return m, true
		}
	}
	for _, m := range c.Preview {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// FeatureStatus is returned by the RAG and web search status endpoints
type FeatureStatus struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"`
}

// KnowledgeBase is a server-managed document collection
type KnowledgeBase struct {
	Name         string `json:"name"`
	VectorsCount int    `json:"vectors_count"`
}

// UploadResult is the reply to a knowledge base file upload
type UploadResult struct {
	Message  string `json:"message"`
	FileName string `json:"file_name"`
	KBName   string `json:"kb_name"`
}
