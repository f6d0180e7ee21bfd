package chat

import (
	"fmt"
	"strings"

	"rag-chat-client/api"
)

// EntryKind identifies how a transcript entry is drawn
type EntryKind int

const (
	EntryUser EntryKind = iota
	EntryAssistant
	EntryThinking
	EntryKnowledgeSources
	EntryWebSources
)

func (k EntryKind) String() string {
	switch k {
	case EntryUser:
		return "user"
	case EntryAssistant:
		return "assistant"
	case EntryThinking:
		return "thinking"
	case EntryKnowledgeSources:
		return "knowledge_sources"
	case EntryWebSources:
		return "web_sources"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one block of the visible transcript
type Entry struct {
	Kind EntryKind
	// Text is the message body, or the block heading for thinking and source lists.
	Text string
	// Body holds the reasoning trace of a thinking entry.
	Body      string
	Citations []Citation
	Collapsed bool
	// Failed marks the local fallback reply of a failed exchange.
	Failed bool
}

// Citation is one numbered source line
type Citation struct {
	Number int
	Title  string
	URL    string
	Detail string
}

func (c Citation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. %s", c.Number, c.Title)
	if c.URL != "" {
		sb.WriteString(" - ")
		sb.WriteString(c.URL)
	}
	if c.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", c.Detail)
	}
	return sb.String()
}

// Display strings
const (
	FallbackReply       = "Sorry, there was an error processing your request."
	ThinkingHeading     = "Thinking Process"
	captionBoth         = "Searching web and knowledge base"
	captionWeb          = "Searching the web"
	captionKnowledge    = "Searching knowledge base"
	captionThinking     = "Thinking"
	knowledgeHeadingFmt = "Knowledge Base Sources (%d)"
	webHeadingFmt       = "Web Sources (%d)"
)

// LoadingCaption picks the in-flight caption for the given toggle state
func LoadingCaption(state ToggleState) string {
	switch {
	case state.RAGEnabled && state.WebSearchEnabled:
		return captionBoth
	case state.WebSearchEnabled:
		return captionWeb
	case state.RAGEnabled:
		return captionKnowledge
	default:
		return captionThinking
	}
}

// RenderReply converts a chat response into transcript entries: the collapsed
// reasoning trace (if any), the reply, then knowledge and web citations (if any).
func RenderReply(resp *api.ChatResponse) []Entry {
	var entries []Entry

	if strings.TrimSpace(resp.Thinking) != "" {
		entries = append(entries, Entry{
			Kind:      EntryThinking,
			Text:      ThinkingHeading,
			Body:      resp.Thinking,
			Collapsed: true,
		})
	}

	entries = append(entries, Entry{Kind: EntryAssistant, Text: resp.Response})

	if len(resp.RAGSources) > 0 {
		entries = append(entries, Entry{
			Kind:      EntryKnowledgeSources,
			Text:      fmt.Sprintf(knowledgeHeadingFmt, len(resp.RAGSources)),
			Citations: KnowledgeCitations(resp.RAGSources),
		})
	}

	if len(resp.WebSearchResults) > 0 {
		entries = append(entries, Entry{
			Kind:      EntryWebSources,
			Text:      fmt.Sprintf(webHeadingFmt, len(resp.WebSearchResults)),
			Citations: WebCitations(resp.WebSearchResults),
		})
	}

	return entries
}

// KnowledgeCitations numbers retrieval sources from 1 with scores to two decimals
func KnowledgeCitations(sources []api.KnowledgeSource) []Citation {
	out := make([]Citation, 0, len(sources))
	for i, s := range sources {
		out = append(out, Citation{
			Number: i + 1,
			Title:  s.FileName,
			Detail: fmt.Sprintf("Score: %.2f", s.Score),
		})
	}
	return out
}

// WebCitations numbers web results from 1
func WebCitations(results []api.WebResult) []Citation {
	out := make([]Citation, 0, len(results))
	for i, r := range results {
		c := Citation{Number: i + 1, Title: r.Title, URL: r.URL}
		if c.Title == "" {
			c.Title = r.URL
		}
		if r.PublishedDate != "" {
			c.Detail = "Published: " + r.PublishedDate
		}
		out = append(out, c)
	}
	return out
}

// VisibleMessages drops system-role messages
func VisibleMessages(messages []api.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == api.RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

// TranscriptEntries converts a stored transcript into entries, skipping system messages
func TranscriptEntries(messages []api.Message) []Entry {
	visible := VisibleMessages(messages)
	entries := make([]Entry, 0, len(visible))
	for _, m := range visible {
		kind := EntryAssistant
		if m.Role == api.RoleUser {
			kind = EntryUser
		}
		entries = append(entries, Entry{Kind: kind, Text: m.Content})
	}
	return entries
}
