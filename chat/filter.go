package chat

import (
	"fmt"
	"strings"

	"rag-chat-client/api"
)

// FilterResult is the visible part of the session index
type FilterResult struct {
	Sessions []api.SessionSummary
	// NoResults is the indicator text, empty unless a non-empty query matched nothing.
	NoResults string
}

// FilterSessions keeps the sessions whose lower-cased title contains the lower-cased,
// trimmed query. index is never modified.
func FilterSessions(index []api.SessionSummary, query string) FilterResult {
	needle := strings.ToLower(strings.TrimSpace(query))

	visible := make([]api.SessionSummary, 0, len(index))
	for _, s := range index {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			visible = append(visible, s)
		}
	}

	result := FilterResult{Sessions: visible}
	if len(visible) == 0 && needle != "" {
		result.NoResults = fmt.Sprintf("No sessions found for \"%s\"", query)
	}
	return result
}
