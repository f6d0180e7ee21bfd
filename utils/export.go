package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"rag-chat-client/api"
)

// ExportFormat represents the export format
type ExportFormat string

const (
	FormatJSON     ExportFormat = "json"
	FormatMarkdown ExportFormat = "markdown"
)

// ErrMissingHistory is returned when an import file has no history array
var ErrMissingHistory = errors.New("invalid import data: missing history")

// WriteBundleJSON writes a session bundle as indented JSON
func WriteBundleJSON(bundle *api.SessionBundle, filepath string) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// WriteBundleMarkdown writes the visible transcript of a bundle as Markdown
func WriteBundleMarkdown(title string, bundle *api.SessionBundle, filepath string) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	if bundle.Settings != nil {
		sb.WriteString(fmt.Sprintf("**Model**: %s  \n", bundle.Settings.Model))
		sb.WriteString(fmt.Sprintf("**Temperature**: %.1f  \n", bundle.Settings.Temperature))
		sb.WriteString(fmt.Sprintf("**Max tokens**: %d\n\n", bundle.Settings.MaxTokens))
	}
	sb.WriteString("---\n\n")

	first := true
	for _, msg := range bundle.History {
		if msg.Role == api.RoleSystem {
			continue
		}
		if !first {
			sb.WriteString("---\n\n")
		}
		first = false

		roleName := "User"
		if msg.Role == api.RoleAssistant {
			roleName = "Assistant"
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", roleName))
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported: %s*\n", time.Now().Format("2006-01-02 15:04:05")))

	if err := os.WriteFile(filepath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// ReadBundle reads a session bundle from a JSON file; the history array is required
func ReadBundle(filepath string) (*api.SessionBundle, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var bundle api.SessionBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if bundle.History == nil {
		return nil, ErrMissingHistory
	}

	return &bundle, nil
}

// GenerateExportFilename generates a filename for export
func GenerateExportFilename(title string, format ExportFormat) string {
	sanitized := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|' {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))

	if utf8.RuneCountInString(sanitized) > 50 {
		sanitized = string([]rune(sanitized)[:50])
	}
	if sanitized == "" {
		sanitized = "chat"
	}

	timestamp := time.Now().Format("20060102_150405")
	ext := string(format)
	if format == FormatMarkdown {
		ext = "md"
	}

	return fmt.Sprintf("%s_%s.%s", sanitized, timestamp, ext)
}
