package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"rag-chat-client/api"
	"rag-chat-client/chat"
)

// knowledgeBaseOptions builds select options ("none" first) and the label to name lookup
func knowledgeBaseOptions(kbs []api.KnowledgeBase) ([]string, map[string]string, map[string]string) {
	options := make([]string, 0, len(kbs)+1)
	byLabel := make(map[string]string, len(kbs)+1)
	byName := make(map[string]string, len(kbs)+1)

	options = append(options, chat.NoKnowledgeBaseLabel)
	byLabel[chat.NoKnowledgeBaseLabel] = ""
	byName[""] = chat.NoKnowledgeBaseLabel
	for _, kb := range kbs {
		label := chat.KnowledgeBaseLabel(kb)
		options = append(options, label)
		byLabel[label] = kb.Name
		byName[kb.Name] = label
	}
	return options, byLabel, byName
}

// QuickToolbar is the compact toggle surface above the transcript.
// It renders the toggle state and forwards every user change to the controller.
type QuickToolbar struct {
	app *App

	ragButton *widget.Button
	kbSelect  *widget.Select
	webButton *widget.Button
	ragGroup  *fyne.Container

	byLabel map[string]string
	byName  map[string]string
	state   chat.ToggleState
	syncing bool
}

// NewQuickToolbar creates the toolbar widgets
func NewQuickToolbar(app *App) *QuickToolbar {
	tb := &QuickToolbar{app: app}
	_, tb.byLabel, tb.byName = knowledgeBaseOptions(nil)

	tb.ragButton = widget.NewButton("RAG: OFF", func() {
		tb.app.toggles.ToggleRAG()
	})
	tb.webButton = widget.NewButton("Web: OFF", func() {
		tb.app.toggles.ToggleWebSearch()
	})
	tb.kbSelect = widget.NewSelect(nil, func(label string) {
		if tb.syncing {
			return
		}
		tb.app.toggles.SelectKnowledgeBase(tb.byLabel[label])
	})
	tb.kbSelect.PlaceHolder = "Select KB..."
	tb.ragGroup = container.NewHBox(tb.ragButton, tb.kbSelect)
	return tb
}

// Build lays out the toolbar
func (tb *QuickToolbar) Build() fyne.CanvasObject {
	return container.NewHBox(tb.ragGroup, tb.webButton)
}

// SetKnowledgeBases replaces the select options; safe from any goroutine
func (tb *QuickToolbar) SetKnowledgeBases(kbs []api.KnowledgeBase) {
	fyne.Do(func() {
		var options []string
		options, tb.byLabel, tb.byName = knowledgeBaseOptions(kbs)
		tb.syncing = true
		tb.kbSelect.SetOptions(options)
		tb.syncing = false
		tb.render()
	})
}

// Apply renders a toggle state; safe from any goroutine
func (tb *QuickToolbar) Apply(state chat.ToggleState) {
	fyne.Do(func() {
		tb.state = state
		tb.render()
	})
}

func (tb *QuickToolbar) render() {
	s := tb.state
	tb.syncing = true
	defer func() { tb.syncing = false }()

	if s.RAGEnabled {
		tb.ragButton.SetText("RAG: ON")
		tb.ragButton.Importance = widget.HighImportance
	} else {
		tb.ragButton.SetText("RAG: OFF")
		tb.ragButton.Importance = widget.MediumImportance
	}
	tb.ragButton.Refresh()

	if s.HasKnowledgeBase() {
		if label, ok := tb.byName[s.KnowledgeBase]; ok {
			tb.kbSelect.SetSelected(label)
		}
	} else {
		tb.kbSelect.ClearSelected()
	}

	if s.WebSearchEnabled {
		tb.webButton.SetText("Web: ON")
		tb.webButton.Importance = widget.HighImportance
	} else {
		tb.webButton.SetText("Web: OFF")
		tb.webButton.Importance = widget.MediumImportance
	}
	tb.webButton.Refresh()

	if s.RAGAvailable {
		tb.ragGroup.Show()
	} else {
		tb.ragGroup.Hide()
	}
	if s.WebSearchAvailable {
		tb.webButton.Show()
	} else {
		tb.webButton.Hide()
	}
}
