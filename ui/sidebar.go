package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"rag-chat-client/api"
	"rag-chat-client/chat"
	"rag-chat-client/utils"
)

// sessionItem is one clickable row of the session list with a context menu.
// Every action is bound to the session id captured at construction.
type sessionItem struct {
	widget.BaseWidget
	app     *App
	session api.SessionSummary
	label   *widget.Label
}

func newSessionItem(app *App, session api.SessionSummary, active bool) *sessionItem {
	item := &sessionItem{app: app, session: session}
	item.label = widget.NewLabel(fmt.Sprintf("%s (%d)", session.Title, session.MessageCount))
	item.label.Truncation = fyne.TextTruncateEllipsis
	if active {
		item.label.TextStyle = fyne.TextStyle{Bold: true}
	}
	item.ExtendBaseWidget(item)
	return item
}

func (si *sessionItem) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(si.label)
}

// Tapped loads the session
func (si *sessionItem) Tapped(_ *fyne.PointEvent) {
	si.app.loadSession(si.session.ID)
}

// TappedSecondary shows the context menu
func (si *sessionItem) TappedSecondary(pe *fyne.PointEvent) {
	id := si.session.ID
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Rename", func() { si.app.renameSession(id) }),
		fyne.NewMenuItem("Export as JSON", func() { si.app.exportSession(id, utils.FormatJSON) }),
		fyne.NewMenuItem("Export as Markdown", func() { si.app.exportSession(id, utils.FormatMarkdown) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete", func() { si.app.deleteSession(id) }),
	)
	widget.ShowPopUpMenuAtPosition(menu, si.app.window.Canvas(), pe.AbsolutePosition)
}

// SessionSidebar lists the session index filtered by the search query
type SessionSidebar struct {
	app *App

	search    *widget.Entry
	noResults *widget.Label
	list      *fyne.Container

	view chat.SessionsView
}

// NewSessionSidebar creates the sidebar; call Update to fill it
func NewSessionSidebar(app *App) *SessionSidebar {
	sb := &SessionSidebar{
		app:       app,
		search:    widget.NewEntry(),
		noResults: widget.NewLabel(""),
		list:      container.NewVBox(),
	}
	sb.search.SetPlaceHolder("Search sessions...")
	sb.search.OnChanged = func(string) { sb.render() }
	sb.noResults.Wrapping = fyne.TextWrapWord
	sb.noResults.Importance = widget.LowImportance
	sb.noResults.Hide()
	return sb
}

// Build lays out the sidebar
func (sb *SessionSidebar) Build() fyne.CanvasObject {
	newButton := widget.NewButtonWithIcon("New Chat", theme.ContentAddIcon(), sb.app.newSession)
	newButton.Importance = widget.HighImportance
	importButton := widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), sb.app.importSession)
	importButton.Importance = widget.LowImportance

	top := container.NewVBox(newButton, sb.search)
	return container.NewBorder(
		top,
		importButton,
		nil,
		nil,
		container.NewVScroll(container.NewVBox(sb.noResults, sb.list)),
	)
}

// FocusSearch moves keyboard focus to the search entry
func (sb *SessionSidebar) FocusSearch() {
	sb.app.window.Canvas().Focus(sb.search)
}

// Update stores the latest index and redraws; safe from any goroutine
func (sb *SessionSidebar) Update(view chat.SessionsView) {
	fyne.Do(func() {
		sb.view = view
		sb.render()
	})
}

func (sb *SessionSidebar) render() {
	result := chat.FilterSessions(sb.view.Sessions, sb.search.Text)

	if result.NoResults != "" {
		sb.noResults.SetText(result.NoResults)
		sb.noResults.Show()
	} else {
		sb.noResults.Hide()
	}

	objects := make([]fyne.CanvasObject, 0, len(result.Sessions)*2)
	for _, s := range result.Sessions {
		objects = append(objects, newSessionItem(sb.app, s, s.ID == sb.view.ActiveID), widget.NewSeparator())
	}
	sb.list.Objects = objects
	sb.list.Refresh()
}
