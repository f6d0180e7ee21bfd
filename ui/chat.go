package ui

import (
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"rag-chat-client/chat"
	"rag-chat-client/utils"
)

// messageEntry is a multi-line entry that sends on Ctrl+Enter
type messageEntry struct {
	widget.Entry
	onCtrlEnter func()
}

func newMessageEntry(onCtrlEnter func()) *messageEntry {
	e := &messageEntry{onCtrlEnter: onCtrlEnter}
	e.MultiLine = true
	e.Wrapping = fyne.TextWrapWord
	e.SetPlaceHolder("Type your message... (Ctrl+Enter to send)")
	e.SetMinRowsVisible(3)
	e.ExtendBaseWidget(e)
	return e
}

// TypedShortcut handles Ctrl+Enter
func (e *messageEntry) TypedShortcut(shortcut fyne.Shortcut) {
	if ks, ok := shortcut.(*desktop.CustomShortcut); ok {
		if (ks.KeyName == fyne.KeyReturn || ks.KeyName == fyne.KeyEnter) && ks.Modifier == fyne.KeyModifierControl {
			if e.onCtrlEnter != nil {
				e.onCtrlEnter()
				return
			}
		}
	}
	e.Entry.TypedShortcut(shortcut)
}

// TypedKey catches Ctrl+Enter on drivers that deliver it as a plain key event
func (e *messageEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyReturn || key.Name == fyne.KeyEnter {
		if drv, ok := fyne.CurrentApp().Driver().(desktop.Driver); ok {
			if drv.CurrentKeyModifiers()&fyne.KeyModifierControl != 0 && e.onCtrlEnter != nil {
				e.onCtrlEnter()
				return
			}
		}
	}
	e.Entry.TypedKey(key)
}

func newSelectableText(text string) *widget.Label {
	label := widget.NewLabel(text)
	label.Wrapping = fyne.TextWrapWord
	label.Selectable = true
	return label
}

// ChatView is the transcript and input area. It implements chat.Transcript and
// chat.InputControls; every method may be called from any goroutine.
type ChatView struct {
	app *App

	messages     *fyne.Container
	scroll       *container.Scroll
	loading      *fyne.Container
	loadingLabel *widget.Label
	input        *messageEntry
	sendButton   *widget.Button
}

var (
	_ chat.Transcript    = (*ChatView)(nil)
	_ chat.InputControls = (*ChatView)(nil)
)

// NewChatView creates the view; Build must be called before it is shown
func NewChatView(app *App) *ChatView {
	return &ChatView{app: app}
}

// Build builds the chat view UI
func (cv *ChatView) Build() fyne.CanvasObject {
	cv.messages = container.NewVBox()
	cv.scroll = container.NewVScroll(cv.messages)
	cv.scroll.SetMinSize(fyne.NewSize(500, 400))

	cv.loadingLabel = widget.NewLabel("")
	cv.loadingLabel.TextStyle = fyne.TextStyle{Italic: true}
	progress := widget.NewProgressBarInfinite()
	cv.loading = container.NewBorder(nil, nil, cv.loadingLabel, nil, progress)
	cv.loading.Hide()

	cv.input = newMessageEntry(cv.submit)
	cv.sendButton = widget.NewButtonWithIcon("Send", theme.MailSendIcon(), cv.submit)
	cv.sendButton.Importance = widget.HighImportance

	inputRow := container.NewBorder(nil, nil, nil, cv.sendButton, cv.input)

	return container.NewBorder(
		nil,
		container.NewVBox(cv.loading, inputRow),
		nil,
		nil,
		cv.scroll,
	)
}

// submit reads the input on the UI goroutine and runs the exchange in the background
func (cv *ChatView) submit() {
	text := cv.input.Text
	if strings.TrimSpace(text) == "" || cv.sendButton.Disabled() {
		return
	}
	utils.SafeGo(cv.app.logger, "send message", func() {
		cv.app.exchange.Send(cv.app.ctx, text)
	})
}

// Reset replaces the whole transcript
func (cv *ChatView) Reset(entries []chat.Entry) {
	fyne.Do(func() {
		cv.loading.Hide()
		cv.messages.Objects = cv.entryObjects(entries)
		cv.messages.Refresh()
		cv.scroll.ScrollToBottom()
	})
}

// Append adds entries after the current transcript
func (cv *ChatView) Append(entries ...chat.Entry) {
	fyne.Do(func() {
		for _, obj := range cv.entryObjects(entries) {
			cv.messages.Add(obj)
		}
		cv.scroll.ScrollToBottom()
	})
}

// ShowLoading shows the in-flight caption
func (cv *ChatView) ShowLoading(caption string) {
	fyne.Do(func() {
		cv.loadingLabel.SetText(caption + "...")
		cv.loading.Show()
	})
}

// HideLoading removes the in-flight caption
func (cv *ChatView) HideLoading() {
	fyne.Do(func() {
		cv.loading.Hide()
	})
}

// SetSendEnabled enables or disables the send controls
func (cv *ChatView) SetSendEnabled(enabled bool) {
	fyne.Do(func() {
		if enabled {
			cv.sendButton.Enable()
			cv.input.Enable()
		} else {
			cv.sendButton.Disable()
			cv.input.Disable()
		}
	})
}

// ClearInput empties the message entry
func (cv *ChatView) ClearInput() {
	fyne.Do(func() {
		cv.input.SetText("")
	})
}

// FocusInput moves keyboard focus to the message entry
func (cv *ChatView) FocusInput() {
	fyne.Do(func() {
		cv.app.window.Canvas().Focus(cv.input)
	})
}

func (cv *ChatView) entryObjects(entries []chat.Entry) []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, len(entries))
	for _, e := range entries {
		objects = append(objects, cv.entryObject(e))
	}
	return objects
}

func (cv *ChatView) entryObject(e chat.Entry) fyne.CanvasObject {
	switch e.Kind {
	case chat.EntryUser:
		return messageBlock("You", newSelectableText(e.Text))
	case chat.EntryThinking:
		return thinkingSection(e)
	case chat.EntryKnowledgeSources, chat.EntryWebSources:
		return sourcesSection(e)
	default:
		if e.Failed {
			label := newSelectableText(e.Text)
			label.Importance = widget.DangerImportance
			return messageBlock("Assistant", label)
		}
		return messageBlock("Assistant", cv.assistantBody(e.Text))
	}
}

func messageBlock(role string, body fyne.CanvasObject) fyne.CanvasObject {
	header := widget.NewLabel(role)
	header.TextStyle = fyne.TextStyle{Bold: true}
	return container.NewVBox(header, body, widget.NewSeparator())
}

// assistantBody renders markdown replies with a copy button for the raw text
func (cv *ChatView) assistantBody(content string) fyne.CanvasObject {
	text := widget.NewRichTextFromMarkdown(content)
	text.Wrapping = fyne.TextWrapWord

	copyButton := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		cv.app.window.Clipboard().SetContent(content)
		cv.app.logger.Debug("Reply copied to clipboard")
	})
	copyButton.Importance = widget.LowImportance

	return container.NewBorder(nil, nil, nil, container.NewVBox(copyButton), text)
}

// thinkingSection is collapsed by default and expands in place
func thinkingSection(e chat.Entry) fyne.CanvasObject {
	body := container.NewVBox(newSelectableText(e.Body))
	expanded := !e.Collapsed
	if !expanded {
		body.Hide()
	}

	toggle := widget.NewButtonWithIcon(e.Text, theme.MenuExpandIcon(), nil)
	toggle.Importance = widget.LowImportance
	toggle.Alignment = widget.ButtonAlignLeading
	toggle.OnTapped = func() {
		expanded = !expanded
		if expanded {
			body.Show()
			toggle.SetIcon(theme.MenuDropUpIcon())
		} else {
			body.Hide()
			toggle.SetIcon(theme.MenuExpandIcon())
		}
	}

	return container.NewVBox(toggle, body)
}

func sourcesSection(e chat.Entry) fyne.CanvasObject {
	heading := widget.NewLabel(e.Text)
	heading.TextStyle = fyne.TextStyle{Bold: true}

	box := container.NewVBox(heading)
	for _, c := range e.Citations {
		box.Add(citationObject(c))
	}
	box.Add(widget.NewSeparator())
	return box
}

func citationObject(c chat.Citation) fyne.CanvasObject {
	if c.URL == "" {
		label := widget.NewLabel(c.String())
		label.Wrapping = fyne.TextWrapWord
		return label
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return widget.NewLabel(c.String())
	}
	link := widget.NewHyperlink(c.String(), u)
	link.Wrapping = fyne.TextWrapWord
	return link
}
