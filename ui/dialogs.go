package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"rag-chat-client/chat"
)

// windowConfirmer shows a confirm dialog and blocks the calling goroutine until it is answered.
// It must not be called on the UI goroutine.
type windowConfirmer struct {
	window fyne.Window
}

func (c windowConfirmer) Confirm(title, message string) bool {
	answer := make(chan bool, 1)
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, func(ok bool) {
			answer <- ok
		}, c.window)
	})
	return <-answer
}

// windowNotifier shows information and error dialogs from any goroutine
type windowNotifier struct {
	window fyne.Window
}

func (n windowNotifier) ShowError(message string) {
	fyne.Do(func() {
		dialog.ShowInformation("Error", message, n.window)
	})
}

func (n windowNotifier) ShowInfo(message string) {
	fyne.Do(func() {
		dialog.ShowInformation("Info", message, n.window)
	})
}

var (
	_ chat.Confirmer = windowConfirmer{}
	_ chat.Notifier  = windowNotifier{}
)

// showError reports a failed action with the message chat.UserMessage derives from err
func (a *App) showError(action string, err error) {
	a.notifier.ShowError(chat.UserMessage(action, err))
}

func (a *App) showInfo(message string) {
	a.notifier.ShowInfo(message)
}
