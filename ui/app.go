package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/sync/errgroup"

	"rag-chat-client/api"
	"rag-chat-client/chat"
	"rag-chat-client/db"
	"rag-chat-client/utils"
)

// App represents the main application
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	config     *utils.Config
	configPath string
	db         *db.DB
	client     *api.Client
	logger     *utils.Logger
	notifier   windowNotifier

	ctx    context.Context
	cancel context.CancelFunc

	sessions       *chat.SessionStore
	toggles        *chat.ToggleController
	settings       *chat.SettingsController
	knowledgeBases *chat.KnowledgeBaseManager
	exchange       *chat.ExchangeController

	chatView     *ChatView
	sidebar      *SessionSidebar
	toolbar      *QuickToolbar
	settingsView *SettingsView
	knowledge    *KnowledgeView
	titleLabel   *widget.Label

	mu          sync.Mutex
	lastSession string
}

// NewApp wires the controllers to the Fyne views
func NewApp(config *utils.Config, configPath string, database *db.DB, client *api.Client, logger *utils.Logger) *App {
	fyneApp := app.NewWithID("rag-chat-client")
	window := fyneApp.NewWindow("RAG Chat")

	window.Resize(fyne.NewSize(
		float32(database.GetIntPreference(db.KeyWindowWidth, config.UI.WindowWidth)),
		float32(database.GetIntPreference(db.KeyWindowHeight, config.UI.WindowHeight)),
	))

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		fyneApp:    fyneApp,
		window:     window,
		config:     config,
		configPath: configPath,
		db:         database,
		client:     client,
		logger:     logger,
		notifier:   windowNotifier{window: window},
		ctx:        ctx,
		cancel:     cancel,
	}

	confirm := windowConfirmer{window: window}
	ttl := time.Duration(config.Cache.ModelsTTLSeconds) * time.Second

	a.chatView = NewChatView(a)
	a.sessions = chat.NewSessionStore(client, a.chatView, confirm, logger)
	a.toggles = chat.NewToggleController(a.notifier, logger)
	a.settings = chat.NewSettingsController(client, confirm, logger, ttl)
	a.knowledgeBases = chat.NewKnowledgeBaseManager(client, confirm, logger)
	a.exchange = chat.NewExchangeController(client, a.sessions, a.toggles, a.chatView, a.chatView, logger)

	a.sidebar = NewSessionSidebar(a)
	a.toolbar = NewQuickToolbar(a)
	a.knowledge = NewKnowledgeView(a)
	a.settingsView = NewSettingsView(a)

	window.SetOnClosed(func() {
		size := window.Canvas().Size()
		if err := database.SetIntPreference(db.KeyWindowWidth, int(size.Width)); err != nil {
			logger.Error("Failed to save window size: %v", err)
		}
		_ = database.SetIntPreference(db.KeyWindowHeight, int(size.Height))
		a.cancel()
	})

	a.applyTheme()
	a.buildUI()
	a.subscribe()
	a.setupSystemTray()
	if config.UI.MinimizeToTray {
		a.setMinimizeToTray(true)
	}

	return a
}

// subscribe connects both toggle surfaces, the knowledge base views and the sidebar
// to their controllers
func (a *App) subscribe() {
	a.toggles.Subscribe(a.toolbar.Apply)
	a.toggles.Subscribe(a.settingsView.Apply)

	a.knowledgeBases.Subscribe(func(kbs []api.KnowledgeBase) {
		a.toolbar.SetKnowledgeBases(kbs)
		a.settingsView.SetKnowledgeBases(kbs)
		a.knowledge.SetKnowledgeBases(kbs)

		names := make([]string, 0, len(kbs))
		for _, kb := range kbs {
			names = append(names, kb.Name)
		}
		a.toggles.SyncKnowledgeBases(names)
	})

	a.sessions.Subscribe(func(view chat.SessionsView) {
		a.sidebar.Update(view)
		a.rememberSession(view.ActiveID)

		title := "New Chat"
		for _, s := range view.Sessions {
			if s.ID == view.ActiveID && s.Title != "" {
				title = s.Title
			}
		}
		fyne.Do(func() { a.titleLabel.SetText(title) })
	})
}

// rememberSession stores the active session id so the next start can restore it
func (a *App) rememberSession(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id == a.lastSession {
		return
	}
	a.lastSession = id
	if err := a.db.SetLastSession(id); err != nil {
		a.logger.Warn("Failed to remember session %s: %v", id, err)
	}
}

// buildUI builds the main UI
func (a *App) buildUI() {
	a.titleLabel = widget.NewLabel("")
	a.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	a.titleLabel.Truncation = fyne.TextTruncateEllipsis

	clearButton := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), a.clearSession)
	clearButton.Importance = widget.LowImportance
	settingsButton := widget.NewButtonWithIcon("", theme.SettingsIcon(), a.showSettings)

	header := container.NewBorder(
		nil,
		widget.NewSeparator(),
		nil,
		container.NewHBox(a.toolbar.Build(), clearButton, settingsButton),
		a.titleLabel,
	)

	content := container.NewBorder(header, nil, nil, nil, a.chatView.Build())

	split := container.NewHSplit(a.sidebar.Build(), content)
	split.SetOffset(0.25)

	a.window.SetContent(split)
	a.setupKeyboardShortcuts()
}

// setupKeyboardShortcuts sets up global keyboard shortcuts
func (a *App) setupKeyboardShortcuts() {
	canvas := a.window.Canvas()

	canvas.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		a.logger.Debug("Keyboard shortcut: Ctrl+N")
		a.newSession()
	})
	canvas.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyF, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		a.sidebar.FocusSearch()
	})
	canvas.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyComma, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		a.showSettings()
	})
}

// setupSystemTray installs the tray menu on desktop drivers
func (a *App) setupSystemTray() {
	desk, ok := a.fyneApp.(desktop.App)
	if !ok {
		return
	}
	menu := fyne.NewMenu("RAG Chat",
		fyne.NewMenuItem("Show", a.window.Show),
		fyne.NewMenuItem("New Chat", func() {
			a.window.Show()
			a.newSession()
		}),
		fyne.NewMenuItem("Settings", a.showSettings),
	)
	desk.SetSystemTrayMenu(menu)
	a.logger.Info("System tray initialized")
}

// setMinimizeToTray makes closing the window hide it instead of quitting
func (a *App) setMinimizeToTray(enabled bool) {
	if enabled {
		a.window.SetCloseIntercept(a.window.Hide)
		return
	}
	a.window.SetCloseIntercept(a.window.Close)
}

func (a *App) applyTheme() {
	a.fyneApp.Settings().SetTheme(newAppTheme(a.config.UI.FontSize, a.config.UI.Theme == "dark"))
}

func (a *App) saveConfig() {
	if err := utils.SaveConfig(a.configPath, a.config); err != nil {
		a.logger.Error("Failed to save config: %v", err)
	}
}

// Run loads the initial state in the background and blocks until the window closes
func (a *App) Run() {
	utils.SafeGo(a.logger, "startup", a.bootstrap)
	a.window.ShowAndRun()
}

// bootstrap checks feature availability and loads knowledge bases, the model catalogue and
// the last session concurrently. Only a session failure is reported; the rest degrade quietly.
func (a *App) bootstrap() {
	g, ctx := errgroup.WithContext(a.ctx)

	g.Go(func() error {
		f := a.settings.Features(ctx)
		a.toggles.SetAvailability(f.RAG, f.WebSearch)
		a.logger.Info("Features: rag=%v web_search=%v", f.RAG, f.WebSearch)
		return nil
	})
	g.Go(func() error {
		if _, err := a.knowledgeBases.List(ctx); err != nil {
			a.logger.Warn("Knowledge bases unavailable at startup: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		if _, err := a.settings.Models(ctx); err != nil {
			a.logger.Warn("Model list unavailable at startup: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		_, err := a.sessions.Open(ctx, a.db.LastSession())
		return err
	})

	if err := g.Wait(); err != nil {
		a.showError("connect to the server", err)
	}
}

// background runs a controller call off the UI goroutine and reports a failure
func (a *App) background(action string, fn func(ctx context.Context) error) {
	utils.SafeGoWithError(a.logger, action, func() error {
		return fn(a.ctx)
	}, func(err error) {
		a.showError(action, err)
	})
}

func (a *App) newSession() {
	a.background("create session", func(ctx context.Context) error {
		_, err := a.sessions.Create(ctx)
		return err
	})
}

func (a *App) loadSession(id string) {
	if id == a.sessions.ActiveID() {
		return
	}
	a.background("load session", func(ctx context.Context) error {
		_, err := a.sessions.Load(ctx, id)
		return err
	})
}

func (a *App) clearSession() {
	a.background("clear conversation", func(ctx context.Context) error {
		_, err := a.sessions.Clear(ctx)
		return err
	})
}

func (a *App) deleteSession(id string) {
	a.background("delete session", func(ctx context.Context) error {
		_, err := a.sessions.Delete(ctx, id)
		return err
	})
}

func (a *App) renameSession(id string) {
	current, _ := a.sessions.Find(id)

	entry := widget.NewEntry()
	entry.SetText(current.Title)
	items := []*widget.FormItem{widget.NewFormItem("Title", entry)}

	dialog.ShowForm("Rename Session", "Rename", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		title := entry.Text
		a.background("rename session", func(ctx context.Context) error {
			return a.sessions.Rename(ctx, id, title)
		})
	}, a.window)
}

// exportSession writes the session bundle to the export directory
func (a *App) exportSession(id string, format utils.ExportFormat) {
	a.background("export session", func(ctx context.Context) error {
		bundle, err := a.sessions.Export(ctx, id)
		if err != nil {
			return err
		}

		dir, err := a.config.GetDefaultExportPath()
		if err != nil {
			return err
		}
		summary, _ := a.sessions.Find(id)
		path := filepath.Join(dir, utils.GenerateExportFilename(summary.Title, format))

		if format == utils.FormatMarkdown {
			err = utils.WriteBundleMarkdown(summary.Title, bundle, path)
		} else {
			err = utils.WriteBundleJSON(bundle, path)
		}
		if err != nil {
			return err
		}

		a.logger.Info("Exported session %s to %s", id, path)
		a.showInfo(fmt.Sprintf("Session exported successfully!\n\nFile: %s", path))
		return nil
	})
}

// importSession asks for a JSON bundle and imports it as a new active session
func (a *App) importSession() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError("open file", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		a.background("import session", func(ctx context.Context) error {
			bundle, err := utils.ReadBundle(path)
			if err != nil {
				return err
			}
			if _, err := a.sessions.Import(ctx, bundle); err != nil {
				return err
			}
			a.showInfo("Session imported successfully")
			return nil
		})
	}, a.window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

func (a *App) showSettings() {
	a.settingsView.Show()
}

// Cleanup cancels in-flight requests
func (a *App) Cleanup() {
	a.cancel()
}
