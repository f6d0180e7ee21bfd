package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"rag-chat-client/api"
	"rag-chat-client/chat"
	"rag-chat-client/utils"
)

const previewSuffix = " (preview)"

// SettingsView is the settings panel: the backend model configuration, the second
// feature toggle surface and the local appearance options
type SettingsView struct {
	app    *App
	window fyne.Window

	modelSelect    *widget.Select
	modelInfo      *widget.Label
	promptEntry    *widget.Entry
	tempSlider     *widget.Slider
	tempLabel      *widget.Label
	temperature    float64 // exact value submitted; the slider snaps to its step
	maxTokensEntry *widget.Entry

	ragCheck *widget.Check
	kbSelect *widget.Select
	webCheck *widget.Check
	features *fyne.Container

	models      map[string]api.Model // option label -> model
	modelLabels map[string]string    // model id -> option label
	byLabel     map[string]string
	byName      map[string]string
	state       chat.ToggleState
	syncing     bool
}

// NewSettingsView creates the panel widgets; the window is created on first Show
func NewSettingsView(app *App) *SettingsView {
	sv := &SettingsView{app: app}
	_, sv.byLabel, sv.byName = knowledgeBaseOptions(nil)

	sv.modelInfo = widget.NewLabel("")
	sv.modelInfo.Importance = widget.LowImportance
	sv.modelSelect = widget.NewSelect(nil, func(label string) {
		if m, ok := sv.models[label]; ok {
			sv.modelInfo.SetText(chat.ModelInfo(m))
		} else {
			sv.modelInfo.SetText("")
		}
	})

	sv.promptEntry = widget.NewMultiLineEntry()
	sv.promptEntry.Wrapping = fyne.TextWrapWord
	sv.promptEntry.SetMinRowsVisible(8)

	sv.temperature = 0.7
	sv.tempLabel = widget.NewLabel(chat.FormatTemperature(sv.temperature))
	sv.tempSlider = widget.NewSlider(0, 2)
	sv.tempSlider.Step = 0.1
	sv.tempSlider.OnChanged = func(v float64) {
		sv.temperature = v
		sv.tempLabel.SetText(chat.FormatTemperature(v))
	}

	sv.maxTokensEntry = widget.NewEntry()

	sv.ragCheck = widget.NewCheck("Enable RAG", func(checked bool) {
		if sv.syncing {
			return
		}
		sv.app.toggles.SetRAG(checked)
	})
	sv.kbSelect = widget.NewSelect(nil, func(label string) {
		if sv.syncing {
			return
		}
		sv.app.toggles.SelectKnowledgeBase(sv.byLabel[label])
	})
	sv.kbSelect.PlaceHolder = chat.NoKnowledgeBaseLabel
	sv.webCheck = widget.NewCheck("Enable Web Search", func(checked bool) {
		if sv.syncing {
			return
		}
		sv.app.toggles.SetWebSearch(checked)
	})
	return sv
}

// Show opens the settings window and reloads the stored settings
func (sv *SettingsView) Show() {
	if sv.window == nil {
		sv.window = sv.app.fyneApp.NewWindow("Settings")
		sv.window.SetContent(sv.build())
		sv.window.Resize(fyne.NewSize(640, 720))
		sv.window.SetCloseIntercept(sv.window.Hide)
	}
	sv.window.Show()
	sv.window.RequestFocus()
	sv.reload()
}

func (sv *SettingsView) build() fyne.CanvasObject {
	tabs := container.NewAppTabs(
		container.NewTabItem("Model", sv.buildModelTab()),
		container.NewTabItem("Appearance", sv.buildAppearanceTab()),
	)
	return tabs
}

func (sv *SettingsView) buildModelTab() fyne.CanvasObject {
	resetPrompt := widget.NewButton("Reset Prompt", sv.resetPrompt)
	resetPrompt.Importance = widget.LowImportance

	manageKBs := widget.NewButtonWithIcon("Manage Knowledge Bases", theme.StorageIcon(), sv.app.knowledge.Show)

	sv.features = container.NewVBox(
		widget.NewLabel("Features"),
		sv.ragCheck,
		container.NewBorder(nil, nil, widget.NewLabel("Knowledge Base"), nil, sv.kbSelect),
		manageKBs,
		sv.webCheck,
	)

	form := widget.NewForm(
		widget.NewFormItem("Model", container.NewVBox(sv.modelSelect, sv.modelInfo)),
		widget.NewFormItem("System Prompt", container.NewBorder(nil, resetPrompt, nil, nil, sv.promptEntry)),
		widget.NewFormItem("Temperature", container.NewBorder(nil, nil, nil, sv.tempLabel, sv.tempSlider)),
		widget.NewFormItem("Max Tokens", sv.maxTokensEntry),
	)

	save := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), sv.save)
	save.Importance = widget.HighImportance
	reset := widget.NewButtonWithIcon("Reset to Defaults", theme.ViewRefreshIcon(), sv.reset)

	return container.NewBorder(
		nil,
		container.NewHBox(save, reset),
		nil,
		nil,
		container.NewVScroll(container.NewVBox(form, widget.NewSeparator(), sv.features)),
	)
}

// buildAppearanceTab edits the local UI config; changes apply and persist immediately
func (sv *SettingsView) buildAppearanceTab() fyne.CanvasObject {
	cfg := sv.app.config

	themeSelect := widget.NewSelect([]string{"light", "dark"}, func(value string) {
		cfg.UI.Theme = value
		sv.app.applyTheme()
		sv.app.saveConfig()
	})
	themeSelect.SetSelected(cfg.UI.Theme)

	fontLabel := widget.NewLabel(fmt.Sprintf("Font Size: %d", cfg.UI.FontSize))
	fontSlider := widget.NewSlider(10, 24)
	fontSlider.Step = 1
	fontSlider.Value = float64(cfg.UI.FontSize)
	fontSlider.OnChangeEnded = func(v float64) {
		cfg.UI.FontSize = int(v)
		fontLabel.SetText(fmt.Sprintf("Font Size: %d", cfg.UI.FontSize))
		sv.app.applyTheme()
		sv.app.saveConfig()
	}

	trayCheck := widget.NewCheck("Minimize to system tray on close", func(checked bool) {
		cfg.UI.MinimizeToTray = checked
		sv.app.setMinimizeToTray(checked)
		sv.app.saveConfig()
	})
	trayCheck.Checked = cfg.UI.MinimizeToTray

	server := widget.NewLabel(sv.app.client.BaseURL())
	server.Selectable = true

	return container.NewVScroll(widget.NewForm(
		widget.NewFormItem("Theme", themeSelect),
		widget.NewFormItem("", container.NewVBox(fontLabel, fontSlider)),
		widget.NewFormItem("System Tray", trayCheck),
		widget.NewFormItem("Server", server),
	))
}

// reload fetches settings and the model catalogue in the background, then fills the form
func (sv *SettingsView) reload() {
	utils.SafeGo(sv.app.logger, "load settings", func() {
		settings, err := sv.app.settings.Load(sv.app.ctx)
		if err != nil {
			sv.app.showError("load settings", err)
			return
		}
		catalog, err := sv.app.settings.Models(sv.app.ctx)
		if err != nil {
			sv.app.logger.Warn("Model list unavailable: %v", err)
			catalog = &api.ModelCatalog{}
		}
		fyne.Do(func() {
			sv.setModels(catalog, settings.Model)
			sv.fill(settings)
		})
	})
}

// setModels fills the model select; a stored id missing from the catalogue stays selectable
func (sv *SettingsView) setModels(catalog *api.ModelCatalog, current string) {
	sv.models = make(map[string]api.Model)
	sv.modelLabels = make(map[string]string)
	var options []string

	add := func(m api.Model, label string) {
		options = append(options, label)
		sv.models[label] = m
		sv.modelLabels[m.ID] = label
	}
	for _, m := range catalog.Production {
		add(m, m.ID)
	}
	for _, m := range catalog.Preview {
		add(m, m.ID+previewSuffix)
	}
	if _, ok := sv.modelLabels[current]; current != "" && !ok {
		options = append(options, current)
		sv.modelLabels[current] = current
	}
	sv.modelSelect.SetOptions(options)
}

func (sv *SettingsView) fill(s *api.Settings) {
	if label, ok := sv.modelLabels[s.Model]; ok {
		sv.modelSelect.SetSelected(label)
	} else {
		sv.modelSelect.ClearSelected()
	}
	sv.promptEntry.SetText(s.SystemPrompt)
	sv.tempSlider.SetValue(s.Temperature)
	sv.temperature = s.Temperature
	sv.tempLabel.SetText(chat.FormatTemperature(s.Temperature))
	sv.maxTokensEntry.SetText(strconv.Itoa(s.MaxTokens))
}

func (sv *SettingsView) form() chat.SettingsForm {
	return chat.SettingsForm{
		Model:        strings.TrimSuffix(sv.modelSelect.Selected, previewSuffix),
		SystemPrompt: sv.promptEntry.Text,
		Temperature:  strconv.FormatFloat(sv.temperature, 'g', -1, 64),
		MaxTokens:    sv.maxTokensEntry.Text,
	}
}

func (sv *SettingsView) save() {
	form := sv.form()
	utils.SafeGo(sv.app.logger, "save settings", func() {
		saved, err := sv.app.settings.Save(sv.app.ctx, form)
		if err != nil {
			sv.app.showError("save settings", err)
			return
		}
		fyne.Do(func() { sv.fill(saved) })
		sv.app.showInfo("Settings saved successfully")
	})
}

func (sv *SettingsView) reset() {
	utils.SafeGo(sv.app.logger, "reset settings", func() {
		settings, ok, err := sv.app.settings.Reset(sv.app.ctx)
		if err != nil {
			sv.app.showError("reset settings", err)
			return
		}
		if !ok {
			return
		}
		fyne.Do(func() { sv.fill(settings) })
		sv.app.showInfo("Settings reset to defaults")
	})
}

func (sv *SettingsView) resetPrompt() {
	utils.SafeGo(sv.app.logger, "reset prompt", func() {
		if prompt, ok := sv.app.settings.ResetPrompt(); ok {
			fyne.Do(func() { sv.promptEntry.SetText(prompt) })
		}
	})
}

// SetKnowledgeBases replaces the select options; safe from any goroutine
func (sv *SettingsView) SetKnowledgeBases(kbs []api.KnowledgeBase) {
	fyne.Do(func() {
		var options []string
		options, sv.byLabel, sv.byName = knowledgeBaseOptions(kbs)
		sv.syncing = true
		sv.kbSelect.SetOptions(options)
		sv.syncing = false
		sv.render()
	})
}

// Apply renders a toggle state; safe from any goroutine
func (sv *SettingsView) Apply(state chat.ToggleState) {
	fyne.Do(func() {
		sv.state = state
		sv.render()
	})
}

func (sv *SettingsView) render() {
	s := sv.state
	sv.syncing = true
	defer func() { sv.syncing = false }()

	sv.ragCheck.SetChecked(s.RAGEnabled)
	sv.kbSelect.SetSelected(sv.byName[s.KnowledgeBase])
	sv.webCheck.SetChecked(s.WebSearchEnabled)

	if s.RAGAvailable {
		sv.ragCheck.Show()
		sv.kbSelect.Enable()
	} else {
		sv.ragCheck.Hide()
		sv.kbSelect.Disable()
	}
	if s.WebSearchAvailable {
		sv.webCheck.Show()
	} else {
		sv.webCheck.Hide()
	}
}
