package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"rag-chat-client/api"
	"rag-chat-client/utils"
)

// DefaultPrompt is shown whenever the stored prompt is empty or a legacy default
const DefaultPrompt = `You are an AI assistant that gives comprehensive, accurate and well-structured answers. Be as helpful as possible while staying correct and clear.

RESPONSE PRINCIPLES:
1. Answer the question directly first, then explain with supporting detail.
2. Prefer factual correctness over brevity.
3. Say so when you are uncertain or when information is missing.

FORMATTING:
- Use markdown: headers for long answers, lists for steps, code blocks for code and commands.
- Use tables when comparing several items.
- End complex answers with a short summary or next steps.

WHEN KNOWLEDGE BASE CONTENT IS PROVIDED:
1. Treat it as the primary source of truth and never contradict it.
2. Cite the source file for every fact taken from it: "According to [filename]...".
3. If it does not cover the question, state that explicitly before using general knowledge.

WHEN WEB SEARCH RESULTS ARE PROVIDED:
1. Use them for up-to-date information and cite each source with its URL.
2. Prefer recent and authoritative sources and include publication dates when known.
3. Point out disagreements between sources.`

var legacyPrompts = []string{
	"You are a helpful assistant.",
	"You are a helpful AI assistant.",
}

// UpgradeLegacyPrompt maps an empty or legacy default prompt to DefaultPrompt.
// Any other value is returned unchanged.
func UpgradeLegacyPrompt(prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return DefaultPrompt
	}
	for _, legacy := range legacyPrompts {
		if prompt == legacy {
			return DefaultPrompt
		}
	}
	return prompt
}

// SettingsForm holds the raw values of the settings panel
type SettingsForm struct {
	Model        string
	SystemPrompt string
	Temperature  string
	MaxTokens    string
}

type settingsInput struct {
	Model       string  `validate:"required"`
	Temperature float64 `validate:"gte=0,lte=2"`
	MaxTokens   int     `validate:"gte=1"`
}

// ParseSettingsForm validates the form locally and converts it for submission
func ParseSettingsForm(form SettingsForm) (api.Settings, error) {
	temperature, err := strconv.ParseFloat(strings.TrimSpace(form.Temperature), 64)
	if err != nil {
		return api.Settings{}, invalid("temperature", "Temperature must be a number")
	}
	maxTokens, err := strconv.Atoi(strings.TrimSpace(form.MaxTokens))
	if err != nil {
		return api.Settings{}, invalid("max_tokens", "Max tokens must be a whole number")
	}

	in := settingsInput{Model: strings.TrimSpace(form.Model), Temperature: temperature, MaxTokens: maxTokens}
	if err := validate.Struct(in); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Model":
				return api.Settings{}, invalid("model", "Please select a model")
			case "Temperature":
				return api.Settings{}, invalid("temperature", "Temperature must be between 0 and 2")
			case "MaxTokens":
				return api.Settings{}, invalid("max_tokens", "Max tokens must be at least 1")
			}
		}
		return api.Settings{}, invalid("settings", err.Error())
	}

	return api.Settings{
		Model:        in.Model,
		SystemPrompt: form.SystemPrompt,
		Temperature:  in.Temperature,
		MaxTokens:    in.MaxTokens,
	}, nil
}

// FormatTemperature is the numeric mirror shown beside the temperature slider
func FormatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', 1, 64)
}

// Features is the backend feature availability
type Features struct {
	RAG       bool
	WebSearch bool
}

const (
	modelsCacheKey   = "models"
	featuresCacheKey = "features"
)

// SettingsController loads and saves the model configuration
type SettingsController struct {
	backend SettingsBackend
	confirm Confirmer
	logger  *utils.Logger
	cache   *gocache.Cache
}

// NewSettingsController creates a controller; catalogues are cached for ttl
func NewSettingsController(backend SettingsBackend, confirm Confirmer, logger *utils.Logger, ttl time.Duration) *SettingsController {
	if confirm == nil {
		confirm = declineAll{}
	}
	return &SettingsController{
		backend: backend,
		confirm: confirm,
		logger:  logger,
		cache:   gocache.New(ttl, 2*ttl),
	}
}

// Load fetches the settings; the prompt is upgraded for display only
func (c *SettingsController) Load(ctx context.Context) (*api.Settings, error) {
	s, err := c.backend.GetSettings(ctx)
	if err != nil {
		c.logger.Error("Failed to load settings: %v", err)
		return nil, err
	}
	display := *s
	display.SystemPrompt = UpgradeLegacyPrompt(s.SystemPrompt)
	if display.SystemPrompt != s.SystemPrompt {
		c.logger.Info("Showing default system prompt in place of stored legacy prompt")
	}
	return &display, nil
}

// Save validates the form and persists it
func (c *SettingsController) Save(ctx context.Context, form SettingsForm) (*api.Settings, error) {
	s, err := ParseSettingsForm(form)
	if err != nil {
		return nil, err
	}

	saved, err := c.backend.SaveSettings(ctx, s)
	if err != nil {
		c.logger.Error("Failed to save settings: %v", err)
		return nil, err
	}
	c.logger.Info("Saved settings (model=%s temperature=%.1f max_tokens=%d)", saved.Model, saved.Temperature, saved.MaxTokens)
	return saved, nil
}

// Reset restores server defaults after confirmation, showing DefaultPrompt whatever the
// server returns for the prompt. Declining returns nil, false, nil.
func (c *SettingsController) Reset(ctx context.Context) (*api.Settings, bool, error) {
	if !c.confirm.Confirm("Reset Settings", "Reset all settings to default? This will also reset the system prompt.") {
		return nil, false, nil
	}

	s, err := c.backend.ResetSettings(ctx)
	if err != nil {
		c.logger.Error("Failed to reset settings: %v", err)
		return nil, false, err
	}
	reset := *s
	reset.SystemPrompt = DefaultPrompt
	c.logger.Info("Settings reset to defaults")
	return &reset, true, nil
}

// ResetPrompt asks before replacing the prompt field with DefaultPrompt. Nothing is saved.
func (c *SettingsController) ResetPrompt() (string, bool) {
	ok := c.confirm.Confirm("Reset System Prompt",
		"Reset system prompt to default?\n\nYour current custom prompt will be lost unless you save it elsewhere first.")
	if !ok {
		return "", false
	}
	return DefaultPrompt, true
}

// Models returns the model catalogue, cached
func (c *SettingsController) Models(ctx context.Context) (*api.ModelCatalog, error) {
	if v, ok := c.cache.Get(modelsCacheKey); ok {
		return v.(*api.ModelCatalog), nil
	}
	catalog, err := c.backend.Models(ctx)
	if err != nil {
		c.logger.Error("Failed to load models: %v", err)
		return nil, err
	}
	c.cache.SetDefault(modelsCacheKey, catalog)
	return catalog, nil
}

// ModelInfo is the one-line description shown under the model select
func ModelInfo(m api.Model) string {
	return fmt.Sprintf("%s | %s parameters | %s tokens/s", m.Name, m.Parameters, m.Speed)
}

// Features checks RAG and web search availability concurrently. A failed check counts as unavailable.
func (c *SettingsController) Features(ctx context.Context) Features {
	if v, ok := c.cache.Get(featuresCacheKey); ok {
		return v.(Features)
	}

	var f Features
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := c.backend.RAGStatus(gctx)
		if err != nil {
			c.logger.Warn("RAG status check failed: %v", err)
			return nil
		}
		f.RAG = st.Available
		return nil
	})
	g.Go(func() error {
		st, err := c.backend.WebSearchStatus(gctx)
		if err != nil {
			c.logger.Warn("Web search status check failed: %v", err)
			return nil
		}
		f.WebSearch = st.Available
		return nil
	})
	_ = g.Wait()

	c.cache.SetDefault(featuresCacheKey, f)
	return f
}

// Invalidate drops cached catalogues
func (c *SettingsController) Invalidate() {
	c.cache.Flush()
}
