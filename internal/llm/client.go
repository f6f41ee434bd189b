// Package llm wraps the language-model backend behind a narrow collaborator
// interface: text generation plus an availability probe.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/raphaelgruber/chatlens/internal/config"
)

// ErrBackend marks failures of the LLM backend (unreachable service or
// malformed response). Callers distinguish it from input errors via
// errors.Is and decide whether to retry the whole analysis.
var ErrBackend = errors.New("llm backend error")

// Client is the generation collaborator the analyzer depends on.
type Client interface {
	// Generate produces text for the prompt. Failures wrap ErrBackend.
	Generate(ctx context.Context, prompt string) (string, error)

	// IsAvailable reports whether the backend is reachable and the
	// configured model is usable. It never fails; any problem is false.
	IsAvailable(ctx context.Context) bool
}

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm        llms.Model
	provider   string
	modelName  string
	ollamaHost string
	httpClient *http.Client
}

var _ Client = (*Model)(nil)

// NewModel creates an LLM client based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:        model,
		provider:   cfg.LLMProvider,
		modelName:  cfg.LLMModel,
		ollamaHost: cfg.OllamaHost,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}, nil
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}

// Generate produces text for the prompt.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: generate with %s: %v", ErrBackend, m.modelName, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", fmt.Errorf("%w: empty response from %s", ErrBackend, m.modelName)
	}
	return response, nil
}

// ollamaTags mirrors the Ollama /api/tags response shape.
type ollamaTags struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// IsAvailable probes the backend. For Ollama it lists the server's models
// and checks the configured one is present; for hosted providers it checks
// that credentials were configured.
func (m *Model) IsAvailable(ctx context.Context) bool {
	if m.provider != config.ProviderOllama {
		// Hosted providers were key-checked at construction.
		return true
	}

	url := strings.TrimRight(m.ollamaHost, "/") + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags ollamaTags
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}

	for _, model := range tags.Models {
		if strings.Contains(model.Name, m.modelName) || strings.Contains(model.Model, m.modelName) {
			return true
		}
	}
	return false
}
