package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// sharedHTTPClient is used by all providers; a 5-minute timeout covers slow LLM responses.
var sharedHTTPClient = &http.Client{
	Timeout: 5 * time.Minute,
}

// defaultMaxTokens is the fallback when Request.MaxTokens is not set.
const defaultMaxTokens = 4096

// Request holds the parameters for an LLM completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	// Model overrides the provider's configured model when non-empty.
	Model string
}

// Response holds the result of an LLM completion call.
type Response struct {
	Content string
	Model   string // actual model used, echoed back for meta
}

// Provider is the interface for LLM completion backends.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// APIError is a structured provider failure. StatusCode and Type let callers
// separate configuration-class errors, which should halt a run, from
// transient ones, which cost the loop an iteration and nothing more.
type APIError struct {
	Provider   string // "openai" or "anthropic"
	StatusCode int
	Type       string // provider-reported error type, may be empty
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

// IsAuthError reports whether err is a credentials or account problem that
// no amount of retrying can fix.
func IsAuthError(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	switch ae.Type {
	case "authentication_error", "invalid_api_key", "insufficient_quota":
		return true
	}
	return false
}

// NewProvider parses a "provider:model" string and returns the appropriate
// Provider. A bare model name ("gpt-4o") selects openai, matching the
// OPENAI_MODEL convention used in CI configuration. The API key is read from
// the environment at construction time and validated immediately.
func NewProvider(providerModel string) (Provider, error) {
	if providerModel == "" {
		return nil, fmt.Errorf("model is empty: expected provider:model (e.g. openai:gpt-4o) or a bare OpenAI model name")
	}

	provider, model := "openai", providerModel
	if parts := strings.SplitN(providerModel, ":", 2); len(parts) == 2 {
		provider, model = parts[0], parts[1]
	}
	if model == "" {
		return nil, fmt.Errorf("invalid model format %q: expected provider:model (e.g. openai:gpt-4o)", providerModel)
	}

	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		return &openaiProvider{model: model, apiKey: apiKey}, nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		return &anthropicProvider{model: model, apiKey: apiKey}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: supported providers are openai, anthropic", provider)
	}
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
