package llm

import (
	"context"
	"errors"
)

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// returned (wrapped) when the provider answers with a non-success status
var ErrUpstream = errors.New("ai provider request failed")

// generates text from a system prompt and a conversation
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error)
	Provider() Provider
	Model() string
}

type Message struct {
	Role    string  `json:"role"`
	Content string  `json:"content"`
	Images  []Image `json:"-"`
}

// a base64 image sent alongside a user message
type Image struct {
	MediaType string
	Data      string
}

type TextGenerationRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
}

// on a provider error the response may still be non-nil and carry the usage
// of a call that was billed but could not be read
type TextGenerationResponse struct {
	Text  string
	Usage Usage
}

// token counts reported by the provider
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// holds configuration for a generator
type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// overrides the provider endpoint (tests)
	BaseURL string
}
