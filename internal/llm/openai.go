package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	openaiBaseURL      = "https://api.openai.com"
	defaultOpenAIModel = "gpt-4o-mini"
)

// shared HTTP client for OpenAI API calls
// reuses connection pool and timeout configuration
var openaiHTTPClient = &http.Client{
	Timeout: 120 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

var openaiRateLimiter = rate.NewLimiter(50, 10)

type chatRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type chatPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type OpenAIGenerator struct {
	config     Config
	httpClient *http.Client
}

func NewOpenAIGenerator(config Config) *OpenAIGenerator {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	if config.BaseURL == "" {
		config.BaseURL = openaiBaseURL
	}

	return &OpenAIGenerator{
		config:     config,
		httpClient: openaiHTTPClient,
	}
}

func (g *OpenAIGenerator) Provider() Provider {
	return ProviderOpenAI
}

func (g *OpenAIGenerator) Model() string {
	return g.config.Model
}

func (g *OpenAIGenerator) GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error) {
	messages := make([]chatMessage, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: []chatPart{{Type: "text", Text: req.SystemPrompt}},
		})
	}

	for _, msg := range req.Messages {
		parts := []chatPart{{Type: "text", Text: msg.Content}}

		for _, img := range msg.Images {
			parts = append(parts, chatPart{
				Type:     "image_url",
				ImageURL: &imageURL{URL: "data:" + img.MediaType + ";base64," + img.Data},
			})
		}

		messages = append(messages, chatMessage{Role: msg.Role, Content: parts})
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.config.MaxTokens
	}

	jsonData, err := json.Marshal(chatRequest{
		Model:       g.config.Model,
		MaxTokens:   maxTokens,
		Temperature: g.config.Temperature,
		Messages:    messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	if err := openaiRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", ErrUpstream, err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, fmt.Errorf("%w: openai status %d: %s", ErrUpstream, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}

	var apiResp chatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		partial := &TextGenerationResponse{Usage: usageFromBody(body, "usage.prompt_tokens", "usage.completion_tokens")}
		return partial, fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}

	usage := Usage{
		InputTokens:  apiResp.Usage.PromptTokens,
		OutputTokens: apiResp.Usage.CompletionTokens,
	}

	if len(apiResp.Choices) == 0 {
		return &TextGenerationResponse{Usage: usage}, fmt.Errorf("%w: no choices in response", ErrUpstream)
	}

	return &TextGenerationResponse{
		Text:  strings.TrimSpace(apiResp.Choices[0].Message.Content),
		Usage: usage,
	}, nil
}
