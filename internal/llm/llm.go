package llm

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// upper bound on a provider response body
const maxResponseBytes = 8 << 20

// creates the generator for the configured provider
func NewTextGenerator(config Config) (TextGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required for provider %q", config.Provider)
	}

	switch config.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicGenerator(config), nil
	case ProviderOpenAI:
		return NewOpenAIGenerator(config), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", config.Provider)
	}
}

// reads token counts out of a body that failed to decode as a whole
func usageFromBody(body []byte, inputPath, outputPath string) Usage {
	if !gjson.ValidBytes(body) {
		return Usage{}
	}

	return Usage{
		InputTokens:  int(gjson.GetBytes(body, inputPath).Int()),
		OutputTokens: int(gjson.GetBytes(body, outputPath).Int()),
	}
}
