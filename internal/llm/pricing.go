package llm

import "strings"

// price per 1K tokens in USD
type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// per-provider price table; "*" is the fallback for unknown models
var DefaultPricing = map[Provider]map[string]ModelPricing{
	ProviderAnthropic: {
		"claude-opus-4-20250514":     {InputPer1K: 0.015, OutputPer1K: 0.075},
		"claude-sonnet-4-20250514":   {InputPer1K: 0.003, OutputPer1K: 0.015},
		"claude-3-5-sonnet-20241022": {InputPer1K: 0.003, OutputPer1K: 0.015},
		"claude-3-5-haiku-20241022":  {InputPer1K: 0.0008, OutputPer1K: 0.004},
		"claude-3-haiku-20240307":    {InputPer1K: 0.00025, OutputPer1K: 0.00125},
		"*":                          {InputPer1K: 0.003, OutputPer1K: 0.015},
	},
	ProviderOpenAI: {
		"gpt-4o":      {InputPer1K: 0.0025, OutputPer1K: 0.01},
		"gpt-4o-mini": {InputPer1K: 0.00015, OutputPer1K: 0.0006},
		"gpt-4-turbo": {InputPer1K: 0.01, OutputPer1K: 0.03},
		"*":           {InputPer1K: 0.0025, OutputPer1K: 0.01},
	},
}

// USD cost of one call. unknown providers are priced at the most expensive
// fallback so spend is never under-counted.
func Cost(provider Provider, model string, usage Usage) float64 {
	p := lookupPricing(provider, model)
	return float64(usage.InputTokens)/1000*p.InputPer1K + float64(usage.OutputTokens)/1000*p.OutputPer1K
}

func lookupPricing(provider Provider, model string) ModelPricing {
	models, ok := DefaultPricing[provider]
	if !ok {
		return ModelPricing{InputPer1K: 0.015, OutputPer1K: 0.075}
	}

	if p, ok := models[model]; ok {
		return p
	}

	if p, ok := models[strings.ToLower(model)]; ok {
		return p
	}

	return models["*"]
}
