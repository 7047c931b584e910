package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are a senior logistics analyst for a food delivery business.
Produce a professional operations summary from the data you are given:
1. Operational throughput (active vs. completed orders).
2. Friction points in the delivery pipeline.
3. One actionable recommendation to improve delivery latency or resource allocation.
Keep the tone analytical and executive-ready. Do not mention tools or models.`

// OpenAIGenerator writes reports with any OpenAI-compatible chat completion API
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// OpenAIOption configures an OpenAIGenerator
type OpenAIOption func(*openai.ClientConfig)

// WithBaseURL points the generator at an OpenAI-compatible endpoint
func WithBaseURL(url string) OpenAIOption {
	return func(cfg *openai.ClientConfig) {
		if url != "" {
			cfg.BaseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// NewOpenAIGenerator creates a generator for the given API key and model
func NewOpenAIGenerator(apiKey, model string, opts ...OpenAIOption) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(&cfg)
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, summary Summary) (string, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Operational data: " + string(data)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completion returned an empty report")
	}
	return text, nil
}
