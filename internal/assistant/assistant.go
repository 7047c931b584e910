// Package assistant answers short customer questions about the menu and
// deliveries through a chat completion model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are the friendly assistant of a food delivery service.
Help the customer with menu questions and delivery times (20-45 minutes).
Keep every answer short, at most two sentences.`

// Assistant replies to a single customer prompt
type Assistant interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// OpenAIAssistant answers with any OpenAI-compatible chat completion API
type OpenAIAssistant struct {
	client *openai.Client
	model  string
}

type Option func(*openai.ClientConfig)

// WithBaseURL points the assistant at an OpenAI-compatible endpoint
func WithBaseURL(url string) Option {
	return func(cfg *openai.ClientConfig) {
		if url != "" {
			cfg.BaseURL = strings.TrimSuffix(url, "/")
		}
	}
}

func NewOpenAIAssistant(apiKey, model string, opts ...Option) *OpenAIAssistant {
	cfg := openai.DefaultConfig(apiKey)
	for _, opt := range opts {
		opt(&cfg)
	}
	return &OpenAIAssistant{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (a *OpenAIAssistant) Reply(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
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
		return "", errors.New("chat completion returned an empty reply")
	}
	return text, nil
}
