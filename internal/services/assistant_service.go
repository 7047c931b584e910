package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/gin-food-api/internal/assistant"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
)

// MaxPromptLength is the longest customer prompt, in characters
const MaxPromptLength = 500

// ChatReply is the assistant's answer to one prompt
type ChatReply struct {
	Reply string `json:"reply"`
}

// AssistantService answers customer help questions
type AssistantService interface {
	Chat(ctx context.Context, prompt string) (*ChatReply, error)
}

type assistantService struct {
	assistant assistant.Assistant
}

// NewAssistantService creates the help chat service. A nil assistant makes
// every prompt fail with ErrAssistantUnavailable.
func NewAssistantService(a assistant.Assistant) AssistantService {
	return &assistantService{assistant: a}
}

func (s *assistantService) Chat(ctx context.Context, prompt string) (*ChatReply, error) {
	prompt = strings.TrimSpace(prompt)
	switch {
	case prompt == "":
		return nil, fmt.Errorf("%w: prompt is required", models.ErrValidation)
	case utf8.RuneCountInString(prompt) > MaxPromptLength:
		return nil, fmt.Errorf("%w: prompt exceeds %d characters", models.ErrValidation, MaxPromptLength)
	}
	if s.assistant == nil {
		return nil, fmt.Errorf("%w: no assistant configured", models.ErrAssistantUnavailable)
	}

	text, err := s.assistant.Reply(ctx, prompt)
	if err != nil {
		log.WithError(err).Error("Assistant reply failed")
		return nil, fmt.Errorf("%w: %v", models.ErrAssistantUnavailable, err)
	}
	return &ChatReply{Reply: text}, nil
}
