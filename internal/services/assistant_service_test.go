package services

import (
	"context"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAssistant struct {
	got   string
	reply string
	err   error
}

func (a *stubAssistant) Reply(_ context.Context, prompt string) (string, error) {
	a.got = prompt
	return a.reply, a.err
}

func TestChatTrimsPrompt(t *testing.T) {
	bot := &stubAssistant{reply: "We deliver in 20 to 45 minutes."}

	out, err := NewAssistantService(bot).Chat(context.Background(), "  when will it arrive?\n")
	require.NoError(t, err)
	assert.Equal(t, "when will it arrive?", bot.got)
	assert.Equal(t, "We deliver in 20 to 45 minutes.", out.Reply)
}

func TestChatRejectsBadPrompts(t *testing.T) {
	bot := &stubAssistant{reply: "unused"}
	svc := NewAssistantService(bot)

	for _, prompt := range []string{"", "   ", strings.Repeat("a", MaxPromptLength+1)} {
		_, err := svc.Chat(context.Background(), prompt)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
	assert.Empty(t, bot.got)

	_, err := svc.Chat(context.Background(), strings.Repeat("é", MaxPromptLength))
	assert.NoError(t, err)
}

func TestChatUnavailable(t *testing.T) {
	ctx := context.Background()

	_, err := NewAssistantService(nil).Chat(ctx, "hello")
	assert.ErrorIs(t, err, models.ErrAssistantUnavailable)

	_, err = NewAssistantService(&stubAssistant{err: errTransportDown}).Chat(ctx, "hello")
	assert.ErrorIs(t, err, models.ErrAssistantUnavailable)

	// validation wins over a missing assistant
	_, err = NewAssistantService(nil).Chat(ctx, "")
	assert.ErrorIs(t, err, models.ErrValidation)
}
