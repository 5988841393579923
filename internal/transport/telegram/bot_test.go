package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
)

type fakeAPI struct {
	updates chan tgbotapi.Update

	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests int
	stopped  bool
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) Sent() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type echoRunner struct{}

func (echoRunner) HandleMessage(_ context.Context, msg model.InboundMessage) string {
	return "echo " + msg.Text
}

func textUpdate(userID, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}

func TestInboundFromUpdate(t *testing.T) {
	msg, chatID, ok := inboundFromUpdate(textUpdate(42, -100, "/log_water 200"))
	require.True(t, ok)
	assert.Equal(t, model.InboundMessage{UserID: 42, Text: "/log_water 200"}, msg)
	assert.Equal(t, int64(-100), chatID)

	skipped := []tgbotapi.Update{
		{},
		{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}},
		{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Text: "hi"}},
		textUpdate(1, 1, ""),
	}
	for i, u := range skipped {
		_, _, ok := inboundFromUpdate(u)
		assert.False(t, ok, "update %d", i)
	}
}

func TestBot_RunRepliesToChat(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update)}
	b := newBot(api, model.TelegramConfig{Workers: 2, PollTimeout: 1}, echoRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	api.updates <- textUpdate(7, 700, "hello")
	api.updates <- tgbotapi.Update{}
	api.updates <- textUpdate(8, 800, "world")

	require.Eventually(t, func() bool { return len(api.Sent()) == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	byChat := map[int64]string{}
	for _, m := range api.Sent() {
		byChat[m.ChatID] = m.Text
	}
	assert.Equal(t, map[int64]string{700: "echo hello", 800: "echo world"}, byChat)
	assert.Equal(t, 1, api.requests)
	assert.True(t, api.stopped)
}

func TestBotCommandsMatchRouter(t *testing.T) {
	cmds := botCommands()
	assert.Len(t, cmds, 7)
	for _, c := range cmds {
		assert.NotEmpty(t, c.Description, c.Command)
	}
}

func TestNewBot_RequiresToken(t *testing.T) {
	_, err := NewBot(model.TelegramConfig{Token: "  "}, echoRunner{})
	assert.Error(t, err)
}
