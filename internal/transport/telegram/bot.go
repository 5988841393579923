// Package telegram connects the router to the Telegram Bot API using long
// polling.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hydrotrack-bot/server/internal/tracker/model"
	"github.com/hydrotrack-bot/server/internal/tracker/router"
	"github.com/hydrotrack-bot/server/internal/transport/dispatch"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

// botAPI is the part of *tgbotapi.BotAPI the bot uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api    botAPI
	runner router.Runner
	cfg    model.TelegramConfig
}

func NewBot(cfg model.TelegramConfig, runner router.Runner) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	api.Debug = cfg.Debug
	logx.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	return newBot(api, cfg, runner), nil
}

func newBot(api botAPI, cfg model.TelegramConfig, runner router.Runner) *Bot {
	return &Bot{api: api, runner: runner, cfg: cfg}
}

// Run polls updates until ctx is cancelled, then waits for in-flight
// messages to be answered.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(botCommands()...)); err != nil {
		logx.Warn().Err(err).Msg("failed to register bot commands")
	}

	d := dispatch.New(b.cfg.Workers, b.runner.HandleMessage)
	defer d.Close()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	logx.Info().Int("max_in_flight", b.cfg.Workers).Msg("telegram polling started")
	for {
		select {
		case <-ctx.Done():
			logx.Info().Msg("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, chatID, ok := inboundFromUpdate(update)
			if !ok {
				continue
			}
			job := dispatch.Job{Msg: msg, Reply: b.replyTo(chatID)}
			if err := d.Submit(ctx, job); err != nil {
				logx.Warn().Err(err).Int64("user_id", msg.UserID).Msg("dropped message")
			}
		}
	}
}

func (b *Bot) replyTo(chatID int64) func(string) {
	return func(text string) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			logx.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send reply")
		}
	}
}

// inboundFromUpdate extracts the sender and text of a plain text message.
func inboundFromUpdate(update tgbotapi.Update) (model.InboundMessage, int64, bool) {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return model.InboundMessage{}, 0, false
	}
	return model.InboundMessage{UserID: m.From.ID, Text: m.Text}, m.Chat.ID, true
}

func botCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: router.CmdStart, Description: "Show help"},
		{Command: router.CmdSetProfile, Description: "Set up your profile"},
		{Command: router.CmdLogWater, Description: "Log water in ml"},
		{Command: router.CmdLogFood, Description: "Log food by product name"},
		{Command: router.CmdLogWorkout, Description: "Log a workout"},
		{Command: router.CmdCheckProgress, Description: "Show today's progress"},
		{Command: router.CmdCancel, Description: "Cancel the current question"},
	}
}
