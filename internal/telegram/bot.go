package telegram

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/afiya/afiyacare/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// pollTimeoutSeconds is the long-poll timeout for getUpdates
const pollTimeoutSeconds = 60

// API is the subset of tgbotapi.BotAPI the bot uses
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// UpdateHandler receives every update the bot polls
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Bot represents a Telegram bot instance
type Bot struct {
	api    API
	self   tgbotapi.User
	config config.TelegramConfig
	logger zerolog.Logger

	running atomic.Bool
}

// New authenticates against the Bot API and returns a bot ready to Run
func New(cfg config.TelegramConfig, log zerolog.Logger) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot := NewWithAPI(api, api.Self, cfg, log)

	bot.logger.Info().
		Str("username", api.Self.UserName).
		Int64("id", api.Self.ID).
		Msg("Telegram bot authenticated")

	return bot, nil
}

// NewWithAPI builds a bot over an existing API client
func NewWithAPI(api API, self tgbotapi.User, cfg config.TelegramConfig, log zerolog.Logger) *Bot {
	return &Bot{
		api:    api,
		self:   self,
		config: cfg,
		logger: log.With().Str("component", "telegram").Logger(),
	}
}

// Run polls for updates and passes each to handler until ctx ends or the
// update channel closes. It returns an error only if the bot is already running.
func (b *Bot) Run(ctx context.Context, handler UpdateHandler) error {
	if !b.running.CompareAndSwap(false, true) {
		return fmt.Errorf("bot is already running")
	}
	defer b.running.Store(false)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Msg("Telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info().Msg("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				b.logger.Warn().Msg("Update channel closed")
				return nil
			}
			if err := handler.HandleUpdate(ctx, update); err != nil {
				b.logger.Error().
					Err(err).
					Int("update_id", update.UpdateID).
					Msg("Failed to handle update")
			}
		}
	}
}

// IsRunning reports whether Run is polling
func (b *Bot) IsRunning() bool {
	return b.running.Load()
}

// Username returns the bot's Telegram username
func (b *Bot) Username() string {
	return b.self.UserName
}

// GetBotInfo returns bot information
func (b *Bot) GetBotInfo() map[string]interface{} {
	return map[string]interface{}{
		"username":  b.self.UserName,
		"id":        b.self.ID,
		"firstName": b.self.FirstName,
		"running":   b.IsRunning(),
	}
}
