package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/afiya/afiyacare/internal/bot"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// MaxMessageLength is Telegram's limit for one text message, in characters
const MaxMessageLength = 4096

// ErrSendFailed wraps every delivery failure
var ErrSendFailed = errors.New("telegram send failed")

// Sender delivers replies to Telegram chats. It implements bot.Replier.
type Sender struct {
	api       API
	parseMode string
	logger    zerolog.Logger
}

// NewSender creates a sender. parseMode is a Telegram parse mode; "" or
// "none" sends plain text.
func NewSender(api API, parseMode string, log zerolog.Logger) *Sender {
	if parseMode == "none" {
		parseMode = ""
	}
	return &Sender{
		api:       api,
		parseMode: parseMode,
		logger:    log.With().Str("component", "telegram").Str("module", "sender").Logger(),
	}
}

// Sender returns a Replier bound to this bot's API
func (b *Bot) Sender() *Sender {
	return NewSender(b.api, b.config.ParseMode, b.logger)
}

// Reply sends text to the event's chat, split into as many messages as the
// length limit requires. If Telegram rejects the markup, the chunk is resent
// as plain text.
func (s *Sender) Reply(ctx context.Context, ev bot.Event, text string) error {
	chatID, err := strconv.ParseInt(ev.ConversationID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid chat id %q", ErrSendFailed, ev.ConversationID)
	}

	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
		if err := s.send(chatID, chunk); err != nil {
			return err
		}
	}

	s.logger.Debug().Int64("chat_id", chatID).Msg("Reply sent")
	return nil
}

func (s *Sender) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = s.parseMode

	_, err := s.api.Send(msg)
	if err == nil {
		return nil
	}
	if s.parseMode == "" {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	s.logger.Warn().
		Err(err).
		Int64("chat_id", chatID).
		Str("parse_mode", s.parseMode).
		Msg("Formatted send failed, retrying as plain text")

	msg.ParseMode = ""
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return nil
}

// SplitMessage breaks text into chunks of at most limit characters,
// preferring to cut after a newline.
func SplitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > limit {
		cut := limit
		if i := lastNewline(runes[:limit]); i > 0 {
			cut = i + 1
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastNewline(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == '\n' {
			return i
		}
	}
	return -1
}
