package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/afiya/afiyacare/internal/bot"
	"github.com/afiya/afiyacare/pkg/commandqueue"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ChannelName labels events that arrive over Telegram
const ChannelName = "telegram"

// MessageHandler processes one chat event to completion
type MessageHandler interface {
	HandleMessage(ctx context.Context, ev bot.Event) bot.Outcome
}

// Handler turns updates into events and dispatches them through per-chat lanes
type Handler struct {
	queue    *commandqueue.CommandQueue
	messages MessageHandler
	username string
	logger   zerolog.Logger
}

// NewHandler creates a handler. username is the bot's own username, used to
// strip "/cmd@username" suffixes.
func NewHandler(queue *commandqueue.CommandQueue, messages MessageHandler, username string, log zerolog.Logger) *Handler {
	return &Handler{
		queue:    queue,
		messages: messages,
		username: username,
		logger:   log.With().Str("component", "telegram").Str("module", "handler").Logger(),
	}
}

// HandleUpdate queues the update's message on its chat lane and returns
// without waiting for it to be handled.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	ev, ok := EventFromUpdate(update, h.username)
	if !ok {
		return nil
	}

	h.logger.Debug().
		Str("conversation_id", ev.ConversationID).
		Int("message_id", ev.MessageID).
		Bool("is_group", ev.IsGroup).
		Msg("Update received")

	// Shutdown is driven by the queue, not by the polling context.
	taskCtx := context.WithoutCancel(ctx)
	_, err := h.queue.Submit(taskCtx, LaneFor(ev.ConversationID), func(ctx context.Context) error {
		h.messages.HandleMessage(ctx, ev)
		return nil
	})
	return err
}

// LaneFor names the queue lane for a conversation
func LaneFor(conversationID string) string {
	return "conversation:" + conversationID
}

// EventFromUpdate extracts a chat event from an update. Updates without a
// message, such as edits and callbacks, are skipped.
func EventFromUpdate(update tgbotapi.Update, botUsername string) (bot.Event, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return bot.Event{}, false
	}

	ev := bot.Event{
		Channel:        ChannelName,
		ConversationID: strconv.FormatInt(msg.Chat.ID, 10),
		Text:           ParseCaption(msg),
		IsGroup:        msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() || msg.Chat.IsChannel(),
		MessageID:      msg.MessageID,
	}

	if msg.From != nil {
		ev.DisplayName = displayName(msg.From)
	}

	if msg.IsCommand() && msg.CommandWithAt() != msg.Command() {
		mention := strings.TrimPrefix(msg.CommandWithAt(), msg.Command()+"@")
		if botUsername == "" || strings.EqualFold(mention, botUsername) {
			ev.Text = "/" + msg.Command()
			if args := msg.CommandArguments(); args != "" {
				ev.Text += " " + args
			}
		}
	}

	return ev, true
}

// ParseCaption extracts the text of a message, using the caption for media
func ParseCaption(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	return u.UserName
}
