package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/afiya/afiyacare/internal/bot"
	"github.com/afiya/afiyacare/pkg/commandqueue"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMessages struct {
	mu     sync.Mutex
	events []bot.Event
}

func (r *recordingMessages) HandleMessage(ctx context.Context, ev bot.Event) bot.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return bot.OutcomeReplied
}

func (r *recordingMessages) snapshot() []bot.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bot.Event(nil), r.events...)
}

func privateUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 11,
			From: &tgbotapi.User{
				ID:        12345,
				FirstName: "Ada",
				LastName:  "Obi",
				UserName:  "adaobi",
			},
			Chat: &tgbotapi.Chat{ID: 67890, Type: "private"},
			Text: text,
			Date: int(time.Now().Unix()),
		},
	}
}

func commandUpdate(text string, length int) tgbotapi.Update {
	update := privateUpdate(text)
	update.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	return update
}

func TestEventFromUpdate(t *testing.T) {
	t.Run("private text message", func(t *testing.T) {
		ev, ok := EventFromUpdate(privateUpdate("I have fever"), "afiyabot")
		require.True(t, ok)

		assert.Equal(t, bot.Event{
			Channel:        "telegram",
			ConversationID: "67890",
			DisplayName:    "Ada Obi",
			Text:           "I have fever",
			MessageID:      11,
		}, ev)
	})

	t.Run("group message is flagged", func(t *testing.T) {
		update := privateUpdate("hello")
		update.Message.Chat = &tgbotapi.Chat{ID: -100123, Type: "supergroup"}

		ev, ok := EventFromUpdate(update, "afiyabot")
		require.True(t, ok)
		assert.True(t, ev.IsGroup)
		assert.Equal(t, "-100123", ev.ConversationID)
	})

	t.Run("username used without a first name", func(t *testing.T) {
		update := privateUpdate("hello")
		update.Message.From = &tgbotapi.User{ID: 1, UserName: "anon"}

		ev, _ := EventFromUpdate(update, "afiyabot")
		assert.Equal(t, "anon", ev.DisplayName)
	})

	t.Run("missing sender leaves name empty", func(t *testing.T) {
		update := privateUpdate("hello")
		update.Message.From = nil

		ev, ok := EventFromUpdate(update, "afiyabot")
		require.True(t, ok)
		assert.Empty(t, ev.DisplayName)
	})

	t.Run("caption used for media", func(t *testing.T) {
		update := privateUpdate("")
		update.Message.Caption = "rash on my arm"
		update.Message.Photo = []tgbotapi.PhotoSize{{FileID: "photo-1"}}

		ev, _ := EventFromUpdate(update, "afiyabot")
		assert.Equal(t, "rash on my arm", ev.Text)
	})

	t.Run("command addressed to this bot", func(t *testing.T) {
		ev, _ := EventFromUpdate(commandUpdate("/start@afiyabot", 15), "AfiyaBot")
		assert.Equal(t, "/start", ev.Text)
	})

	t.Run("command addressed to another bot", func(t *testing.T) {
		ev, _ := EventFromUpdate(commandUpdate("/start@otherbot", 15), "afiyabot")
		assert.Equal(t, "/start@otherbot", ev.Text)
	})

	t.Run("plain command untouched", func(t *testing.T) {
		ev, _ := EventFromUpdate(commandUpdate("/help", 5), "afiyabot")
		assert.Equal(t, "/help", ev.Text)
	})

	t.Run("non message updates skipped", func(t *testing.T) {
		_, ok := EventFromUpdate(tgbotapi.Update{UpdateID: 5}, "afiyabot")
		assert.False(t, ok)

		_, ok = EventFromUpdate(tgbotapi.Update{EditedMessage: &tgbotapi.Message{Text: "x"}}, "afiyabot")
		assert.False(t, ok)
	})
}

func TestHandleUpdate_DispatchesThroughQueue(t *testing.T) {
	queue := commandqueue.New(zerolog.Nop())
	defer queue.Close()

	messages := &recordingMessages{}
	handler := NewHandler(queue, messages, "afiyabot", zerolog.Nop())

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, handler.HandleUpdate(context.Background(), privateUpdate(text)))
	}
	require.NoError(t, handler.HandleUpdate(context.Background(), tgbotapi.Update{}))

	assert.Eventually(t, func() bool { return len(messages.snapshot()) == 3 }, time.Second, 5*time.Millisecond)

	var texts []string
	for _, ev := range messages.snapshot() {
		texts = append(texts, ev.Text)
	}
	assert.Equal(t, []string{"one", "two", "three"}, texts)
}

func TestHandleUpdate_PollingCancelDoesNotCancelTask(t *testing.T) {
	queue := commandqueue.New(zerolog.Nop())
	defer queue.Close()

	var taskErr error
	done := make(chan struct{})
	messages := messageFunc(func(ctx context.Context, ev bot.Event) bot.Outcome {
		time.Sleep(20 * time.Millisecond)
		taskErr = ctx.Err()
		close(done)
		return bot.OutcomeReplied
	})
	handler := NewHandler(queue, messages, "afiyabot", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, handler.HandleUpdate(ctx, privateUpdate("hi")))
	cancel()

	<-done
	assert.NoError(t, taskErr)
}

func TestHandleUpdate_QueueClosed(t *testing.T) {
	queue := commandqueue.New(zerolog.Nop())
	require.NoError(t, queue.Close())

	handler := NewHandler(queue, &recordingMessages{}, "afiyabot", zerolog.Nop())
	err := handler.HandleUpdate(context.Background(), privateUpdate("hi"))
	assert.ErrorIs(t, err, commandqueue.ErrClosed)
}

func TestLaneFor(t *testing.T) {
	assert.Equal(t, "conversation:67890", LaneFor("67890"))
}

type messageFunc func(ctx context.Context, ev bot.Event) bot.Outcome

func (f messageFunc) HandleMessage(ctx context.Context, ev bot.Event) bot.Outcome {
	return f(ctx, ev)
}
