package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewRequestID(t *testing.T) {
	id1 := NewRequestID()
	id2 := NewRequestID()

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetConversationID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithConversationID(ctx, "chat-1")

	tc := FromContext(ctx)
	assert.Equal(t, "req-1", tc.RequestID)
	assert.Equal(t, "chat-1", tc.ConversationID)
}

func TestNewEventContext(t *testing.T) {
	ctx := NewEventContext(context.Background(), "chat-9")

	assert.NotEmpty(t, GetRequestID(ctx))
	assert.Equal(t, "chat-9", GetConversationID(ctx))
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithConversationID(WithRequestID(context.Background(), "req-1"), "chat-1")
	log := LoggerFromContext(ctx, base)
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"conversation_id":"chat-1"`)
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(WithRequestID(context.Background(), "req-1"), "test.span")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.Equal(t, "req-1", GetRequestID(ctx))
}
