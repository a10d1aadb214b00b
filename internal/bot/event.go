package bot

import "context"

// Event is one inbound chat message, already stripped of transport details
type Event struct {
	// Channel names the transport, used as a metrics label
	Channel string
	// ConversationID is the opaque identity replies are addressed to
	ConversationID string
	// DisplayName is the sender's name as reported by the platform, may be empty
	DisplayName string
	Text        string
	IsGroup     bool
	// MessageID is the platform message id, zero when unknown
	MessageID int
}

// Replier sends a text message back to the conversation an event came from
type Replier interface {
	Reply(ctx context.Context, ev Event, text string) error
}

// ReplierFunc adapts a function to Replier
type ReplierFunc func(ctx context.Context, ev Event, text string) error

// Reply calls f
func (f ReplierFunc) Reply(ctx context.Context, ev Event, text string) error {
	return f(ctx, ev, text)
}

// Outcome is the terminal state of handling one event
type Outcome int

const (
	// OutcomeFiltered means the event came from a group and was dropped
	OutcomeFiltered Outcome = iota
	// OutcomeIgnored means the event carried no text
	OutcomeIgnored
	// OutcomeReplied means a built-in command was answered
	OutcomeReplied
	// OutcomeDiagnosed means a rendered diagnosis was delivered
	OutcomeDiagnosed
	// OutcomeApologized means handling failed and the apology was delivered
	OutcomeApologized
	// OutcomeUndelivered means the final reply could not be sent
	OutcomeUndelivered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFiltered:
		return "filtered"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeReplied:
		return "replied"
	case OutcomeDiagnosed:
		return "diagnosed"
	case OutcomeApologized:
		return "apologized"
	case OutcomeUndelivered:
		return "undelivered"
	default:
		return "unknown"
	}
}
