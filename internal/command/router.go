package command

import "strings"

// Kind enumerates the commands the bot understands
type Kind int

const (
	// Diagnose is the fallthrough for any free-form text
	Diagnose Kind = iota
	Start
	Help
	ListLanguages
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Help:
		return "help"
	case ListLanguages:
		return "languages"
	default:
		return "diagnose"
	}
}

// Command is the routing decision for one message
type Command struct {
	Kind Kind
	// Text is the original message, set for Diagnose
	Text string
}

// startTriggers are greetings in several languages plus the start command
var startTriggers = map[string]struct{}{
	"/start": {},
	"hi":     {},
	"hello":  {},
	"bawo":   {},
	"sannu":  {},
}

// Route maps a message to a command. Matching is exact on the trimmed,
// lower-cased text; everything else becomes a diagnosis request carrying
// the text as received.
func Route(text string) Command {
	key := Normalize(text)

	if _, ok := startTriggers[key]; ok {
		return Command{Kind: Start}
	}

	switch key {
	case "/help":
		return Command{Kind: Help}
	case "/languages":
		return Command{Kind: ListLanguages}
	}

	return Command{Kind: Diagnose, Text: text}
}

// Normalize returns the comparison form of a message
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
