package language

import "strings"

// Code identifies one of the supported conversation languages
type Code string

const (
	English Code = "en"
	Yoruba  Code = "yo"
	Hausa   Code = "ha"
	Igbo    Code = "ig"
	Pidgin  Code = "pcm"
)

// Default is the language assumed when nothing else matches
const Default = English

// AutoLabel is shown when a code has no display name
const AutoLabel = "Auto"

var displayNames = map[Code]string{
	English: "English",
	Yoruba:  "Yoruba",
	Hausa:   "Hausa",
	Igbo:    "Igbo",
	Pidgin:  "Pidgin",
}

// All returns the supported codes in presentation order
func All() []Code {
	return []Code{English, Yoruba, Hausa, Igbo, Pidgin}
}

// Valid reports whether c is one of the supported codes
func (c Code) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

// String returns the wire form of the code
func (c Code) String() string {
	return string(c)
}

// Parse converts a wire value into a Code. Matching ignores case and
// surrounding whitespace.
func Parse(s string) (Code, bool) {
	c := Code(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// DisplayName returns the human readable name for a wire code, or AutoLabel
// when the code is not recognized.
func DisplayName(code string) string {
	if name, ok := displayNames[Code(code)]; ok {
		return name
	}
	return AutoLabel
}
