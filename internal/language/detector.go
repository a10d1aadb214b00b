package language

import "strings"

// Marker sets are checked in this order; the first matching set wins.
// Yoruba, Hausa and Igbo markers match as substrings anywhere in the text,
// so short markers hit inside unrelated words ("ti" in "time", "da" in
// "today"). Pidgin markers must appear as whole whitespace-separated tokens.
// The Igbo "ọ" marker can never fire because the Yoruba set already
// contains it. These are known heuristic limitations; callers rely on the
// exact behavior.
var (
	yorubaMarkers = []string{"ẹ", "ọ", "ṣ", "bawo", "ni", "mo", "ti"}
	hausaMarkers  = []string{"sannu", "yaya", "ina", "da", "ciwon"}
	igboMarkers   = []string{"kedu", "ndewo", "enwere", "ọ"}
	pidginMarkers = []string{"wetin", "dey", "fit", "no", "go", "make"}
)

// pidginThreshold is the number of distinct pidgin markers required
const pidginThreshold = 2

// Detect classifies text into one of the supported languages. It never
// fails and falls back to English.
func Detect(text string) Code {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, yorubaMarkers):
		return Yoruba
	case containsAny(lower, hausaMarkers):
		return Hausa
	case containsAny(lower, igboMarkers):
		return Igbo
	case countTokens(lower, pidginMarkers) >= pidginThreshold:
		return Pidgin
	default:
		return Default
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// countTokens returns how many markers appear as exact tokens of s
func countTokens(s string, markers []string) int {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		tokens[tok] = struct{}{}
	}

	count := 0
	for _, m := range markers {
		if _, ok := tokens[m]; ok {
			count++
		}
	}
	return count
}
