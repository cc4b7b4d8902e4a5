package field

import (
	"regexp"
	"strings"
)

// CoreDescription is the fixed self-description the controller feeds the
// engine during bootstrap, on empty input, and on the periodic self-signal
// tick. Process-wide immutable; always passed explicitly, never read as
// ambient state by the engine.
const CoreDescription = "Together we write, and because each line connects " +
	"to the next, the page grows clear. What matters here? Structure, " +
	"intent, and steady flow; so the draft becomes whole."

// Signals is one tick's worth of text-derived targets, each in [0,1].
// Consumed immediately by the update step, never stored.
type Signals struct {
	L float64
	J float64
	P float64
	W float64
}

// Neutral targets returned for empty or whitespace-only input. Non-zero so
// an empty document settles instead of collapsing the field.
var neutralSignals = Signals{L: 0.40, J: 0.45, P: 0.35, W: 0.30}

var (
	wordRe      = regexp.MustCompile(`\S+`)
	punctRe     = regexp.MustCompile(`[.,;:!?]`)
	connectorRe = regexp.MustCompile(`\b(and|with|together|because|therefore|so)\b`)
)

// ExtractSignals maps raw text onto LJPW targets using first-order lexical
// proxies:
//
//	L — connector word density (relational intent)
//	J — punctuation density (structured, bounded sentences)
//	P — characters per line (content density, drafting momentum)
//	W — question rate plus words per line (reflective passages)
//
// Total over any input; deterministic; no side effects.
func ExtractSignals(text string) Signals {
	if strings.TrimSpace(text) == "" {
		return neutralSignals
	}

	chars := len(text)
	words := len(wordRe.FindAllString(text, -1))
	lines := strings.Count(text, "\n") + 1
	punctuation := len(punctRe.FindAllString(text, -1))
	questions := strings.Count(text, "?")
	connectors := len(connectorRe.FindAllString(strings.ToLower(text), -1))

	if words < 1 {
		words = 1
	}
	if lines < 1 {
		lines = 1
	}

	return Signals{
		L: clamp(0.35+(float64(connectors)/float64(words))*2.0, 0, 1),
		J: clamp(0.35+(float64(punctuation)/float64(words))*1.6, 0, 1),
		P: clamp(0.30+(float64(chars)/float64(lines))/250.0, 0, 1),
		W: clamp(0.30+(float64(questions)/float64(lines))*0.5+(float64(words)/float64(lines))/90.0, 0, 1),
	}
}

// WordCount counts whitespace-separated tokens; the autosave policy keys
// off this.
func WordCount(text string) int {
	return len(wordRe.FindAllString(text, -1))
}
