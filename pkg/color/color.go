// Package color applies per-actor display preferences to roleplay text:
// quoted speech gets the receiver's speech color, and configured words are
// highlighted wherever they appear.
package color

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultSpeechColor is used when an actor has no speech color preference.
const DefaultSpeechColor = "|y"

// Prefs holds one actor's coloring preferences.
type Prefs struct {
	SpeechColor string
	WordColors  map[string]string // lowercase word -> color tag
}

// Quoted spans use matching single or double quotes with no quote characters
// inside, mirroring how players actually type speech in emits.
var speechRE = regexp.MustCompile(`"[^"']*"|'[^"']*'`)

// ColorizeSpeech wraps quoted speech, quotes included, in the given color.
func ColorizeSpeech(message, speechColor string) string {
	if speechColor == "" {
		speechColor = DefaultSpeechColor
	}
	return speechRE.ReplaceAllStringFunc(message, func(m string) string {
		return speechColor + m + "|n"
	})
}

// ColorizeWords highlights each configured word, whole words only,
// case-insensitively. Words are applied in sorted order so output is
// deterministic.
func ColorizeWords(message string, wordColors map[string]string) string {
	if len(wordColors) == 0 {
		return message
	}
	words := make([]string, 0, len(wordColors))
	for w := range wordColors {
		words = append(words, w)
	}
	sort.Strings(words)

	for _, word := range words {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err != nil {
			continue
		}
		message = re.ReplaceAllString(message, wordColors[word]+"$0|n")
	}
	return message
}

// Apply runs word coloring first, then speech coloring, matching the order
// players expect: a highlighted word inside speech keeps its highlight.
func Apply(message string, prefs Prefs) string {
	message = ColorizeWords(message, prefs.WordColors)
	return ColorizeSpeech(message, prefs.SpeechColor)
}

// ColorizeName applies word highlights to a sender name used in emit
// attribution ("Ada sits down", "(Ada) message").
func ColorizeName(name string, prefs Prefs) string {
	return ColorizeWords(name, prefs.WordColors)
}

// EscapeTags doubles color-tag markers so a tag displays as literal text in
// confirmation messages.
func EscapeTags(s string) string {
	return strings.ReplaceAll(s, "|", "||")
}

// ValidTag reports whether a player-supplied color code is plausibly a
// color tag. Only the leading marker is checked; the display layer ignores
// unknown tags.
func ValidTag(s string) bool {
	return strings.HasPrefix(s, "|") && len(s) > 1
}
