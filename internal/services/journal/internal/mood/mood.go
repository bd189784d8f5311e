// Package mood holds the closed mood vocabulary: canonical names, their emoji
// and the keyword table used to infer a mood from free text.
package mood

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mood is a canonical, capitalized mood name. The empty Mood means "no mood".
type Mood string

const (
	Happy      Mood = "Happy"
	Peaceful   Mood = "Peaceful"
	Excited    Mood = "Excited"
	Thoughtful Mood = "Thoughtful"
	Sad        Mood = "Sad"
	Tired      Mood = "Tired"
	Frustrated Mood = "Frustrated"
	Loved      Mood = "Loved"
)

// Default is returned by FromText when no keyword matches.
const Default = Happy

var All = []Mood{Happy, Peaceful, Excited, Thoughtful, Sad, Tired, Frustrated, Loved}

var emojis = map[Mood]string{
	Happy:      "😊",
	Peaceful:   "😌",
	Excited:    "😄",
	Thoughtful: "🤔",
	Sad:        "😔",
	Tired:      "😴",
	Frustrated: "😤",
	Loved:      "🥰",
}

var keywordGroups = map[Mood][]string{
	Happy:      {"joy", "cheerful", "delighted", "content", "pleased", "smile", "grateful", "optimistic", "elated", "glad"},
	Peaceful:   {"peaceful", "calm", "serene", "tranquil", "relaxed", "zen", "still", "quiet", "soothing", "composed"},
	Excited:    {"excited", "thrilled", "eager", "enthusiastic", "animated", "lively", "energetic", "buzzing", "pumped", "ecstatic"},
	Thoughtful: {"thoughtful", "reflective", "pensive", "contemplative", "meditative", "introspective", "pondering", "considering", "curious", "inquiring"},
	Sad:        {"sad", "down", "unhappy", "depressed", "gloomy", "melancholy", "tearful", "blue", "miserable", "sorrow"},
	Tired:      {"tired", "exhausted", "sleepy", "fatigued", "weary", "drowsy", "drained", "sluggish", "lethargic", "spent"},
	Frustrated: {"frustrated", "annoyed", "irritated", "agitated", "upset", "disappointed", "discouraged", "bothered", "exasperated", "impatient"},
	Loved:      {"loved", "adored", "cherished", "valued", "treasured", "cared", "appreciated", "embraced", "special", "affection"},
}

var (
	keywords = make(map[string]Mood)
	byEmoji  = make(map[string]Mood)
)

func init() {
	for m, words := range keywordGroups {
		for _, w := range words {
			keywords[w] = m
		}
	}
	for m, e := range emojis {
		byEmoji[e] = m
	}
}

// Normalize upper-cases the first letter of name and lower-cases the rest.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

// Parse resolves a mood from a name in any case or from its emoji.
func Parse(s string) (Mood, bool) {
	s = strings.TrimSpace(s)
	if m, ok := byEmoji[s]; ok {
		return m, true
	}

	m := Mood(Normalize(s))
	_, ok := emojis[m]
	return m, ok
}

// Valid reports whether m is one of the canonical moods.
func (m Mood) Valid() bool {
	_, ok := emojis[m]
	return ok
}

// Emoji returns the glyph for m, or the name itself when m is not canonical.
func (m Mood) Emoji() string {
	return EmojiFor(string(m))
}

// EmojiFor maps a mood name to its glyph after case normalization. Unknown
// names are returned unchanged.
func EmojiFor(name string) string {
	if e, ok := emojis[Mood(Normalize(name))]; ok {
		return e
	}
	return name
}

// FromText infers a mood from whitespace separated words. When several words
// match, the last one in the text decides.
func FromText(text string) Mood {
	found := Default
	for _, tok := range strings.Fields(text) {
		if m, ok := keywords[strings.ToLower(tok)]; ok {
			found = m
		}
	}
	return found
}
