package emotion

import "strings"

// Category is one of the closed set of mood labels the companion knows.
type Category string

const (
	Happy    Category = "happy"
	Sad      Category = "sad"
	Anxious  Category = "anxious"
	Angry    Category = "angry"
	Neutral  Category = "neutral"
	Tired    Category = "tired"
	Calm     Category = "calm"
	Stressed Category = "stressed"
)

// All lists categories in display order (the order of the mood picker).
var All = []Category{Happy, Sad, Anxious, Angry, Neutral, Tired, Calm, Stressed}

var emojis = map[Category]string{
	Happy:    "😊",
	Sad:      "😢",
	Anxious:  "😰",
	Angry:    "😡",
	Neutral:  "😐",
	Tired:    "😴",
	Calm:     "😌",
	Stressed: "😓",
}

// Parse resolves a user-supplied name to a category, ignoring case and
// surrounding whitespace.
func Parse(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := emojis[c]
	return c, ok
}

func (c Category) Valid() bool {
	_, ok := emojis[c]
	return ok
}

// Emoji falls back to the neutral face for unknown values.
func (c Category) Emoji() string {
	if e, ok := emojis[c]; ok {
		return e
	}
	return emojis[Neutral]
}

// Label is the capitalized name, e.g. "Happy".
func (c Category) Label() string {
	s := string(c)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Display renders "😊 Happy".
func (c Category) Display() string {
	return c.Emoji() + " " + c.Label()
}
