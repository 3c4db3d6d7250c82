package emotion

import "strings"

type keywordSet struct {
	category Category
	keywords []string
}

// priority is the fixed first-match-wins order. Neutral has no keywords
// and can only be chosen explicitly.
var priority = []keywordSet{
	{Happy, []string{"happy", "joy", "great", "awesome", "amazing", "excited", "wonderful", "fantastic", "good", "smile", "laugh"}},
	{Sad, []string{"sad", "down", "depressed", "upset", "crying", "tears", "hurt", "pain", "lonely", "empty"}},
	{Anxious, []string{"anxious", "worried", "nervous", "scared", "afraid", "panic", "stress", "overwhelmed", "fear"}},
	{Angry, []string{"angry", "mad", "furious", "rage", "hate", "annoyed", "frustrated", "irritated"}},
	{Tired, []string{"tired", "exhausted", "drained", "sleepy", "fatigue", "weary"}},
	{Calm, []string{"calm", "peaceful", "relaxed", "serene", "tranquil", "zen"}},
	{Stressed, []string{"stressed", "pressure", "overwhelmed", "busy", "chaotic", "hectic"}},
}

var crisisPhrases = []string{
	"suicide",
	"kill myself",
	"end it all",
	"hurt myself",
	"no point",
	"give up",
	"can't go on",
}

// Classifier maps free text to at most one category by substring lookup.
// The zero value is ready to use.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify returns the first category, in priority order, that has a
// keyword occurring anywhere in the lowercased text. Matching is plain
// substring, so "sadness" matches "sad".
func (c *Classifier) Classify(text string) (Category, bool) {
	lower := strings.ToLower(text)
	for _, set := range priority {
		if containsAny(lower, set.keywords) {
			return set.category, true
		}
	}
	return "", false
}

// DetectsCrisis reports whether the text contains any crisis phrase.
func (c *Classifier) DetectsCrisis(text string) bool {
	return containsAny(strings.ToLower(text), crisisPhrases)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
