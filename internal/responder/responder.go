package responder

import (
	"mindbuddy/internal/emotion"
)

// CrisisMessage overrides every other reply when crisis language is found.
const CrisisMessage = "I'm really concerned about you right now. Please know that you're not alone and there are people who want to help. Would you like me to share some crisis resources with you? Remember, you can always call 988 for immediate support. 💙"

var emotionReplies = map[emotion.Category][]string{
	emotion.Happy: {
		"That's wonderful to hear! What's contributing to these positive feelings?",
		"I'm so glad you're feeling good! Want to share what's going well?",
	},
	emotion.Sad: {
		"I hear that you're going through a tough time. You're not alone in this.",
		"It's okay to feel sad sometimes. Would you like to talk about what's happening?",
	},
	emotion.Anxious: {
		"Anxiety can be really overwhelming. Let's take this one step at a time.",
		"I understand you're feeling anxious. Would some breathing exercises help right now?",
	},
	emotion.Angry: {
		"Those angry feelings are valid. It sounds like something really bothered you.",
		"Anger can be intense. Want to talk about what triggered these feelings?",
	},
	emotion.Neutral: {
		"Thanks for checking in. Sometimes neutral is exactly where we need to be.",
		"How has your day been overall?",
	},
	emotion.Tired: {
		"It sounds like you're feeling drained. Rest is important for your wellbeing.",
		"Being tired can affect how we feel. Have you been getting enough sleep?",
	},
	emotion.Calm: {
		"That's lovely to hear. It's wonderful when we can find moments of peace.",
		"I'm glad you're feeling calm right now. What's helping you feel this way?",
	},
	emotion.Stressed: {
		"Stress can be really challenging to deal with. You're taking a good step by checking in.",
		"I hear that you're feeling stressed. What's been weighing on your mind?",
	},
}

var generalReplies = []string{
	"Thank you for sharing that with me. I'm here to listen and support you.",
	"I appreciate you opening up. How can I best support you right now?",
	"It sounds like you have a lot on your mind. I'm here for you.",
	"I want you to know that your feelings are valid and you're not alone in this.",
	"That takes courage to share. What would be most helpful for you right now?",
}

// Rand is the random source used to pick replies; *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Classifier is the part of emotion.Classifier the selector needs.
type Classifier interface {
	Classify(text string) (emotion.Category, bool)
	DetectsCrisis(text string) bool
}

type Kind string

const (
	KindCrisis  Kind = "crisis"
	KindEmotion Kind = "emotion"
	KindGeneral Kind = "general"
)

// Reply is the selected response plus the path that produced it.
type Reply struct {
	Text    string
	Kind    Kind
	Emotion emotion.Category
}

type Selector struct {
	classifier Classifier
	rnd        Rand
}

func New(classifier Classifier, rnd Rand) *Selector {
	return &Selector{classifier: classifier, rnd: rnd}
}

// Respond picks a reply for a user message: crisis first, then the
// detected emotion's pool, then the general pool.
func (s *Selector) Respond(message string) string {
	return s.Select(message).Text
}

func (s *Selector) Select(message string) Reply {
	if s.classifier.DetectsCrisis(message) {
		return Reply{Text: CrisisMessage, Kind: KindCrisis}
	}
	if cat, ok := s.classifier.Classify(message); ok {
		if pool := emotionReplies[cat]; len(pool) > 0 {
			return Reply{Text: s.pick(pool), Kind: KindEmotion, Emotion: cat}
		}
	}
	return Reply{Text: s.pick(generalReplies), Kind: KindGeneral}
}

// ReplyFor picks from a category's pool directly, used for explicit
// check-ins where nothing needs classifying.
func (s *Selector) ReplyFor(cat emotion.Category) string {
	if pool := emotionReplies[cat]; len(pool) > 0 {
		return s.pick(pool)
	}
	return s.pick(generalReplies)
}

func (s *Selector) pick(pool []string) string {
	return pool[s.rnd.Intn(len(pool))]
}

// Pool returns a copy of the reply pool for a category.
func Pool(cat emotion.Category) []string {
	return append([]string(nil), emotionReplies[cat]...)
}

// GeneralPool returns a copy of the fallback replies.
func GeneralPool() []string {
	return append([]string(nil), generalReplies...)
}
