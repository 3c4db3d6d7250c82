package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mindbuddy/internal/activity"
	"mindbuddy/internal/emotion"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/responder"
)

// Reply is the outcome of a user chat message. The bot message is not
// part of the transcript until DeliverReply is called.
type Reply struct {
	Text     string
	Kind     responder.Kind
	Detected *emotionlog.Entry
}

// OnUserMessage records the message, logs any detected emotion and picks
// a reply. A detected emotion is logged even when the reply is the
// crisis message.
func (s *Session) OnUserMessage(ctx context.Context, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript.AppendUser(text, now)
	sel := s.responder.Select(text)
	out := Reply{Text: sel.Text, Kind: sel.Kind}

	if cat, ok := s.classifier.Classify(text); ok {
		e := emotionlog.NewEntry(cat, emotionlog.DefaultIntensity, now, chatNote(text), emotionlog.SourceChat)
		s.logs.Append(e)
		out.Detected = &e
		s.log.Debugf("🎯 detected %s from chat", cat)
	}
	if sel.Kind == responder.KindCrisis {
		s.log.Warnf("🚨 crisis language detected, sent crisis resources")
	}
	s.save(ctx)
	return out, nil
}

// DeliverReply adds a delivered bot reply to the transcript and the
// activity feed.
func (s *Session) DeliverReply(ctx context.Context, r Reply) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript.AppendBot(r.Text, now)
	s.feed.Append(activityChat, now)
	s.save(ctx)
}

func chatNote(text string) string {
	r := []rune(text)
	if len(r) > chatNoteMaxRunes {
		r = r[:chatNoteMaxRunes]
	}
	return chatNotePrefix + `"` + string(r) + `..."`
}

// LogEmotion records a manual entry. A missing or unknown emotion, or an
// intensity outside 1..10, is rejected with ErrInvalidInput.
func (s *Session) LogEmotion(ctx context.Context, cat emotion.Category, intensity int, notes string) (emotionlog.Entry, error) {
	e, err := s.record(ctx, cat, intensity, notes, emotionlog.SourceManual)
	if err != nil {
		return emotionlog.Entry{}, err
	}
	s.LogActivity("Logged emotion: "+string(cat), e.Timestamp)
	return e, nil
}

// QuickCheckIn records a one-tap mood with the default intensity.
func (s *Session) QuickCheckIn(ctx context.Context, cat emotion.Category) (emotionlog.Entry, error) {
	return s.record(ctx, cat, emotionlog.DefaultIntensity, quickNote, emotionlog.SourceQuick)
}

func (s *Session) record(ctx context.Context, cat emotion.Category, intensity int, notes string, src emotionlog.Source) (emotionlog.Entry, error) {
	if cat == "" {
		return emotionlog.Entry{}, fmt.Errorf("%w: please select an emotion first", ErrInvalidInput)
	}
	if !cat.Valid() {
		return emotionlog.Entry{}, fmt.Errorf("%w: unknown emotion %q", ErrInvalidInput, cat)
	}
	if intensity < emotionlog.MinIntensity || intensity > emotionlog.MaxIntensity {
		return emotionlog.Entry{}, fmt.Errorf("%w: intensity %d out of range %d-%d",
			ErrInvalidInput, intensity, emotionlog.MinIntensity, emotionlog.MaxIntensity)
	}
	switch src {
	case emotionlog.SourceManual, emotionlog.SourceChat, emotionlog.SourceQuick:
	default:
		return emotionlog.Entry{}, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, src)
	}

	e := emotionlog.NewEntry(cat, intensity, s.now(), notes, src)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs.Append(e)
	s.save(ctx)
	return e, nil
}

// ReplyFor picks a reply for an explicitly chosen emotion.
func (s *Session) ReplyFor(cat emotion.Category) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responder.ReplyFor(cat)
}

// RecentEmotionLogs returns up to n entries, newest first.
func (s *Session) RecentEmotionLogs(n int) []emotionlog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.Recent(n)
}

func (s *Session) EmotionLogs() []emotionlog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.All()
}

// CurrentMood is the most recently logged entry.
func (s *Session) CurrentMood() (emotionlog.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logs.Latest()
}

// LogActivity appends to the activity feed.
func (s *Session) LogActivity(message string, ts time.Time) activity.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.feed.Append(message, ts)
	s.save(context.Background())
	return e
}

// RecentActivity returns up to n activity entries, newest first.
func (s *Session) RecentActivity(n int) []activity.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Recent(n)
}
