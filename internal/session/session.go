// Package session holds the state of one companion session and exposes
// the operations the chat surfaces call: chat messages, emotion logging,
// trends, activity and settings.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mindbuddy/internal/activity"
	"mindbuddy/internal/emotion"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/history"
	"mindbuddy/internal/resources"
	"mindbuddy/internal/responder"
	"mindbuddy/internal/storage"
	"mindbuddy/internal/trend"
)

var (
	// ErrInvalidInput is returned when a request cannot be acted on, e.g.
	// logging without a selected emotion. Nothing is recorded.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingField is returned when a form lacks a required field.
	ErrMissingField = errors.New("missing required field")
)

const (
	chatNotePrefix   = "Detected from chat: "
	chatNoteMaxRunes = 50
	quickNote        = "Quick check-in from dashboard"

	activityChat = "Had a chat conversation"
)

// Session owns every mutable collection of one user session. All methods
// are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	classifier *emotion.Classifier
	responder  *responder.Selector

	logs       *emotionlog.Store
	feed       *activity.Feed
	transcript *history.Transcript

	settings storage.Settings
	profile  *storage.Profile
	contact  *storage.EmergencyContact

	sink     storage.Sink
	validate *validator.Validate
	now      func() time.Time
	rnd      responder.Rand
	log      *zap.SugaredLogger
}

type Option func(*Session)

func WithSink(sink storage.Sink) Option {
	return func(s *Session) { s.sink = sink }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithRand(rnd responder.Rand) Option {
	return func(s *Session) { s.rnd = rnd }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = log }
}

func New(opts ...Option) *Session {
	s := &Session{
		classifier: emotion.NewClassifier(),
		logs:       emotionlog.NewStore(),
		feed:       activity.NewFeed(),
		transcript: history.NewTranscript(),
		settings:   storage.DefaultSettings(),
		sink:       storage.NoopSink{},
		validate:   validator.New(),
		now:        time.Now,
		log:        zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.responder = responder.New(s.classifier, s.rnd)
	return s
}

// Load restores state from the sink. A failing sink is logged and the
// session carries on in memory; it reports whether anything was restored.
func (s *Session) Load(ctx context.Context) bool {
	snap, err := s.sink.Load(ctx)
	if err != nil {
		s.log.Warnf("⚠️ state load unavailable, continuing in memory: %v", err)
		return false
	}
	if snap == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs.Restore(snap.EmotionLogs)
	s.feed.Restore(snap.Activity)
	s.transcript.Restore(snap.ChatHistory)
	s.settings = snap.Settings
	s.profile = snap.Profile
	s.contact = snap.EmergencyContact
	s.log.Infof("📂 restored %d emotion logs, %d activities", s.logs.Len(), s.feed.Len())
	return true
}

// save must be called with s.mu held.
func (s *Session) save(ctx context.Context) {
	if err := s.sink.Save(ctx, s.snapshotLocked()); err != nil {
		s.log.Warnf("⚠️ state save unavailable: %v", err)
	}
}

func (s *Session) snapshotLocked() storage.Snapshot {
	return storage.Snapshot{
		Profile:          s.profile,
		EmergencyContact: s.contact,
		EmotionLogs:      s.logs.All(),
		ChatHistory:      s.transcript.All(),
		Activity:         s.feed.All(),
		Settings:         s.settings,
	}
}

func (s *Session) Snapshot() storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Export renders the full state as indented JSON.
func (s *Session) Export() ([]byte, error) {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// Reset clears all collections and restores default settings.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs.Clear()
	s.feed.Clear()
	s.transcript.Reset()
	s.settings = storage.DefaultSettings()
	s.profile = nil
	s.contact = nil
	s.save(ctx)
	s.log.Infof("🧹 session reset")
}

func (s *Session) Classify(text string) (emotion.Category, bool) {
	return s.classifier.Classify(text)
}

func (s *Session) DetectsCrisis(text string) bool {
	return s.classifier.DetectsCrisis(text)
}

// Now is the session clock.
func (s *Session) Now() time.Time { return s.now() }

func (s *Session) NotificationsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.EnableNotifications
}

func (s *Session) SetNotificationsEnabled(ctx context.Context, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.EnableNotifications = enabled
	s.save(ctx)
}

func (s *Session) Settings() storage.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Session) UpdateSettings(ctx context.Context, st storage.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
	s.save(ctx)
}

// SaveProfile stores the profile when both name and age are present.
func (s *Session) SaveProfile(ctx context.Context, p storage.Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Age = strings.TrimSpace(p.Age)
	if err := s.checkFields(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	s.save(ctx)
	return nil
}

// SaveEmergencyContact stores the contact when both name and phone are
// present.
func (s *Session) SaveEmergencyContact(ctx context.Context, c storage.EmergencyContact) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if err := s.checkFields(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contact = &c
	s.save(ctx)
	return nil
}

func (s *Session) Profile() (storage.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return storage.Profile{}, false
	}
	return *s.profile, true
}

func (s *Session) EmergencyContact() (storage.EmergencyContact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contact == nil {
		return storage.EmergencyContact{}, false
	}
	return *s.contact, true
}

func (s *Session) checkFields(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrMissingField, err)
}

// StartCopingStrategy records that the user began a strategy.
func (s *Session) StartCopingStrategy(ctx context.Context, name string) (resources.CopingStrategy, error) {
	strategy, ok := resources.FindCopingStrategy(name)
	if !ok {
		return resources.CopingStrategy{}, fmt.Errorf("%w: unknown coping strategy %q", ErrInvalidInput, name)
	}
	s.LogActivity("Started coping strategy: "+strategy.Name, s.now())
	return strategy, nil
}

func (s *Session) Transcript() []history.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.All()
}

// DailyAverages is the 7-day mood series ending on now's calendar day.
func (s *Session) DailyAverages(now time.Time) []trend.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return trend.DailyAverages(s.logs.All(), now)
}
