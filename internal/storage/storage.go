package storage

import (
	"context"
	"encoding/json"

	"mindbuddy/internal/activity"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/history"
)

type Profile struct {
	Name string `json:"name" validate:"required"`
	Age  string `json:"age" validate:"required"`
}

type EmergencyContact struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

// Settings toggles check-in behavior. Only EnableNotifications gates the
// simulator; the other two are kept for the settings screen.
type Settings struct {
	EnableNotifications bool `json:"enable_notifications"`
	EnableMotivational  bool `json:"enable_motivational"`
	EnableCoping        bool `json:"enable_coping"`
}

func DefaultSettings() Settings {
	return Settings{EnableNotifications: true, EnableMotivational: true, EnableCoping: true}
}

// Snapshot is the whole persisted session state.
type Snapshot struct {
	Profile          *Profile           `json:"current_user,omitempty"`
	EmergencyContact *EmergencyContact  `json:"emergency_contact,omitempty"`
	EmotionLogs      []emotionlog.Entry `json:"emotion_logs"`
	ChatHistory      []history.Message  `json:"chat_history"`
	Activity         []activity.Entry   `json:"notifications"`
	Settings         Settings           `json:"settings"`
}

// UnmarshalJSON decodes over DefaultSettings, so a document without
// settings, or with only some of them, keeps the defaults for the rest.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	p := plain{Settings: DefaultSettings()}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Snapshot(p)
	return nil
}

// Sink abstracts persistence of the session state.
// Load returns (nil, nil) when nothing has been stored yet.
// Implementations must be safe for concurrent use.
type Sink interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// NoopSink keeps nothing; the session lives in memory only.
type NoopSink struct{}

func (NoopSink) Save(context.Context, Snapshot) error { return nil }

func (NoopSink) Load(context.Context) (*Snapshot, error) { return nil, nil }
