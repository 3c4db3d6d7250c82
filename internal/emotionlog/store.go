package emotionlog

import (
	"time"

	"github.com/google/uuid"

	"mindbuddy/internal/emotion"
)

type Source string

const (
	SourceManual Source = "manual"
	SourceChat   Source = "chat"
	SourceQuick  Source = "quick"
)

const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5
)

// Entry is a single logged emotion. Entries are never mutated once
// appended.
type Entry struct {
	ID        string           `json:"id"`
	Emotion   emotion.Category `json:"emotion"`
	Intensity int              `json:"intensity"`
	Timestamp time.Time        `json:"timestamp"`
	Notes     string           `json:"notes,omitempty"`
	Source    Source           `json:"source"`
}

// NewEntry stamps a fresh id on an entry.
func NewEntry(cat emotion.Category, intensity int, ts time.Time, notes string, src Source) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Emotion:   cat,
		Intensity: intensity,
		Timestamp: ts,
		Notes:     notes,
		Source:    src,
	}
}

// Store is an append-only, insertion-ordered log. It is not safe for
// concurrent use; the owning session serializes access.
type Store struct {
	entries []Entry
}

func NewStore() *Store { return &Store{} }

func (s *Store) Append(e Entry) {
	s.entries = append(s.entries, e)
}

// Recent returns up to n of the latest entries, newest first.
func (s *Store) Recent(n int) []Entry {
	if n <= 0 || len(s.entries) == 0 {
		return []Entry{}
	}
	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

func (s *Store) Latest() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// All returns a copy of every entry in insertion order.
func (s *Store) All() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Len() int { return len(s.entries) }

func (s *Store) Clear() { s.entries = nil }

// Restore replaces the contents with previously persisted entries.
func (s *Store) Restore(entries []Entry) {
	s.entries = append([]Entry(nil), entries...)
}
