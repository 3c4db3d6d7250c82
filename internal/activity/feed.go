package activity

import "time"

const TypeActivity = "activity"

// Entry is a human-readable event shown on the dashboard, either
// something the user did or a simulated notification.
type Entry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// Feed is append-only and insertion-ordered, like emotionlog.Store, and
// shares its concurrency contract.
type Feed struct {
	entries []Entry
}

func NewFeed() *Feed { return &Feed{} }

func (f *Feed) Append(message string, ts time.Time) Entry {
	e := Entry{Message: message, Timestamp: ts, Type: TypeActivity}
	f.entries = append(f.entries, e)
	return e
}

// Recent returns up to n of the latest entries, newest first.
func (f *Feed) Recent(n int) []Entry {
	if n <= 0 || len(f.entries) == 0 {
		return []Entry{}
	}
	if n > len(f.entries) {
		n = len(f.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(f.entries) - 1; i >= len(f.entries)-n; i-- {
		out = append(out, f.entries[i])
	}
	return out
}

func (f *Feed) All() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *Feed) Len() int { return len(f.entries) }

func (f *Feed) Clear() { f.entries = nil }

func (f *Feed) Restore(entries []Entry) {
	f.entries = append([]Entry(nil), entries...)
}
