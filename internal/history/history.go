package history

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one line of the chat transcript.
type Message struct {
	Content   string    `json:"content"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the append-only chat log of a session.
type Transcript struct {
	messages []Message
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) AppendUser(content string, ts time.Time) {
	t.append(Message{Content: content, Sender: SenderUser, Timestamp: ts})
}

func (t *Transcript) AppendBot(content string, ts time.Time) {
	t.append(Message{Content: content, Sender: SenderBot, Timestamp: ts})
}

func (t *Transcript) append(msg Message) {
	t.messages = append(t.messages, msg)
}

// All returns a copy so callers cannot mutate the transcript.
func (t *Transcript) All() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int { return len(t.messages) }

func (t *Transcript) Reset() { t.messages = nil }

func (t *Transcript) Restore(msgs []Message) {
	t.messages = append([]Message(nil), msgs...)
}
