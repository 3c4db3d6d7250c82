package telegram

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mindbuddy/internal/activity"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/responder"
	"mindbuddy/internal/session"
	"mindbuddy/internal/storage"
)

type fakeSender struct {
	sent     []tgbotapi.MessageConfig
	docs     []tgbotapi.DocumentConfig
	requests []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		f.sent = append(f.sent, v)
	case tgbotapi.DocumentConfig:
		f.docs = append(f.docs, v)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatalf("nothing sent")
	}
	return f.sent[len(f.sent)-1]
}

type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }
func (zeroRand) Float64() float64 { return 0.9 }
func (zeroRand) Int63n(int64) int64 { return 0 }

var fixedNow = time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)

func newTestBot(parseMode string) (*Bot, *fakeSender) {
	fs := &fakeSender{}
	sess := session.New(
		session.WithClock(func() time.Time { return fixedNow }),
		session.WithRand(zeroRand{}),
	)
	return &Bot{
		s:         fs,
		sess:      sess,
		replies:   session.NewReplyScheduler(0, 0, zeroRand{}),
		parseMode: parseMode,
		rnd:       zeroRand{},
		log:       zap.NewNop().Sugar(),
		ownerID:   1,
	}, fs
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: chatID, UserName: "u"},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	m := textMessage(chatID, text)
	cmd := strings.Fields(text)[0]
	m.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return m
}

func callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func TestSendMessage_UsesParseMode(t *testing.T) {
	b, fs := newTestBot("Markdown")
	b.sendMessage(1, "**bold**")
	got := fs.last(t)
	if got.Text != `\*\*bold\*\*` || got.ParseMode != tgbotapi.ModeMarkdown {
		t.Fatalf("unexpected sent: %+v", got)
	}
}

func TestSendMessage_EscapesHTML(t *testing.T) {
	b, fs := newTestBot("HTML")
	b.sendMessage(1, "a < b")
	if got := fs.last(t).Text; got != "a &lt; b" {
		t.Fatalf("expected escaped text, got %q", got)
	}
}

func TestMarkdownV2_EscapesReservedCharacters(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBot("MarkdownV2")

	b.handleIncomingMessage(ctx, commandMessage(1, "/log happy 7 sunny day."))
	got := fs.last(t)
	want := "Emotion logged successfully\\! 💙\n😊 Happy \\(7/10\\)"
	if got.ParseMode != tgbotapi.ModeMarkdownV2 || got.Text != want {
		t.Fatalf("unexpected sent: mode=%q text=%q", got.ParseMode, got.Text)
	}

	if s := b.bold("Starting 4-7-8 Breathing"); s != "*Starting 4\\-7\\-8 Breathing*" {
		t.Fatalf("unexpected bold: %q", s)
	}
	if s := b.italic("Duration: 5 min."); s != "_Duration: 5 min\\._" {
		t.Fatalf("unexpected italic: %q", s)
	}
}

func TestHandleChat_DeliversReplyAndLogsEmotion(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBot("")

	b.handleIncomingMessage(ctx, textMessage(1, "I'm feeling happy today"))

	if len(fs.requests) != 1 {
		t.Fatalf("expected typing action, got %d requests", len(fs.requests))
	}
	if got := fs.last(t).Text; got != responder.Pool("happy")[0] {
		t.Fatalf("unexpected reply: %q", got)
	}
	mood, ok := b.sess.CurrentMood()
	if !ok || mood.Source != emotionlog.SourceChat {
		t.Fatalf("expected chat-sourced mood, got %+v", mood)
	}
	if n := len(b.sess.Transcript()); n != 2 {
		t.Fatalf("expected user and bot lines in transcript, got %d", n)
	}
	acts := b.sess.RecentActivity(1)
	if len(acts) != 1 || acts[0].Message != "Had a chat conversation" {
		t.Fatalf("unexpected activity: %+v", acts)
	}
}

func TestHandleChat_CrisisAttachesResourcesButton(t *testing.T) {
	b, fs := newTestBot("")
	b.handleIncomingMessage(context.Background(), textMessage(1, "I want to kill myself"))

	got := fs.last(t)
	if got.Text != responder.CrisisMessage {
		t.Fatalf("expected crisis message, got %q", got.Text)
	}
	if _, ok := got.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Fatalf("expected crisis keyboard, got %T", got.ReplyMarkup)
	}
	if len(b.sess.EmotionLogs()) != 0 {
		t.Fatalf("crisis message must not log an emotion")
	}
}

func TestHandleIncomingMessage_IgnoresForeignChat(t *testing.T) {
	b, fs := newTestBot("")
	b.handleIncomingMessage(context.Background(), textMessage(2, "hello"))
	if len(fs.sent) != 0 || len(fs.requests) != 0 {
		t.Fatalf("foreign chat should be ignored: %+v", fs.sent)
	}
}

func TestBind_FirstChatClaimsSession(t *testing.T) {
	b, _ := newTestBot("")
	b.ownerID = 0
	if !b.bind(5) {
		t.Fatalf("first chat should bind")
	}
	if b.bind(6) {
		t.Fatalf("second chat must be rejected")
	}
	if b.owner() != 5 {
		t.Fatalf("owner = %d", b.owner())
	}
}

func TestCommandLog(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBot("")

	b.handleIncomingMessage(ctx, commandMessage(1, "/log anxious 8 big exam tomorrow"))
	if !strings.Contains(fs.last(t).Text, "Emotion logged successfully") {
		t.Fatalf("unexpected reply: %q", fs.last(t).Text)
	}
	e, ok := b.sess.CurrentMood()
	if !ok || e.Emotion != "anxious" || e.Intensity != 8 || e.Notes != "big exam tomorrow" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Source != emotionlog.SourceManual {
		t.Fatalf("source = %s", e.Source)
	}

	b.handleIncomingMessage(ctx, commandMessage(1, "/log calm just breathing"))
	e, _ = b.sess.CurrentMood()
	if e.Intensity != emotionlog.DefaultIntensity || e.Notes != "just breathing" {
		t.Fatalf("expected default intensity with notes, got %+v", e)
	}

	b.handleIncomingMessage(ctx, commandMessage(1, "/log"))
	if fs.last(t).Text != "Please select an emotion first" {
		t.Fatalf("unexpected reply: %q", fs.last(t).Text)
	}

	b.handleIncomingMessage(ctx, commandMessage(1, "/log bored 4"))
	if !strings.HasPrefix(fs.last(t).Text, `Unknown emotion "bored"`) {
		t.Fatalf("unexpected reply: %q", fs.last(t).Text)
	}

	b.handleIncomingMessage(ctx, commandMessage(1, "/log happy 11"))
	if !strings.Contains(fs.last(t).Text, "Could not log") {
		t.Fatalf("out of range intensity should be rejected: %q", fs.last(t).Text)
	}
	if n := len(b.sess.EmotionLogs()); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
}

func TestParseLogArgs(t *testing.T) {
	cat, n, notes, ok := parseLogArgs("Sad 3 rainy day")
	if !ok || cat != "sad" || n != 3 || notes != "rainy day" {
		t.Fatalf("got %s %d %q %v", cat, n, notes, ok)
	}
	cat, n, notes, ok = parseLogArgs("  ")
	if ok || cat != "" || n != 0 || notes != "" {
		t.Fatalf("expected empty parse, got %s %d %q", cat, n, notes)
	}
	cat, _, _, ok = parseLogArgs("BORED 4")
	if ok || cat != "bored" {
		t.Fatalf("unknown emotion should not parse, got %s %v", cat, ok)
	}
}

func TestCallbackQuick_RecordsCheckIn(t *testing.T) {
	b, fs := newTestBot("")
	b.handleCallback(context.Background(), callback(1, quickPrefix+"tired"))

	if len(fs.requests) != 1 {
		t.Fatalf("callback should be answered")
	}
	text := fs.last(t).Text
	if !strings.HasPrefix(text, "Thanks for checking in! You selected: 😴 Tired") {
		t.Fatalf("unexpected reply: %q", text)
	}
	if !strings.Contains(text, responder.Pool("tired")[0]) {
		t.Fatalf("reply should include an emotion response: %q", text)
	}
	e, ok := b.sess.CurrentMood()
	if !ok || e.Source != emotionlog.SourceQuick || e.Intensity != emotionlog.DefaultIntensity {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestCallbackCope_StartsStrategy(t *testing.T) {
	b, fs := newTestBot("")
	b.handleCallback(context.Background(), callback(1, copePrefix+"0"))
	if !strings.HasPrefix(fs.last(t).Text, "Starting ") {
		t.Fatalf("unexpected reply: %q", fs.last(t).Text)
	}
	acts := b.sess.RecentActivity(1)
	if len(acts) != 1 || !strings.HasPrefix(acts[0].Message, "Started coping strategy: ") {
		t.Fatalf("unexpected activity: %+v", acts)
	}

	before := len(fs.sent)
	b.handleCallback(context.Background(), callback(1, copePrefix+"99"))
	if len(fs.sent) != before {
		t.Fatalf("out of range strategy should be ignored")
	}
}

func TestCallbackResetConfirm_ClearsData(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBot("")
	if _, err := b.sess.LogEmotion(ctx, "happy", 7, ""); err != nil {
		t.Fatalf("log: %v", err)
	}
	b.handleCallback(ctx, callback(1, resetConfirm))
	if len(b.sess.EmotionLogs()) != 0 || len(b.sess.RecentActivity(10)) != 0 {
		t.Fatalf("reset should clear logs and activity")
	}
}

func TestCommandProfileAndContact(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBot("")

	b.handleIncomingMessage(ctx, commandMessage(1, "/profile Sam"))
	if fs.last(t).Text != "Please fill in both name and age" {
		t.Fatalf("unexpected reply: %q", fs.last(t).Text)
	}
	b.handleIncomingMessage(ctx, commandMessage(1, "/profile Sam Lee 29"))
	p, ok := b.sess.Profile()
	if !ok || p.Name != "Sam Lee" || p.Age != "29" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	b.handleIncomingMessage(ctx, commandMessage(1, "/contact Mom"))
	if fs.last(t).Text != "Please fill in both name and phone number" {
		t.Fatalf("unexpected reply: %q", fs.last(t).Text)
	}
	b.handleIncomingMessage(ctx, commandMessage(1, "/contact Mom +15550100"))
	c, ok := b.sess.EmergencyContact()
	if !ok || c.Name != "Mom" || c.Phone != "+15550100" {
		t.Fatalf("unexpected contact: %+v", c)
	}
}

func TestCommandExport_SendsSnapshotDocument(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBot("")
	if _, err := b.sess.LogEmotion(ctx, "calm", 4, "tea"); err != nil {
		t.Fatalf("log: %v", err)
	}
	b.handleIncomingMessage(ctx, commandMessage(1, "/export"))
	if len(fs.docs) != 1 {
		t.Fatalf("expected one document, got %d", len(fs.docs))
	}
	fb, ok := fs.docs[0].File.(tgbotapi.FileBytes)
	if !ok || fb.Name != exportFile {
		t.Fatalf("unexpected file: %+v", fs.docs[0].File)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal(fb.Bytes, &snap); err != nil {
		t.Fatalf("export is not json: %v", err)
	}
	if len(snap.EmotionLogs) != 1 || snap.EmotionLogs[0].Notes != "tea" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestCommandNotify_TogglesSetting(t *testing.T) {
	ctx := context.Background()
	b, fs := newTestBot("")
	b.handleIncomingMessage(ctx, commandMessage(1, "/notify off"))
	if b.sess.NotificationsEnabled() {
		t.Fatalf("notifications should be off")
	}
	b.handleIncomingMessage(ctx, commandMessage(1, "/notify"))
	if !strings.Contains(fs.last(t).Text, "are off") {
		t.Fatalf("unexpected status: %q", fs.last(t).Text)
	}
	b.handleIncomingMessage(ctx, commandMessage(1, "/notify on"))
	if !b.sess.NotificationsEnabled() {
		t.Fatalf("notifications should be on")
	}

	b.handleIncomingMessage(ctx, commandMessage(1, "/notify motivational off"))
	b.handleIncomingMessage(ctx, commandMessage(1, "/notify Coping OFF"))
	st := b.sess.Settings()
	if st.EnableMotivational || st.EnableCoping || !st.EnableNotifications {
		t.Fatalf("unexpected settings: %+v", st)
	}
	if got := fs.last(t).Text; got != "Coping messages turned off" {
		t.Fatalf("unexpected reply: %q", got)
	}

	b.handleIncomingMessage(ctx, commandMessage(1, "/notify sounds off"))
	if got := fs.last(t).Text; got != notifyUsage {
		t.Fatalf("unexpected reply: %q", got)
	}
	b.handleIncomingMessage(ctx, commandMessage(1, "/notify"))
	if got := fs.last(t).Text; !strings.Contains(got, "Motivational messages: off") || !strings.Contains(got, "Coping reminders: off") {
		t.Fatalf("unexpected status: %q", got)
	}
}

func TestCallbackQuick_UnknownMoodIgnored(t *testing.T) {
	b, fs := newTestBot("")
	b.handleCallback(context.Background(), callback(1, quickPrefix+"bored"))
	if len(fs.sent) != 0 || len(b.sess.EmotionLogs()) != 0 {
		t.Fatalf("unknown mood should be ignored")
	}
}

func TestRenderHistory_EmptyAndNotes(t *testing.T) {
	b, _ := newTestBot("HTML")
	if got := b.renderHistory(nil); !strings.Contains(got, "No emotions logged yet") {
		t.Fatalf("unexpected empty history: %q", got)
	}
	got := b.renderHistory([]emotionlog.Entry{{Emotion: "sad", Intensity: 3, Timestamp: fixedNow, Notes: "a & b"}})
	if !strings.Contains(got, "<b>😢 Sad (3/10)</b>") || !strings.Contains(got, `"a &amp; b"`) {
		t.Fatalf("unexpected history: %q", got)
	}
}

func TestNotify_SendsToOwner(t *testing.T) {
	b, fs := newTestBot("")
	b.Notify(context.Background(), activity.Entry{Message: "Time for a mood check-in! 🌟"})
	got := fs.last(t)
	if got.ChatID != 1 || got.Text != "Time for a mood check-in! 🌟" {
		t.Fatalf("unexpected notification: %+v", got)
	}

	b.ownerID = 0
	before := len(fs.sent)
	b.Notify(context.Background(), activity.Entry{Message: "x"})
	if len(fs.sent) != before {
		t.Fatalf("no owner, nothing should be sent")
	}
}
