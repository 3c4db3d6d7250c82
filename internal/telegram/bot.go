package telegram

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"mindbuddy/internal/activity"
	"mindbuddy/internal/responder"
	"mindbuddy/internal/session"
)

const (
	quickPrefix   = "quick:"
	copePrefix    = "cope:"
	crisisCmd     = "crisis"
	resetConfirm  = "reset:confirm"
	exportFile    = "mindbuddy-data.json"
	dashboardFeed = 3
	historySize   = 10
	activitySize  = 10
)

// Bot is the Telegram face of a single companion session. It only talks
// to one chat: the configured owner, or the first chat that writes.
type Bot struct {
	s         sender
	api       *tgbotapi.BotAPI
	sess      *session.Session
	replies   *session.ReplyScheduler
	parseMode string
	rnd       interface {
		Intn(n int) int
		Float64() float64
	}
	log *zap.SugaredLogger

	mu      sync.Mutex
	ownerID int64
}

func New(botToken string, sess *session.Session, replies *session.ReplyScheduler, parseMode string, ownerChatID int64, log *zap.SugaredLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{
		s:         botAPISender{api: api},
		api:       api,
		sess:      sess,
		replies:   replies,
		parseMode: parseMode,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       log,
		ownerID:   ownerChatID,
	}, nil
}

// Start consumes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Infof("🤖 Authorized on account @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.replies.Stop()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleIncomingMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
		}
	}
}

// bind reports whether chatID is the session's chat, claiming it if no
// chat is bound yet.
func (b *Bot) bind(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ownerID == 0 {
		b.ownerID = chatID
		b.log.Infof("🔗 session bound to chat %d", chatID)
		return true
	}
	return b.ownerID == chatID
}

func (b *Bot) owner() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ownerID
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.bind(msg.Chat.ID) {
		b.log.Warnf("Ignoring message from foreign chat %d (@%s)", msg.Chat.ID, msg.From.UserName)
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleChat(ctx, msg.Chat.ID, strings.TrimSpace(msg.Text))
}

// handleChat runs the chat pipeline now and delivers the reply after the
// typing delay. A newer message replaces a reply still in flight.
func (b *Bot) handleChat(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	reply, err := b.sess.OnUserMessage(ctx, text)
	if err != nil {
		b.log.Debugf("chat message rejected: %v", err)
		return
	}
	if reply.Detected != nil {
		b.log.Infof("Detected emotion: %s", reply.Detected.Emotion)
	}

	if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debugf("failed to send typing action: %v", err)
	}

	replaced := b.replies.Schedule(chatID, func() {
		out := tgbotapi.NewMessage(chatID, b.escapeIfNeeded(reply.Text))
		out.ParseMode = b.parseModeValue()
		if reply.Kind == responder.KindCrisis {
			out.ReplyMarkup = crisisKeyboard()
		}
		if _, err := b.s.Send(out); err != nil {
			b.log.Errorf("failed to send reply: %v", err)
			return
		}
		b.sess.DeliverReply(ctx, reply)
	})
	if replaced {
		b.log.Debugf("pending reply for chat %d replaced", chatID)
	}
}

// Notify forwards a simulated notification to the bound chat. It is the
// scheduler's delivery hook.
func (b *Bot) Notify(_ context.Context, e activity.Entry) {
	chatID := b.owner()
	if chatID == 0 {
		return
	}
	b.sendMessage(chatID, e.Message)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, b.escapeIfNeeded(text))
	msg.ParseMode = b.parseModeValue()
	if _, err := b.s.Send(msg); err != nil {
		b.log.Errorf("failed to send message: %v", err)
	}
}

// sendRich sends text already formatted for the parse mode.
func (b *Bot) sendRich(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseModeValue()
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.s.Send(msg); err != nil {
		b.log.Errorf("failed to send message: %v", err)
	}
}

func (b *Bot) parseModeValue() string {
	switch strings.ToLower(b.parseMode) {
	case "html":
		return tgbotapi.ModeHTML
	case "markdown":
		return tgbotapi.ModeMarkdown
	case "markdownv2":
		return tgbotapi.ModeMarkdownV2
	default:
		return ""
	}
}

// escapeIfNeeded escapes plain text for the configured parse mode.
func (b *Bot) escapeIfNeeded(s string) string {
	mode := b.parseModeValue()
	if mode == "" {
		return s
	}
	return tgbotapi.EscapeText(mode, s)
}
