package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mindbuddy/internal/emotion"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/resources"
	"mindbuddy/internal/scheduler"
	"mindbuddy/internal/session"
	"mindbuddy/internal/storage"
)

const notifyUsage = "Use /notify on|off, /notify motivational on|off or /notify coping on|off."

const helpText = `/start - dashboard
/log <emotion> [1-10] [notes] - log how you feel
/quick - one-tap mood check
/history - recent emotion logs
/trend - 7-day mood chart
/activity - recent activity
/coping - coping strategies
/crisis - crisis resources
/timeline - today's check-ins
/notify [motivational|coping] on|off - notification settings
/profile <name> <age> - save your profile
/contact <name> <phone> - save an emergency contact
/export - download your data
/reset - clear all data`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		greeting := resources.ConversationStarters[b.rnd.Intn(len(resources.ConversationStarters))]
		b.sendRich(chatID, b.escapeIfNeeded(greeting)+"\n\n"+b.dashboard(), nil)
	case "help":
		b.sendMessage(chatID, helpText)
	case "log":
		b.handleLog(ctx, chatID, args)
	case "quick":
		b.sendRich(chatID, b.escapeIfNeeded("How are you feeling right now?"), quickMoodKeyboard())
	case "history":
		b.sendRich(chatID, b.renderHistory(b.sess.RecentEmotionLogs(historySize)), nil)
	case "trend":
		b.sendRich(chatID, b.renderTrend(b.sess.DailyAverages(b.sess.Now())), nil)
	case "activity":
		b.sendRich(chatID, b.renderActivity(b.sess.RecentActivity(activitySize)), nil)
	case "coping":
		b.sendRich(chatID, b.renderCoping(), copingKeyboard())
	case "cope":
		b.startCoping(ctx, chatID, args)
	case "crisis":
		b.sendRich(chatID, b.renderCrisis(), nil)
	case "timeline":
		b.sendRich(chatID, b.renderTimeline(scheduler.Timeline(b.sess.Now(), b.rnd)), nil)
	case "notify":
		b.handleNotify(ctx, chatID, args)
	case "profile":
		b.handleProfile(ctx, chatID, args)
	case "contact":
		b.handleContact(ctx, chatID, args)
	case "export":
		b.handleExport(chatID)
	case "reset":
		b.sendRich(chatID, b.escapeIfNeeded("Are you sure you want to clear all your data? This cannot be undone."), resetKeyboard())
	default:
		b.sendMessage(chatID, "Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) dashboard() string {
	var mood *emotionlog.Entry
	if e, ok := b.sess.CurrentMood(); ok {
		mood = &e
	}
	return b.renderDashboard(b.sess.Now(), mood, b.sess.RecentActivity(dashboardFeed))
}

// parseLogArgs splits "<emotion> [intensity] [notes...]". A missing or
// non-numeric intensity defaults to 5 and the token starts the notes. ok
// is false when the emotion is missing or unknown.
func parseLogArgs(args string) (cat emotion.Category, intensity int, notes string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", 0, "", false
	}
	cat, ok = emotion.Parse(fields[0])
	rest := fields[1:]
	intensity = emotionlog.DefaultIntensity
	if len(rest) > 0 {
		if n, err := strconv.Atoi(rest[0]); err == nil {
			intensity = n
			rest = rest[1:]
		}
	}
	return cat, intensity, strings.Join(rest, " "), ok
}

func emotionNames() string {
	names := make([]string, 0, len(emotion.All))
	for _, c := range emotion.All {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func (b *Bot) handleLog(ctx context.Context, chatID int64, args string) {
	cat, intensity, notes, ok := parseLogArgs(args)
	if cat == "" {
		b.sendRich(chatID, b.escapeIfNeeded("Please select an emotion first"), quickMoodKeyboard())
		return
	}
	if !ok {
		b.sendRich(chatID, b.escapeIfNeeded(fmt.Sprintf("Unknown emotion %q. Try one of: %s", string(cat), emotionNames())), quickMoodKeyboard())
		return
	}
	e, err := b.sess.LogEmotion(ctx, cat, intensity, notes)
	if err != nil {
		if errors.Is(err, session.ErrInvalidInput) {
			b.sendMessage(chatID, fmt.Sprintf("Could not log that: %v\nUsage: /log <emotion> [1-10] [notes]", err))
			return
		}
		b.log.Errorf("log emotion: %v", err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Emotion logged successfully! 💙\n%s (%d/10)", e.Emotion.Display(), e.Intensity))
}

func (b *Bot) startCoping(ctx context.Context, chatID int64, name string) {
	s, err := b.sess.StartCopingStrategy(ctx, name)
	if err != nil {
		b.sendRich(chatID, b.escapeIfNeeded("Pick one of these:"), copingKeyboard())
		return
	}
	b.sendRich(chatID, b.renderCopingStart(s), nil)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// handleNotify accepts "on|off" for check-ins and "motivational|coping
// on|off" for the message toggles; anything else shows the current state.
func (b *Bot) handleNotify(ctx context.Context, chatID int64, args string) {
	fields := strings.Fields(strings.ToLower(args))
	switch {
	case len(fields) == 1 && (fields[0] == "on" || fields[0] == "off"):
		enabled := fields[0] == "on"
		b.sess.SetNotificationsEnabled(ctx, enabled)
		if enabled {
			b.sendMessage(chatID, "Check-in notifications enabled ✨")
		} else {
			b.sendMessage(chatID, "Check-in notifications disabled")
		}
		return
	case len(fields) == 2 && (fields[1] == "on" || fields[1] == "off"):
		st := b.sess.Settings()
		enabled := fields[1] == "on"
		switch fields[0] {
		case "motivational":
			st.EnableMotivational = enabled
		case "coping":
			st.EnableCoping = enabled
		default:
			b.sendMessage(chatID, notifyUsage)
			return
		}
		b.sess.UpdateSettings(ctx, st)
		b.sendMessage(chatID, fmt.Sprintf("%s messages turned %s", strings.ToUpper(fields[0][:1])+fields[0][1:], fields[1]))
		return
	}

	st := b.sess.Settings()
	b.sendMessage(chatID, fmt.Sprintf("Check-in notifications are %s.\nMotivational messages: %s\nCoping reminders: %s\n\n%s",
		onOff(st.EnableNotifications), onOff(st.EnableMotivational), onOff(st.EnableCoping), notifyUsage))
}

// splitLast splits "a b c" into ("a b", "c").
func splitLast(args string) (string, string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return strings.Join(fields, " "), ""
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

func (b *Bot) handleProfile(ctx context.Context, chatID int64, args string) {
	name, age := splitLast(args)
	if err := b.sess.SaveProfile(ctx, storage.Profile{Name: name, Age: age}); err != nil {
		b.sendMessage(chatID, "Please fill in both name and age")
		return
	}
	b.sendMessage(chatID, "Profile saved successfully! 💙")
}

func (b *Bot) handleContact(ctx context.Context, chatID int64, args string) {
	name, phone := splitLast(args)
	if err := b.sess.SaveEmergencyContact(ctx, storage.EmergencyContact{Name: name, Phone: phone}); err != nil {
		b.sendMessage(chatID, "Please fill in both name and phone number")
		return
	}
	b.sendMessage(chatID, "Emergency contact saved successfully! 💙")
}

func (b *Bot) handleExport(chatID int64) {
	data, err := b.sess.Export()
	if err != nil {
		b.log.Errorf("export: %v", err)
		b.sendMessage(chatID, "Sorry, something went wrong.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: exportFile, Bytes: data})
	if _, err := b.s.Send(doc); err != nil {
		b.log.Errorf("failed to send export: %v", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil || !b.bind(cb.Message.Chat.ID) {
		return
	}
	chatID := cb.Message.Chat.ID
	b.answerCallback(cb.ID)

	switch {
	case strings.HasPrefix(cb.Data, quickPrefix):
		cat, ok := emotion.Parse(strings.TrimPrefix(cb.Data, quickPrefix))
		if !ok {
			b.log.Warnf("unknown quick mood %q", cb.Data)
			return
		}
		if _, err := b.sess.QuickCheckIn(ctx, cat); err != nil {
			b.log.Warnf("quick check-in: %v", err)
			return
		}
		text := fmt.Sprintf("Thanks for checking in! You selected: %s\n\n%s", cat.Display(), b.sess.ReplyFor(cat))
		b.sendMessage(chatID, text)
	case strings.HasPrefix(cb.Data, copePrefix):
		i, err := strconv.Atoi(strings.TrimPrefix(cb.Data, copePrefix))
		if err != nil || i < 0 || i >= len(resources.CopingStrategies) {
			return
		}
		b.startCoping(ctx, chatID, resources.CopingStrategies[i].Name)
	case cb.Data == crisisCmd:
		b.sendRich(chatID, b.renderCrisis(), nil)
	case cb.Data == resetConfirm:
		b.replies.Cancel(chatID)
		b.sess.Reset(ctx)
		b.sendMessage(chatID, "All data cleared.")
	}
}

func (b *Bot) answerCallback(id string) {
	if id == "" {
		return
	}
	if _, err := b.s.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.log.Debugf("failed to answer callback: %v", err)
	}
}
