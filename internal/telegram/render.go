package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mindbuddy/internal/activity"
	"mindbuddy/internal/emotion"
	"mindbuddy/internal/emotionlog"
	"mindbuddy/internal/resources"
	"mindbuddy/internal/scheduler"
	"mindbuddy/internal/trend"
)

// wrap surrounds escaped text with the parse mode's markup; plain text
// passes through.
func (b *Bot) wrap(s, htmlTag, mdOpen, mdClose string) string {
	switch b.parseModeValue() {
	case tgbotapi.ModeHTML:
		return "<" + htmlTag + ">" + b.escapeIfNeeded(s) + "</" + htmlTag + ">"
	case tgbotapi.ModeMarkdown, tgbotapi.ModeMarkdownV2:
		return mdOpen + b.escapeIfNeeded(s) + mdClose
	default:
		return s
	}
}

func (b *Bot) bold(s string) string { return b.wrap(s, "b", "*", "*") }

func (b *Bot) italic(s string) string { return b.wrap(s, "i", "_", "_") }

func (b *Bot) pre(s string) string { return b.wrap(s, "pre", "```\n", "```") }

func (b *Bot) renderDashboard(now time.Time, mood *emotionlog.Entry, recent []activity.Entry) string {
	var sb strings.Builder
	sb.WriteString(b.bold("Current mood") + "\n")
	if mood != nil {
		sb.WriteString(b.escapeIfNeeded(mood.Emotion.Display()) + "\n")
		sb.WriteString(b.italic("Last updated: "+mood.Timestamp.Format("Jan 2, 15:04")) + "\n")
	} else {
		sb.WriteString(b.escapeIfNeeded("No mood logged yet. Try /quick") + "\n")
	}

	mins := int(scheduler.NextCheckIn(now) / time.Minute)
	sb.WriteString("\n" + b.bold("Next check-in") + "\n")
	sb.WriteString(fmt.Sprintf("In %d minutes\n", mins))

	sb.WriteString("\n" + b.bold("Recent activity") + "\n")
	sb.WriteString(b.renderActivity(recent))
	return sb.String()
}

func (b *Bot) renderActivity(entries []activity.Entry) string {
	if len(entries) == 0 {
		return b.escapeIfNeeded("No recent activity") + "\n"
	}
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s %s\n", b.escapeIfNeeded(e.Message), b.italic(e.Timestamp.Format("15:04:05"))))
	}
	return sb.String()
}

func (b *Bot) renderHistory(entries []emotionlog.Entry) string {
	if len(entries) == 0 {
		return b.escapeIfNeeded("No emotions logged yet. Start tracking your feelings with /log or /quick!")
	}
	var sb strings.Builder
	for _, e := range entries {
		line := fmt.Sprintf("%s (%d/10)", e.Emotion.Display(), e.Intensity)
		sb.WriteString(b.bold(line) + " " + b.italic(e.Timestamp.Format("Jan 2, 15:04")) + "\n")
		if e.Notes != "" {
			sb.WriteString(b.escapeIfNeeded(`  "`+e.Notes+`"`) + "\n")
		}
	}
	return sb.String()
}

func (b *Bot) renderTrend(points []trend.Point) string {
	return b.bold("Emotion intensity, last 7 days") + "\n" + b.pre(trend.Chart(points))
}

func (b *Bot) renderCoping() string {
	var sb strings.Builder
	sb.WriteString(b.bold("Coping strategies") + "\n\n")
	for _, s := range resources.CopingStrategies {
		sb.WriteString(b.bold(s.Name) + "\n")
		sb.WriteString(b.escapeIfNeeded(s.Description) + "\n")
		sb.WriteString(b.italic("Duration: "+s.Duration) + "\n\n")
	}
	return sb.String()
}

func (b *Bot) renderCopingStart(s resources.CopingStrategy) string {
	return b.bold("Starting "+s.Name) + "\n\n" +
		b.escapeIfNeeded(s.Description) + "\n\n" +
		b.italic("Duration: "+s.Duration) + "\n\n" +
		b.escapeIfNeeded("Take your time and focus on yourself. 💙")
}

func (b *Bot) renderCrisis() string {
	var sb strings.Builder
	sb.WriteString(b.bold("Crisis resources") + "\n")
	sb.WriteString(b.escapeIfNeeded("If you are in immediate danger, please call emergency services.") + "\n\n")
	for _, r := range resources.CrisisResources {
		sb.WriteString(b.bold(r.Name) + "\n")
		sb.WriteString(b.escapeIfNeeded(r.Contact) + "\n")
		sb.WriteString(b.italic(r.Description) + "\n\n")
	}
	return sb.String()
}

func (b *Bot) renderTimeline(items []scheduler.TimelineItem) string {
	var sb strings.Builder
	sb.WriteString(b.bold("Today's check-ins") + "\n")
	for _, it := range items {
		mark := "○"
		if it.Completed {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s %s %s\n", mark, b.bold(it.Time), b.escapeIfNeeded(it.Message), b.italic(it.Type)))
	}
	return sb.String()
}

func quickMoodKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range emotion.All {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Display(), quickPrefix+string(c)))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func copingKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, s := range resources.CopingStrategies {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(s.Name, fmt.Sprintf("%s%d", copePrefix, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func crisisKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Show crisis resources", crisisCmd),
		),
	)
}

func resetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, clear everything", resetConfirm),
		),
	)
}
