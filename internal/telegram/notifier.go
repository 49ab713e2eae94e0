package telegram

import (
	"context"
	"strings"

	"interview-console/internal/notify"
	"interview-console/internal/observability"
)

// Notifier forwards toasts to a Telegram chat
type Notifier struct {
	bot        *Bot
	chatID     int64
	errorsOnly bool
}

// NewNotifier creates a toast sink for chatID. With errorsOnly set, only
// destructive toasts are forwarded.
func NewNotifier(bot *Bot, chatID int64, errorsOnly bool) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, errorsOnly: errorsOnly}
}

func (n *Notifier) Notify(ctx context.Context, toast notify.Toast) {
	if n.errorsOnly && toast.Variant != notify.VariantDestructive {
		return
	}

	icon := "✅"
	if toast.Variant == notify.VariantDestructive {
		icon = "❌"
	}

	// a failed delivery must not turn into another toast
	if err := n.bot.SendFormattedMessage(ctx, n.chatID, "%s *%s*\n%s", icon, escapeMarkdown(toast.Title), escapeMarkdown(toast.Description)); err != nil {
		observability.LoggerFromContext(ctx).Warn("telegram notification failed", "error", err)
	}
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// escapeMarkdown makes backend and candidate text safe for Markdown mode
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
