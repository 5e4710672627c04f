// Package notify delivers alert digests over Telegram. Delivery is the
// one place retries are allowed: provider fetches never retry, but a
// transient Telegram failure should not lose an alert that was already
// paid for upstream.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/alchemistbuilder/stockdrivernews/internal/digest"
)

// Telegram sends alert messages to a fixed chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a sender for the given bot token and chat.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "notify").Logger(),
	}, nil
}

// SendAlerts delivers one symbol's alert set as a single message.
func (t *Telegram) SendAlerts(hit digest.SymbolAlerts) error {
	text := FormatAlerts(hit)
	if text == "" {
		return nil
	}
	return t.send(text)
}

// send posts a message with exponential-backoff retries.
func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	operation := func() error {
		_, err := t.bot.Send(msg)
		if err != nil {
			return fmt.Errorf("sending telegram message: %w", err)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoffStrategy); err != nil {
		t.logger.Error().Err(err).Msg("telegram delivery failed after retries")
		return err
	}
	return nil
}

// FormatAlerts renders one symbol's alerts as a Telegram Markdown
// message. Empty alert sets render to "".
func FormatAlerts(hit digest.SymbolAlerts) string {
	if len(hit.Alerts) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s* (%s) — priority %d/10\n", hit.Symbol, hit.Quote.Name, hit.PriorityScore)
	fmt.Fprintf(&b, "$%.2f, %+.1f%% today\n\n", hit.Quote.Price, hit.Quote.ChangePercent)
	for _, alert := range hit.Alerts {
		fmt.Fprintf(&b, "• [%s] %s\n  _%s_\n", alert.Severity, alert.Message, alert.Explanation)
	}
	return b.String()
}
