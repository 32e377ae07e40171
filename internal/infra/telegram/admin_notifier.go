package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"celebrity-subscription/internal/config"
	"celebrity-subscription/internal/domain/ports/adapter"
	"celebrity-subscription/internal/infra/metrics"
)

var _ adapter.AdminNotifier = (*AdminNotifier)(nil)

// sender is the subset of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// AdminNotifier sends plain-text alerts to every configured admin chat.
type AdminNotifier struct {
	bot     sender
	chatIDs []int64
	log     *zerolog.Logger
}

// NewAdminNotifier connects to the Bot API with cfg.Token.
func NewAdminNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*AdminNotifier, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newAdminNotifier(bot, cfg.AdminChatIDs, logger), nil
}

func newAdminNotifier(bot sender, chatIDs []int64, logger *zerolog.Logger) *AdminNotifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &AdminNotifier{bot: bot, chatIDs: chatIDs, log: logger}
}

// NotifyAdmins attempts every chat and reports the combined failures.
func (n *AdminNotifier) NotifyAdmins(ctx context.Context, text string) error {
	var errs []error
	for _, id := range n.chatIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		msg := tgbotapi.NewMessage(id, text)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			n.log.Warn().Err(err).Int64("chat_id", id).Msg("telegram send failed")
			metrics.IncAdminNotification("error")
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
			continue
		}
		metrics.IncAdminNotification("ok")
	}
	return errors.Join(errs...)
}

var _ adapter.AdminNotifier = (*NoopNotifier)(nil)

// NoopNotifier logs alerts instead of sending them. Used when no bot token is configured.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NoopNotifier{log: logger}
}

func (n *NoopNotifier) NotifyAdmins(ctx context.Context, text string) error {
	n.log.Info().Str("text", text).Msg("[noop-telegram] admin notification")
	metrics.IncAdminNotification("noop")
	return nil
}
