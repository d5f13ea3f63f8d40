package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mmynk/tripsplit/internal/models"
)

// Sender is the part of tgbotapi.BotAPI used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// UserLookup resolves participants to their linked chats and names.
type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// Telegram messages the recipient's linked chat.
type Telegram struct {
	sender Sender
	users  UserLookup
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(token string, users UserLookup) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	slog.Info("Telegram notifier ready", "bot", bot.Self.UserName)
	return NewTelegramWithSender(bot, users), nil
}

// NewTelegramWithSender builds a notifier around an existing sender.
func NewTelegramWithSender(sender Sender, users UserLookup) *Telegram {
	return &Telegram{sender: sender, users: users}
}

// DebtChanged sends one message to the event recipient. Recipients without
// a linked chat are skipped silently.
func (t *Telegram) DebtChanged(ctx context.Context, event DebtEvent) error {
	recipient := event.Recipient()
	if recipient == "" {
		return nil
	}

	users, err := t.users.GetUsersByIDs(ctx, []string{recipient, event.ParticipantID})
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	to, ok := users[recipient]
	if !ok || to.TelegramChatID == 0 {
		return nil
	}

	debtor := event.ParticipantID
	if u, ok := users[event.ParticipantID]; ok {
		debtor = u.DisplayName
	}

	msg := tgbotapi.NewMessage(to.TelegramChatID, messageText(event, debtor))
	if _, err := t.sender.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func messageText(event DebtEvent, debtor string) string {
	amount := event.Amount.StringFixed(2)
	switch event.Status {
	case models.DebtSlipSent:
		return fmt.Sprintf("%s sent a payment slip for %s on %q. Please review it.", debtor, amount, event.BillTitle)
	case models.DebtVerified:
		return fmt.Sprintf("Your payment of %s on %q was approved.", amount, event.BillTitle)
	case models.DebtRejected:
		return fmt.Sprintf("Your payment slip for %s on %q was rejected. Please upload a new one.", amount, event.BillTitle)
	}
	return ""
}
