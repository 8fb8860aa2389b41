package alerts

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the bot API the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts alerts to the admin chat.
type TelegramNotifier struct {
	api    Sender
	chatID int64
}

func NewTelegramNotifier(api Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{api: api, chatID: chatID}
}

// DialTelegram logs the bot in with token.
func DialTelegram(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return api, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, batch []Alert) error {
	if len(batch) == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatBatch(batch))
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatBatch renders alerts as one chat message, low stock first.
func FormatBatch(batch []Alert) string {
	var low, exp []string
	for _, a := range batch {
		switch a.Kind {
		case KindLowStock:
			low = append(low, "• "+a.Message)
		case KindExpiry:
			exp = append(exp, "• "+a.Message)
		}
	}
	var b strings.Builder
	if len(low) > 0 {
		b.WriteString("⚠️ Low stock\n")
		b.WriteString(strings.Join(low, "\n"))
	}
	if len(exp) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("⏳ Expiring soon\n")
		b.WriteString(strings.Join(exp, "\n"))
	}
	return b.String()
}
