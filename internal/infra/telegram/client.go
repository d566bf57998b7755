// internal/infra/telegram/client.go
package telegram

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to a member's private chat.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	// Members talk to the bot in private chats, where chat ID equals user ID.
	recipient := &telebot.User{ID: recipientChatID}
	if _, err := tba.bot.Send(recipient, text, options); err != nil {
		return fmt.Errorf("send message to %d: %w", recipientChatID, err)
	}
	return nil
}
