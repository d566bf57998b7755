package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to network members through the bot.
// Services depend on this interface so they can be tested without Telegram.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
