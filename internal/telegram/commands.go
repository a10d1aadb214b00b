package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotCommands is the command menu shown by Telegram clients
func BotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start or restart conversation"},
		{Command: "help", Description: "Show help and examples"},
		{Command: "languages", Description: "Show all supported languages"},
	}
}

// PublishCommands sets the bot's command list in Telegram
func (b *Bot) PublishCommands() error {
	commands := BotCommands()
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("failed to set commands: %w", err)
	}

	b.logger.Info().Int("count", len(commands)).Msg("Bot commands updated")
	return nil
}
