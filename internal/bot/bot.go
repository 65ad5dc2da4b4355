package bot

import (
	"context"

	"committee-notifier/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Listen polls Telegram for updates until ctx is canceled.
func Listen(ctx context.Context, api *tgbotapi.BotAPI, handler *EventHandler) {
	log := logger.WithComponent("bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := api.GetUpdatesChan(u)
	log.Info().Str("bot", api.Self.UserName).Msg("Bot listening for commands")

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info().Msg("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				handler.HandleMessage(ctx, api, update.Message)
			}
		}
	}
}
