package bot

import (
	"context"
	"time"

	"committee-notifier/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// EventHandler handles Telegram events
type EventHandler struct {
	config   *config.Config
	commands *CommandHandler
	timeout  time.Duration
}

// NewEventHandler creates a new event handler
func NewEventHandler(cfg *config.Config, commands *CommandHandler) *EventHandler {
	return &EventHandler{
		config:   cfg,
		commands: commands,
		timeout:  cfg.JobTimeout + 30*time.Second,
	}
}

// HandleMessage handles incoming messages. Only commands from the
// configured operator chat are acted on.
func (h *EventHandler) HandleMessage(ctx context.Context, bot Sender, message *tgbotapi.Message) {
	// Ignore messages from bots
	if message.From != nil && message.From.IsBot {
		return
	}

	if message.Chat == nil || !h.config.IsAuthorizedChat(message.Chat.ID) {
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, bot, message)
	}
}

// handleCommand processes bot commands
func (h *EventHandler) handleCommand(ctx context.Context, bot Sender, message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	switch message.Command() {
	case "debts":
		h.commands.SendPreview(ctx, bot, message.Chat.ID)
	case "senddebts":
		h.commands.SendNotices(ctx, bot, message.Chat.ID)
	case "help", "start":
		h.commands.SendHelp(bot, message.Chat.ID)
	}
}
