package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"committee-notifier/internal/job"
	"committee-notifier/internal/logger"
	"committee-notifier/internal/models"
	"committee-notifier/internal/notice"
	"committee-notifier/internal/timeutil"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Telegram rejects longer messages.
const maxMessageLength = 4000

// Sender is the part of the Telegram API the handlers use
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Runner is the part of the debt job triggered from chat
type Runner interface {
	Preview(ctx context.Context) (*models.DebtSummary, error)
	SendNow(ctx context.Context) (*job.SendResult, error)
}

// CommandHandler handles bot commands
type CommandHandler struct {
	runner   Runner
	renderer *notice.Renderer
	loc      *time.Location
	log      zerolog.Logger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(runner Runner, renderer *notice.Renderer, loc *time.Location) *CommandHandler {
	return &CommandHandler{
		runner:   runner,
		renderer: renderer,
		loc:      loc,
		log:      logger.WithComponent("bot"),
	}
}

// SendPreview replies with the current debt breakdown and a CSV of it
func (h *CommandHandler) SendPreview(ctx context.Context, bot Sender, chatID int64) {
	summary, err := h.runner.Preview(ctx)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("Debt preview failed")
		h.reply(bot, chatID, "⚠️ failed to get debt summary")
		return
	}

	for _, chunk := range splitMessage(h.previewText(summary)) {
		h.reply(bot, chatID, chunk)
	}

	if summary.HasDebt() {
		h.safeExportCSV(bot, chatID, summary)
	}
}

// SendNotices runs the full job and reports the outcome
func (h *CommandHandler) SendNotices(ctx context.Context, bot Sender, chatID int64) {
	h.reply(bot, chatID, "📨 Sending debt notices...")

	result, err := h.runner.SendNow(ctx)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("Manual debt send failed")
		h.reply(bot, chatID, "⚠️ failed to send debt notices")
		return
	}

	var text string
	switch result.Message {
	case job.MessageNoDebts:
		text = "✅ No outstanding debts, nothing was sent."
	case job.MessageNoRecipients:
		text = fmt.Sprintf("⚠️ %d residents owe money but no committee member receives mail.", result.ResidentsWithDebt)
	default:
		text = fmt.Sprintf("✅ Debt notices sent\n\n📬 Delivered: %d of %d\n❌ Failed: %d\n🏠 Residents with debt: %d\n💰 Total debt: %s",
			result.Sent, result.Recipients, result.Failed, result.ResidentsWithDebt, h.renderer.Amount(result.GrandTotal))
	}
	h.reply(bot, chatID, text)
}

// SendHelp sends the command list
func (h *CommandHandler) SendHelp(bot Sender, chatID int64) {
	helpText := `📋 Committee Debt Bot

• /debts - Show who owes what (with CSV)
• /senddebts - Mail the debt summary to the committee now
• /help - Show this help

The summary is also mailed automatically on schedule.`

	h.reply(bot, chatID, helpText)
}

func (h *CommandHandler) previewText(summary *models.DebtSummary) string {
	date := summary.GeneratedAt.In(h.loc).Format(timeutil.DisplayLayout)
	if !summary.HasDebt() {
		return fmt.Sprintf("✅ No outstanding debts (%s)", date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s (%s)\n\n", notice.Title, date)
	for _, debt := range summary.Debts {
		fmt.Fprintf(&b, "🏠 %s, apt %s: %s\n", debt.Resident.Name, debt.Resident.ApartmentNumber, h.renderer.Amount(debt.Total))
		for _, line := range h.renderer.Breakdown(debt) {
			fmt.Fprintf(&b, "   • %s\n", line)
		}
	}
	fmt.Fprintf(&b, "\n💰 Total debt: %s (%d residents)", h.renderer.Amount(summary.GrandTotal), len(summary.Debts))
	return b.String()
}

// safeExportCSV sends the breakdown as a document. Failure only costs the
// attachment; the text preview was already delivered.
func (h *CommandHandler) safeExportCSV(bot Sender, chatID int64, summary *models.DebtSummary) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Msg("CSV export panic recovered")
			h.reply(bot, chatID, "⚠️ CSV export failed.")
		}
	}()

	var buffer bytes.Buffer
	if err := notice.WriteCSV(summary, h.loc, &buffer); err != nil {
		h.log.Error().Err(err).Msg("Failed to generate CSV")
		h.reply(bot, chatID, "⚠️ CSV export failed.")
		return
	}

	document := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("debts_%s.csv", summary.GeneratedAt.In(h.loc).Format(timeutil.DateLayout)),
		Bytes: buffer.Bytes(),
	}

	documentMsg := tgbotapi.NewDocument(chatID, document)
	documentMsg.Caption = fmt.Sprintf("📊 %d residents, %s total", len(summary.Debts), h.renderer.Amount(summary.GrandTotal))

	if _, err := bot.Send(documentMsg); err != nil {
		h.log.Error().Err(err).Msg("Failed to send CSV file")
	}
}

func (h *CommandHandler) reply(bot Sender, chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// splitMessage breaks text on line boundaries into Telegram-sized chunks.
func splitMessage(text string) []string {
	if len(text) <= maxMessageLength {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if len(line) > maxMessageLength {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, hardSplit(line)...)
			continue
		}
		if current.Len() > 0 && current.Len()+len(line)+1 > maxMessageLength {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// hardSplit cuts a single oversized line without breaking a UTF-8 rune.
func hardSplit(line string) []string {
	var parts []string
	for len(line) > maxMessageLength {
		cut := maxMessageLength
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		parts = append(parts, line[:cut])
		line = line[cut:]
	}
	if line != "" {
		parts = append(parts, line)
	}
	return parts
}
