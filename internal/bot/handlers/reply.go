package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// incoming returns the message of a text update that has a sender.
func incoming(update *models.Update) (*models.Message, bool) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return nil, false
	}
	return update.Message, true
}

// sendAll delivers messages in order. A Markdown message Telegram refuses
// to parse is sent again as plain text.
func sendAll(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, out []Outgoing) {
	for _, o := range out {
		if o.Text == "" {
			continue
		}
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Context cancelled before sending reply", "chat_id", chatID, "error", ctx.Err())
			return
		}

		params := &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        o.Text,
			ReplyMarkup: replyMarkup(o.Keyboard),
		}
		if o.Markdown {
			params.ParseMode = models.ParseModeMarkdownV1
		}

		sent, err := send(ctx, b, params)
		if err != nil && o.Markdown {
			log.WarnContext(ctx, "Markdown reply rejected, resending as plain text", "chat_id", chatID, "error", err)
			params.ParseMode = ""
			sent, err = send(ctx, b, params)
		}
		if err != nil {
			log.ErrorContext(ctx, "Failed to send reply", "chat_id", chatID, "error", err)
			continue
		}
		log.DebugContext(ctx, "Sent reply", "chat_id", chatID, "message_id", sent.ID)
	}
}

func send(ctx context.Context, b *bot.Bot, params *bot.SendMessageParams) (*models.Message, error) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	return b.SendMessage(sendCtx, params)
}
