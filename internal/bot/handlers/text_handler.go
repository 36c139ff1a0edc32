package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTextHandler returns the default handler: keyboard buttons, the current
// command step and general chat all arrive here.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps: deps, conv: NewConversation(deps)}.Handle
}

type textHandler struct {
	deps HandlerDeps
	conv *Conversation
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	msg, ok := incoming(update)
	if !ok || msg.Text == "" {
		return
	}
	if msg.Chat.Type != models.ChatTypePrivate {
		log.DebugContext(ctx, "Ignoring non-private message", "chat_id", msg.Chat.ID, "chat_type", msg.Chat.Type)
		return
	}

	if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: msg.Chat.ID, Action: models.ChatActionTyping}); err != nil {
		log.DebugContext(ctx, "Failed to send typing action", "chat_id", msg.Chat.ID, "error", err)
	}

	sendAll(ctx, b, log, msg.Chat.ID, h.conv.Text(ctx, msg.From.ID, msg.Text))
}
