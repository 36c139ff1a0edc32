package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps: deps, conv: NewConversation(deps)}.Handle
}

type helpHandler struct {
	deps HandlerDeps
	conv *Conversation
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	msg, ok := incoming(update)
	if !ok {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /help command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	sendAll(ctx, b, log, msg.Chat.ID, h.conv.Help())
}
