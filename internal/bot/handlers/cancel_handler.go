package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewCancelHandler returns a handler for the /cancel command.
func NewCancelHandler(deps HandlerDeps) bot.HandlerFunc {
	return cancelHandler{deps: deps, conv: NewConversation(deps)}.Handle
}

type cancelHandler struct {
	deps HandlerDeps
	conv *Conversation
}

func (h cancelHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "cancel")

	msg, ok := incoming(update)
	if !ok {
		log.WarnContext(ctx, "Cancel handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /cancel command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	sendAll(ctx, b, log, msg.Chat.ID, h.conv.Cancel(ctx, msg.From.ID))
}
