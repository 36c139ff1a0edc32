package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps: deps, conv: NewConversation(deps)}.Handle
}

// startHandler greets the user by name, or asks new users for a profile.
type startHandler struct {
	deps HandlerDeps
	conv *Conversation
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	msg, ok := incoming(update)
	if !ok {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	sendAll(ctx, b, log, msg.Chat.ID, h.conv.Start(ctx, msg.From.ID, msg.From.FirstName))
}
