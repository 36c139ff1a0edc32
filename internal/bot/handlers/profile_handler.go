package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewProfileHandler returns a handler for the /profile command, which starts
// the conversational profile collection.
func NewProfileHandler(deps HandlerDeps) bot.HandlerFunc {
	return profileHandler{deps: deps, conv: NewConversation(deps)}.Handle
}

type profileHandler struct {
	deps HandlerDeps
	conv *Conversation
}

func (h profileHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "profile")

	msg, ok := incoming(update)
	if !ok {
		log.WarnContext(ctx, "Profile handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /profile command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	sendAll(ctx, b, log, msg.Chat.ID, h.conv.Profile(ctx, msg.From.ID))
}
