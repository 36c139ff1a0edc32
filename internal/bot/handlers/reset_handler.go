package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const resetTimeout = 30 * time.Second

// NewResetHandler returns a handler for the admin /reset command.
func NewResetHandler(deps HandlerDeps) bot.HandlerFunc {
	return resetHandler{deps: deps, conv: NewConversation(deps)}.Handle
}

type resetHandler struct {
	deps HandlerDeps
	conv *Conversation
}

func (h resetHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reset")

	msg, ok := incoming(update)
	if !ok {
		log.ErrorContext(ctx, "Reset handler called with nil Message or From", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Admin requested chat history reset", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	resetCtx, cancel := context.WithTimeout(ctx, resetTimeout)
	defer cancel()
	out := h.conv.Reset(resetCtx)

	sendAll(ctx, b, log, msg.Chat.ID, out)
}
