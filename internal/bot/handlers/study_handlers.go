package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewPlanHandler returns a handler for the /plan command.
func NewPlanHandler(deps HandlerDeps) bot.HandlerFunc {
	conv := NewConversation(deps)
	return gatedHandler{deps: deps, name: "plan", enter: conv.Plan}.Handle
}

// NewAnalysisHandler returns a handler for the /analysis command.
func NewAnalysisHandler(deps HandlerDeps) bot.HandlerFunc {
	conv := NewConversation(deps)
	return gatedHandler{deps: deps, name: "analysis", enter: conv.Analysis}.Handle
}

// gatedHandler puts the user into a step that requires a complete profile.
type gatedHandler struct {
	deps  HandlerDeps
	name  string
	enter func(ctx context.Context, userID int64) []Outgoing
}

func (h gatedHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)

	msg, ok := incoming(update)
	if !ok {
		log.WarnContext(ctx, "Handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling command", "command", "/"+h.name, "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	sendAll(ctx, b, log, msg.Chat.ID, h.enter(ctx, msg.From.ID))
}
