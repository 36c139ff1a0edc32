// Package handlers contains the Telegram command and message handlers, the
// per-user conversation steps and their registration.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly lets the update through only when it comes from the configured
// admin. An unset admin id locks the command for everyone.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			msg, ok := incoming(update)
			if !ok {
				return
			}

			adminID := deps.Config.Telegram.AdminUserID
			if adminID == 0 || msg.From.ID != adminID {
				log := deps.Logger.With("middleware", "AdminOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", msg.From.ID, "chat_id", msg.Chat.ID)
				sendAll(ctx, bot, log, msg.Chat.ID, []Outgoing{{Text: deps.Config.Messages.Unauthorized}})
				return
			}

			next(ctx, bot, update)
		}
	}
}
