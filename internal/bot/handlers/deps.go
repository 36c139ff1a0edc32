package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/edubot/internal/config"
	"github.com/edgard/edubot/internal/database"
	"github.com/edgard/edubot/internal/engine"
)

// Processor answers one engine request. *engine.Orchestrator implements it.
type Processor interface {
	Process(ctx context.Context, req engine.Request) engine.Reply
}

// MemoryResetter wipes the in-process conversation memory.
type MemoryResetter interface {
	Reset() int
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Engine   Processor
	Memory   MemoryResetter
	Sessions *Sessions
}
