// Package tasks implements the scheduled maintenance tasks and their registry.
package tasks

import (
	"log/slog"
	"time"

	"github.com/edgard/edubot/internal/config"
	"github.com/edgard/edubot/internal/database"
)

// IdlePruner drops per-user state untouched for longer than idle.
// *memory.Store and *handlers.Sessions implement it.
type IdlePruner interface {
	PruneIdle(now time.Time, idle time.Duration) int
}

// TaskDeps contains the dependencies of scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Memory   IdlePruner
	Sessions IdlePruner
	Config   *config.Config
	Now      func() time.Time
}
