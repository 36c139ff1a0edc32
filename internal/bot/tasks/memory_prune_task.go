package tasks

import (
	"context"
	"errors"
)

// newMemoryPruneTask evicts conversation memory and command sessions of users
// idle for longer than memory.idle_ttl. A zero TTL disables eviction.
func newMemoryPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskMemoryPrune)

	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		ttl := deps.Config.Memory.IdleTTL
		if ttl <= 0 {
			log.DebugContext(ctx, "Idle TTL not set, nothing to prune")
			return nil
		}
		if deps.Memory == nil && deps.Sessions == nil {
			return errors.New("memory prune task has nothing to prune")
		}

		now := deps.Now()
		var users, sessions int
		if deps.Memory != nil {
			users = deps.Memory.PruneIdle(now, ttl)
		}
		if deps.Sessions != nil {
			sessions = deps.Sessions.PruneIdle(now, ttl)
		}

		log.InfoContext(ctx, "Pruned idle users", "memory_users", users, "sessions", sessions, "idle_ttl", ttl)
		return nil
	}
}
