package tasks

import (
	"context"
	"time"
)

// Task registry names, as used under scheduler.tasks in the config.
const (
	TaskSQLMaintenance = "sql_maintenance"
	TaskMemoryPrune    = "memory_prune"
)

// ScheduledTaskFunc is the signature of every scheduled task. Tasks must
// respect ctx and return an error on failure.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns every task keyed by its registry name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	tasks := map[string]ScheduledTaskFunc{
		TaskSQLMaintenance: newSQLMaintenanceTask(deps),
		TaskMemoryPrune:    newMemoryPruneTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
