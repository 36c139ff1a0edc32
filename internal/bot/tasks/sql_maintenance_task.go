package tasks

import (
	"context"
	"fmt"
	"time"
)

const sqlMaintenanceTimeout = 10 * time.Minute

// newSQLMaintenanceTask runs ANALYZE and VACUUM on the database.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", TaskSQLMaintenance)

	return func(ctx context.Context) error {
		startTime := time.Now()

		maintCtx, cancel := context.WithTimeout(ctx, sqlMaintenanceTimeout)
		defer cancel()

		if err := deps.Store.RunSQLMaintenance(maintCtx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", time.Since(startTime))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance task completed", "duration", time.Since(startTime))
		return nil
	}
}
