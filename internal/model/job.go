// internal/model/job.go
package model

import "time"

// RecurringJob is a persisted repeatable-job definition owned by the
// scheduler. The full set is re-created on every startup so that exactly
// one live definition exists per name.
type RecurringJob struct {
	Name      string    `db:"name"`
	CronExpr  string    `db:"cron_expr"`
	CreatedAt time.Time `db:"created_at"`
}
