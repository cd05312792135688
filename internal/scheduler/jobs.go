// internal/scheduler/jobs.go
package scheduler

import "time"

// Job names. Splitting authority sync across three daily slots gives
// throughput without running parallel workers.
const (
	JobCheckOverdue       = "check-overdue"
	JobTrialReminders     = "trial-expiring-reminders"
	JobSyncFikenMorning   = "sync-fiken-morning"
	JobSyncFikenAfternoon = "sync-fiken-afternoon"
	JobSyncFikenEvening   = "sync-fiken-evening"
)

// JobDefinition pairs a job name with its cron schedule.
type JobDefinition struct {
	Name     string
	CronExpr string
}

// Definitions is the fixed repeatable-job set (server local time).
func Definitions() []JobDefinition {
	return []JobDefinition{
		{Name: JobCheckOverdue, CronExpr: "0 2 * * *"},
		{Name: JobTrialReminders, CronExpr: "0 10 * * *"},
		{Name: JobSyncFikenMorning, CronExpr: "0 8 * * *"},
		{Name: JobSyncFikenAfternoon, CronExpr: "0 14 * * *"},
		{Name: JobSyncFikenEvening, CronExpr: "0 20 * * *"},
	}
}

// KnownJob reports whether name is a registered job name.
func KnownJob(name string) bool {
	for _, def := range Definitions() {
		if def.Name == name {
			return true
		}
	}
	return false
}

// JobMessage is the payload published to the jobs queue when a
// schedule fires (or an operator triggers a job manually).
type JobMessage struct {
	Name    string    `json:"name"`
	FiredAt time.Time `json:"fired_at"`
}

// Result aggregates the counts a completed job reports.
type Result struct {
	TenantsSuspended   int `json:"tenants_suspended,omitempty"`
	RemindersSent      int `json:"reminders_sent,omitempty"`
	InvoicesUpdated    int `json:"invoices_updated,omitempty"`
	TenantsReactivated int `json:"tenants_reactivated,omitempty"`
}
