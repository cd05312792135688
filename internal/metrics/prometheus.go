package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_jobs_processed_total",
			Help: "Total number of billing jobs processed, by job name and result",
		},
		[]string{"job", "result"},
	)

	JobRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_job_retries_total",
			Help: "Total number of billing job retry attempts",
		},
		[]string{"job"},
	)

	TenantsSuspended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenants_suspended_total",
			Help: "Total number of tenants suspended for overdue invoices",
		},
	)

	TenantsReactivated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenants_reactivated_total",
			Help: "Total number of tenants reactivated after payment",
		},
	)

	InvoicesSynced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invoices_synced_total",
			Help: "Total number of invoice status updates written during authority sync",
		},
	)

	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trial_reminders_sent_total",
			Help: "Total number of trial expiry reminders dispatched",
		},
	)

	LoginsBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_blocked_total",
			Help: "Total number of logins blocked by the tenant lifecycle gate, by reason",
		},
		[]string{"reason"},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current RabbitMQ queue depth per queue",
		},
		[]string{"queue"},
	)
)

// Init registers metrics with Prometheus
func Init() {
	prometheus.MustRegister(JobsProcessed)
	prometheus.MustRegister(JobRetries)
	prometheus.MustRegister(TenantsSuspended)
	prometheus.MustRegister(TenantsReactivated)
	prometheus.MustRegister(InvoicesSynced)
	prometheus.MustRegister(RemindersSent)
	prometheus.MustRegister(LoginsBlocked)
	prometheus.MustRegister(QueueDepth)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
