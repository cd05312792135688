// internal/storage/postgres.go
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"compliancehub/internal/model"
)

type Storage struct {
	DB *sql.DB
}

func NewStorage(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &Storage{DB: db}, nil
}

func (s *Storage) GetTenant(id uuid.UUID) (*model.Tenant, error) {
	row := s.DB.QueryRow(`
		SELECT id, name, status, fiken_company_ref
		FROM tenants
		WHERE id = $1
	`, id)

	var t model.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.Status, &t.FikenCompanyRef); err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

func (s *Storage) ListTenants() ([]model.Tenant, error) {
	rows, err := s.DB.Query(`SELECT id, name, status, fiken_company_ref FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &t.FikenCompanyRef); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *Storage) UpdateTenantStatus(id uuid.UUID, status model.TenantStatus) error {
	_, err := s.DB.Exec(`
		UPDATE tenants
		SET status = $1
		WHERE id = $2
	`, status, id)
	return err
}

// OverdueSummary returns the number and summed amount of OVERDUE invoices
// for a tenant.
func (s *Storage) OverdueSummary(tenantID uuid.UUID) (int, float64, error) {
	row := s.DB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM invoices
		WHERE tenant_id = $1 AND status = $2
	`, tenantID, model.InvoiceOverdue)

	var count int
	var total float64
	if err := row.Scan(&count, &total); err != nil {
		return 0, 0, fmt.Errorf("overdue summary: %w", err)
	}
	return count, total, nil
}

// ListOpenInvoices returns the tenant's invoices that can still change
// state (PENDING, SENT, OVERDUE).
func (s *Storage) ListOpenInvoices(tenantID uuid.UUID) ([]model.Invoice, error) {
	rows, err := s.DB.Query(`
		SELECT id, tenant_id, status, amount, due_date, paid_date, fiken_invoice_ref
		FROM invoices
		WHERE tenant_id = $1 AND status IN ($2, $3, $4)
		ORDER BY due_date
	`, tenantID, model.InvoicePending, model.InvoiceSent, model.InvoiceOverdue)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.Status, &inv.Amount,
			&inv.DueDate, &inv.PaidDate, &inv.FikenInvoiceRef); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *Storage) UpdateInvoiceStatus(id uuid.UUID, status model.InvoiceStatus, paidDate *time.Time) error {
	_, err := s.DB.Exec(`
		UPDATE invoices
		SET status = $1, paid_date = $2
		WHERE id = $3
	`, status, paidDate, id)
	return err
}

// HasPendingInvoiceDueWithin reports whether the tenant has a PENDING
// invoice whose due date falls within the given window from now.
func (s *Storage) HasPendingInvoiceDueWithin(tenantID uuid.UUID, window time.Duration) (bool, error) {
	row := s.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE tenant_id = $1
			  AND status = $2
			  AND due_date BETWEEN NOW() AND NOW() + $3::interval
		)
	`, tenantID, model.InvoicePending, fmt.Sprintf("%d seconds", int(window.Seconds())))

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("pending invoice lookup: %w", err)
	}
	return exists, nil
}

// ListTrialSubscriptionsEndingBy returns TRIAL subscriptions whose trial
// end date is set and falls on or before the cutoff.
func (s *Storage) ListTrialSubscriptionsEndingBy(cutoff time.Time) ([]model.Subscription, error) {
	rows, err := s.DB.Query(`
		SELECT id, tenant_id, status, billing_interval, price, trial_ends_at, last_reminder_at
		FROM subscriptions
		WHERE status = $1 AND trial_ends_at IS NOT NULL AND trial_ends_at <= $2
	`, model.SubscriptionTrial, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		if err := rows.Scan(&sub.ID, &sub.TenantID, &sub.Status, &sub.BillingInterval,
			&sub.Price, &sub.TrialEndsAt, &sub.LastReminderAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Storage) MarkReminderSent(subscriptionID uuid.UUID, at time.Time) error {
	_, err := s.DB.Exec(`
		UPDATE subscriptions
		SET last_reminder_at = $1
		WHERE id = $2
	`, at, subscriptionID)
	return err
}

func (s *Storage) GetUserByEmail(email string) (*model.User, error) {
	row := s.DB.QueryRow(`
		SELECT id, tenant_id, email, password_hash
		FROM users
		WHERE email = $1
	`, email)

	var u model.User
	if err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// DeleteRecurringJobs removes every persisted repeatable-job definition.
// Called before re-registration so each startup ends with exactly one
// definition per name.
func (s *Storage) DeleteRecurringJobs() error {
	_, err := s.DB.Exec(`DELETE FROM recurring_jobs`)
	return err
}

func (s *Storage) InsertRecurringJob(job model.RecurringJob) error {
	_, err := s.DB.Exec(`
		INSERT INTO recurring_jobs (name, cron_expr, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET cron_expr = EXCLUDED.cron_expr
	`, job.Name, job.CronExpr, time.Now())
	return err
}

func (s *Storage) ListRecurringJobs() ([]model.RecurringJob, error) {
	rows, err := s.DB.Query(`SELECT name, cron_expr, created_at FROM recurring_jobs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.RecurringJob
	for rows.Next() {
		var j model.RecurringJob
		if err := rows.Scan(&j.Name, &j.CronExpr, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
