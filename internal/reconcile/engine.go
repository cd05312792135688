// internal/reconcile/engine.go
package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"compliancehub/internal/fiken"
	"compliancehub/internal/metrics"
	"compliancehub/internal/model"
	"compliancehub/internal/notifier"
)

// Store defines the persistence operations the engine needs. The engine
// is the only writer of Tenant.Status and Invoice.Status.
type Store interface {
	ListTenants() ([]model.Tenant, error)
	OverdueSummary(tenantID uuid.UUID) (int, float64, error)
	UpdateTenantStatus(tenantID uuid.UUID, status model.TenantStatus) error
	ListOpenInvoices(tenantID uuid.UUID) ([]model.Invoice, error)
	UpdateInvoiceStatus(invoiceID uuid.UUID, status model.InvoiceStatus, paidDate *time.Time) error
	ListTrialSubscriptionsEndingBy(cutoff time.Time) ([]model.Subscription, error)
	MarkReminderSent(subscriptionID uuid.UUID, at time.Time) error
}

// Authority is the billing-authority read contract used during sync.
type Authority interface {
	Configured() bool
	GetInvoice(ctx context.Context, companySlug, invoiceRef string) (*fiken.ExternalInvoice, error)
}

// Engine runs the three idempotent reconciliation procedures. Each pass
// recomputes from scratch, so a failed run is simply retried whole at
// the next scheduled fire.
type Engine struct {
	store     Store
	authority Authority
	notifier  notifier.Notifier

	// now is swappable for tests.
	now func() time.Time
	// reminderWindow is the trial-expiry look-ahead.
	reminderWindow time.Duration
}

func NewEngine(store Store, authority Authority, n notifier.Notifier) *Engine {
	return &Engine{
		store:          store,
		authority:      authority,
		notifier:       n,
		now:            time.Now,
		reminderWindow: 24 * time.Hour,
	}
}

// CheckOverdue suspends every active tenant that has at least one
// OVERDUE invoice. It never reactivates; that is SyncAuthority's job.
// Returns the number of newly suspended tenants.
func (e *Engine) CheckOverdue(ctx context.Context) (int, error) {
	tenants, err := e.store.ListTenants()
	if err != nil {
		return 0, err
	}

	suspended := 0
	for _, tenant := range tenants {
		count, total, err := e.store.OverdueSummary(tenant.ID)
		if err != nil {
			log.Printf("[Reconcile] Overdue lookup failed for tenant %s: %v", tenant.ID, err)
			continue
		}
		if count == 0 || tenant.Suspended() {
			continue
		}

		if err := e.store.UpdateTenantStatus(tenant.ID, model.TenantSuspended); err != nil {
			log.Printf("[Reconcile] Failed to suspend tenant %s: %v", tenant.ID, err)
			continue
		}
		log.Printf("[Reconcile] Suspended tenant %s: %d overdue invoice(s), %.2f outstanding", tenant.ID, count, total)
		metrics.TenantsSuspended.Inc()
		suspended++
	}
	return suspended, nil
}

// TrialReminders dispatches an expiry reminder for every TRIAL
// subscription ending within the look-ahead window, at most once per
// subscription per day. Returns the number of reminders sent.
func (e *Engine) TrialReminders(ctx context.Context) (int, error) {
	now := e.now()
	subs, err := e.store.ListTrialSubscriptionsEndingBy(now.Add(e.reminderWindow))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, sub := range subs {
		if sub.TrialEndsAt == nil || sub.TrialEndsAt.Before(now) {
			continue
		}
		if sub.LastReminderAt != nil && sameDay(*sub.LastReminderAt, now) {
			continue
		}

		if err := e.notifier.TrialExpiring(sub); err != nil {
			log.Printf("[Reconcile] Reminder dispatch failed for subscription %s: %v", sub.ID, err)
			continue
		}
		if err := e.store.MarkReminderSent(sub.ID, now); err != nil {
			log.Printf("[Reconcile] Failed to record reminder for subscription %s: %v", sub.ID, err)
		}
		metrics.RemindersSent.Inc()
		sent++
	}
	return sent, nil
}

// SyncAuthority reconciles every open invoice carrying an external
// reference against the billing authority, then reactivates any
// suspended tenant left with zero OVERDUE invoices. Per-invoice
// failures are logged and do not abort the batch. Returns the number
// of invoice updates written and tenants reactivated.
func (e *Engine) SyncAuthority(ctx context.Context) (int, int, error) {
	if !e.authority.Configured() {
		log.Printf("[Reconcile] Billing authority credentials missing, skipping sync")
		return 0, 0, nil
	}

	tenants, err := e.store.ListTenants()
	if err != nil {
		return 0, 0, err
	}

	updated := 0
	reactivated := 0
	for _, tenant := range tenants {
		if tenant.FikenCompanyRef == nil {
			// Nothing to sync for this tenant.
			continue
		}

		invoices, err := e.store.ListOpenInvoices(tenant.ID)
		if err != nil {
			log.Printf("[Reconcile] Failed to list invoices for tenant %s: %v", tenant.ID, err)
			continue
		}

		for _, inv := range invoices {
			if inv.FikenInvoiceRef == nil {
				continue
			}
			n, err := e.syncInvoice(ctx, *tenant.FikenCompanyRef, inv)
			if err != nil {
				log.Printf("[Reconcile] Sync failed for invoice %s (tenant %s): %v", inv.ID, tenant.ID, err)
				continue
			}
			updated += n
		}

		// Reactivation runs strictly after all of this tenant's
		// invoices have been reconciled in the same pass.
		count, _, err := e.store.OverdueSummary(tenant.ID)
		if err != nil {
			log.Printf("[Reconcile] Overdue lookup failed for tenant %s: %v", tenant.ID, err)
			continue
		}
		if count == 0 && tenant.Suspended() {
			if err := e.store.UpdateTenantStatus(tenant.ID, model.TenantActive); err != nil {
				log.Printf("[Reconcile] Failed to reactivate tenant %s: %v", tenant.ID, err)
				continue
			}
			log.Printf("[Reconcile] Reactivated tenant %s: no overdue invoices remain", tenant.ID)
			metrics.TenantsReactivated.Inc()
			reactivated++
		}
	}
	return updated, reactivated, nil
}

func (e *Engine) syncInvoice(ctx context.Context, companySlug string, inv model.Invoice) (int, error) {
	ext, err := e.authority.GetInvoice(ctx, companySlug, *inv.FikenInvoiceRef)
	if err != nil {
		return 0, err
	}

	now := e.now()
	next := nextStatus(inv, ext, now)
	if next == inv.Status {
		return 0, nil
	}

	paidDate := inv.PaidDate
	if next == model.InvoicePaid {
		paidDate = &now
	}
	if err := e.store.UpdateInvoiceStatus(inv.ID, next, paidDate); err != nil {
		return 0, err
	}
	log.Printf("[Reconcile] Invoice %s: %s -> %s", inv.ID, inv.Status, next)
	metrics.InvoicesSynced.Inc()
	return 1, nil
}

// nextStatus computes the invoice status from the authority's view.
// Strict precedence, first match wins: paid, cancelled, due date
// elapsed, sent, unchanged.
func nextStatus(inv model.Invoice, ext *fiken.ExternalInvoice, now time.Time) model.InvoiceStatus {
	switch {
	case ext.Paid:
		return model.InvoicePaid
	case ext.Cancelled:
		return model.InvoiceCancelled
	case inv.DueDate.Before(now):
		return model.InvoiceOverdue
	case ext.Sent:
		return model.InvoiceSent
	default:
		return inv.Status
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
