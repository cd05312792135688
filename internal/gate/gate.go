// internal/gate/gate.go
// Package gate enforces the tenant's current suspension state at login
// time. It is read-only: tenant and invoice state is mutated solely by
// the reconciliation engine.
package gate

import (
	"log"
	"time"

	"github.com/google/uuid"

	"compliancehub/internal/metrics"
	"compliancehub/internal/model"
)

const (
	// MsgPaymentRequired is shown when the suspension can be traced to
	// overdue invoices.
	MsgPaymentRequired = "Your account is suspended due to unpaid invoices. Please settle the outstanding amount or contact support."
	// MsgContactSupport is shown for suspensions with no overdue
	// invoice on record (e.g. administrative).
	MsgContactSupport = "Your account is suspended. Please contact support."

	// pendingWarnWindow is how close a PENDING invoice's due date must
	// be before a login produces a soft warning.
	pendingWarnWindow = 72 * time.Hour
)

type Store interface {
	GetTenant(id uuid.UUID) (*model.Tenant, error)
	OverdueSummary(tenantID uuid.UUID) (int, float64, error)
	HasPendingInvoiceDueWithin(tenantID uuid.UUID, window time.Duration) (bool, error)
}

// Decision is the gate's verdict on a login attempt. Message is only
// set when the login is blocked and is the sole user-visible failure
// text this subsystem produces.
type Decision struct {
	Allow   bool
	Message string
}

type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// Check runs after password validation and before session issue.
func (g *Gate) Check(tenantID uuid.UUID) (Decision, error) {
	tenant, err := g.store.GetTenant(tenantID)
	if err != nil {
		return Decision{}, err
	}

	if tenant.Suspended() {
		// Both system-driven and administrative suspensions share one
		// status value; the cause is inferred from overdue invoices.
		count, _, err := g.store.OverdueSummary(tenantID)
		if err != nil {
			log.Printf("[Gate] Overdue lookup failed for tenant %s: %v", tenantID, err)
			metrics.LoginsBlocked.WithLabelValues("generic").Inc()
			return Decision{Allow: false, Message: MsgContactSupport}, nil
		}
		if count > 0 {
			metrics.LoginsBlocked.WithLabelValues("payment").Inc()
			return Decision{Allow: false, Message: MsgPaymentRequired}, nil
		}
		metrics.LoginsBlocked.WithLabelValues("generic").Inc()
		return Decision{Allow: false, Message: MsgContactSupport}, nil
	}

	// Soft warning only; an error here fails open, availability over
	// strictness.
	due, err := g.store.HasPendingInvoiceDueWithin(tenantID, pendingWarnWindow)
	if err != nil {
		log.Printf("[Gate] Pending invoice lookup failed for tenant %s: %v", tenantID, err)
		return Decision{Allow: true}, nil
	}
	if due {
		log.Printf("[Gate] Tenant %s has a pending invoice due within %v", tenantID, pendingWarnWindow)
	}

	return Decision{Allow: true}, nil
}
