// internal/model/invoice.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

type Invoice struct {
	ID              uuid.UUID     `db:"id"`
	TenantID        uuid.UUID     `db:"tenant_id"`
	Status          InvoiceStatus `db:"status"`
	Amount          float64       `db:"amount"`
	DueDate         time.Time     `db:"due_date"`
	PaidDate        *time.Time    `db:"paid_date"`
	FikenInvoiceRef *string       `db:"fiken_invoice_ref"`
	CreatedAt       time.Time     `db:"created_at"`
}

// Open reports whether the invoice can still change state.
// PAID and CANCELLED are terminal.
func (i *Invoice) Open() bool {
	switch i.Status {
	case InvoicePending, InvoiceSent, InvoiceOverdue:
		return true
	}
	return false
}
