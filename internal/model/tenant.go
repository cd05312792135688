// internal/model/tenant.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type TenantStatus string

const (
	TenantActive    TenantStatus = "ACTIVE"
	TenantSuspended TenantStatus = "SUSPENDED"
)

type Tenant struct {
	ID              uuid.UUID    `db:"id"`
	Name            string       `json:"name"`
	Status          TenantStatus `json:"status"`
	FikenCompanyRef *string      `db:"fiken_company_ref"`
	CreatedAt       time.Time    `db:"created_at"`
}

// Suspended reports whether the tenant is currently soft-blocked.
func (t *Tenant) Suspended() bool {
	return t.Status == TenantSuspended
}
