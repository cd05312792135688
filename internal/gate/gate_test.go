package gate

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"compliancehub/internal/model"
)

type stubStore struct {
	tenant       *model.Tenant
	tenantErr    error
	overdueCount int
	overdueErr   error
	pendingDue   bool
	pendingErr   error
}

func (s *stubStore) GetTenant(id uuid.UUID) (*model.Tenant, error) {
	if s.tenantErr != nil {
		return nil, s.tenantErr
	}
	return s.tenant, nil
}

func (s *stubStore) OverdueSummary(tenantID uuid.UUID) (int, float64, error) {
	if s.overdueErr != nil {
		return 0, 0, s.overdueErr
	}
	return s.overdueCount, float64(s.overdueCount) * 100, nil
}

func (s *stubStore) HasPendingInvoiceDueWithin(tenantID uuid.UUID, window time.Duration) (bool, error) {
	if s.pendingErr != nil {
		return false, s.pendingErr
	}
	return s.pendingDue, nil
}

func TestSuspendedWithOverdueBlocksWithPaymentMessage(t *testing.T) {
	store := &stubStore{
		tenant:       &model.Tenant{ID: uuid.New(), Status: model.TenantSuspended},
		overdueCount: 1,
	}
	g := NewGate(store)

	d, err := g.Check(store.tenant.ID)
	require.NoError(t, err)
	require.False(t, d.Allow)
	require.Equal(t, MsgPaymentRequired, d.Message)
}

func TestSuspendedWithoutOverdueBlocksWithGenericMessage(t *testing.T) {
	store := &stubStore{
		tenant:       &model.Tenant{ID: uuid.New(), Status: model.TenantSuspended},
		overdueCount: 0,
	}
	g := NewGate(store)

	d, err := g.Check(store.tenant.ID)
	require.NoError(t, err)
	require.False(t, d.Allow)
	require.Equal(t, MsgContactSupport, d.Message)
}

func TestSuspendedOverdueLookupErrorStillBlocks(t *testing.T) {
	store := &stubStore{
		tenant:     &model.Tenant{ID: uuid.New(), Status: model.TenantSuspended},
		overdueErr: errors.New("db unavailable"),
	}
	g := NewGate(store)

	d, err := g.Check(store.tenant.ID)
	require.NoError(t, err)
	require.False(t, d.Allow)
	require.Equal(t, MsgContactSupport, d.Message)
}

func TestActiveWithPendingDueSoonAllows(t *testing.T) {
	store := &stubStore{
		tenant:     &model.Tenant{ID: uuid.New(), Status: model.TenantActive},
		pendingDue: true, // due in 2 days -> soft warning only
	}
	g := NewGate(store)

	d, err := g.Check(store.tenant.ID)
	require.NoError(t, err)
	require.True(t, d.Allow)
	require.Empty(t, d.Message)
}

func TestActiveAllows(t *testing.T) {
	store := &stubStore{
		tenant: &model.Tenant{ID: uuid.New(), Status: model.TenantActive},
	}
	g := NewGate(store)

	d, err := g.Check(store.tenant.ID)
	require.NoError(t, err)
	require.True(t, d.Allow)
}

func TestPendingLookupErrorFailsOpen(t *testing.T) {
	store := &stubStore{
		tenant:     &model.Tenant{ID: uuid.New(), Status: model.TenantActive},
		pendingErr: errors.New("db unavailable"),
	}
	g := NewGate(store)

	d, err := g.Check(store.tenant.ID)
	require.NoError(t, err)
	require.True(t, d.Allow)
}

func TestTenantLookupErrorPropagates(t *testing.T) {
	store := &stubStore{tenantErr: errors.New("db unavailable")}
	g := NewGate(store)

	_, err := g.Check(uuid.New())
	require.Error(t, err)
}
