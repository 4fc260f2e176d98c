package absence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/domain/employee"
	"github.com/hroffice/absence-backend-go/internal/repository/memory"
)

func newTestLedger(t *testing.T) (*Ledger, *memory.AbsenceQuotaRepository, *memory.EmployeeRepository) {
	t.Helper()
	store := memory.NewStore()
	quotaRepo := memory.NewAbsenceQuotaRepository(store)
	empRepo := memory.NewEmployeeRepository(store)
	return NewLedger(quotaRepo, empRepo), quotaRepo, empRepo
}

func TestLedgerGetOrCreateSeedsFromTypeDefault(t *testing.T) {
	ledger, _, empRepo := newTestLedger(t)
	ctx := context.Background()

	emp, err := empRepo.Create(ctx, employee.Employee{FullName: "Mara Voss", IsActive: true})
	require.NoError(t, err)

	absenceType := absence.AbsenceType{ID: "type-1", DefaultAnnualQuota: 24}

	quota, err := ledger.GetOrCreate(ctx, emp.ID, absenceType, 2026)
	require.NoError(t, err)
	assert.Equal(t, 24.0, quota.Entitlement)
	assert.Equal(t, 0.0, quota.UsedDays)
	assert.Equal(t, 0.0, quota.PlannedDays)

	// Second call returns the same row, no reseeding.
	again, err := ledger.GetOrCreate(ctx, emp.ID, absenceType, 2026)
	require.NoError(t, err)
	assert.Equal(t, quota.ID, again.ID)
}

func TestLedgerGetOrCreateHonorsEmployeeOverride(t *testing.T) {
	ledger, _, empRepo := newTestLedger(t)
	ctx := context.Background()

	override := 28.0
	emp, err := empRepo.Create(ctx, employee.Employee{
		FullName:          "Mara Voss",
		IsActive:          true,
		AnnualEntitlement: &override,
	})
	require.NoError(t, err)

	quota, err := ledger.GetOrCreate(ctx, emp.ID, absence.AbsenceType{ID: "type-1", DefaultAnnualQuota: 24}, 2026)
	require.NoError(t, err)
	assert.Equal(t, 28.0, quota.Entitlement)
}

func TestLedgerReserveCommitRelease(t *testing.T) {
	ledger, quotaRepo, _ := newTestLedger(t)
	ctx := context.Background()

	quota, err := quotaRepo.Create(ctx, absence.AbsenceQuota{
		EmployeeID:  "emp-1",
		TypeID:      "type-1",
		Year:        2026,
		Entitlement: 10,
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Reserve(ctx, quota.ID, 4))
	require.NoError(t, ledger.Reserve(ctx, quota.ID, 3))

	current, err := quotaRepo.GetByID(ctx, quota.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, current.PlannedDays)

	require.NoError(t, ledger.Commit(ctx, quota.ID, 4))
	current, err = quotaRepo.GetByID(ctx, quota.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, current.UsedDays)
	assert.Equal(t, 3.0, current.PlannedDays)

	require.NoError(t, ledger.Release(ctx, quota.ID, 3))
	current, err = quotaRepo.GetByID(ctx, quota.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, current.UsedDays)
	assert.Equal(t, 0.0, current.PlannedDays)
}

func TestLedgerReserveBeyondEntitlementLeavesQuotaUntouched(t *testing.T) {
	ledger, quotaRepo, _ := newTestLedger(t)
	ctx := context.Background()

	quota, err := quotaRepo.Create(ctx, absence.AbsenceQuota{
		EmployeeID:  "emp-1",
		TypeID:      "type-1",
		Year:        2026,
		Entitlement: 5,
		UsedDays:    3,
		PlannedDays: 1,
	})
	require.NoError(t, err)

	err = ledger.Reserve(ctx, quota.ID, 2)
	assert.ErrorIs(t, err, absence.ErrQuotaExceeded)

	current, err := quotaRepo.GetByID(ctx, quota.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, current.UsedDays)
	assert.Equal(t, 1.0, current.PlannedDays)

	// Exactly filling the remainder is fine.
	require.NoError(t, ledger.Reserve(ctx, quota.ID, 1))
}

func TestLedgerHalfDayAmounts(t *testing.T) {
	ledger, quotaRepo, _ := newTestLedger(t)
	ctx := context.Background()

	quota, err := quotaRepo.Create(ctx, absence.AbsenceQuota{
		EmployeeID:  "emp-1",
		TypeID:      "type-1",
		Year:        2026,
		Entitlement: 2,
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Reserve(ctx, quota.ID, 0.5))
	require.NoError(t, ledger.Commit(ctx, quota.ID, 0.5))

	current, err := quotaRepo.GetByID(ctx, quota.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.5, current.UsedDays)
}

func TestLedgerRejectsInvalidDayAmounts(t *testing.T) {
	ledger, quotaRepo, _ := newTestLedger(t)
	ctx := context.Background()

	quota, err := quotaRepo.Create(ctx, absence.AbsenceQuota{
		EmployeeID:  "emp-1",
		TypeID:      "type-1",
		Year:        2026,
		Entitlement: 10,
	})
	require.NoError(t, err)

	for _, days := range []float64{0, -1, 0.3, 1.25} {
		assert.ErrorIs(t, ledger.Reserve(ctx, quota.ID, days), absence.ErrInvalidDayAmount)
		assert.ErrorIs(t, ledger.Commit(ctx, quota.ID, days), absence.ErrInvalidDayAmount)
		assert.ErrorIs(t, ledger.Release(ctx, quota.ID, days), absence.ErrInvalidDayAmount)
	}
}

func TestLedgerAdjustGuardsAgainstNegativeBalance(t *testing.T) {
	ledger, quotaRepo, _ := newTestLedger(t)
	ctx := context.Background()

	quota, err := quotaRepo.Create(ctx, absence.AbsenceQuota{
		EmployeeID:  "emp-1",
		TypeID:      "type-1",
		Year:        2026,
		Entitlement: 20,
		UsedDays:    12,
		PlannedDays: 3,
	})
	require.NoError(t, err)

	require.NoError(t, ledger.Adjust(ctx, quota.ID, -5))

	current, err := quotaRepo.GetByID(ctx, quota.ID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, current.Entitlement)

	assert.ErrorIs(t, ledger.Adjust(ctx, quota.ID, -1), absence.ErrNegativeQuota)
}
