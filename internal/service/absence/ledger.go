package absence

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/domain/employee"
)

// Ledger owns all quota mutation. Guards live in the repository as
// conditional updates; the ledger composes them and seeds quotas lazily.
type Ledger struct {
	absence.AbsenceQuotaRepository
	employee.EmployeeRepository
}

func NewLedger(quotaRepository absence.AbsenceQuotaRepository, employeeRepository employee.EmployeeRepository) *Ledger {
	return &Ledger{
		AbsenceQuotaRepository: quotaRepository,
		EmployeeRepository:     employeeRepository,
	}
}

// GetOrCreate returns the quota row for (employee, type, year), creating
// it with zero used and planned on first touch. The entitlement seed is
// the employee override when configured, the type default otherwise.
func (l *Ledger) GetOrCreate(ctx context.Context, employeeID string, absenceType absence.AbsenceType, year int) (absence.AbsenceQuota, error) {
	quota, err := l.AbsenceQuotaRepository.GetByEmployeeTypeYear(ctx, employeeID, absenceType.ID, year)
	if err == nil {
		return quota, nil
	}
	if !errors.Is(err, absence.ErrQuotaNotFound) {
		return absence.AbsenceQuota{}, fmt.Errorf("failed to get quota: %w", err)
	}

	emp, err := l.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return absence.AbsenceQuota{}, fmt.Errorf("failed to get employee: %w", err)
	}

	entitlement := absenceType.DefaultAnnualQuota
	if emp.AnnualEntitlement != nil {
		entitlement = *emp.AnnualEntitlement
	}

	created, err := l.AbsenceQuotaRepository.Create(ctx, absence.AbsenceQuota{
		EmployeeID:  employeeID,
		TypeID:      absenceType.ID,
		Year:        year,
		Entitlement: entitlement,
		UsedDays:    0,
		PlannedDays: 0,
	})
	if err != nil {
		return absence.AbsenceQuota{}, fmt.Errorf("failed to create quota: %w", err)
	}

	return created, nil
}

// Reserve places a provisional hold of days on the quota. The repository
// guard keeps used + planned within the entitlement; a failed guard
// surfaces as ErrQuotaExceeded with no mutation.
func (l *Ledger) Reserve(ctx context.Context, quotaID string, days float64) error {
	if err := validDayAmount(days); err != nil {
		return err
	}
	return l.AbsenceQuotaRepository.AddPlanned(ctx, quotaID, days)
}

// Commit moves days from planned to used on approval.
func (l *Ledger) Commit(ctx context.Context, quotaID string, days float64) error {
	if err := validDayAmount(days); err != nil {
		return err
	}
	return l.AbsenceQuotaRepository.MovePlannedToUsed(ctx, quotaID, days)
}

// Release drops a hold of days on rejection or withdrawal.
func (l *Ledger) Release(ctx context.Context, quotaID string, days float64) error {
	if err := validDayAmount(days); err != nil {
		return err
	}
	return l.AbsenceQuotaRepository.ReleasePlanned(ctx, quotaID, days)
}

// Adjust applies an administrative entitlement delta. The repository
// guard rejects deltas that would push the balance below what is
// already used or planned.
func (l *Ledger) Adjust(ctx context.Context, quotaID string, delta float64) error {
	return l.AbsenceQuotaRepository.AddEntitlement(ctx, quotaID, delta)
}

// Day amounts are whole or half days, strictly positive.
func validDayAmount(days float64) error {
	d := decimal.NewFromFloat(days)
	if d.LessThanOrEqual(decimal.Zero) {
		return absence.ErrInvalidDayAmount
	}
	if !d.Mod(decimal.NewFromFloat(0.5)).IsZero() {
		return absence.ErrInvalidDayAmount
	}
	return nil
}
