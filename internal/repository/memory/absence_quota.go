package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
)

// AbsenceQuotaRepository exposes the quota table of a Store. The guard
// arithmetic mirrors the conditional updates of the SQL implementation.
type AbsenceQuotaRepository struct {
	store *Store
}

func NewAbsenceQuotaRepository(store *Store) *AbsenceQuotaRepository {
	return &AbsenceQuotaRepository{store: store}
}

func (r *AbsenceQuotaRepository) Create(ctx context.Context, quota absence.AbsenceQuota) (absence.AbsenceQuota, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if quota.ID == "" {
		quota.ID = uuid.New().String()
	}
	now := time.Now()
	quota.CreatedAt = now
	quota.UpdatedAt = now

	r.store.quotas[quota.ID] = quota
	return quota, nil
}

func (r *AbsenceQuotaRepository) GetByID(ctx context.Context, id string) (absence.AbsenceQuota, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	quota, ok := r.store.quotas[id]
	if !ok {
		return absence.AbsenceQuota{}, absence.ErrQuotaNotFound
	}
	return quota, nil
}

func (r *AbsenceQuotaRepository) GetByEmployeeTypeYear(ctx context.Context, employeeID, typeID string, year int) (absence.AbsenceQuota, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, quota := range r.store.quotas {
		if quota.EmployeeID == employeeID && quota.TypeID == typeID && quota.Year == year {
			return quota, nil
		}
	}
	return absence.AbsenceQuota{}, absence.ErrQuotaNotFound
}

func (r *AbsenceQuotaRepository) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]absence.AbsenceQuota, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var quotas []absence.AbsenceQuota
	for _, quota := range r.store.quotas {
		if quota.EmployeeID == employeeID && quota.Year == year {
			quotas = append(quotas, quota)
		}
	}
	sort.Slice(quotas, func(i, j int) bool { return quotas[i].TypeID < quotas[j].TypeID })
	return quotas, nil
}

func (r *AbsenceQuotaRepository) AddPlanned(ctx context.Context, quotaID string, days float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	quota, ok := r.store.quotas[quotaID]
	if !ok {
		return absence.ErrQuotaNotFound
	}

	used := decimal.NewFromFloat(quota.UsedDays)
	planned := decimal.NewFromFloat(quota.PlannedDays)
	entitlement := decimal.NewFromFloat(quota.Entitlement)
	delta := decimal.NewFromFloat(days)

	if used.Add(planned).Add(delta).GreaterThan(entitlement) {
		return absence.ErrQuotaExceeded
	}

	quota.PlannedDays = planned.Add(delta).InexactFloat64()
	quota.UpdatedAt = time.Now()
	r.store.quotas[quotaID] = quota
	return nil
}

func (r *AbsenceQuotaRepository) ReleasePlanned(ctx context.Context, quotaID string, days float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	quota, ok := r.store.quotas[quotaID]
	if !ok {
		return absence.ErrQuotaNotFound
	}

	planned := decimal.NewFromFloat(quota.PlannedDays).Sub(decimal.NewFromFloat(days))
	if planned.IsNegative() {
		planned = decimal.Zero
	}

	quota.PlannedDays = planned.InexactFloat64()
	quota.UpdatedAt = time.Now()
	r.store.quotas[quotaID] = quota
	return nil
}

func (r *AbsenceQuotaRepository) MovePlannedToUsed(ctx context.Context, quotaID string, days float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	quota, ok := r.store.quotas[quotaID]
	if !ok {
		return absence.ErrQuotaNotFound
	}

	delta := decimal.NewFromFloat(days)
	planned := decimal.NewFromFloat(quota.PlannedDays).Sub(delta)
	if planned.IsNegative() {
		planned = decimal.Zero
	}

	quota.PlannedDays = planned.InexactFloat64()
	quota.UsedDays = decimal.NewFromFloat(quota.UsedDays).Add(delta).InexactFloat64()
	quota.UpdatedAt = time.Now()
	r.store.quotas[quotaID] = quota
	return nil
}

func (r *AbsenceQuotaRepository) AddEntitlement(ctx context.Context, quotaID string, delta float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	quota, ok := r.store.quotas[quotaID]
	if !ok {
		return absence.ErrQuotaNotFound
	}

	entitlement := decimal.NewFromFloat(quota.Entitlement).Add(decimal.NewFromFloat(delta))
	committed := decimal.NewFromFloat(quota.UsedDays).Add(decimal.NewFromFloat(quota.PlannedDays))
	if entitlement.LessThan(committed) || entitlement.IsNegative() {
		return absence.ErrNegativeQuota
	}

	quota.Entitlement = entitlement.InexactFloat64()
	quota.UpdatedAt = time.Now()
	r.store.quotas[quotaID] = quota
	return nil
}
