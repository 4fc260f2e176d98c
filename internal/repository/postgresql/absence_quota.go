package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/database"
)

type absenceQuotaRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceQuotaRepository(db *database.DB) absence.AbsenceQuotaRepository {
	return &absenceQuotaRepositoryImpl{db: db}
}

// Create implements absence.AbsenceQuotaRepository.
func (r *absenceQuotaRepositoryImpl) Create(ctx context.Context, quota absence.AbsenceQuota) (absence.AbsenceQuota, error) {
	q := GetQuerier(ctx, r.db)
	query := `
        INSERT INTO absence_quotas (
            id, employee_id, absence_type_id, year,
            entitlement, used_days, planned_days,
            created_at, updated_at
        ) VALUES (
            uuidv7(), $1, $2, $3,
            $4, $5, $6,
            NOW(), NOW()
        )
        ON CONFLICT (employee_id, absence_type_id, year) DO NOTHING
        RETURNING id, created_at, updated_at
    `

	err := q.QueryRow(ctx, query,
		quota.EmployeeID, quota.TypeID, quota.Year,
		quota.Entitlement, quota.UsedDays, quota.PlannedDays,
	).Scan(&quota.ID, &quota.CreatedAt, &quota.UpdatedAt)

	if err != nil {
		// Lost a create race; the existing row wins.
		if err == pgx.ErrNoRows {
			return r.GetByEmployeeTypeYear(ctx, quota.EmployeeID, quota.TypeID, quota.Year)
		}
		return absence.AbsenceQuota{}, err
	}

	return quota, nil
}

// GetByID implements absence.AbsenceQuotaRepository.
func (r *absenceQuotaRepositoryImpl) GetByID(ctx context.Context, id string) (absence.AbsenceQuota, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, employee_id, absence_type_id, year,
			   entitlement, used_days, planned_days,
			   created_at, updated_at
		FROM absence_quotas
		WHERE id = $1
	`

	var quota absence.AbsenceQuota
	err := q.QueryRow(ctx, query, id).Scan(
		&quota.ID, &quota.EmployeeID, &quota.TypeID, &quota.Year,
		&quota.Entitlement, &quota.UsedDays, &quota.PlannedDays,
		&quota.CreatedAt, &quota.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return absence.AbsenceQuota{}, absence.ErrQuotaNotFound
		}
		return absence.AbsenceQuota{}, err
	}
	return quota, nil
}

// GetByEmployeeTypeYear implements absence.AbsenceQuotaRepository.
func (r *absenceQuotaRepositoryImpl) GetByEmployeeTypeYear(ctx context.Context, employeeID, typeID string, year int) (absence.AbsenceQuota, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, employee_id, absence_type_id, year,
			   entitlement, used_days, planned_days,
			   created_at, updated_at
		FROM absence_quotas
		WHERE employee_id = $1 AND absence_type_id = $2 AND year = $3
	`

	var quota absence.AbsenceQuota
	err := q.QueryRow(ctx, query, employeeID, typeID, year).Scan(
		&quota.ID, &quota.EmployeeID, &quota.TypeID, &quota.Year,
		&quota.Entitlement, &quota.UsedDays, &quota.PlannedDays,
		&quota.CreatedAt, &quota.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return absence.AbsenceQuota{}, absence.ErrQuotaNotFound
		}
		return absence.AbsenceQuota{}, err
	}
	return quota, nil
}

// GetByEmployeeYear implements absence.AbsenceQuotaRepository.
func (r *absenceQuotaRepositoryImpl) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]absence.AbsenceQuota, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT aq.id, aq.employee_id, aq.absence_type_id, aq.year,
			   aq.entitlement, aq.used_days, aq.planned_days,
			   aq.created_at, aq.updated_at,
			   at.name AS absence_type_name
		FROM absence_quotas aq
		JOIN absence_types at ON aq.absence_type_id = at.id
		WHERE aq.employee_id = $1 AND aq.year = $2
		ORDER BY at.name
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotas := make([]absence.AbsenceQuota, 0)
	for rows.Next() {
		var quota absence.AbsenceQuota
		if err := rows.Scan(
			&quota.ID, &quota.EmployeeID, &quota.TypeID, &quota.Year,
			&quota.Entitlement, &quota.UsedDays, &quota.PlannedDays,
			&quota.CreatedAt, &quota.UpdatedAt,
			&quota.TypeName,
		); err != nil {
			return nil, err
		}
		quotas = append(quotas, quota)
	}

	return quotas, nil
}

// AddPlanned implements absence.AbsenceQuotaRepository. The balance guard
// sits in the WHERE clause so an overdraw never mutates the row.
func (r *absenceQuotaRepositoryImpl) AddPlanned(ctx context.Context, quotaID string, days float64) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE absence_quotas
		SET planned_days = planned_days + $1,
			updated_at = NOW()
		WHERE id = $2
		AND used_days + planned_days + $1 <= entitlement
	`

	result, err := q.Exec(ctx, query, days, quotaID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return absence.ErrQuotaExceeded
	}

	return nil
}

// ReleasePlanned implements absence.AbsenceQuotaRepository.
func (r *absenceQuotaRepositoryImpl) ReleasePlanned(ctx context.Context, quotaID string, days float64) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE absence_quotas
		SET planned_days = GREATEST(planned_days - $1, 0),
			updated_at = NOW()
		WHERE id = $2
	`

	_, err := q.Exec(ctx, query, days, quotaID)
	return err
}

// MovePlannedToUsed implements absence.AbsenceQuotaRepository.
func (r *absenceQuotaRepositoryImpl) MovePlannedToUsed(ctx context.Context, quotaID string, days float64) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE absence_quotas
		SET planned_days = GREATEST(planned_days - $1, 0),
			used_days = used_days + $1,
			updated_at = NOW()
		WHERE id = $2
	`

	_, err := q.Exec(ctx, query, days, quotaID)
	return err
}

// AddEntitlement implements absence.AbsenceQuotaRepository.
func (r *absenceQuotaRepositoryImpl) AddEntitlement(ctx context.Context, quotaID string, delta float64) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE absence_quotas
		SET entitlement = entitlement + $1,
			updated_at = NOW()
		WHERE id = $2
		AND entitlement + $1 >= used_days + planned_days
		AND entitlement + $1 >= 0
	`

	result, err := q.Exec(ctx, query, delta, quotaID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return absence.ErrNegativeQuota
	}

	return nil
}
