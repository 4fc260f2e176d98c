package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/database"
)

type absenceTypeRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceTypeRepository(db *database.DB) absence.AbsenceTypeRepository {
	return &absenceTypeRepositoryImpl{db: db}
}

// Create implements absence.AbsenceTypeRepository.
func (r *absenceTypeRepositoryImpl) Create(ctx context.Context, absenceType absence.AbsenceType) (absence.AbsenceType, error) {
	q := GetQuerier(ctx, r.db)
	query := `
        INSERT INTO absence_types (
            id, name, code, description, category,
            is_active, has_quota, allow_half_day, default_annual_quota,
            created_at, updated_at
        ) VALUES (
            uuidv7(), $1, $2, $3, $4,
            $5, $6, $7, $8,
            NOW(), NOW()
        ) RETURNING id, created_at, updated_at
    `

	err := q.QueryRow(ctx, query,
		absenceType.Name, absenceType.Code, absenceType.Description, absenceType.Category,
		absenceType.IsActive, absenceType.HasQuota, absenceType.AllowHalfDay, absenceType.DefaultAnnualQuota,
	).Scan(&absenceType.ID, &absenceType.CreatedAt, &absenceType.UpdatedAt)

	if err != nil {
		return absence.AbsenceType{}, err
	}

	return absenceType, nil
}

// GetByID implements absence.AbsenceTypeRepository.
func (r *absenceTypeRepositoryImpl) GetByID(ctx context.Context, id string) (absence.AbsenceType, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, name, code, description, category,
			   is_active, has_quota, allow_half_day, default_annual_quota,
			   created_at, updated_at
		FROM absence_types
		WHERE id = $1
	`

	var absenceType absence.AbsenceType
	err := q.QueryRow(ctx, query, id).Scan(
		&absenceType.ID, &absenceType.Name, &absenceType.Code, &absenceType.Description, &absenceType.Category,
		&absenceType.IsActive, &absenceType.HasQuota, &absenceType.AllowHalfDay, &absenceType.DefaultAnnualQuota,
		&absenceType.CreatedAt, &absenceType.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return absence.AbsenceType{}, absence.ErrTypeNotFound
		}
		return absence.AbsenceType{}, err
	}
	return absenceType, nil
}

// List implements absence.AbsenceTypeRepository.
func (r *absenceTypeRepositoryImpl) List(ctx context.Context) ([]absence.AbsenceType, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, name, code, description, category,
			   is_active, has_quota, allow_half_day, default_annual_quota,
			   created_at, updated_at
		FROM absence_types
		ORDER BY name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]absence.AbsenceType, 0)
	for rows.Next() {
		var absenceType absence.AbsenceType
		if err := rows.Scan(
			&absenceType.ID, &absenceType.Name, &absenceType.Code, &absenceType.Description, &absenceType.Category,
			&absenceType.IsActive, &absenceType.HasQuota, &absenceType.AllowHalfDay, &absenceType.DefaultAnnualQuota,
			&absenceType.CreatedAt, &absenceType.UpdatedAt,
		); err != nil {
			return nil, err
		}
		types = append(types, absenceType)
	}

	return types, nil
}
