package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hroffice/absence-backend-go/internal/domain/employee"
	"github.com/hroffice/absence-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `
        INSERT INTO employees (
            id, full_name, email, annual_entitlement, is_active,
            created_at, updated_at
        ) VALUES (
            uuidv7(), $1, $2, $3, $4,
            NOW(), NOW()
        ) RETURNING id, created_at, updated_at
    `

	err := q.QueryRow(ctx, query,
		emp.FullName, emp.Email, emp.AnnualEntitlement, emp.IsActive,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)

	if err != nil {
		return employee.Employee{}, err
	}

	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, full_name, email, annual_entitlement, is_active,
			   created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.FullName, &emp.Email, &emp.AnnualEntitlement, &emp.IsActive,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return emp, nil
}

type approverResolverImpl struct {
	db *database.DB
}

// NewApproverResolver reads the approver routing table. Rows map an
// employee to everyone who should hear about their submissions.
func NewApproverResolver(db *database.DB) employee.ApproverResolver {
	return &approverResolverImpl{db: db}
}

// ApproversFor implements employee.ApproverResolver.
func (r *approverResolverImpl) ApproversFor(ctx context.Context, employeeID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT approver_id
		FROM absence_approvers
		WHERE employee_id = $1
		ORDER BY approver_id
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvers := make([]string, 0)
	for rows.Next() {
		var approverID string
		if err := rows.Scan(&approverID); err != nil {
			return nil, err
		}
		approvers = append(approvers, approverID)
	}

	return approvers, nil
}
