package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/database"
)

type absenceRequestRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRequestRepository(db *database.DB) absence.AbsenceRequestRepository {
	return &absenceRequestRepositoryImpl{db: db}
}

const requestColumns = `
	ar.id, ar.employee_id, ar.absence_type_id,
	ar.start_date, ar.end_date, ar.half_day, ar.working_days,
	ar.reason, ar.substitute_id,
	ar.status, ar.decided_by, ar.decided_at, ar.rejection_reason,
	ar.submitted_at, ar.created_at, ar.updated_at
`

func scanRequest(row pgx.Row, request *absence.AbsenceRequest, joined bool) error {
	dest := []interface{}{
		&request.ID, &request.EmployeeID, &request.TypeID,
		&request.StartDate, &request.EndDate, &request.HalfDay, &request.WorkingDays,
		&request.Reason, &request.SubstituteID,
		&request.Status, &request.DecidedBy, &request.DecidedAt, &request.RejectionReason,
		&request.SubmittedAt, &request.CreatedAt, &request.UpdatedAt,
	}
	if joined {
		dest = append(dest, &request.TypeName, &request.EmployeeName)
	}
	return row.Scan(dest...)
}

// Create implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) Create(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `
        INSERT INTO absence_requests (
            id, employee_id, absence_type_id,
            start_date, end_date, half_day, working_days,
            reason, substitute_id, status, submitted_at,
            created_at, updated_at
        ) VALUES (
            uuidv7(), $1, $2,
            $3, $4, $5, $6,
            $7, $8, $9, $10,
            NOW(), NOW()
        ) RETURNING id, created_at, updated_at
    `

	err := q.QueryRow(ctx, query,
		request.EmployeeID, request.TypeID,
		request.StartDate, request.EndDate, request.HalfDay, request.WorkingDays,
		request.Reason, request.SubstituteID, request.Status, request.SubmittedAt,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		return absence.AbsenceRequest{}, err
	}

	return request, nil
}

// GetByID implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) GetByID(ctx context.Context, id string) (absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + requestColumns + `,
			   at.name AS absence_type_name,
			   e.full_name AS employee_name
		FROM absence_requests ar
		JOIN absence_types at ON ar.absence_type_id = at.id
		JOIN employees e ON ar.employee_id = e.id
		WHERE ar.id = $1
	`

	var request absence.AbsenceRequest
	if err := scanRequest(q.QueryRow(ctx, query, id), &request, true); err != nil {
		if err == pgx.ErrNoRows {
			return absence.AbsenceRequest{}, absence.ErrRequestNotFound
		}
		return absence.AbsenceRequest{}, err
	}
	return request, nil
}

// List implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) List(ctx context.Context, filter absence.RequestFilter) ([]absence.AbsenceRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := make([]string, 0)
	args := make([]interface{}, 0)
	i := 1

	addCondition := func(clause string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(clause, i))
		args = append(args, value)
		i++
	}

	if filter.EmployeeID != nil {
		addCondition("ar.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.TypeID != nil {
		addCondition("ar.absence_type_id = $%d", *filter.TypeID)
	}
	if filter.Status != nil {
		addCondition("ar.status = $%d", *filter.Status)
	}
	if filter.StartDate != nil {
		addCondition("ar.end_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("ar.start_date <= $%d", *filter.EndDate)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM absence_requests ar " + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortColumn := "ar.submitted_at"
	switch filter.SortBy {
	case "start_date":
		sortColumn = "ar.start_date"
	case "status":
		sortColumn = "ar.status"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := fmt.Sprintf(`
		SELECT `+requestColumns+`,
			   at.name AS absence_type_name,
			   e.full_name AS employee_name
		FROM absence_requests ar
		JOIN absence_types at ON ar.absence_type_id = at.id
		JOIN employees e ON ar.employee_id = e.id
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, where, sortColumn, sortOrder, i, i+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]absence.AbsenceRequest, 0)
	for rows.Next() {
		var request absence.AbsenceRequest
		if err := scanRequest(rows, &request, true); err != nil {
			return nil, 0, err
		}
		requests = append(requests, request)
	}

	return requests, total, nil
}

// UpdateStatusIf implements absence.AbsenceRequestRepository. The status
// guard is part of the WHERE clause; zero affected rows on an existing
// request means another actor got there first.
func (r *absenceRequestRepositoryImpl) UpdateStatusIf(ctx context.Context, id string, expected absence.RequestStatus, update absence.StatusUpdate) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE absence_requests
		SET status = $1,
			decided_by = $2,
			decided_at = $3,
			rejection_reason = $4,
			updated_at = NOW()
		WHERE id = $5 AND status = $6
	`

	result, err := q.Exec(ctx, query,
		update.Status, update.DecidedBy, update.DecidedAt, update.RejectionReason,
		id, expected,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM absence_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return absence.ErrRequestNotFound
		}
		return absence.ErrRequestAlreadyProcessed
	}

	return nil
}

// FindOverlapping implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + requestColumns + `
		FROM absence_requests ar
		WHERE ar.employee_id = $1
		AND ar.status IN ('pending', 'approved')
		AND ar.start_date <= $3
		AND ar.end_date >= $2
		AND ($4 = '' OR ar.id <> $4::uuid)
	`

	rows, err := q.Query(ctx, query, employeeID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]absence.AbsenceRequest, 0)
	for rows.Next() {
		var request absence.AbsenceRequest
		if err := scanRequest(rows, &request, false); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, nil
}

// FindApprovedInRange implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) FindApprovedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + requestColumns + `
		FROM absence_requests ar
		WHERE ar.employee_id = $1
		AND ar.status = 'approved'
		AND ar.start_date <= $3
		AND ar.end_date >= $2
		ORDER BY ar.start_date
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]absence.AbsenceRequest, 0)
	for rows.Next() {
		var request absence.AbsenceRequest
		if err := scanRequest(rows, &request, false); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, nil
}
