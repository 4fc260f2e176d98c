package postgresql

import (
	"context"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/database"
)

type approvalStepRepositoryImpl struct {
	db *database.DB
}

func NewApprovalStepRepository(db *database.DB) absence.ApprovalStepRepository {
	return &approvalStepRepositoryImpl{db: db}
}

// Append implements absence.ApprovalStepRepository.
func (r *approvalStepRepositoryImpl) Append(ctx context.Context, step absence.ApprovalStep) (absence.ApprovalStep, error) {
	q := GetQuerier(ctx, r.db)
	query := `
        INSERT INTO approval_steps (
            id, request_id, level, approver_id, decision, comment, decided_at
        ) VALUES (
            uuidv7(), $1, $2, $3, $4, $5, $6
        ) RETURNING id
    `

	err := q.QueryRow(ctx, query,
		step.RequestID, step.Level, step.ApproverID, step.Decision, step.Comment, step.DecidedAt,
	).Scan(&step.ID)

	if err != nil {
		return absence.ApprovalStep{}, err
	}

	return step, nil
}

// GetByRequestID implements absence.ApprovalStepRepository.
func (r *approvalStepRepositoryImpl) GetByRequestID(ctx context.Context, requestID string) ([]absence.ApprovalStep, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, request_id, level, approver_id, decision, comment, decided_at
		FROM approval_steps
		WHERE request_id = $1
		ORDER BY level
	`

	rows, err := q.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make([]absence.ApprovalStep, 0)
	for rows.Next() {
		var step absence.ApprovalStep
		if err := rows.Scan(
			&step.ID, &step.RequestID, &step.Level, &step.ApproverID,
			&step.Decision, &step.Comment, &step.DecidedAt,
		); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	return steps, nil
}
