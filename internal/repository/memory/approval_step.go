package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
)

// ApprovalStepRepository exposes the approval trail of a Store.
type ApprovalStepRepository struct {
	store *Store
}

func NewApprovalStepRepository(store *Store) *ApprovalStepRepository {
	return &ApprovalStepRepository{store: store}
}

func (r *ApprovalStepRepository) Append(ctx context.Context, step absence.ApprovalStep) (absence.ApprovalStep, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if step.ID == "" {
		step.ID = uuid.New().String()
	}
	r.store.steps[step.RequestID] = append(r.store.steps[step.RequestID], step)
	return step, nil
}

func (r *ApprovalStepRepository) GetByRequestID(ctx context.Context, requestID string) ([]absence.ApprovalStep, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	steps := append([]absence.ApprovalStep(nil), r.store.steps[requestID]...)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Level < steps[j].Level })
	return steps, nil
}
