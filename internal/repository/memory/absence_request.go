package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/validator"
)

// AbsenceRequestRepository exposes the request table of a Store.
type AbsenceRequestRepository struct {
	store *Store
}

func NewAbsenceRequestRepository(store *Store) *AbsenceRequestRepository {
	return &AbsenceRequestRepository{store: store}
}

func (r *AbsenceRequestRepository) Create(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.SubmittedAt.IsZero() {
		request.SubmittedAt = now
	}

	r.store.requests[request.ID] = request
	return request, nil
}

func (r *AbsenceRequestRepository) GetByID(ctx context.Context, id string) (absence.AbsenceRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	request, ok := r.store.requests[id]
	if !ok {
		return absence.AbsenceRequest{}, absence.ErrRequestNotFound
	}
	return request, nil
}

func (r *AbsenceRequestRepository) List(ctx context.Context, filter absence.RequestFilter) ([]absence.AbsenceRequest, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]absence.AbsenceRequest, 0)
	for _, request := range r.store.requests {
		if filter.EmployeeID != nil && request.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.TypeID != nil && request.TypeID != *filter.TypeID {
			continue
		}
		if filter.Status != nil && string(request.Status) != *filter.Status {
			continue
		}
		if filter.StartDate != nil {
			if from, ok := validator.IsValidDate(*filter.StartDate); ok && request.EndDate.Before(from) {
				continue
			}
		}
		if filter.EndDate != nil {
			if to, ok := validator.IsValidDate(*filter.EndDate); ok && request.StartDate.After(to) {
				continue
			}
		}
		matched = append(matched, request)
	}

	sort.Slice(matched, func(i, j int) bool {
		if filter.SortOrder == "asc" {
			return matched[i].SubmittedAt.Before(matched[j].SubmittedAt)
		}
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})

	total := int64(len(matched))

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit
	if offset >= len(matched) {
		return []absence.AbsenceRequest{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *AbsenceRequestRepository) UpdateStatusIf(ctx context.Context, id string, expected absence.RequestStatus, update absence.StatusUpdate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	request, ok := r.store.requests[id]
	if !ok {
		return absence.ErrRequestNotFound
	}
	if request.Status != expected {
		return absence.ErrRequestAlreadyProcessed
	}

	request.Status = update.Status
	request.DecidedBy = update.DecidedBy
	request.DecidedAt = update.DecidedAt
	request.RejectionReason = update.RejectionReason
	request.UpdatedAt = time.Now()

	r.store.requests[id] = request
	return nil
}

func (r *AbsenceRequestRepository) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]absence.AbsenceRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var overlapping []absence.AbsenceRequest
	for _, request := range r.store.requests {
		if request.EmployeeID != employeeID || request.ID == excludeID {
			continue
		}
		if request.Status != absence.StatusPending && request.Status != absence.StatusApproved {
			continue
		}
		if rangesIntersect(request.StartDate, request.EndDate, start, end) {
			overlapping = append(overlapping, request)
		}
	}
	return overlapping, nil
}

func (r *AbsenceRequestRepository) FindApprovedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]absence.AbsenceRequest, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var approved []absence.AbsenceRequest
	for _, request := range r.store.requests {
		if request.EmployeeID != employeeID || request.Status != absence.StatusApproved {
			continue
		}
		if rangesIntersect(request.StartDate, request.EndDate, start, end) {
			approved = append(approved, request)
		}
	}
	return approved, nil
}

// Inclusive on both ends.
func rangesIntersect(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
