package absence

import (
	"context"
	"fmt"
	"time"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/validator"
)

// Detector answers date-range conflict questions for submissions.
type Detector struct {
	absence.AbsenceRequestRepository
}

func NewDetector(requestRepository absence.AbsenceRequestRepository) *Detector {
	return &Detector{AbsenceRequestRepository: requestRepository}
}

// Check fails with ErrOverlappingAbsence when the employee already has a
// pending or approved request intersecting [start, end]. excludeID skips
// one request id, used when re-validating an existing request.
func (d *Detector) Check(ctx context.Context, employeeID string, start, end time.Time, excludeID string) error {
	overlapping, err := d.AbsenceRequestRepository.FindOverlapping(ctx, employeeID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check overlapping requests: %w", err)
	}
	if len(overlapping) > 0 {
		return absence.ErrOverlappingAbsence
	}
	return nil
}

// SubstituteWarning reports whether the named substitute is themselves
// absent during the window. A hit is advisory only; submission proceeds.
func (d *Detector) SubstituteWarning(ctx context.Context, substituteID string, start, end time.Time) (*string, error) {
	approved, err := d.AbsenceRequestRepository.FindApprovedInRange(ctx, substituteID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check substitute availability: %w", err)
	}
	if len(approved) == 0 {
		return nil, nil
	}

	first := approved[0]
	warning := fmt.Sprintf(
		"substitute has an approved absence from %s to %s",
		validator.DateKey(first.StartDate),
		validator.DateKey(first.EndDate),
	)
	return &warning, nil
}
