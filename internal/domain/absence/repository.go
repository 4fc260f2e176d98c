package absence

import (
	"context"
	"time"
)

// StatusUpdate carries the fields written alongside a guarded status
// transition.
type StatusUpdate struct {
	Status          RequestStatus
	DecidedBy       *string
	DecidedAt       *time.Time
	RejectionReason *string
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	EmployeeID *string
	TypeID     *string
	Status     *string
	StartDate  *string
	EndDate    *string
	Page       int
	Limit      int
	SortBy     string
	SortOrder  string
}

// Transactor runs fn atomically. Repository calls made with the ctx
// passed to fn join the same transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AbsenceTypeRepository - interface for absence_types table
type AbsenceTypeRepository interface {
	Create(ctx context.Context, absenceType AbsenceType) (AbsenceType, error)
	GetByID(ctx context.Context, id string) (AbsenceType, error)
	List(ctx context.Context) ([]AbsenceType, error)
}

// AbsenceRequestRepository - interface for absence_requests table
type AbsenceRequestRepository interface {
	Create(ctx context.Context, request AbsenceRequest) (AbsenceRequest, error)
	GetByID(ctx context.Context, id string) (AbsenceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]AbsenceRequest, int64, error)

	// UpdateStatusIf applies update only while the stored status still equals
	// expected. When the guard fails on an existing request it returns
	// ErrRequestAlreadyProcessed; when the request does not exist,
	// ErrRequestNotFound.
	UpdateStatusIf(ctx context.Context, id string, expected RequestStatus, update StatusUpdate) error

	// FindOverlapping returns the employee's non-terminal or approved
	// requests intersecting [start, end] inclusive, excluding excludeID
	// when non-empty.
	FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]AbsenceRequest, error)

	// FindApprovedInRange returns the employee's approved requests
	// intersecting [start, end]. Used for the substitute soft check.
	FindApprovedInRange(ctx context.Context, employeeID string, start, end time.Time) ([]AbsenceRequest, error)
}

// AbsenceQuotaRepository - interface for absence_quotas table
type AbsenceQuotaRepository interface {
	Create(ctx context.Context, quota AbsenceQuota) (AbsenceQuota, error)
	GetByID(ctx context.Context, id string) (AbsenceQuota, error)
	GetByEmployeeTypeYear(ctx context.Context, employeeID, typeID string, year int) (AbsenceQuota, error)
	GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]AbsenceQuota, error)

	// AddPlanned increments planned_days only while
	// used + planned + days <= entitlement; a failed guard returns
	// ErrQuotaExceeded without mutation.
	AddPlanned(ctx context.Context, quotaID string, days float64) error

	// ReleasePlanned decrements planned_days, clamped at zero.
	ReleasePlanned(ctx context.Context, quotaID string, days float64) error

	// MovePlannedToUsed shifts days from planned_days to used_days.
	MovePlannedToUsed(ctx context.Context, quotaID string, days float64) error

	// AddEntitlement applies an admin adjustment delta; the guard rejects
	// deltas that would leave entitlement below used + planned with
	// ErrNegativeQuota.
	AddEntitlement(ctx context.Context, quotaID string, delta float64) error
}

// ApprovalStepRepository - interface for approval_steps table
type ApprovalStepRepository interface {
	Append(ctx context.Context, step ApprovalStep) (ApprovalStep, error)
	GetByRequestID(ctx context.Context, requestID string) ([]ApprovalStep, error)
}

// HolidayRepository - interface for holidays table
type HolidayRepository interface {
	GetByDateRange(ctx context.Context, start, end time.Time) ([]Holiday, error)
}
