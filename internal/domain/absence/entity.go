package absence

import (
	"time"
)

// AbsenceTypeCategory groups absence types into the broad buckets the
// engine cares about. Only the category tag is behavioral; everything
// else about a type is policy data.
type AbsenceTypeCategory string

const (
	CategoryVacation     AbsenceTypeCategory = "vacation"
	CategorySick         AbsenceTypeCategory = "sick"
	CategoryBusinessTrip AbsenceTypeCategory = "business_trip"
	CategoryOther        AbsenceTypeCategory = "other"
)

// AbsenceType entity. Whether a type is quota-bearing is supplied as data,
// not hard-coded per category.
type AbsenceType struct {
	ID          string
	Name        string
	Code        *string
	Description *string
	Category    AbsenceTypeCategory

	IsActive     *bool
	HasQuota     *bool
	AllowHalfDay *bool

	// Seed entitlement for lazily created quotas, in days per year.
	// An employee-level override takes precedence.
	DefaultAnnualQuota float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AbsenceQuota entity, one row per (employee, absence type, calendar year).
// Mutated only through the quota ledger; `used + planned <= entitlement`
// is enforced by conditional updates in the repository.
type AbsenceQuota struct {
	ID           string
	EmployeeID   string
	TypeID       string
	Year         int
	Entitlement  float64
	UsedDays     float64
	PlannedDays  float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined for responses
	TypeName *string
}

// AvailableDays returns entitlement minus used and planned.
func (q AbsenceQuota) AvailableDays() float64 {
	return q.Entitlement - q.UsedDays - q.PlannedDays
}

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusWithdrawn RequestStatus = "withdrawn"
)

// IsTerminal reports whether no further transition is defined from s.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the closed set of statuses.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// AbsenceRequest entity. Status moves only through the lifecycle service;
// a request is immutable once terminal, barring admin correction.
type AbsenceRequest struct {
	ID         string
	EmployeeID string
	TypeID     string

	StartDate time.Time
	EndDate   time.Time
	HalfDay   bool

	WorkingDays float64

	Reason       string
	SubstituteID *string

	Status          RequestStatus
	DecidedBy       *string
	DecidedAt       *time.Time
	RejectionReason *string

	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined for responses
	TypeName     *string
	EmployeeName *string
}

type StepDecision string

const (
	DecisionApproved StepDecision = "approved"
	DecisionRejected StepDecision = "rejected"
	DecisionPending  StepDecision = "pending"
)

// ApprovalStep is one entry in a request's ordered approval trail.
// Levels are contiguous starting at 1; a rejection at any level is
// terminal for the request.
type ApprovalStep struct {
	ID         string
	RequestID  string
	Level      int
	ApproverID string
	Decision   StepDecision
	Comment    *string
	DecidedAt  time.Time
}

// Holiday is a single non-working calendar date.
type Holiday struct {
	ID   string
	Date time.Time
	Name string
}
