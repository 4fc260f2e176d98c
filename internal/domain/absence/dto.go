package absence

import (
	"time"

	"github.com/hroffice/absence-backend-go/internal/pkg/validator"
)

type SubmitRequestRequest struct {
	EmployeeID   string  `json:"employee_id"`
	TypeID       string  `json:"absence_type_id"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	HalfDay      bool    `json:"half_day"`
	Reason       string  `json:"reason"`
	SubstituteID *string `json:"substitute_id,omitempty"`
}

func (r *SubmitRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "absence_type_id",
			Message: "absence_type_id is required",
		})
	}

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, ok := validator.IsValidDate(r.EndDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	} else if !start.IsZero() && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if r.SubstituteID != nil && validator.IsEmpty(*r.SubstituteID) {
		errs = append(errs, validator.ValidationError{
			Field:   "substitute_id",
			Message: "substitute_id must not be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ApproveRequestRequest struct {
	RequestID string  `json:"request_id"`
	Comment   *string `json:"comment,omitempty"`
}

func (r *ApproveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectRequestRequest struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason"`
}

func (r *RejectRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type WithdrawRequestRequest struct {
	RequestID string `json:"request_id"`
}

func (r *WithdrawRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// BulkAction names the single-item transition applied by a bulk call.
type BulkAction string

const (
	BulkApprove BulkAction = "approve"
	BulkReject  BulkAction = "reject"
)

type BulkActionRequest struct {
	Action     BulkAction `json:"action"`
	RequestIDs []string   `json:"request_ids"`
	Reason     string     `json:"reason,omitempty"`
}

func (r *BulkActionRequest) Validate() error {
	var errs validator.ValidationErrors

	switch r.Action {
	case BulkApprove, BulkReject:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "action",
			Message: "action must be one of: approve, reject",
		})
	}

	if len(r.RequestIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "request_ids",
			Message: "request_ids must not be empty",
		})
	}
	for _, id := range r.RequestIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "request_ids",
				Message: "request_ids must not contain empty ids",
			})
			break
		}
	}

	if r.Action == BulkReject && validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required when rejecting",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AdjustQuotaRequest struct {
	EmployeeID string  `json:"employee_id"`
	TypeID     string  `json:"absence_type_id"`
	Year       int     `json:"year"`
	Delta      float64 `json:"delta"`
	Reason     string  `json:"reason"`
}

func (r *AdjustQuotaRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.TypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "absence_type_id",
			Message: "absence_type_id is required",
		})
	}
	if r.Year <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a positive integer",
		})
	}
	if r.Delta == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "delta",
			Message: "delta must not be zero",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ============= Response DTOs =============

type RequestResponse struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	EmployeeName    string     `json:"employee_name,omitempty"`
	TypeID          string     `json:"absence_type_id"`
	TypeName        string     `json:"absence_type_name,omitempty"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	HalfDay         bool       `json:"half_day"`
	WorkingDays     float64    `json:"working_days"`
	Reason          string     `json:"reason"`
	SubstituteID    *string    `json:"substitute_id,omitempty"`
	Status          string     `json:"status"`
	DecidedBy       *string    `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`

	// Soft warning from the substitute availability check; never blocks
	// submission on its own.
	SubstituteWarning *string `json:"substitute_warning,omitempty"`
}

type ListRequestResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Requests   []RequestResponse `json:"requests"`
}

type QuotaResponse struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	TypeID      string  `json:"absence_type_id"`
	TypeName    string  `json:"absence_type_name,omitempty"`
	Year        int     `json:"year"`
	Entitlement float64 `json:"entitlement"`
	UsedDays    float64 `json:"used_days"`
	PlannedDays float64 `json:"planned_days"`
	Available   float64 `json:"available_days"`
}

type ApprovalStepResponse struct {
	Level      int       `json:"level"`
	ApproverID string    `json:"approver_id"`
	Decision   string    `json:"decision"`
	Comment    *string   `json:"comment,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

// BulkItemFailure reports one failed id of a bulk call.
type BulkItemFailure struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

// BulkActionResponse is the structured per-item result of a bulk call.
type BulkActionResponse struct {
	Succeeded []string          `json:"succeeded"`
	Failed    []BulkItemFailure `json:"failed"`
}
