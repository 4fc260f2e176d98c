package response

import (
	"errors"
	"net/http"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/domain/employee"
	"github.com/hroffice/absence-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Absence domain errors
	case errors.Is(err, absence.ErrRequestNotFound):
		NotFound(w, "Absence request not found")
	case errors.Is(err, absence.ErrTypeNotFound):
		NotFound(w, "Absence type not found")
	case errors.Is(err, absence.ErrQuotaNotFound):
		NotFound(w, "Absence quota not found")
	case errors.Is(err, absence.ErrTypeInactive):
		BadRequest(w, "Absence type is inactive", nil)
	case errors.Is(err, absence.ErrQuotaExceeded):
		BadRequest(w, "Insufficient absence quota", nil)
	case errors.Is(err, absence.ErrNegativeQuota):
		BadRequest(w, "Adjustment would make the quota balance negative", nil)
	case errors.Is(err, absence.ErrOverlappingAbsence):
		Conflict(w, "An overlapping absence request already exists")
	case errors.Is(err, absence.ErrRequestAlreadyProcessed):
		Conflict(w, "Absence request already processed")
	case errors.Is(err, absence.ErrInvalidDateRange):
		BadRequest(w, "End date must not be before start date", nil)
	case errors.Is(err, absence.ErrInvalidDayAmount):
		BadRequest(w, "Day amount must be a positive multiple of half a day", nil)
	case errors.Is(err, absence.ErrHalfDayNotAllowed):
		BadRequest(w, "Half-day absences are not allowed for this type", nil)
	case errors.Is(err, absence.ErrEmptyRejectionReason):
		BadRequest(w, "Rejection reason is required", nil)
	case errors.Is(err, absence.ErrNotRequester):
		Forbidden(w, "Only the requester may withdraw the request")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, "Employee is inactive", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
