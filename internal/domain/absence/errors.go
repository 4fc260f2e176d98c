package absence

import "errors"

var (
	ErrRequestNotFound         = errors.New("absence request not found")
	ErrTypeNotFound            = errors.New("absence type not found")
	ErrTypeInactive            = errors.New("absence type is inactive")
	ErrQuotaNotFound           = errors.New("absence quota not found")
	ErrQuotaExceeded           = errors.New("insufficient absence quota")
	ErrNegativeQuota           = errors.New("quota adjustment would make balance negative")
	ErrOverlappingAbsence      = errors.New("overlapping absence request exists")
	ErrRequestAlreadyProcessed = errors.New("absence request already processed")
	ErrInvalidDateRange        = errors.New("end date is before start date")
	ErrInvalidDayAmount        = errors.New("day amount must be a positive multiple of half a day")
	ErrHalfDayNotAllowed       = errors.New("half-day absences are not allowed for this type")
	ErrEmptyRejectionReason    = errors.New("rejection reason is required")
	ErrNotRequester            = errors.New("only the requester may withdraw the request")
)
