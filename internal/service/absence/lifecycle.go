package absence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/domain/employee"
	"github.com/hroffice/absence-backend-go/internal/domain/notification"
	"github.com/hroffice/absence-backend-go/internal/pkg/validator"
)

// Service drives the request lifecycle. Status moves only through the
// guarded transitions below; quota and status for one request always
// change inside the same transaction.
type Service struct {
	tx absence.Transactor

	absence.AbsenceTypeRepository
	absence.AbsenceRequestRepository
	absence.AbsenceQuotaRepository
	absence.ApprovalStepRepository
	employee.EmployeeRepository

	calendar  *Calendar
	ledger    *Ledger
	conflicts *Detector
	approvers employee.ApproverResolver
	notifier  notification.Dispatcher
}

func NewService(
	tx absence.Transactor,
	typeRepository absence.AbsenceTypeRepository,
	requestRepository absence.AbsenceRequestRepository,
	quotaRepository absence.AbsenceQuotaRepository,
	stepRepository absence.ApprovalStepRepository,
	holidayRepository absence.HolidayRepository,
	employeeRepository employee.EmployeeRepository,
	approvers employee.ApproverResolver,
	notifier notification.Dispatcher,
) *Service {
	return &Service{
		tx:                       tx,
		AbsenceTypeRepository:    typeRepository,
		AbsenceRequestRepository: requestRepository,
		AbsenceQuotaRepository:   quotaRepository,
		ApprovalStepRepository:   stepRepository,
		EmployeeRepository:       employeeRepository,
		calendar:                 NewCalendar(holidayRepository),
		ledger:                   NewLedger(quotaRepository, employeeRepository),
		conflicts:                NewDetector(requestRepository),
		approvers:                approvers,
		notifier:                 notifier,
	}
}

func (s *Service) Submit(ctx context.Context, req absence.SubmitRequestRequest) (absence.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return absence.RequestResponse{}, err
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return absence.RequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return absence.RequestResponse{}, employee.ErrEmployeeInactive
	}

	absenceType, err := s.AbsenceTypeRepository.GetByID(ctx, req.TypeID)
	if err != nil {
		return absence.RequestResponse{}, fmt.Errorf("failed to get absence type: %w", err)
	}
	if absenceType.IsActive != nil && !*absenceType.IsActive {
		return absence.RequestResponse{}, absence.ErrTypeInactive
	}
	if req.HalfDay && (absenceType.AllowHalfDay == nil || !*absenceType.AllowHalfDay) {
		return absence.RequestResponse{}, absence.ErrHalfDayNotAllowed
	}

	if err := s.conflicts.Check(ctx, req.EmployeeID, startDate, endDate, ""); err != nil {
		return absence.RequestResponse{}, err
	}

	workingDays, err := s.calendar.WorkingDays(ctx, startDate, endDate, req.HalfDay)
	if err != nil {
		return absence.RequestResponse{}, err
	}

	quotaBearing := absenceType.HasQuota != nil && *absenceType.HasQuota && workingDays > 0

	var quota absence.AbsenceQuota
	if quotaBearing {
		quota, err = s.ledger.GetOrCreate(ctx, req.EmployeeID, absenceType, startDate.Year())
		if err != nil {
			return absence.RequestResponse{}, err
		}
	}

	request := absence.AbsenceRequest{
		EmployeeID:   req.EmployeeID,
		TypeID:       req.TypeID,
		StartDate:    startDate,
		EndDate:      endDate,
		HalfDay:      req.HalfDay,
		WorkingDays:  workingDays,
		Reason:       req.Reason,
		SubstituteID: req.SubstituteID,
		Status:       absence.StatusPending,
		SubmittedAt:  time.Now(),
	}

	var created absence.AbsenceRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.AbsenceRequestRepository.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if quotaBearing {
			if err := s.ledger.Reserve(ctx, quota.ID, workingDays); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return absence.RequestResponse{}, err
	}

	var substituteWarning *string
	if req.SubstituteID != nil {
		substituteWarning, err = s.conflicts.SubstituteWarning(ctx, *req.SubstituteID, startDate, endDate)
		if err != nil {
			return absence.RequestResponse{}, err
		}
	}

	s.notifySubmitted(ctx, created, emp)

	response := toRequestResponse(created)
	response.SubstituteWarning = substituteWarning
	return response, nil
}

func (s *Service) Approve(ctx context.Context, requestID, approverID string, comment *string) (absence.RequestResponse, error) {
	request, err := s.AbsenceRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return absence.RequestResponse{}, err
	}

	// Replay of an already-applied approval by the same actor returns the
	// current state; a different actor racing the transition gets the
	// conflict error.
	if done, resp := replayOutcome(request, absence.StatusApproved, approverID); done {
		return resp, nil
	}
	if request.Status != absence.StatusPending {
		return absence.RequestResponse{}, absence.ErrRequestAlreadyProcessed
	}

	decidedAt := time.Now()
	update := absence.StatusUpdate{
		Status:    absence.StatusApproved,
		DecidedBy: &approverID,
		DecidedAt: &decidedAt,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.AbsenceRequestRepository.UpdateStatusIf(ctx, requestID, absence.StatusPending, update); err != nil {
			return err
		}
		if err := s.commitQuota(ctx, request); err != nil {
			return err
		}
		return s.appendStep(ctx, requestID, approverID, absence.DecisionApproved, comment, decidedAt)
	})
	if err != nil {
		if errors.Is(err, absence.ErrRequestAlreadyProcessed) {
			return s.resolveReplay(ctx, requestID, absence.StatusApproved, approverID)
		}
		return absence.RequestResponse{}, err
	}

	request.Status = absence.StatusApproved
	request.DecidedBy = &approverID
	request.DecidedAt = &decidedAt

	s.notifyDecision(ctx, request, approverID, notification.TypeAbsenceApproved, nil)

	return toRequestResponse(request), nil
}

func (s *Service) Reject(ctx context.Context, requestID, approverID, reason string) (absence.RequestResponse, error) {
	if validator.IsEmpty(reason) {
		return absence.RequestResponse{}, absence.ErrEmptyRejectionReason
	}

	request, err := s.AbsenceRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return absence.RequestResponse{}, err
	}

	if done, resp := replayOutcome(request, absence.StatusRejected, approverID); done {
		return resp, nil
	}
	if request.Status != absence.StatusPending {
		return absence.RequestResponse{}, absence.ErrRequestAlreadyProcessed
	}

	decidedAt := time.Now()
	update := absence.StatusUpdate{
		Status:          absence.StatusRejected,
		DecidedBy:       &approverID,
		DecidedAt:       &decidedAt,
		RejectionReason: &reason,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.AbsenceRequestRepository.UpdateStatusIf(ctx, requestID, absence.StatusPending, update); err != nil {
			return err
		}
		if err := s.releaseQuota(ctx, request); err != nil {
			return err
		}
		return s.appendStep(ctx, requestID, approverID, absence.DecisionRejected, &reason, decidedAt)
	})
	if err != nil {
		if errors.Is(err, absence.ErrRequestAlreadyProcessed) {
			return s.resolveReplay(ctx, requestID, absence.StatusRejected, approverID)
		}
		return absence.RequestResponse{}, err
	}

	request.Status = absence.StatusRejected
	request.DecidedBy = &approverID
	request.DecidedAt = &decidedAt
	request.RejectionReason = &reason

	s.notifyDecision(ctx, request, approverID, notification.TypeAbsenceRejected, &reason)

	return toRequestResponse(request), nil
}

func (s *Service) Withdraw(ctx context.Context, requestID, requesterID string) (absence.RequestResponse, error) {
	request, err := s.AbsenceRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return absence.RequestResponse{}, err
	}

	if request.EmployeeID != requesterID {
		return absence.RequestResponse{}, absence.ErrNotRequester
	}

	if done, resp := replayOutcome(request, absence.StatusWithdrawn, requesterID); done {
		return resp, nil
	}
	if request.Status != absence.StatusPending {
		return absence.RequestResponse{}, absence.ErrRequestAlreadyProcessed
	}

	decidedAt := time.Now()
	update := absence.StatusUpdate{
		Status:    absence.StatusWithdrawn,
		DecidedBy: &requesterID,
		DecidedAt: &decidedAt,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.AbsenceRequestRepository.UpdateStatusIf(ctx, requestID, absence.StatusPending, update); err != nil {
			return err
		}
		return s.releaseQuota(ctx, request)
	})
	if err != nil {
		if errors.Is(err, absence.ErrRequestAlreadyProcessed) {
			return s.resolveReplay(ctx, requestID, absence.StatusWithdrawn, requesterID)
		}
		return absence.RequestResponse{}, err
	}

	request.Status = absence.StatusWithdrawn
	request.DecidedBy = &requesterID
	request.DecidedAt = &decidedAt

	return toRequestResponse(request), nil
}

func (s *Service) GetRequest(ctx context.Context, requestID string) (absence.RequestResponse, error) {
	request, err := s.AbsenceRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return absence.RequestResponse{}, err
	}
	return toRequestResponse(request), nil
}

func (s *Service) ListRequests(ctx context.Context, filter absence.RequestFilter) (absence.ListRequestResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}

	requests, total, err := s.AbsenceRequestRepository.List(ctx, filter)
	if err != nil {
		return absence.ListRequestResponse{}, fmt.Errorf("failed to list requests: %w", err)
	}

	responses := make([]absence.RequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, toRequestResponse(r))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit > 0 {
		totalPages++
	}

	return absence.ListRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Requests:   responses,
	}, nil
}

func (s *Service) GetApprovalTrail(ctx context.Context, requestID string) ([]absence.ApprovalStepResponse, error) {
	if _, err := s.AbsenceRequestRepository.GetByID(ctx, requestID); err != nil {
		return nil, err
	}

	steps, err := s.ApprovalStepRepository.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval trail: %w", err)
	}

	responses := make([]absence.ApprovalStepResponse, 0, len(steps))
	for _, step := range steps {
		responses = append(responses, absence.ApprovalStepResponse{
			Level:      step.Level,
			ApproverID: step.ApproverID,
			Decision:   string(step.Decision),
			Comment:    step.Comment,
			DecidedAt:  step.DecidedAt,
		})
	}
	return responses, nil
}

func (s *Service) GetQuotas(ctx context.Context, employeeID string, year int) ([]absence.QuotaResponse, error) {
	if year <= 0 {
		year = time.Now().Year()
	}

	quotas, err := s.AbsenceQuotaRepository.GetByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotas: %w", err)
	}

	responses := make([]absence.QuotaResponse, 0, len(quotas))
	for _, q := range quotas {
		resp := absence.QuotaResponse{
			ID:          q.ID,
			EmployeeID:  q.EmployeeID,
			TypeID:      q.TypeID,
			Year:        q.Year,
			Entitlement: q.Entitlement,
			UsedDays:    q.UsedDays,
			PlannedDays: q.PlannedDays,
			Available:   q.AvailableDays(),
		}
		if q.TypeName != nil {
			resp.TypeName = *q.TypeName
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Service) AdjustQuota(ctx context.Context, req absence.AdjustQuotaRequest, actorID string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	absenceType, err := s.AbsenceTypeRepository.GetByID(ctx, req.TypeID)
	if err != nil {
		return fmt.Errorf("failed to get absence type: %w", err)
	}

	quota, err := s.ledger.GetOrCreate(ctx, req.EmployeeID, absenceType, req.Year)
	if err != nil {
		return err
	}

	return s.ledger.Adjust(ctx, quota.ID, req.Delta)
}

// replayOutcome detects re-delivery of an already-applied transition.
// The transition counts as a replay only when the request sits in the
// caller's target status and was decided by the same actor; anything
// else is left for the guard or the conflict path.
func replayOutcome(request absence.AbsenceRequest, target absence.RequestStatus, actorID string) (bool, absence.RequestResponse) {
	if request.Status != target {
		return false, absence.RequestResponse{}
	}
	if request.DecidedBy == nil || *request.DecidedBy != actorID {
		return false, absence.RequestResponse{}
	}
	return true, toRequestResponse(request)
}

// resolveReplay re-reads a request after a failed transition guard. A
// request that meanwhile reached the caller's target status through the
// same actor is an already-applied transition, not a conflict.
func (s *Service) resolveReplay(ctx context.Context, requestID string, target absence.RequestStatus, actorID string) (absence.RequestResponse, error) {
	request, err := s.AbsenceRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return absence.RequestResponse{}, err
	}
	if done, resp := replayOutcome(request, target, actorID); done {
		return resp, nil
	}
	return absence.RequestResponse{}, absence.ErrRequestAlreadyProcessed
}

func (s *Service) commitQuota(ctx context.Context, request absence.AbsenceRequest) error {
	quotaID, ok, err := s.quotaIDFor(ctx, request)
	if err != nil || !ok {
		return err
	}
	return s.ledger.Commit(ctx, quotaID, request.WorkingDays)
}

func (s *Service) releaseQuota(ctx context.Context, request absence.AbsenceRequest) error {
	quotaID, ok, err := s.quotaIDFor(ctx, request)
	if err != nil || !ok {
		return err
	}
	return s.ledger.Release(ctx, quotaID, request.WorkingDays)
}

func (s *Service) quotaIDFor(ctx context.Context, request absence.AbsenceRequest) (string, bool, error) {
	absenceType, err := s.AbsenceTypeRepository.GetByID(ctx, request.TypeID)
	if err != nil {
		return "", false, fmt.Errorf("failed to get absence type: %w", err)
	}
	if absenceType.HasQuota == nil || !*absenceType.HasQuota || request.WorkingDays <= 0 {
		return "", false, nil
	}

	quota, err := s.AbsenceQuotaRepository.GetByEmployeeTypeYear(ctx, request.EmployeeID, request.TypeID, request.StartDate.Year())
	if err != nil {
		return "", false, fmt.Errorf("failed to get quota: %w", err)
	}
	return quota.ID, true, nil
}

func (s *Service) appendStep(ctx context.Context, requestID, approverID string, decision absence.StepDecision, comment *string, decidedAt time.Time) error {
	steps, err := s.ApprovalStepRepository.GetByRequestID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get approval steps: %w", err)
	}

	_, err = s.ApprovalStepRepository.Append(ctx, absence.ApprovalStep{
		RequestID:  requestID,
		Level:      len(steps) + 1,
		ApproverID: approverID,
		Decision:   decision,
		Comment:    comment,
		DecidedAt:  decidedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to append approval step: %w", err)
	}
	return nil
}

func (s *Service) notifySubmitted(ctx context.Context, request absence.AbsenceRequest, emp employee.Employee) {
	recipients, err := s.approvers.ApproversFor(ctx, request.EmployeeID)
	if err != nil || len(recipients) == 0 {
		// Missing routing config only costs the heads-up, never the request.
		return
	}

	period := formatPeriod(request)
	for _, recipientID := range recipients {
		s.notifier.Dispatch(ctx, notification.Event{
			RecipientID: recipientID,
			SenderID:    &request.EmployeeID,
			RequestID:   request.ID,
			Type:        notification.TypeAbsenceSubmitted,
			Title:       "New absence request",
			Message:     fmt.Sprintf("%s requested an absence %s", emp.FullName, period),
		})
	}
}

func (s *Service) notifyDecision(ctx context.Context, request absence.AbsenceRequest, actorID string, eventType notification.NotificationType, reason *string) {
	message := fmt.Sprintf("Your absence request %s was %s", formatPeriod(request), string(request.Status))
	if reason != nil {
		message = fmt.Sprintf("%s: %s", message, *reason)
	}

	s.notifier.Dispatch(ctx, notification.Event{
		RecipientID: request.EmployeeID,
		SenderID:    &actorID,
		RequestID:   request.ID,
		Type:        eventType,
		Title:       "Absence request " + string(request.Status),
		Message:     message,
	})
}

func formatPeriod(request absence.AbsenceRequest) string {
	if request.StartDate.Equal(request.EndDate) {
		return "on " + validator.DateKey(request.StartDate)
	}
	return fmt.Sprintf("from %s to %s", validator.DateKey(request.StartDate), validator.DateKey(request.EndDate))
}

func toRequestResponse(request absence.AbsenceRequest) absence.RequestResponse {
	resp := absence.RequestResponse{
		ID:              request.ID,
		EmployeeID:      request.EmployeeID,
		TypeID:          request.TypeID,
		StartDate:       request.StartDate,
		EndDate:         request.EndDate,
		HalfDay:         request.HalfDay,
		WorkingDays:     request.WorkingDays,
		Reason:          request.Reason,
		SubstituteID:    request.SubstituteID,
		Status:          string(request.Status),
		DecidedBy:       request.DecidedBy,
		DecidedAt:       request.DecidedAt,
		RejectionReason: request.RejectionReason,
		SubmittedAt:     request.SubmittedAt,
	}
	if request.TypeName != nil {
		resp.TypeName = *request.TypeName
	}
	if request.EmployeeName != nil {
		resp.EmployeeName = *request.EmployeeName
	}
	return resp
}
