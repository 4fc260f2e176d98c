package absence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/domain/employee"
	"github.com/hroffice/absence-backend-go/internal/domain/notification"
	"github.com/hroffice/absence-backend-go/internal/repository/memory"
)

type captureDispatcher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (c *captureDispatcher) Dispatch(ctx context.Context, event notification.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureDispatcher) byType(eventType notification.NotificationType) []notification.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []notification.Event
	for _, event := range c.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type testEnv struct {
	service    *Service
	dispatcher *captureDispatcher

	quotaRepo *memory.AbsenceQuotaRepository
	typeRepo  *memory.AbsenceTypeRepository
	empRepo   *memory.EmployeeRepository
	holidays  *memory.HolidayRepository
	resolver  *memory.ApproverResolver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	dispatcher := &captureDispatcher{}

	typeRepo := memory.NewAbsenceTypeRepository(store)
	requestRepo := memory.NewAbsenceRequestRepository(store)
	quotaRepo := memory.NewAbsenceQuotaRepository(store)
	stepRepo := memory.NewApprovalStepRepository(store)
	holidayRepo := memory.NewHolidayRepository(store)
	empRepo := memory.NewEmployeeRepository(store)
	resolver := memory.NewApproverResolver(store)

	service := NewService(store, typeRepo, requestRepo, quotaRepo, stepRepo, holidayRepo, empRepo, resolver, dispatcher)

	return &testEnv{
		service:    service,
		dispatcher: dispatcher,
		quotaRepo:  quotaRepo,
		typeRepo:   typeRepo,
		empRepo:    empRepo,
		holidays:   holidayRepo,
		resolver:   resolver,
	}
}

func boolPtr(b bool) *bool { return &b }

func (e *testEnv) createEmployee(t *testing.T, name string) employee.Employee {
	t.Helper()
	emp, err := e.empRepo.Create(context.Background(), employee.Employee{
		FullName: name,
		IsActive: true,
	})
	require.NoError(t, err)
	return emp
}

func (e *testEnv) createVacationType(t *testing.T, defaultQuota float64) absence.AbsenceType {
	t.Helper()
	absenceType, err := e.typeRepo.Create(context.Background(), absence.AbsenceType{
		Name:               "Annual Leave",
		Category:           absence.CategoryVacation,
		IsActive:           boolPtr(true),
		HasQuota:           boolPtr(true),
		AllowHalfDay:       boolPtr(true),
		DefaultAnnualQuota: defaultQuota,
	})
	require.NoError(t, err)
	return absenceType
}

func (e *testEnv) createSickType(t *testing.T) absence.AbsenceType {
	t.Helper()
	absenceType, err := e.typeRepo.Create(context.Background(), absence.AbsenceType{
		Name:         "Sick Leave",
		Category:     absence.CategorySick,
		IsActive:     boolPtr(true),
		HasQuota:     boolPtr(false),
		AllowHalfDay: boolPtr(true),
	})
	require.NoError(t, err)
	return absenceType
}

func (e *testEnv) seedQuota(t *testing.T, employeeID, typeID string, year int, entitlement, used, planned float64) absence.AbsenceQuota {
	t.Helper()
	quota, err := e.quotaRepo.Create(context.Background(), absence.AbsenceQuota{
		EmployeeID:  employeeID,
		TypeID:      typeID,
		Year:        year,
		Entitlement: entitlement,
		UsedDays:    used,
		PlannedDays: planned,
	})
	require.NoError(t, err)
	return quota
}

func (e *testEnv) getQuota(t *testing.T, employeeID, typeID string, year int) absence.AbsenceQuota {
	t.Helper()
	quota, err := e.quotaRepo.GetByEmployeeTypeYear(context.Background(), employeeID, typeID, year)
	require.NoError(t, err)
	return quota
}

func (e *testEnv) submit(t *testing.T, employeeID, typeID, start, end string) absence.RequestResponse {
	t.Helper()
	resp, err := e.service.Submit(context.Background(), absence.SubmitRequestRequest{
		EmployeeID: employeeID,
		TypeID:     typeID,
		StartDate:  start,
		EndDate:    end,
		Reason:     "family matters",
	})
	require.NoError(t, err)
	return resp
}

func TestSubmitReservesQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 20)

	// Monday through Friday, no holidays.
	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 5.0, resp.WorkingDays)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 20.0, quota.Entitlement)
	assert.Equal(t, 0.0, quota.UsedDays)
	assert.Equal(t, 5.0, quota.PlannedDays)

	_, err := env.service.GetRequest(ctx, resp.ID)
	require.NoError(t, err)
}

func TestSubmitAndApproveMovesPlannedToUsed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	approved, err := env.service.Approve(ctx, resp.ID, approver.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, approver.ID, *approved.DecidedBy)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 5.0, quota.UsedDays)
	assert.Equal(t, 0.0, quota.PlannedDays)

	trail, err := env.service.GetApprovalTrail(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, 1, trail[0].Level)
	assert.Equal(t, approver.ID, trail[0].ApproverID)
	assert.Equal(t, "approved", trail[0].Decision)

	events := env.dispatcher.byType(notification.TypeAbsenceApproved)
	require.Len(t, events, 1)
	assert.Equal(t, emp.ID, events[0].RecipientID)
}

func TestSubmitExhaustedQuotaFailsWithoutStateChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 5)
	env.seedQuota(t, emp.ID, vacation.ID, 2026, 5, 5, 0)

	_, err := env.service.Submit(ctx, absence.SubmitRequestRequest{
		EmployeeID: emp.ID,
		TypeID:     vacation.ID,
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-02",
		Reason:     "one more day",
	})
	assert.ErrorIs(t, err, absence.ErrQuotaExceeded)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 5.0, quota.UsedDays)
	assert.Equal(t, 0.0, quota.PlannedDays)

	// The reservation rollback also removes the request row.
	list, err := env.service.ListRequests(ctx, absence.RequestFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestRejectReleasesReservationAndNotifiesReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	rejected, err := env.service.Reject(ctx, resp.ID, approver.ID, "insufficient coverage")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "insufficient coverage", *rejected.RejectionReason)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 0.0, quota.UsedDays)
	assert.Equal(t, 0.0, quota.PlannedDays)

	events := env.dispatcher.byType(notification.TypeAbsenceRejected)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Message, "insufficient coverage")
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv(t)

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	_, err := env.service.Reject(context.Background(), resp.ID, approver.ID, "  ")
	assert.ErrorIs(t, err, absence.ErrEmptyRejectionReason)
}

func TestWithdrawByRequesterReleasesReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	withdrawn, err := env.service.Withdraw(ctx, resp.ID, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "withdrawn", withdrawn.Status)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 0.0, quota.PlannedDays)
}

func TestWithdrawByAnotherEmployeeFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	other := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	_, err := env.service.Withdraw(ctx, resp.ID, other.ID)
	assert.ErrorIs(t, err, absence.ErrNotRequester)

	current, err := env.service.GetRequest(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", current.Status)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 5.0, quota.PlannedDays)
}

func TestApproveIsIdempotentForSameApprover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	first, err := env.service.Approve(ctx, resp.ID, approver.ID, nil)
	require.NoError(t, err)

	second, err := env.service.Approve(ctx, resp.ID, approver.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.DecidedBy, second.DecidedBy)

	// No double commit.
	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 5.0, quota.UsedDays)
	assert.Equal(t, 0.0, quota.PlannedDays)

	trail, err := env.service.GetApprovalTrail(ctx, resp.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 1)
}

func TestConcurrentApprovalsOneWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approverA := env.createEmployee(t, "Jon Rieke")
	approverB := env.createEmployee(t, "Ines Alt")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, approverID := range []string{approverA.ID, approverB.ID} {
		approverID := approverID
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.Approve(ctx, resp.ID, approverID, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, absence.ErrRequestAlreadyProcessed)
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 5.0, quota.UsedDays)
	assert.Equal(t, 0.0, quota.PlannedDays)
}

func TestApproveTerminalRequestFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	_, err := env.service.Reject(ctx, resp.ID, approver.ID, "coverage")
	require.NoError(t, err)

	_, err = env.service.Approve(ctx, resp.ID, approver.ID, nil)
	assert.ErrorIs(t, err, absence.ErrRequestAlreadyProcessed)
}

func TestApproveUnknownRequest(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Approve(context.Background(), "5f2b1a9e-0000-0000-0000-000000000000", "someone", nil)
	assert.ErrorIs(t, err, absence.ErrRequestNotFound)
}

func TestSubmitOverlappingRequestFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 20)

	env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	_, err := env.service.Submit(ctx, absence.SubmitRequestRequest{
		EmployeeID: emp.ID,
		TypeID:     vacation.ID,
		StartDate:  "2026-03-05",
		EndDate:    "2026-03-10",
		Reason:     "extension",
	})
	assert.ErrorIs(t, err, absence.ErrOverlappingAbsence)
}

func TestSubmitAfterRejectionIsAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	first := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")
	_, err := env.service.Reject(ctx, first.ID, approver.ID, "coverage")
	require.NoError(t, err)

	// Rejected requests do not block the window.
	env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")
}

func TestSubmitSickLeaveBypassesQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	sick := env.createSickType(t)

	resp := env.submit(t, emp.ID, sick.ID, "2026-03-02", "2026-03-06")
	assert.Equal(t, "pending", resp.Status)

	// No quota row is created for unchecked types.
	_, err := env.quotaRepo.GetByEmployeeTypeYear(ctx, emp.ID, sick.ID, 2026)
	assert.ErrorIs(t, err, absence.ErrQuotaNotFound)
}

func TestSubmitSkipsHolidays(t *testing.T) {
	env := newTestEnv(t)

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 20)
	env.holidays.Add(absence.Holiday{Date: time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC), Name: "Founders Day"})

	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")
	assert.Equal(t, 4.0, resp.WorkingDays)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 4.0, quota.PlannedDays)
}

func TestSubmitHalfDayReservesHalf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 20)

	resp, err := env.service.Submit(ctx, absence.SubmitRequestRequest{
		EmployeeID: emp.ID,
		TypeID:     vacation.ID,
		StartDate:  "2026-03-02",
		EndDate:    "2026-03-02",
		HalfDay:    true,
		Reason:     "appointment",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, resp.WorkingDays)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 0.5, quota.PlannedDays)
}

func TestSubmitInvalidDatesFailValidation(t *testing.T) {
	env := newTestEnv(t)

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 20)

	_, err := env.service.Submit(context.Background(), absence.SubmitRequestRequest{
		EmployeeID: emp.ID,
		TypeID:     vacation.ID,
		StartDate:  "2026-03-06",
		EndDate:    "2026-03-02",
		Reason:     "inverted",
	})
	assert.Error(t, err)
}

func TestSubmitNamesSubstituteWithApprovedAbsence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	substitute := env.createEmployee(t, "Jon Rieke")
	approver := env.createEmployee(t, "Ines Alt")
	vacation := env.createVacationType(t, 20)

	// The substitute is approved off during the same window.
	subReq := env.submit(t, substitute.ID, vacation.ID, "2026-03-02", "2026-03-06")
	_, err := env.service.Approve(ctx, subReq.ID, approver.ID, nil)
	require.NoError(t, err)

	resp, err := env.service.Submit(ctx, absence.SubmitRequestRequest{
		EmployeeID:   emp.ID,
		TypeID:       vacation.ID,
		StartDate:    "2026-03-04",
		EndDate:      "2026-03-05",
		Reason:       "conference",
		SubstituteID: &substitute.ID,
	})
	require.NoError(t, err)

	// Soft check: the submission goes through with a warning attached.
	assert.Equal(t, "pending", resp.Status)
	require.NotNil(t, resp.SubstituteWarning)
	assert.Contains(t, *resp.SubstituteWarning, "2026-03-02")
}

func TestSubmitNotifiesConfiguredApprovers(t *testing.T) {
	env := newTestEnv(t)

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)
	env.resolver.SetApprovers(emp.ID, []string{approver.ID})

	env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	events := env.dispatcher.byType(notification.TypeAbsenceSubmitted)
	require.Len(t, events, 1)
	assert.Equal(t, approver.ID, events[0].RecipientID)
	assert.Contains(t, events[0].Message, "Mara Voss")
}

func TestEntitlementOverrideSeedsQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	override := 30.0
	emp, err := env.empRepo.Create(ctx, employee.Employee{
		FullName:          "Mara Voss",
		IsActive:          true,
		AnnualEntitlement: &override,
	})
	require.NoError(t, err)

	vacation := env.createVacationType(t, 20)

	env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 30.0, quota.Entitlement)
}

func TestQuotaInvariantHoldsAcrossLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 10)

	check := func() {
		quota, err := env.quotaRepo.GetByEmployeeTypeYear(ctx, emp.ID, vacation.ID, 2026)
		if err != nil {
			return
		}
		assert.LessOrEqual(t, quota.UsedDays+quota.PlannedDays, quota.Entitlement)
		assert.GreaterOrEqual(t, quota.UsedDays, 0.0)
		assert.GreaterOrEqual(t, quota.PlannedDays, 0.0)
	}

	first := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")
	check()

	_, err := env.service.Approve(ctx, first.ID, approver.ID, nil)
	require.NoError(t, err)
	check()

	second := env.submit(t, emp.ID, vacation.ID, "2026-03-09", "2026-03-13")
	check()

	_, err = env.service.Withdraw(ctx, second.ID, emp.ID)
	require.NoError(t, err)
	check()

	// 5 of 10 used; another full week fits exactly.
	third := env.submit(t, emp.ID, vacation.ID, "2026-03-16", "2026-03-20")
	check()

	_, err = env.service.Reject(ctx, third.ID, approver.ID, "coverage")
	require.NoError(t, err)
	check()
}

func TestAdjustQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	admin := env.createEmployee(t, "Root Admin")
	vacation := env.createVacationType(t, 20)
	env.seedQuota(t, emp.ID, vacation.ID, 2026, 20, 12, 3)

	err := env.service.AdjustQuota(ctx, absence.AdjustQuotaRequest{
		EmployeeID: emp.ID,
		TypeID:     vacation.ID,
		Year:       2026,
		Delta:      5,
		Reason:     "tenure increase",
	}, admin.ID)
	require.NoError(t, err)

	quota := env.getQuota(t, emp.ID, vacation.ID, 2026)
	assert.Equal(t, 25.0, quota.Entitlement)

	// Cutting below used + planned is rejected.
	err = env.service.AdjustQuota(ctx, absence.AdjustQuotaRequest{
		EmployeeID: emp.ID,
		TypeID:     vacation.ID,
		Year:       2026,
		Delta:      -15,
		Reason:     "correction",
	}, admin.ID)
	assert.ErrorIs(t, err, absence.ErrNegativeQuota)
}

func TestGetQuotasReturnsBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	vacation := env.createVacationType(t, 20)
	env.seedQuota(t, emp.ID, vacation.ID, 2026, 20, 7, 2)

	quotas, err := env.service.GetQuotas(ctx, emp.ID, 2026)
	require.NoError(t, err)
	require.Len(t, quotas, 1)
	assert.Equal(t, 20.0, quotas[0].Entitlement)
	assert.Equal(t, 7.0, quotas[0].UsedDays)
	assert.Equal(t, 2.0, quotas[0].PlannedDays)
	assert.Equal(t, 11.0, quotas[0].Available)
}

func TestNotificationFailureNeverBlocksTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	emp := env.createEmployee(t, "Mara Voss")
	approver := env.createEmployee(t, "Jon Rieke")
	vacation := env.createVacationType(t, 20)

	// Unrouted submissions simply skip the approver heads-up.
	resp := env.submit(t, emp.ID, vacation.ID, "2026-03-02", "2026-03-06")

	approved, err := env.service.Approve(ctx, resp.ID, approver.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
}
