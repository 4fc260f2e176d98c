package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/handler/http/middleware"
	"github.com/hroffice/absence-backend-go/internal/handler/http/response"
)

type AbsenceHandler struct {
	service absence.LifecycleService
}

func NewAbsenceHandler(service absence.LifecycleService) AbsenceHandler {
	return AbsenceHandler{service: service}
}

// Submit handles POST /absences
func (h *AbsenceHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req absence.SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	// The requester is always the authenticated employee.
	req.EmployeeID = middleware.EmployeeID(r.Context())

	result, err := h.service.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Absence request submitted", result)
}

// Approve handles POST /absences/{id}/approve
func (h *AbsenceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")

	var body struct {
		Comment *string `json:"comment,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.BadRequest(w, "Invalid request body", nil)
			return
		}
	}

	result, err := h.service.Approve(r.Context(), requestID, middleware.EmployeeID(r.Context()), body.Comment)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence request approved", result)
}

// Reject handles POST /absences/{id}/reject
func (h *AbsenceHandler) Reject(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")

	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.Reject(r.Context(), requestID, middleware.EmployeeID(r.Context()), body.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence request rejected", result)
}

// Withdraw handles POST /absences/{id}/withdraw
func (h *AbsenceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")

	result, err := h.service.Withdraw(r.Context(), requestID, middleware.EmployeeID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence request withdrawn", result)
}

// Bulk handles POST /absences/bulk
func (h *AbsenceHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req absence.BulkActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.service.ApplyBulk(r.Context(), req, middleware.EmployeeID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if len(result.Failed) > 0 {
		response.MultiStatus(w, "Bulk action partially applied", result)
		return
	}
	response.SuccessWithMessage(w, "Bulk action applied", result)
}

// GetByID handles GET /absences/{id}
func (h *AbsenceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List handles GET /absences
func (h *AbsenceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := absence.RequestFilter{
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	if v := r.URL.Query().Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := r.URL.Query().Get("absence_type_id"); v != "" {
		filter.TypeID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter.Status = &v
	}
	if v := r.URL.Query().Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.ListRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// GetApprovalTrail handles GET /absences/{id}/approvals
func (h *AbsenceHandler) GetApprovalTrail(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetApprovalTrail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetQuotas handles GET /quotas
func (h *AbsenceHandler) GetQuotas(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		employeeID = middleware.EmployeeID(r.Context())
	}
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))

	result, err := h.service.GetQuotas(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// AdjustQuota handles POST /quotas/adjust
func (h *AbsenceHandler) AdjustQuota(w http.ResponseWriter, r *http.Request) {
	var req absence.AdjustQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.AdjustQuota(r.Context(), req, middleware.EmployeeID(r.Context())); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Quota adjusted", nil)
}
