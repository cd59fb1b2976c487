/**
 * @description
 * This file contains the HTTP handlers for the admin-facing API endpoints:
 * account registration and login, the pensioner approval queue, payout
 * scheduling, and the dashboard aggregates. Handlers parse incoming requests,
 * call the appropriate methods on the application service, and write the HTTP
 * response.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: For URL parameter extraction.
 * - internal/app, internal/domain: For service logic and models.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/domain"
)

// AdminRegisterHandler handles requests to create a new administrator account.
func (h *PensionHandlers) AdminRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, err := h.service.RegisterAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(w, "admin_register", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, admin)
}

// AdminLoginHandler handles administrator credential checks and token issuance.
func (h *PensionHandlers) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, result, err := h.service.AuthenticateAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(w, "admin_login", err)
		return
	}
	h.writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		User:      admin,
	})
}

// PendingPensionersHandler lists all pensioners awaiting an approval decision.
func (h *PensionHandlers) PendingPensionersHandler(w http.ResponseWriter, r *http.Request) {
	pensioners, err := h.service.ListPensionersByStatus(r.Context(), domain.PensionerStatusPending)
	if err != nil {
		h.handleServiceError(w, "pending_pensioners", err)
		return
	}
	h.writeJSON(w, http.StatusOK, pensioners)
}

// ApprovedPensionersHandler lists all approved pensioners.
func (h *PensionHandlers) ApprovedPensionersHandler(w http.ResponseWriter, r *http.Request) {
	pensioners, err := h.service.ListPensionersByStatus(r.Context(), domain.PensionerStatusApproved)
	if err != nil {
		h.handleServiceError(w, "approved_pensioners", err)
		return
	}
	h.writeJSON(w, http.StatusOK, pensioners)
}

// GetPensionerHandler fetches one pensioner by ID.
func (h *PensionHandlers) GetPensionerHandler(w http.ResponseWriter, r *http.Request) {
	pensionerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid pensioner ID")
		return
	}

	pensioner, err := h.service.GetPensioner(r.Context(), pensionerID)
	if err != nil {
		h.handleServiceError(w, "get_pensioner", err)
		return
	}
	h.writeJSON(w, http.StatusOK, pensioner)
}

// UpdatePensionerStatusHandler transitions a pensioner between pending,
// approved and rejected, optionally assigning a payout amount alongside an
// approval.
func (h *PensionHandlers) UpdatePensionerStatusHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	pensionerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid pensioner ID")
		return
	}

	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdatePensionerStatus(r.Context(), principal, pensionerID, req); err != nil {
		h.handleServiceError(w, "update_pensioner_status", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Pensioner status updated",
	})
}

// UpdatePensionerPayoutHandler sets a pensioner's current monthly payout
// amount. History snapshots from earlier schedules are unaffected.
func (h *PensionHandlers) UpdatePensionerPayoutHandler(w http.ResponseWriter, r *http.Request) {
	pensionerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid pensioner ID")
		return
	}

	var req struct {
		PayoutAmount *float64 `json:"payout_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PayoutAmount == nil {
		h.writeError(w, http.StatusBadRequest, "payout_amount is required")
		return
	}

	if err := h.service.SetPensionerPayoutAmount(r.Context(), pensionerID, *req.PayoutAmount); err != nil {
		h.handleServiceError(w, "update_pensioner_payout", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Payout amount updated",
	})
}

// DeletePensionerHandler removes a pensioner together with their payment
// history and notifications.
func (h *PensionHandlers) DeletePensionerHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	pensionerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid pensioner ID")
		return
	}

	if err := h.service.DeletePensioner(r.Context(), principal, pensionerID); err != nil {
		h.handleServiceError(w, "delete_pensioner", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Pensioner deleted",
	})
}

// CreateSchedulePayoutHandler announces a new mass payout. Every approved
// pensioner receives a payment record and a notification in the same
// transaction as the schedule row.
func (h *PensionHandlers) CreateSchedulePayoutHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	schedule, err := h.service.CreatePayoutSchedule(r.Context(), principal, req)
	if err != nil {
		h.handleServiceError(w, "schedule_payout", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "Payout scheduled and notifications sent",
		"schedule_id": schedule.ScheduleID.String(),
	})
}

// ListSchedulePayoutsHandler lists every payout schedule with reconciled
// statuses, newest first.
func (h *PensionHandlers) ListSchedulePayoutsHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListScheduleSummaries(r.Context())
	if err != nil {
		h.handleServiceError(w, "list_schedule_payouts", err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildScheduleSummaryResponses(summaries))
}

// SystemAlertHandler returns the admin dashboard aggregate: all schedules plus
// registration counters.
func (h *PensionHandlers) SystemAlertHandler(w http.ResponseWriter, r *http.Request) {
	alert, err := h.service.SystemAlert(r.Context())
	if err != nil {
		h.handleServiceError(w, "system_alert", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"payout_schedules":         buildScheduleSummaryResponses(alert.PayoutSchedules),
		"total_pending_pensioners": alert.TotalPendingPensioners,
		"total_pensioners":         alert.TotalPensioners,
	})
}

// AdminPaymentsHistoryHandler lists payment records across all pensioners,
// optionally filtered by a pensioner_id query parameter.
func (h *PensionHandlers) AdminPaymentsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	var pensionerID *uuid.UUID
	if raw := r.URL.Query().Get("pensioner_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid pensioner_id filter")
			return
		}
		pensionerID = &parsed
	}

	records, err := h.service.ListPayments(r.Context(), pensionerID)
	if err != nil {
		h.handleServiceError(w, "admin_payments_history", err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildPaymentRecordResponses(records, true))
}
