/**
 * @description
 * This file contains the HTTP handlers for the pensioner-facing API endpoints:
 * self-registration, login, profile management, the payment-history view and
 * the notification inbox. All authenticated endpoints are scoped to the
 * pensioner identified by the bearer token; a pensioner can never read another
 * pensioner's rows.
 *
 * @dependencies
 * - encoding/json, net/http: Standard Go libraries.
 * - internal/domain: For request and response models.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/pensiontrack/pension-service/internal/domain"
)

// PensionerRegisterHandler handles self-service pensioner registration.
// New accounts start in 'pending' status with no payout amount.
func (h *PensionHandlers) PensionerRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterPensionerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pensioner, err := h.service.RegisterPensioner(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, "pensioner_register", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Registration submitted and pending approval",
		"pensioner": pensioner,
	})
}

// PensionerLoginHandler handles pensioner credential checks and token issuance.
func (h *PensionHandlers) PensionerLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeniorCitizenID string `json:"senior_citizen_id"`
		Password        string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pensioner, result, err := h.service.AuthenticatePensioner(r.Context(), req.SeniorCitizenID, req.Password)
	if err != nil {
		h.handleServiceError(w, "pensioner_login", err)
		return
	}
	h.writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresIn: int64(result.ExpiresIn.Seconds()),
		User:      pensioner,
	})
}

// ProfileHandler returns the authenticated pensioner's own record.
func (h *PensionHandlers) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	pensioner, err := h.service.GetPensioner(r.Context(), principal.ID)
	if err != nil {
		h.handleServiceError(w, "pensioner_profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, pensioner)
}

// UpdateProfileHandler applies the authenticated pensioner's profile edits.
func (h *PensionHandlers) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdatePensionerProfile(r.Context(), principal.ID, req); err != nil {
		h.handleServiceError(w, "update_pensioner_profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Profile updated",
	})
}

// PaymentsHistoryHandler lists the authenticated pensioner's payment records,
// newest payout first. Statuses are derived from each schedule's payout date
// and amounts come from the scheduling-time snapshot.
func (h *PensionHandlers) PaymentsHistoryHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	records, err := h.service.ListPaymentsForPensioner(r.Context(), principal.ID)
	if err != nil {
		h.handleServiceError(w, "payments_history", err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildPaymentRecordResponses(records, false))
}

// NotificationsHandler lists the authenticated pensioner's notification inbox,
// newest payout date first.
func (h *PensionHandlers) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	notifications, err := h.service.ListNotificationsForPensioner(r.Context(), principal.ID)
	if err != nil {
		h.handleServiceError(w, "notifications", err)
		return
	}
	h.writeJSON(w, http.StatusOK, buildNotificationResponses(notifications))
}
