/**
 * @description
 * This file contains the shared plumbing for the pension-service's HTTP
 * handlers: the handler struct, JSON response helpers, response view types,
 * and the mapping from service-layer errors to HTTP status codes. The
 * endpoint handlers themselves live in handlers_admin.go and
 * handlers_pensioner.go.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pensiontrack/pension-service/internal/app"
	"github.com/pensiontrack/pension-service/internal/domain"
	"github.com/pensiontrack/pension-service/internal/store"
)

// PensionHandlers holds the application service that handlers will use.
type PensionHandlers struct {
	service *app.Service
}

// NewPensionHandlers creates a new instance of PensionHandlers.
func NewPensionHandlers(service *app.Service) *PensionHandlers {
	return &PensionHandlers{service: service}
}

// scheduleSummaryResponse is the wire shape of one schedule row in admin
// listings. The payout date is rendered as YYYY-MM-DD rather than a full
// timestamp.
type scheduleSummaryResponse struct {
	ScheduleID      string `json:"schedule_id"`
	PayoutDate      string `json:"payout_date"`
	PayoutLocation  string `json:"payout_location"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	TotalPensioners int64  `json:"total_pensioners"`
}

func buildScheduleSummaryResponse(summary domain.ScheduleSummary) scheduleSummaryResponse {
	return scheduleSummaryResponse{
		ScheduleID:      summary.ScheduleID.String(),
		PayoutDate:      summary.PayoutDate.Format("2006-01-02"),
		PayoutLocation:  summary.PayoutLocation,
		StartTime:       summary.StartTime,
		EndTime:         summary.EndTime,
		Status:          summary.Status,
		TotalPensioners: summary.TotalPensioners,
	}
}

func buildScheduleSummaryResponses(summaries []domain.ScheduleSummary) []scheduleSummaryResponse {
	out := make([]scheduleSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, buildScheduleSummaryResponse(summary))
	}
	return out
}

// paymentRecordResponse is the wire shape of one payment-history row. The
// pensioner id is included only in admin listings.
type paymentRecordResponse struct {
	ID             string   `json:"id"`
	ScheduleID     string   `json:"schedule_id"`
	PensionerID    string   `json:"pensioner_id,omitempty"`
	Status         string   `json:"status"`
	PayoutDate     string   `json:"payout_date"`
	PayoutLocation string   `json:"payout_location"`
	PayoutAmount   *float64 `json:"payout_amount"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
}

func buildPaymentRecordResponses(records []domain.PaymentRecord, includePensionerID bool) []paymentRecordResponse {
	out := make([]paymentRecordResponse, 0, len(records))
	for _, record := range records {
		resp := paymentRecordResponse{
			ID:             record.ID.String(),
			ScheduleID:     record.ScheduleID.String(),
			Status:         record.Status,
			PayoutDate:     record.PayoutDate.Format("2006-01-02"),
			PayoutLocation: record.PayoutLocation,
			PayoutAmount:   record.PayoutAmount,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
		}
		if includePensionerID {
			resp.PensionerID = record.PensionerID.String()
		}
		out = append(out, resp)
	}
	return out
}

// notificationResponse is the wire shape of one inbox entry.
type notificationResponse struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Location   string    `json:"location"`
	Time       string    `json:"time"`
	PayoutDate string    `json:"payout_date"`
	CreatedAt  time.Time `json:"created_at"`
}

func buildNotificationResponses(notifications []domain.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:         n.ID.String(),
			Message:    n.Message,
			Location:   n.Location,
			Time:       n.Time,
			PayoutDate: n.Date.Format("2006-01-02"),
			CreatedAt:  n.CreatedAt,
		})
	}
	return out
}

// loginResponse is sent back after a successful admin or pensioner login.
type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"` // seconds
	User      interface{} `json:"user"`
}

// handleServiceError maps service and store errors to HTTP responses. Unknown
// errors are logged and collapsed to a 500 without leaking internals.
func (h *PensionHandlers) handleServiceError(w http.ResponseWriter, endpoint string, err error) {
	switch {
	case errors.Is(err, app.ErrValidation):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, app.ErrLoginRateLimited):
		h.writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please wait and try again.")
	case errors.Is(err, store.ErrPensionerNotFound):
		h.writeError(w, http.StatusNotFound, "Pensioner not found")
	case errors.Is(err, store.ErrAdminNotFound):
		h.writeError(w, http.StatusNotFound, "Admin not found")
	case errors.Is(err, store.ErrScheduleNotFound):
		h.writeError(w, http.StatusNotFound, "Schedule not found")
	case errors.Is(err, store.ErrDuplicateSeniorCitizenID):
		h.writeError(w, http.StatusConflict, "A pensioner with this senior citizen ID already exists")
	case errors.Is(err, store.ErrDuplicateAdminUsername):
		h.writeError(w, http.StatusConflict, "An admin with this username already exists")
	default:
		log.Printf("level=error component=api endpoint=%s msg=\"request failed\" err=%v", endpoint, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSON is a helper for writing JSON responses.
func (h *PensionHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *PensionHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
