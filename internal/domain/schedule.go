/**
 * @description
 * This file defines the payout-scheduling domain models: the schedule itself,
 * the per-pensioner payment history rows fanned out from it, and the read-side
 * view records assembled for API responses.
 *
 * @notes
 * - SchedulePayout.Status and PaymentHistory.Status are persisted, but they are
 *   caches only. The authoritative status is always derived at read time from
 *   the schedule's payout date; business logic must never trust the stored column.
 * - PaymentHistory.PayoutAmount is a snapshot of the pensioner's amount at
 *   schedule-creation time and is immutable thereafter.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payout statuses. A payout is 'released' once its date has passed.
const (
	PayoutStatusScheduled = "scheduled"
	PayoutStatusReleased  = "released"
)

// SchedulePayout represents one announced mass-disbursement event.
// Maps to the `schedule_payout` table.
type SchedulePayout struct {
	ScheduleID     uuid.UUID `json:"schedule_id"`
	PayoutDate     time.Time `json:"payout_date"` // UTC midnight of the announced date
	PayoutLocation string    `json:"payout_location"`
	StartTime      string    `json:"start_time"` // HH:MM, 24-hour
	EndTime        string    `json:"end_time"`   // HH:MM, 24-hour
	Status         string    `json:"status"`     // cached; derive from PayoutDate on read
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentHistory records one pensioner's entitlement under one schedule.
// Maps to the `payment_history` table.
type PaymentHistory struct {
	ID           uuid.UUID `json:"id"`
	PensionerID  uuid.UUID `json:"pensioner_id"`
	ScheduleID   uuid.UUID `json:"schedule_id"`
	PayoutAmount *float64  `json:"payout_amount"` // snapshot at schedule creation; nil if unassigned then
	Status       string    `json:"status"`        // cached; derive from the parent schedule on read
	CreatedAt    time.Time `json:"created_at"`
}

// CreateScheduleRequest is the DTO for the admin schedule-payout endpoint.
type CreateScheduleRequest struct {
	PayoutDate     string `json:"payout_date"`     // YYYY-MM-DD
	PayoutLocation string `json:"payout_location"`
	StartTime      string `json:"start_time"` // HH:MM
	EndTime        string `json:"end_time"`   // HH:MM
}

// ScheduleSummary is the admin-facing view of one schedule with its derived
// status and the current pensioner headcount.
type ScheduleSummary struct {
	ScheduleID      uuid.UUID `json:"schedule_id"`
	PayoutDate      time.Time `json:"-"`
	PayoutLocation  string    `json:"payout_location"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	Status          string    `json:"status"`
	TotalPensioners int64     `json:"total_pensioners"`
}

// PaymentRecord is one row of a payment-history listing: the payment joined to
// its parent schedule. Status is derived from the schedule's payout date at
// read time and PayoutAmount comes from the creation-time snapshot.
type PaymentRecord struct {
	ID             uuid.UUID `json:"id"`
	ScheduleID     uuid.UUID `json:"schedule_id"`
	PensionerID    uuid.UUID `json:"pensioner_id"`
	Status         string    `json:"status"`
	PayoutDate     time.Time `json:"-"`
	PayoutLocation string    `json:"payout_location"`
	PayoutAmount   *float64  `json:"payout_amount"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
}
