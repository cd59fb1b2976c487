/**
 * @description
 * This file defines the core domain models for the pension-service.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Using distinct types for API requests, database models, and external service
 *   payloads ensures clear separation of concerns and type safety.
 * - Monthly payout amounts are nullable: a nil PayoutAmount means the amount has
 *   not been assigned yet. A zero amount is a real, assigned value and is never
 *   conflated with "unset".
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pensioner lifecycle statuses.
const (
	PensionerStatusPending  = "pending"
	PensionerStatusApproved = "approved"
	PensionerStatusRejected = "rejected"
)

// Roles carried by authenticated principals.
const (
	RoleAdmin     = "admin"
	RolePensioner = "pensioner"
)

// Pensioner represents a registered beneficiary. This struct maps directly to
// the `pensioners` table in the database.
type Pensioner struct {
	ID              uuid.UUID  `json:"id"`
	FullName        string     `json:"fullname"`
	SeniorCitizenID string     `json:"senior_citizen_id"`
	ContactNumber   *string    `json:"contact_number,omitempty"`
	Sex             *string    `json:"sex,omitempty"`
	CivilStatus     *string    `json:"civil_status,omitempty"`
	Address         *string    `json:"address,omitempty"`
	Birthdate       *time.Time `json:"-"`
	PasswordHash    string     `json:"-"`
	ValidID         *string    `json:"valid_id,omitempty"`
	PayoutAmount    *float64   `json:"payout_amount"`
	Status          string     `json:"status"` // 'pending', 'approved', 'rejected'
	CreatedAt       time.Time  `json:"created_at"`
}

// Admin represents an administrator account. Maps to the `admins` table.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the verified identity attached to every authenticated request.
// It is passed explicitly into core operations; the service never reads
// identity from ambient state.
type Principal struct {
	ID   uuid.UUID
	Role string // 'admin' or 'pensioner'
}

// RegisterPensionerRequest is the DTO for incoming pensioner registration requests.
type RegisterPensionerRequest struct {
	FullName        string  `json:"fullname"`
	SeniorCitizenID string  `json:"senior_citizen_id"`
	Password        string  `json:"password"`
	ContactNumber   *string `json:"contact_number,omitempty"`
	Sex             *string `json:"sex,omitempty"`
	CivilStatus     *string `json:"civil_status,omitempty"`
	Address         *string `json:"address,omitempty"`
	Birthdate       string  `json:"birthdate,omitempty"` // YYYY-MM-DD
	ValidID         *string `json:"valid_id,omitempty"`
}

// UpdateProfileRequest is the DTO for pensioner self-service profile edits.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName      *string `json:"fullname,omitempty"`
	ContactNumber *string `json:"contact_number,omitempty"`
	Address       *string `json:"address,omitempty"`
	Birthdate     *string `json:"birthdate,omitempty"` // YYYY-MM-DD
}

// UpdateStatusRequest is the DTO for an admin status transition. The payout
// amount is only applied when the new status is 'approved'.
type UpdateStatusRequest struct {
	Status       string   `json:"status"`
	PayoutAmount *float64 `json:"payout_amount,omitempty"`
}

// SystemAlert aggregates the admin dashboard figures: every payout schedule
// (status reconciled first) plus registration counters.
type SystemAlert struct {
	PayoutSchedules        []ScheduleSummary `json:"payout_schedules"`
	TotalPendingPensioners int64             `json:"total_pending_pensioners"`
	TotalPensioners        int64             `json:"total_pensioners"`
}
