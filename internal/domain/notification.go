package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a per-pensioner inbox record generated during schedule
// fan-out. Rows are purely additive: never mutated, never reconciled.
// Maps to the `notifications` table.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	PensionerID uuid.UUID `json:"pensioner_id"`
	Message     string    `json:"message"`
	Location    string    `json:"location"`
	Time        string    `json:"time"` // pre-rendered range, e.g. "09:00 AM - 12:00 PM"
	Date        time.Time `json:"payout_date"`
	CreatedAt   time.Time `json:"created_at"`
}
