/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the pension-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation and handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Pensioner directory methods
	CreatePensioner(ctx context.Context, pensioner *domain.Pensioner) error
	FindPensionerByID(ctx context.Context, pensionerID uuid.UUID) (*domain.Pensioner, error)
	FindPensionerBySeniorCitizenID(ctx context.Context, seniorCitizenID string) (*domain.Pensioner, error)
	FindPensionersByStatus(ctx context.Context, status string) ([]domain.Pensioner, error)
	FindApprovedPensioners(ctx context.Context) ([]domain.Pensioner, error)
	CountPensioners(ctx context.Context) (int64, error)
	CountPensionersByStatus(ctx context.Context, status string) (int64, error)
	UpdatePensionerStatus(ctx context.Context, pensionerID uuid.UUID, status string, payoutAmount *float64) error
	UpdatePensionerPayoutAmount(ctx context.Context, pensionerID uuid.UUID, amount float64) error
	UpdatePensionerProfile(ctx context.Context, pensionerID uuid.UUID, params UpdatePensionerProfileParams) error
	DeletePensioner(ctx context.Context, pensionerID uuid.UUID) error

	// Admin account methods
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	FindAdminByID(ctx context.Context, adminID uuid.UUID) (*domain.Admin, error)
	FindAdminByUsername(ctx context.Context, username string) (*domain.Admin, error)

	// Payout schedule methods
	CreateScheduleWithFanOut(ctx context.Context, schedule *domain.SchedulePayout, payments []domain.PaymentHistory, notifications []domain.Notification) error
	ListSchedules(ctx context.Context) ([]domain.SchedulePayout, error)
	FindScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.SchedulePayout, error)
	ReleaseDuePayouts(ctx context.Context, now time.Time) (int64, error)

	// Payment history methods
	ListPaymentsForPensioner(ctx context.Context, pensionerID uuid.UUID) ([]domain.PaymentRecord, error)
	ListPayments(ctx context.Context, pensionerID *uuid.UUID) ([]domain.PaymentRecord, error)

	// Notification methods
	ListNotificationsForPensioner(ctx context.Context, pensionerID uuid.UUID) ([]domain.Notification, error)
}

// UpdatePensionerProfileParams carries the optional profile fields a pensioner
// may edit. Nil fields are left unchanged.
type UpdatePensionerProfileParams struct {
	FullName      *string
	ContactNumber *string
	Address       *string
	Birthdate     *time.Time
}
