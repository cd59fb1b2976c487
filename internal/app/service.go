/**
 * @description
 * This file contains the core business logic for the pension-service. The
 * `Service` struct orchestrates pensioner lifecycle management, payout
 * scheduling with its per-pensioner fan-out, and the read-side views over
 * payment history and notifications.
 *
 * Key features:
 * - CreatePayoutSchedule snapshots each approved pensioner's payout amount at
 *   scheduling time and writes the schedule plus all fan-out rows in one
 *   database transaction.
 * - All read paths derive payout status from the schedule's payout date at
 *   read time rather than trusting the persisted status cache.
 * - Publishes events to RabbitMQ for asynchronous processing (SMS/email
 *   dispatch, audit) by downstream consumers.
 *
 * @dependencies
 * - context, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publication.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/domain"
	"github.com/pensiontrack/pension-service/internal/store"
	"github.com/pensiontrack/pension-service/pkg/rabbitmq"
)

const (
	payoutDateLayout = "2006-01-02"
	clockTimeLayout  = "15:04"
)

var (
	// ErrValidation is the base class for malformed or missing request fields.
	// Wrapped errors carry the field-level message; handlers map it to a 400.
	ErrValidation = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRateLimited   = errors.New("too many login attempts")
)

// Service provides the core business logic for the pension backend.
type Service struct {
	repo   store.Repository
	events rabbitmq.Publisher
	tokens *TokenIssuer

	loginLimiter        LoginRateLimiter
	loginAttemptsPerMin int

	now func() time.Time
}

// NewService creates a new pension service instance.
func NewService(repo store.Repository, events rabbitmq.Publisher, tokens *TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		events: events,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetLoginRateLimiter enables distributed login throttling. A nil limiter or
// non-positive limit disables it.
func (s *Service) SetLoginRateLimiter(limiter LoginRateLimiter, attemptsPerMinute int) {
	s.loginLimiter = limiter
	s.loginAttemptsPerMin = attemptsPerMinute
}

// ---------------------------------------------------------------------------
// Payout scheduling
// ---------------------------------------------------------------------------

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// parsePayoutDate parses a YYYY-MM-DD date as UTC midnight of that day.
func parsePayoutDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation(payoutDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, validationErr("payout_date must use the YYYY-MM-DD format")
	}
	return date, nil
}

// parseClockTime validates an HH:MM 24-hour time-of-day string.
func parseClockTime(field, raw string) (time.Time, error) {
	parsed, err := time.Parse(clockTimeLayout, raw)
	if err != nil {
		return time.Time{}, validationErr("%s must use the HH:MM 24-hour format", field)
	}
	return parsed, nil
}

// renderNotificationMessage builds the human-readable text stored on each
// fan-out notification, e.g. "Your next pension payment is scheduled for
// January 10, 2025, 09:00 AM - 12:00 PM at Town Hall."
func renderNotificationMessage(payoutDate time.Time, timeRange, location string) string {
	return fmt.Sprintf(
		"Your next pension payment is scheduled for %s, %s at %s.",
		payoutDate.Format("January 2, 2006"), timeRange, location,
	)
}

// renderTimeRange formats a start/end pair as "09:00 AM - 12:00 PM".
func renderTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format("03:04 PM"), end.Format("03:04 PM"))
}

// CreatePayoutSchedule creates one mass-payout event and fans out a payment
// record plus a notification to every pensioner approved at this instant.
// Each payment snapshots the pensioner's current payout amount; later amount
// edits never rewrite history, and pensioners approved later get nothing for
// this schedule. The schedule row and all fan-out rows commit atomically.
//
// Pensioner status may change concurrently with the approved-set read; the
// last committed value wins. Scheduling is admin-gated and effectively
// serialized in practice, so no row locking is taken.
func (s *Service) CreatePayoutSchedule(ctx context.Context, principal domain.Principal, req domain.CreateScheduleRequest) (*domain.SchedulePayout, error) {
	if req.PayoutDate == "" {
		return nil, validationErr("payout_date is required")
	}
	if req.PayoutLocation == "" {
		return nil, validationErr("payout_location is required")
	}
	if req.StartTime == "" {
		return nil, validationErr("start_time is required")
	}
	if req.EndTime == "" {
		return nil, validationErr("end_time is required")
	}

	payoutDate, err := parsePayoutDate(req.PayoutDate)
	if err != nil {
		return nil, err
	}
	start, err := parseClockTime("start_time", req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClockTime("end_time", req.EndTime)
	if err != nil {
		return nil, err
	}

	schedule := &domain.SchedulePayout{
		ScheduleID:     uuid.New(),
		PayoutDate:     payoutDate,
		PayoutLocation: req.PayoutLocation,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         domain.PayoutStatusScheduled,
		CreatedAt:      s.now(),
	}

	approved, err := s.repo.FindApprovedPensioners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved pensioners: %w", err)
	}

	timeRange := renderTimeRange(start, end)
	message := renderNotificationMessage(payoutDate, timeRange, req.PayoutLocation)

	payments := make([]domain.PaymentHistory, 0, len(approved))
	notifications := make([]domain.Notification, 0, len(approved))
	for _, pensioner := range approved {
		payments = append(payments, domain.PaymentHistory{
			ID:           uuid.New(),
			PensionerID:  pensioner.ID,
			ScheduleID:   schedule.ScheduleID,
			PayoutAmount: pensioner.PayoutAmount,
			Status:       domain.PayoutStatusScheduled,
		})
		notifications = append(notifications, domain.Notification{
			ID:          uuid.New(),
			PensionerID: pensioner.ID,
			Message:     message,
			Location:    req.PayoutLocation,
			Time:        timeRange,
			Date:        payoutDate,
		})
	}

	if err := s.repo.CreateScheduleWithFanOut(ctx, schedule, payments, notifications); err != nil {
		return nil, fmt.Errorf("failed to create payout schedule: %w", err)
	}

	log.Printf("level=info component=service flow=schedule_payout msg=\"schedule created\" schedule_id=%s payout_date=%s admin_id=%s pensioner_count=%d",
		schedule.ScheduleID, req.PayoutDate, principal.ID, len(payments))

	if s.events != nil {
		event := rabbitmq.ScheduleCreatedEvent{
			ScheduleID:     schedule.ScheduleID,
			PayoutDate:     payoutDate,
			PayoutLocation: req.PayoutLocation,
			PensionerCount: len(payments),
			Timestamp:      s.now(),
		}
		if err := s.events.PublishScheduleCreatedEvent(ctx, event); err != nil {
			log.Printf("level=warn component=service flow=schedule_payout msg=\"schedule event publish failed\" schedule_id=%s err=%v", schedule.ScheduleID, err)
			// The schedule is committed; event delivery is best-effort.
		}
	}

	return schedule, nil
}

// ListScheduleSummaries returns every payout schedule for the admin dashboard,
// newest first, after a reconciliation sweep. Statuses are re-derived from the
// payout date so the response never reports a stale cache value.
func (s *Service) ListScheduleSummaries(ctx context.Context) ([]domain.ScheduleSummary, error) {
	now := s.now()
	s.ReconcileReleasedSchedules(ctx, now)

	schedules, err := s.repo.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	totalPensioners, err := s.repo.CountPensioners(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ScheduleSummary, 0, len(schedules))
	for _, schedule := range schedules {
		summaries = append(summaries, domain.ScheduleSummary{
			ScheduleID:      schedule.ScheduleID,
			PayoutDate:      schedule.PayoutDate,
			PayoutLocation:  schedule.PayoutLocation,
			StartTime:       schedule.StartTime,
			EndTime:         schedule.EndTime,
			Status:          DeriveStatus(schedule.PayoutDate, now),
			TotalPensioners: totalPensioners,
		})
	}
	return summaries, nil
}

// SystemAlert assembles the admin dashboard aggregate: all schedules with
// reconciled statuses plus registration counters.
func (s *Service) SystemAlert(ctx context.Context) (*domain.SystemAlert, error) {
	summaries, err := s.ListScheduleSummaries(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountPensionersByStatus(ctx, domain.PensionerStatusPending)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountPensioners(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SystemAlert{
		PayoutSchedules:        summaries,
		TotalPendingPensioners: pending,
		TotalPensioners:        total,
	}, nil
}

// ---------------------------------------------------------------------------
// Payment history and notifications
// ---------------------------------------------------------------------------

// ListPaymentsForPensioner returns one pensioner's payment history, newest
// payout first. Status is derived per-row from the parent schedule's payout
// date, and the amount comes from the creation-time snapshot, never the
// pensioner's current amount.
func (s *Service) ListPaymentsForPensioner(ctx context.Context, pensionerID uuid.UUID) ([]domain.PaymentRecord, error) {
	now := s.now()
	s.ReconcileReleasedSchedules(ctx, now)

	records, err := s.repo.ListPaymentsForPensioner(ctx, pensionerID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Status = DeriveStatus(records[i].PayoutDate, now)
	}
	return records, nil
}

// ListPayments returns payment records for the admin view, optionally filtered
// to one pensioner, with statuses derived the same way as the pensioner view.
func (s *Service) ListPayments(ctx context.Context, pensionerID *uuid.UUID) ([]domain.PaymentRecord, error) {
	now := s.now()
	s.ReconcileReleasedSchedules(ctx, now)

	records, err := s.repo.ListPayments(ctx, pensionerID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Status = DeriveStatus(records[i].PayoutDate, now)
	}
	return records, nil
}

// ListNotificationsForPensioner returns a pensioner's notification inbox,
// newest payout date first. Pure read; nothing is derived or mutated.
func (s *Service) ListNotificationsForPensioner(ctx context.Context, pensionerID uuid.UUID) ([]domain.Notification, error) {
	return s.repo.ListNotificationsForPensioner(ctx, pensionerID)
}

// ---------------------------------------------------------------------------
// Pensioner directory
// ---------------------------------------------------------------------------

func isValidPensionerStatus(status string) bool {
	switch status {
	case domain.PensionerStatusPending, domain.PensionerStatusApproved, domain.PensionerStatusRejected:
		return true
	}
	return false
}

// RegisterPensioner creates a new pensioner account with status 'pending' and
// no payout amount. The senior citizen ID must be unique.
func (s *Service) RegisterPensioner(ctx context.Context, req domain.RegisterPensionerRequest) (*domain.Pensioner, error) {
	if req.FullName == "" {
		return nil, validationErr("fullname is required")
	}
	if req.SeniorCitizenID == "" {
		return nil, validationErr("senior_citizen_id is required")
	}
	if req.Password == "" {
		return nil, validationErr("password is required")
	}

	var birthdate *time.Time
	if req.Birthdate != "" {
		parsed, err := time.ParseInLocation(payoutDateLayout, req.Birthdate, time.UTC)
		if err != nil {
			return nil, validationErr("birthdate must use the YYYY-MM-DD format")
		}
		birthdate = &parsed
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	pensioner := &domain.Pensioner{
		ID:              uuid.New(),
		FullName:        req.FullName,
		SeniorCitizenID: req.SeniorCitizenID,
		ContactNumber:   req.ContactNumber,
		Sex:             req.Sex,
		CivilStatus:     req.CivilStatus,
		Address:         req.Address,
		Birthdate:       birthdate,
		PasswordHash:    passwordHash,
		ValidID:         req.ValidID,
		Status:          domain.PensionerStatusPending,
		CreatedAt:       s.now(),
	}

	if err := s.repo.CreatePensioner(ctx, pensioner); err != nil {
		return nil, err
	}

	log.Printf("level=info component=service flow=registration msg=\"pensioner registered\" pensioner_id=%s", pensioner.ID)
	return pensioner, nil
}

// GetPensioner retrieves one pensioner by ID.
func (s *Service) GetPensioner(ctx context.Context, pensionerID uuid.UUID) (*domain.Pensioner, error) {
	return s.repo.FindPensionerByID(ctx, pensionerID)
}

// ListPensionersByStatus retrieves all pensioners in one lifecycle status.
func (s *Service) ListPensionersByStatus(ctx context.Context, status string) ([]domain.Pensioner, error) {
	if !isValidPensionerStatus(status) {
		return nil, validationErr("invalid status value")
	}
	return s.repo.FindPensionersByStatus(ctx, status)
}

// UpdatePensionerStatus transitions a pensioner between pending/approved/
// rejected. A payout amount provided alongside an approval is applied in the
// same update; it is ignored for other transitions.
func (s *Service) UpdatePensionerStatus(ctx context.Context, principal domain.Principal, pensionerID uuid.UUID, req domain.UpdateStatusRequest) error {
	if req.Status == "" {
		return validationErr("status is required")
	}
	if !isValidPensionerStatus(req.Status) {
		return validationErr("invalid status value")
	}

	var payoutAmount *float64
	if req.Status == domain.PensionerStatusApproved {
		payoutAmount = req.PayoutAmount
	}

	if err := s.repo.UpdatePensionerStatus(ctx, pensionerID, req.Status, payoutAmount); err != nil {
		return err
	}

	log.Printf("level=info component=service flow=pensioner_status msg=\"status updated\" pensioner_id=%s status=%s admin_id=%s",
		pensionerID, req.Status, principal.ID)

	if s.events != nil {
		event := rabbitmq.PensionerStatusEvent{
			PensionerID: pensionerID,
			Status:      req.Status,
			Timestamp:   s.now(),
		}
		if err := s.events.PublishPensionerStatusEvent(ctx, event); err != nil {
			log.Printf("level=warn component=service flow=pensioner_status msg=\"status event publish failed\" pensioner_id=%s err=%v", pensionerID, err)
		}
	}
	return nil
}

// SetPensionerPayoutAmount updates a pensioner's current monthly amount.
// Existing payment-history snapshots are untouched.
func (s *Service) SetPensionerPayoutAmount(ctx context.Context, pensionerID uuid.UUID, amount float64) error {
	if amount < 0 {
		return validationErr("payout_amount must not be negative")
	}
	return s.repo.UpdatePensionerPayoutAmount(ctx, pensionerID, amount)
}

// UpdatePensionerProfile applies a pensioner's self-service profile edits.
func (s *Service) UpdatePensionerProfile(ctx context.Context, pensionerID uuid.UUID, req domain.UpdateProfileRequest) error {
	params := store.UpdatePensionerProfileParams{
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
	}
	if req.Birthdate != nil && *req.Birthdate != "" {
		parsed, err := time.ParseInLocation(payoutDateLayout, *req.Birthdate, time.UTC)
		if err != nil {
			return validationErr("birthdate must use the YYYY-MM-DD format")
		}
		params.Birthdate = &parsed
	}
	return s.repo.UpdatePensionerProfile(ctx, pensionerID, params)
}

// DeletePensioner removes a pensioner together with their payment history and
// notifications in one transaction.
func (s *Service) DeletePensioner(ctx context.Context, principal domain.Principal, pensionerID uuid.UUID) error {
	if err := s.repo.DeletePensioner(ctx, pensionerID); err != nil {
		return err
	}
	log.Printf("level=info component=service flow=pensioner_delete msg=\"pensioner deleted\" pensioner_id=%s admin_id=%s", pensionerID, principal.ID)
	return nil
}
