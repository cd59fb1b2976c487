package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/domain"
	"github.com/pensiontrack/pension-service/internal/store"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		payoutDate time.Time
		want       string
	}{
		{
			name:       "past date is released",
			payoutDate: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
			want:       domain.PayoutStatusReleased,
		},
		{
			name:       "future date is scheduled",
			payoutDate: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			want:       domain.PayoutStatusScheduled,
		},
		{
			name:       "same instant is still scheduled",
			payoutDate: now,
			want:       domain.PayoutStatusScheduled,
		},
		{
			name:       "midnight of the current day is released by midday",
			payoutDate: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			want:       domain.PayoutStatusReleased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.payoutDate, now)
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

type reconcileRepoStub struct {
	store.Repository

	releaseCalls int
	releaseCount int64
	releaseErr   error

	schedules []domain.SchedulePayout
	payments  []domain.PaymentRecord
	total     int64
}

func (s *reconcileRepoStub) ReleaseDuePayouts(ctx context.Context, now time.Time) (int64, error) {
	s.releaseCalls++
	if s.releaseErr != nil {
		return 0, s.releaseErr
	}
	return s.releaseCount, nil
}

func (s *reconcileRepoStub) ListSchedules(ctx context.Context) ([]domain.SchedulePayout, error) {
	return s.schedules, nil
}

func (s *reconcileRepoStub) CountPensioners(ctx context.Context) (int64, error) {
	return s.total, nil
}

func (s *reconcileRepoStub) ListPaymentsForPensioner(ctx context.Context, pensionerID uuid.UUID) ([]domain.PaymentRecord, error) {
	return s.payments, nil
}

func newReconcileService(repo store.Repository, now time.Time) *Service {
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestReconcileReleasedSchedules_SwallowsSweepFailure(t *testing.T) {
	repo := &reconcileRepoStub{releaseErr: errors.New("connection reset")}
	svc := newReconcileService(repo, time.Now().UTC())

	svc.ReconcileReleasedSchedules(context.Background(), svc.now())
	if repo.releaseCalls != 1 {
		t.Fatalf("expected one sweep attempt, got %d", repo.releaseCalls)
	}
}

func TestReconcileReleasedSchedules_RepeatSweepIsIdempotent(t *testing.T) {
	repo := &reconcileRepoStub{releaseCount: 2}
	svc := newReconcileService(repo, time.Now().UTC())

	svc.ReconcileReleasedSchedules(context.Background(), svc.now())
	repo.releaseCount = 0
	svc.ReconcileReleasedSchedules(context.Background(), svc.now())

	if repo.releaseCalls != 2 {
		t.Fatalf("expected two sweep attempts, got %d", repo.releaseCalls)
	}
}

func TestListScheduleSummaries_DerivesStatusFromPayoutDate(t *testing.T) {
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	repo := &reconcileRepoStub{
		total: 42,
		schedules: []domain.SchedulePayout{
			{
				ScheduleID: uuid.New(),
				PayoutDate: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
				Status:     domain.PayoutStatusScheduled,
			},
			{
				ScheduleID: uuid.New(),
				PayoutDate: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
				// Stale cache value; the summary must not trust it.
				Status: domain.PayoutStatusScheduled,
			},
		},
	}
	svc := newReconcileService(repo, now)

	summaries, err := svc.ListScheduleSummaries(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.releaseCalls != 1 {
		t.Fatalf("expected a reconcile sweep before the read, calls=%d", repo.releaseCalls)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].Status != domain.PayoutStatusScheduled {
		t.Fatalf("expected future schedule to report 'scheduled', got %q", summaries[0].Status)
	}
	if summaries[1].Status != domain.PayoutStatusReleased {
		t.Fatalf("expected past schedule to report 'released', got %q", summaries[1].Status)
	}
	for i, summary := range summaries {
		if summary.TotalPensioners != 42 {
			t.Fatalf("summary %d missing pensioner headcount", i)
		}
	}
}

func TestListPaymentsForPensioner_StatusFlipsAfterPayoutDate(t *testing.T) {
	pensionerID := uuid.New()
	payoutDate := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	amount := 1500.50
	repo := &reconcileRepoStub{
		payments: []domain.PaymentRecord{
			{
				ID:           uuid.New(),
				PensionerID:  pensionerID,
				PayoutDate:   payoutDate,
				PayoutAmount: &amount,
			},
		},
	}

	before := newReconcileService(repo, payoutDate.Add(-24*time.Hour))
	records, err := before.ListPaymentsForPensioner(context.Background(), pensionerID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if records[0].Status != domain.PayoutStatusScheduled {
		t.Fatalf("expected 'scheduled' before the payout date, got %q", records[0].Status)
	}

	after := newReconcileService(repo, payoutDate.Add(24*time.Hour))
	records, err = after.ListPaymentsForPensioner(context.Background(), pensionerID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if records[0].Status != domain.PayoutStatusReleased {
		t.Fatalf("expected 'released' after the payout date, got %q", records[0].Status)
	}
	if records[0].PayoutAmount == nil || *records[0].PayoutAmount != 1500.50 {
		t.Fatal("expected the snapshot amount to survive the status flip")
	}
}

func TestListPaymentsForPensioner_ReadSucceedsWhenSweepFails(t *testing.T) {
	pensionerID := uuid.New()
	repo := &reconcileRepoStub{
		releaseErr: errors.New("deadlock detected"),
		payments: []domain.PaymentRecord{
			{
				ID:          uuid.New(),
				PensionerID: pensionerID,
				PayoutDate:  time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := newReconcileService(repo, time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC))

	records, err := svc.ListPaymentsForPensioner(context.Background(), pensionerID)
	if err != nil {
		t.Fatalf("expected the read to survive a failed sweep, got %v", err)
	}
	if records[0].Status != domain.PayoutStatusReleased {
		t.Fatalf("expected derived status despite failed sweep, got %q", records[0].Status)
	}
}
