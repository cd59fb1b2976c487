package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/domain"
	"github.com/pensiontrack/pension-service/internal/store"
)

type fanOutRepoStub struct {
	store.Repository

	approved    []domain.Pensioner
	fanOutErr   error
	findErr     error
	fanOutCalls int

	capturedSchedule      *domain.SchedulePayout
	capturedPayments      []domain.PaymentHistory
	capturedNotifications []domain.Notification
}

func (s *fanOutRepoStub) FindApprovedPensioners(ctx context.Context) ([]domain.Pensioner, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.approved, nil
}

func (s *fanOutRepoStub) CreateScheduleWithFanOut(ctx context.Context, schedule *domain.SchedulePayout, payments []domain.PaymentHistory, notifications []domain.Notification) error {
	s.fanOutCalls++
	if s.fanOutErr != nil {
		return s.fanOutErr
	}
	s.capturedSchedule = schedule
	s.capturedPayments = payments
	s.capturedNotifications = notifications
	return nil
}

func newFanOutService(repo store.Repository) *Service {
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, time.January, 2, 10, 0, 0, 0, time.UTC) }
	return svc
}

func approvedPensioner(amount *float64) domain.Pensioner {
	return domain.Pensioner{
		ID:           uuid.New(),
		PayoutAmount: amount,
		Status:       domain.PensionerStatusApproved,
	}
}

func ptrFloat(value float64) *float64 {
	return &value
}

func TestCreatePayoutSchedule_FansOutToEveryApprovedPensioner(t *testing.T) {
	amounts := []*float64{ptrFloat(1000.00), ptrFloat(1500.50), ptrFloat(0)}
	repo := &fanOutRepoStub{}
	for _, amount := range amounts {
		repo.approved = append(repo.approved, approvedPensioner(amount))
	}
	svc := newFanOutService(repo)

	schedule, err := svc.CreatePayoutSchedule(context.Background(), domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}, domain.CreateScheduleRequest{
		PayoutDate:     "2025-01-10",
		PayoutLocation: "Town Hall",
		StartTime:      "09:00",
		EndTime:        "12:00",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if schedule.Status != domain.PayoutStatusScheduled {
		t.Fatalf("expected new schedule status 'scheduled', got %q", schedule.Status)
	}

	if len(repo.capturedPayments) != len(repo.approved) {
		t.Fatalf("expected %d payment rows, got %d", len(repo.approved), len(repo.capturedPayments))
	}
	if len(repo.capturedNotifications) != len(repo.approved) {
		t.Fatalf("expected %d notifications, got %d", len(repo.approved), len(repo.capturedNotifications))
	}

	for i, payment := range repo.capturedPayments {
		if payment.PensionerID != repo.approved[i].ID {
			t.Fatalf("payment %d addressed to wrong pensioner", i)
		}
		if payment.ScheduleID != schedule.ScheduleID {
			t.Fatalf("payment %d linked to wrong schedule", i)
		}
		if payment.PayoutAmount == nil || *payment.PayoutAmount != *amounts[i] {
			t.Fatalf("payment %d did not snapshot amount %v", i, *amounts[i])
		}
	}

	for i, notification := range repo.capturedNotifications {
		if notification.PensionerID != repo.approved[i].ID {
			t.Fatalf("notification %d addressed to wrong pensioner", i)
		}
		if !strings.Contains(notification.Message, "January 10, 2025") {
			t.Fatalf("notification message missing rendered date: %q", notification.Message)
		}
		if !strings.Contains(notification.Message, "09:00 AM - 12:00 PM") {
			t.Fatalf("notification message missing rendered time range: %q", notification.Message)
		}
		if !strings.Contains(notification.Message, "Town Hall") {
			t.Fatalf("notification message missing location: %q", notification.Message)
		}
		if notification.Time != "09:00 AM - 12:00 PM" {
			t.Fatalf("unexpected rendered time range %q", notification.Time)
		}
	}
}

func TestCreatePayoutSchedule_SnapshotsNilAmountAsNil(t *testing.T) {
	p := approvedPensioner(nil)
	repo := &fanOutRepoStub{approved: []domain.Pensioner{p}}
	svc := newFanOutService(repo)

	_, err := svc.CreatePayoutSchedule(context.Background(), domain.Principal{Role: domain.RoleAdmin}, domain.CreateScheduleRequest{
		PayoutDate:     "2025-03-01",
		PayoutLocation: "Barangay Hall",
		StartTime:      "08:00",
		EndTime:        "11:00",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(repo.capturedPayments) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(repo.capturedPayments))
	}
	if repo.capturedPayments[0].PayoutAmount != nil {
		t.Fatalf("expected unassigned amount to snapshot as nil, got %v", *repo.capturedPayments[0].PayoutAmount)
	}
}

func TestCreatePayoutSchedule_NoApprovedPensioners(t *testing.T) {
	repo := &fanOutRepoStub{}
	svc := newFanOutService(repo)

	_, err := svc.CreatePayoutSchedule(context.Background(), domain.Principal{Role: domain.RoleAdmin}, domain.CreateScheduleRequest{
		PayoutDate:     "2025-02-14",
		PayoutLocation: "City Plaza",
		StartTime:      "10:00",
		EndTime:        "15:00",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if repo.fanOutCalls != 1 {
		t.Fatalf("expected the empty schedule to still be persisted, calls=%d", repo.fanOutCalls)
	}
	if len(repo.capturedPayments) != 0 || len(repo.capturedNotifications) != 0 {
		t.Fatalf("expected zero fan-out rows, got %d payments and %d notifications",
			len(repo.capturedPayments), len(repo.capturedNotifications))
	}
}

func TestCreatePayoutSchedule_ValidationFailuresWriteNothing(t *testing.T) {
	valid := domain.CreateScheduleRequest{
		PayoutDate:     "2025-01-10",
		PayoutLocation: "Town Hall",
		StartTime:      "09:00",
		EndTime:        "12:00",
	}

	tests := []struct {
		name   string
		mutate func(*domain.CreateScheduleRequest)
	}{
		{name: "missing payout date", mutate: func(r *domain.CreateScheduleRequest) { r.PayoutDate = "" }},
		{name: "missing location", mutate: func(r *domain.CreateScheduleRequest) { r.PayoutLocation = "" }},
		{name: "missing start time", mutate: func(r *domain.CreateScheduleRequest) { r.StartTime = "" }},
		{name: "missing end time", mutate: func(r *domain.CreateScheduleRequest) { r.EndTime = "" }},
		{name: "malformed date", mutate: func(r *domain.CreateScheduleRequest) { r.PayoutDate = "10/01/2025" }},
		{name: "malformed start time", mutate: func(r *domain.CreateScheduleRequest) { r.StartTime = "9am" }},
		{name: "malformed end time", mutate: func(r *domain.CreateScheduleRequest) { r.EndTime = "25:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fanOutRepoStub{approved: []domain.Pensioner{approvedPensioner(ptrFloat(500))}}
			svc := newFanOutService(repo)

			req := valid
			tt.mutate(&req)

			_, err := svc.CreatePayoutSchedule(context.Background(), domain.Principal{Role: domain.RoleAdmin}, req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if repo.fanOutCalls != 0 {
				t.Fatalf("expected no writes on validation failure, calls=%d", repo.fanOutCalls)
			}
		})
	}
}

func TestCreatePayoutSchedule_PersistenceFailurePropagates(t *testing.T) {
	repo := &fanOutRepoStub{
		approved:  []domain.Pensioner{approvedPensioner(ptrFloat(1200))},
		fanOutErr: errors.New("insert failed"),
	}
	svc := newFanOutService(repo)

	schedule, err := svc.CreatePayoutSchedule(context.Background(), domain.Principal{Role: domain.RoleAdmin}, domain.CreateScheduleRequest{
		PayoutDate:     "2025-01-10",
		PayoutLocation: "Town Hall",
		StartTime:      "09:00",
		EndTime:        "12:00",
	})
	if err == nil {
		t.Fatal("expected persistence error to propagate")
	}
	if schedule != nil {
		t.Fatal("expected no schedule back after a failed fan-out")
	}
}
