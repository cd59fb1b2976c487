package app

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/domain"
	"github.com/pensiontrack/pension-service/internal/store"
)

type directoryRepoStub struct {
	store.Repository

	createdPensioner *domain.Pensioner
	createErr        error

	statusCalls   int
	updatedStatus string
	updatedAmount *float64

	payoutAmountCalls int
	payoutAmount      float64
}

func (s *directoryRepoStub) CreatePensioner(ctx context.Context, pensioner *domain.Pensioner) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.createdPensioner = pensioner
	return nil
}

func (s *directoryRepoStub) UpdatePensionerStatus(ctx context.Context, pensionerID uuid.UUID, status string, payoutAmount *float64) error {
	s.statusCalls++
	s.updatedStatus = status
	s.updatedAmount = payoutAmount
	return nil
}

func (s *directoryRepoStub) UpdatePensionerPayoutAmount(ctx context.Context, pensionerID uuid.UUID, amount float64) error {
	s.payoutAmountCalls++
	s.payoutAmount = amount
	return nil
}

func TestRegisterPensioner_StartsPendingWithoutAmount(t *testing.T) {
	repo := &directoryRepoStub{}
	svc := NewService(repo, nil, nil)

	pensioner, err := svc.RegisterPensioner(context.Background(), domain.RegisterPensionerRequest{
		FullName:        "Maria Santos",
		SeniorCitizenID: "SC-2001",
		Password:        "secret123",
		Birthdate:       "1955-06-30",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if pensioner.Status != domain.PensionerStatusPending {
		t.Fatalf("expected new registrations to start pending, got %q", pensioner.Status)
	}
	if pensioner.PayoutAmount != nil {
		t.Fatal("expected no payout amount at registration")
	}
	if pensioner.PasswordHash == "secret123" {
		t.Fatal("expected the password to be stored hashed")
	}
	if pensioner.Birthdate == nil {
		t.Fatal("expected the birthdate to be parsed")
	}
	if repo.createdPensioner == nil {
		t.Fatal("expected the pensioner to be persisted")
	}
}

func TestRegisterPensioner_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.RegisterPensionerRequest
	}{
		{name: "missing name", req: domain.RegisterPensionerRequest{SeniorCitizenID: "SC-1", Password: "x"}},
		{name: "missing senior citizen id", req: domain.RegisterPensionerRequest{FullName: "A", Password: "x"}},
		{name: "missing password", req: domain.RegisterPensionerRequest{FullName: "A", SeniorCitizenID: "SC-1"}},
		{name: "malformed birthdate", req: domain.RegisterPensionerRequest{FullName: "A", SeniorCitizenID: "SC-1", Password: "x", Birthdate: "30/06/1955"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &directoryRepoStub{}
			svc := NewService(repo, nil, nil)

			_, err := svc.RegisterPensioner(context.Background(), tt.req)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if repo.createdPensioner != nil {
				t.Fatal("expected no write on validation failure")
			}
		})
	}
}

func TestRegisterPensioner_DuplicateSeniorCitizenID(t *testing.T) {
	repo := &directoryRepoStub{createErr: store.ErrDuplicateSeniorCitizenID}
	svc := NewService(repo, nil, nil)

	_, err := svc.RegisterPensioner(context.Background(), domain.RegisterPensionerRequest{
		FullName:        "Maria Santos",
		SeniorCitizenID: "SC-2001",
		Password:        "secret123",
	})
	if !errors.Is(err, store.ErrDuplicateSeniorCitizenID) {
		t.Fatalf("expected duplicate error to pass through, got %v", err)
	}
}

func TestUpdatePensionerStatus_AmountAppliedOnlyOnApproval(t *testing.T) {
	amount := 1500.50

	tests := []struct {
		name       string
		req        domain.UpdateStatusRequest
		wantAmount *float64
	}{
		{
			name:       "approval applies the amount",
			req:        domain.UpdateStatusRequest{Status: domain.PensionerStatusApproved, PayoutAmount: &amount},
			wantAmount: &amount,
		},
		{
			name:       "rejection ignores the amount",
			req:        domain.UpdateStatusRequest{Status: domain.PensionerStatusRejected, PayoutAmount: &amount},
			wantAmount: nil,
		},
		{
			name:       "approval without an amount leaves it unset",
			req:        domain.UpdateStatusRequest{Status: domain.PensionerStatusApproved},
			wantAmount: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &directoryRepoStub{}
			svc := NewService(repo, nil, nil)

			err := svc.UpdatePensionerStatus(context.Background(), domain.Principal{Role: domain.RoleAdmin}, uuid.New(), tt.req)
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if repo.updatedStatus != tt.req.Status {
				t.Fatalf("expected status %q, got %q", tt.req.Status, repo.updatedStatus)
			}
			if tt.wantAmount == nil && repo.updatedAmount != nil {
				t.Fatalf("expected no amount applied, got %v", *repo.updatedAmount)
			}
			if tt.wantAmount != nil && (repo.updatedAmount == nil || *repo.updatedAmount != *tt.wantAmount) {
				t.Fatal("expected the amount to be applied with the approval")
			}
		})
	}
}

func TestUpdatePensionerStatus_RejectsUnknownStatus(t *testing.T) {
	repo := &directoryRepoStub{}
	svc := NewService(repo, nil, nil)

	err := svc.UpdatePensionerStatus(context.Background(), domain.Principal{Role: domain.RoleAdmin}, uuid.New(), domain.UpdateStatusRequest{Status: "archived"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.statusCalls != 0 {
		t.Fatal("expected no write for an unknown status")
	}
}

func TestSetPensionerPayoutAmount(t *testing.T) {
	repo := &directoryRepoStub{}
	svc := NewService(repo, nil, nil)

	if err := svc.SetPensionerPayoutAmount(context.Background(), uuid.New(), 0); err != nil {
		t.Fatalf("expected zero to be a valid amount, got %v", err)
	}
	if repo.payoutAmountCalls != 1 || repo.payoutAmount != 0 {
		t.Fatal("expected the zero amount to be persisted")
	}

	err := svc.SetPensionerPayoutAmount(context.Background(), uuid.New(), -10)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for a negative amount, got %v", err)
	}
	if repo.payoutAmountCalls != 1 {
		t.Fatal("expected no write for a negative amount")
	}
}
