/**
 * @description
 * This file contains authentication logic: bcrypt password hashing, JWT
 * issuance for admins and pensioners, and the login flows with optional
 * Redis-backed attempt throttling. Token verification lives in the API
 * middleware; the core only ever sees an already-verified principal.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: Token signing.
 * - golang.org/x/crypto/bcrypt: Password hashing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/domain"
	"github.com/pensiontrack/pension-service/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// LoginRateLimiter throttles authentication attempts per subject. A zero
// return for count means the limiter is disabled or not applicable.
type LoginRateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against its bcrypt hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// TokenIssuer signs HS256 JWTs carrying the principal's id and role.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with the given signing secret and
// token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the given principal.
func (t *TokenIssuer) Issue(principal domain.Principal, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":       principal.ID.String(),
		"user_type": principal.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// LoginResult bundles the signed token with its lifetime.
type LoginResult struct {
	Token     string
	ExpiresIn time.Duration
}

// consumeLoginAttempt applies the configured login rate limit for one subject.
// Limiter failures are logged and ignored so a Redis outage never locks out
// logins.
func (s *Service) consumeLoginAttempt(ctx context.Context, scope, subject string) error {
	if s.loginLimiter == nil || s.loginAttemptsPerMin <= 0 {
		return nil
	}
	count, retryAfter, err := s.loginLimiter.ConsumeRateLimit(ctx, scope, subject, s.loginAttemptsPerMin, time.Minute)
	if err != nil {
		log.Printf("level=warn component=service flow=login msg=\"rate limiter unavailable; allowing attempt\" scope=%s err=%v", scope, err)
		return nil
	}
	if count > s.loginAttemptsPerMin {
		return fmt.Errorf("%w: retry after %d seconds", ErrLoginRateLimited, retryAfter)
	}
	return nil
}

// AuthenticatePensioner verifies a pensioner's credentials and issues a token.
// Unknown IDs and wrong passwords are indistinguishable to the caller.
func (s *Service) AuthenticatePensioner(ctx context.Context, seniorCitizenID, password string) (*domain.Pensioner, *LoginResult, error) {
	if seniorCitizenID == "" || password == "" {
		return nil, nil, validationErr("senior_citizen_id and password are required")
	}
	if err := s.consumeLoginAttempt(ctx, "pensioner_login", seniorCitizenID); err != nil {
		return nil, nil, err
	}

	pensioner, err := s.repo.FindPensionerBySeniorCitizenID(ctx, seniorCitizenID)
	if err != nil {
		if errors.Is(err, store.ErrPensionerNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !VerifyPassword(pensioner.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.Principal{ID: pensioner.ID, Role: domain.RolePensioner}, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign token: %w", err)
	}

	log.Printf("level=info component=service flow=login msg=\"pensioner login\" pensioner_id=%s", pensioner.ID)
	return pensioner, &LoginResult{Token: token, ExpiresIn: s.tokens.TTL()}, nil
}

// AuthenticateAdmin verifies an administrator's credentials and issues a token.
func (s *Service) AuthenticateAdmin(ctx context.Context, username, password string) (*domain.Admin, *LoginResult, error) {
	if username == "" || password == "" {
		return nil, nil, validationErr("username and password are required")
	}
	if err := s.consumeLoginAttempt(ctx, "admin_login", username); err != nil {
		return nil, nil, err
	}

	admin, err := s.repo.FindAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !VerifyPassword(admin.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(domain.Principal{ID: admin.ID, Role: domain.RoleAdmin}, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign token: %w", err)
	}

	log.Printf("level=info component=service flow=login msg=\"admin login\" admin_id=%s", admin.ID)
	return admin, &LoginResult{Token: token, ExpiresIn: s.tokens.TTL()}, nil
}

// RegisterAdmin creates a new administrator account.
func (s *Service) RegisterAdmin(ctx context.Context, username, password string) (*domain.Admin, error) {
	if username == "" {
		return nil, validationErr("username is required")
	}
	if password == "" {
		return nil, validationErr("password is required")
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	log.Printf("level=info component=service flow=registration msg=\"admin registered\" admin_id=%s", admin.ID)
	return admin, nil
}
