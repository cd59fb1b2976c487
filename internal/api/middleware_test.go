package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pensiontrack/pension-service/internal/app"
	"github.com/pensiontrack/pension-service/internal/domain"
)

const testSecret = "test-signing-secret"

func issueTestToken(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()
	issuer := app.NewTokenIssuer(testSecret, time.Hour)
	id := uuid.New()
	token, err := issuer.Issue(domain.Principal{ID: id, Role: role}, time.Now().UTC())
	if err != nil {
		t.Fatalf("token issue failed: %v", err)
	}
	return id, token
}

func TestAuthMiddleware_InjectsPrincipal(t *testing.T) {
	id, token := issueTestToken(t, domain.RolePensioner)

	var got domain.Principal
	var found bool
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !found {
		t.Fatal("expected a principal in the request context")
	}
	if got.ID != id || got.Role != domain.RolePensioner {
		t.Fatalf("unexpected principal %+v", got)
	}
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	_, validToken := issueTestToken(t, domain.RolePensioner)

	wrongIssuer := app.NewTokenIssuer("some-other-secret", time.Hour)
	wrongSecretToken, err := wrongIssuer.Issue(domain.Principal{ID: uuid.New(), Role: domain.RolePensioner}, time.Now().UTC())
	if err != nil {
		t.Fatalf("token issue failed: %v", err)
	}

	expiredIssuer := app.NewTokenIssuer(testSecret, time.Hour)
	expiredToken, err := expiredIssuer.Issue(domain.Principal{ID: uuid.New(), Role: domain.RolePensioner}, time.Now().UTC().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("token issue failed: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing header", authHeader: ""},
		{name: "not a bearer token", authHeader: validToken},
		{name: "garbage token", authHeader: "Bearer not.a.jwt"},
		{name: "wrong signing secret", authHeader: "Bearer " + wrongSecretToken},
		{name: "expired token", authHeader: "Bearer " + expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run for a rejected token")
			}))

			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireRole_BlocksRoleMismatch(t *testing.T) {
	_, pensionerToken := issueTestToken(t, domain.RolePensioner)

	handler := AuthMiddleware(testSecret)(RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("admin-only handler must not run for a pensioner token")
	})))

	req := httptest.NewRequest(http.MethodGet, "/system-alert", nil)
	req.Header.Set("Authorization", "Bearer "+pensionerToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	_, adminToken := issueTestToken(t, domain.RoleAdmin)

	var ran bool
	handler := AuthMiddleware(testSecret)(RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	})))

	req := httptest.NewRequest(http.MethodGet, "/system-alert", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ran {
		t.Fatal("expected the handler to run")
	}
}
