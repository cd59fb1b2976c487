/**
 * @description
 * This file sets up the HTTP router for the pension-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pensiontrack/pension-service/internal/domain"
)

// RouterOptions carries the deployment-specific knobs the router needs.
type RouterOptions struct {
	JWTSecret string
	// AdminRegistrationEnabled exposes POST /api/admin/register. Kept off in
	// production; admin accounts are provisioned out of band.
	AdminRegistrationEnabled bool
}

// PensionRoutes creates and returns the router for the pension service.
func PensionRoutes(h *PensionHandlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/api/admin", func(r chi.Router) {
		// Public admin endpoints.
		r.Post("/login", h.AdminLoginHandler)
		if opts.AdminRegistrationEnabled {
			r.Post("/register", h.AdminRegisterHandler)
		}

		// Endpoints requiring an authenticated admin.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(opts.JWTSecret))
			r.Use(RequireRole(domain.RoleAdmin))

			r.Get("/pending-pensioners", h.PendingPensionersHandler)
			r.Get("/approved-pensioners", h.ApprovedPensionersHandler)
			r.Get("/pensioners/{id}", h.GetPensionerHandler)
			r.Put("/pensioners/{id}/status", h.UpdatePensionerStatusHandler)
			r.Put("/pensioners/{id}/payout", h.UpdatePensionerPayoutHandler)
			r.Delete("/pensioners/{id}", h.DeletePensionerHandler)

			r.Post("/schedule-payout", h.CreateSchedulePayoutHandler)
			r.Get("/schedule-payout", h.ListSchedulePayoutsHandler)
			r.Get("/system-alert", h.SystemAlertHandler)
			r.Get("/payments-history", h.AdminPaymentsHistoryHandler)
		})
	})

	r.Route("/api/pensioner", func(r chi.Router) {
		// Public pensioner endpoints.
		r.Post("/register", h.PensionerRegisterHandler)
		r.Post("/login", h.PensionerLoginHandler)

		// Endpoints requiring an authenticated pensioner.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(opts.JWTSecret))
			r.Use(RequireRole(domain.RolePensioner))

			r.Get("/profile", h.ProfileHandler)
			r.Put("/profile", h.UpdateProfileHandler)
			r.Get("/payments-history", h.PaymentsHistoryHandler)
			r.Get("/notifications", h.NotificationsHandler)
		})
	})

	return r
}
