/*
Package handler provides the HTTP handlers and routing setup of the local complaint portal.

This file defines the main Router, applying logging, CORS, security headers and IP-based
rate limiting before delegating requests to the auth and dashboard handlers. The dashboards
sit behind the access gate.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/unrolled/secure"
	"golang.org/x/time/rate"

	"complaintportal/internal/app/gate"
	"complaintportal/internal/app/identity"
	"complaintportal/internal/metrics"
	"complaintportal/internal/pkg/limiter"
	"complaintportal/internal/pkg/logx"
	"complaintportal/internal/pkg/resp"
)

// Router sets up the main HTTP routing table (chi.Router) for the portal.
// The login rate limiter's cleanup goroutine lives as long as ctx.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	loginLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(deps.Config.LoginRate), deps.Config.LoginBurst)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		IsDevelopment:         deps.Config.IsDevelopment(),
	})

	r.Use(c.Handler)
	r.Use(secureMiddleware.Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Complaint Portal",
			"session": deps.Session.State().String(),
		}
		resp.RespondSuccess(w, r, data)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get(gate.LandingRoute, HandleLanding(deps))

	r.Route("/api", func(api chi.Router) {
		api.Get("/session", HandleSession(deps))

		api.Route("/auth", func(auth chi.Router) {
			auth.With(loginLimiter.Middleware).Post("/login", HandleLogin(deps))
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/logout", HandleLogout(deps))
		})
	})

	r.Route(gate.StudentDashboardRoute, func(student chi.Router) {
		student.Use(gate.Middleware(deps.Session, identity.RoleStudent))
		student.Get("/", HandleStudentDashboard(deps))
		student.Post("/complaints", HandleCreateComplaint(deps))
	})

	r.Route(gate.AdminDashboardRoute, func(admin chi.Router) {
		admin.Use(gate.Middleware(deps.Session, identity.RoleAdmin))
		admin.Get("/", HandleAdminDashboard(deps))
		admin.Put("/complaints/{id}", HandleUpdateStatus(deps))
	})

	return r
}
