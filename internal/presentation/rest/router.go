package rest

import (
	"log/slog"
	"net/http"

	"github.com/bibbank/loanintake/pkg/auth"
)

// RouterConfig holds everything NewRouter mounts.
type RouterConfig struct {
	Handler *Handler
	Health  *HealthHandler
	JWT     *auth.JWTService
	Limiter *ClientRateLimiter
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter registers the intake routes. Public endpoints are rate limited
// per client. /api/admin/loans requires an admin bearer token; /api/export
// accepts one in place of the password.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	cfg.Health.RegisterRoutes(mux)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	h := cfg.Handler
	public := func(next http.Handler) http.Handler {
		if cfg.Limiter == nil {
			return next
		}
		return cfg.Limiter.Middleware()(next)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return RequireAdmin(cfg.JWT)(fn)
	}

	mux.Handle("GET /api/emi", public(http.HandlerFunc(h.QuoteEMI)))
	mux.Handle("POST /api/loans", public(http.HandlerFunc(h.SubmitApplication)))
	mux.Handle("POST /api/export", public(OptionalAdmin(cfg.JWT)(http.HandlerFunc(h.ExportApplications))))
	mux.Handle("POST /api/admin/login", public(http.HandlerFunc(h.AdminLogin)))

	mux.Handle("GET /api/admin/loans", admin(h.ListApplications))
	mux.Handle("DELETE /api/admin/loans", admin(h.DeleteApplicationsByDate))
	mux.Handle("DELETE /api/admin/loans/{id}", admin(h.DeleteApplication))

	return Chain(mux, Logging(cfg.Logger), CORS())
}
