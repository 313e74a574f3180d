package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lpx0007/training-management-system-sub002/internal/auth"
	"github.com/lpx0007/training-management-system-sub002/internal/customers"
	"github.com/lpx0007/training-management-system-sub002/internal/grants"
	"github.com/lpx0007/training-management-system-sub002/internal/observability"
	"github.com/lpx0007/training-management-system-sub002/internal/performance"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
	"github.com/lpx0007/training-management-system-sub002/internal/training"
	"github.com/lpx0007/training-management-system-sub002/internal/users"
	"github.com/lpx0007/training-management-system-sub002/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	AuthHandler        *auth.Handler
	CustomersHandler   *customers.Handler
	TrainingHandler    *training.Handler
	PerformanceHandler *performance.Handler
	UsersHandler       *users.Handler
	GrantsHandler      *grants.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.CustomersHandler != nil {
		r.Route("/customers", params.CustomersHandler.MountRoutes)
	}
	if params.TrainingHandler != nil {
		r.Route("/training", params.TrainingHandler.MountRoutes)
	}
	if params.PerformanceHandler != nil {
		r.Route("/performance", params.PerformanceHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.GrantsHandler != nil {
		r.Route("/permissions", params.GrantsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
