package performance

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/httpx"
)

// Handler serves performance summary routes.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   authz.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers performance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireMenu(authz.MenuPerformance))
		r.Get("/summary", h.summary)
	})
	r.With(h.guard.RequireAny(authz.PermPerformanceExport)).Get("/export", h.export)
}

// window parses the from/to query params, defaulting to the current month.
func window(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date %q", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date %q", raw)
		}
		to = parsed
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("to must be after from")
	}
	return from, to, nil
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ac := authz.FromContext(r.Context())
	var summary Summary
	if name := r.URL.Query().Get("department"); name != "" {
		summary, err = h.service.SummaryForDepartmentName(r.Context(), ac, name, from, to)
	} else {
		summary, err = h.service.Summary(r.Context(), ac, from, to)
	}
	if err != nil {
		h.logger.Error("performance summary", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	from, to, err := window(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	filename := fmt.Sprintf("performance-%s.csv", from.Format("200601"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	ac := authz.FromContext(r.Context())
	if err := h.service.ExportCSV(r.Context(), ac, r.URL.Query().Get("department"), from, to, w); err != nil {
		h.logger.Error("export performance", slog.Any("error", err))
	}
}
