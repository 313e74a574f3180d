package training

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/httpx"
)

// Handler serves training session routes.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	guard    authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), guard: guard}
}

// MountRoutes registers training routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireMenu(authz.MenuTraining))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.With(h.guard.RequireAny(authz.PermTrainingAdd)).Post("/", h.create)
		r.With(h.guard.RequireAny(authz.PermTrainingEdit)).Put("/{id}", h.update)
		r.With(h.guard.RequireAny(authz.PermTrainingDelete)).Delete("/{id}", h.delete)

		// The guard consults the decision engine, so salespersons pass
		// here without the grant appearing in their stored set.
		r.With(h.guard.RequireAny(authz.PermTrainingAddCustomer)).Post("/{id}/customers", h.addCustomer)
		r.Get("/{id}/customers", h.enrollments)

		r.Get("/{id}/documents", h.documents)
		r.With(h.guard.RequireAny(authz.PermDocumentDownload)).Get("/documents/{docID}/download", h.download)
	})
	r.With(h.guard.RequireAny(authz.PermTrainingExport)).Get("/export", h.export)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50}
	if expert, err := strconv.ParseInt(r.URL.Query().Get("expert_id"), 10, 64); err == nil {
		filter.ExpertID = &expert
	}
	if from, err := time.Parse("2006-01-02", r.URL.Query().Get("from")); err == nil {
		filter.From = &from
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit <= 500 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset >= 0 {
		filter.Offset = offset
	}

	rows, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list sessions", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sessions": rows, "count": len(rows)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return
	}
	sess, err := h.service.Get(r.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get session", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

type sessionRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	ExpertID    int64     `json:"expert_id" validate:"required,gt=0"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Capacity    int       `json:"capacity" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sess, err := h.service.Create(r.Context(), authz.FromContext(r.Context()), Session{
		Title:       req.Title,
		ExpertID:    req.ExpertID,
		Location:    req.Location,
		ScheduledAt: req.ScheduledAt,
		Capacity:    req.Capacity,
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		h.logger.Error("create session", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusCreated, sess)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return
	}
	var req sessionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err = h.service.Update(r.Context(), authz.FromContext(r.Context()), Session{
		ID:          id,
		Title:       req.Title,
		ExpertID:    req.ExpertID,
		Location:    req.Location,
		ScheduledAt: req.ScheduledAt,
		Capacity:    req.Capacity,
	})
	if err != nil {
		switch {
		case IsNotFound(err):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrForbidden):
			httpx.RespondError(w, httpx.ErrForbidden)
		default:
			h.logger.Error("update session", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrStoreUnavailable)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return
	}
	if err := h.service.Delete(r.Context(), authz.FromContext(r.Context()), id); err != nil {
		switch {
		case IsNotFound(err):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrForbidden):
			httpx.RespondError(w, httpx.ErrForbidden)
		default:
			h.logger.Error("delete session", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrStoreUnavailable)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addCustomerRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
}

func (h *Handler) addCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return
	}
	var req addCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err = h.service.AddCustomer(r.Context(), authz.FromContext(r.Context()), id, req.CustomerID)
	if err != nil {
		switch {
		case IsNotFound(err):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrForbidden):
			httpx.RespondError(w, httpx.ErrForbidden)
		case errors.Is(err, ErrSessionFull):
			httpx.Problem(w, http.StatusConflict, "Conflict", "session is at capacity")
		default:
			h.logger.Error("add customer", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrStoreUnavailable)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) enrollments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return
	}
	rows, err := h.service.Enrollments(r.Context(), id)
	if err != nil {
		h.logger.Error("list enrollments", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"enrollments": rows, "count": len(rows)})
}

func (h *Handler) documents(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid session id")
		return
	}
	rows, err := h.service.Documents(r.Context(), id)
	if err != nil {
		h.logger.Error("list documents", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": rows, "count": len(rows)})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "docID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
		return
	}
	doc, err := h.service.Document(r.Context(), authz.FromContext(r.Context()), id)
	if err != nil {
		switch {
		case IsNotFound(err):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrForbidden):
			httpx.RespondError(w, httpx.ErrForbidden)
		default:
			h.logger.Error("get document", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrStoreUnavailable)
		}
		return
	}
	// Download metadata only; the blob itself lives in object storage and
	// is fetched by the client with the returned key.
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":           doc.ID,
		"filename":     doc.Filename,
		"content_type": doc.ContentType,
		"size_bytes":   doc.SizeBytes,
		"url":          fmt.Sprintf("/files/%s", doc.StorageKey),
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("training-%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	count, err := h.service.ExportCSV(r.Context(), ListFilter{}, w)
	if err != nil {
		h.logger.Error("export sessions", slog.Any("error", err))
		return
	}
	h.logger.Info("sessions exported", slog.Int("rows", count))
}
