package customers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/httpx"
)

// Handler serves customer routes.
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

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireMenu(authz.MenuCustomers))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.With(h.guard.RequireAny(authz.PermCustomerAdd)).Post("/", h.create)
	})
	r.With(h.guard.RequireAny(authz.PermCustomerExport)).Get("/export", h.export)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50}
	if search := r.URL.Query().Get("q"); search != "" {
		filter.Search = &search
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit <= 500 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset >= 0 {
		filter.Offset = offset
	}

	rows, err := h.service.List(r.Context(), authz.FromContext(r.Context()), filter)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": rows, "count": len(rows)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	c, err := h.service.Get(r.Context(), authz.FromContext(r.Context()), id)
	if err != nil {
		switch {
		case IsNotFound(err):
			httpx.RespondError(w, httpx.ErrNotFound)
		case errors.Is(err, ErrForbidden):
			httpx.RespondError(w, httpx.ErrForbidden)
		default:
			h.logger.Error("get customer", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrStoreUnavailable)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

type createCustomerRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Company       *string `json:"company,omitempty"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	SalespersonID int64   `json:"salesperson_id,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.Create(r.Context(), authz.FromContext(r.Context()), Customer{
		Name:          req.Name,
		Company:       req.Company,
		Phone:         req.Phone,
		Email:         req.Email,
		SalespersonID: req.SalespersonID,
	})
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		h.logger.Error("create customer", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	opts := ExportOptions{
		DepartmentName:  r.URL.Query().Get("department"),
		SalespersonName: r.URL.Query().Get("salesperson"),
	}

	filename := fmt.Sprintf("customers-%s-%s.csv", time.Now().Format("20060102"), uuid.NewString()[:8])
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	count, err := h.service.ExportCSV(r.Context(), authz.FromContext(r.Context()), opts, w)
	if err != nil {
		h.logger.Error("export customers", slog.Any("error", err))
		return
	}
	h.logger.Info("customers exported", slog.Int("rows", count))
}
