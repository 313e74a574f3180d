package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/org"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/httpx"
)

// Handler serves user administration routes.
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

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireMenu(authz.MenuUsers))
		r.Use(h.guard.RequireAny(authz.PermUserManage))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}/role", h.changeRole)
		r.Put("/{id}/active", h.setActive)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50}
	if raw := r.URL.Query().Get("role"); raw != "" {
		if role, ok := authz.ParseRole(raw); ok {
			filter.Role = &role
		}
	}
	if dept, err := strconv.ParseInt(r.URL.Query().Get("department_id"), 10, 64); err == nil {
		filter.DepartmentID = &dept
	}
	if search := r.URL.Query().Get("q"); search != "" {
		filter.Search = &search
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit <= 500 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset >= 0 {
		filter.Offset = offset
	}

	rows, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": rows, "count": len(rows)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		if IsNotFound(err) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

type changeRoleRequest struct {
	Role           string  `json:"role" validate:"required"`
	DepartmentID   *int64  `json:"department_id,omitempty"`
	ExtraMemberIDs []int64 `json:"extra_member_ids,omitempty"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role "+strconv.Quote(req.Role))
		return
	}

	actor := authz.FromContext(r.Context())
	err = h.service.ChangeRole(r.Context(), actor.UserID, org.TransitionRequest{
		UserID:         id,
		NewRole:        role,
		DepartmentID:   req.DepartmentID,
		ExtraMemberIDs: req.ExtraMemberIDs,
	})
	if err != nil {
		switch {
		case IsNotFound(err):
			httpx.RespondError(w, httpx.ErrNotFound)
		case IsInvalidRole(err):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		case errors.Is(err, org.ErrDepartmentRequired):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("change role", slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrStoreUnavailable)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req setActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SetActive(r.Context(), id, *req.Active); err != nil {
		if IsNotFound(err) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("set active", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
