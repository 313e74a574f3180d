package grants

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/httpx"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Handler exposes the permission catalog and per-user grant administration.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	guard    authz.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		guard:    guard,
	}
}

// MountRoutes registers grant administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(authz.PermPermissionManage))
		r.Get("/catalog", h.catalog)
		r.Get("/usage", h.usage)
		r.Get("/users/{userID}", h.getGrants)
		r.Put("/users/{userID}/permissions", h.putPermissions)
		r.Put("/users/{userID}/menus", h.putMenus)
	})
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"categories": authz.Categories(),
		"menus":      authz.AllMenus(),
	})
}

func (h *Handler) usage(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"mappings": authz.AllUsageMappings()})
}

func (h *Handler) getGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	g, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
			return
		}
		h.logger.Error("get grants", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":       g.UserID,
		"display_name":  g.DisplayName,
		"role":          g.Role,
		"department_id": g.DepartmentID,
		"permissions":   g.Permissions,
		"menus":         g.Menus,
	})
}

type setGrantsRequest struct {
	IDs []string `json:"ids" validate:"required,dive,min=1"`
}

func (h *Handler) putPermissions(w http.ResponseWriter, r *http.Request) {
	h.putGrant(w, r, h.service.UpdatePermissions)
}

func (h *Handler) putMenus(w http.ResponseWriter, r *http.Request) {
	h.putGrant(w, r, h.service.UpdateMenus)
}

func (h *Handler) putGrant(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, actorID, userID int64, ids []string) error) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req setGrantsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor := authz.FromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if err := apply(r.Context(), actor.UserID, userID, req.IDs); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("update grants", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
