package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/grants"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/httpx"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	grants         *grants.Service
	sessionManager *shared.SessionManager
	guard          authz.Middleware
	validate       *validator.Validate
	loginLimiter   func(http.Handler) http.Handler
}

// WithLoginLimiter installs a rate limiter applied to the login route only.
func (h *Handler) WithLoginLimiter(mw func(http.Handler) http.Handler) *Handler {
	h.loginLimiter = mw
	return h
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, grantsSvc *grants.Service, sessions *shared.SessionManager, guard authz.Middleware) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		grants:         grantsSvc,
		sessionManager: sessions,
		guard:          guard,
		validate:       validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h.loginLimiter != nil {
		r.With(h.loginLimiter).Post("/login", h.login)
	} else {
		r.Post("/login", h.login)
	}
	r.Post("/logout", h.logout)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuthenticated())
		r.Get("/me", h.me)
		r.Get("/me/menus", h.menus)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// login authenticates credentials and snapshots the authorization context
// into the session. The snapshot is not refreshed mid-session: grant or role
// edits take effect at the next login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	ac, err := h.grants.BuildContext(r.Context(), user.ID)
	if err != nil {
		// No permissive fallback when the grant store is unreachable.
		h.logger.Error("build authorization context", slog.Int64("user_id", user.ID), slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}

	payload, err := json.Marshal(ac)
	if err != nil {
		h.logger.Error("serialize authorization context", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session unavailable")
		return
	}
	// Rotate the session ID so the pre-login cookie cannot be fixed to the
	// authenticated session.
	if err := h.sessionManager.Renew(r.Context(), sess); err != nil {
		h.logger.Error("renew session", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrStoreUnavailable)
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))
	sess.Set(shared.SessionAuthzKey, string(payload))

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    ac.Role,
		"menus":   ac.VisibleMenus(),
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())
	httpx.JSON(w, http.StatusOK, ac)
}

// menus returns the menu features visible to the current session, ordered
// for display.
func (h *Handler) menus(w http.ResponseWriter, r *http.Request) {
	ac := authz.FromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"menus": ac.VisibleMenus()})
}

// IsInvalidCredentials reports whether err denotes a failed login.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, shared.ErrInvalidCredentials)
}
