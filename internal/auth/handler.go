// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/storefront/internal/core"
	"github.com/carterperez-dev/templates/storefront/internal/middleware"
)

type Handler struct {
	service   *Service
	sessions  *SessionManager
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(
	service *Service,
	sessions *SessionManager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		logger:    logger,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts /auth. limiter wraps the credential endpoints
// that are worth brute forcing.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, limiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter)
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
		})

		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

// RegisterDebugRoutes exposes the decoded session. main mounts it only
// outside production.
func (h *Handler) RegisterDebugRoutes(r chi.Router) {
	r.Get("/debug/session", h.DebugSession)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.WarnContext(r.Context(), "login failed",
				"ip", extractIPAddress(r),
			)
			core.JSONError(
				w,
				core.UnauthorizedError("invalid email or password"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.startSession(w, user, http.StatusOK)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "email"))
		return
	}

	h.startSession(w, user, http.StatusCreated)
}

func (h *Handler) startSession(
	w http.ResponseWriter,
	user *UserInfo,
	status int,
) {
	_, expiresAt, err := h.sessions.Create(w, user.ID, user.Email)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.JSON(w, status, core.Response{
		Success: true,
		Data: AuthResponse{
			User:      toUserResponse(user),
			ExpiresAt: expiresAt,
		},
	})
}

func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Destroy(w)
	core.NoContent(w)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "user"))
		return
	}

	core.OK(w, user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	email := middleware.GetUserEmail(r.Context())

	if err := h.service.ChangePassword(r.Context(), email, req); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(
				w,
				core.UnauthorizedError("invalid email or password"),
			)
			return
		}
		core.JSONError(w, core.ToAppError(err, "user"))
		return
	}

	core.NoContent(w)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logger.ErrorContext(r.Context(), "forgot password failed",
			"error", err,
		)
	}

	core.Accepted(w, map[string]string{
		"message": "if the account exists, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		core.JSONError(w, core.ToAppError(err, "user"))
		return
	}

	core.NoContent(w)
}

func (h *Handler) DebugSession(w http.ResponseWriter, r *http.Request) {
	claims := h.sessions.GetSession(r)
	if claims == nil {
		core.OK(w, nil)
		return
	}

	core.OK(w, SessionResponse{
		UserID:    claims.UserID,
		Email:     claims.Email,
		IssuedAt:  claims.IssuedAt,
		ExpiresAt: claims.ExpiresAt,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	trimEmail(dst)

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func trimEmail(dst any) {
	switch req := dst.(type) {
	case *LoginRequest:
		req.Email = strings.TrimSpace(req.Email)
	case *RegisterRequest:
		req.Email = strings.TrimSpace(req.Email)
	case *ChangePasswordRequest:
		req.Email = strings.TrimSpace(req.Email)
	case *ForgotPasswordRequest:
		req.Email = strings.TrimSpace(req.Email)
	}
}

func extractIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}
