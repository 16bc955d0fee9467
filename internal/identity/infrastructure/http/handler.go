package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dmehra2102/chipstore/internal/identity/application"
	"github.com/dmehra2102/chipstore/internal/identity/domain"
	"github.com/dmehra2102/chipstore/pkg/httpx"
	"github.com/dmehra2102/chipstore/pkg/validation"
)

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	validate *validatorv10.Validate
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service, validate: validation.New()}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Routes serves /auth. The Authenticate middleware must run first.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.With(RequireSession).Get("/me", h.me)
	return r
}

// AdminRoutes serves /admin/login and /admin/logout.
func (h *Handler) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/login", h.adminLogin)
	r.Post("/logout", h.logout)
	return r
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupInput
	if err := validation.DecodeAndValidate(w, r, &req, h.validate); err != nil {
		return
	}
	sess, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := validation.DecodeAndValidate(w, r, &req, h.validate); err != nil {
		return
	}
	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := validation.DecodeAndValidate(w, r, &req, h.validate); err != nil {
		return
	}
	sess, err := h.service.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if token := BearerToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.fail(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sess, _ := SessionFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPasswordMismatch):
		httpx.WriteFieldErrors(w, map[string]string{"confirmPassword": "eqfield"})
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		httpx.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("auth request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
