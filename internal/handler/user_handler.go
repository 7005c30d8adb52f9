package handler

import (
	"context"
	"net/http"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/middleware"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/Yzairi/CDA/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, email, password string, asAdmin bool) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.AuthResult, error)
}

type UserService interface {
	List(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.User, error)
	Update(ctx context.Context, actor domain.Actor, id string, in usecase.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type UserHandler struct {
	auth   AuthService
	users  UserService
	logger *logger.Logger
}

func NewUserHandler(auth AuthService, users UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{auth: auth, users: users, logger: log.Named("UserHTTPHandler")}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req.Email, req.Password, req.IsAdmin)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	user, err := h.users.Get(r.Context(), actor, actor.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.users.Update(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.users.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("User deleted via HTTP", zap.String("user_id", id))
	w.WriteHeader(http.StatusNoContent)
}
