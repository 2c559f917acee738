// Package http provides the HTTP handlers of the account server.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/profilepanel/internal/models"
	"github.com/atinyakov/profilepanel/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// UserService defines the account operations required by the HTTP handlers.
type UserService interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req service.UpdateRequest) (*models.User, error)
}

// UserHandler serves reads and updates of user accounts.
type UserHandler struct {
	// UserService performs the underlying account operations.
	UserService UserService
	// Logger records unexpected failures. Optional.
	Logger *zap.Logger
}

type errorResponse struct {
	Message string `json:"message"`
}

// Get handles GET /api/user/{userId}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

// Update handles PUT /api/user/update/{userId}. The body may carry any of
// username, email, password and profilePicture; other keys are ignored.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.UserService.UpdateUser(r.Context(), chi.URLParam(r, "userId"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, verr.Message)
	case errors.Is(err, models.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrUserConflict):
		writeError(w, r, http.StatusConflict, "Username or email already taken")
	default:
		if h.Logger != nil {
			h.Logger.Error("user request failed", zap.String("uri", r.RequestURI), zap.Error(err))
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Message: msg})
}
