package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/yaddak/yaddak/internal/auth/service"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	commonhttp "github.com/yaddak/yaddak/internal/common/http"
	"github.com/yaddak/yaddak/internal/common/logger"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

type UserService interface {
	Register(ctx context.Context, input service.RegisterInput) (userdomain.User, error)
	Login(ctx context.Context, input service.LoginInput) (service.LoginResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (userdomain.User, error)
	ListUsers(ctx context.Context) ([]userdomain.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input service.UpdateInput) (userdomain.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	users  UserService
	errors *commonhttp.ErrorHandler
	log    *logger.Logger
}

func NewHandler(users UserService, log *logger.Logger) *Handler {
	return &Handler{
		users:  users,
		errors: commonhttp.NewErrorHandler(log),
		log:    log,
	}
}

// Routes registers the user endpoints. Register and login are public; auth
// wraps everything else.
func (h *Handler) Routes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /user", h.register)
	mux.HandleFunc("POST /user/login", h.login)
	mux.Handle("GET /user", auth(http.HandlerFunc(h.list)))
	mux.Handle("GET /user/{id}", auth(http.HandlerFunc(h.get)))
	mux.Handle("PUT /user/{id}", auth(http.HandlerFunc(h.update)))
	mux.Handle("DELETE /user/{id}", auth(http.HandlerFunc(h.delete)))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: %v", err)
		h.errors.HandleError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteData(w, http.StatusOK, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: %v", err)
		h.errors.HandleError(w, r, err)
		return
	}

	result, err := h.users.Login(r.Context(), req)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteData(w, http.StatusOK, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, users)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	var req service.UpdateInput
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, user)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		h.writeMutationError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, id)
}

// writeMutationError reports a missing or conflicting row as 304 Not Modified.
// A taken identity keeps its own status whichever check caught it.
func (h *Handler) writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, commonerrors.ErrAlreadyExists) {
		h.errors.HandleError(w, r, err)
		return
	}
	if errors.Is(err, commonerrors.ErrNotFound) || errors.Is(err, commonerrors.ErrConflict) {
		h.errors.HandleErrorStatus(w, r, err, http.StatusNotModified)
		return
	}
	h.errors.HandleError(w, r, err)
}
