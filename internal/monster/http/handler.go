package http

import (
	"errors"
	"net/http"

	"github.com/yaddak/yaddak/internal/auth/guard"
	"github.com/yaddak/yaddak/internal/common/crypto"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	commonhttp "github.com/yaddak/yaddak/internal/common/http"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/common/validation"
	"github.com/yaddak/yaddak/internal/monster/domain"
	"github.com/yaddak/yaddak/internal/store"
)

type Handler struct {
	monsters store.Repository[domain.Monster]
	ids      crypto.IDGenerator
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
}

func NewHandler(monsters store.Repository[domain.Monster], ids crypto.IDGenerator, log *logger.Logger) *Handler {
	return &Handler{
		monsters: monsters,
		ids:      ids,
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
	}
}

// Routes registers the bestiary endpoints. Reads are public reference data;
// writes require auth.
func (h *Handler) Routes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /monster", h.list)
	mux.HandleFunc("GET /monster/{id}", h.get)
	mux.Handle("POST /monster", auth(http.HandlerFunc(h.create)))
	mux.Handle("PUT /monster/{id}", auth(http.HandlerFunc(h.update)))
	mux.Handle("DELETE /monster/{id}", auth(http.HandlerFunc(h.delete)))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	monsters, err := h.monsters.GetAll(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, monsters)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	monster, err := h.monsters.Get(r.Context(), id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, monster)
}

// create stores a monster owned by the authenticated principal.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := guard.PrincipalFromContext(r.Context())
	if !ok {
		h.errors.HandleError(w, r, commonerrors.ErrMissingCredential)
		return
	}

	record, err := decodeRecord(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	id, err := h.ids.NewID()
	if err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrInternalError.WithCause(err))
		return
	}

	monster := record.ToMonster(id, principal.ID)
	if err := h.monsters.Insert(r.Context(), monster); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"monster_id": id.String(),
		"user_id":    principal.ID.String(),
		"action":     "monster_created",
	}).Info("monster created")
	commonhttp.WriteData(w, http.StatusOK, monster)
}

// update replaces every field except id and owner.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	record, err := decodeRecord(r)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	existing, err := h.monsters.Get(r.Context(), id)
	if err != nil {
		h.writeMutationError(w, r, err)
		return
	}

	monster := record.ToMonster(id, existing.UserID)
	if err := h.monsters.Update(r.Context(), id, monster); err != nil {
		h.writeMutationError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, monster)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.PathID(r, "id")
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	if err := h.monsters.Delete(r.Context(), id); err != nil {
		h.writeMutationError(w, r, err)
		return
	}
	commonhttp.WriteData(w, http.StatusOK, id)
}

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

func decodeRecord(r *http.Request) (domain.Record, error) {
	var record domain.Record
	if err := commonhttp.DecodeJSON(r, &record); err != nil {
		return domain.Record{}, err
	}
	if err := validation.Struct(record); err != nil {
		return domain.Record{}, err
	}
	return record, nil
}
