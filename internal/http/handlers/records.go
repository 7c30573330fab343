package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/http/respond"
	"github.com/hongminglow/clubcore/internal/middleware"
	"github.com/hongminglow/clubcore/internal/models"
	"github.com/hongminglow/clubcore/internal/storage"
)

// RecordsHandler is the scoped CRUD surface shared by every section.
type RecordsHandler struct {
	store storage.RecordStore
	log   *logrus.Logger
}

// NewRecordsHandler constructs the handler.
func NewRecordsHandler(store storage.RecordStore, log *logrus.Logger) *RecordsHandler {
	return &RecordsHandler{store: store, log: log}
}

// Register attaches /api/{clubId}/{section}[/{id}]. Call it after any fixed
// /api/{clubId}/... routes so they win the match.
func (h *RecordsHandler) Register(r *mux.Router, guard *middleware.ClubAuth) {
	r.Handle("/api/{clubId}/{section}", guard.API("", "view")(http.HandlerFunc(h.handleList))).Methods(http.MethodGet)
	r.Handle("/api/{clubId}/{section}", guard.API("", "add")(http.HandlerFunc(h.handleCreate))).Methods(http.MethodPost)
	r.Handle("/api/{clubId}/{section}/{id}", guard.API("", "view")(http.HandlerFunc(h.handleGet))).Methods(http.MethodGet)
	r.Handle("/api/{clubId}/{section}/{id}", guard.API("", "edit")(http.HandlerFunc(h.handleUpdate))).Methods(http.MethodPut)
	r.Handle("/api/{clubId}/{section}/{id}", guard.API("", "delete")(http.HandlerFunc(h.handleDelete))).Methods(http.MethodDelete)
}

func (h *RecordsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	section := mux.Vars(r)[middleware.SectionVar]
	records, err := h.store.ListRecords(r.Context(), props.ClubID, section)
	if err != nil {
		h.fail(w, err, props.ClubID, section, "list records failed")
		return
	}
	respond.JSON(w, http.StatusOK, records)
}

func (h *RecordsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	vars := mux.Vars(r)
	rec, err := h.store.GetRecord(r.Context(), props.ClubID, vars[middleware.SectionVar], vars["id"])
	if err != nil {
		h.fail(w, err, props.ClubID, vars[middleware.SectionVar], "get record failed")
		return
	}
	respond.JSON(w, http.StatusOK, rec)
}

func (h *RecordsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	section := mux.Vars(r)[middleware.SectionVar]
	data, ok := decodeObject(w, r)
	if !ok {
		return
	}
	rec, err := h.store.CreateRecord(r.Context(), models.Record{
		ClubID:    props.ClubID,
		Section:   section,
		Data:      data,
		CreatedBy: props.User.ID,
	})
	if err != nil {
		h.fail(w, err, props.ClubID, section, "create record failed")
		return
	}
	respond.JSON(w, http.StatusCreated, rec)
}

func (h *RecordsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	vars := mux.Vars(r)
	data, ok := decodeObject(w, r)
	if !ok {
		return
	}
	rec, err := h.store.UpdateRecord(r.Context(), models.Record{
		ID:      vars["id"],
		ClubID:  props.ClubID,
		Section: vars[middleware.SectionVar],
		Data:    data,
	})
	if err != nil {
		h.fail(w, err, props.ClubID, vars[middleware.SectionVar], "update record failed")
		return
	}
	respond.JSON(w, http.StatusOK, rec)
}

func (h *RecordsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	vars := mux.Vars(r)
	if err := h.store.DeleteRecord(r.Context(), props.ClubID, vars[middleware.SectionVar], vars["id"]); err != nil {
		h.fail(w, err, props.ClubID, vars[middleware.SectionVar], "delete record failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordsHandler) fail(w http.ResponseWriter, err error, clubID, section, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "Not found")
		return
	}
	h.log.WithError(err).WithFields(logrus.Fields{"club_id": clubID, "section": section}).Error(msg)
	respond.Error(w, http.StatusInternalServerError, "Internal server error")
}

// decodeObject reads the body as one JSON object.
func decodeObject(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	var raw json.RawMessage
	if err := respond.Decode(w, r, &raw); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		respond.Error(w, http.StatusBadRequest, "Record data must be a JSON object")
		return nil, false
	}
	return raw, true
}
