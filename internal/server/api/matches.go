package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ayusman/handrps/internal/store"
)

// MatchesHandler serves stored match history.
type MatchesHandler struct {
	store *store.Store
}

// NewMatchesHandler creates a MatchesHandler backed by s.
func NewMatchesHandler(s *store.Store) *MatchesHandler {
	return &MatchesHandler{store: s}
}

// Register mounts the handler on r under /api/matches.
func (h *MatchesHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/matches", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/api/matches/{id}/rounds/{number:[0-9]+}/snapshot", h.snapshot).Methods(http.MethodGet)
}

type listMatchesResponse struct {
	Matches []*store.Match `json:"matches"`
}

// list handles GET /api/matches and returns all matches, newest first.
func (h *MatchesHandler) list(w http.ResponseWriter, r *http.Request) {
	matches, err := h.store.Matches().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list matches")
		return
	}
	if matches == nil {
		matches = []*store.Match{}
	}

	writeJSON(w, http.StatusOK, listMatchesResponse{Matches: matches})
}

// get handles GET /api/matches/{id} and returns a match with its rounds.
func (h *MatchesHandler) get(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Matches().GetByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get match")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// delete handles DELETE /api/matches/{id}.
func (h *MatchesHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Matches().Delete(mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete match")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// snapshot handles GET /api/matches/{id}/rounds/{number}/snapshot and
// returns the JPEG taken when the round locked.
func (h *MatchesHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	number, err := strconv.Atoi(vars["number"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid round number")
		return
	}

	data, err := h.store.Rounds().Snapshot(vars["id"], number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Snapshot not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get snapshot")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
