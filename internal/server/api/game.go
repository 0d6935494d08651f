package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ayusman/handrps/internal/game"
)

// commandTimeout bounds how long a request waits for the game loop.
const commandTimeout = 5 * time.Second

// GameController is the part of game.Runner the API drives.
type GameController interface {
	Start(ctx context.Context, player string) error
	Abandon(ctx context.Context) error
	Snapshot() game.Snapshot
}

// GameHandler serves the current match.
type GameHandler struct {
	game GameController
}

// NewGameHandler creates a GameHandler for g.
func NewGameHandler(g GameController) *GameHandler {
	return &GameHandler{game: g}
}

// Register mounts the handler on r under /api/game.
func (h *GameHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/game", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/game", h.start).Methods(http.MethodPost)
	r.HandleFunc("/api/game", h.abandon).Methods(http.MethodDelete)
}

type startGameRequest struct {
	Player string `json:"player"`
}

// get handles GET /api/game and returns the current snapshot.
func (h *GameHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

// start handles POST /api/game and begins a match.
func (h *GameHandler) start(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Player) == "" {
		writeError(w, http.StatusBadRequest, "Player name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	if err := h.game.Start(ctx, req.Player); err != nil {
		writeCommandError(w, err, "Failed to start match")
		return
	}

	writeJSON(w, http.StatusCreated, h.game.Snapshot())
}

// abandon handles DELETE /api/game and drops the running match.
func (h *GameHandler) abandon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	defer cancel()

	if err := h.game.Abandon(ctx); err != nil {
		writeCommandError(w, err, "Failed to abandon match")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeCommandError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, game.ErrEmptyPlayer):
		writeError(w, http.StatusBadRequest, "Player name is required")
	case errors.Is(err, game.ErrMatchInProgress):
		writeError(w, http.StatusConflict, "A match is already running")
	case errors.Is(err, game.ErrNoMatch):
		writeError(w, http.StatusConflict, "No match is running")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Game loop is not responding")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
