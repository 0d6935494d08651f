package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/store"
)

// fakeGame drives a real Match synchronously, without the runner's clock.
type fakeGame struct {
	mu    sync.Mutex
	match *game.Match
	err   error
}

func newFakeGame() *fakeGame {
	return &fakeGame{match: game.NewMatch(game.Settings{Rounds: 3}, game.FixedPicker())}
}

func (f *fakeGame) Start(ctx context.Context, player string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return f.match.Start(player)
}

func (f *fakeGame) Abandon(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return f.match.Abandon()
}

func (f *fakeGame) Snapshot() game.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match.Snapshot()
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func gameRouter(g GameController) *mux.Router {
	r := mux.NewRouter()
	NewGameHandler(g).Register(r)
	return r
}

func matchesRouter(s *store.Store) *mux.Router {
	r := mux.NewRouter()
	NewMatchesHandler(s).Register(r)
	return r
}

func do(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGameHandler_Start(t *testing.T) {
	g := newFakeGame()
	h := gameRouter(g)

	rec := do(h, http.MethodPost, "/api/game", []byte(`{"player":"  Ada "}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, "Ada", snap["player"])
	assert.Equal(t, "countdown", snap["state"])
	assert.EqualValues(t, 3, snap["rounds"])

	rec = do(h, http.MethodPost, "/api/game", []byte(`{"player":"Bob"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGameHandler_StartValidation(t *testing.T) {
	h := gameRouter(newFakeGame())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"player":`},
		{"missing player", `{}`},
		{"blank player", `{"player":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/game", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGameHandler_GetAndAbandon(t *testing.T) {
	g := newFakeGame()
	h := gameRouter(g)

	rec := do(h, http.MethodGet, "/api/game", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"idle"`)

	rec = do(h, http.MethodDelete, "/api/game", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	require.NoError(t, g.Start(context.Background(), "Ada"))
	rec = do(h, http.MethodDelete, "/api/game", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, game.Idle, g.Snapshot().State)
}

func TestGameHandler_LoopNotResponding(t *testing.T) {
	g := newFakeGame()
	g.err = context.DeadlineExceeded

	rec := do(gameRouter(g), http.MethodPost, "/api/game", []byte(`{"player":"Ada"}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGameHandler_MethodNotAllowed(t *testing.T) {
	rec := do(gameRouter(newFakeGame()), http.MethodPut, "/api/game", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMatchesHandler_List(t *testing.T) {
	s := newTestStore(t)
	h := matchesRouter(s)

	rec := do(h, http.MethodGet, "/api/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"matches":[]}`, rec.Body.String())

	require.NoError(t, s.Matches().Create(&store.Match{Player: "Ada", Rounds: 5}))
	require.NoError(t, s.Matches().Create(&store.Match{Player: "Bob", Rounds: 5}))

	rec = do(h, http.MethodGet, "/api/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listMatchesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Matches, 2)
}

func TestMatchesHandler_GetAndDelete(t *testing.T) {
	s := newTestStore(t)
	h := matchesRouter(s)

	m := &store.Match{Player: "Ada", Rounds: 3}
	require.NoError(t, s.Matches().Create(m))
	require.NoError(t, s.Rounds().Add(&store.Round{
		MatchID: m.ID, Number: 1, Player: "Rock", Computer: "Scissors", Outcome: "player",
	}, nil))

	rec := do(h, http.MethodGet, "/api/matches/"+m.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got store.Match
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Ada", got.Player)
	require.Len(t, got.Played, 1)
	assert.Equal(t, "Rock", got.Played[0].Player)

	rec = do(h, http.MethodDelete, "/api/matches/"+m.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/api/matches/"+m.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(h, http.MethodDelete, "/api/matches/"+m.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchesHandler_Snapshot(t *testing.T) {
	s := newTestStore(t)
	h := matchesRouter(s)

	m := &store.Match{Player: "Ada", Rounds: 3}
	require.NoError(t, s.Matches().Create(m))
	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0xFF, 0xD9}
	require.NoError(t, s.Rounds().Add(&store.Round{
		MatchID: m.ID, Number: 1, Player: "Paper", Computer: "Rock", Outcome: "player",
	}, jpeg))
	require.NoError(t, s.Rounds().Add(&store.Round{
		MatchID: m.ID, Number: 2, Player: "Rock", Computer: "Rock", Outcome: "tie",
	}, nil))

	rec := do(h, http.MethodGet, "/api/matches/"+m.ID+"/rounds/1/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, jpeg, rec.Body.Bytes())

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"round without snapshot", "/api/matches/" + m.ID + "/rounds/2/snapshot", http.StatusNotFound},
		{"missing round", "/api/matches/" + m.ID + "/rounds/9/snapshot", http.StatusNotFound},
		{"missing match", "/api/matches/nope/rounds/1/snapshot", http.StatusNotFound},
		{"non-numeric round", "/api/matches/" + m.ID + "/rounds/one/snapshot", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "image/"))
		})
	}
}
