package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/store"
)

func TestAPI_MatchWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	var matchID string
	hooks := game.Hooks{
		OnStarted: func(snap game.Snapshot) {
			m := &store.Match{Player: snap.Player, Rounds: snap.Rounds}
			if err := s.Matches().Create(m); err != nil {
				t.Errorf("Create() error = %v", err)
			}
			matchID = m.ID
		},
		OnRoundLocked: func(snap game.Snapshot, r game.Round) {
			s.Rounds().Add(&store.Round{
				MatchID: matchID, Number: r.Number, Player: r.Player.String(),
				Computer: r.Computer.String(), Outcome: r.Outcome.String(),
			}, []byte{0xFF, 0xD8, 0xFF, 0xD9})
			s.Matches().UpdateScore(matchID, snap.PlayerScore, snap.ComputerScore)
		},
		OnFinished: func(snap game.Snapshot) {
			s.Matches().Finish(matchID, snap.PlayerScore, snap.ComputerScore, snap.Result)
		},
	}

	match := game.NewMatch(game.Settings{Rounds: 1, Countdown: 1}, game.FixedPicker(gesture.Scissors))
	runner := game.NewRunner(match, game.RunnerConfig{
		TickInterval: 5 * time.Millisecond,
		ResultDelay:  10 * time.Millisecond,
	}, hooks)
	events := make(chan gesture.Confirmed, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx, events)

	srv := New(Config{Store: s, Game: runner})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Start a match
	resp, err := client.Post(ts.URL+"/api/game", "application/json", bytes.NewBufferString(`{"player":"Ada"}`))
	if err != nil {
		t.Fatalf("POST /api/game error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()

	// 2. A second start conflicts
	resp, _ = client.Post(ts.URL+"/api/game", "application/json", bytes.NewBufferString(`{"player":"Bob"}`))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second POST status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	resp.Body.Close()

	// 3. Play the round once the countdown is over
	waitFor(t, func() bool { return runner.Snapshot().State == game.AwaitingGesture })
	events <- gesture.Confirmed{Gesture: gesture.Rock, Wrist: gesture.Point{X: 0.5, Y: 0.8}, Frame: 12}
	waitFor(t, func() bool {
		list, err := s.Matches().List()
		return err == nil && len(list) == 1 && list[0].Status == store.StatusFinished
	})

	resp, _ = client.Get(ts.URL + "/api/game")
	var snap struct {
		State       string `json:"state"`
		PlayerScore int    `json:"player_score"`
		Result      string `json:"result"`
	}
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()

	if snap.State != "finished" || snap.PlayerScore != 1 || snap.Result != "Ada wins the game!" {
		t.Errorf("final game = %+v", snap)
	}

	// 4. The match is in the history
	resp, _ = client.Get(ts.URL + "/api/matches")
	var listed struct {
		Matches []struct {
			ID     string `json:"id"`
			Player string `json:"player"`
			Status string `json:"status"`
		} `json:"matches"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(listed.Matches))
	}
	if listed.Matches[0].Player != "Ada" || listed.Matches[0].Status != "finished" {
		t.Errorf("listed match = %+v", listed.Matches[0])
	}

	// 5. Round snapshot
	resp, _ = client.Get(ts.URL + "/api/matches/" + listed.Matches[0].ID + "/rounds/1/snapshot")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET snapshot status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 6. Delete match
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/matches/"+listed.Matches[0].ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 7. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/matches/" + listed.Matches[0].ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
