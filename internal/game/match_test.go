package game

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ayusman/handrps/internal/gesture"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestMatch(rounds int, picks ...gesture.Kind) *Match {
	m := NewMatch(Settings{Rounds: rounds, Countdown: 3}, FixedPicker(picks...))
	m.now = func() time.Time { return fixedNow }
	return m
}

func confirmed(k gesture.Kind) gesture.Confirmed {
	return gesture.Confirmed{Gesture: k, Wrist: gesture.Point{X: 0.5, Y: 0.8}, Frame: 3}
}

// countdown runs the countdown to the end.
func countdown(t *testing.T, m *Match) {
	t.Helper()
	for want := 2; want >= 0; want-- {
		if got := m.Tick(); got != want {
			t.Fatalf("Tick() = %d, want %d", got, want)
		}
	}
	if m.State() != AwaitingGesture {
		t.Fatalf("state after countdown = %s, want %s", m.State(), AwaitingGesture)
	}
}

func TestMatch_Start(t *testing.T) {
	t.Run("blank name", func(t *testing.T) {
		m := newTestMatch(5)
		if err := m.Start("   "); !errors.Is(err, ErrEmptyPlayer) {
			t.Errorf("Start() error = %v, want ErrEmptyPlayer", err)
		}
		if m.State() != Idle {
			t.Errorf("state = %s, want idle", m.State())
		}
	})

	t.Run("trims name and starts countdown", func(t *testing.T) {
		m := newTestMatch(5)
		if err := m.Start("  Ada "); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		snap := m.Snapshot()
		if snap.Player != "Ada" || snap.State != WaitingForCountdown || snap.Countdown != 3 || snap.Round != 1 {
			t.Errorf("unexpected snapshot after Start: %+v", snap)
		}
	})

	t.Run("running match cannot be replaced", func(t *testing.T) {
		m := newTestMatch(5)
		m.Start("Ada")
		if err := m.Start("Bob"); !errors.Is(err, ErrMatchInProgress) {
			t.Errorf("Start() error = %v, want ErrMatchInProgress", err)
		}
	})
}

func TestMatch_GestureIgnoredOutsideAwaiting(t *testing.T) {
	m := newTestMatch(5, gesture.Rock)

	if _, ok := m.Gesture(confirmed(gesture.Paper)); ok {
		t.Error("gesture accepted while idle")
	}

	m.Start("Ada")
	m.Tick()
	if _, ok := m.Gesture(confirmed(gesture.Paper)); ok {
		t.Error("gesture accepted during countdown")
	}

	m.Tick()
	m.Tick()
	if _, ok := m.Gesture(confirmed(gesture.None)); ok {
		t.Error("None accepted as a play")
	}
	if _, ok := m.Gesture(confirmed(gesture.Paper)); !ok {
		t.Fatal("gesture rejected while awaiting")
	}
	if _, ok := m.Gesture(confirmed(gesture.Scissors)); ok {
		t.Error("gesture accepted while locked")
	}
	if got := m.Snapshot().PlayerScore; got != 1 {
		t.Errorf("player score = %d, want 1", got)
	}
}

func TestMatch_ComputerHiddenUntilLock(t *testing.T) {
	m := newTestMatch(1, gesture.Scissors)
	m.Start("Ada")
	countdown(t, m)

	if got := m.Snapshot().Computer; got != gesture.None {
		t.Errorf("computer choice visible before lock: %s", got)
	}

	m.Gesture(confirmed(gesture.Rock))
	if got := m.Snapshot().Computer; got != gesture.Scissors {
		t.Errorf("computer choice after lock = %s, want Scissors", got)
	}
}

func TestMatch_FullGame(t *testing.T) {
	m := newTestMatch(3, gesture.Scissors, gesture.Scissors, gesture.Rock)
	m.Start("Ada")

	plays := []gesture.Kind{gesture.Rock, gesture.Paper, gesture.Rock}
	for i, p := range plays {
		countdown(t, m)
		if _, ok := m.Gesture(confirmed(p)); !ok {
			t.Fatalf("round %d: gesture rejected", i+1)
		}
		if m.State() != Locked {
			t.Fatalf("round %d: state = %s, want locked", i+1, m.State())
		}
		next := m.Advance()
		if i < len(plays)-1 && next != WaitingForCountdown {
			t.Fatalf("round %d: Advance() = %s, want countdown", i+1, next)
		}
	}

	if m.State() != Finished {
		t.Fatalf("state = %s, want finished", m.State())
	}

	wrist := gesture.Point{X: 0.5, Y: 0.8}
	want := Snapshot{
		State:         Finished,
		Player:        "Ada",
		Round:         3,
		Rounds:        3,
		PlayerScore:   1,
		ComputerScore: 1,
		Computer:      gesture.Rock,
		History: []Round{
			{Number: 1, Player: gesture.Rock, Computer: gesture.Scissors, Outcome: PlayerWins, Wrist: wrist, Frame: 3, At: fixedNow},
			{Number: 2, Player: gesture.Paper, Computer: gesture.Scissors, Outcome: ComputerWins, Wrist: wrist, Frame: 3, At: fixedNow},
			{Number: 3, Player: gesture.Rock, Computer: gesture.Rock, Outcome: Tie, Wrist: wrist, Frame: 3, At: fixedNow},
		},
		Result: "The game is a draw!",
	}
	want.Last = &want.History[2]

	if diff := cmp.Diff(want, m.Snapshot()); diff != "" {
		t.Errorf("final snapshot mismatch (-want +got):\n%s", diff)
	}
	if m.Winner() != Tie {
		t.Errorf("Winner() = %s, want tie", m.Winner())
	}

	if err := m.Start("Bob"); err != nil {
		t.Errorf("a finished match should allow a new one, got %v", err)
	}
	if snap := m.Snapshot(); snap.PlayerScore != 0 || len(snap.History) != 0 || snap.Round != 1 {
		t.Errorf("new match should start clean: %+v", snap)
	}
}

func TestMatch_Winner(t *testing.T) {
	tests := []struct {
		name     string
		picks    []gesture.Kind
		plays    []gesture.Kind
		want     Outcome
		wantText string
	}{
		{
			name:     "player",
			picks:    []gesture.Kind{gesture.Scissors},
			plays:    []gesture.Kind{gesture.Rock},
			want:     PlayerWins,
			wantText: "Ada wins the game!",
		},
		{
			name:     "computer",
			picks:    []gesture.Kind{gesture.Paper},
			plays:    []gesture.Kind{gesture.Rock},
			want:     ComputerWins,
			wantText: "Computer wins the game!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatch(len(tt.plays), tt.picks...)
			m.Start("Ada")
			for _, p := range tt.plays {
				countdown(t, m)
				m.Gesture(confirmed(p))
				m.Advance()
			}
			if m.Winner() != tt.want {
				t.Errorf("Winner() = %s, want %s", m.Winner(), tt.want)
			}
			if got := m.Snapshot().Result; got != tt.wantText {
				t.Errorf("Result = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestMatch_Abandon(t *testing.T) {
	m := newTestMatch(5, gesture.Rock)

	if err := m.Abandon(); !errors.Is(err, ErrNoMatch) {
		t.Errorf("Abandon() on idle match error = %v, want ErrNoMatch", err)
	}

	m.Start("Ada")
	countdown(t, m)
	if err := m.Abandon(); err != nil {
		t.Fatalf("Abandon() error = %v", err)
	}
	if m.State() != Idle {
		t.Errorf("state = %s, want idle", m.State())
	}
	if m.Tick() != 0 || m.Advance() != Idle {
		t.Error("abandoned match should ignore the clock")
	}
}

func TestMatch_TickAndAdvanceOutOfState(t *testing.T) {
	m := newTestMatch(5)
	if m.Tick() != 0 {
		t.Error("Tick on idle match should do nothing")
	}
	if m.Advance() != Idle {
		t.Error("Advance on idle match should do nothing")
	}

	m.Start("Ada")
	if m.Advance() != WaitingForCountdown {
		t.Error("Advance during countdown should do nothing")
	}
}

func TestNewMatch_Defaults(t *testing.T) {
	m := NewMatch(Settings{}, nil)
	m.Start("Ada")
	snap := m.Snapshot()
	if snap.Rounds != DefaultRounds || snap.Countdown != DefaultCountdown {
		t.Errorf("defaults not applied: rounds=%d countdown=%d", snap.Rounds, snap.Countdown)
	}
}

func TestSnapshot_Lines(t *testing.T) {
	m := newTestMatch(2, gesture.Scissors)
	if lines := m.Snapshot().Lines(); len(lines) != 0 {
		t.Errorf("idle match should draw nothing, got %v", lines)
	}

	m.Start("Ada")
	want := []string{"Round 1/2", "Ada 0 : 0 Computer", "3"}
	if diff := cmp.Diff(want, m.Snapshot().Lines()); diff != "" {
		t.Errorf("countdown lines (-want +got):\n%s", diff)
	}

	countdown(t, m)
	m.Gesture(confirmed(gesture.Rock))
	want = []string{"Round 1/2", "Ada 1 : 0 Computer", "Rock vs Scissors: you win"}
	if diff := cmp.Diff(want, m.Snapshot().Lines()); diff != "" {
		t.Errorf("locked lines (-want +got):\n%s", diff)
	}
}
