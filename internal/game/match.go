package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/handrps/internal/gesture"
)

// Defaults for a match.
const (
	DefaultRounds    = 5
	DefaultCountdown = 3
)

var (
	ErrMatchInProgress = errors.New("a match is already in progress")
	ErrNoMatch         = errors.New("no match in progress")
	ErrEmptyPlayer     = errors.New("player name is required")
)

// State is where a match is in its round cycle.
type State int

const (
	// Idle: no match has been started, or the last one was abandoned.
	Idle State = iota
	// WaitingForCountdown: the countdown for the current round is running.
	WaitingForCountdown
	// AwaitingGesture: the computer has picked; the next confirmed gesture
	// locks the round.
	AwaitingGesture
	// Locked: the round is decided and its result is on screen. Gestures are
	// ignored until Advance.
	Locked
	// Finished: every round has been played.
	Finished
)

var stateNames = [...]string{"idle", "countdown", "awaiting_gesture", "locked", "finished"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Settings shape a match.
type Settings struct {
	Rounds    int
	Countdown int
}

// DefaultSettings returns five rounds with a three-step countdown.
func DefaultSettings() Settings {
	return Settings{Rounds: DefaultRounds, Countdown: DefaultCountdown}
}

// Round is one decided round.
type Round struct {
	Number   int           `json:"number"`
	Player   gesture.Kind  `json:"player"`
	Computer gesture.Kind  `json:"computer"`
	Outcome  Outcome       `json:"outcome"`
	Wrist    gesture.Point `json:"wrist"`
	Frame    uint64        `json:"frame"`
	At       time.Time     `json:"at"`
}

// Snapshot is a read-only copy of a match for display.
type Snapshot struct {
	State         State        `json:"state"`
	Player        string       `json:"player,omitempty"`
	Round         int          `json:"round"`
	Rounds        int          `json:"rounds"`
	Countdown     int          `json:"countdown"`
	PlayerScore   int          `json:"player_score"`
	ComputerScore int          `json:"computer_score"`
	Computer      gesture.Kind `json:"computer"` // hidden until the round locks
	Last          *Round       `json:"last,omitempty"`
	History       []Round      `json:"history"`
	Result        string       `json:"result,omitempty"`
}

// Lines renders the snapshot as HUD text.
func (s Snapshot) Lines() []string {
	switch s.State {
	case Idle:
		return nil
	case Finished:
		return []string{s.Result, s.score()}
	}

	lines := []string{fmt.Sprintf("Round %d/%d", s.Round, s.Rounds), s.score()}
	switch s.State {
	case WaitingForCountdown:
		lines = append(lines, fmt.Sprintf("%d", s.Countdown))
	case AwaitingGesture:
		lines = append(lines, "Show your hand!")
	case Locked:
		if s.Last != nil {
			lines = append(lines, fmt.Sprintf("%s vs %s: %s", s.Last.Player, s.Last.Computer, outcomeText(s.Last.Outcome)))
		}
	}
	return lines
}

func (s Snapshot) score() string {
	return fmt.Sprintf("%s %d : %d Computer", s.Player, s.PlayerScore, s.ComputerScore)
}

func outcomeText(o Outcome) string {
	switch o {
	case PlayerWins:
		return "you win"
	case ComputerWins:
		return "computer wins"
	}
	return "tie"
}

// Match is the round state machine. It holds no timers: Tick and Advance are
// called by whoever owns the clock, normally a Runner. A Match is not safe
// for concurrent use.
type Match struct {
	settings Settings
	picker   Picker
	now      func() time.Time

	state         State
	player        string
	round         int
	countdown     int
	computer      gesture.Kind
	playerScore   int
	computerScore int
	history       []Round
}

// NewMatch returns an idle match. Zero settings take their defaults and a
// nil picker picks at random.
func NewMatch(settings Settings, picker Picker) *Match {
	if settings.Rounds <= 0 {
		settings.Rounds = DefaultRounds
	}
	if settings.Countdown <= 0 {
		settings.Countdown = DefaultCountdown
	}
	if picker == nil {
		picker = RandomPicker()
	}
	return &Match{settings: settings, picker: picker, now: time.Now}
}

// State returns the current state.
func (m *Match) State() State {
	return m.state
}

// Start begins a new match for player and starts the first countdown. A
// finished match may be replaced; a running one may not.
func (m *Match) Start(player string) error {
	player = strings.TrimSpace(player)
	if player == "" {
		return ErrEmptyPlayer
	}
	if m.Running() {
		return ErrMatchInProgress
	}

	m.player = player
	m.playerScore, m.computerScore = 0, 0
	m.history = nil
	m.round = 1
	m.beginCountdown()
	return nil
}

// Running reports whether a match is between Start and Finished.
func (m *Match) Running() bool {
	return m.state != Idle && m.state != Finished
}

func (m *Match) beginCountdown() {
	m.state = WaitingForCountdown
	m.countdown = m.settings.Countdown
	m.computer = gesture.None
}

// Tick advances the countdown by one step and returns the steps left. When
// it reaches zero the computer picks and the match waits for a gesture.
// Outside the countdown Tick does nothing.
func (m *Match) Tick() int {
	if m.state != WaitingForCountdown {
		return 0
	}
	m.countdown--
	if m.countdown <= 0 {
		m.countdown = 0
		m.computer = m.picker.Pick()
		m.state = AwaitingGesture
	}
	return m.countdown
}

// Gesture offers a confirmed gesture. It is accepted only while the match
// awaits one; it then decides and locks the round and returns it.
func (m *Match) Gesture(c gesture.Confirmed) (Round, bool) {
	if m.state != AwaitingGesture || c.Gesture == gesture.None {
		return Round{}, false
	}

	r := Round{
		Number:   m.round,
		Player:   c.Gesture,
		Computer: m.computer,
		Outcome:  Decide(c.Gesture, m.computer),
		Wrist:    c.Wrist,
		Frame:    c.Frame,
		At:       m.now(),
	}
	switch r.Outcome {
	case PlayerWins:
		m.playerScore++
	case ComputerWins:
		m.computerScore++
	}
	m.history = append(m.history, r)
	m.state = Locked
	return r, true
}

// Advance ends the result display: it starts the next round's countdown, or
// finishes the match after the last round. Outside Locked it does nothing.
func (m *Match) Advance() State {
	if m.state != Locked {
		return m.state
	}
	if m.round >= m.settings.Rounds {
		m.state = Finished
		return m.state
	}
	m.round++
	m.beginCountdown()
	return m.state
}

// Abandon drops a running match and returns to Idle.
func (m *Match) Abandon() error {
	if !m.Running() {
		return ErrNoMatch
	}
	m.state = Idle
	m.countdown = 0
	m.computer = gesture.None
	return nil
}

// Winner returns the overall outcome so far.
func (m *Match) Winner() Outcome {
	switch {
	case m.playerScore > m.computerScore:
		return PlayerWins
	case m.computerScore > m.playerScore:
		return ComputerWins
	}
	return Tie
}

// ResultText is the closing line for a finished match.
func (m *Match) ResultText() string {
	switch m.Winner() {
	case PlayerWins:
		return m.player + " wins the game!"
	case ComputerWins:
		return "Computer wins the game!"
	}
	return "The game is a draw!"
}

// Snapshot copies the match for display.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		State:         m.state,
		Player:        m.player,
		Round:         m.round,
		Rounds:        m.settings.Rounds,
		Countdown:     m.countdown,
		PlayerScore:   m.playerScore,
		ComputerScore: m.computerScore,
		History:       make([]Round, len(m.history)),
	}
	copy(s.History, m.history)
	if m.state == Locked || m.state == Finished {
		s.Computer = m.computer
	}
	if n := len(m.history); n > 0 && m.state != Idle {
		last := m.history[n-1]
		s.Last = &last
	}
	if m.state == Finished {
		s.Result = m.ResultText()
	}
	return s
}
