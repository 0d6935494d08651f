package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the lifecycle state of a stored match.
type MatchStatus string

const (
	StatusPlaying   MatchStatus = "playing"
	StatusFinished  MatchStatus = "finished"
	StatusAbandoned MatchStatus = "abandoned"
)

// Match is one game session.
type Match struct {
	ID            string      `json:"id"`
	Player        string      `json:"player"`
	Rounds        int         `json:"rounds"`
	PlayerScore   int         `json:"player_score"`
	ComputerScore int         `json:"computer_score"`
	Status        MatchStatus `json:"status"`
	Result        string      `json:"result,omitempty"`
	StartedAt     time.Time   `json:"started_at"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty"`
	Played        []*Round    `json:"played,omitempty"`
}

// MatchRepository provides CRUD operations for matches.
type MatchRepository struct {
	db *sql.DB
}

// Matches returns the match repository for this store.
func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{db: s.db}
}

// Create inserts m as a playing match. An empty ID is filled with a new UUID.
func (r *MatchRepository) Create(m *Match) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now()
	}
	if m.Status == "" {
		m.Status = StatusPlaying
	}

	_, err := r.db.Exec(
		`INSERT INTO matches (id, player, rounds, player_score, computer_score, status, result, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Player, m.Rounds, m.PlayerScore, m.ComputerScore, string(m.Status), m.Result, m.StartedAt,
	)
	return err
}

// GetByID retrieves a match with its rounds.
func (r *MatchRepository) GetByID(id string) (*Match, error) {
	m, err := scanMatch(r.db.QueryRow(
		`SELECT id, player, rounds, player_score, computer_score, status, result, started_at, finished_at
		 FROM matches WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m.Played, err = (&RoundRepository{db: r.db}).ListByMatch(id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List retrieves all matches, newest first, without their rounds.
func (r *MatchRepository) List() ([]*Match, error) {
	rows, err := r.db.Query(
		`SELECT id, player, rounds, player_score, computer_score, status, result, started_at, finished_at
		 FROM matches ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

// UpdateScore records the running score of a match.
func (r *MatchRepository) UpdateScore(id string, playerScore, computerScore int) error {
	result, err := r.db.Exec(
		`UPDATE matches SET player_score = ?, computer_score = ? WHERE id = ?`,
		playerScore, computerScore, id,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Finish closes a match with its final score and result text.
func (r *MatchRepository) Finish(id string, playerScore, computerScore int, resultText string) error {
	result, err := r.db.Exec(
		`UPDATE matches SET player_score = ?, computer_score = ?, status = ?, result = ?, finished_at = ?
		 WHERE id = ?`,
		playerScore, computerScore, string(StatusFinished), resultText, time.Now(), id,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Abandon marks a match as abandoned.
func (r *MatchRepository) Abandon(id string) error {
	result, err := r.db.Exec(
		`UPDATE matches SET status = ?, finished_at = ? WHERE id = ?`,
		string(StatusAbandoned), time.Now(), id,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Delete removes a match and, by cascade, its rounds.
func (r *MatchRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (*Match, error) {
	m := &Match{}
	var (
		status   string
		finished sql.NullTime
	)
	err := row.Scan(&m.ID, &m.Player, &m.Rounds, &m.PlayerScore, &m.ComputerScore,
		&status, &m.Result, &m.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	m.Status = MatchStatus(status)
	if finished.Valid {
		t := finished.Time
		m.FinishedAt = &t
	}
	return m, nil
}
