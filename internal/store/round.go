package store

import (
	"database/sql"
	"errors"
	"time"
)

// Round is one decided round of a stored match. Gestures and outcome are
// kept by name.
type Round struct {
	MatchID     string    `json:"match_id"`
	Number      int       `json:"number"`
	Player      string    `json:"player"`
	Computer    string    `json:"computer"`
	Outcome     string    `json:"outcome"`
	WristX      float64   `json:"wrist_x"`
	WristY      float64   `json:"wrist_y"`
	Frame       uint64    `json:"frame"`
	PlayedAt    time.Time `json:"played_at"`
	HasSnapshot bool      `json:"has_snapshot"`
}

// RoundRepository provides operations for rounds and their snapshots.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

// Add records a round, with an optional JPEG snapshot. The match must exist.
func (r *RoundRepository) Add(rd *Round, snapshot []byte) error {
	if rd.PlayedAt.IsZero() {
		rd.PlayedAt = time.Now()
	}
	var blob any
	if len(snapshot) > 0 {
		blob = snapshot
	}

	_, err := r.db.Exec(
		`INSERT INTO rounds (match_id, number, player, computer, outcome, wrist_x, wrist_y, frame, played_at, snapshot)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.MatchID, rd.Number, rd.Player, rd.Computer, rd.Outcome, rd.WristX, rd.WristY, int64(rd.Frame), rd.PlayedAt, blob,
	)
	if err != nil {
		return err
	}
	rd.HasSnapshot = blob != nil
	return nil
}

// ListByMatch returns the rounds of a match in play order.
func (r *RoundRepository) ListByMatch(matchID string) ([]*Round, error) {
	rows, err := r.db.Query(
		`SELECT match_id, number, player, computer, outcome, wrist_x, wrist_y, frame, played_at, snapshot IS NOT NULL
		 FROM rounds WHERE match_id = ? ORDER BY number`,
		matchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		rd := &Round{}
		var frame int64
		err := rows.Scan(&rd.MatchID, &rd.Number, &rd.Player, &rd.Computer, &rd.Outcome,
			&rd.WristX, &rd.WristY, &frame, &rd.PlayedAt, &rd.HasSnapshot)
		if err != nil {
			return nil, err
		}
		rd.Frame = uint64(frame)
		rounds = append(rounds, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}

// SetSnapshot replaces the snapshot of a round.
func (r *RoundRepository) SetSnapshot(matchID string, number int, snapshot []byte) error {
	result, err := r.db.Exec(
		`UPDATE rounds SET snapshot = ? WHERE match_id = ? AND number = ?`,
		snapshot, matchID, number,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// Snapshot returns the JPEG snapshot of a round. A round without one, or a
// missing round, is ErrNotFound.
func (r *RoundRepository) Snapshot(matchID string, number int) ([]byte, error) {
	var data []byte
	err := r.db.QueryRow(
		`SELECT snapshot FROM rounds WHERE match_id = ? AND number = ?`,
		matchID, number,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return data, nil
}
