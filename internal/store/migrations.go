package store

// runMigrations creates the schema. Every statement is idempotent.
func (s *Store) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			player_score INTEGER NOT NULL DEFAULT 0,
			computer_score INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('playing', 'finished', 'abandoned')),
			result TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME
		)`,

		// One row per decided round; snapshot is a JPEG thumbnail of the
		// player's pose when the round locked.
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			number INTEGER NOT NULL,
			player TEXT NOT NULL,
			computer TEXT NOT NULL,
			outcome TEXT NOT NULL CHECK(outcome IN ('tie', 'player', 'computer')),
			wrist_x REAL NOT NULL DEFAULT 0,
			wrist_y REAL NOT NULL DEFAULT 0,
			frame INTEGER NOT NULL DEFAULT 0,
			played_at DATETIME NOT NULL,
			snapshot BLOB,
			UNIQUE(match_id, number)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rounds_match_id ON rounds(match_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_started_at ON matches(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
