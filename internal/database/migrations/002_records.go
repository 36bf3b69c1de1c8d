package migrations

import (
	"database/sql"
)

func init() {
	Register(Migration{
		Version: 2,
		Name:    "records",
		Up:      createRecords,
	})
}

// createRecords adds the local mirror of provider records. Calendar events,
// meetings and mail drafts share one table keyed by kind.
func createRecords(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK(kind IN ('calendar', 'meeting', 'mail')),
			provider_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			start_time DATETIME,
			end_time DATETIME,
			participants TEXT NOT NULL DEFAULT '[]',
			raw_payload TEXT NOT NULL DEFAULT '{}',
			link TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_user_kind ON records(user_id, kind)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_records_provider ON records(user_id, kind, provider_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
