package out

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	trackingout "worktrack/internal/modules/tracking/port/out"
	"worktrack/internal/platform/tx"
)

// SQLiteStateStore is a key-value table for the persisted tracking state.
type SQLiteStateStore struct {
	db *sql.DB
}

func NewSQLiteStateStore(ctx context.Context, db *sql.DB) (trackingout.StateStore, error) {
	store := &SQLiteStateStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStateStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tracking_state (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create tracking_state table: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) Load(ctx context.Context, keys []string) (map[string]string, error) {
	out := map[string]string{}
	if len(keys) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		args = append(args, key)
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT key, value FROM tracking_state WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("load tracking state: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan tracking state: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracking state: %w", err)
	}
	return out, nil
}

// Apply writes set and deletes clear. Outside a caller's transaction it
// opens its own so the record never shows a half-applied variant.
func (s *SQLiteStateStore) Apply(ctx context.Context, set map[string]string, clear []string) error {
	return tx.NewSQLManager(s.db).Within(ctx, func(ctx context.Context) error {
		exec := tx.Executor(ctx, s.db)
		for key, value := range set {
			_, err := exec.ExecContext(ctx,
				`INSERT INTO tracking_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
				key, value)
			if err != nil {
				return fmt.Errorf("write %s: %w", key, err)
			}
		}
		for _, key := range clear {
			if _, err := exec.ExecContext(ctx, `DELETE FROM tracking_state WHERE key = ?`, key); err != nil {
				return fmt.Errorf("clear %s: %w", key, err)
			}
		}
		return nil
	})
}
