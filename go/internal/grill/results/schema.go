package results

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_results (
    id               UUID PRIMARY KEY,
    session_id       UUID NOT NULL UNIQUE,
    final_score      INTEGER NOT NULL,
    level            INTEGER NOT NULL DEFAULT 1,
    customers_served INTEGER NOT NULL DEFAULT 0,
    language         TEXT NOT NULL DEFAULT 'en',
    started_at       TIMESTAMPTZ,
    ended_at         TIMESTAMPTZ NOT NULL,
    metadata         JSONB,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_session_results_score
    ON session_results (final_score DESC, ended_at ASC);
`

// EnsureSchema creates the session_results table if it does not exist
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure session_results schema: %w", err)
	}
	return nil
}
