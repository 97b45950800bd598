package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gimgrill/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries runs the session_results statements against a DBTX
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// NewTx binds Queries to a transaction, for use with sqlutil.Run
func NewTx(tx *sql.Tx) *Queries {
	return New(tx)
}

// SessionResult is one finished round
type SessionResult struct {
	ID              uuid.UUID             `json:"id"`
	SessionID       uuid.UUID             `json:"session_id"`
	FinalScore      int                   `json:"final_score"`
	Level           int                   `json:"level"`
	CustomersServed int                   `json:"customers_served"`
	Language        string                `json:"language"`
	StartedAt       *time.Time            `json:"started_at,omitempty"`
	EndedAt         time.Time             `json:"ended_at"`
	Metadata        pqtype.NullRawMessage `json:"metadata"`
}

type InsertSessionResultParams struct {
	ID              uuid.UUID
	SessionID       uuid.UUID
	FinalScore      int
	Level           int
	CustomersServed int
	Language        string
	StartedAt       sql.NullTime
	EndedAt         time.Time
	Metadata        pqtype.NullRawMessage
}

const insertSessionResult = `
INSERT INTO session_results (
    id, session_id, final_score, level, customers_served, language, started_at, ended_at, metadata
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
ON CONFLICT (session_id) DO NOTHING
`

// InsertSessionResult stores a result. A second insert for the same session
// is ignored and reports false.
func (q *Queries) InsertSessionResult(ctx context.Context, arg InsertSessionResultParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, insertSessionResult,
		arg.ID,
		arg.SessionID,
		arg.FinalScore,
		arg.Level,
		arg.CustomersServed,
		arg.Language,
		arg.StartedAt,
		arg.EndedAt,
		arg.Metadata,
	)
	if err != nil {
		return false, fmt.Errorf("insert session result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert session result: %w", err)
	}
	return n == 1, nil
}

const listTopResults = `
SELECT id, session_id, final_score, level, customers_served, language, started_at, ended_at, metadata
FROM session_results
ORDER BY final_score DESC, ended_at ASC
LIMIT $1
`

// ListTopResults returns the best rounds, highest score first
func (q *Queries) ListTopResults(ctx context.Context, limit int) ([]SessionResult, error) {
	rows, err := q.db.QueryContext(ctx, listTopResults, limit)
	if err != nil {
		return nil, fmt.Errorf("list top results: %w", err)
	}
	defer rows.Close()

	var items []SessionResult
	for rows.Next() {
		var (
			i         SessionResult
			startedAt sql.NullTime
		)
		if err := rows.Scan(
			&i.ID,
			&i.SessionID,
			&i.FinalScore,
			&i.Level,
			&i.CustomersServed,
			&i.Language,
			&startedAt,
			&i.EndedAt,
			&i.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		i.StartedAt = sqlutil.FromSqlTime(startedAt)
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list top results: %w", err)
	}
	return items, nil
}
