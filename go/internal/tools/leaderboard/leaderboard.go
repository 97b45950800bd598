package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/gimgrill/go/internal/dbconfig"
)

// Row is one line of the leaderboard
type Row struct {
	SessionID       string
	FinalScore      int
	CustomersServed int
	Language        string
	EndedAt         time.Time
}

func main() {
	limit := flag.Int("limit", 10, "number of sessions to show")
	flag.Parse()

	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "limit must be positive")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	rows, err := topRows(ctx, pool, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query leaderboard: %v\n", err)
		os.Exit(1)
	}

	if err := render(os.Stdout, rows); err != nil {
		fmt.Fprintf(os.Stderr, "write leaderboard: %v\n", err)
		os.Exit(1)
	}
}

func topRows(ctx context.Context, pool *pgxpool.Pool, limit int) ([]Row, error) {
	rows, err := pool.Query(ctx, `
        SELECT session_id::text, final_score, customers_served, language, ended_at
        FROM session_results
        ORDER BY final_score DESC, ended_at ASC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var r Row
		err := row.Scan(&r.SessionID, &r.FinalScore, &r.CustomersServed, &r.Language, &r.EndedAt)
		return r, err
	})
}

func render(w io.Writer, rows []Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no sessions recorded yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tSERVED\tLANG\tENDED\tSESSION")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\t%s\n",
			i+1, r.FinalScore, r.CustomersServed, r.Language,
			r.EndedAt.UTC().Format(time.RFC3339), r.SessionID)
	}
	return tw.Flush()
}
