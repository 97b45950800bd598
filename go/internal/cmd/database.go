package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/mcdev12/gimgrill/go/internal/dbconfig"
	"github.com/mcdev12/gimgrill/go/internal/grill/results"
	"github.com/rs/zerolog/log"
)

// setupDatabase opens the results store and makes sure its table exists
func setupDatabase(ctx context.Context, dbConfig dbconfig.Config) (*sql.DB, error) {
	database, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := results.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return nil, err
	}

	log.Info().Str("database", dbConfig.String()).Msg("connected to results database")
	return database, nil
}
