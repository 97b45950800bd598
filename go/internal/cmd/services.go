package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcdev12/gimgrill/go/internal/dbconfig"
	"github.com/mcdev12/gimgrill/go/internal/grill"
	"github.com/mcdev12/gimgrill/go/internal/grill/gateway"
	"github.com/mcdev12/gimgrill/go/internal/grill/orchestrator"
	"github.com/mcdev12/gimgrill/go/internal/grill/publisher"
	"github.com/mcdev12/gimgrill/go/internal/grill/results"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Gateway      *gateway.Service
	Results      *results.Handler // nil unless RESULTS_ENABLED

	jetStream *publisher.JetStreamPublisher
	db        *sql.DB
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Session → publishers → orchestrator → gateway.
	// The gateway needs the orchestrator, so its broadcaster joins the fan-out last.
	services := &Services{}
	fanout := publisher.NewFanout(publisher.NewLogPublisher())

	if getEnvAsBool("NATS_ENABLED", false) {
		js, err := publisher.NewJetStreamPublisher(config.jetStreamConfig(getEnv("NATS_URL", "nats://localhost:4222")))
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		services.jetStream = js
		fanout.Add(js)
	}

	if getEnvAsBool("RESULTS_ENABLED", false) {
		db, err := setupDatabase(ctx, dbconfig.NewConfigFromEnv())
		if err != nil {
			services.Close()
			return nil, err
		}
		services.db = db
		services.Results = results.NewHandler(db)
		fanout.Add(results.NewRecorder(db))
	}

	session := grill.NewSession(config.Game)
	services.Orchestrator = orchestrator.NewOrchestrator(session, fanout)
	services.Gateway = gateway.NewService(gateway.DefaultConfig(), services.Orchestrator)
	fanout.Add(services.Gateway.Broadcaster())

	log.Info().
		Int("publishers", fanout.Len()).
		Int("session_length_sec", config.Game.SessionLength).
		Dur("tick_period", config.Game.TickPeriod).
		Msg("services wired")

	return services, nil
}

// Close stops ticking first so nothing publishes into closed sinks
func (s *Services) Close() {
	if s.Orchestrator != nil {
		s.Orchestrator.Close()
	}
	if s.jetStream != nil {
		if err := s.jetStream.Close(); err != nil {
			log.Error().Err(err).Msg("failed to drain NATS connection")
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}
