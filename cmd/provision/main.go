// Command provision creates the MedTrack collections and their indexes in
// MongoDB. Running it again is harmless.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/harentsoaR/medtrack-api/internal/config"
	"github.com/harentsoaR/medtrack-api/internal/logging"
	"github.com/harentsoaR/medtrack-api/internal/store/mongostore"
)

func main() {
	cfg := config.Load()
	logging.Init("medtrack-provision", cfg.Server.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := mongostore.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer st.Close(context.Background())

	log.Info().
		Str("database", cfg.Mongo.Database).
		Str("users", cfg.Mongo.UsersTable).
		Str("appointments", cfg.Mongo.AppointmentsTable).
		Str("records", cfg.Mongo.RecordsTable).
		Msg("provisioning collections")

	if err := st.Provision(ctx); err != nil {
		log.Error().Err(err).Msg("Provisioning failed")
		st.Close(context.Background())
		os.Exit(1)
	}
	log.Info().Msg("All collections ready")
}
