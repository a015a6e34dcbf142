package main

import (
	"context"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/go-chi/chi"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/diwise/sensor-report/internal/pkg/application"
	"github.com/diwise/sensor-report/internal/pkg/infrastructure/firebase"
	"github.com/diwise/sensor-report/internal/pkg/infrastructure/router"
)

const serviceName string = "sensor-report-server"

func main() {
	_, logger, cleanup := initialize(context.Background())
	defer cleanup()

	databaseURL := env.GetVariableOrDie(logger, "FIREBASE_DATABASE_URL", "firebase database url")
	auth := env.GetVariableOrDefault(logger, "FIREBASE_AUTH", "")
	logsPath := env.GetVariableOrDefault(logger, "FIREBASE_LOGS_PATH", "logs")
	port := env.GetVariableOrDefault(logger, "SERVICE_PORT", "8080")

	store := firebase.New(databaseURL, logsPath, auth)
	app := application.New(store, "")

	r := router.SetupRouter(chi.NewRouter(), app, logger)

	if err := r.Start(port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start router")
	}
}

// initialize loads an optional .env file and then sets up logging and tracing,
// so that OTEL settings in .env are seen by o11y.
func initialize(ctx context.Context) (context.Context, zerolog.Logger, func()) {
	envErr := godotenv.Load()

	ctx, logger, cleanup := o11y.Init(ctx, serviceName, buildinfo.SourceVersion())

	if envErr != nil {
		logger.Debug().Msg("no .env file found, relying on environment variables")
	}

	return ctx, logger, cleanup
}
