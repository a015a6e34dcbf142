package main

import (
	"context"
	"fmt"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/diwise/sensor-report/internal/pkg/application"
	"github.com/diwise/sensor-report/internal/pkg/application/interval"
	"github.com/diwise/sensor-report/internal/pkg/infrastructure/firebase"
)

const serviceName string = "sensor-report"

func main() {
	if len(os.Args) < 3 {
		printUsage()
		return
	}

	nodeID, intervalName := os.Args[1], os.Args[2]

	ctx, logger, cleanup := initialize(context.Background())
	defer cleanup()

	databaseURL := env.GetVariableOrDie(logger, "FIREBASE_DATABASE_URL", "firebase database url")
	auth := env.GetVariableOrDefault(logger, "FIREBASE_AUTH", "")
	logsPath := env.GetVariableOrDefault(logger, "FIREBASE_LOGS_PATH", "logs")
	outputDir := env.GetVariableOrDefault(logger, "REPORT_OUTPUT_DIR", ".")

	store := firebase.New(databaseURL, logsPath, auth)
	app := application.New(store, outputDir)

	path, err := app.Generate(ctx, nodeID, intervalName)
	if err != nil {
		logger.Error().Err(err).Str("node", nodeID).Str("interval", intervalName).Msg("failed to generate report")
		cleanup()
		os.Exit(1)
	}

	logger.Info().Str("file", path).Msg("job done")
}

func printUsage() {
	fmt.Println("Correct usage:")
	fmt.Printf("%s NODE_MAC INTERVAL\n", serviceName)
	fmt.Printf("INTERVAL: %s(10 minutes), %s, %s, %s, %s\n", interval.Cycle, interval.Hour, interval.Day, interval.Week, interval.Month)
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
