package application

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diwise/sensor-report/domain"
	"github.com/diwise/sensor-report/internal/pkg/application/chart"
	"github.com/diwise/sensor-report/internal/pkg/application/interval"
	"github.com/diwise/sensor-report/internal/pkg/application/readings"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
)

// Store is the remote source of a node's logged readings.
type Store interface {
	GetNodeLogs(ctx context.Context, nodeID string) (domain.NodeLogs, error)
}

type SensorReport interface {
	// Compose fetches, filters and bins the readings of a node into a report
	// without rendering it.
	Compose(ctx context.Context, nodeID, intervalName string) (*chart.Report, error)
	// Generate composes a report, renders it and writes the image to the
	// output directory. It returns the path of the written file.
	Generate(ctx context.Context, nodeID, intervalName string) (string, error)
}

type sensorReport struct {
	store     Store
	outputDir string
	location  *time.Location
	now       func() time.Time
}

var tracer = otel.Tracer("sensor-report/app")

func New(store Store, outputDir string) SensorReport {
	return &sensorReport{
		store:     store,
		outputDir: outputDir,
		location:  time.Local,
		now:       time.Now,
	}
}

func (a *sensorReport) Compose(ctx context.Context, nodeID, intervalName string) (*chart.Report, error) {
	var err error

	ctx, span := tracer.Start(ctx, "compose-report")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx).With().Str("node", nodeID).Str("interval", intervalName).Logger()

	var window time.Duration
	window, err = interval.Resolve(intervalName)
	if err != nil {
		return nil, err
	}

	logger.Debug().Msg("fetching node logs")

	var logs domain.NodeLogs
	logs, err = a.store.GetNodeLogs(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		err = domain.NodeNotFoundError{NodeID: nodeID}
		return nil, err
	}

	logger.Debug().Int("count", len(logs)).Msg("filtering readings")

	var all []domain.Reading
	all, err = readings.Parse(logs, a.location)
	if err != nil {
		return nil, err
	}

	now := a.now().In(a.location)
	recent := readings.Recent(all, now, window)

	logger.Info().Int("total", len(all)).Int("recent", len(recent)).Msg("readings selected for report")

	return chart.Compose(intervalName, window, now, recent), nil
}

func (a *sensorReport) Generate(ctx context.Context, nodeID, intervalName string) (string, error) {
	report, err := a.Compose(ctx, nodeID, intervalName)
	if err != nil {
		return "", err
	}

	_, span := tracer.Start(ctx, "render-report")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx)
	logger.Debug().Str("node", nodeID).Msg("rendering report")

	var buf bytes.Buffer
	err = chart.Render(report, &buf)
	if err != nil {
		return "", err
	}

	path := filepath.Join(a.outputDir, report.Filename())

	err = writeFile(path, buf.Bytes())
	if err != nil {
		return "", err
	}

	return path, nil
}

func writeFile(path string, b []byte) error {
	err := os.WriteFile(path, b, 0644)
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
