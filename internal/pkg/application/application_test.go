package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diwise/sensor-report/domain"
	"github.com/matryer/is"
)

var now = time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)

type storeMock struct {
	logs  domain.NodeLogs
	err   error
	calls int
}

func (s *storeMock) GetNodeLogs(ctx context.Context, nodeID string) (domain.NodeLogs, error) {
	s.calls++
	return s.logs, s.err
}

func TestGenerateWritesReportNamedByTimestamp(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	app := newTestApp(&storeMock{logs: domain.NodeLogs{"2024-01-01-00-00-00": record(80)}}, dir)

	path, err := app.Generate(context.Background(), "98:D3:71:F6:48:88", "day")
	is.NoErr(err)
	is.Equal(path, filepath.Join(dir, "data_2024_01_01_00_05_00.png"))

	info, err := os.Stat(path)
	is.NoErr(err)
	is.True(info.Size() > 0)
}

func TestComposeSelectsReadingsInsideTheWindow(t *testing.T) {
	is := is.New(t)

	app := newTestApp(&storeMock{logs: domain.NodeLogs{
		"2024-01-01-00-00-00": record(80),
		"2023-12-30-00-00-00": record(1),
	}}, t.TempDir())

	report, err := app.Compose(context.Background(), "node", "day")
	is.NoErr(err)

	ch4 := report.Panel(domain.CH4)
	is.Equal(len(ch4.Points), 1)
	is.Equal(ch4.Points[0].Value, 80.0)
	is.True(ch4.Points[0].Timestamp.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	is.True(ch4.Threshold.Value < ch4.Points[0].Value)
	is.Equal(report.Title(), "Readings for last day on 2024/01/01, 00:05:00")
}

func TestReadingExactlyOneCycleOldIsExcluded(t *testing.T) {
	is := is.New(t)

	store := &storeMock{logs: domain.NodeLogs{"2023-12-31-23-55-00": record(5)}}
	app := newTestApp(store, t.TempDir())

	report, err := app.Compose(context.Background(), "node", "cycle")
	is.NoErr(err)
	is.Equal(len(report.Panel(domain.CH4).Points), 0)

	report, err = app.Compose(context.Background(), "node", "hour")
	is.NoErr(err)
	is.Equal(len(report.Panel(domain.CH4).Points), 1)
}

func TestComposeIsIdempotent(t *testing.T) {
	is := is.New(t)

	app := newTestApp(&storeMock{logs: domain.NodeLogs{
		"2024-01-01-00-04-00": record(3),
		"2024-01-01-00-01-00": record(1),
		"2024-01-01-00-02-00": record(2),
	}}, t.TempDir())

	first, err := app.Compose(context.Background(), "node", "cycle")
	is.NoErr(err)
	second, err := app.Compose(context.Background(), "node", "cycle")
	is.NoErr(err)

	for _, q := range domain.Quantities {
		is.Equal(first.Panel(q).Points, second.Panel(q).Points)
	}
	is.Equal(first.Panel(domain.CO).Points[0].Value, 1.0)
	is.Equal(first.Panel(domain.CO).Points[2].Value, 3.0)
}

func TestUnknownIntervalFailsBeforeFetching(t *testing.T) {
	is := is.New(t)

	store := &storeMock{}
	dir := t.TempDir()
	app := newTestApp(store, dir)

	_, err := app.Generate(context.Background(), "node", "fortnight")

	var unknown domain.UnknownIntervalError
	is.True(errors.As(err, &unknown))
	is.Equal(store.calls, 0)
	assertNoFiles(is, dir)
}

func TestNodeWithoutDataWritesNoFile(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	app := newTestApp(&storeMock{}, dir)

	_, err := app.Generate(context.Background(), "00:00:00:00:00:00", "day")

	var notFound domain.NodeNotFoundError
	is.True(errors.As(err, &notFound))
	is.Equal(notFound.NodeID, "00:00:00:00:00:00")
	assertNoFiles(is, dir)
}

func TestStoreErrorsArePropagated(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	app := newTestApp(&storeMock{err: domain.NodeNotFoundError{NodeID: "x"}}, dir)

	_, err := app.Generate(context.Background(), "x", "day")

	var notFound domain.NodeNotFoundError
	is.True(errors.As(err, &notFound))
	assertNoFiles(is, dir)
}

func TestMissingHumidityWritesNoFile(t *testing.T) {
	is := is.New(t)

	bad := record(1)
	bad.Humidity = nil

	dir := t.TempDir()
	app := newTestApp(&storeMock{logs: domain.NodeLogs{
		"2024-01-01-00-00-00": record(2),
		"2024-01-01-00-01-00": bad,
	}}, dir)

	_, err := app.Generate(context.Background(), "node", "day")

	var malformed domain.MalformedReadingError
	is.True(errors.As(err, &malformed))
	is.Equal(malformed.Key, "2024-01-01-00-01-00")
	assertNoFiles(is, dir)
}

func TestWriteFailureIsFatal(t *testing.T) {
	is := is.New(t)

	dir := filepath.Join(t.TempDir(), "missing")
	app := newTestApp(&storeMock{logs: domain.NodeLogs{"2024-01-01-00-00-00": record(80)}}, dir)

	_, err := app.Generate(context.Background(), "node", "day")
	is.True(err != nil)

	_, statErr := os.Stat(dir)
	is.True(os.IsNotExist(statErr))
}

func newTestApp(store Store, dir string) *sensorReport {
	app := New(store, dir).(*sensorReport)
	app.location = time.UTC
	app.now = func() time.Time { return now }
	return app
}

func assertNoFiles(is *is.I, dir string) {
	entries, err := os.ReadDir(dir)
	is.NoErr(err)
	is.Equal(len(entries), 0) // no artifact should be written
}

func record(v float64) domain.Record {
	f := func(x float64) *float64 { return &x }
	return domain.Record{
		Temperature: f(v),
		Pressure:    f(1000 + v),
		CH4:         f(v),
		CO:          f(v),
		Humidity:    f(v),
	}
}
