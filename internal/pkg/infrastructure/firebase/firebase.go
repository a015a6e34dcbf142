package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/diwise/sensor-report/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// Client reads sensor logs from a Firebase Realtime Database over its REST API.
type Client interface {
	GetNodeLogs(ctx context.Context, nodeID string) (domain.NodeLogs, error)
}

type client struct {
	databaseURL string
	logsPath    string
	auth        string
	httpClient  http.Client
}

var tracer = otel.Tracer("sensor-report/firebase")

func New(databaseURL, logsPath, auth string) Client {
	return &client{
		databaseURL: strings.TrimSuffix(databaseURL, "/"),
		logsPath:    strings.Trim(logsPath, "/"),
		auth:        auth,
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *client) nodeURL(nodeID string) string {
	u := fmt.Sprintf("%s/%s/node_%s.json", c.databaseURL, c.logsPath, url.PathEscape(nodeID))
	if c.auth != "" {
		u += "?auth=" + url.QueryEscape(c.auth)
	}
	return u
}

func (c *client) GetNodeLogs(ctx context.Context, nodeID string) (domain.NodeLogs, error) {
	var err error

	ctx, span := tracer.Start(ctx, "get-node-logs")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx).With().Str("node", nodeID).Logger()

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.nodeURL(nodeID), nil)
	if err != nil {
		err = fmt.Errorf("failed to create request: %w", err)
		return nil, err
	}
	req.Header.Add("Accept", "application/json")

	var resp *http.Response
	resp, err = c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to retrieve node logs: %w", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("request failed, expected status code %d, got %d", http.StatusOK, resp.StatusCode)
		return nil, err
	}

	var body []byte
	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body as bytes: %w", err)
		return nil, err
	}

	var raw map[string]json.RawMessage
	err = json.Unmarshal(body, &raw)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal node logs: %w", err)
		return nil, err
	}

	// the database answers null for a path without data
	if len(raw) == 0 {
		err = domain.NodeNotFoundError{NodeID: nodeID}
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	logs := make(domain.NodeLogs, len(raw))
	for _, key := range keys {
		value := raw[key]
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			err = domain.MalformedReadingError{Key: key, Reason: "record is null"}
			return nil, err
		}

		var rec domain.Record
		if decodeErr := json.Unmarshal(value, &rec); decodeErr != nil {
			err = domain.MalformedReadingError{Key: key, Reason: decodeErr.Error()}
			return nil, err
		}
		logs[key] = rec
	}

	logger.Debug().Int("count", len(logs)).Msg("retrieved node logs")

	return logs, nil
}
