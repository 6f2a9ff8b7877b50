package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrTimeout indicates the gateway did not respond within the configured deadline.
var ErrTimeout = errors.New("execution gateway timed out")

// TestCase is one input/output pair forwarded to the gateway.
type TestCase struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	IsHidden bool   `json:"isHidden"`
}

// RunRequest is the gateway's execution contract.
type RunRequest struct {
	Code      string     `json:"code"`
	Language  string     `json:"language"`
	TestCases []TestCase `json:"testCases"`
}

// TestCaseResult is the per-case outcome reported by the gateway.
type TestCaseResult struct {
	Passed   bool   `json:"passed"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
	Error    string `json:"error,omitempty"`
}

// RunResponse is the gateway's reply: per-case results plus an opaque
// diagnostic blob that is persisted verbatim.
type RunResponse struct {
	Results       []TestCaseResult       `json:"results"`
	ExecutionInfo map[string]interface{} `json:"executionInfo"`
}

// Client executes code against test cases via the external judge service.
type Client interface {
	Run(ctx context.Context, req RunRequest) (RunResponse, error)
}

// Config holds HTTP client construction options.
type Config struct {
	URL     string
	Timeout time.Duration
}

type httpClient struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewHTTPClient builds a judge client that POSTs to the configured gateway URL.
func NewHTTPClient(cfg Config, logger zerolog.Logger) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpClient{
		url:     cfg.URL,
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger.With().Str("component", "judge_client").Logger(),
		tracer:  otel.Tracer("zenith/judge"),
	}
}

func (c *httpClient) Run(ctx context.Context, req RunRequest) (RunResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "judge.run", trace.WithAttributes(
		attribute.String("judge.language", req.Language),
		attribute.Int("judge.test_cases", len(req.TestCases)),
	))
	defer span.End()

	body, err := json.Marshal(req)
	if err != nil {
		return RunResponse{}, fmt.Errorf("encode execution request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return RunResponse{}, fmt.Errorf("build execution request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return RunResponse{}, ErrTimeout
		}
		return RunResponse{}, fmt.Errorf("execution gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn().Int("status", resp.StatusCode).Msg("execution gateway returned non-200")
		return RunResponse{}, fmt.Errorf("execution gateway returned status %d: %s", resp.StatusCode, string(payload))
	}

	var result RunResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return RunResponse{}, fmt.Errorf("decode execution response: %w", err)
	}

	return result, nil
}
