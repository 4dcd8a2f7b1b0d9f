package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/platform/metrics"
	"go.uber.org/zap"
)

// ClientOptions configures an HTTP-backed provider. Both providers sit behind
// RapidAPI, so auth is the same pair of headers.
type ClientOptions struct {
	BaseURL    string
	APIKey     string
	APIHost    string
	Timeout    time.Duration
	HTTPClient *http.Client // optional; built from Timeout when nil
	Logger     *zap.Logger
}

func (o ClientOptions) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (o ClientOptions) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

var (
	errRateLimited   = errors.New("rate limited")
	errMissingStatus = errors.New("response carries no status")
)

type httpStatusError struct {
	code int
	body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, e.body)
}

type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// postJSON sends payload and decodes the 2xx response into out. A 429 is
// reported as errRateLimited, network failures as *transportError, other
// statuses as *httpStatusError.
func postJSON(ctx context.Context, provider model.ExecutionProvider, opts ClientOptions, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &transportError{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", opts.APIKey)
	}
	if opts.APIHost != "" {
		req.Header.Set("X-RapidAPI-Host", opts.APIHost)
	}

	start := time.Now()
	resp, err := opts.httpClient().Do(req)
	metrics.ExecutorLatency.WithLabelValues(string(provider)).Observe(time.Since(start).Seconds())
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return errRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpStatusError{code: resp.StatusCode, body: string(bytes.TrimSpace(snippet))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// failureResult turns a postJSON error into a normalized Result and records
// it.
func failureResult(provider model.ExecutionProvider, log *zap.Logger, err error) Result {
	var (
		tErr *transportError
		sErr *httpStatusError
	)
	switch {
	case errors.Is(err, errRateLimited):
		metrics.ExecutorRequests.WithLabelValues(string(provider), "rate_limited").Inc()
		log.Warn("execution provider rate limited", zap.String("provider", string(provider)))
		return rateLimitedResult()
	case errors.As(err, &tErr):
		metrics.ExecutorRequests.WithLabelValues(string(provider), "network_error").Inc()
		log.Warn("execution provider unreachable", zap.String("provider", string(provider)), zap.Error(err))
		return errorResult(NetworkErrorPrefix + "failed to reach the " + string(provider) + " execution service. Please check your connection and try again.")
	case errors.As(err, &sErr):
		metrics.ExecutorRequests.WithLabelValues(string(provider), "http_error").Inc()
		log.Warn("execution provider returned an error status",
			zap.String("provider", string(provider)), zap.Int("status", sErr.code), zap.String("body", sErr.body))
		return errorResult(fmt.Sprintf("%s%s execution service responded with HTTP %d", InternalErrorPrefix, provider, sErr.code))
	default:
		metrics.ExecutorRequests.WithLabelValues(string(provider), "malformed").Inc()
		log.Warn("execution provider returned a malformed response", zap.String("provider", string(provider)), zap.Error(err))
		return errorResult(InternalErrorPrefix + "malformed response from the " + string(provider) + " execution service")
	}
}
