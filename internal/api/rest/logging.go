package rest

import (
	"net/http"
	"time"

	"github.com/ameyamatmk/voice-diary/internal/logger"
)

// LoggingTransport is an http.RoundTripper that logs relying party calls.
// Bodies and cookies are never logged.
type LoggingTransport struct {
	next   http.RoundTripper
	logger *logger.Logger
}

// NewLoggingTransport wraps next with request logging.
func NewLoggingTransport(next http.RoundTripper, logger *logger.Logger) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingTransport{next: next, logger: logger}
}

// RoundTrip logs method, path, duration and status for each request.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logger.Debug("HTTP request started",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(requestIDHeader))

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("HTTP request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error())
		return nil, err
	}

	t.logger.Info("HTTP request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"duration_ms", duration.Milliseconds(),
		"status", resp.StatusCode)

	return resp, nil
}
