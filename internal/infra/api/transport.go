package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// loggingTransport wraps the HTTP transport to log every outbound request.
type loggingTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

func newLoggingTransport(next http.RoundTripper, log *zap.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, log: log}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
		zap.Duration("duration", duration),
	}
	if err != nil {
		t.log.Warn("request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.log.Info("request", append(fields,
		zap.Int("status", resp.StatusCode),
		zap.Int64("bytes", resp.ContentLength),
	)...)
	return resp, nil
}
