package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"payos/internal/pkg/logger"
)

// loggingTransport logs each round trip with credential headers redacted.
type loggingTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	if e := t.logger.Debug(); e.Enabled() {
		e.Str("method", req.Method).
			Str("url", req.URL.String()).
			Dict("headers", logger.HeaderDict(req.Header)).
			Msg("sending request")
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		t.logger.Warn().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("elapsed", time.Since(start)).
			Msg("request failed")
		return nil, err
	}

	if e := t.logger.Debug(); e.Enabled() {
		e.Int("status", resp.StatusCode).
			Str("url", req.URL.String()).
			Dur("elapsed", time.Since(start)).
			Dict("headers", logger.HeaderDict(resp.Header)).
			Msg("received response")
	}
	return resp, nil
}
