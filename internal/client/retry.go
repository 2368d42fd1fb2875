package client

import (
	"bytes"
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"payos/internal/pkg/errors"
)

const (
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 8 * time.Second
	maxRetryAfter     = 60 * time.Second
)

type response struct {
	status int
	header http.Header
	body   []byte
}

// execute builds and sends the request, retrying connection failures and
// 408, 429 and 5xx responses up to MaxRetries times.
func (c *Client) execute(ctx context.Context, opts RequestOptions) (*response, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	target, err := c.buildURL(opts.Path, opts.Query)
	if err != nil {
		return nil, err
	}
	body, sig, err := c.prepareBody(opts)
	if err != nil {
		return nil, err
	}
	header := c.buildHeaders(opts)
	if sig != "" {
		header.Set(signatureHeader, sig)
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, opts.Method, target, bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(errors.KindConfiguration, "cannot build request", err)
		}
		req.Header = header.Clone()

		resp, err := c.httpClient.Do(req)
		if err == nil {
			var data []byte
			data, err = io.ReadAll(resp.Body)
			resp.Body.Close()
			if err == nil {
				if !retryableStatus(resp.StatusCode) || attempt >= c.cfg.MaxRetries {
					return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
				}
				delay := retryDelay(resp.Header, attempt)
				c.logger.Info().
					Str("method", opts.Method).
					Str("path", opts.Path).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Dur("delay", delay).
					Msg("retrying request")
				if err := c.sleep(ctx, delay); err != nil {
					return nil, transportError(ctx, err)
				}
				continue
			}
		}

		if ctx.Err() != nil || attempt >= c.cfg.MaxRetries {
			return nil, transportError(ctx, err)
		}
		delay := backoff(attempt)
		c.logger.Info().
			Err(err).
			Str("method", opts.Method).
			Str("path", opts.Path).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("retrying request after connection error")
		if err := c.sleep(ctx, delay); err != nil {
			return nil, transportError(ctx, err)
		}
	}
}

func retryableStatus(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

// retryDelay prefers the server's Retry-After and falls back to backoff.
func retryDelay(h http.Header, attempt int) time.Duration {
	if d, ok := parseRetryAfter(h.Get("Retry-After"), time.Now()); ok {
		return d
	}
	return backoff(attempt)
}

// parseRetryAfter reads delta-seconds or an HTTP date, capped at 60s.
func parseRetryAfter(raw string, now time.Time) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	var d time.Duration
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, false
		}
		secs = min(max(secs, 0), maxRetryAfter.Seconds())
		d = time.Duration(secs * float64(time.Second))
	} else if at, err := http.ParseTime(raw); err == nil {
		d = at.Sub(now)
	} else {
		return 0, false
	}

	if d < 0 {
		d = 0
	}
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}

// backoff is 0.5s doubled per attempt, capped at 8s, minus up to 25% jitter.
func backoff(attempt int) time.Duration {
	d := maxRetryDelay
	if attempt < 5 {
		d = min(initialRetryDelay<<attempt, maxRetryDelay)
	}
	jitter := 1 - 0.25*rand.Float64()
	return time.Duration(float64(d) * jitter)
}

func transportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return errors.Wrap(errors.KindTimeout, "request timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return errors.Wrap(errors.KindConnection, "request cancelled", err)
	}
	return errors.Wrap(errors.KindConnection, "connection error", err)
}
