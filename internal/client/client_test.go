package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
	"payos/internal/platform/config"
)

const (
	testClientID    = "test-client-id"
	testAPIKey      = "test-api-key"
	testChecksumKey = "test_checksum_key"
)

type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
	delays   []time.Duration
}

func (r *recorder) add(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req.Clone(context.Background()))
	r.bodies = append(r.bodies, body)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) last() (*http.Request, []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.requests)
	return r.requests[n-1], r.bodies[n-1]
}

func testConfig(baseURL string) config.PayOSConfig {
	cfg := config.DefaultPayOS()
	cfg.ClientID = testClientID
	cfg.APIKey = testAPIKey
	cfg.ChecksumKey = testChecksumKey
	cfg.BaseURL = baseURL
	return cfg
}

// newTestClient serves handler and returns a client whose retry sleeps are recorded, not slept.
func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.PayOSConfig)) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg,
		WithLogger(zerolog.Nop()),
		withSleeper(func(ctx context.Context, d time.Duration) error {
			rec.mu.Lock()
			rec.delays = append(rec.delays, d)
			rec.mu.Unlock()
			return ctx.Err()
		}),
	)
	require.NoError(t, err)
	return c, rec
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"code": "00", "desc": "success", "data": data})
}

func TestNewRequiresCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.PayOSConfig)
		want   string
	}{
		{"client id", func(c *config.PayOSConfig) { c.ClientID = "" }, "PAYOS_CLIENT_ID"},
		{"api key", func(c *config.PayOSConfig) { c.APIKey = "" }, "PAYOS_API_KEY"},
		{"checksum key", func(c *config.PayOSConfig) { c.ChecksumKey = "" }, "PAYOS_CHECKSUM_KEY"},
		{"negative timeout", func(c *config.PayOSConfig) { c.Timeout = -time.Second }, "timeout"},
		{"negative retries", func(c *config.PayOSConfig) { c.MaxRetries = -1 }, "max retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("http://localhost")
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, errors.Is(err, errors.ErrConfiguration))
		})
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New(config.PayOSConfig{ClientID: "a", APIKey: "b", ChecksumKey: "c"})
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBaseURL, c.Config().BaseURL)
	assert.Equal(t, config.DefaultTimeout, c.Config().Timeout)
	assert.Equal(t, 0, c.Config().MaxRetries)
	assert.NotNil(t, c.PaymentRequests)
	assert.NotNil(t, c.PaymentRequests.Invoices)
	assert.NotNil(t, c.Payouts)
	assert.NotNil(t, c.Payouts.Batch)
	assert.NotNil(t, c.PayoutsAccount)
	assert.NotNil(t, c.Webhooks)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("PAYOS_CLIENT_ID", "env-client")
	t.Setenv("PAYOS_API_KEY", "env-key")
	t.Setenv("PAYOS_CHECKSUM_KEY", "env-checksum")
	t.Setenv("PAYOS_PARTNER_CODE", "partner")
	t.Setenv("PAYOS_MAX_RETRIES", "4")

	c, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-client", c.Config().ClientID)
	assert.Equal(t, "partner", c.Config().PartnerCode)
	assert.Equal(t, 4, c.Config().MaxRetries)
	assert.Equal(t, "env-checksum", c.ChecksumKey())
}

func TestUserAgent(t *testing.T) {
	assert.True(t, strings.HasPrefix(userAgent(), "PayOS-Go/"+Version+" (go"))
}

func TestRequestHeaders(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{})
	}, func(cfg *config.PayOSConfig) { cfg.PartnerCode = "partner-1" })

	require.NoError(t, c.Get(context.Background(), "/test", nil, WithHeader("x-custom", "custom-value")))

	req, _ := rec.last()
	assert.Equal(t, testClientID, req.Header.Get("x-client-id"))
	assert.Equal(t, testAPIKey, req.Header.Get("x-api-key"))
	assert.Equal(t, "application/json", req.Header.Get("content-type"))
	assert.Contains(t, req.Header.Get("user-agent"), "PayOS")
	assert.Equal(t, "partner-1", req.Header.Get("x-partner-code"))
	assert.Equal(t, "custom-value", req.Header.Get("x-custom"))
}

func TestRequestWithoutPartnerCode(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, nil)
	})

	require.NoError(t, c.Get(context.Background(), "/test", nil))
	req, _ := rec.last()
	_, ok := req.Header["X-Partner-Code"]
	assert.False(t, ok)
}

func TestBuildURLQuery(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{})
	})

	var status *string
	err := c.Get(context.Background(), "v1/payouts", nil, WithQuery(map[string]any{
		"limit":  10,
		"offset": 0,
		"skip":   nil,
		"status": status,
		"ids":    []string{"id1", "id2"},
		"filter": map[string]any{"status": "SUCCEEDED"},
		"name":   "a b",
	}))
	require.NoError(t, err)

	req, _ := rec.last()
	assert.Equal(t, "/v1/payouts", req.URL.Path)
	assert.Equal(t,
		"filter=%7B%22status%22%3A%22SUCCEEDED%22%7D&ids=%5B%22id1%22%2C%22id2%22%5D&limit=10&name=a+b&offset=0",
		req.URL.RawQuery)
}

func TestBuildURLEmptyQuery(t *testing.T) {
	c := &Client{cfg: testConfig("https://api.example.com")}

	u, err := c.buildURL("/test", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/test", u)

	u, err = c.buildURL("/test", map[string]any{"a": nil})
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/test", u)
}

func TestRequestBodies(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"map", map[string]any{"field": "value"}, `{"field":"value"}`},
		{"string", `{"raw":true}`, `{"raw":true}`},
		{"bytes", []byte("binary"), "binary"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, map[string]any{})
			})
			require.NoError(t, c.Post(context.Background(), "/test", tt.body, nil))
			_, body := rec.last()
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestHTTPMethods(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{"method": r.Method})
	})
	ctx := context.Background()

	var out map[string]string
	require.NoError(t, c.Get(ctx, "/x", &out))
	assert.Equal(t, http.MethodGet, out["method"])
	require.NoError(t, c.Post(ctx, "/x", map[string]any{}, &out))
	assert.Equal(t, http.MethodPost, out["method"])
	require.NoError(t, c.Put(ctx, "/x", map[string]any{}, &out))
	assert.Equal(t, http.MethodPut, out["method"])
	require.NoError(t, c.Patch(ctx, "/x", map[string]any{}, &out))
	assert.Equal(t, http.MethodPatch, out["method"])
	require.NoError(t, c.Delete(ctx, "/x", &out))
	assert.Equal(t, http.MethodDelete, out["method"])
	assert.Equal(t, 5, rec.count())
}

func TestRetryOnTransientStatus(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusTooManyRequests, http.StatusRequestTimeout, http.StatusBadGateway} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			calls := 0
			c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				if calls == 1 {
					w.WriteHeader(status)
					return
				}
				writeEnvelope(w, map[string]any{"result": "success"})
			})

			var out map[string]string
			require.NoError(t, c.Get(context.Background(), "/test", &out))
			assert.Equal(t, "success", out["result"])
			assert.Equal(t, 2, rec.count())
			require.Len(t, rec.delays, 1)
			assert.LessOrEqual(t, rec.delays[0], initialRetryDelay)
			assert.Greater(t, rec.delays[0], initialRetryDelay/2)
		})
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"20","desc":"Invalid parameters"}`))
	})

	err := c.Get(context.Background(), "/test", nil)
	require.Error(t, err)
	assert.Equal(t, 1, rec.count())

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "20", apiErr.Code)
	assert.Equal(t, "Invalid parameters", apiErr.Error())
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestMaxRetriesRespected(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *config.PayOSConfig) { cfg.MaxRetries = 3 })

	err := c.Get(context.Background(), "/test", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternalServer))
	assert.Equal(t, 4, rec.count())
	assert.Len(t, rec.delays, 3)
}

func TestHonorRetryAfter(t *testing.T) {
	calls := 0
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeEnvelope(w, nil)
	})

	require.NoError(t, c.Get(context.Background(), "/test", nil))
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	d, ok := parseRetryAfter("2.5", now)
	assert.True(t, ok)
	assert.Equal(t, 2500*time.Millisecond, d)

	d, ok = parseRetryAfter("600", now)
	assert.True(t, ok)
	assert.Equal(t, maxRetryAfter, d)

	d, ok = parseRetryAfter(now.Add(10*time.Second).Format(http.TimeFormat), now)
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, d)

	_, ok = parseRetryAfter("soon", now)
	assert.False(t, ok)
	_, ok = parseRetryAfter("", now)
	assert.False(t, ok)

	for _, raw := range []string{"NaN", "Inf", "-Inf", "+Infinity"} {
		_, ok = parseRetryAfter(raw, now)
		assert.False(t, ok, raw)
	}

	d, ok = parseRetryAfter("1e300", now)
	assert.True(t, ok)
	assert.Equal(t, maxRetryAfter, d)

	d, ok = parseRetryAfter("-1e300", now)
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), d)
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		want := maxRetryDelay
		if attempt < 5 {
			want = min(initialRetryDelay<<attempt, maxRetryDelay)
		}
		d := backoff(attempt)
		assert.LessOrEqual(t, d, want)
		assert.GreaterOrEqual(t, d, want*3/4)
	}
}

func TestConnectionErrorRetriedThenReported(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.MaxRetries = 2
	var delays []time.Duration
	c, err := New(cfg, WithLogger(zerolog.Nop()), withSleeper(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))
	require.NoError(t, err)

	err = c.Get(context.Background(), "/test", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConnection))
	assert.Len(t, delays, 2)
}

func TestTimeoutError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "/slow", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
	assert.True(t, errors.Is(err, errors.ErrConnection))
}

func TestAPIErrorOnNon00Code(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": "231", "desc": "Đơn thanh toán đã tồn tại", "data": nil})
	})

	err := c.Get(context.Background(), "/test", nil)
	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "231", apiErr.Code)
	assert.Equal(t, "Đơn thanh toán đã tồn tại", apiErr.Desc)
	assert.Equal(t, errors.KindAPI, errors.KindOf(err))
}

func TestMalformedResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	})

	err := c.Get(context.Background(), "/test", nil)
	assert.True(t, errors.Is(err, errors.ErrMalformed))
}

func TestVerifyResponseSignatureFromHeader(t *testing.T) {
	data := signature.Mapping(map[string]signature.Value{"field": signature.String("value")})
	sig, err := signature.Sign(testChecksumKey, data)
	require.NoError(t, err)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-signature", sig)
		writeEnvelope(w, data)
	})

	var out map[string]string
	require.NoError(t, c.Get(context.Background(), "/test", &out, WithResponseSignature(VerifyResponseHeader)))
	assert.Equal(t, "value", out["field"])
}

func TestVerifyResponseSignatureFromBody(t *testing.T) {
	data := signature.Mapping(map[string]signature.Value{"field": signature.String("value")})
	sig, ok := signature.SignObject(data, testChecksumKey)
	require.True(t, ok)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"code": "00", "desc": "success", "data": data, "signature": sig})
	})

	var out map[string]string
	require.NoError(t, c.Get(context.Background(), "/test", &out, WithResponseSignature(VerifyResponseBody)))
	assert.Equal(t, "value", out["field"])
}

func TestResponseSignatureFailures(t *testing.T) {
	tests := []struct {
		name    string
		mode    SignatureResponse
		header  string
		bodySig string
		kind    error
		message string
	}{
		{"header missing", VerifyResponseHeader, "", "", errors.ErrValidation, "signature missing"},
		{"header mismatch", VerifyResponseHeader, "invalid-signature", "", errors.ErrIntegrity, "signature mismatch"},
		{"body missing", VerifyResponseBody, "", "", errors.ErrValidation, "signature missing"},
		{"body mismatch", VerifyResponseBody, "", "invalid-signature", errors.ErrIntegrity, "signature mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.header != "" {
					w.Header().Set("x-signature", tt.header)
				}
				env := map[string]any{"code": "00", "desc": "success", "data": map[string]any{"field": "value"}}
				if tt.bodySig != "" {
					env["signature"] = tt.bodySig
				}
				json.NewEncoder(w).Encode(env)
			})

			err := c.Get(context.Background(), "/test", nil, WithResponseSignature(tt.mode))
			require.Error(t, err)
			assert.EqualError(t, err, tt.message)
			assert.True(t, errors.Is(err, errors.ErrInvalidSignature))
			assert.True(t, errors.Is(err, tt.kind))
		})
	}
}

func TestSignRequestWithBodySignature(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{})
	})

	body := map[string]any{"field": "value", "amount": 2000}
	require.NoError(t, c.Post(context.Background(), "/test", body, nil, WithRequestSignature(SignRequestBody)))

	_, raw := rec.last()
	sent, err := signature.Parse(raw)
	require.NoError(t, err)
	got, ok := sent.Get("signature")
	require.True(t, ok)

	want, ok := signature.SignObject(sent.Without("signature"), testChecksumKey)
	require.True(t, ok)
	gotSig, _ := got.AsString()
	assert.Equal(t, want, gotSig)
}

func TestSignRequestWithHeaderSignature(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{})
	})

	body := map[string]any{"field": "value"}
	require.NoError(t, c.Post(context.Background(), "/test", body, nil, WithRequestSignature(SignRequestHeader)))

	req, raw := rec.last()
	v, err := signature.Parse(raw)
	require.NoError(t, err)
	want, err := signature.Sign(testChecksumKey, v)
	require.NoError(t, err)
	assert.Equal(t, want, req.Header.Get("x-signature"))

	_, hasSig := v.Get("signature")
	assert.False(t, hasSig)
}

func TestSignRequestCreatePaymentLinkMissingFields(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, nil)
	})

	err := c.Post(context.Background(), "/test", map[string]any{"amount": 1}, nil, WithRequestSignature(SignRequestCreatePaymentLink))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Equal(t, 0, rec.count())
}

func TestTransportRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		writeEnvelope(w, nil)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL), WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	require.NoError(t, err)
	require.NoError(t, c.Get(context.Background(), "/test", nil))

	out := buf.String()
	assert.Contains(t, out, "sending request")
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, testAPIKey)
	assert.NotContains(t, out, testClientID)
}
