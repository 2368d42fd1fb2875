package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payos/internal/platform/config"
	"payos/internal/platform/models"
)

type fakeSubs struct {
	mu       sync.Mutex
	subs     []*models.Subscription
	failures map[string]string
	success  map[string]int64
	err      error
}

func (f *fakeSubs) ListActiveFor(eventType string) ([]*models.Subscription, error) {
	var out []*models.Subscription
	for _, s := range f.subs {
		if s.Wants(eventType) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubs) RecordSuccess(id string, at int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success[id] = at
	return f.err
}

func (f *fakeSubs) RecordFailure(id, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[id] = lastError
	return f.err
}

type fakeEvents struct {
	mu     sync.Mutex
	status map[string]string
	errs   map[string]string
}

func (f *fakeEvents) MarkDelivered(id string, at int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = models.EventDelivered
	return nil
}

func (f *fakeEvents) MarkFailed(id, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = models.EventFailed
	f.errs[id] = lastError
	return nil
}

func (f *fakeEvents) MarkSkipped(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = models.EventSkipped
	return nil
}

func newFakes(subs ...*models.Subscription) (*fakeSubs, *fakeEvents) {
	return &fakeSubs{subs: subs, failures: map[string]string{}, success: map[string]int64{}},
		&fakeEvents{status: map[string]string{}, errs: map[string]string{}}
}

func testRecord() *models.EventRecord {
	return &models.EventRecord{
		ID:         "evt_1",
		Type:       models.EventPaymentSucceeded,
		Payload:    json.RawMessage(`{"orderCode":123,"amount":3000}`),
		ReceivedAt: 1700000000,
	}
}

func TestDeliverSyncSignsAndRecordsSuccess(t *testing.T) {
	var gotHeaders http.Header
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sub := &models.Subscription{ID: "sub_1", URL: srv.URL, Secret: "whsec_1", Events: []string{models.EventAll}}
	subs, events := newFakes(sub)
	metrics := &Metrics{}
	d := NewDispatcher(subs, events, config.WebhooksConfig{WorkerCount: 2}, metrics)

	require.NoError(t, d.DeliverSync(context.Background(), testRecord()))

	assert.Equal(t, models.EventPaymentSucceeded, gotHeaders.Get("X-PayOS-Event"))
	assert.True(t, strings.HasPrefix(gotHeaders.Get("X-PayOS-Delivery"), "dlv_"))
	assert.True(t, VerifyForward("whsec_1", gotBody, gotHeaders.Get("X-PayOS-Forward-Signature")))

	var ev models.ForwardedEvent
	require.NoError(t, json.Unmarshal(gotBody, &ev))
	assert.Equal(t, "evt_1", ev.ID)
	assert.JSONEq(t, `{"orderCode":123,"amount":3000}`, string(ev.Data))

	assert.Equal(t, models.EventDelivered, events.status["evt_1"])
	assert.Contains(t, subs.success, "sub_1")
	assert.Equal(t, int64(1), metrics.Forwarded.Load())
}

func TestDeliverSyncRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sub := &models.Subscription{ID: "sub_1", URL: srv.URL, Secret: "s", Events: []string{models.EventPaymentSucceeded}}
	subs, events := newFakes(sub)
	metrics := &Metrics{}
	d := NewDispatcher(subs, events, config.WebhooksConfig{}, metrics)

	err := d.DeliverSync(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")

	assert.Equal(t, models.EventFailed, events.status["evt_1"])
	assert.Equal(t, "HTTP 502", subs.failures["sub_1"])
	assert.Equal(t, int64(1), metrics.ForwardFailed.Load())
}

func TestDeliverSyncLogsBookkeepingErrors(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	subs, events := newFakes(
		&models.Subscription{ID: "sub_ok", URL: srv.URL + "/ok", Secret: "s", Events: []string{models.EventAll}},
		&models.Subscription{ID: "sub_bad", URL: srv.URL + "/bad", Secret: "s", Events: []string{models.EventAll}},
	)
	subs.err = errors.New("database is locked")
	d := NewDispatcher(subs, events, config.WebhooksConfig{}, nil)

	err := d.DeliverSync(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sub_bad")

	out := buf.String()
	assert.Contains(t, out, `"subscription_id":"sub_ok"`)
	assert.Contains(t, out, `"subscription_id":"sub_bad"`)
	assert.Contains(t, out, "database is locked")
	assert.Contains(t, out, "failed to record delivery success")
	assert.Contains(t, out, "failed to record delivery failure")
}

func TestDeliverSyncSkipsWithoutSubscribers(t *testing.T) {
	sub := &models.Subscription{ID: "sub_1", URL: "http://127.0.0.1:1", Events: []string{models.EventPaymentFailed}}
	subs, events := newFakes(sub)
	d := NewDispatcher(subs, events, config.WebhooksConfig{}, nil)

	require.NoError(t, d.DeliverSync(context.Background(), testRecord()))
	assert.Equal(t, models.EventSkipped, events.status["evt_1"])
}

func TestDispatchRunsInBackground(t *testing.T) {
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
	}))
	defer srv.Close()

	subs, events := newFakes(
		&models.Subscription{ID: "a", URL: srv.URL, Events: []string{models.EventAll}},
		&models.Subscription{ID: "b", URL: srv.URL, Events: []string{models.EventAll}},
	)
	d := NewDispatcher(subs, events, config.WebhooksConfig{WorkerCount: 1}, nil)

	d.Dispatch(testRecord())
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, hits)
	assert.Equal(t, models.EventDelivered, events.status["evt_1"])
}

func TestMetricsWritePrometheus(t *testing.T) {
	m := &Metrics{}
	m.Received.Add(3)
	m.Rejected.Add(1)

	var sb strings.Builder
	m.WritePrometheus(&sb)

	out := sb.String()
	assert.Contains(t, out, "payos_webhooks_received_total 3")
	assert.Contains(t, out, "payos_webhooks_rejected_total 1")
	assert.Contains(t, out, "# TYPE payos_forward_success_total counter")
}
