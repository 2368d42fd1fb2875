package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"payos/internal/platform/config"
	"payos/internal/platform/models"
)

type SubscriptionStore interface {
	ListActiveFor(eventType string) ([]*models.Subscription, error)
	RecordSuccess(id string, at int64) error
	RecordFailure(id, lastError string) error
}

type EventStore interface {
	MarkDelivered(id string, at int64) error
	MarkFailed(id, lastError string) error
	MarkSkipped(id string) error
}

// Dispatcher forwards verified gateway events to subscriptions.
type Dispatcher struct {
	subs    SubscriptionStore
	events  EventStore
	client  *http.Client
	sem     chan struct{}
	wg      sync.WaitGroup
	metrics *Metrics
}

func NewDispatcher(subs SubscriptionStore, events EventStore, cfg config.WebhooksConfig, metrics *Metrics) *Dispatcher {
	timeout := cfg.DeliverTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	if metrics == nil {
		metrics = &Metrics{}
	}
	return &Dispatcher{
		subs:    subs,
		events:  events,
		client:  &http.Client{Timeout: timeout},
		sem:     make(chan struct{}, workers),
		metrics: metrics,
	}
}

// Dispatch delivers rec in the background. At most worker_count deliveries run at once.
func (d *Dispatcher) Dispatch(rec *models.EventRecord) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()

		if err := d.DeliverSync(context.Background(), rec); err != nil {
			log.Warn().Err(err).Str("event_id", rec.ID).Msg("event delivery failed")
		}
	}()
}

// Wait blocks until background deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// DeliverSync posts rec to every active subscription that wants it and
// records the outcome on both the subscription and the event.
func (d *Dispatcher) DeliverSync(ctx context.Context, rec *models.EventRecord) error {
	subs, err := d.subs.ListActiveFor(rec.Type)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return d.events.MarkSkipped(rec.ID)
	}

	event := &models.ForwardedEvent{
		ID:        rec.ID,
		Event:     rec.Type,
		Timestamp: rec.ReceivedAt,
		Data:      rec.Payload,
	}

	var firstErr error
	for _, sub := range subs {
		if err := d.deliver(ctx, sub, event); err != nil {
			d.metrics.ForwardFailed.Add(1)
			if recErr := d.subs.RecordFailure(sub.ID, err.Error()); recErr != nil {
				log.Error().Err(recErr).Str("subscription_id", sub.ID).Msg("failed to record delivery failure")
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("subscription %s: %w", sub.ID, err)
			}
			continue
		}
		d.metrics.Forwarded.Add(1)
		if err := d.subs.RecordSuccess(sub.ID, time.Now().Unix()); err != nil {
			log.Error().Err(err).Str("subscription_id", sub.ID).Msg("failed to record delivery success")
		}
	}

	if firstErr != nil {
		if err := d.events.MarkFailed(rec.ID, firstErr.Error()); err != nil {
			log.Error().Err(err).Str("event_id", rec.ID).Msg("failed to mark event failed")
		}
		return firstErr
	}
	return d.events.MarkDelivered(rec.ID, time.Now().Unix())
}

func (d *Dispatcher) deliver(ctx context.Context, sub *models.Subscription, event *models.ForwardedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	sig, err := SignForward(sub.Secret, event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-PayOS-Forward-Signature", sig)
	req.Header.Set("X-PayOS-Event", event.Event)
	req.Header.Set("X-PayOS-Delivery", "dlv_"+uuid.New().String())

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}
