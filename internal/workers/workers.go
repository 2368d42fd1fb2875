package workers

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"payos/internal/platform/config"
	"payos/internal/platform/models"
	"payos/internal/platform/repositories"
)

const batchSize = 100

// PaymentStatusSource looks up a payment link on the gateway.
type PaymentStatusSource interface {
	Get(ctx context.Context, id string) (*models.PaymentLink, error)
}

// Redeliverer forwards a stored event to its subscriptions.
type Redeliverer interface {
	DeliverSync(ctx context.Context, rec *models.EventRecord) error
}

// Jobs holds the periodic maintenance tasks of the receiver.
type Jobs struct {
	gateway       PaymentStatusSource
	links         *repositories.PaymentLinkRepository
	events        *repositories.EventRepository
	idempotency   *repositories.IdempotencyRepository
	dispatcher    Redeliverer
	cfg           config.WorkersConfig
	retryAttempts int
	now           func() time.Time
}

func NewJobs(gateway PaymentStatusSource, links *repositories.PaymentLinkRepository, events *repositories.EventRepository,
	idempotency *repositories.IdempotencyRepository, dispatcher Redeliverer, cfg config.WorkersConfig, retryAttempts int) *Jobs {
	return &Jobs{
		gateway:       gateway,
		links:         links,
		events:        events,
		idempotency:   idempotency,
		dispatcher:    dispatcher,
		cfg:           cfg,
		retryAttempts: retryAttempts,
		now:           time.Now,
	}
}

// ReconcilePaymentLinks refreshes PENDING links older than reconcile_after
// from the gateway and returns how many changed status.
func (j *Jobs) ReconcilePaymentLinks(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.cfg.ReconcileAfter).Unix()
	pending, err := j.links.ListPendingBefore(cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}

		link, err := j.gateway.Get(ctx, strconv.FormatInt(rec.OrderCode, 10))
		if err != nil {
			log.Warn().Err(err).Int64("order_code", rec.OrderCode).Msg("reconcile: gateway lookup failed")
			continue
		}

		if err := j.links.UpdateStatus(rec.OrderCode, link.Status, link.AmountPaid); err != nil {
			return changed, err
		}
		if link.Status != rec.Status {
			changed++
			log.Info().Int64("order_code", rec.OrderCode).Str("from", string(rec.Status)).Str("to", string(link.Status)).Msg("payment link status changed")
		}
	}
	return changed, nil
}

// RetryFailedDeliveries redelivers failed events that still have attempts left
// and returns how many succeeded.
func (j *Jobs) RetryFailedDeliveries(ctx context.Context) (int, error) {
	failed, err := j.events.ListFailed(j.retryAttempts, batchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, rec := range failed {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if err := j.dispatcher.DeliverSync(ctx, rec); err != nil {
			log.Warn().Err(err).Str("event_id", rec.ID).Int("attempts", rec.Attempts+1).Msg("redelivery failed")
			continue
		}
		delivered++
	}
	return delivered, nil
}

// PruneIdempotencyKeys drops keys older than idempotency_ttl.
func (j *Jobs) PruneIdempotencyKeys(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.cfg.IdempotencyTTL).Unix()
	return j.idempotency.DeleteBefore(cutoff)
}

// Every runs fn each interval until ctx is cancelled.
func Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	if interval <= 0 {
		log.Warn().Str("job", name).Msg("job disabled: interval must be positive")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("job", name).Dur("interval", interval).Msg("job scheduled")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("job", name).Msg("job stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if err := fn(ctx); err != nil {
				log.Error().Err(err).Str("job", name).Msg("job failed")
				continue
			}
			log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
		}
	}
}
