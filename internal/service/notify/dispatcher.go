package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/metrics"
)

type Deliverer interface {
	Deliver(ctx context.Context, r domain.Reminder) error
}

// Dispatcher fires due alarms.
type Dispatcher struct {
	alarms    AlarmStore
	deliverer Deliverer
	interval  time.Duration
	now       func() time.Time
}

func NewDispatcher(alarms AlarmStore, deliverer Deliverer, interval time.Duration) *Dispatcher {
	return &Dispatcher{alarms: alarms, deliverer: deliverer, interval: interval, now: time.Now}
}

// RunOnce claims every due alarm and delivers it. Delivery failures are logged;
// a claimed alarm is not retried.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	due, err := d.alarms.ClaimDue(ctx, d.now())
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, r := range due {
		if err := d.deliverer.Deliver(ctx, r); err != nil {
			metrics.Reminders.WithLabelValues("failed").Inc()
			log.Error().Err(err).Str("booking_id", r.BookingID).Msg("failed to deliver reminder")
			continue
		}
		metrics.Reminders.WithLabelValues("delivered").Inc()
		delivered++
	}
	return delivered, nil
}

// Run calls RunOnce every interval until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("reminder dispatch failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
