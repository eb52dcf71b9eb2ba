package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/kafka"
)

// Apply keeps the alarms in line with a booking event: new and unarchived
// bookings get a reminder, archived and deleted ones lose it.
func (s *Scheduler) Apply(ctx context.Context, event kafka.BookingEvent) error {
	b := event.Booking
	switch event.Type {
	case kafka.EventBookingCreated, kafka.EventBookingUnarchived:
		if _, err := s.Schedule(ctx, &b); err != nil {
			return fmt.Errorf("schedule reminder for %s: %w", b.ID, err)
		}
	case kafka.EventBookingArchived, kafka.EventBookingDeleted:
		if err := s.Cancel(ctx, b.ID); err != nil {
			return fmt.Errorf("cancel reminder for %s: %w", b.ID, err)
		}
	default:
		log.Debug().Str("type", event.Type).Msg("ignoring booking event")
	}
	return nil
}
