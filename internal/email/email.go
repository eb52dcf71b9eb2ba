package email

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Domenick1991/skysailor/internal/domain"
)

// Sender delivers reminders. It only logs; a mail gateway plugs in here.
type Sender struct {
	from string
}

func NewSender(from string) *Sender {
	return &Sender{from: from}
}

func (s *Sender) Deliver(ctx context.Context, r domain.Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info().
		Str("from", s.from).
		Str("user_id", r.UserID).
		Str("flight_id", r.FlightID).
		Time("trigger_at", r.TriggerAt).
		Msg(r.Message)
	return nil
}
