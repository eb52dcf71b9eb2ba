package kafka

import (
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Domenick1991/skysailor/internal/domain"
)

const (
	EventBookingCreated    = "booking_created"
	EventBookingArchived   = "booking_archived"
	EventBookingUnarchived = "booking_unarchived"
	EventBookingDeleted    = "booking_deleted"
)

type BookingEvent struct {
	Type       string              `json:"type"`
	Booking    domain.BookedFlight `json:"booking"`
	OccurredAt time.Time           `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.BookedFlight) BookingEvent {
	return BookingEvent{Type: eventType, Booking: *b, OccurredAt: time.Now().UTC()}
}

func DecodeBookingEvent(msg kafka.Message) (BookingEvent, error) {
	var event BookingEvent
	err := json.Unmarshal(msg.Value, &event)
	return event, err
}
