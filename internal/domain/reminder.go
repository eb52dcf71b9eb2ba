package domain

import "time"

// Reminder is a one-shot alarm for a booked flight. BookingID identifies it:
// scheduling the same booking again replaces the earlier alarm.
type Reminder struct {
	Handle    string    `json:"handle"`
	BookingID string    `json:"bookingId"`
	FlightID  string    `json:"flightId"`
	UserID    string    `json:"userId"`
	TriggerAt time.Time `json:"triggerAt"`
	Message   string    `json:"message"`
}
