package changefeed

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

func FlightsSubject(prefix string) string {
	return prefix + ".flights"
}

func BookedFlightsSubject(prefix, userID string) string {
	return fmt.Sprintf("%s.users.%s.booked_flights", prefix, userID)
}

// Publisher announces remote writes. The payload is empty: watchers re-query.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

func NewPublisher(nc *nats.Conn, prefix string) *Publisher {
	return &Publisher{nc: nc, prefix: prefix}
}

func (p *Publisher) FlightsChanged() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Publish(FlightsSubject(p.prefix), nil)
}

func (p *Publisher) BookedFlightsChanged(userID string) error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Publish(BookedFlightsSubject(p.prefix, userID), nil)
}

func (p *Publisher) Prefix() string {
	return p.prefix
}
