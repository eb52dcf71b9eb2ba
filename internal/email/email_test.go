package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Domenick1991/skysailor/internal/domain"
)

func TestSender_Deliver(t *testing.T) {
	s := NewSender("noreply@skysailor.app")
	r := domain.Reminder{Handle: "h1", FlightID: "f1", UserID: "u1", TriggerAt: time.Now(), Message: "Flight from NYC to LAX is tomorrow at 8:00 AM!"}

	assert.NoError(t, s.Deliver(context.Background(), r))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Deliver(ctx, r), context.Canceled)
}
