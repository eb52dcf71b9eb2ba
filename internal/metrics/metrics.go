package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysailor_bookings_total",
			Help: "Booking attempts by result",
		},
		[]string{"result"},
	)
	BookingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skysailor_booking_conflicts_total",
			Help: "Booking transactions retried after a concurrent capacity change",
		},
	)
	Searches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysailor_searches_total",
			Help: "Flight searches by result",
		},
		[]string{"result"},
	)
	SyncSnapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysailor_sync_snapshots_total",
			Help: "Snapshots applied to the local store",
		},
		[]string{"collection", "result"},
	)
	Reminders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysailor_reminders_total",
			Help: "Reminder alarms by action",
		},
		[]string{"action"},
	)
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skysailor_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)
