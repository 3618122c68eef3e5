package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MessagesProcessed    prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	BookingsCreated      prometheus.Counter
	BookingsDeleted      prometheus.Counter
	BookingConflicts     prometheus.Counter
	ErrorsTotal          prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of updates processed",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_created_total",
			Help: "Total number of bookings created",
		}),

		BookingsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_bookings_deleted_total",
			Help: "Total number of bookings deleted",
		}),

		BookingConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_booking_conflicts_total",
			Help: "Bookings rejected at commit because the slot was taken",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of handler errors and panics",
		}),
	}
}
