package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for notification scheduling and delivery
var (
	// notificationsScannedTotal counts scan decisions per action
	notificationsScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reserver_notifications_scanned_total",
			Help: "Total number of notifications evaluated by a scan",
		},
		[]string{"action"}, // action: immediate|scheduled|deferred|skipped|already_scheduled
	)

	// notificationDispatchTotal counts dispatch job outcomes
	notificationDispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reserver_notification_dispatch_total",
			Help: "Total number of notification dispatch jobs by result",
		},
		[]string{"result"}, // result: sent|failed|unresolved|already_sent|error
	)

	// emailSentTotal counts per-channel e-mail sends
	emailSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reserver_email_sent_total",
			Help: "Total number of e-mails handed to a delivery channel",
		},
		[]string{"channel", "status"}, // status: success|failure
	)

	// emailSendDuration tracks channel send latency
	emailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reserver_email_send_duration_seconds",
			Help:    "E-mail send duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)
)

// RecordScanDecision counts one scan decision.
func RecordScanDecision(action string) {
	notificationsScannedTotal.WithLabelValues(action).Inc()
}

func recordDispatch(result string) {
	notificationDispatchTotal.WithLabelValues(result).Inc()
}

func recordEmailSend(channel string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	emailSentTotal.WithLabelValues(channel, status).Inc()
	emailSendDuration.WithLabelValues(channel).Observe(duration.Seconds())
}
