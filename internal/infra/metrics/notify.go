package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(adminNotificationsTotal, authEventsTotal) }

var (
	adminNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_notifications_total",
			Help: "Notifications sent to admins, by channel and status.",
		},
		[]string{"channel", "status"}, // status: 'sent', 'failed'
	)

	authEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Registrations and logins by outcome.",
		},
		[]string{"event", "status"},
	)
)

func IncAdminNotification(channel, status string) {
	adminNotificationsTotal.WithLabelValues(norm(channel), norm(status)).Inc()
}

func IncAuthEvent(event, status string) {
	authEventsTotal.WithLabelValues(norm(event), norm(status)).Inc()
}
