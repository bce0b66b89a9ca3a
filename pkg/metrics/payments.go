package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Notification outcomes recorded by PaymentMetrics.IncNotification.
const (
	NotificationAccepted         = "accepted"
	NotificationDuplicate        = "duplicate"
	NotificationInvalidSignature = "invalid_signature"
	NotificationUnknownToken     = "unknown_token"
	NotificationAmountMismatch   = "amount_mismatch"
	NotificationConflict         = "conflict"
	NotificationError            = "error"
)

// PaymentMetrics records gateway notification handling outcomes.
type PaymentMetrics struct {
	notifications *prometheus.CounterVec
	verifyTime    prometheus.Histogram
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_notifications_total",
		Help: "Gateway payment notifications by handling outcome.",
	}, []string{"outcome"})
	verifyTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_notification_duration_seconds",
		Help:    "Time spent verifying and applying a payment notification.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(notifications, verifyTime)
	return &PaymentMetrics{
		notifications: notifications,
		verifyTime:    verifyTime,
	}
}

// IncNotification increments the counter for the given outcome.
func (p *PaymentMetrics) IncNotification(outcome string) {
	if p == nil || p.notifications == nil {
		return
	}
	p.notifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveHandling records how long one notification took end to end.
func (p *PaymentMetrics) ObserveHandling(duration time.Duration) {
	if p == nil || p.verifyTime == nil {
		return
	}
	p.verifyTime.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
