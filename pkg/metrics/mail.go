package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MailMetrics records outbox dispatcher activity.
type MailMetrics struct {
	sent     prometheus.Counter
	failed   prometheus.Counter
	retried  prometheus.Counter
	duration prometheus.Histogram
}

// NewMailMetrics registers the mail dispatch metrics on the provided registerer.
func NewMailMetrics(reg prometheus.Registerer) *MailMetrics {
	if reg == nil {
		return &MailMetrics{}
	}
	sent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mail_sent_total",
		Help: "Outbox messages delivered to the mail provider.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mail_failed_total",
		Help: "Outbox messages that exhausted their delivery attempts.",
	})
	retried := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mail_retried_total",
		Help: "Outbox delivery attempts that failed and were rescheduled.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mail_send_duration_seconds",
		Help:    "Time spent on a single provider send call.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(sent, failed, retried, duration)
	return &MailMetrics{
		sent:     sent,
		failed:   failed,
		retried:  retried,
		duration: duration,
	}
}

// IncSent increments the delivered counter.
func (m *MailMetrics) IncSent() {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.Inc()
}

// IncFailed increments the permanently-failed counter.
func (m *MailMetrics) IncFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

// IncRetried increments the rescheduled-attempt counter.
func (m *MailMetrics) IncRetried() {
	if m == nil || m.retried == nil {
		return
	}
	m.retried.Inc()
}

// ObserveSend records the duration of one provider call.
func (m *MailMetrics) ObserveSend(duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
}
