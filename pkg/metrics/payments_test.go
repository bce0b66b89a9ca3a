package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPaymentMetricsExportsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	payments := NewPaymentMetrics(reg)

	payments.IncNotification(NotificationAccepted)
	payments.IncNotification(NotificationAccepted)
	payments.IncNotification(NotificationInvalidSignature)
	payments.IncNotification("")
	payments.ObserveHandling(40 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "payment_notifications_total", "outcome", NotificationAccepted); err != nil {
		t.Fatalf("fetch accepted: %v", err)
	} else if got != 2 {
		t.Fatalf("expected accepted=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_notifications_total", "outcome", NotificationInvalidSignature); err != nil {
		t.Fatalf("fetch invalid signature: %v", err)
	} else if got != 1 {
		t.Fatalf("expected invalid_signature=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "payment_notifications_total", "outcome", "unknown"); err != nil {
		t.Fatalf("fetch unknown: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}
}

func TestMailMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	mail := NewMailMetrics(reg)

	mail.IncSent()
	mail.IncRetried()
	mail.IncRetried()
	mail.IncFailed()
	mail.ObserveSend(120 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := map[string]float64{
		"mail_sent_total":    1,
		"mail_retried_total": 2,
		"mail_failed_total":  1,
	}
	for name, want := range checks {
		mf := findMetricFamily(mfs, name)
		if mf == nil {
			t.Fatalf("metric %q not found", name)
		}
		if got := mf.GetMetric()[0].GetCounter().GetValue(); got != want {
			t.Fatalf("expected %s=%f, got %f", name, want, got)
		}
	}
}

func TestNilRegistererIsNoOp(t *testing.T) {
	payments := NewPaymentMetrics(nil)
	payments.IncNotification(NotificationError)
	payments.ObserveHandling(time.Second)

	mail := NewMailMetrics(nil)
	mail.IncSent()
	mail.ObserveSend(time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
