package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wolfeidau/admetrics"

// Metrics holds the client instruments.
type Metrics struct {
	RequestsTotal       metric.Int64Counter
	RequestErrorsTotal  metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	StaleResponsesTotal metric.Int64Counter
	LoginsTotal         metric.Int64Counter
	ForcedLogoutsTotal  metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the process wide instruments. Until InitTelemetry runs
// they are bound to the global no-op provider.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = newMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return metrics
}

func newMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}

	m.RequestsTotal, _ = meter.Int64Counter(
		"admetrics.client.requests.total",
		metric.WithDescription("Requests sent to the metrics API"),
		metric.WithUnit("{request}"),
	)

	m.RequestErrorsTotal, _ = meter.Int64Counter(
		"admetrics.client.requests.errors.total",
		metric.WithDescription("Requests that ended in an error, by kind"),
		metric.WithUnit("{error}"),
	)

	m.RequestDuration, _ = meter.Float64Histogram(
		"admetrics.client.requests.duration",
		metric.WithDescription("Round trip time of metrics API requests"),
		metric.WithUnit("ms"),
	)

	m.StaleResponsesTotal, _ = meter.Int64Counter(
		"admetrics.controller.stale_responses.total",
		metric.WithDescription("Fetch responses discarded because a newer one was applied"),
		metric.WithUnit("{response}"),
	)

	m.LoginsTotal, _ = meter.Int64Counter(
		"admetrics.session.logins.total",
		metric.WithDescription("Login attempts, by result"),
		metric.WithUnit("{login}"),
	)

	m.ForcedLogoutsTotal, _ = meter.Int64Counter(
		"admetrics.session.forced_logouts.total",
		metric.WithDescription("Sessions torn down after the API rejected the token"),
		metric.WithUnit("{logout}"),
	)

	return m
}
