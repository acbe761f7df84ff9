package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ChatTurnsTotal          metric.Int64Counter
	ChatTurnDurationSeconds metric.Float64Histogram
	ChatParseErrorsTotal    metric.Int64Counter
	TripSavesTotal          metric.Int64Counter
	TripSaveErrorsTotal     metric.Int64Counter
	BookingMergesTotal      metric.Int64Counter
	GeocodeLookupsTotal     metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the global instruments, creating them on first use from the
// globally configured MeterProvider.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TripPlanner")
		var err error
		m := &AppMetrics{}

		m.ChatTurnsTotal, err = meter.Int64Counter(
			"chat_turns_total",
			metric.WithDescription("Total conversation turns processed"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_turns_total: %v", err)
		}

		m.ChatTurnDurationSeconds, err = meter.Float64Histogram(
			"chat_turn_duration_seconds",
			metric.WithDescription("Duration of conversation turns in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_turn_duration_seconds: %v", err)
		}

		m.ChatParseErrorsTotal, err = meter.Int64Counter(
			"chat_parse_errors_total",
			metric.WithDescription("Assistant replies that failed to parse as structured JSON"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_parse_errors_total: %v", err)
		}

		m.TripSavesTotal, err = meter.Int64Counter(
			"trip_saves_total",
			metric.WithDescription("Debounced trip saves attempted"),
			metric.WithUnit("{save}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_saves_total: %v", err)
		}

		m.TripSaveErrorsTotal, err = meter.Int64Counter(
			"trip_save_errors_total",
			metric.WithDescription("Debounced trip saves that failed"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_save_errors_total: %v", err)
		}

		m.BookingMergesTotal, err = meter.Int64Counter(
			"booking_merges_total",
			metric.WithDescription("Flight bookings merged into trips"),
			metric.WithUnit("{booking}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create booking_merges_total: %v", err)
		}

		m.GeocodeLookupsTotal, err = meter.Int64Counter(
			"geocode_lookups_total",
			metric.WithDescription("Geocoding lookups issued on cache miss"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_lookups_total: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
