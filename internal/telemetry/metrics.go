package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instrumentCache avoids re-registering the same counter/histogram/gauge
// name on every call, since otel.Meter().Float64Counter etc. allocate a new
// instrument handle each time they're called.
type instrumentCache struct {
	mu          sync.Mutex
	counters    map[string]metric.Float64Counter
	histograms  map[string]metric.Float64Histogram
	gauges      map[string]metric.Float64Gauge
}

var cache = &instrumentCache{
	counters:   make(map[string]metric.Float64Counter),
	histograms: make(map[string]metric.Float64Histogram),
	gauges:     make(map[string]metric.Float64Gauge),
}

func attrsToOptions(attrs map[string]string) metric.MeasurementOption {
	if len(attrs) == 0 {
		return metric.WithAttributes()
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	return metric.WithAttributes(kvs...)
}

// RecordIncrement increments counter name by delta (default 1 when delta is
// zero), tagged with attrs (spec §4.8).
func RecordIncrement(name string, delta float64, attrs map[string]string) {
	if delta == 0 {
		delta = 1
	}
	cache.mu.Lock()
	c, ok := cache.counters[name]
	if !ok {
		var err error
		c, err = meter().Float64Counter(name)
		if err != nil {
			cache.mu.Unlock()
			return
		}
		cache.counters[name] = c
	}
	cache.mu.Unlock()
	c.Add(context.Background(), delta, attrsToOptions(attrs))
}

// RecordHistogram records value into histogram name with the given unit
// (spec §4.8).
func RecordHistogram(name string, value float64, unit string) {
	cache.mu.Lock()
	h, ok := cache.histograms[name]
	if !ok {
		var err error
		h, err = meter().Float64Histogram(name, metric.WithUnit(unit))
		if err != nil {
			cache.mu.Unlock()
			return
		}
		cache.histograms[name] = h
	}
	cache.mu.Unlock()
	h.Record(context.Background(), value)
}

// RecordGauge records an instantaneous value for gauge name (spec §4.8).
func RecordGauge(name string, value float64, unit string) {
	cache.mu.Lock()
	g, ok := cache.gauges[name]
	if !ok {
		var err error
		g, err = meter().Float64Gauge(name, metric.WithUnit(unit))
		if err != nil {
			cache.mu.Unlock()
			return
		}
		cache.gauges[name] = g
	}
	cache.mu.Unlock()
	g.Record(context.Background(), value)
}
