package pghost

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"

	"github.com/tarmac-project/pgcomponent/logging"
	"github.com/tarmac-project/pgcomponent/metrics"
)

// logEntry forwards a component log entry to logrus at the matching level.
func (h *Host) logEntry(function string, payload []byte) error {
	log := h.log.WithField("source", "component")
	msg := string(payload)

	switch function {
	case logging.LevelInfo:
		log.Info(msg)
	case logging.LevelWarn:
		log.Warn(msg)
	case logging.LevelError:
		log.Error(msg)
	case logging.LevelDebug:
		log.Debug(msg)
	case logging.LevelTrace:
		log.Trace(msg)
	default:
		return fmt.Errorf("%w: %s/%s", ErrUnknownFunction, logging.CapabilityName, function)
	}
	return nil
}

// metric decodes a metrics payload into the registry.
func (h *Host) metric(function string, payload []byte) error {
	switch function {
	case metrics.FunctionCounter:
		var m proto.MetricsCounter
		if err := m.UnmarshalVT(payload); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		h.metrics.add(m.Name, 1)
		h.log.WithField("counter", m.Name).Debug("Counter incremented")

	case metrics.FunctionGauge:
		var m proto.MetricsGauge
		if err := m.UnmarshalVT(payload); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		switch m.Action {
		case metrics.ActionInc:
			h.metrics.shift(m.Name, 1)
		case metrics.ActionDec:
			h.metrics.shift(m.Name, -1)
		default:
			return fmt.Errorf("%w: gauge action %q", ErrInvalidPayload, m.Action)
		}

	case metrics.FunctionHistogram:
		var m proto.MetricsHistogram
		if err := m.UnmarshalVT(payload); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		h.metrics.observe(m.Name, m.Value)
		h.log.WithFields(logrus.Fields{"histogram": m.Name, "value": m.Value}).Debug("Observation recorded")

	default:
		return fmt.Errorf("%w: %s/%s", ErrUnknownFunction, metrics.CapabilityName, function)
	}
	return nil
}

// Registry keeps the metrics emitted by a component in memory.
type Registry struct {
	mu         sync.Mutex
	counters   map[string]int64
	gauges     map[string]int64
	histograms map[string][]float64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:   map[string]int64{},
		gauges:     map[string]int64{},
		histograms: map[string][]float64{},
	}
}

func (r *Registry) add(name string, delta int64) {
	r.mu.Lock()
	r.counters[name] += delta
	r.mu.Unlock()
}

func (r *Registry) shift(name string, delta int64) {
	r.mu.Lock()
	r.gauges[name] += delta
	r.mu.Unlock()
}

func (r *Registry) observe(name string, v float64) {
	r.mu.Lock()
	r.histograms[name] = append(r.histograms[name], v)
	r.mu.Unlock()
}

// Counter returns the current value of a counter.
func (r *Registry) Counter(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}

// Gauge returns the current value of a gauge.
func (r *Registry) Gauge(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gauges[name]
}

// Observations returns a copy of the values recorded for a histogram.
func (r *Registry) Observations(name string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.histograms[name]...)
}

// Fields renders counters and gauges as logrus fields, for a summary line.
func (r *Registry) Fields() logrus.Fields {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := logrus.Fields{}
	for k, v := range r.counters {
		f[k] = v
	}
	for k, v := range r.gauges {
		f[k] = v
	}
	return f
}

// Names lists every metric recorded so far in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for k := range r.counters {
		out = append(out, k)
	}
	for k := range r.gauges {
		out = append(out, k)
	}
	for k := range r.histograms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
