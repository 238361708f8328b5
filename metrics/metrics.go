package metrics

import (
	"errors"
	"regexp"

	sdk "github.com/tarmac-project/pgcomponent"
	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

// Capability and function names understood by the host.
const (
	CapabilityName    = "metrics"
	FunctionCounter   = "counter"
	FunctionGauge     = "gauge"
	FunctionHistogram = "histogram"
	ActionInc         = "inc"
	ActionDec         = "dec"
)

var (
	// ErrInvalidMetricName indicates a metric name that does not match the supported format.
	ErrInvalidMetricName = errors.New("metric name is invalid")

	isMetricNameValid = regexp.MustCompile(`^[a-zA-Z0-9_:]+$`)
)

// Client defines the metrics capability interface.
type Client interface {
	// NewCounter creates a named counter metric handle.
	NewCounter(name string) (*Counter, error)

	// NewGauge creates a named gauge metric handle.
	NewGauge(name string) (*Gauge, error)

	// NewHistogram creates a named histogram metric handle.
	NewHistogram(name string) (*Histogram, error)
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// Prefix is prepended to every metric name, e.g. "pgcomponent_".
	Prefix string

	// HostCall overrides the waPC host function used for metrics operations.
	HostCall sdk.HostCall
}

// HostMetrics is the metrics capability client implementation.
type HostMetrics struct {
	runtime  sdk.RuntimeConfig
	prefix   string
	hostCall sdk.HostCall
}

// handle is the part shared by every metric kind.
type handle struct {
	name      string
	namespace string
	hostCall  sdk.HostCall
}

// emit is best effort: marshal and host failures never reach the caller.
func (h handle) emit(function string, payload []byte, err error) {
	if err != nil {
		return
	}
	_, _ = h.hostCall(h.namespace, CapabilityName, function, payload)
}

// Name returns the full metric name, including any prefix.
func (h handle) Name() string { return h.name }

// Counter is a named counter metric handle.
type Counter struct{ handle }

// Gauge is a named gauge metric handle.
type Gauge struct{ handle }

// Histogram is a named histogram metric handle.
type Histogram struct{ handle }

var _ Client = (*HostMetrics)(nil)

// New creates a metrics client with namespace defaults and optional host-call override.
func New(config Config) (*HostMetrics, error) {
	runtime := config.SDKConfig
	if runtime.Namespace == "" {
		runtime.Namespace = sdk.DefaultNamespace
	}

	hostCall := config.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	if config.Prefix != "" && !isMetricNameValid.MatchString(config.Prefix) {
		return nil, ErrInvalidMetricName
	}

	return &HostMetrics{runtime: runtime, prefix: config.Prefix, hostCall: hostCall}, nil
}

func (c *HostMetrics) handle(name string) (handle, error) {
	if !isMetricNameValid.MatchString(name) {
		return handle{}, ErrInvalidMetricName
	}
	return handle{name: c.prefix + name, namespace: c.runtime.Namespace, hostCall: c.hostCall}, nil
}

// NewCounter creates a named counter metric handle.
func (c *HostMetrics) NewCounter(name string) (*Counter, error) {
	h, err := c.handle(name)
	if err != nil {
		return nil, err
	}
	return &Counter{h}, nil
}

// NewGauge creates a named gauge metric handle.
func (c *HostMetrics) NewGauge(name string) (*Gauge, error) {
	h, err := c.handle(name)
	if err != nil {
		return nil, err
	}
	return &Gauge{h}, nil
}

// NewHistogram creates a named histogram metric handle.
func (c *HostMetrics) NewHistogram(name string) (*Histogram, error) {
	h, err := c.handle(name)
	if err != nil {
		return nil, err
	}
	return &Histogram{h}, nil
}

// Inc increments the counter by one.
func (c *Counter) Inc() {
	payload, err := (&proto.MetricsCounter{Name: c.name}).MarshalVT()
	c.emit(FunctionCounter, payload, err)
}

// Inc increments the gauge by one.
func (g *Gauge) Inc() { g.action(ActionInc) }

// Dec decrements the gauge by one.
func (g *Gauge) Dec() { g.action(ActionDec) }

func (g *Gauge) action(action string) {
	payload, err := (&proto.MetricsGauge{Name: g.name, Action: action}).MarshalVT()
	g.emit(FunctionGauge, payload, err)
}

// Observe records a value for the histogram.
func (h *Histogram) Observe(value float64) {
	payload, err := (&proto.MetricsHistogram{Name: h.name, Value: value}).MarshalVT()
	h.emit(FunctionHistogram, payload, err)
}
