// Package router maps inbound selectors onto scenarios.
package router

import (
	"errors"
	"fmt"
	"sort"
	"time"

	sdk "github.com/tarmac-project/pgcomponent"
	"github.com/tarmac-project/pgcomponent/internal/config"
	"github.com/tarmac-project/pgcomponent/internal/scenarios"
	"github.com/tarmac-project/pgcomponent/logging"
	"github.com/tarmac-project/pgcomponent/metrics"
	"github.com/tarmac-project/pgcomponent/pg"
)

// Status codes reported in a Response.
const (
	StatusOK            = 200
	StatusNotFound      = 404
	StatusInternalError = 500
)

// NotFoundBody is the body returned for unknown selectors.
const NotFoundBody = "Not found"

var (
	// ErrNilDatabase is returned when the Config carries no pg client.
	ErrNilDatabase = errors.New("database client cannot be nil")

	// ErrNilLogger is returned when the Config carries no logging client.
	ErrNilLogger = errors.New("logging client cannot be nil")

	// ErrNilMetrics is returned when the Config carries no metrics client.
	ErrNilMetrics = errors.New("metrics client cannot be nil")
)

// Config wires a Router to its collaborators.
type Config struct {
	// DB performs the scenario round trips.
	DB pg.Client

	// Lookup resolves settings. Nil reads the process environment.
	Lookup config.LookupFunc

	Logger  logging.Client
	Metrics metrics.Client
}

// Response is the outcome of one dispatch.
type Response struct {
	StatusCode int
	Body       string
}

// StatusError carries a non-success Response through the waPC handler.
type StatusError struct {
	Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Router dispatches selectors to scenarios.
type Router struct {
	db     pg.Client
	lookup config.LookupFunc
	log    logging.Client
	routes map[string]scenarios.Scenario

	requests *metrics.Counter
	failures *metrics.Counter
	inFlight *metrics.Gauge
	duration *metrics.Histogram
}

// New creates a Router serving every scenario.
func New(cfg Config) (*Router, error) {
	if cfg.DB == nil {
		return nil, ErrNilDatabase
	}
	if cfg.Logger == nil {
		return nil, ErrNilLogger
	}
	if cfg.Metrics == nil {
		return nil, ErrNilMetrics
	}

	r := &Router{
		db:     cfg.DB,
		lookup: cfg.Lookup,
		log:    cfg.Logger,
		routes: map[string]scenarios.Scenario{},
	}
	for _, s := range scenarios.All() {
		r.routes[s.Route] = s.Run
	}

	var err error
	if r.requests, err = cfg.Metrics.NewCounter("requests_total"); err != nil {
		return nil, err
	}
	if r.failures, err = cfg.Metrics.NewCounter("failures_total"); err != nil {
		return nil, err
	}
	if r.inFlight, err = cfg.Metrics.NewGauge("in_flight"); err != nil {
		return nil, err
	}
	if r.duration, err = cfg.Metrics.NewHistogram("request_duration_seconds"); err != nil {
		return nil, err
	}

	return r, nil
}

// Routes returns the known selectors in sorted order.
func Routes() []string {
	all := scenarios.All()
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.Route)
	}
	sort.Strings(out)
	return out
}

// Handle runs the scenario registered for path. Unknown selectors are answered
// without reading configuration or touching the database.
func (r *Router) Handle(path string) Response {
	r.requests.Inc()

	run, ok := r.routes[path]
	if !ok {
		r.log.Debug("no route", logging.Ctx{"path": path})
		return Response{StatusCode: StatusNotFound, Body: NotFoundBody}
	}

	r.inFlight.Inc()
	start := time.Now()
	defer func() {
		r.duration.Observe(time.Since(start).Seconds())
		r.inFlight.Dec()
	}()

	cfg, err := config.Load(r.lookup)
	if err != nil {
		return r.fail(path, fmt.Errorf("configuration error: %w", err))
	}

	body, err := run(r.db, cfg.Address)
	if err != nil {
		return r.fail(path, err)
	}

	r.log.Info("scenario completed", logging.Ctx{"path": path})
	return Response{StatusCode: StatusOK, Body: body}
}

func (r *Router) fail(path string, err error) Response {
	r.failures.Inc()
	r.log.Error("scenario failed", logging.Ctx{"path": path, "error": err.Error()})
	return Response{StatusCode: StatusInternalError, Body: err.Error()}
}

// Handler adapts the router to the waPC handler signature. The payload is the
// selector; non-success responses are returned as a *StatusError.
func (r *Router) Handler() sdk.Handler {
	return func(payload []byte) ([]byte, error) {
		resp := r.Handle(string(payload))
		if resp.StatusCode != StatusOK {
			return nil, &StatusError{Response: resp}
		}
		return []byte(resp.Body), nil
	}
}
