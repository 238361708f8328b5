package router

import (
	sdk "github.com/tarmac-project/pgcomponent"
	"github.com/tarmac-project/pgcomponent/internal/config"
	"github.com/tarmac-project/pgcomponent/logging"
	"github.com/tarmac-project/pgcomponent/metrics"
	"github.com/tarmac-project/pgcomponent/pg"
)

// MetricsPrefix is the default prefix of every metric the router emits.
const MetricsPrefix = "pgcomponent_"

// WireConfig selects the host the capability clients talk to.
type WireConfig struct {
	// Namespace scopes every host call. Defaults to sdk.DefaultNamespace.
	Namespace string

	// HostCall defaults to the waPC host.
	HostCall sdk.HostCall

	// Lookup resolves settings. Nil reads the process environment.
	Lookup config.LookupFunc

	// MetricsPrefix defaults to MetricsPrefix.
	MetricsPrefix string
}

// Wire builds the pg, logging and metrics clients over one host and returns
// a Router using them.
func Wire(cfg WireConfig) (*Router, error) {
	runtime := sdk.RuntimeConfig{Namespace: cfg.Namespace}

	db, err := pg.New(pg.Config{SDKConfig: runtime, HostCall: cfg.HostCall})
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{SDKConfig: runtime, HostCall: cfg.HostCall})
	if err != nil {
		return nil, err
	}

	prefix := cfg.MetricsPrefix
	if prefix == "" {
		prefix = MetricsPrefix
	}

	m, err := metrics.New(metrics.Config{SDKConfig: runtime, Prefix: prefix, HostCall: cfg.HostCall})
	if err != nil {
		return nil, err
	}

	return New(Config{DB: db, Lookup: cfg.Lookup, Logger: logger, Metrics: m})
}
