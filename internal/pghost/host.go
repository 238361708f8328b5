// Package pghost is a native implementation of the host capabilities the
// component calls: pg, logging and metrics. It lets the component logic run
// outside a WebAssembly runtime against a real PostgreSQL server.
package pghost

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	sdk "github.com/tarmac-project/pgcomponent"
	"github.com/tarmac-project/pgcomponent/logging"
	"github.com/tarmac-project/pgcomponent/metrics"
	"github.com/tarmac-project/pgcomponent/pg"
)

var (
	// ErrUnknownNamespace is returned for host calls outside the configured namespace.
	ErrUnknownNamespace = errors.New("unknown namespace")

	// ErrUnknownCapability is returned for capabilities the host does not serve.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrUnknownFunction is returned for functions a capability does not serve.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrInvalidPayload is returned when a host call payload cannot be decoded.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Config configures a Host.
type Config struct {
	// Namespace the host answers to. Defaults to sdk.DefaultNamespace.
	Namespace string

	// Logger receives component log entries and host diagnostics.
	// Defaults to logrus.StandardLogger().
	Logger logrus.FieldLogger

	// ConnectTimeout bounds session establishment. Zero means no timeout.
	ConnectTimeout time.Duration

	// Dial opens a session. Defaults to a pgconn connection.
	Dial DialFunc
}

// Host serves host calls for one invocation. Sessions are opened lazily, one
// per address, and stay open until Close so that consecutive statements of an
// invocation share a backend.
type Host struct {
	ctx       context.Context
	namespace string
	log       logrus.FieldLogger
	dial      DialFunc

	mu       sync.Mutex
	sessions map[string]Session

	metrics *Registry
}

// New creates a Host. ctx bounds every database round trip made by the Host.
func New(ctx context.Context, cfg Config) *Host {
	if cfg.Namespace == "" {
		cfg.Namespace = sdk.DefaultNamespace
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Dial == nil {
		cfg.Dial = PgconnDialer(cfg.ConnectTimeout)
	}

	return &Host{
		ctx:       ctx,
		namespace: cfg.Namespace,
		log:       cfg.Logger,
		dial:      cfg.Dial,
		sessions:  map[string]Session{},
		metrics:   NewRegistry(),
	}
}

// HostCall implements sdk.HostCall.
func (h *Host) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	if namespace != h.namespace {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNamespace, namespace)
	}

	switch capability {
	case pg.CapabilityName:
		return h.database(function, payload)
	case logging.CapabilityName:
		return nil, h.logEntry(function, payload)
	case metrics.CapabilityName:
		return nil, h.metric(function, payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, capability)
	}
}

// Metrics returns the registry fed by the metrics capability.
func (h *Host) Metrics() *Registry { return h.metrics }

// Close ends every open session.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for addr, s := range h.sessions {
		if err := s.Close(context.Background()); err != nil {
			errs = append(errs, err)
		}
		delete(h.sessions, addr)
	}
	return errors.Join(errs...)
}

// session returns the open session for address, dialling it on first use.
func (h *Host) session(address string) (Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[address]; ok {
		return s, nil
	}

	s, err := h.dial(h.ctx, address)
	if err != nil {
		return nil, err
	}
	h.sessions[address] = s
	h.log.Debug("Opened database session")
	return s, nil
}
