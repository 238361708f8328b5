package pgcomponent

import (
	"fmt"

	wapc "github.com/wapc/wapc-guest-tinygo"
)

// DefaultNamespace is used when no explicit namespace is provided.
const DefaultNamespace = "tarmac"

// HandlerFunctionName is the waPC function name the component handler is exported as.
const HandlerFunctionName = "handler"

var (
	// ErrHandlerNil is returned when the provided function handler is nil.
	ErrHandlerNil = fmt.Errorf("function handler cannot be nil")
)

// HostCall is the waPC host function signature shared by every capability client.
type HostCall func(namespace, capability, function string, payload []byte) ([]byte, error)

// Handler processes one inbound invocation payload.
type Handler func([]byte) ([]byte, error)

// Config provides configuration options for component initialization.
type Config struct {
	// Namespace controls the function namespace to use for host callbacks.
	// If empty, DefaultNamespace is used.
	Namespace string

	// Handler is the function to be registered as the main WebAssembly entry point.
	Handler Handler

	// Register overrides wapc.RegisterFunction. Tests and native runners use it
	// to capture the handler instead of exporting it.
	Register func(name string, fn wapc.Function)
}

// RuntimeConfig carries configuration that is used during creation of capability clients.
type RuntimeConfig struct {
	// Namespace is the function namespace used to scope host interactions.
	Namespace string
}

// Component represents the initialized runtime with a registered waPC handler.
type Component struct {
	runtime RuntimeConfig
	handler Handler
}

// New initializes the component and registers the handler with waPC.
func New(config Config) (*Component, error) {
	if config.Handler == nil {
		return nil, ErrHandlerNil
	}

	cfg := RuntimeConfig{Namespace: DefaultNamespace}
	if config.Namespace != "" {
		cfg.Namespace = config.Namespace
	}

	register := config.Register
	if register == nil {
		register = wapc.RegisterFunction
	}

	c := &Component{
		runtime: cfg,
		handler: config.Handler,
	}

	register(HandlerFunctionName, wapc.Function(c.handler))

	return c, nil
}

// Config returns the current runtime configuration snapshot.
func (c *Component) Config() RuntimeConfig { return c.runtime }

// Invoke runs the registered handler directly, bypassing waPC.
func (c *Component) Invoke(payload []byte) ([]byte, error) {
	return c.handler(payload)
}
