package logging

import (
	"fmt"
	"sort"
	"strings"

	sdk "github.com/tarmac-project/pgcomponent"
	wapc "github.com/wapc/wapc-guest-tinygo"
)

// CapabilityName is the host capability receiving log entries.
const CapabilityName = "logging"

// Level names double as the host function names.
const (
	LevelInfo  = "Info"
	LevelWarn  = "Warn"
	LevelError = "Error"
	LevelDebug = "Debug"
	LevelTrace = "Trace"
)

// Ctx is structured context attached to a log entry.
type Ctx map[string]any

// Client exposes convenience helpers for sending log entries to the host runtime.
type Client interface {
	Info(message string, ctx ...Ctx)
	Warn(message string, ctx ...Ctx)
	Error(message string, ctx ...Ctx)
	Debug(message string, ctx ...Ctx)
	Trace(message string, ctx ...Ctx)

	// With returns a client that adds ctx to every entry.
	With(ctx Ctx) Client
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for logging operations.
	HostCall sdk.HostCall
}

type client struct {
	runtime  sdk.RuntimeConfig
	hostCall sdk.HostCall
	base     Ctx
}

// New creates a Client that emits logs through the configured host capability.
func New(cfg Config) (Client, error) {
	runtimeCfg := cfg.SDKConfig
	if runtimeCfg.Namespace == "" {
		runtimeCfg.Namespace = sdk.DefaultNamespace
	}

	hostCall := cfg.HostCall
	if hostCall == nil {
		hostCall = wapc.HostCall
	}

	return &client{
		runtime:  runtimeCfg,
		hostCall: hostCall,
	}, nil
}

func (c *client) Info(message string, ctx ...Ctx)  { c.log(LevelInfo, message, ctx) }
func (c *client) Warn(message string, ctx ...Ctx)  { c.log(LevelWarn, message, ctx) }
func (c *client) Error(message string, ctx ...Ctx) { c.log(LevelError, message, ctx) }
func (c *client) Debug(message string, ctx ...Ctx) { c.log(LevelDebug, message, ctx) }
func (c *client) Trace(message string, ctx ...Ctx) { c.log(LevelTrace, message, ctx) }

func (c *client) With(ctx Ctx) Client {
	merged := Ctx{}
	for k, v := range c.base {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &client{runtime: c.runtime, hostCall: c.hostCall, base: merged}
}

// log is best effort; host failures are dropped.
func (c *client) log(level string, message string, ctx []Ctx) {
	all := append([]Ctx{c.base}, ctx...)
	_, _ = c.hostCall(c.runtime.Namespace, CapabilityName, level, []byte(Format(message, all...)))
}

// Format renders message followed by the context as sorted key=value pairs.
// Values containing spaces are quoted.
func Format(message string, ctx ...Ctx) string {
	fields := map[string]any{}
	for _, c := range ctx {
		for k, v := range c {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return message
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(message)
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if strings.ContainsAny(v, " \t\n\"") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}
