// Package config reads the per-invocation settings of the component.
package config

import (
	"errors"
	"os"
	"strings"
)

// AddressKey names the setting holding the PostgreSQL address.
const AddressKey = "DB_URL"

// ErrMissingAddress is returned when no database address is configured.
var ErrMissingAddress = errors.New("database address is not configured")

// LookupFunc resolves a setting by key, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Config is the configuration of one invocation.
type Config struct {
	// Address is the PostgreSQL connection string handed to the pg capability.
	Address string
}

// Load reads the configuration through lookup. A nil lookup reads the process
// environment.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	addr, ok := lookup(AddressKey)
	addr = strings.TrimSpace(addr)
	if !ok || addr == "" {
		return Config{}, ErrMissingAddress
	}

	return Config{Address: addr}, nil
}

// Static returns a LookupFunc serving fixed values.
func Static(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}
