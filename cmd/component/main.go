// Command component is the WebAssembly entry point. It registers the router
// as the waPC handler; the host routes each request's path to it as payload.
//
// The database address is read from the DB_URL environment variable of the
// guest, which the host must pass through its WASI environment.
package main

import (
	"errors"

	"github.com/tarmac-project/pgcomponent"
	"github.com/tarmac-project/pgcomponent/internal/router"
)

// ErrInit is returned by every invocation when the component failed to wire
// its capability clients.
var ErrInit = errors.New("component failed to initialize")

func main() {
	_, err := pgcomponent.New(pgcomponent.Config{Handler: newHandler(router.WireConfig{})})
	if err != nil {
		panic(err)
	}
}

// newHandler wires the router. A wiring failure still yields a handler so
// the host sees the cause on each call instead of a missing function.
func newHandler(cfg router.WireConfig) pgcomponent.Handler {
	r, err := router.Wire(cfg)
	if err != nil {
		initErr := errors.Join(ErrInit, err)
		return func([]byte) ([]byte, error) { return nil, initErr }
	}
	return r.Handler()
}
