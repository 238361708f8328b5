/*
Package hostmock provides a pretend host for waPC calls.

It is meant for component tests that need to see exactly what is sent to the
Tarmac host, without a host running: routing (namespace, capability,
function), payload contents, and the order of calls.

Quick start

	m, _ := hostmock.New(hostmock.Config{
	  ExpectedNamespace:  "tarmac",
	  ExpectedCapability: "pg",
	  Functions: map[string]hostmock.Handler{
	    "execute": func(p []byte) ([]byte, error) { return okExec(), nil },
	    "query":   func(p []byte) ([]byte, error) { return rows(), nil },
	  },
	})

	client, _ := pg.New(pg.Config{HostCall: m.HostCall})

Behavior

  - Every call is recorded first; Calls and CallCount expose the log.
  - If Fail is true, HostCall returns Error, or ErrOperationFailed when Error is nil.
  - Expected namespace, capability and function are enforced only when set.
  - PayloadValidator runs before the response is produced.
  - Functions, when set, picks the reply by function name; otherwise Response
    provides the bytes, or nil when unset.
*/
package hostmock
