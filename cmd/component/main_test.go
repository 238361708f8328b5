package main

import (
	"errors"
	"testing"

	"github.com/tarmac-project/pgcomponent/hostmock"
	"github.com/tarmac-project/pgcomponent/internal/config"
	"github.com/tarmac-project/pgcomponent/internal/router"
	"github.com/tarmac-project/pgcomponent/metrics"
)

func TestNewHandler(t *testing.T) {
	t.Parallel()

	mock, err := hostmock.New(hostmock.Config{})
	if err != nil {
		t.Fatalf("hostmock: %v", err)
	}

	h := newHandler(router.WireConfig{HostCall: mock.HostCall, Lookup: config.Static(nil)})

	_, err = h([]byte("/unknown"))
	var se *router.StatusError
	if !errors.As(err, &se) || se.StatusCode != router.StatusNotFound {
		t.Fatalf("expected 404 from the wired router, got %v", err)
	}
}

func TestNewHandler_WireFailure(t *testing.T) {
	t.Parallel()

	mock, err := hostmock.New(hostmock.Config{})
	if err != nil {
		t.Fatalf("hostmock: %v", err)
	}

	h := newHandler(router.WireConfig{HostCall: mock.HostCall, MetricsPrefix: "bad prefix"})

	for i := 0; i < 2; i++ {
		out, err := h([]byte("/pg_backend_pid"))
		if out != nil || !errors.Is(err, ErrInit) || !errors.Is(err, metrics.ErrInvalidMetricName) {
			t.Fatalf("call %d: expected init failure, got %q/%v", i, out, err)
		}
	}

	if n := len(mock.Calls()); n != 0 {
		t.Fatalf("a failed component must not call the host, got %d calls", n)
	}
}
