package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/tarmac-project/pgcomponent/internal/router"
)

type cmdServe struct {
	global *cmdGlobal

	flagListen string
}

// Command generates the command definition.
func (c *cmdServe) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "serve"
	cmd.Short = "Serve the scenarios over HTTP"
	cmd.Long = `Description:
  Serve the scenarios over HTTP

  Every scenario is exposed as a GET route. Each request runs in its own
  database session. Unknown paths answer 404 Not found.
`
	cmd.RunE = c.Run
	cmd.Flags().StringVar(&c.flagListen, "listen", "127.0.0.1:8080", "Address to listen on"+"``")

	return cmd
}

// Run runs the actual command logic.
func (c *cmdServe) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	server := &http.Server{
		Addr:              c.flagListen,
		Handler:           c.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.global.log.Infof("Listening on %s", c.flagListen)

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (c *cmdServe) handler() http.Handler {
	mux := chi.NewRouter()
	for _, route := range router.Routes() {
		mux.Get(route, c.serveScenario)
	}

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(router.NotFoundBody))
	})

	return mux
}

func (c *cmdServe) serveScenario(w http.ResponseWriter, req *http.Request) {
	resp, err := c.global.invoke(req.Context(), req.URL.Path)
	if err != nil {
		c.global.log.WithError(err).Error("Invocation failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write([]byte(resp.Body))
}
