package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	wapc "github.com/wapc/wapc-guest-tinygo"

	"github.com/tarmac-project/pgcomponent"
	"github.com/tarmac-project/pgcomponent/internal/config"
	"github.com/tarmac-project/pgcomponent/internal/pghost"
	"github.com/tarmac-project/pgcomponent/internal/router"
)

type cmdGlobal struct {
	flagDBURL          string
	flagNamespace      string
	flagDebug          bool
	flagConnectTimeout time.Duration
	flagHelp           bool

	log  *logrus.Logger
	dial pghost.DialFunc
}

func main() {
	app := newApp(&cmdGlobal{log: logrus.New()})

	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newApp(globalCmd *cmdGlobal) *cobra.Command {
	app := &cobra.Command{}
	app.Use = "pgcheck"
	app.Short = "Run the PostgreSQL component scenarios natively"
	app.Long = `Description:
  Run the PostgreSQL component scenarios natively

  The component logic runs in-process against a native host that serves
  the pg, logging and metrics capabilities over a real PostgreSQL server.
`
	app.SilenceUsage = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	// Global flags.
	app.PersistentFlags().StringVar(&globalCmd.flagDBURL, "db-url", os.Getenv(config.AddressKey), "PostgreSQL connection string (defaults to $"+config.AddressKey+")")
	app.PersistentFlags().StringVar(&globalCmd.flagNamespace, "namespace", pgcomponent.DefaultNamespace, "Host call namespace")
	app.PersistentFlags().BoolVar(&globalCmd.flagDebug, "debug", false, "Show all debug messages")
	app.PersistentFlags().DurationVar(&globalCmd.flagConnectTimeout, "connect-timeout", 10*time.Second, "Database connect timeout")
	app.PersistentFlags().BoolVarP(&globalCmd.flagHelp, "help", "h", false, "Print help")

	app.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		globalCmd.log.SetOutput(cmd.ErrOrStderr())
		if globalCmd.flagDebug {
			globalCmd.log.SetLevel(logrus.DebugLevel)
		}
	}

	// Help handling.
	app.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	// run sub-command.
	runCmd := cmdRun{global: globalCmd}
	app.AddCommand(runCmd.Command())

	// list sub-command.
	listCmd := cmdList{global: globalCmd}
	app.AddCommand(listCmd.Command())

	// serve sub-command.
	serveCmd := cmdServe{global: globalCmd}
	app.AddCommand(serveCmd.Command())

	return app
}

// CheckArgs validates the number of arguments passed to the function and shows the help if incorrect.
func (c *cmdGlobal) CheckArgs(cmd *cobra.Command, args []string, minArgs int, maxArgs int) (bool, error) {
	if len(args) < minArgs || (maxArgs != -1 && len(args) > maxArgs) {
		_ = cmd.Help()

		if len(args) == 0 {
			return true, nil
		}

		return true, fmt.Errorf("Invalid number of arguments")
	}

	return false, nil
}

// invoke runs one selector through a fresh component and host. Every
// invocation gets its own database session.
func (c *cmdGlobal) invoke(ctx context.Context, selector string) (router.Response, error) {
	host := pghost.New(ctx, pghost.Config{
		Namespace:      c.flagNamespace,
		Logger:         c.log,
		ConnectTimeout: c.flagConnectTimeout,
		Dial:           c.dial,
	})

	defer func() {
		err := host.Close()
		if err != nil {
			c.log.WithError(err).Warn("Failed to close database session")
		}
	}()

	r, err := router.Wire(router.WireConfig{
		Namespace: c.flagNamespace,
		HostCall:  host.HostCall,
		Lookup:    config.Static(map[string]string{config.AddressKey: c.flagDBURL}),
	})
	if err != nil {
		return router.Response{}, err
	}

	comp, err := pgcomponent.New(pgcomponent.Config{
		Namespace: c.flagNamespace,
		Handler:   r.Handler(),
		Register:  func(string, wapc.Function) {},
	})
	if err != nil {
		return router.Response{}, err
	}

	resp := router.Response{StatusCode: router.StatusOK}
	out, err := comp.Invoke([]byte(selector))
	if err != nil {
		var se *router.StatusError
		if !errors.As(err, &se) {
			return router.Response{}, err
		}
		resp = se.Response
	} else {
		resp.Body = string(out)
	}

	c.log.WithFields(host.Metrics().Fields()).WithField("selector", selector).Debug("Invocation finished")
	return resp, nil
}
