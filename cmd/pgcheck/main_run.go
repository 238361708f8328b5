package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tarmac-project/pgcomponent/internal/router"
)

type cmdRun struct {
	global *cmdGlobal
}

// Command generates the command definition.
func (c *cmdRun) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "run <selector>"
	cmd.Short = "Run one scenario"
	cmd.Long = `Description:
  Run one scenario

  The selector is a route such as /test_numeric_types. The response body
  is printed on success.
`
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdRun) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 1, 1)
	if exit {
		return err
	}

	resp, err := c.global.invoke(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if resp.StatusCode != router.StatusOK {
		return fmt.Errorf("%s failed with status %d: %s", args[0], resp.StatusCode, resp.Body)
	}

	fmt.Fprint(cmd.OutOrStdout(), resp.Body)
	return nil
}
