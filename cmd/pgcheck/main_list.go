package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tarmac-project/pgcomponent/internal/router"
)

type cmdList struct {
	global *cmdGlobal
}

// Command generates the command definition.
func (c *cmdList) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "list"
	cmd.Short = "List the scenario selectors"
	cmd.RunE = c.Run

	return cmd
}

// Run runs the actual command logic.
func (c *cmdList) Run(cmd *cobra.Command, args []string) error {
	// Quick checks.
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	for _, route := range router.Routes() {
		fmt.Fprintln(cmd.OutOrStdout(), route)
	}

	return nil
}
