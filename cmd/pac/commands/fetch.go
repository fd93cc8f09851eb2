package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [dir]",
		Short: "Materialize the dependency tree of a project without building it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs, err := c.app.Fetch(cmd.Context(), projectDir(args), c.opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, pkg := range pkgs {
				_, _ = fmt.Fprintf(out, "%s\t%s\n", pkg.Ref(), pkg.Path)
			}
			return nil
		},
	}
}
