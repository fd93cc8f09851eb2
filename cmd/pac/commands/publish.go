package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pac/internal/app"
)

func (c *CLI) newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [dir]",
		Short: "Build a project and publish its artifact to a cache tier",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("to")
			rewrite, _ := cmd.Flags().GetBool("rewrite")

			return c.app.Publish(cmd.Context(), projectDir(args), app.PublishOptions{
				Options: c.opts,
				Target:  target,
				Rewrite: rewrite,
			})
		},
	}
	cmd.Flags().StringP("to", "t", "", "Name of the cache tier to publish to (default the local tier)")
	cmd.Flags().BoolP("rewrite", "r", false, "Replace an artifact that already exists in the tier")
	return cmd
}
