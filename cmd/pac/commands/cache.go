package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/pac/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the cache tiers",
	}
	cmd.AddCommand(c.newCacheListCmd())
	cmd.AddCommand(c.newCacheExistsCmd())
	return cmd
}

func (c *CLI) newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the artifacts held by the local tier",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := c.app.ListCache(cmd.Context(), c.opts)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PACKAGE\tRUNTIME\tSIZE\tSOURCE\tCHECKSUM")
			for _, r := range records {
				_, _ = fmt.Fprintf(w, "%s@%s\t%s\t%d\t%s\t%s\n", r.Name, r.Version, r.Runtime, r.Size, r.Source, shortSum(r.Checksum))
			}
			return w.Flush()
		},
	}
}

func (c *CLI) newCacheExistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exists <name> <version>",
		Short: "Check whether a cache tier holds a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, _ := cmd.Flags().GetString("tier")
			dep := domain.Dependency{Name: args[0], Version: args[1]}

			ok, err := c.app.Exists(cmd.Context(), dep, tier, c.opts)
			if err != nil {
				return err
			}
			if !ok {
				return zerr.With(zerr.Wrap(domain.ErrArtifactNotFound, "package is not cached"), "package", dep.Ref())
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dep.Ref()+" is cached")
			return nil
		},
	}
	cmd.Flags().String("tier", "", "Name of the cache tier to query (default the local tier)")
	return cmd
}

func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
