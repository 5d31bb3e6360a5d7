package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cloudpick/internal/app"
)

// domains: print every domain and its subcommands in registration order.
func domainsCmd(wire func() *app.Wire) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List resource domains and their subcommands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer flush(cmd, wire())
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range wire().Registry.Domains() {
				fmt.Fprintf(tw, "%s\t%s\n", d.Name, d.Description)
				for _, s := range d.Subcommands {
					usage := s.Usage
					if usage == "" {
						usage = s.Name
					}
					fmt.Fprintf(tw, "  %s\t%s\n", usage, s.Description)
				}
			}
			return tw.Flush()
		},
	}
}
