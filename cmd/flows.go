// -- cmd/flows.go --
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/probeworks/extflow/internal/flow"
)

// newFlowsCmd builds the flows subcommand listing the catalog.
func newFlowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flows",
		Short: "List the available test flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FLOW\tVALUE\tSUMMARY")
			for _, def := range flow.Definitions() {
				hint := def.ValueHint
				if hint == "" {
					hint = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", def.Name, hint, def.Summary)
			}
			return w.Flush()
		},
	}
}
