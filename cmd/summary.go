package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aqlanhadi/solarpayback/dashboard"
	"github.com/aqlanhadi/solarpayback/ledger"
)

var viewFilter ledger.Filter

// addFilterFlags registers the period, source and tier selectors on c.
func addFilterFlags(c *cobra.Command) {
	c.Flags().StringSliceVar(&viewFilter.Periods, "period", nil, `period labels to include ("all" for every period)`)
	c.Flags().StringSliceVar(&viewFilter.Sources, "source", nil, `sources to include ("all" for every source)`)
	c.Flags().StringSliceVar(&viewFilter.Tiers, "tier", nil, "tiers whose columns to show: basic, intermediate1, intermediate2, surplus")
}

func filteredView() ledger.View {
	return newStore().Open().Filter(viewFilter)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Shows how much of the investment has been recovered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render(cmd.OutOrStdout(), ledger.Summarize(filteredView(), newState().GoalAmount))
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Prints the chart data for the selected periods",
	Long: `Prints the payback summary together with the savings series, progress,
cost breakdown by tier, solar versus grid totals and the best period.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return render(cmd.OutOrStdout(), dashboard.Build(filteredView(), newState().GoalAmount))
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(dashboardCmd)
	addFilterFlags(summaryCmd)
	addFilterFlags(dashboardCmd)
}
