package cmd

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aqlanhadi/solarpayback/dashboard"
	"github.com/aqlanhadi/solarpayback/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [file.pdf]",
	Short: "Writes a PDF report of the payback position",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "solarpayback-report.pdf"
		if len(args) == 1 {
			path = args[0]
		}

		out, err := report.Render(dashboard.Build(filteredView(), newState().GoalAmount), time.Now())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return err
		}

		log.WithField("file", path).Info("report written")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addFilterFlags(reportCmd)
}
