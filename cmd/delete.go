package cmd

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aqlanhadi/solarpayback/ledger"
)

var deleteLastCmd = &cobra.Command{
	Use:   "delete-last",
	Short: "Removes the last billing period from the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()
		l, _, err := store.LoadForUpdate()
		if err != nil {
			return err
		}

		removed, err := l.DeleteLast()
		if errors.Is(err, ledger.ErrEmptyLedger) {
			log.Warn("no periods to delete")
			return nil
		}

		if err := store.Save(l); err != nil {
			return err
		}

		log.WithField("period", removed.Label).Info("last period deleted")
		return render(cmd.OutOrStdout(), removed)
	},
}

func init() {
	rootCmd.AddCommand(deleteLastCmd)
}
