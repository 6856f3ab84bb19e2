package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aqlanhadi/solarpayback/extractor"
	"github.com/aqlanhadi/solarpayback/extractor/common"
)

var extractTextOnly bool

var extractCmd = &cobra.Command{
	Use:   "extract <bill.pdf | folder>",
	Short: "Reads billing fields out of CFE bill PDFs",
	Long: `Extracts the tariff fields of a CFE bill and the values they suggest
for a new period. Given a folder, every PDF directly inside it is read and
files that cannot be read are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractTextOnly {
			text, err := common.ExtractTextFromPDF(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(text + "\n"))
			return err
		}

		results, err := extractor.ProcessPath(args[0])
		if err != nil {
			return err
		}
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return render(cmd.OutOrStdout(), results[0])
		}
		return render(cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractTextOnly, "text-only", false, "print the raw text of the PDF instead of the fields")
}
