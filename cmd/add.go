package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aqlanhadi/solarpayback/extractor"
	"github.com/aqlanhadi/solarpayback/ledger"
)

type valueFlag struct {
	name  string
	usage string
	field func(*ledger.Submission) *ledger.FormValue
}

var addValueFlags = []valueFlag{
	{"basic-solar", "basic tier amount on the solar bill", func(s *ledger.Submission) *ledger.FormValue { return &s.BasicSolar }},
	{"intermediate1-solar", "intermediate 1 amount on the solar bill", func(s *ledger.Submission) *ledger.FormValue { return &s.Intermediate1Solar }},
	{"intermediate2-solar", "intermediate 2 amount on the solar bill", func(s *ledger.Submission) *ledger.FormValue { return &s.Intermediate2Solar }},
	{"surplus-solar", "surplus amount on the solar bill", func(s *ledger.Submission) *ledger.FormValue { return &s.SurplusSolar }},
	{"basic-kwh", "basic kWh drawn from the grid", func(s *ledger.Submission) *ledger.FormValue { return &s.BasicGridKWh }},
	{"intermediate1-kwh", "intermediate 1 kWh drawn from the grid", func(s *ledger.Submission) *ledger.FormValue { return &s.Intermediate1GridKWh }},
	{"intermediate2-cost", "intermediate 2 grid cost, taken as is", func(s *ledger.Submission) *ledger.FormValue { return &s.Intermediate2GridCost }},
	{"surplus-kwh", "surplus kWh drawn from the grid", func(s *ledger.Submission) *ledger.FormValue { return &s.SurplusGridKWh }},
	{"basic-price", "price per basic kWh", func(s *ledger.Submission) *ledger.FormValue { return &s.BasicPrice }},
	{"intermediate-price", "price per intermediate kWh", func(s *ledger.Submission) *ledger.FormValue { return &s.IntermediatePrice }},
	{"surplus-price", "price per surplus kWh", func(s *ledger.Submission) *ledger.FormValue { return &s.SurplusPrice }},
	{"returned-kwh", "kWh returned to the grid", func(s *ledger.Submission) *ledger.FormValue { return &s.ReturnedKWh }},
}

var (
	addPeriod   string
	addSource   string
	addFromBill string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Appends a billing period to the ledger",
	Long: `Prices a new billing period and appends it to the ledger.

With --from-bill the grid quantities, prices, label and returned energy are
prefilled from a CFE bill PDF; any flag given explicitly overrides them.
Empty values count as zero. A value that is not a number rejects the period
and nothing is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var sub ledger.Submission
		if addFromBill != "" {
			result, err := extractor.ProcessFile(addFromBill)
			if err != nil {
				return err
			}
			sub = result.Prefill.Submission()
		}

		flags := cmd.Flags()
		if flags.Changed("period") {
			sub.Period = addPeriod
		}
		if flags.Changed("source") {
			sub.Source = addSource
		}
		for _, f := range addValueFlags {
			if flags.Changed(f.name) {
				v, _ := flags.GetString(f.name)
				*f.field(&sub) = ledger.FormValue(v)
			}
		}

		period, err := sub.ToPeriod()
		if err != nil {
			return err
		}

		store := newStore()
		l, warnings, err := store.LoadForUpdate()
		if err != nil {
			return err
		}
		for _, w := range warnings {
			log.Warn(w.String())
		}

		period = l.Append(period)
		if err := store.Save(l); err != nil {
			return err
		}

		log.WithField("period", period.Label).WithField("number", period.Number).Info("period added")
		return render(cmd.OutOrStdout(), period)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addPeriod, "period", "p", "", "label of the billing period")
	addCmd.Flags().StringVar(&addSource, "source", "", "source of the period, when the ledger has an Origen column")
	addCmd.Flags().StringVar(&addFromBill, "from-bill", "", "prefill values from a CFE bill PDF")
	for _, f := range addValueFlags {
		addCmd.Flags().String(f.name, "", f.usage)
	}
}
