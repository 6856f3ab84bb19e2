package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aqlanhadi/solarpayback/extractor/common"
	"github.com/aqlanhadi/solarpayback/ledger"
	"github.com/aqlanhadi/solarpayback/session"
)

// Embedded default configuration, used when no config file is found
const defaultConfigYAML = `
ledger:
  path: ahorro_solar.xlsx
  sheet: Total
goal: 100000
server:
  port: 8080
pdf:
  unidoc_license_key: ""
bill:
  cfe:
    patterns: {}
log:
  level: info
  file: ""
  max_size_mb: 10
  max_backups: 3
  max_age_days: 28
database:
  url: ""
`

var (
	cfgFile string
	verbose bool
	output  string
	rootCmd = &cobra.Command{
		Use:   "solarpayback",
		Short: "Track the payback of a rooftop solar installation",
		Long: `solarpayback keeps a spreadsheet of billing periods, prices each new
period against the CFE residential tariff, reads the figures off uploaded
bill PDFs and reports how much of the investment has been recovered.`,
		SilenceUsage: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging, initPDF)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.solarpayback.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatJSON, "output format: json or yaml")
	rootCmd.PersistentFlags().String("ledger", "", "path to the ledger workbook")
	rootCmd.PersistentFlags().String("sheet", "", "sheet holding the period table")
	rootCmd.PersistentFlags().String("goal", "", "investment to recover")

	viper.BindPFlag("ledger.path", rootCmd.PersistentFlags().Lookup("ledger"))
	viper.BindPFlag("ledger.sheet", rootCmd.PersistentFlags().Lookup("sheet"))
	viper.BindPFlag("goal", rootCmd.PersistentFlags().Lookup("goal"))
}

func initConfig() {
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading embedded configuration: %v\n", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".solarpayback")
	}

	viper.SetEnvPrefix("SOLARPAYBACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

func initLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	var out io.Writer = os.Stderr
	if path := viper.GetString("log.file"); path != "" {
		out = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    viper.GetInt("log.max_size_mb"),
			MaxBackups: viper.GetInt("log.max_backups"),
			MaxAge:     viper.GetInt("log.max_age_days"),
		}
	}
	log.SetOutput(out)
}

func initPDF() {
	if err := common.EnableUniPDF(viper.GetString("pdf.unidoc_license_key")); err != nil {
		log.WithError(err).Warn("unipdf fallback disabled")
	}
}

func newStore() *ledger.Store {
	return ledger.NewStore(viper.GetString("ledger.path"), viper.GetString("ledger.sheet"))
}

// newState starts a session with the configured goal, falling back to the
// default when it is not a valid non-negative number.
func newState() *session.State {
	state := session.New(session.DefaultGoal)
	raw := viper.GetString("goal")
	if raw == "" {
		return state
	}
	goal, err := common.ParseAmount(raw)
	if err == nil {
		err = state.SetGoal(goal)
	}
	if err != nil {
		log.WithField("goal", raw).Warn("invalid goal, using default")
	}
	return state
}
