// Package commands implements the flowtime CLI.
package commands

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"flowtime/internal/config"
	"flowtime/internal/cycletime"
	"flowtime/internal/jira"
	"flowtime/internal/logging"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	envFile string

	cfg        *config.AppConfig
	jiraClient jira.Client
	engine     *cycletime.Engine
)

var rootCmd = &cobra.Command{
	Use:   "flowtime",
	Short: "Flowtime computes active cycle times from Jira change histories",
	Long: `Flowtime reconstructs how long work items were genuinely in progress:
it classifies each issue's change history into work cycles, subtracts time
spent in excluded statuses or flagged as an impediment, and reports
per-issue and per-window summaries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}

		jiraClient = jira.NewClient(cfg.Jira)

		engine, err = cycletime.New(cfg.Vocabulary, cycletime.DefaultOptions())
		if err != nil {
			return err
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Flowtime starting")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load configuration from this .env file instead of searching")
}
