package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tripplanner/internal/config"
	"tripplanner/internal/metrics"
	"tripplanner/internal/sources"
	"tripplanner/internal/utils"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	env        config.Env
	configPath string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{env: config.LoadEnv()}

	root := &cobra.Command{
		Use:   "tripplanner",
		Short: "Travel itinerary optimizer",
		Long: `tripplanner gathers flight, hotel and activity candidates from the
configured travel sources and picks the itinerary that best balances cost
against travel time and quality.

Examples:
  tripplanner plan --origin "New York" --destination Paris
  tripplanner optimize --input candidates.json
  tripplanner serve`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", a.env.ConfigPath, "Path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", a.env.LogLevel, "Log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", a.env.LogFormat, "Log format (json|console)")

	root.AddCommand(newPlanCmd(a), newOptimizeCmd(a), newServeCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.logger = utils.NewLogger(a.logLevel, a.logFormat, cmd.ErrOrStderr())
	log.Logger = a.logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug().Str("config", a.configPath).Strs("sources", cfg.Sources).Msg("configuration loaded")
	return nil
}

// newGatherer builds one mock source per configured site name.
func (a *app) newGatherer(cache sources.Cache, m *metrics.Metrics) *sources.Gatherer {
	srcs := make([]sources.Source, 0, len(a.cfg.Sources))
	for _, name := range a.cfg.Sources {
		srcs = append(srcs, sources.NewMockSource(name))
	}

	opts := sources.OptionsFromConfig(a.cfg.Fetch)
	opts.Cache = cache
	opts.Metrics = m
	opts.Logger = a.logger.With().Str("module", "sources").Logger()
	return sources.NewGatherer(srcs, opts)
}

func stdoutIsTerminal() bool {
	return isTerminal(os.Stdout)
}

// changedFloat returns v only when the flag was set on the command line, so
// unset weights fall back to the configuration.
func changedFloat(fl *pflag.FlagSet, name string, v *float64) *float64 {
	if !fl.Changed(name) {
		return nil
	}
	return v
}
