// Command tiertrace summarizes, compares and plots memory tiering interval
// traces.
package main

import (
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/fjl/tiertrace"
)

var (
	logLevel   string
	configFile string
	parallel   int
	align      bool

	cfg runConfig
)

var rootCmd = &cobra.Command{
	Use:          "tiertrace",
	Short:        "Analyze DRAM hit ratio traces of tiering simulations",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)

		if configFile != "" {
			if cfg, err = loadRunConfig(configFile); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("parallel") {
			cfg.Parallel = parallel
		}
		if cmd.Flags().Changed("align") {
			cfg.Align = align
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML run configuration")
	rootCmd.PersistentFlags().IntVar(&parallel, "parallel", 0, "Maximum number of traces loaded at once (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVar(&align, "align", false, "Shift all timelines onto one shared axis")

	rootCmd.AddCommand(summaryCmd, plotCmd, diffCmd)
}

// loadDataset loads the traces named by args, or by the run configuration
// when args is empty. Traces that fail to load are logged and skipped.
func loadDataset(args []string) (*tiertrace.Dataset, error) {
	inputs := args
	if len(inputs) == 0 {
		inputs = cfg.Traces
	}
	paths, err := expandInputs(inputs)
	if err != nil {
		return nil, err
	}
	ds, err := tiertrace.LoadDataset(paths, cfg.Parallel)
	if errors.Is(err, tiertrace.ErrNoInput) {
		return nil, err
	}
	for _, e := range multierr.Errors(err) {
		logrus.WithError(e).Warn("Skipping trace")
	}
	if len(ds.Workloads) == 0 {
		return nil, errors.New("no trace could be loaded")
	}
	if cfg.Align {
		return ds.Align()
	}
	return ds, nil
}
