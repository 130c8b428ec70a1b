package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rohankatakam/autogippity/internal/config"
	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/logging"
	"github.com/rohankatakam/autogippity/internal/output"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile    string
	verbose    bool
	outputFlag string
	logger     *slog.Logger
	cfg        *config.Config
)

func main() {
	err := rootCmd.Execute()
	_ = logging.Close()
	if err != nil {
		var e *errors.Error
		if verbose && stderrors.As(err, &e) {
			fmt.Fprint(os.Stderr, e.DetailedString())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "autogippity",
	Short: "AutoGippity - agents that turn a website request into a Go webserver",
	Long: `AutoGippity drives a small team of LLM agents (managing agent, solutions
architect, backend developer) that turn a plain-language request into a
goal, a project scope, webserver code and a REST endpoint schema.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to load config, using defaults: %v\n", err)
			cfg = config.Default()
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(logging.DefaultConfig(level, cfg.Logging.JSON, cfg.Logging.File)); err != nil {
			return err
		}
		logger = slog.Default().With("component", "cli")

		if _, ok := output.ParseVerbosity(outputFlag); !ok {
			return fmt.Errorf("unknown --output %q (want quiet, standard or json)", outputFlag)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .autogippity/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: quiet, standard, json (default from AUTOGIPPITY_OUTPUT)")

	rootCmd.SetVersionTemplate(`AutoGippity {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(checkURLCmd)
	rootCmd.AddCommand(historyCmd)
}

// verbosity resolves --output, falling back to the environment default
func verbosity() output.VerbosityLevel {
	if outputFlag == "" {
		return output.GetDefaultVerbosity()
	}
	level, _ := output.ParseVerbosity(outputFlag)
	return level
}
