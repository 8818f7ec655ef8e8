package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "flux",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Core request flags (simple mode)
	flags.String("target", "", "Base target URL to load test")
	flags.String("method", "GET", "HTTP method to use in simple mode")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.String("body", "", "Inline request body payload for simple mode")

	// Load control flags
	flags.IntP("concurrency", "c", 10, "Number of concurrent workers")
	flags.StringP("duration", "d", "30s", "How long to run the test (e.g. 30s, 5m, 2h)")
	flags.String("mode", string(ModeAsync), "Worker launch mode: 'async' or 'sync'")
	flags.IntP("rate", "r", 0, "Requests per second limit across all workers (0 means unlimited)")
	flags.Duration("timeout", defaultTimeout, "Per-request timeout")

	// Output flags
	flags.String("json-report", "", "Write a JSON report to the specified file path")
	flags.String("html-report", "", "Write an HTML report to the specified file path")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config,
// overriding values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.Target = strings.TrimSpace(val)
	}
	if fs.Changed("method") {
		val, err := fs.GetString("method")
		if err != nil {
			return err
		}
		cfg.Method = val
	}
	if fs.Changed("header") {
		vals, err := fs.GetStringSlice("header")
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for _, entry := range vals {
			key, value, found := strings.Cut(entry, "=")
			if !found || strings.TrimSpace(key) == "" {
				return fmt.Errorf("invalid header flag %q, expected key=value", entry)
			}
			cfg.Headers[strings.TrimSpace(key)] = value
		}
	}
	if fs.Changed("body") {
		val, err := fs.GetString("body")
		if err != nil {
			return err
		}
		cfg.Body = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("duration") {
		val, err := fs.GetString("duration")
		if err != nil {
			return err
		}
		cfg.Duration = strings.TrimSpace(val)
	}
	if fs.Changed("mode") {
		val, err := fs.GetString("mode")
		if err != nil {
			return err
		}
		cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(val)))
	}
	if fs.Changed("rate") {
		val, err := fs.GetInt("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("json-report") {
		val, err := fs.GetString("json-report")
		if err != nil {
			return err
		}
		cfg.Output.JSON = strings.TrimSpace(val)
	}
	if fs.Changed("html-report") {
		val, err := fs.GetString("html-report")
		if err != nil {
			return err
		}
		cfg.Output.HTML = strings.TrimSpace(val)
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	return nil
}
