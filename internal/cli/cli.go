package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/specialistvlad/flightderive/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var config *app.Config
	root := newRootCommand(func(c *app.Config) { config = c })
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if config == nil {
		// Help, or no command given.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func newRootCommand(set func(*app.Config)) *cobra.Command {
	root := &cobra.Command{
		Use:   "flightderive",
		Short: "Derive flight parameters, events and phases from recorded flight data.",
		Long: `flightderive processes batches of flight data files. The base profile
analyzes raw recordings and writes enriched flight files; other profiles derive
their own nodes on top of an analyzed batch.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(set))
	return root
}

func newRunCommand(set func(*app.Config)) *cobra.Command {
	var (
		profile         string
		logFormat       string
		logLevel        string
		healthcheckPort int
		workers         int
		mortal          bool
		dryRun          bool
	)

	cmd := &cobra.Command{
		Use:   "run PROFILE_FILE",
		Short: "Run a batch with a profile from an HCL file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logFormat = strings.ToLower(logFormat)
			if logFormat != "text" && logFormat != "json" {
				return fmt.Errorf("invalid log-format: must be 'text' or 'json'")
			}

			logLevel = strings.ToLower(logLevel)
			switch logLevel {
			case "debug", "info", "warn", "error":
				// valid
			default:
				return fmt.Errorf("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
			}
			slog.Debug("CLI parameter validation complete.")

			var mortalOverride *bool
			if cmd.Flags().Changed("mortal") {
				mortalOverride = &mortal
			}

			config, err := app.NewConfig(app.Config{
				ProfilePath:     args[0],
				ProfileName:     profile,
				LogFormat:       logFormat,
				LogLevel:        logLevel,
				HealthcheckPort: healthcheckPort,
				Workers:         workers,
				Mortal:          mortalOverride,
				DryRun:          dryRun,
			})
			if err != nil {
				return err
			}
			set(config)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&profile, "profile", "p", "", "Profile to run. May be omitted when the file defines only one.")
	flags.StringVar(&logFormat, "log-format", "json", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.IntVar(&healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	flags.IntVarP(&workers, "workers", "w", 0, "Flights processed concurrently. 0 keeps the profile's setting.")
	flags.BoolVar(&mortal, "mortal", false, "Abort the batch on the first failed flight. Unset keeps the profile's setting.")
	flags.BoolVar(&dryRun, "dry-run", false, "Only compute and log the processing order.")
	return cmd
}
