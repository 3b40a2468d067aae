package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/vaspipr/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // optional run archive

	// DefaultSpin seeds the --spin flag of subcommands (IPR_SPIN).
	DefaultSpin string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ipr CLI.
func NewRootCommand() *cobra.Command {
	env, envErr := config.LoadEnv()
	opts := &RootOptions{DefaultSpin: env.Spin}

	cmd := &cobra.Command{
		Use:   "ipr",
		Short: "Inverse participation ratios from VASP output",
		Long: `Compute the inverse participation ratio (IPR) of every electronic state
from VASP PROCAR and EIGENVAL files, and write "energy,IPR" rows sorted
by energy.

IPR = sum over ions of w_i^2 / (sum over ions of w_i)^2, where w_i is the
projected weight on ion i summed over orbitals. Localised states approach
1, states spread over N ions approach 1/N.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", envErr)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", env.Verbose, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", env.Database, "path to SQLite run archive (IPR_DB)")

	// Add subcommands
	cmd.AddCommand(NewComputeCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// setupLogging installs the process-wide slog handler. Logs always go to
// stderr so they never mix with CSV or JSON on stdout.
func setupLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
