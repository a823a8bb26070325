// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/harvest/internal/config"
	"github.com/temirov/harvest/internal/types"
	"github.com/temirov/harvest/internal/utils"
)

const (
	versionFlagName      = "version"
	verboseFlagName      = "verbose"
	configFlagName       = "config"
	versionTemplate      = "harvest version: %s\n"
	rootUse              = "harvest"
	rootShortDescription = "harvest folders into WiX installer fragments"
	rootLongDescription  = `harvest scans a directory tree and writes a WiX source fragment with one
component per file, stable identifiers derived from reference paths, and a
component group listing every component.
Use a gitignore-style rule file, --exclude and --exclude-ext to leave files out.`
	versionFlagDescription = "display application version"
	verboseFlagDescription = "log skipped entries and other debug detail"
	configFlagDescription  = "configuration file (default .harvest.yaml in the working directory)"

	errorFlagFormat      = "%w: %w"
	errorArgumentsFormat = "%w: %s: %w"
)

// rootOptions carries state shared by every subcommand.
type rootOptions struct {
	logger     *zap.Logger
	level      *zap.AtomicLevel
	configPath string
	verbose    bool
}

// Execute runs the harvest application with the process arguments.
func Execute(ctx context.Context, logger *zap.Logger, level *zap.AtomicLevel) error {
	return NewRootCommand(logger, level).ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command. level may be nil, in which
// case --verbose has no effect on logging.
func NewRootCommand(logger *zap.Logger, level *zap.AtomicLevel) *cobra.Command {
	options := &rootOptions{logger: utils.LoggerOrNop(logger), level: level}
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          wrapArguments(cobra.NoArgs),
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if options.verbose && options.level != nil {
				options.level.SetLevel(zapcore.DebugLevel)
			}
		},
	}
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().BoolVarP(&options.verbose, verboseFlagName, "v", false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	rootCommand.SetFlagErrorFunc(func(command *cobra.Command, err error) error {
		return fmt.Errorf(errorFlagFormat, types.ErrInvalidArguments, err)
	})
	rootCommand.AddCommand(
		createGenerateCommand(options),
		createCheckCommand(options),
		createIDCommand(),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// loadConfiguration reads the application configuration honoring --config.
func (options *rootOptions) loadConfiguration() (config.ApplicationConfiguration, error) {
	return config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: options.configPath})
}

// wrapArguments tags positional argument errors as invalid arguments.
func wrapArguments(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(command *cobra.Command, arguments []string) error {
		if err := validate(command, arguments); err != nil {
			return fmt.Errorf(errorArgumentsFormat, types.ErrInvalidArguments, command.Name(), err)
		}
		return nil
	}
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// concatenate joins lists into a new slice preserving order.
func concatenate(lists ...[]string) []string {
	var joined []string
	for _, list := range lists {
		joined = append(joined, list...)
	}
	return joined
}

func writeLine(writer io.Writer, format string, arguments ...any) error {
	_, err := fmt.Fprintf(writer, format+"\n", arguments...)
	return err
}
