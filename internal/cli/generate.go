package cli

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/harvest/internal/config"
	"github.com/temirov/harvest/internal/filelock"
	"github.com/temirov/harvest/internal/harvest"
	"github.com/temirov/harvest/internal/output"
	"github.com/temirov/harvest/internal/types"
	"github.com/temirov/harvest/internal/utils"
)

const (
	directoryFlagName      = "directory"
	outputFlagName         = "output"
	variableFlagName       = "var"
	componentGroupFlagName = "component-group"
	directoryRefFlagName   = "directory-ref"
	ignoreFileFlagName     = "ignore"
	excludeFlagName        = "exclude"
	excludeExtFlagName     = "exclude-ext"
	formatFlagName         = "format"
	guidsFlagName          = "guids"
	parallelFlagName       = "parallel"
	ignoreCaseFlagName     = "ignore-case"

	standardOutputPath = "-"

	generateUse              = types.CommandGenerate + " [directory]"
	generateAlias            = "g"
	generateShortDescription = "harvest a directory into a WiX fragment (" + generateAlias + ")"
	generateLongDescription  = `Walk a directory and write a WiX source fragment describing every file in it.
Each file becomes a component keyed by identifiers derived from its reference
path, so unchanged files keep their identifiers between builds.
Rules are applied in order: the rule file, then --exclude-ext, then --exclude.
The output is written only after the whole document has been produced.
Missing output directories are created. Writers to the same output serialize on
a lock file named after it with a ".lock" suffix, which is left in place.`
	generateUsageExample = `  # Harvest ./payload into Payload.wxs
  harvest generate -d ./payload -o Payload.wxs

  # Use a rule file and drop debug symbols
  harvest generate -d ./payload -o Payload.wxs --ignore harvest.ignore --exclude-ext ".pdb;.log"

  # Emit a JSON manifest to standard output
  harvest generate ./payload -o - --format json`

	directoryFlagDescription      = "directory to harvest"
	outputFlagDescription         = "output file, or - for standard output"
	variableFlagDescription       = "preprocessor variable used as the source root"
	componentGroupFlagDescription = "name of the generated component group"
	directoryRefFlagDescription   = "identifier of the directory the harvest attaches to"
	ignoreFileFlagDescription     = "gitignore-style rule file"
	excludeFlagDescription        = "exclude path pattern, applied after the rule file (repeatable)"
	excludeExtFlagDescription     = "exclude file extensions, separated by ';' or ',' (repeatable)"
	formatFlagDescription         = "output format: wxs or json"
	guidsFlagDescription          = "component GUIDs: auto (Guid=\"*\") or stable (derived from the source path)"
	parallelFlagDescription       = "number of sibling directories walked concurrently"
	ignoreCaseFlagDescription     = "match rules case-insensitively"

	harvestCompleteMessage = "harvest complete"

	errorMissingDirectoryMessage = "%w: --directory is required"
	errorMissingOutputMessage    = "%w: --output is required"
	errorConflictingDirectoryFmt = "%w: directory given both as argument %q and --directory %q"
	errorInvalidFormatFormat     = "%w: invalid --format %q"
	errorInvalidGUIDModeFormat   = "%w: invalid --guids %q"
	errorInvalidParallelFormat   = "%w: --parallel must be at least 1, got %d"
	errorEmptySettingFormat      = "%w: --%s must not be empty"
	errorWriteOutputFormat       = "%w: write %s: %w"
)

// generateFlags holds raw flag values before configuration is applied.
type generateFlags struct {
	directory         string
	output            string
	variable          string
	componentGroup    string
	directoryRef      string
	ignoreFile        string
	excludePatterns   []string
	excludeExtensions []string
	format            string
	guids             string
	parallel          int
	ignoreCase        bool
}

// generateSettings is the fully resolved input of one harvest.
type generateSettings struct {
	directory  string
	output     string
	format     string
	parallel   int
	document   types.DocumentSettings
	ruleSource config.RuleSources
}

// createGenerateCommand returns the generate subcommand.
func createGenerateCommand(options *rootOptions) *cobra.Command {
	var flags generateFlags

	generateCommand := &cobra.Command{
		Use:     generateUse,
		Aliases: []string{generateAlias},
		Short:   generateShortDescription,
		Long:    generateLongDescription,
		Example: generateUsageExample,
		Args:    wrapArguments(cobra.MaximumNArgs(1)),
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, err := options.loadConfiguration()
			if err != nil {
				return err
			}
			settings, err := resolveGenerateSettings(command, flags, arguments, configuration.Generate)
			if err != nil {
				return err
			}
			return runGenerate(command.Context(), command, options.logger, settings)
		},
	}
	generateCommand.Flags().StringVarP(&flags.directory, directoryFlagName, "d", "", directoryFlagDescription)
	generateCommand.Flags().StringVarP(&flags.output, outputFlagName, "o", "", outputFlagDescription)
	generateCommand.Flags().StringVar(&flags.variable, variableFlagName, utils.DefaultVariable, variableFlagDescription)
	generateCommand.Flags().StringVar(&flags.componentGroup, componentGroupFlagName, utils.DefaultComponentGroup, componentGroupFlagDescription)
	generateCommand.Flags().StringVar(&flags.directoryRef, directoryRefFlagName, utils.DefaultDirectoryRef, directoryRefFlagDescription)
	addRuleFlags(generateCommand, &flags.ignoreFile, &flags.excludePatterns, &flags.excludeExtensions, &flags.ignoreCase)
	generateCommand.Flags().StringVar(&flags.format, formatFlagName, types.FormatWXS, formatFlagDescription)
	generateCommand.Flags().StringVar(&flags.guids, guidsFlagName, types.GUIDModeAuto, guidsFlagDescription)
	generateCommand.Flags().IntVar(&flags.parallel, parallelFlagName, 1, parallelFlagDescription)
	return generateCommand
}

// addRuleFlags registers the exclusion flags shared by generate and check.
func addRuleFlags(command *cobra.Command, ignoreFile *string, excludePatterns *[]string, excludeExtensions *[]string, ignoreCase *bool) {
	command.Flags().StringVar(ignoreFile, ignoreFileFlagName, "", ignoreFileFlagDescription)
	command.Flags().StringArrayVarP(excludePatterns, excludeFlagName, "e", nil, excludeFlagDescription)
	command.Flags().StringArrayVar(excludeExtensions, excludeExtFlagName, nil, excludeExtFlagDescription)
	command.Flags().BoolVar(ignoreCase, ignoreCaseFlagName, false, ignoreCaseFlagDescription)
}

// resolveGenerateSettings applies flag > configuration > default precedence.
// List settings accumulate: configuration entries first, flag entries last.
func resolveGenerateSettings(command *cobra.Command, flags generateFlags, arguments []string, configuration config.GenerateConfiguration) (generateSettings, error) {
	changed := command.Flags().Changed
	pick := func(flagName, flagValue, configured string) string {
		if changed(flagName) || configured == "" {
			return flagValue
		}
		return configured
	}

	directory := flags.directory
	if len(arguments) == 1 {
		if directory != "" && directory != arguments[0] {
			return generateSettings{}, fmt.Errorf(errorConflictingDirectoryFmt, types.ErrInvalidArguments, arguments[0], directory)
		}
		directory = arguments[0]
	}
	if directory == "" {
		return generateSettings{}, fmt.Errorf(errorMissingDirectoryMessage, types.ErrInvalidArguments)
	}
	if flags.output == "" {
		return generateSettings{}, fmt.Errorf(errorMissingOutputMessage, types.ErrInvalidArguments)
	}

	settings := generateSettings{
		directory: directory,
		output:    flags.output,
		format:    pick(formatFlagName, flags.format, configuration.Format),
		parallel:  flags.parallel,
		document: types.DocumentSettings{
			ReferenceRoot:  utils.ReferenceRoot(pick(variableFlagName, flags.variable, configuration.Variable)),
			ComponentGroup: pick(componentGroupFlagName, flags.componentGroup, configuration.ComponentGroup),
			DirectoryRefID: pick(directoryRefFlagName, flags.directoryRef, configuration.DirectoryRef),
			GUIDMode:       strings.ToLower(pick(guidsFlagName, flags.guids, configuration.GUIDs)),
		},
		ruleSource: config.RuleSources{
			RuleFile:          pick(ignoreFileFlagName, flags.ignoreFile, configuration.IgnoreFile),
			ExcludeExtensions: utils.SplitList(concatenate(configuration.Paths.ExcludeExtensions, flags.excludeExtensions)...),
			ExcludePatterns:   concatenate(configuration.Paths.Exclude, flags.excludePatterns),
			CaseInsensitive:   flags.ignoreCase,
		},
	}
	if !changed(parallelFlagName) && configuration.Parallel != nil {
		settings.parallel = *configuration.Parallel
	}
	if !changed(ignoreCaseFlagName) && configuration.IgnoreCase != nil {
		settings.ruleSource.CaseInsensitive = *configuration.IgnoreCase
	}

	if !output.IsSupportedFormat(settings.format) {
		return generateSettings{}, fmt.Errorf(errorInvalidFormatFormat, types.ErrInvalidArguments, settings.format)
	}
	if settings.document.GUIDMode != types.GUIDModeAuto && settings.document.GUIDMode != types.GUIDModeStable {
		return generateSettings{}, fmt.Errorf(errorInvalidGUIDModeFormat, types.ErrInvalidArguments, settings.document.GUIDMode)
	}
	if settings.parallel < 1 {
		return generateSettings{}, fmt.Errorf(errorInvalidParallelFormat, types.ErrInvalidArguments, settings.parallel)
	}
	if settings.document.ComponentGroup == "" {
		return generateSettings{}, fmt.Errorf(errorEmptySettingFormat, types.ErrInvalidArguments, componentGroupFlagName)
	}
	if settings.document.DirectoryRefID == "" {
		return generateSettings{}, fmt.Errorf(errorEmptySettingFormat, types.ErrInvalidArguments, directoryRefFlagName)
	}
	return settings, nil
}

// runGenerate harvests settings.directory and publishes the rendered document.
func runGenerate(ctx context.Context, command *cobra.Command, logger *zap.Logger, settings generateSettings) error {
	if ctx == nil {
		ctx = context.Background()
	}
	matcher, err := config.BuildMatcher(settings.ruleSource)
	if err != nil {
		return err
	}
	root, err := utils.ResolveDirectory(settings.directory)
	if err != nil {
		return err
	}

	var document bytes.Buffer
	renderer, err := output.NewStreamRenderer(settings.format, &document, settings.document)
	if err != nil {
		return err
	}

	parallelism := settings.parallel
	if parallelism > runtime.NumCPU()*4 {
		parallelism = runtime.NumCPU() * 4
	}
	walkOptions := harvest.Options{
		Root:          root.AbsolutePath,
		ReferenceRoot: settings.document.ReferenceRoot,
		AnchorID:      settings.document.DirectoryRefID,
		Matcher:       matcher,
		Parallelism:   parallelism,
		Logger:        logger,
	}
	registry := harvest.NewRegistry()
	consumer := func(record types.Record) error {
		registry.Observe(record)
		return renderer.Handle(record)
	}
	if err := dispatchStream(ctx, walkProducer(walkOptions), consumer); err != nil {
		return err
	}
	if err := renderer.Finish(registry.ComponentIDs()); err != nil {
		return err
	}

	if settings.output == standardOutputPath {
		if _, err := command.OutOrStdout().Write(document.Bytes()); err != nil {
			return fmt.Errorf(errorWriteOutputFormat, types.ErrSerialization, "standard output", err)
		}
	} else if err := filelock.LockAndWrite(ctx, settings.output, document.Bytes()); err != nil {
		return fmt.Errorf(errorWriteOutputFormat, types.ErrSerialization, settings.output, err)
	}

	logger.Info(harvestCompleteMessage,
		zap.String("root", root.AbsolutePath),
		zap.String("output", settings.output),
		zap.Int("units", registry.Units()),
		zap.Int("directories", registry.Directories()),
		zap.Int("rules", matcher.Len()))
	return nil
}
