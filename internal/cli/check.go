package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/temirov/harvest/internal/config"
	"github.com/temirov/harvest/internal/rules"
	"github.com/temirov/harvest/internal/types"
	"github.com/temirov/harvest/internal/utils"
)

const (
	rootFlagName = "root"

	checkUse              = types.CommandCheck + " [--root DIR] PATH..."
	checkAlias            = "c"
	checkShortDescription = "explain how rules treat paths (" + checkAlias + ")"
	checkLongDescription  = `Report whether each path would be harvested and which rule decided it.
Paths are relative to --root; absolute paths must lie inside it. A path ending in "/" is treated as a directory;
otherwise the file system under --root decides, and missing paths are treated as files.`
	checkUsageExample = `  # Check paths against a rule file
  harvest check --ignore harvest.ignore bin/app.pdb docs/

  # Check paths inside a payload directory
  harvest check --root ./payload --exclude-ext .log logs/today.log`

	rootFlagDescription = "directory the paths are relative to"

	checkLineFormat        = "%s\t%s\t%s"
	checkRuleFormat        = "%s (rule %d)"
	checkRuleSourceFormat  = "%s (line %d)"
	checkAncestorFormat    = "%s via %s"
	checkNoRuleDescription = "-"

	errorStatCheckPathFormat = "%w: inspect %s: %w"
	errorOutsideRootFormat   = "%w: %s is outside root %s"
	errorResolveRootFormat   = "%w: resolve root %s: %w"
	noColorEnvironment       = "NO_COLOR"
)

type checkFlags struct {
	root              string
	ignoreFile        string
	excludePatterns   []string
	excludeExtensions []string
	ignoreCase        bool
}

// createCheckCommand returns the check subcommand.
func createCheckCommand(options *rootOptions) *cobra.Command {
	var flags checkFlags

	checkCommand := &cobra.Command{
		Use:     checkUse,
		Aliases: []string{checkAlias},
		Short:   checkShortDescription,
		Long:    checkLongDescription,
		Example: checkUsageExample,
		Args:    wrapArguments(cobra.MinimumNArgs(1)),
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, err := options.loadConfiguration()
			if err != nil {
				return err
			}
			generate := configuration.Generate
			sources := config.RuleSources{
				RuleFile:          generate.IgnoreFile,
				ExcludeExtensions: utils.SplitList(concatenate(generate.Paths.ExcludeExtensions, flags.excludeExtensions)...),
				ExcludePatterns:   concatenate(generate.Paths.Exclude, flags.excludePatterns),
				CaseInsensitive:   flags.ignoreCase,
			}
			if command.Flags().Changed(ignoreFileFlagName) {
				sources.RuleFile = flags.ignoreFile
			}
			if !command.Flags().Changed(ignoreCaseFlagName) && generate.IgnoreCase != nil {
				sources.CaseInsensitive = *generate.IgnoreCase
			}
			matcher, err := config.BuildMatcher(sources)
			if err != nil {
				return err
			}
			return runCheck(command, matcher, flags.root, arguments)
		},
	}
	checkCommand.Flags().StringVar(&flags.root, rootFlagName, ".", rootFlagDescription)
	addRuleFlags(checkCommand, &flags.ignoreFile, &flags.excludePatterns, &flags.excludeExtensions, &flags.ignoreCase)
	return checkCommand
}

// runCheck prints one verdict line per path: verdict, path, deciding rule.
func runCheck(command *cobra.Command, matcher *rules.Matcher, root string, paths []string) error {
	paint := verdictPainter(command.OutOrStdout())
	for _, argument := range paths {
		path, err := rootRelativePath(root, argument)
		if err != nil {
			return err
		}
		isDirectory, err := checkPathIsDirectory(root, path)
		if err != nil {
			return err
		}
		decision, decidingPath := matcher.Explain(path, isDirectory)
		normalized := rules.NormalizePath(path)
		if err := writeLine(command.OutOrStdout(), checkLineFormat, paint(decision.Verdict), normalized, describeDecision(matcher, decision, decidingPath, normalized)); err != nil {
			return err
		}
	}
	return nil
}

func describeDecision(matcher *rules.Matcher, decision rules.Decision, decidingPath, path string) string {
	if decision.RuleIndex < 0 {
		return checkNoRuleDescription
	}
	rule := matcher.Rule(decision.RuleIndex)
	description := fmt.Sprintf(checkRuleFormat, rule.String(), decision.RuleIndex+1)
	if rule.Line > 0 {
		description = fmt.Sprintf(checkRuleSourceFormat, rule.String(), rule.Line)
	}
	if decidingPath != path {
		description = fmt.Sprintf(checkAncestorFormat, description, decidingPath)
	}
	return description
}

// rootRelativePath rewrites an absolute path as a path relative to root and
// keeps a trailing separator, which marks a directory.
func rootRelativePath(root, path string) (string, error) {
	if !filepath.IsAbs(path) {
		return path, nil
	}
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf(errorResolveRootFormat, types.ErrInvalidArguments, root, err)
	}
	relativePath := utils.RelativePathOrSelf(path, absoluteRoot)
	if filepath.IsAbs(filepath.FromSlash(relativePath)) {
		return "", fmt.Errorf(errorOutsideRootFormat, types.ErrInvalidArguments, path, root)
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		relativePath += "/"
	}
	return relativePath, nil
}

func checkPathIsDirectory(root, path string) (bool, error) {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, `\`) {
		return true, nil
	}
	info, err := os.Lstat(filepath.Join(root, filepath.FromSlash(rules.NormalizePath(path))))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(errorStatCheckPathFormat, types.ErrTraversal, path, err)
	}
	return info.IsDir(), nil
}

// verdictPainter colors verdicts when writer is a terminal and NO_COLOR is unset.
func verdictPainter(writer io.Writer) func(rules.Verdict) string {
	file, isFile := writer.(*os.File)
	enabled := isFile && os.Getenv(noColorEnvironment) == "" &&
		(isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd()))
	palette := map[rules.Verdict]*color.Color{
		rules.VerdictExclude: color.New(color.FgRed),
		rules.VerdictInclude: color.New(color.FgGreen),
		rules.VerdictNone:    color.New(color.Faint),
	}
	return func(verdict rules.Verdict) string {
		if !enabled {
			return verdict.String()
		}
		painter := palette[verdict]
		painter.EnableColor()
		return painter.Sprint(verdict.String())
	}
}
