// Package config loads rule sources and application configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/harvest/internal/rules"
	"github.com/temirov/harvest/internal/types"
)

const (
	errorRuleFileMissingFormat  = "%w: rule source %s: %w"
	errorRuleFileReadFormat     = "%w: reading rule source %s: %w"
	errorRuleFileParseFormat    = "%w: rule source %s: %w"
	errorRuleFileIsDirectoryFmt = "%w: rule source %s is a directory"
	errorInlineRulesFormat      = "%w: inline exclusion: %w"
)

// LoadRuleFile reads gitignore-style rules from ruleFilePath.
//
// An empty path yields no rules. A missing file is an error: a rule source
// that was asked for but cannot be found is never silently ignored.
//
// #nosec G304
func LoadRuleFile(ruleFilePath string) ([]rules.Rule, error) {
	if ruleFilePath == "" {
		return nil, nil
	}
	info, statErr := os.Stat(ruleFilePath)
	if statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf(errorRuleFileMissingFormat, types.ErrPathNotFound, ruleFilePath, statErr)
		}
		return nil, fmt.Errorf(errorRuleFileReadFormat, types.ErrTraversal, ruleFilePath, statErr)
	}
	if info.IsDir() {
		return nil, fmt.Errorf(errorRuleFileIsDirectoryFmt, types.ErrInvalidArguments, ruleFilePath)
	}

	fileHandle, openErr := os.Open(ruleFilePath)
	if openErr != nil {
		return nil, fmt.Errorf(errorRuleFileReadFormat, types.ErrTraversal, ruleFilePath, openErr)
	}
	defer fileHandle.Close()

	parsedRules, parseErr := rules.ParseRules(fileHandle)
	if parseErr != nil {
		if errors.Is(parseErr, rules.ErrInvalidRule) {
			return nil, fmt.Errorf(errorRuleFileParseFormat, types.ErrInvalidArguments, ruleFilePath, parseErr)
		}
		return nil, fmt.Errorf(errorRuleFileReadFormat, types.ErrTraversal, ruleFilePath, parseErr)
	}
	return parsedRules, nil
}

// RuleSources lists every origin of exclusion rules for one harvest.
type RuleSources struct {
	// RuleFile is the optional gitignore-style rule source.
	RuleFile string
	// ExcludeExtensions become "*.ext" rules after the rule file.
	ExcludeExtensions []string
	// ExcludePatterns are inline rules applied last.
	ExcludePatterns []string
	// CaseInsensitive folds case when matching.
	CaseInsensitive bool
}

// BuildMatcher loads every rule source in precedence order and compiles the
// resulting matcher: rule file, then extensions, then inline patterns.
func BuildMatcher(sources RuleSources) (*rules.Matcher, error) {
	fileRules, err := LoadRuleFile(sources.RuleFile)
	if err != nil {
		return nil, err
	}
	inlineRules, err := rules.ParsePatterns(sources.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf(errorInlineRulesFormat, types.ErrInvalidArguments, err)
	}
	merged := rules.MergeRules(fileRules, rules.ParseExtensions(sources.ExcludeExtensions), inlineRules)
	matcher, err := rules.NewMatcher(merged, rules.MatcherOptions{CaseInsensitive: sources.CaseInsensitive})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidArguments, err)
	}
	return matcher, nil
}
