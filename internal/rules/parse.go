package rules

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	commentPrefix         = "#"
	negationPrefix        = "!"
	escapedCommentPrefix  = `\#`
	escapedNegationPrefix = `\!`
	extensionGlobPrefix   = "*."
)

// ParseRules reads gitignore-style rules from reader in source order.
//
// Blank lines and lines starting with "#" are skipped. A leading "!" negates
// the rule; "\!" and "\#" escape a literal leading "!" or "#". Leading spaces
// belong to the pattern. Trailing spaces are dropped unless escaped with "\".
func ParseRules(reader io.Reader) ([]Rule, error) {
	scanner := bufio.NewScanner(reader)
	var parsedRules []Rule
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		line = trimTrailingSpaces(line)
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		if strings.HasPrefix(line, escapedCommentPrefix) {
			line = line[1:]
		}

		negated := false
		if strings.HasPrefix(line, negationPrefix) {
			negated = true
			line = line[1:]
		} else if strings.HasPrefix(line, escapedNegationPrefix) {
			line = line[1:]
		}

		if trimTrailingSlashes(line) == "" {
			return nil, fmt.Errorf("%w: line %d: empty pattern", ErrInvalidRule, lineNumber)
		}

		rule := NewRule(line, negated)
		rule.Line = lineNumber
		parsedRules = append(parsedRules, rule)
	}

	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("scan rules: %w", scanError)
	}
	return parsedRules, nil
}

// ParseRulesString parses rules from string input.
func ParseRulesString(source string) ([]Rule, error) {
	return ParseRules(strings.NewReader(source))
}

// ParseExtensions converts file extensions to exclude rules of the form "*.ext".
//
// Accepted forms are "log", ".log" and "*.log". Empty values are skipped and
// input order is preserved.
func ParseExtensions(extensions []string) []Rule {
	extensionRules := make([]Rule, 0, len(extensions))
	for _, extension := range extensions {
		trimmed := strings.TrimSpace(extension)
		trimmed = strings.TrimPrefix(trimmed, extensionGlobPrefix)
		trimmed = strings.TrimLeft(trimmed, ".")
		if trimmed == "" {
			continue
		}
		extensionRules = append(extensionRules, NewRule(extensionGlobPrefix+trimmed, false))
	}
	return extensionRules
}

// ParsePatterns converts inline patterns, each in rule-source syntax, to rules.
// Blank entries are skipped. Returned rules carry no source line.
func ParsePatterns(patterns []string) ([]Rule, error) {
	inlineRules, parseError := ParseRulesString(strings.Join(patterns, "\n"))
	if parseError != nil {
		return nil, parseError
	}
	for index := range inlineRules {
		inlineRules[index].Line = 0
	}
	return inlineRules, nil
}

// MergeRules concatenates rule slices preserving input order.
func MergeRules(ruleSets ...[]Rule) []Rule {
	total := 0
	for _, ruleSet := range ruleSets {
		total += len(ruleSet)
	}
	merged := make([]Rule, 0, total)
	for _, ruleSet := range ruleSets {
		merged = append(merged, ruleSet...)
	}
	return merged
}

// trimTrailingSpaces removes trailing spaces unless escaped by "\".
func trimTrailingSpaces(line string) string {
	for len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
		if len(line) >= 2 && line[len(line)-2] == '\\' {
			return line[:len(line)-2] + line[len(line)-1:]
		}
		line = line[:len(line)-1]
	}
	return line
}
