package rules

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const contentsSuffix = "/**"

// compiledRule is the matcher-internal form of one rule.
type compiledRule struct {
	// glob is the doublestar pattern with anchoring and directory slashes removed.
	glob string
	// container is set for patterns ending in "/**"; it names the directory
	// whose contents match, which the pattern itself does not.
	container string
	source    Rule
}

// Matcher evaluates an immutable, ordered rule list.
type Matcher struct {
	compiled        []compiledRule
	caseInsensitive bool
}

// NewMatcher compiles ordered rules into a matcher.
func NewMatcher(ruleList []Rule, options MatcherOptions) (*Matcher, error) {
	compiled := make([]compiledRule, 0, len(ruleList))
	for index, rule := range ruleList {
		compiledEntry, compileError := compileRule(rule, options.CaseInsensitive)
		if compileError != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", index, rule.String(), compileError)
		}
		compiled = append(compiled, compiledEntry)
	}
	return &Matcher{compiled: compiled, caseInsensitive: options.CaseInsensitive}, nil
}

func compileRule(rule Rule, caseInsensitive bool) (compiledRule, error) {
	glob := strings.TrimPrefix(trimTrailingSlashes(rule.Pattern), pathSeparator)
	if glob == "" {
		return compiledRule{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	// Braces are literal in gitignore syntax but alternation in doublestar.
	glob = strings.NewReplacer("{", `\{`, "}", `\}`).Replace(glob)
	if caseInsensitive {
		glob = strings.ToLower(glob)
	}
	if !doublestar.ValidatePattern(glob) {
		return compiledRule{}, fmt.Errorf("%w: %q", ErrInvalidPattern, rule.Pattern)
	}
	compiled := compiledRule{glob: glob, source: rule}
	if strings.HasSuffix(glob, contentsSuffix) {
		compiled.container = strings.TrimSuffix(glob, contentsSuffix)
	}
	return compiled, nil
}

// matches reports whether the rule applies to a normalized candidate.
func (r compiledRule) matches(candidate string, isDirectory bool) bool {
	if r.source.DirectoryOnly && !isDirectory {
		return false
	}
	subject := candidate
	if !r.source.Anchored {
		subject = baseName(candidate)
	}
	matched, _ := doublestar.Match(r.glob, subject)
	if matched && r.container != "" {
		if self, _ := doublestar.Match(r.container, subject); self {
			return false
		}
	}
	return matched
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.compiled)
}

// Rule returns the source rule at index.
func (m *Matcher) Rule(index int) Rule {
	return m.compiled[index].source
}

// Decide evaluates every rule in load order against one path and returns the
// verdict of the last matching rule. Ancestor directories are not consulted.
func (m *Matcher) Decide(relativePath string, isDirectory bool) Decision {
	decision := Decision{Verdict: VerdictNone, RuleIndex: -1}
	if m == nil {
		return decision
	}
	candidate := m.normalize(relativePath)
	if candidate == "" {
		return decision
	}
	for index := range m.compiled {
		if !m.compiled[index].matches(candidate, isDirectory) {
			continue
		}
		decision.RuleIndex = index
		decision.Verdict = VerdictExclude
		if m.compiled[index].source.Negated {
			decision.Verdict = VerdictInclude
		}
	}
	return decision
}

// Excluded reports whether Decide excludes the path.
func (m *Matcher) Excluded(relativePath string, isDirectory bool) bool {
	return m.Decide(relativePath, isDirectory).Excluded()
}

// IsExcluded reports whether a path is excluded, treating an excluded ancestor
// directory as excluding every descendant.
func (m *Matcher) IsExcluded(relativePath string, isDirectory bool) bool {
	decision, _ := m.Explain(relativePath, isDirectory)
	return decision.Excluded()
}

// Explain returns the decision for a path together with the path that decided
// it: either the path itself or the outermost excluded ancestor directory.
func (m *Matcher) Explain(relativePath string, isDirectory bool) (Decision, string) {
	candidate := NormalizePath(relativePath)
	for _, ancestor := range ancestors(candidate) {
		if decision := m.Decide(ancestor, true); decision.Excluded() {
			return decision, ancestor
		}
	}
	return m.Decide(candidate, isDirectory), candidate
}

func (m *Matcher) normalize(relativePath string) string {
	candidate := NormalizePath(relativePath)
	if m.caseInsensitive {
		candidate = strings.ToLower(candidate)
	}
	return candidate
}
