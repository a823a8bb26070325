package rules

// Verdict is the tri-state outcome of evaluating rules against one path.
type Verdict uint8

const (
	// VerdictNone means no rule matched.
	VerdictNone Verdict = iota
	// VerdictExclude means the last matching rule excludes the path.
	VerdictExclude
	// VerdictInclude means the last matching rule is a negation re-including the path.
	VerdictInclude
)

// String returns a human-readable verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictExclude:
		return "excluded"
	case VerdictInclude:
		return "included"
	default:
		return "unmatched"
	}
}

// Rule is one exclusion rule: a pattern plus the flags derived from its source text.
type Rule struct {
	// Pattern is the source text without the leading "!" of a negation.
	Pattern string `json:"pattern" yaml:"pattern"`
	// Negated is set when the source line began with "!".
	Negated bool `json:"negated,omitempty" yaml:"negated,omitempty"`
	// DirectoryOnly is set when the pattern ends with "/".
	DirectoryOnly bool `json:"directory_only,omitempty" yaml:"directory_only,omitempty"`
	// Anchored is set when the pattern contains a "/" other than a trailing one.
	Anchored bool `json:"anchored,omitempty" yaml:"anchored,omitempty"`
	// Line is the 1-based line in the rule source, 0 for rules not read from a source.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// NewRule builds a rule from a pattern and derives its flags.
func NewRule(pattern string, negated bool) Rule {
	trimmed := trimTrailingSlashes(pattern)
	return Rule{
		Pattern:       pattern,
		Negated:       negated,
		DirectoryOnly: len(trimmed) < len(pattern),
		Anchored:      containsSlash(trimmed),
	}
}

// String renders the rule back in rule-source syntax.
func (r Rule) String() string {
	if r.Negated {
		return "!" + r.Pattern
	}
	return r.Pattern
}

// Decision is the result of evaluating a matcher against one path.
type Decision struct {
	// Verdict is the tri-state outcome.
	Verdict Verdict
	// RuleIndex is the index of the deciding rule, -1 when no rule matched.
	RuleIndex int
}

// Excluded collapses the verdict: only a final exclude verdict excludes.
func (d Decision) Excluded() bool {
	return d.Verdict == VerdictExclude
}

// MatcherOptions controls matcher behavior.
type MatcherOptions struct {
	// CaseInsensitive folds both patterns and candidates to lower case.
	CaseInsensitive bool `json:"case_insensitive,omitempty" yaml:"case_insensitive,omitempty"`
}
