package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/harvest/internal/rules"
)

func mustMatcher(t *testing.T, source string, options rules.MatcherOptions) *rules.Matcher {
	t.Helper()
	parsed, err := rules.ParseRulesString(source)
	require.NoError(t, err)
	matcher, err := rules.NewMatcher(parsed, options)
	require.NoError(t, err)
	return matcher
}

type pathCase struct {
	path        string
	isDirectory bool
	excluded    bool
}

func assertPathCases(t *testing.T, matcher *rules.Matcher, cases []pathCase) {
	t.Helper()
	for _, testCase := range cases {
		assert.Equal(t, testCase.excluded, matcher.IsExcluded(testCase.path, testCase.isDirectory),
			"path %q (directory=%v)", testCase.path, testCase.isDirectory)
	}
}

func TestMatcherNegationLaterRuleWins(t *testing.T) {
	matcher := mustMatcher(t, "*.log\n!keep.log\n", rules.MatcherOptions{})

	assertPathCases(t, matcher, []pathCase{
		{path: "keep.log"},
		{path: "nested/keep.log"},
		{path: "debug.log", excluded: true},
		{path: "nested/trace.log", excluded: true},
		{path: "readme.txt"},
	})

	decision := matcher.Decide("keep.log", false)
	assert.Equal(t, rules.VerdictInclude, decision.Verdict)
	assert.Equal(t, 1, decision.RuleIndex)
}

func TestMatcherReversedNegationExcludes(t *testing.T) {
	matcher := mustMatcher(t, "!keep.log\n*.log\n", rules.MatcherOptions{})

	assertPathCases(t, matcher, []pathCase{
		{path: "keep.log", excluded: true},
		{path: "debug.log", excluded: true},
	})
	assert.Equal(t, 1, matcher.Decide("keep.log", false).RuleIndex)
}

func TestMatcherDirectoryOnlyRules(t *testing.T) {
	matcher := mustMatcher(t, "build/\n", rules.MatcherOptions{})

	assertPathCases(t, matcher, []pathCase{
		{path: "build", isDirectory: true, excluded: true},
		{path: "build"},
		{path: "build/output.bin", excluded: true},
		{path: "build/deep/nested/file.txt", excluded: true},
		{path: "src/build", isDirectory: true, excluded: true},
		{path: "src/build/file.txt", excluded: true},
		{path: "builder/file.txt"},
	})

	assert.False(t, matcher.Excluded("build/output.bin", false), "Decide alone does not consult ancestors")
}

func TestMatcherAnchoring(t *testing.T) {
	anchored := mustMatcher(t, "/config.yml\n", rules.MatcherOptions{})
	assertPathCases(t, anchored, []pathCase{
		{path: "config.yml", excluded: true},
		{path: "sub/config.yml"},
	})

	floating := mustMatcher(t, "config.yml\n", rules.MatcherOptions{})
	assertPathCases(t, floating, []pathCase{
		{path: "config.yml", excluded: true},
		{path: "sub/config.yml", excluded: true},
		{path: "a/b/c/config.yml", excluded: true},
	})

	embedded := mustMatcher(t, "docs/*.md\n", rules.MatcherOptions{})
	assertPathCases(t, embedded, []pathCase{
		{path: "docs/readme.md", excluded: true},
		{path: "docs/api/readme.md"},
		{path: "other/docs/readme.md"},
	})
}

func TestMatcherGlobSyntax(t *testing.T) {
	matcher := mustMatcher(t, "?.tmp\n**/cache\nassets/**/*.psd\n[ab].dat\n", rules.MatcherOptions{})

	assertPathCases(t, matcher, []pathCase{
		{path: "a.tmp", excluded: true},
		{path: "ab.tmp"},
		{path: "cache", isDirectory: true, excluded: true},
		{path: "x/y/cache", isDirectory: true, excluded: true},
		{path: "x/y/cache/entry.bin", excluded: true},
		{path: "assets/logo.psd", excluded: true},
		{path: "assets/icons/large/logo.psd", excluded: true},
		{path: "assets/logo.png"},
		{path: "a.dat", excluded: true},
		{path: "c.dat"},
	})
}

func TestMatcherStarDoesNotCrossSegments(t *testing.T) {
	matcher := mustMatcher(t, "bin/*\n", rules.MatcherOptions{})

	assert.True(t, matcher.Excluded("bin/tool.exe", false))
	assert.False(t, matcher.Excluded("bin/x64/tool.exe", false))
	assert.True(t, matcher.IsExcluded("bin/x64/tool.exe", false), "excluded through the bin/x64 ancestor")
}

func TestMatcherNegationCannotReincludeBelowExcludedDirectory(t *testing.T) {
	matcher := mustMatcher(t, "logs/\n!logs/keep.txt\n", rules.MatcherOptions{})

	assert.True(t, matcher.IsExcluded("logs/keep.txt", false))
	decision, decidedBy := matcher.Explain("logs/keep.txt", false)
	assert.Equal(t, "logs", decidedBy)
	assert.Equal(t, 0, decision.RuleIndex)
}

func TestMatcherBracesAreLiteral(t *testing.T) {
	matcher := mustMatcher(t, "{a,b}.txt\n", rules.MatcherOptions{})

	assert.True(t, matcher.Excluded("{a,b}.txt", false))
	assert.False(t, matcher.Excluded("a.txt", false))
}

func TestMatcherCaseInsensitive(t *testing.T) {
	sensitive := mustMatcher(t, "*.LOG\n", rules.MatcherOptions{})
	assert.False(t, sensitive.Excluded("trace.log", false))

	insensitive := mustMatcher(t, "*.LOG\n", rules.MatcherOptions{CaseInsensitive: true})
	assert.True(t, insensitive.Excluded("trace.log", false))
	assert.True(t, insensitive.Excluded("TRACE.Log", false))
}

func TestMatcherNormalizesPaths(t *testing.T) {
	matcher := mustMatcher(t, "/sub/file.txt\n", rules.MatcherOptions{})

	for _, candidate := range []string{"sub/file.txt", "/sub/file.txt", "./sub/file.txt", `sub\file.txt`, "sub//file.txt"} {
		assert.True(t, matcher.Excluded(candidate, false), candidate)
	}
}

func TestMatcherTrailingDoubleStarMatchesOnlyContents(t *testing.T) {
	matcher := mustMatcher(t, "logs/**\n", rules.MatcherOptions{})

	assert.Equal(t, rules.VerdictNone, matcher.Decide("logs", true).Verdict)
	assert.False(t, matcher.IsExcluded("logs", true))
	assert.True(t, matcher.IsExcluded("logs/today.log", false))
	assert.True(t, matcher.IsExcluded("logs/archive", true))
	assert.True(t, matcher.IsExcluded("logs/archive/old.log", false))

	nested := mustMatcher(t, "**/cache/**\n", rules.MatcherOptions{})
	assert.False(t, nested.IsExcluded("cache", true))
	assert.False(t, nested.IsExcluded("app/cache", true))
	assert.True(t, nested.IsExcluded("app/cache/blob.bin", false))
}

func TestMatcherKeepsSpacesInNames(t *testing.T) {
	anchored := mustMatcher(t, "/x\n", rules.MatcherOptions{})
	for _, candidate := range []string{" x", "x ", "sub/ x"} {
		assert.False(t, anchored.IsExcluded(candidate, false), "%q", candidate)
	}
	assert.True(t, anchored.IsExcluded("x", false))

	spaced := mustMatcher(t, " x\n", rules.MatcherOptions{})
	assert.True(t, spaced.IsExcluded(" x", false))
	assert.True(t, spaced.IsExcluded("sub/ x", false))
	assert.False(t, spaced.IsExcluded("x", false))
}

func TestNormalizePathKeepsSpaces(t *testing.T) {
	assert.Equal(t, " x", rules.NormalizePath(" x"))
	assert.Equal(t, "sub/x ", rules.NormalizePath("./sub/x "))
	assert.Equal(t, "", rules.NormalizePath("./"))
}

func TestNilMatcherExcludesNothing(t *testing.T) {
	var matcher *rules.Matcher

	assert.False(t, matcher.IsExcluded("anything/at/all.txt", false))
	assert.Equal(t, rules.VerdictNone, matcher.Decide("file.txt", false).Verdict)
	assert.Equal(t, -1, matcher.Decide("file.txt", false).RuleIndex)
	assert.Zero(t, matcher.Len())
}

func TestEmptyMatcherExcludesNothing(t *testing.T) {
	matcher, err := rules.NewMatcher(nil, rules.MatcherOptions{})
	require.NoError(t, err)
	assert.False(t, matcher.IsExcluded("file.txt", false))
}

func TestNewMatcherRejectsInvalidPatterns(t *testing.T) {
	_, err := rules.NewMatcher([]rules.Rule{rules.NewRule("[unclosed", false)}, rules.MatcherOptions{})
	require.ErrorIs(t, err, rules.ErrInvalidPattern)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "excluded", rules.VerdictExclude.String())
	assert.Equal(t, "included", rules.VerdictInclude.String())
	assert.Equal(t, "unmatched", rules.VerdictNone.String())
}
