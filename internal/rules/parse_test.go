package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/harvest/internal/rules"
)

func TestParseRulesSkipsCommentsAndBlankLines(t *testing.T) {
	source := "# build output\n\n*.log\r\n  \n!keep.log\nbuild/\n/config.yml\n"

	parsed, err := rules.ParseRulesString(source)
	require.NoError(t, err)
	require.Len(t, parsed, 4)

	assert.Equal(t, rules.Rule{Pattern: "*.log", Line: 3}, parsed[0])
	assert.Equal(t, rules.Rule{Pattern: "keep.log", Negated: true, Line: 5}, parsed[1])
	assert.Equal(t, rules.Rule{Pattern: "build/", DirectoryOnly: true, Line: 6}, parsed[2])
	assert.Equal(t, rules.Rule{Pattern: "/config.yml", Anchored: true, Line: 7}, parsed[3])
}

func TestParseRulesEscapes(t *testing.T) {
	testCases := []struct {
		name            string
		source          string
		expectedPattern string
		expectedNegated bool
	}{
		{name: "escaped_negation", source: `\!important.txt`, expectedPattern: "!important.txt"},
		{name: "escaped_comment", source: `\#notes.txt`, expectedPattern: "#notes.txt"},
		{name: "trailing_spaces_trimmed", source: "readme.md   ", expectedPattern: "readme.md"},
		{name: "escaped_trailing_space", source: `space\ `, expectedPattern: "space "},
		{name: "leading_space_kept", source: " notes.txt", expectedPattern: " notes.txt"},
		{name: "leading_space_before_negation", source: " !keep.txt", expectedPattern: " !keep.txt"},
		{name: "negation", source: "!keep.txt", expectedPattern: "keep.txt", expectedNegated: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			parsed, err := rules.ParseRulesString(testCase.source)
			require.NoError(t, err)
			require.Len(t, parsed, 1)
			assert.Equal(t, testCase.expectedPattern, parsed[0].Pattern)
			assert.Equal(t, testCase.expectedNegated, parsed[0].Negated)
		})
	}
}

func TestParseRulesRejectsEmptyPatterns(t *testing.T) {
	for _, source := range []string{"!", "/", "!/"} {
		_, err := rules.ParseRulesString(source)
		require.ErrorIs(t, err, rules.ErrInvalidRule, "source %q", source)
	}
}

func TestNewRuleDerivesFlags(t *testing.T) {
	testCases := []struct {
		pattern       string
		directoryOnly bool
		anchored      bool
	}{
		{pattern: "*.log"},
		{pattern: "build/", directoryOnly: true},
		{pattern: "/config.yml", anchored: true},
		{pattern: "docs/*.md", anchored: true},
		{pattern: "docs/generated/", directoryOnly: true, anchored: true},
		{pattern: "**/cache", anchored: true},
	}

	for _, testCase := range testCases {
		rule := rules.NewRule(testCase.pattern, false)
		assert.Equal(t, testCase.directoryOnly, rule.DirectoryOnly, testCase.pattern)
		assert.Equal(t, testCase.anchored, rule.Anchored, testCase.pattern)
	}
}

func TestParseExtensions(t *testing.T) {
	parsed := rules.ParseExtensions([]string{"pdb", ".log", "*.tmp", " ", ""})
	require.Len(t, parsed, 3)
	assert.Equal(t, "*.pdb", parsed[0].Pattern)
	assert.Equal(t, "*.log", parsed[1].Pattern)
	assert.Equal(t, "*.tmp", parsed[2].Pattern)
	for _, rule := range parsed {
		assert.False(t, rule.Negated)
		assert.False(t, rule.Anchored)
	}
}

func TestParsePatternsClearsLineNumbers(t *testing.T) {
	parsed, err := rules.ParsePatterns([]string{"*.bak", "", "!keep.bak"})
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Zero(t, parsed[0].Line)
	assert.Zero(t, parsed[1].Line)
	assert.True(t, parsed[1].Negated)
}

func TestMergeRulesPreservesOrder(t *testing.T) {
	first := []rules.Rule{rules.NewRule("a", false)}
	second := []rules.Rule{rules.NewRule("b", false), rules.NewRule("c", true)}

	merged := rules.MergeRules(first, nil, second)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"a", "b", "!c"}, []string{merged[0].String(), merged[1].String(), merged[2].String()})
}
