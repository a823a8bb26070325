/*
Package rules implements the exclusion engine: gitignore-style rules evaluated
in load order against slash-separated paths relative to the traversal root.

Basic flow:
  - parse rules from a rule source (`ParseRules`, `ParseRulesString`)
  - optionally add extension rules (`ParseExtensions`) and inline rules (`MergeRules`)
  - compile a matcher (`NewMatcher`)
  - ask for a decision (`Decide` for a single level, `IsExcluded` for a full path)

Later rules override earlier ones; a negated rule ("!pattern") re-includes a
path excluded by an earlier rule. A nil *Matcher excludes nothing.
*/
package rules
