package rules

import "errors"

// Sentinel errors for rule parsing and compilation.
var (
	// ErrInvalidRule indicates a malformed rule line.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrInvalidPattern indicates a pattern the glob matcher cannot compile.
	ErrInvalidPattern = errors.New("invalid pattern")
)
