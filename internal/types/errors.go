package types

import "errors"

// Error kinds surfaced to the invoking build pipeline. Every failure returned by
// harvest wraps exactly one of them.
var (
	// ErrInvalidArguments reports a missing or malformed argument or rule.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrPathNotFound reports a missing traversal root or rule-source file.
	ErrPathNotFound = errors.New("path not found")
	// ErrTraversal reports an I/O failure while enumerating the tree.
	ErrTraversal = errors.New("traversal failure")
	// ErrSerialization reports that the output document could not be produced or written.
	ErrSerialization = errors.New("serialization failure")
)
