// Package output renders walker records into installer-authoring documents.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/harvest/internal/types"
)

const errorUnsupportedFormat = "%w: unsupported format %q"

// StreamRenderer consumes records in traversal order and completes the
// document once the flat list of unit identifiers is known.
type StreamRenderer interface {
	Handle(record types.Record) error
	Finish(componentIDs []string) error
}

// NewStreamRenderer returns the renderer for format writing to writer.
func NewStreamRenderer(format string, writer io.Writer, settings types.DocumentSettings) (StreamRenderer, error) {
	switch strings.ToLower(format) {
	case types.FormatWXS, "":
		return NewWixStreamRenderer(writer, settings), nil
	case types.FormatJSON:
		return NewJSONStreamRenderer(writer, settings), nil
	default:
		return nil, fmt.Errorf(errorUnsupportedFormat, types.ErrInvalidArguments, format)
	}
}

// IsSupportedFormat reports whether format names a known renderer.
func IsSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case types.FormatWXS, types.FormatJSON:
		return true
	default:
		return false
	}
}

func serializationError(stage string, cause error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrSerialization, stage, cause)
}
