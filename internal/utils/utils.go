package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/harvest/internal/types"
)

const (
	listSeparators       = ";,"
	preprocessorPrefix   = "$("
	preprocessorSuffix   = ")"
	errorResolvePathFmt  = "%w: resolve %s: %w"
	errorMissingPathFmt  = "%w: %s: %w"
	errorInspectPathFmt  = "%w: inspect %s: %w"
	errorNotDirectoryFmt = "%w: %s is not a directory"
)

// Process exit codes per error kind.
const (
	ExitCodeSuccess          = 0
	ExitCodeFailure          = 1
	ExitCodeInvalidArguments = 2
	ExitCodePathNotFound     = 3
	ExitCodeTraversal        = 4
	ExitCodeSerialization    = 5
)

// DeduplicatePatterns removes repeated patterns while preserving first-seen order.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; exists {
			continue
		}
		encounteredPatterns[pattern] = struct{}{}
		result = append(result, pattern)
	}
	return result
}

// SplitList splits values on semicolons and commas, dropping empty items.
// Each value may itself hold several items, as in ".pdb;.log".
func SplitList(values ...string) []string {
	var items []string
	for _, value := range values {
		fields := strings.FieldsFunc(value, func(character rune) bool {
			return strings.ContainsRune(listSeparators, character)
		})
		for _, field := range fields {
			if trimmed := strings.TrimSpace(field); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}

// ReferenceRoot renders a preprocessor variable name as the reference root of
// emitted sources. Values already written as $(...) are returned unchanged.
func ReferenceRoot(variable string) string {
	trimmed := strings.TrimSpace(variable)
	if strings.HasPrefix(trimmed, preprocessorPrefix) && strings.HasSuffix(trimmed, preprocessorSuffix) {
		return trimmed
	}
	return preprocessorPrefix + trimmed + preprocessorSuffix
}

// ResolveDirectory returns the absolute form of an existing directory path.
func ResolveDirectory(path string) (types.ValidatedPath, error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorResolvePathFmt, types.ErrInvalidArguments, path, err)
	}
	info, err := os.Stat(absolutePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.ValidatedPath{}, fmt.Errorf(errorMissingPathFmt, types.ErrPathNotFound, absolutePath, err)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorInspectPathFmt, types.ErrTraversal, absolutePath, err)
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf(errorNotDirectoryFmt, types.ErrInvalidArguments, absolutePath)
	}
	return types.ValidatedPath{AbsolutePath: absolutePath, IsDir: true}, nil
}

// RelativePathOrSelf returns path relative to root using forward slashes, or
// path itself when it lies outside root.
func RelativePathOrSelf(path, root string) string {
	relativePath, err := filepath.Rel(root, path)
	if err != nil || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relativePath)
}

// ExitCode maps an error to the process exit code of its kind.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, types.ErrInvalidArguments):
		return ExitCodeInvalidArguments
	case errors.Is(err, types.ErrPathNotFound):
		return ExitCodePathNotFound
	case errors.Is(err, types.ErrTraversal):
		return ExitCodeTraversal
	case errors.Is(err, types.ErrSerialization):
		return ExitCodeSerialization
	default:
		return ExitCodeFailure
	}
}
