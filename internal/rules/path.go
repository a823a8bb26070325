package rules

import (
	"path"
	"strings"
)

const pathSeparator = "/"

// NormalizePath converts a relative path to clean forward-slash form without a
// leading or trailing slash. Spaces are part of names and are kept. The root
// itself normalizes to "".
func NormalizePath(raw string) string {
	normalized := strings.ReplaceAll(raw, `\`, pathSeparator)
	normalized = strings.TrimPrefix(normalized, "./")
	normalized = strings.TrimPrefix(normalized, pathSeparator)
	if normalized == "" {
		return ""
	}
	normalized = strings.TrimPrefix(path.Clean(pathSeparator+normalized), pathSeparator)
	if normalized == "." {
		return ""
	}
	return normalized
}

// baseName returns the final segment of a normalized path.
func baseName(normalizedPath string) string {
	if index := strings.LastIndex(normalizedPath, pathSeparator); index >= 0 {
		return normalizedPath[index+1:]
	}
	return normalizedPath
}

// ancestors lists the proper ancestor directories of a normalized path, outermost first.
func ancestors(normalizedPath string) []string {
	var result []string
	for index := 0; index < len(normalizedPath); index++ {
		if normalizedPath[index] == '/' {
			result = append(result, normalizedPath[:index])
		}
	}
	return result
}

func trimTrailingSlashes(pattern string) string {
	return strings.TrimRight(pattern, pathSeparator)
}

func containsSlash(pattern string) bool {
	return strings.Contains(pattern, pathSeparator)
}
