// Package ident derives stable identifiers from path information.
//
// An identifier is a semantic prefix followed by the upper-case hexadecimal
// form of the MD5 digest of the UTF-16LE encoding of the input parts joined
// with "|". The result depends only on its inputs, so re-running a harvest on
// an unchanged tree yields identical identifiers on any machine.
package ident

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

const (
	// DirectoryPrefix prefixes directory identifiers.
	DirectoryPrefix = "dir"
	// FilePrefix prefixes file identifiers.
	FilePrefix = "fil"
	// ComponentPrefix prefixes installable-unit identifiers.
	ComponentPrefix = "cmp"

	// PartSeparator joins input parts before hashing.
	PartSeparator = "|"
	// DigestLength is the number of digest bytes rendered into an identifier.
	DigestLength = 16

	errorEncodePartsFormat = "encode identifier input %q: %w"
)

// ErrInvalidEncoding reports input that is not valid UTF-8 and so has no
// lossless UTF-16 form.
var ErrInvalidEncoding = errors.New("identifier input is not valid UTF-8")

var utf16LittleEndian = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Generate returns prefix followed by 2*DigestLength upper-case hex digits
// derived from parts.
func Generate(prefix string, parts ...string) (string, error) {
	joined := strings.Join(parts, PartSeparator)
	if !utf8.ValidString(joined) {
		return "", fmt.Errorf(errorEncodePartsFormat, joined, ErrInvalidEncoding)
	}
	encoded, encodeError := utf16LittleEndian.NewEncoder().Bytes([]byte(joined))
	if encodeError != nil {
		return "", fmt.Errorf(errorEncodePartsFormat, joined, encodeError)
	}
	digest := md5.Sum(encoded)
	return prefix + strings.ToUpper(hex.EncodeToString(digest[:DigestLength])), nil
}

// Directory returns the identifier of the directory at referencePath.
func Directory(referencePath string) (string, error) {
	return Generate(DirectoryPrefix, referencePath)
}

// File returns the identifier of fileName inside the directory directoryID.
func File(directoryID, fileName string) (string, error) {
	return Generate(FilePrefix, directoryID, fileName)
}

// Component returns the installable-unit identifier for fileID inside directoryID.
func Component(directoryID, fileID string) (string, error) {
	return Generate(ComponentPrefix, directoryID, fileID)
}

// Length returns the length of identifiers generated with prefix.
func Length(prefix string) int {
	return len(prefix) + 2*DigestLength
}
