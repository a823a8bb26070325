package ident

import (
	"strings"

	"github.com/google/uuid"
)

// GUIDNamespace seeds name-based component GUIDs.
var GUIDNamespace = uuid.MustParse("3f6c2a8e-5d4b-4c1e-9a7f-0b2d8e6c4a91")

// ComponentGUID returns the upper-case name-based (SHA-1, version 5) GUID of a
// component source. The same reference path always yields the same GUID, which
// lets installers author components without the "*" auto-GUID.
func ComponentGUID(referencePath string) string {
	return strings.ToUpper(uuid.NewSHA1(GUIDNamespace, []byte(referencePath)).String())
}
