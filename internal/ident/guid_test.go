package ident_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/temirov/harvest/internal/ident"
)

var guidPattern = regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-5[0-9A-F]{3}-[89AB][0-9A-F]{3}-[0-9A-F]{12}$`)

func TestComponentGUIDIsStable(t *testing.T) {
	guid := ident.ComponentGUID(`$(var.HarvestPath)\a.txt`)
	assert.Equal(t, "963098B5-6B59-53E6-AD17-4683B5DFAD70", guid)
	assert.Equal(t, guid, ident.ComponentGUID(`$(var.HarvestPath)\a.txt`))
	assert.Regexp(t, guidPattern, guid)
}

func TestComponentGUIDDependsOnSource(t *testing.T) {
	assert.NotEqual(t,
		ident.ComponentGUID(`$(var.HarvestPath)\a.txt`),
		ident.ComponentGUID(`$(var.HarvestPath)\A.txt`))
}
