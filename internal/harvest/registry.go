package harvest

import (
	"context"

	"github.com/temirov/harvest/internal/types"
)

// Registry accumulates the flat list of installable-unit identifiers in the
// order the walk first reports them, independent of nesting.
type Registry struct {
	componentIDs []string
	directories  int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Observe records one walker record.
func (registry *Registry) Observe(record types.Record) {
	switch record.Kind {
	case types.RecordFileUnit:
		if record.File != nil {
			registry.componentIDs = append(registry.componentIDs, record.File.ComponentID)
		}
	case types.RecordDirectoryOpen:
		if record.Directory != nil && !record.Directory.Anchor {
			registry.directories++
		}
	}
}

// ComponentIDs returns a copy of the collected unit identifiers.
func (registry *Registry) ComponentIDs() []string {
	return append([]string(nil), registry.componentIDs...)
}

// Units returns the number of installable units observed.
func (registry *Registry) Units() int {
	return len(registry.componentIDs)
}

// Directories returns the number of non-anchor directories observed.
func (registry *Registry) Directories() int {
	return registry.directories
}

// Result is the complete output of a collected walk.
type Result struct {
	Records  []types.Record
	Registry *Registry
}

// Collect walks the tree and returns every record with the populated registry.
func Collect(ctx context.Context, options Options) (*Result, error) {
	result := &Result{Registry: NewRegistry()}
	walkError := Walk(ctx, options, func(record types.Record) error {
		result.Records = append(result.Records, record)
		result.Registry.Observe(record)
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return result, nil
}
