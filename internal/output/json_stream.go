package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/temirov/harvest/internal/ident"
	"github.com/temirov/harvest/internal/types"
)

// JSONDocument is the manifest form of a harvest.
type JSONDocument struct {
	Anchor         *JSONDirectory     `json:"anchor"`
	ComponentGroup JSONComponentGroup `json:"componentGroup"`
}

// JSONDirectory is one directory of the manifest tree.
type JSONDirectory struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	Source      string           `json:"source"`
	Components  []JSONComponent  `json:"components"`
	Directories []*JSONDirectory `json:"directories"`
}

// JSONComponent is one installable unit of the manifest.
type JSONComponent struct {
	ID     string `json:"id"`
	FileID string `json:"fileId"`
	Path   string `json:"path"`
	Source string `json:"source"`
	GUID   string `json:"guid,omitempty"`
}

// JSONComponentGroup is the flat unit list of the manifest.
type JSONComponentGroup struct {
	ID           string   `json:"id"`
	ComponentIDs []string `json:"componentIds"`
}

type jsonStreamRenderer struct {
	writer   io.Writer
	settings types.DocumentSettings
	document JSONDocument
	stack    []*JSONDirectory
}

// NewJSONStreamRenderer renders the harvest as an indented JSON manifest.
// The manifest is written on Finish.
func NewJSONStreamRenderer(writer io.Writer, settings types.DocumentSettings) StreamRenderer {
	return &jsonStreamRenderer{writer: writer, settings: settings}
}

func (renderer *jsonStreamRenderer) Handle(record types.Record) error {
	switch record.Kind {
	case types.RecordDirectoryOpen:
		directory := &JSONDirectory{
			ID:          record.Directory.ID,
			Source:      record.Directory.ReferencePath,
			Components:  []JSONComponent{},
			Directories: []*JSONDirectory{},
		}
		if !record.Directory.Anchor {
			directory.Name = record.Directory.Name
		}
		if len(renderer.stack) == 0 {
			if renderer.document.Anchor != nil {
				return serializationError("render record", fmt.Errorf("second root directory %q", record.Directory.RelativePath))
			}
			renderer.document.Anchor = directory
		} else {
			parent := renderer.stack[len(renderer.stack)-1]
			parent.Directories = append(parent.Directories, directory)
		}
		renderer.stack = append(renderer.stack, directory)
	case types.RecordFileUnit:
		if len(renderer.stack) == 0 {
			return serializationError("render record", fmt.Errorf("file %q outside any directory", record.File.RelativePath))
		}
		component := JSONComponent{
			ID:     record.File.ComponentID,
			FileID: record.File.FileID,
			Path:   record.File.RelativePath,
			Source: record.File.ReferencePath,
		}
		if renderer.settings.GUIDMode == types.GUIDModeStable {
			component.GUID = ident.ComponentGUID(record.File.ReferencePath)
		}
		parent := renderer.stack[len(renderer.stack)-1]
		parent.Components = append(parent.Components, component)
	case types.RecordDirectoryClose:
		if len(renderer.stack) == 0 {
			return serializationError("render record", fmt.Errorf(errorUnbalancedClose, record.Directory.RelativePath))
		}
		renderer.stack = renderer.stack[:len(renderer.stack)-1]
	default:
		return serializationError("render record", fmt.Errorf("unknown record kind %q", record.Kind))
	}
	return nil
}

func (renderer *jsonStreamRenderer) Finish(componentIDs []string) error {
	renderer.document.ComponentGroup = JSONComponentGroup{
		ID:           renderer.settings.ComponentGroup,
		ComponentIDs: append([]string{}, componentIDs...),
	}
	if renderer.document.Anchor == nil {
		renderer.document.Anchor = &JSONDirectory{
			ID:          renderer.settings.DirectoryRefID,
			Source:      renderer.settings.ReferenceRoot,
			Components:  []JSONComponent{},
			Directories: []*JSONDirectory{},
		}
	}
	encoder := json.NewEncoder(renderer.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(renderer.document); err != nil {
		return serializationError("encode manifest", err)
	}
	return nil
}
