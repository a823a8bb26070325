package output

import (
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/temirov/harvest/internal/ident"
	"github.com/temirov/harvest/internal/types"
)

const (
	// WixNamespace is the WiX v3 authoring namespace.
	WixNamespace = "http://schemas.microsoft.com/wix/2006/wi"

	wixElementRoot           = "Wix"
	wixElementFragment       = "Fragment"
	wixElementDirectoryRef   = "DirectoryRef"
	wixElementDirectory      = "Directory"
	wixElementComponent      = "Component"
	wixElementFile           = "File"
	wixElementComponentGroup = "ComponentGroup"
	wixElementComponentRef   = "ComponentRef"

	wixAttributeID      = "Id"
	wixAttributeName    = "Name"
	wixAttributeGUID    = "Guid"
	wixAttributeKeyPath = "KeyPath"
	wixAttributeSource  = "Source"

	wixAutoGUID       = "*"
	wixKeyPathYes     = "yes"
	wixIndentSpaces   = 2
	xmlDeclaration    = "xml"
	xmlDeclarationSet = `version="1.0" encoding="UTF-8"`

	errorUnbalancedClose = "directory close without matching open for %q"
)

type wixStreamRenderer struct {
	writer    io.Writer
	settings  types.DocumentSettings
	document  *etree.Document
	structure *etree.Element
	open      []*etree.Element
}

// NewWixStreamRenderer renders a WiX source (.wxs) document with one fragment
// holding the directory structure and one holding the component group.
// The document is written on Finish.
func NewWixStreamRenderer(writer io.Writer, settings types.DocumentSettings) StreamRenderer {
	document := etree.NewDocument()
	document.CreateProcInst(xmlDeclaration, xmlDeclarationSet)
	root := document.CreateElement(wixElementRoot)
	root.CreateAttr("xmlns", WixNamespace)
	return &wixStreamRenderer{
		writer:    writer,
		settings:  settings,
		document:  document,
		structure: root.CreateElement(wixElementFragment),
	}
}

func (renderer *wixStreamRenderer) Handle(record types.Record) error {
	switch record.Kind {
	case types.RecordDirectoryOpen:
		renderer.openDirectory(record.Directory)
	case types.RecordFileUnit:
		if len(renderer.open) == 0 {
			return serializationError("render record", fmt.Errorf("file %q outside any directory", record.File.RelativePath))
		}
		renderer.writeComponent(record.File)
	case types.RecordDirectoryClose:
		if len(renderer.open) == 0 {
			return serializationError("render record", fmt.Errorf(errorUnbalancedClose, record.Directory.RelativePath))
		}
		renderer.open = renderer.open[:len(renderer.open)-1]
	default:
		return serializationError("render record", fmt.Errorf("unknown record kind %q", record.Kind))
	}
	return nil
}

func (renderer *wixStreamRenderer) Finish(componentIDs []string) error {
	group := renderer.document.Root().
		CreateElement(wixElementFragment).
		CreateElement(wixElementComponentGroup)
	group.CreateAttr(wixAttributeID, renderer.settings.ComponentGroup)
	for _, componentID := range componentIDs {
		group.CreateElement(wixElementComponentRef).CreateAttr(wixAttributeID, componentID)
	}

	renderer.document.Indent(wixIndentSpaces)
	if _, err := renderer.document.WriteTo(renderer.writer); err != nil {
		return serializationError("write document", err)
	}
	return nil
}

func (renderer *wixStreamRenderer) openDirectory(directory *types.DirectoryNode) {
	var element *etree.Element
	if len(renderer.open) == 0 {
		element = renderer.structure.CreateElement(wixElementDirectoryRef)
		element.CreateAttr(wixAttributeID, directory.ID)
	} else {
		element = renderer.open[len(renderer.open)-1].CreateElement(wixElementDirectory)
		element.CreateAttr(wixAttributeID, directory.ID)
		element.CreateAttr(wixAttributeName, directory.Name)
	}
	renderer.open = append(renderer.open, element)
}

func (renderer *wixStreamRenderer) writeComponent(unit *types.FileUnit) {
	component := renderer.open[len(renderer.open)-1].CreateElement(wixElementComponent)
	component.CreateAttr(wixAttributeID, unit.ComponentID)
	component.CreateAttr(wixAttributeGUID, renderer.componentGUID(unit))

	file := component.CreateElement(wixElementFile)
	file.CreateAttr(wixAttributeID, unit.FileID)
	file.CreateAttr(wixAttributeKeyPath, wixKeyPathYes)
	file.CreateAttr(wixAttributeSource, unit.ReferencePath)
}

func (renderer *wixStreamRenderer) componentGUID(unit *types.FileUnit) string {
	if renderer.settings.GUIDMode == types.GUIDModeStable {
		return ident.ComponentGUID(unit.ReferencePath)
	}
	return wixAutoGUID
}
