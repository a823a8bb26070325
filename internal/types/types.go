// Package types defines every cross‑package data structure used by the harvest CLI.
package types

const (
	RecordDirectoryOpen  RecordKind = "directory_open"
	RecordFileUnit       RecordKind = "file_unit"
	RecordDirectoryClose RecordKind = "directory_close"

	CommandGenerate = "generate"
	CommandCheck    = "check"
	CommandID       = "id"
	CommandInit     = "init"

	FormatWXS  = "wxs"
	FormatJSON = "json"

	// GUIDModeAuto leaves component GUIDs to the WiX toolset ("*").
	GUIDModeAuto = "auto"
	// GUIDModeStable derives each component GUID from its source path.
	GUIDModeStable = "stable"
)

// RecordKind names one structural record produced by the walker.
type RecordKind string

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// DirectoryNode describes one directory opened by the walker.
//
// The traversal root is reported with Anchor set and ID holding the externally
// supplied anchor identifier; every other directory carries its generated id.
type DirectoryNode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Anchor        bool   `json:"anchor,omitempty"`
	RelativePath  string `json:"relativePath"`
	ReferencePath string `json:"referencePath"`
	AbsolutePath  string `json:"-"`
	Depth         int    `json:"depth"`
}

// FileUnit is one installable file with its three identifiers.
type FileUnit struct {
	DirectoryID   string `json:"directoryId"`
	FileID        string `json:"fileId"`
	ComponentID   string `json:"componentId"`
	Name          string `json:"name"`
	RelativePath  string `json:"relativePath"`
	ReferencePath string `json:"source"`
	AbsolutePath  string `json:"-"`
	Depth         int    `json:"depth"`
}

// Record is one element of the ordered walker output.
type Record struct {
	Kind      RecordKind     `json:"kind"`
	Directory *DirectoryNode `json:"directory,omitempty"`
	File      *FileUnit      `json:"file,omitempty"`
}

// DocumentSettings carries the externally supplied naming inputs of the output document.
type DocumentSettings struct {
	ReferenceRoot  string
	ComponentGroup string
	DirectoryRefID string
	GUIDMode       string
}
