// Package types defines the cross‑package output structures of the foldertree CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"
	NodeTypeBinary    = "binary"

	CommandTree = "tree"
	CommandWalk = "walk"
	CommandInit = "init"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"

	WalkModeSequential = "sequential"
	WalkModeParallel   = "parallel"
)

// ValidatedPath is an absolute input path that already passed existence checks.
type ValidatedPath struct {
	AbsolutePath string
	IsDir        bool
}

// TreeOutputNode represents one entry of a finished folder returned by the tree command.
type TreeOutputNode struct {
	XMLName      xml.Name          `json:"-" xml:"node"`
	Path         string            `json:"path" xml:"path"`
	Name         string            `json:"name" xml:"name"`
	Type         string            `json:"type" xml:"type"`
	Entries      int64             `json:"entries,omitempty" xml:"entries,omitempty"`
	Size         string            `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes    int64             `json:"-" xml:"-"`
	LastModified string            `json:"lastModified,omitempty" xml:"lastModified,omitempty"`
	MimeType     string            `json:"mimeType,omitempty" xml:"mimeType,omitempty"`
	Tokens       int               `json:"tokens,omitempty" xml:"tokens,omitempty"`
	Model        string            `json:"model,omitempty" xml:"model,omitempty"`
	Children     []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty"`
	TotalFiles   int               `json:"totalFiles,omitempty" xml:"totalFiles,omitempty"`
	TotalSize    string            `json:"totalSize,omitempty" xml:"totalSize,omitempty"`
	TotalTokens  int               `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
	Content      string            `json:"content,omitempty" xml:"content,omitempty"`
}

// WalkEntry is one entry produced by a sequential walk.
type WalkEntry struct {
	Index int    `json:"index" xml:"index,attr"`
	Path  string `json:"path" xml:"path"`
	Type  string `json:"type" xml:"type"`
}

// WalkOutput is the result of the walk command. Sequential walks list every
// entry in production order; parallel walks only report aggregate counts
// because consumption order is not defined.
type WalkOutput struct {
	XMLName     xml.Name    `json:"-" xml:"walk"`
	Root        string      `json:"root" xml:"root"`
	Mode        string      `json:"mode" xml:"mode"`
	Entries     []WalkEntry `json:"entries,omitempty" xml:"entries>entry,omitempty"`
	Folders     int64       `json:"folders" xml:"folders"`
	Documents   int64       `json:"documents" xml:"documents"`
	Batches     int64       `json:"batches,omitempty" xml:"batches,omitempty"`
	Parallelism int         `json:"parallelism,omitempty" xml:"parallelism,omitempty"`
	Workers     int         `json:"workers,omitempty" xml:"workers,omitempty"`
}

// OutputSummary captures aggregate information about a rendered tree.
type OutputSummary struct {
	TotalFolders int    `json:"totalFolders" xml:"totalFolders"`
	TotalFiles   int    `json:"totalFiles" xml:"totalFiles"`
	TotalSize    string `json:"totalSize" xml:"totalSize"`
	TotalTokens  int    `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
	Model        string `json:"model,omitempty" xml:"model,omitempty"`
}
