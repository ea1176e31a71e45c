// Package folder materializes a directory tree into an immutable composite of
// folders and documents and exposes it as sequential or splittable sequences.
package folder

import (
	"iter"
	"time"
)

// EntryKind identifies the variant of an Entry.
type EntryKind int

const (
	// KindFolder marks a composite entry.
	KindFolder EntryKind = iota
	// KindDocument marks a leaf entry.
	KindDocument
)

const (
	kindFolderName   = "folder"
	kindDocumentName = "document"
	kindUnknownName  = "unknown"
)

// String returns the lower-case name of the kind.
func (kind EntryKind) String() string {
	switch kind {
	case KindFolder:
		return kindFolderName
	case KindDocument:
		return kindDocumentName
	default:
		return kindUnknownName
	}
}

// Entry is a node of a finished tree. The set of implementations is closed:
// an Entry is either a *Folder or a *Document.
type Entry interface {
	Path() string
	Size() int64
	Kind() EntryKind
	// Sequence yields the entries rooted at this entry, itself first.
	Sequence() iter.Seq[Entry]
	// ParallelSequence returns a splittable provider over the same entries.
	ParallelSequence(parallelism int) Splitter
	sealed()
}

// Folder is a composite entry. All fields are written once by the Builder
// before the folder becomes reachable and never change afterwards.
type Folder struct {
	path       string
	subFolders []Entry
	documents  []Entry
	size       int64
}

// Path returns the filesystem path of the folder.
func (folder *Folder) Path() string {
	return folder.path
}

// Size returns the number of entries rooted at the folder, itself included.
func (folder *Folder) Size() int64 {
	return folder.size
}

// Kind reports KindFolder.
func (folder *Folder) Kind() EntryKind {
	return KindFolder
}

// SubFolders returns the direct subfolders in enumeration order.
func (folder *Folder) SubFolders() []Entry {
	return append([]Entry(nil), folder.subFolders...)
}

// Documents returns the direct documents in enumeration order.
func (folder *Folder) Documents() []Entry {
	return append([]Entry(nil), folder.documents...)
}

// Sequence returns the entries rooted at the folder in cursor order.
func (folder *Folder) Sequence() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		cursor := NewCursor(folder)
		for cursor.HasNext() {
			if !yield(cursor.Next()) {
				return
			}
		}
	}
}

// ParallelSequence returns a BatchSplitter over the entries rooted at the
// folder. parallelism seeds the initial batch size.
func (folder *Folder) ParallelSequence(parallelism int) Splitter {
	return NewBatchSplitter(folder, parallelism)
}

func (folder *Folder) sealed() {}

// Document is a leaf entry. Its content handle is filled by a DocumentLoader.
type Document struct {
	path     string
	Name     string
	Bytes    int64
	ModTime  time.Time
	MimeType string
	Binary   bool
	Tokens   int
	Content  []byte
}

// NewDocument returns a document located at path. Loaders fill the
// remaining exported fields before handing the document to the Builder.
func NewDocument(path string) *Document {
	return &Document{path: path}
}

// Path returns the filesystem path of the document.
func (document *Document) Path() string {
	return document.path
}

// Size always reports one: a document counts as a single entry.
func (document *Document) Size() int64 {
	return 1
}

// Kind reports KindDocument.
func (document *Document) Kind() EntryKind {
	return KindDocument
}

// Sequence yields the document itself.
func (document *Document) Sequence() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		yield(document)
	}
}

// ParallelSequence returns a sized splitter holding only the document.
func (document *Document) ParallelSequence(int) Splitter {
	return &sliceSplitter{entries: []Entry{document}}
}

func (document *Document) sealed() {}

// Collect drains sequence into a slice.
func Collect(sequence iter.Seq[Entry]) []Entry {
	var entries []Entry
	for entry := range sequence {
		entries = append(entries, entry)
	}
	return entries
}
