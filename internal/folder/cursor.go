package folder

// Cursor walks a finished folder one entry at a time. Expansion is last in,
// first out: the most recently queued folder is expanded next and documents
// are only produced once no folder is pending. A Cursor is single-pass and
// must not be shared between goroutines.
type Cursor struct {
	current        Entry
	pendingFolders []Entry
	pendingDocs    []Entry
}

// NewCursor returns a cursor positioned on root.
func NewCursor(root *Folder) *Cursor {
	return &Cursor{
		current:        root,
		pendingFolders: root.SubFolders(),
		pendingDocs:    root.Documents(),
	}
}

// HasNext reports whether another entry is available, loading it if needed.
func (cursor *Cursor) HasNext() bool {
	if cursor.current == nil {
		if lastFolder := len(cursor.pendingFolders) - 1; lastFolder >= 0 {
			next := cursor.pendingFolders[lastFolder]
			cursor.pendingFolders[lastFolder] = nil
			cursor.pendingFolders = cursor.pendingFolders[:lastFolder]
			if nextFolder, isFolder := next.(*Folder); isFolder {
				cursor.pendingFolders = append(cursor.pendingFolders, nextFolder.subFolders...)
				cursor.pendingDocs = append(cursor.pendingDocs, nextFolder.documents...)
			}
			cursor.current = next
		} else if lastDocument := len(cursor.pendingDocs) - 1; lastDocument >= 0 {
			cursor.current = cursor.pendingDocs[lastDocument]
			cursor.pendingDocs[lastDocument] = nil
			cursor.pendingDocs = cursor.pendingDocs[:lastDocument]
		}
	}
	return cursor.current != nil
}

// Next returns the held entry and clears it. It returns nil once the walk is over.
func (cursor *Cursor) Next() Entry {
	if cursor.current == nil && !cursor.HasNext() {
		return nil
	}
	next := cursor.current
	cursor.current = nil
	return next
}
