package folder

// pendingFolder is the staging area of a folder under construction. It is
// owned by the goroutine enumerating the folder and discarded after the join.
type pendingFolder struct {
	subFolders []*Future
	documents  []*Future
}

func (pending *pendingFolder) addSubFolder(future *Future) {
	pending.subFolders = append(pending.subFolders, future)
}

func (pending *pendingFolder) addDocument(future *Future) {
	pending.documents = append(pending.documents, future)
}

// merge appends the pending entries of other after those of pending. It must
// run before the join.
func (pending *pendingFolder) merge(other *pendingFolder) *pendingFolder {
	pending.subFolders = append(pending.subFolders, other.subFolders...)
	pending.documents = append(pending.documents, other.documents...)
	return pending
}

func (pending *pendingFolder) futures() []*Future {
	all := make([]*Future, 0, len(pending.subFolders)+len(pending.documents))
	all = append(all, pending.subFolders...)
	return append(all, pending.documents...)
}

// freeze converts resolved futures into the finished folder located at path.
func (pending *pendingFolder) freeze(path string) (*Folder, error) {
	subFolders, subFoldersError := resolvedEntries(pending.subFolders)
	if subFoldersError != nil {
		return nil, subFoldersError
	}
	documents, documentsError := resolvedEntries(pending.documents)
	if documentsError != nil {
		return nil, documentsError
	}
	size := int64(1) + int64(len(documents))
	for _, subFolder := range subFolders {
		size += subFolder.Size()
	}
	return &Folder{
		path:       path,
		subFolders: subFolders,
		documents:  documents,
		size:       size,
	}, nil
}

func resolvedEntries(futures []*Future) ([]Entry, error) {
	entries := make([]Entry, 0, len(futures))
	for _, future := range futures {
		entry, failure := future.result()
		if failure != nil {
			return nil, failure
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
