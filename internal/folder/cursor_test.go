package folder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/foldertree/internal/folder"
)

func TestCursorExpandsLastQueuedFolderFirst(t *testing.T) {
	root := buildFolder(t, scenarioTree(), "/root", folder.BuilderOptions{})

	produced := entryPaths(folder.Collect(root.Sequence()))

	assert.Equal(t, []string{
		"/root",
		"/root/b",
		"/root/a",
		"/root/a/a1.txt",
		"/root/b/b1.txt",
		"/root/top.txt",
	}, produced)
}

func TestCursorDescendsBeforeVisitingSiblings(t *testing.T) {
	tree := newMemoryTree("/r").
		addDirectory("/r/x").
		addDirectory("/r/x/x1").
		addDirectory("/r/y").
		addDirectory("/r/y/y1").
		addDocument("/r/y/y1/leaf.txt")
	root := buildFolder(t, tree, "/r", folder.BuilderOptions{})

	produced := entryPaths(folder.Collect(root.Sequence()))

	assert.Equal(t, []string{"/r", "/r/y", "/r/y/y1", "/r/x", "/r/x/x1", "/r/y/y1/leaf.txt"}, produced)
}

func TestSequenceVisitsEveryEntryExactlyOnce(t *testing.T) {
	tree := wideTree("/seq", 4, 3)
	root := buildFolder(t, tree, "/seq", folder.BuilderOptions{Parallel: true})

	produced := entryPaths(folder.Collect(root.Sequence()))

	assert.Len(t, produced, int(root.Size()))
	seen := map[string]struct{}{}
	for _, producedPath := range produced {
		_, duplicate := seen[producedPath]
		assert.False(t, duplicate, producedPath)
		seen[producedPath] = struct{}{}
	}
}

func TestSequenceIsReproducible(t *testing.T) {
	root := buildFolder(t, wideTree("/again", 3, 3), "/again", folder.BuilderOptions{Parallel: true, EnumerationBatch: 2})

	first := entryPaths(folder.Collect(root.Sequence()))
	second := entryPaths(folder.Collect(root.Sequence()))

	assert.Equal(t, first, second)
}

func TestSequenceStopsWhenConsumerBreaks(t *testing.T) {
	root := buildFolder(t, scenarioTree(), "/root", folder.BuilderOptions{})

	var consumed int
	for range root.Sequence() {
		consumed++
		if consumed == 2 {
			break
		}
	}

	assert.Equal(t, 2, consumed)
}

func TestCursorNextWithoutHasNext(t *testing.T) {
	root := buildFolder(t, scenarioTree(), "/root", folder.BuilderOptions{})
	cursor := folder.NewCursor(root)

	var produced []string
	for entry := cursor.Next(); entry != nil; entry = cursor.Next() {
		produced = append(produced, entry.Path())
	}

	require.Len(t, produced, 6)
	assert.False(t, cursor.HasNext())
	assert.Nil(t, cursor.Next())
}

func TestCursorDoesNotMutateFolders(t *testing.T) {
	root := buildFolder(t, scenarioTree(), "/root", folder.BuilderOptions{})
	subFoldersBefore := entryPaths(root.SubFolders())
	documentsBefore := entryPaths(root.Documents())

	folder.Collect(root.Sequence())

	assert.Equal(t, subFoldersBefore, entryPaths(root.SubFolders()))
	assert.Equal(t, documentsBefore, entryPaths(root.Documents()))
}
