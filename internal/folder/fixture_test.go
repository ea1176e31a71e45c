package folder_test

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/foldertree/internal/folder"
)

var (
	errListingDenied = errors.New("permission denied")
	errLoadingFailed = errors.New("unreadable document")
)

// memoryTree is an in-memory directory layout serving as Lister and DocumentLoader.
type memoryTree struct {
	mutex        sync.Mutex
	children     map[string][]folder.Listing
	failingLists map[string]bool
	failingLoads map[string]bool
	listDelay    time.Duration
	includeSelf  bool
	listCalls    int
	loadCalls    int
}

func newMemoryTree(rootPath string) *memoryTree {
	return &memoryTree{
		children:     map[string][]folder.Listing{rootPath: nil},
		failingLists: map[string]bool{},
		failingLoads: map[string]bool{},
	}
}

func (tree *memoryTree) addDirectory(directoryPath string) *memoryTree {
	parent := path.Dir(directoryPath)
	tree.children[parent] = append(tree.children[parent], folder.Listing{Path: directoryPath, IsDir: true})
	if _, exists := tree.children[directoryPath]; !exists {
		tree.children[directoryPath] = nil
	}
	return tree
}

func (tree *memoryTree) addDocument(documentPath string) *memoryTree {
	parent := path.Dir(documentPath)
	tree.children[parent] = append(tree.children[parent], folder.Listing{Path: documentPath})
	return tree
}

func (tree *memoryTree) entryCount() int64 {
	count := int64(1)
	for _, listings := range tree.children {
		count += int64(len(listings))
	}
	return count
}

func (tree *memoryTree) List(ctx context.Context, directoryPath string) ([]folder.Listing, error) {
	if tree.listDelay > 0 {
		time.Sleep(tree.listDelay)
	}
	tree.mutex.Lock()
	defer tree.mutex.Unlock()
	tree.listCalls++
	if tree.failingLists[directoryPath] {
		return nil, errListingDenied
	}
	listings, exists := tree.children[directoryPath]
	if !exists {
		return nil, fmt.Errorf("no such directory %s", directoryPath)
	}
	result := make([]folder.Listing, 0, len(listings)+1)
	if tree.includeSelf {
		result = append(result, folder.Listing{Path: directoryPath, IsDir: true})
	}
	return append(result, listings...), nil
}

func (tree *memoryTree) Load(ctx context.Context, documentPath string) (*folder.Document, error) {
	tree.mutex.Lock()
	defer tree.mutex.Unlock()
	tree.loadCalls++
	if tree.failingLoads[documentPath] {
		return nil, errLoadingFailed
	}
	document := folder.NewDocument(documentPath)
	document.Name = path.Base(documentPath)
	return document, nil
}

// scenarioTree is a root with two folders holding one document each and one top-level document.
func scenarioTree() *memoryTree {
	return newMemoryTree("/root").
		addDirectory("/root/a").
		addDocument("/root/a/a1.txt").
		addDirectory("/root/b").
		addDocument("/root/b/b1.txt").
		addDocument("/root/top.txt")
}

// wideTree builds depth levels where every folder holds width folders and width documents.
func wideTree(rootPath string, width int, depth int) *memoryTree {
	tree := newMemoryTree(rootPath)
	var populate func(directoryPath string, level int)
	populate = func(directoryPath string, level int) {
		for index := 0; index < width; index++ {
			tree.addDocument(fmt.Sprintf("%s/doc%d.txt", directoryPath, index))
		}
		if level == depth {
			return
		}
		for index := 0; index < width; index++ {
			subPath := fmt.Sprintf("%s/dir%d", directoryPath, index)
			tree.addDirectory(subPath)
			populate(subPath, level+1)
		}
	}
	populate(rootPath, 1)
	return tree
}

// peakTracker records how many List and Load calls overlap. The counters live
// outside memoryTree's mutex so overlapping calls stay visible.
type peakTracker struct {
	tree     *memoryTree
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (tracker *peakTracker) enter() {
	current := tracker.inFlight.Add(1)
	for {
		observed := tracker.peak.Load()
		if current <= observed || tracker.peak.CompareAndSwap(observed, current) {
			return
		}
	}
}

func (tracker *peakTracker) List(ctx context.Context, directoryPath string) ([]folder.Listing, error) {
	tracker.enter()
	defer tracker.inFlight.Add(-1)
	time.Sleep(2 * time.Millisecond)
	return tracker.tree.List(ctx, directoryPath)
}

func (tracker *peakTracker) Load(ctx context.Context, documentPath string) (*folder.Document, error) {
	tracker.enter()
	defer tracker.inFlight.Add(-1)
	time.Sleep(2 * time.Millisecond)
	return tracker.tree.Load(ctx, documentPath)
}

// stallingTree blocks listing stallPath until its context ends. Failing loads
// wait until that listing has started so the failure always hits a running sibling.
type stallingTree struct {
	*memoryTree
	stallPath string
	entered   chan struct{}
	released  chan struct{}
}

func newStallingTree(tree *memoryTree, stallPath string) *stallingTree {
	return &stallingTree{
		memoryTree: tree,
		stallPath:  stallPath,
		entered:    make(chan struct{}),
		released:   make(chan struct{}),
	}
}

func (tree *stallingTree) List(ctx context.Context, directoryPath string) ([]folder.Listing, error) {
	if directoryPath != tree.stallPath {
		return tree.memoryTree.List(ctx, directoryPath)
	}
	close(tree.entered)
	<-ctx.Done()
	close(tree.released)
	return nil, ctx.Err()
}

func (tree *stallingTree) Load(ctx context.Context, documentPath string) (*folder.Document, error) {
	if tree.failingLoads[documentPath] {
		select {
		case <-tree.entered:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return tree.memoryTree.Load(ctx, documentPath)
}

func buildFolder(t *testing.T, tree *memoryTree, rootPath string, options folder.BuilderOptions) *folder.Folder {
	t.Helper()
	builder := folder.NewBuilder(tree, tree, options)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	root, buildError := builder.Build(ctx, rootPath).WaitFolder(ctx)
	require.NoError(t, buildError)
	return root
}

func entryPaths(entries []folder.Entry) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, entry.Path())
	}
	return paths
}
