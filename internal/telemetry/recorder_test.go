package telemetry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/foldertree/internal/folder"
	"github.com/temirov/foldertree/internal/telemetry"
)

type staticTree map[string][]folder.Listing

func (tree staticTree) List(_ context.Context, directoryPath string) ([]folder.Listing, error) {
	return tree[directoryPath], nil
}

func (tree staticTree) Load(_ context.Context, documentPath string) (*folder.Document, error) {
	document := folder.NewDocument(documentPath)
	document.Bytes = 10
	document.Tokens = 3
	document.Binary = documentPath == "/t/blob.bin"
	return document, nil
}

func buildWithRecorder(t *testing.T, recorder *telemetry.Recorder) *folder.Folder {
	t.Helper()
	tree := staticTree{
		"/t":     {{Path: "/t/sub", IsDir: true}, {Path: "/t/readme.md"}, {Path: "/t/blob.bin"}},
		"/t/sub": {{Path: "/t/sub/code.go"}},
	}
	builder := folder.NewBuilder(tree, tree, folder.BuilderOptions{Visitor: recorder})
	root, buildError := builder.Build(context.Background(), "/t").WaitFolder(context.Background())
	require.NoError(t, buildError)
	return root
}

func TestRecorderCountsFinishedEntries(t *testing.T) {
	recorder := telemetry.NewRecorder()
	buildWithRecorder(t, recorder)

	metricsOutput := &bytes.Buffer{}
	require.NoError(t, recorder.Write(metricsOutput))
	text := metricsOutput.String()

	assert.Contains(t, text, "foldertree_folders_built_total 2")
	assert.Contains(t, text, "foldertree_documents_loaded_total 3")
	assert.Contains(t, text, "foldertree_binary_documents_total 1")
	assert.Contains(t, text, "foldertree_document_bytes_total 30")
	assert.Contains(t, text, "foldertree_document_tokens_total 9")
	assert.Contains(t, text, "foldertree_folder_entries_count 2")
}

func TestRecorderObservesParallelWalk(t *testing.T) {
	recorder := telemetry.NewRecorder()
	root := buildWithRecorder(t, recorder)

	walkError := folder.ForEachParallel(context.Background(), root.ParallelSequence(4), folder.ParallelOptions{OnBatch: recorder.ObserveBatch}, func(entry folder.Entry) error {
		recorder.ObserveWalked(entry)
		return nil
	})
	require.NoError(t, walkError)

	seriesCount, countError := testutil.GatherAndCount(recorder.Registry(), "foldertree_walk_batches_total", "foldertree_walk_batch_entries", "foldertree_walked_entries_total")
	require.NoError(t, countError)
	assert.Equal(t, 4, seriesCount)
	metricsOutput := &bytes.Buffer{}
	require.NoError(t, recorder.Write(metricsOutput))
	assert.Contains(t, metricsOutput.String(), `foldertree_walked_entries_total{kind="folder"} 2`)
	assert.Contains(t, metricsOutput.String(), `foldertree_walked_entries_total{kind="document"} 3`)
}
