package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/foldertree/internal/types"
	"github.com/temirov/foldertree/internal/utils"
)

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

type commandHarness struct {
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	clipboard *recordingCopier
	root      string
	env       environment
}

// newCommandHarness lays out root/{a/a1.txt, b.txt} in memory. The working
// directory exists on the host so configuration lookups stay isolated.
func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	workingDirectory := t.TempDir()
	filesystem := memfs.New()
	require.NoError(t, util.WriteFile(filesystem, filepath.Join(workingDirectory, "a", "a1.txt"), []byte("alpha"), 0o644))
	require.NoError(t, util.WriteFile(filesystem, filepath.Join(workingDirectory, "b.txt"), []byte("beta"), 0o644))

	harness := &commandHarness{
		stdout:    &bytes.Buffer{},
		stderr:    &bytes.Buffer{},
		clipboard: &recordingCopier{},
		root:      workingDirectory,
	}
	harness.env = environment{
		stdout:           harness.stdout,
		stderr:           harness.stderr,
		filesystem:       filesystem,
		clipboard:        harness.clipboard,
		workingDirectory: workingDirectory,
	}
	return harness
}

func (harness *commandHarness) run(arguments ...string) error {
	rootCommand := createRootCommand(harness.env)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	return rootCommand.Execute()
}

func TestTreeCommandRawOutput(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run(types.CommandTree))

	rendered := harness.stdout.String()
	lines := strings.Split(strings.TrimSpace(rendered), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, harness.root, lines[0])
	assert.Equal(t, "Summary: 4 entries, 2 files, 9b", lines[1])
	assert.Contains(t, rendered, "├── "+filepath.Join(harness.root, "a")+"\n")
	assert.Contains(t, rendered, "└── [File] "+filepath.Join(harness.root, "b.txt")+"\n")
	assert.Empty(t, harness.clipboard.copied)
}

func TestTreeCommandJSONOutput(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run("t", "--format", "json", "--parallel", "--batch", "1"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(harness.stdout.Bytes(), &decoded))
	assert.Equal(t, harness.root, decoded["path"])
	assert.Equal(t, float64(4), decoded["entries"])
	assert.Len(t, decoded["children"], 2)
}

func TestTreeCommandRejectsInvalidFormat(t *testing.T) {
	harness := newCommandHarness(t)

	runError := harness.run(types.CommandTree, "--format", "yaml")

	require.Error(t, runError)
	assert.Contains(t, runError.Error(), "invalid format value 'yaml'")
}

func TestTreeCommandRejectsFilePath(t *testing.T) {
	harness := newCommandHarness(t)

	runError := harness.run(types.CommandTree, "b.txt")

	require.Error(t, runError)
	assert.Contains(t, runError.Error(), "is not a directory")
}

func TestTreeCommandCopiesOutput(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run(types.CommandTree, "--copy", "--summary=false"))

	require.Len(t, harness.clipboard.copied, 1)
	assert.Equal(t, harness.stdout.String(), harness.clipboard.copied[0])
	assert.NotContains(t, harness.clipboard.copied[0], "Summary:")
}

func TestTreeCommandWritesMetrics(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run(types.CommandTree, "--metrics"))

	assert.Contains(t, harness.stderr.String(), "foldertree_folders_built_total 2")
	assert.Contains(t, harness.stderr.String(), "foldertree_documents_loaded_total 2")
}

func TestWalkCommandSequentialOrder(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run(types.CommandWalk, "--format", "json"))

	var walk types.WalkOutput
	require.NoError(t, json.Unmarshal(harness.stdout.Bytes(), &walk))
	paths := make([]string, 0, len(walk.Entries))
	for _, entry := range walk.Entries {
		paths = append(paths, entry.Path)
	}
	assert.Equal(t, []string{
		harness.root,
		filepath.Join(harness.root, "a"),
		filepath.Join(harness.root, "a", "a1.txt"),
		filepath.Join(harness.root, "b.txt"),
	}, paths)
	assert.Equal(t, int64(2), walk.Folders)
	assert.Equal(t, int64(2), walk.Documents)
}

func TestWalkCommandParallelCounts(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run("w", "--mode", "parallel", "--parallelism", "4", "--workers", "2", "--metrics"))

	assert.Equal(t, "Walk (parallel): 2 folders, 2 documents, 3 batches, parallelism 4, 2 workers\n", harness.stdout.String())
	assert.Contains(t, harness.stderr.String(), "foldertree_walk_batches_total 3")
}

func TestWalkCommandRejectsInvalidMode(t *testing.T) {
	harness := newCommandHarness(t)

	runError := harness.run(types.CommandWalk, "--mode", "random")

	require.Error(t, runError)
	assert.Contains(t, runError.Error(), "invalid walk mode 'random'")
}

func TestWalkCommandUsesConfiguredMode(t *testing.T) {
	harness := newCommandHarness(t)
	configuration := "walk:\n  mode: parallel\n  parallelism: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(harness.root, utils.ConfigFileName), []byte(configuration), 0o600))

	require.NoError(t, harness.run(types.CommandWalk))

	assert.True(t, strings.HasPrefix(harness.stdout.String(), "Walk (parallel): 2 folders, 2 documents"))
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run(types.CommandInit))

	configurationPath := filepath.Join(harness.root, utils.ConfigFileName)
	assert.FileExists(t, configurationPath)
	assert.Contains(t, harness.stdout.String(), configurationPath)
	require.Error(t, harness.run(types.CommandInit))
}

func TestRootVersionFlag(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.run("--version"))

	assert.True(t, strings.HasPrefix(harness.stdout.String(), "foldertree version: "))
}
