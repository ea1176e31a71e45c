package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/foldertree/internal/utils"
)

type configTestCase struct {
	name              string
	globalContent     string
	localContent      string
	explicitPath      string
	expectFormat      string
	expectParallel    *bool
	expectConcurrency *int
	expectTokens      *bool
	expectModel       string
	expectCopy        *bool
	expectWorkers     *int
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func intPointer(value int) *int {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:              "local_overrides_global",
			globalContent:     "tree:\n  format: raw\n  parallel: false\n  concurrency: 2\n  copy: true\n",
			localContent:      "tree:\n  format: json\n  parallel: true\n  copy: false\n  tokens:\n    enabled: true\n    model: custom\n",
			expectFormat:      "json",
			expectParallel:    boolPointer(true),
			expectConcurrency: intPointer(2),
			expectTokens:      boolPointer(true),
			expectModel:       "custom",
			expectCopy:        boolPointer(false),
		},
		{
			name:          "explicit_path_only",
			globalContent: "tree:\n  format: json\n",
			explicitPath:  "custom.yaml",
			expectFormat:  "raw",
		},
		{
			name:          "walk_section_applies",
			globalContent: "walk:\n  workers: 3\n  parallel: true\n",
			expectWorkers: intPointer(3),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.ConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte("tree:\n  format: raw\n"), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			if loadedConfig.Tree.Format != testCase.expectFormat {
				t.Fatalf("expected format %q, got %q", testCase.expectFormat, loadedConfig.Tree.Format)
			}
			assertBoolPointer(t, "parallel", testCase.expectParallel, loadedConfig.Tree.Parallel)
			assertBoolPointer(t, "tokens", testCase.expectTokens, loadedConfig.Tree.Tokens.Enabled)
			assertBoolPointer(t, "copy", testCase.expectCopy, loadedConfig.Tree.Copy)
			assertIntPointer(t, "concurrency", testCase.expectConcurrency, loadedConfig.Tree.Concurrency)
			assertIntPointer(t, "workers", testCase.expectWorkers, loadedConfig.Walk.Workers)
			if loadedConfig.Tree.Tokens.Model != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, loadedConfig.Tree.Tokens.Model)
			}
		})
	}
}

func TestLoadApplicationConfigurationRejectsDirectory(t *testing.T) {
	workingDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	if err := os.MkdirAll(filepath.Join(workingDir, utils.ConfigFileName), 0o755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error for configuration directory")
	}
}

func TestPathConfigurationIgnoreOptionsDefaults(t *testing.T) {
	options := PathConfiguration{Exclude: []string{"dist/"}}.IgnoreOptions()
	if !options.UseGitignore || !options.UseIgnoreFile || options.IncludeGit {
		t.Fatalf("unexpected defaults: %+v", options)
	}
	disabled := PathConfiguration{UseGitignore: boolPointer(false), IncludeGit: boolPointer(true)}.IgnoreOptions()
	if disabled.UseGitignore || !disabled.IncludeGit {
		t.Fatalf("unexpected overrides: %+v", disabled)
	}
}

func TestMergeKeepsBaseWhenOverrideUnset(t *testing.T) {
	base := ApplicationConfiguration{Walk: WalkConfiguration{Format: "json", Parallelism: intPointer(8)}}
	merged := base.Merge(ApplicationConfiguration{Walk: WalkConfiguration{BuildConfiguration: BuildConfiguration{Metrics: boolPointer(true)}}})
	if merged.Walk.Format != "json" || merged.Walk.Parallelism == nil || *merged.Walk.Parallelism != 8 {
		t.Fatalf("base values lost: %+v", merged.Walk)
	}
	if merged.Walk.Metrics == nil || !*merged.Walk.Metrics {
		t.Fatalf("override not applied: %+v", merged.Walk)
	}
}

func assertBoolPointer(t *testing.T, label string, expected *bool, actual *bool) {
	t.Helper()
	if expected == nil {
		if actual != nil {
			t.Fatalf("expected no %s override, got %t", label, *actual)
		}
		return
	}
	if actual == nil || *actual != *expected {
		t.Fatalf("unexpected %s value", label)
	}
}

func assertIntPointer(t *testing.T, label string, expected *int, actual *int) {
	t.Helper()
	if expected == nil {
		if actual != nil {
			t.Fatalf("expected no %s override, got %d", label, *actual)
		}
		return
	}
	if actual == nil || *actual != *expected {
		t.Fatalf("unexpected %s value", label)
	}
}
