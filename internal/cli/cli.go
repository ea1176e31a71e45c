// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/foldertree/internal/config"
	"github.com/temirov/foldertree/internal/filesystem"
	"github.com/temirov/foldertree/internal/types"
	"github.com/temirov/foldertree/internal/utils"
)

const (
	exclusionFlagName        = "e"
	noGitignoreFlagName      = "no-gitignore"
	noIgnoreFlagName         = "no-ignore"
	includeGitFlagName       = "git"
	formatFlagName           = "format"
	summaryFlagName          = "summary"
	tokensFlagName           = "tokens"
	modelFlagName            = "model"
	contentFlagName          = "content"
	parallelFlagName         = "parallel"
	enumerationBatchFlagName = "batch"
	concurrencyFlagName      = "concurrency"
	metricsFlagName          = "metrics"
	modeFlagName             = "mode"
	parallelismFlagName      = "parallelism"
	workersFlagName          = "workers"
	configFlagName           = "config"
	verboseFlagName          = "verbose"
	copyFlagName             = "copy"
	versionFlagName          = "version"
	globalFlagName           = "global"
	forceFlagName            = "force"

	versionTemplate      = "foldertree version: %s\n"
	defaultPath          = "."
	rootUse              = "foldertree"
	rootShortDescription = "foldertree command line interface"
	rootLongDescription  = `foldertree builds an immutable tree of a directory while discovering it concurrently.
It renders the finished tree and walks it sequentially or in parallel batches.
Use --format to select raw, json, or xml output, --copy to place the output on the clipboard, and --version to print the application version.`

	treeUse              = "tree [paths...]"
	walkUse              = "walk [path]"
	initUse              = "init"
	treeAlias            = "t"
	walkAlias            = "w"
	treeShortDescription = "build and display a folder tree (" + treeAlias + ")"
	walkShortDescription = "walk a finished folder tree (" + walkAlias + ")"
	initShortDescription = "write a default configuration file"

	treeLongDescription = `Build the folder tree of one or more directories and render it.
Every folder reports its entry count: itself, its documents and the entries of its sub-folders.`
	treeUsageExample = `  # Render the tree in JSON with token counts
  foldertree tree --format json --tokens ./internal

  # Enumerate wide directories in parallel batches of 32
  foldertree tree --parallel --batch 32 .`
	walkLongDescription = `Walk the finished folder tree of a directory.
The sequential mode lists entries in production order: a folder is expanded before queued documents.
The parallel mode splits the walk into batches that double in size and drains them on concurrent workers.`
	walkUsageExample = `  # List every entry in walk order
  foldertree walk .

  # Consume in parallel with eight batches and print Prometheus metrics
  foldertree walk --mode parallel --parallelism 8 --metrics .`

	exclusionFlagDescription        = "exclude path pattern"
	disableGitignoreFlagDescription = "do not use .gitignore"
	disableIgnoreFlagDescription    = "do not use .ignore"
	includeGitFlagDescription       = "include git directory"
	formatFlagDescription           = "output format: raw, json or xml"
	summaryFlagDescription          = "include summary of resulting files"
	tokensFlagDescription           = "include token counts"
	modelFlagDescription            = "tokenizer model to use for token counting"
	contentFlagDescription          = "include content of text documents"
	parallelFlagDescription         = "enumerate directory listings in parallel batches"
	enumerationBatchFlagDescription = "listings per batch when enumerating in parallel"
	concurrencyFlagDescription      = "maximum simultaneous directory listings and document loads (0 is unbounded)"
	metricsFlagDescription          = "print Prometheus metrics to standard error"
	modeFlagDescription             = "walk mode: sequential or parallel"
	parallelismFlagDescription      = "parallelism hint sizing the first batch (defaults to GOMAXPROCS)"
	workersFlagDescription          = "maximum batches drained at once (0 is one worker per batch)"
	configFlagDescription           = "path to a configuration file"
	verboseFlagDescription          = "log folder construction and batch events"
	copyFlagDescription             = "copy the rendered output to the clipboard"
	versionFlagDescription          = "display application version"
	globalFlagDescription           = "write the configuration into the global configuration directory"
	forceFlagDescription            = "overwrite an existing configuration file"

	defaultTokenizerModelName  = "gpt-4o"
	configurationWrittenFormat = "Configuration written to %s\n"

	invalidFormatMessage        = "invalid format value '%s'"
	invalidModeMessage          = "invalid walk mode '%s'"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorCopyOutputFormat       = "copy output to clipboard: %w"
	errorWriteMetricsFormat     = "write metrics: %w"
	// errorPathMissingFormat reports a missing path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorPathNotDirectoryFormat reports a path that cannot be built into a folder.
	errorPathNotDirectoryFormat = "path '%s' is not a directory"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNoValidPaths indicates that all paths are invalid.
	errorNoValidPaths = "no valid paths"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// environment carries the process resources the commands operate on.
type environment struct {
	stdout           io.Writer
	stderr           io.Writer
	filesystem       billy.Filesystem
	clipboard        Copier
	workingDirectory string
}

// globalOptions stores the persistent root flags.
type globalOptions struct {
	configurationPath string
	verbose           bool
	copyOutput        bool
}

// Execute runs the foldertree application.
func Execute() error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCommand := createRootCommand(environment{
		stdout:           os.Stdout,
		stderr:           os.Stderr,
		filesystem:       filesystem.NewOS(),
		clipboard:        NewClipboard(),
		workingDirectory: workingDirectory,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(env environment) *cobra.Command {
	var showVersion bool
	global := &globalOptions{}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				fmt.Fprintf(env.stdout, versionTemplate, utils.GetApplicationVersion())
				return nil
			}
			return command.Help()
		},
	}
	rootCommand.SetOut(env.stdout)
	rootCommand.SetErr(env.stderr)
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&global.configurationPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &global.verbose, verboseFlagName, false, verboseFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &global.copyOutput, copyFlagName, false, copyFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(env, global),
		createWalkCommand(env, global),
		createInitCommand(env),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(env environment) *cobra.Command {
	var globalTarget bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if globalTarget {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: env.workingDirectory,
			})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(env.stdout, configurationWrittenFormat, writtenPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &globalTarget, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

func (env environment) loadConfiguration(explicitPath string) (config.ApplicationConfiguration, error) {
	return config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: env.workingDirectory,
		ExplicitFilePath: explicitPath,
	})
}

// emit writes rendered output and copies it to the clipboard when requested.
func (env environment) emit(rendered string, copyOutput bool) error {
	if _, writeError := io.WriteString(env.stdout, rendered); writeError != nil {
		return writeError
	}
	if !copyOutput || env.clipboard == nil {
		return nil
	}
	if copyError := env.clipboard.Copy(rendered); copyError != nil {
		return fmt.Errorf(errorCopyOutputFormat, copyError)
	}
	return nil
}

// renderWith runs render into a buffer, so output is complete before it is emitted.
func renderWith(render func(buffer *bytes.Buffer) error) (string, error) {
	buffer := &bytes.Buffer{}
	if renderError := render(buffer); renderError != nil {
		return "", renderError
	}
	rendered := buffer.String()
	if rendered != "" && !strings.HasSuffix(rendered, "\n") {
		rendered += "\n"
	}
	return rendered, nil
}

// resolveAndValidatePaths converts input paths to absolute form and validates
// that each one is an existing directory.
func (env environment) resolveAndValidatePaths(inputs []string) ([]types.ValidatedPath, error) {
	seen := make(map[string]struct{})
	var result []types.ValidatedPath
	for _, inputPath := range inputs {
		absolutePath := inputPath
		if !filepath.IsAbs(absolutePath) {
			absolutePath = filepath.Join(env.workingDirectory, inputPath)
		}
		cleanPath := filepath.Clean(absolutePath)
		if _, ok := seen[cleanPath]; ok {
			continue
		}
		info, fileStatusError := env.filesystem.Stat(cleanPath)
		if fileStatusError != nil {
			if os.IsNotExist(fileStatusError) {
				return nil, fmt.Errorf(errorPathMissingFormat, inputPath)
			}
			return nil, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf(errorPathNotDirectoryFormat, inputPath)
		}
		seen[cleanPath] = struct{}{}
		result = append(result, types.ValidatedPath{AbsolutePath: cleanPath, IsDir: true})
	}
	if len(result) == 0 {
		return nil, fmt.Errorf(errorNoValidPaths)
	}
	return result, nil
}

func resolveBool(flags *pflag.FlagSet, name string, flagValue bool, configured *bool, defaultValue bool) bool {
	if flags.Changed(name) {
		return flagValue
	}
	if configured != nil {
		return *configured
	}
	return defaultValue
}

func resolveInt(flags *pflag.FlagSet, name string, flagValue int, configured *int) int {
	if flags.Changed(name) || configured == nil {
		return flagValue
	}
	return *configured
}

func resolveString(flags *pflag.FlagSet, name string, flagValue string, configured string) string {
	if flags.Changed(name) || configured == "" {
		return strings.ToLower(flagValue)
	}
	return strings.ToLower(configured)
}
