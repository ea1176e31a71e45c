package cli

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/foldertree/internal/folder"
	"github.com/temirov/foldertree/internal/output"
	"github.com/temirov/foldertree/internal/telemetry"
	"github.com/temirov/foldertree/internal/types"
)

// walkSettings holds the resolved walk options.
type walkSettings struct {
	mode        string
	parallelism int
	workers     int
}

// createWalkCommand returns the walk subcommand.
func createWalkCommand(env environment, global *globalOptions) *cobra.Command {
	var build buildFlags
	var format string
	var mode string
	var parallelism int
	var workers int

	walkCommand := &cobra.Command{
		Use:     walkUse,
		Aliases: []string{walkAlias},
		Short:   walkShortDescription,
		Long:    walkLongDescription,
		Example: walkUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, configurationError := env.loadConfiguration(global.configurationPath)
			if configurationError != nil {
				return configurationError
			}
			walkConfiguration := configuration.Walk
			flags := command.Flags()

			resolvedFormat := resolveString(flags, formatFlagName, format, walkConfiguration.Format)
			if !isSupportedFormat(resolvedFormat) {
				return fmt.Errorf(invalidFormatMessage, resolvedFormat)
			}
			walk := walkSettings{
				mode:        resolveString(flags, modeFlagName, mode, walkConfiguration.Mode),
				parallelism: resolveInt(flags, parallelismFlagName, parallelism, walkConfiguration.Parallelism),
				workers:     resolveInt(flags, workersFlagName, workers, walkConfiguration.Workers),
			}
			if walk.mode != types.WalkModeSequential && walk.mode != types.WalkModeParallel {
				return fmt.Errorf(invalidModeMessage, walk.mode)
			}
			if walk.parallelism <= 0 {
				walk.parallelism = runtime.GOMAXPROCS(0)
			}
			copyOutput := resolveBool(flags, copyFlagName, global.copyOutput, walkConfiguration.Copy, false)
			settings := build.resolve(flags, walkConfiguration.BuildConfiguration, global)

			rootPath := defaultPath
			if len(arguments) == 1 {
				rootPath = arguments[0]
			}
			validatedPaths, pathError := env.resolveAndValidatePaths([]string{rootPath})
			if pathError != nil {
				return pathError
			}

			logger, loggerError := newLogger(settings.verbose)
			if loggerError != nil {
				return loggerError
			}
			defer func() { _ = logger.Sync() }()

			visitor, recorder := newBuildVisitor(settings, logger)

			built, buildError := env.buildFolder(command.Context(), validatedPaths[0].AbsolutePath, settings, visitor, logger)
			if buildError != nil {
				return buildError
			}

			var result *types.WalkOutput
			var walkError error
			if walk.mode == types.WalkModeParallel {
				result, walkError = walkParallel(command.Context(), built.root, walk, recorder, logger)
			} else {
				result = walkSequential(built.root, recorder)
			}
			if walkError != nil {
				return walkError
			}

			rendered, renderError := renderWalk(result, resolvedFormat)
			if renderError != nil {
				return fmt.Errorf(errorRenderFormat, resolvedFormat, renderError)
			}
			if emitError := env.emit(rendered, copyOutput); emitError != nil {
				return emitError
			}
			return env.writeMetrics(recorder)
		},
	}

	addBuildFlags(walkCommand, &build)
	walkCommand.Flags().StringVar(&format, formatFlagName, types.FormatRaw, formatFlagDescription)
	walkCommand.Flags().StringVar(&mode, modeFlagName, types.WalkModeSequential, modeFlagDescription)
	walkCommand.Flags().IntVar(&parallelism, parallelismFlagName, 0, parallelismFlagDescription)
	walkCommand.Flags().IntVar(&workers, workersFlagName, 0, workersFlagDescription)
	return walkCommand
}

// walkSequential lists every entry in cursor order.
func walkSequential(root *folder.Folder, recorder *telemetry.Recorder) *types.WalkOutput {
	result := &types.WalkOutput{Root: root.Path(), Mode: types.WalkModeSequential}
	index := 0
	for entry := range root.Sequence() {
		result.Entries = append(result.Entries, types.WalkEntry{
			Index: index,
			Path:  entry.Path(),
			Type:  entry.Kind().String(),
		})
		countEntry(entry, &result.Folders, &result.Documents)
		if recorder != nil {
			recorder.ObserveWalked(entry)
		}
		index++
	}
	return result
}

// walkParallel drains the batch-splitting sequence on concurrent workers and
// reports aggregate counts.
func walkParallel(ctx context.Context, root *folder.Folder, walk walkSettings, recorder *telemetry.Recorder, logger *zap.Logger) (*types.WalkOutput, error) {
	var folders, documents, batches atomic.Int64
	options := folder.ParallelOptions{
		Workers: walk.workers,
		Logger:  logger,
		OnBatch: func(entries int64) {
			batches.Add(1)
			if recorder != nil {
				recorder.ObserveBatch(entries)
			}
		},
	}
	walkError := folder.ForEachParallel(ctx, root.ParallelSequence(walk.parallelism), options, func(entry folder.Entry) error {
		if entry.Kind() == folder.KindFolder {
			folders.Add(1)
		} else {
			documents.Add(1)
		}
		if recorder != nil {
			recorder.ObserveWalked(entry)
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}
	return &types.WalkOutput{
		Root:        root.Path(),
		Mode:        types.WalkModeParallel,
		Folders:     folders.Load(),
		Documents:   documents.Load(),
		Batches:     batches.Load(),
		Parallelism: walk.parallelism,
		Workers:     walk.workers,
	}, nil
}

func countEntry(entry folder.Entry, folders *int64, documents *int64) {
	if entry.Kind() == folder.KindFolder {
		*folders++
		return
	}
	*documents++
}

func renderWalk(result *types.WalkOutput, format string) (string, error) {
	switch format {
	case types.FormatJSON:
		return renderWith(func(buffer *bytes.Buffer) error { return renderInto(buffer, output.RenderJSON, result) })
	case types.FormatXML:
		return renderWith(func(buffer *bytes.Buffer) error { return renderInto(buffer, output.RenderXML, result) })
	default:
		return renderWith(func(buffer *bytes.Buffer) error {
			output.WriteWalkRaw(buffer, result)
			return nil
		})
	}
}
