package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/foldertree/internal/config"
	"github.com/temirov/foldertree/internal/filesystem"
	"github.com/temirov/foldertree/internal/folder"
	"github.com/temirov/foldertree/internal/telemetry"
	"github.com/temirov/foldertree/internal/tokenizer"
	"github.com/temirov/foldertree/internal/utils"
)

const (
	errorLoadIgnorePatternsFormat = "load ignore patterns for %s: %w"
	errorBuildFolderFormat        = "build %s: %w"
	errorLoggerFormat             = "create logger: %w"
	errorRenderFormat             = "render %s output: %w"

	logDocumentInspected = "document inspected"
	logFieldPath         = "path"
	logFieldBytes        = "bytes"
	logFieldMimeType     = "mime_type"
	logFieldBinary       = "binary"
	logFieldTokens       = "tokens"
)

// buildFlags stores the flags shared by commands that construct a folder.
type buildFlags struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	parallel          bool
	enumerationBatch  int
	concurrency       int
	tokens            bool
	model             string
	content           bool
	metrics           bool
}

// buildSettings is the effective construction configuration after flags
// were laid over the configuration file.
type buildSettings struct {
	ignore           config.IgnoreOptions
	parallel         bool
	enumerationBatch int
	concurrency      int
	tokens           bool
	model            string
	content          bool
	verbose          bool
	metrics          bool
}

// addBuildFlags registers construction flags on the command.
func addBuildFlags(command *cobra.Command, options *buildFlags) {
	flags := command.Flags()
	flags.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flags, &options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	registerBooleanFlag(flags, &options.disableIgnoreFile, noIgnoreFlagName, false, disableIgnoreFlagDescription)
	registerBooleanFlag(flags, &options.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	registerBooleanFlag(flags, &options.parallel, parallelFlagName, false, parallelFlagDescription)
	flags.IntVar(&options.enumerationBatch, enumerationBatchFlagName, folder.DefaultEnumerationBatch, enumerationBatchFlagDescription)
	flags.IntVar(&options.concurrency, concurrencyFlagName, 0, concurrencyFlagDescription)
	registerBooleanFlag(flags, &options.tokens, tokensFlagName, false, tokensFlagDescription)
	flags.StringVar(&options.model, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	registerBooleanFlag(flags, &options.content, contentFlagName, false, contentFlagDescription)
	registerBooleanFlag(flags, &options.metrics, metricsFlagName, false, metricsFlagDescription)
}

// resolve lays explicitly set flags over the configured values.
func (options buildFlags) resolve(flags *pflag.FlagSet, configured config.BuildConfiguration, global *globalOptions) buildSettings {
	ignore := configured.Paths.IgnoreOptions()
	ignore.ExclusionPatterns = append(append([]string{}, ignore.ExclusionPatterns...), options.exclusionPatterns...)
	if flags.Changed(noGitignoreFlagName) {
		ignore.UseGitignore = !options.disableGitignore
	}
	if flags.Changed(noIgnoreFlagName) {
		ignore.UseIgnoreFile = !options.disableIgnoreFile
	}
	if flags.Changed(includeGitFlagName) {
		ignore.IncludeGit = options.includeGit
	}

	model := options.model
	if !flags.Changed(modelFlagName) && configured.Tokens.Model != "" {
		model = configured.Tokens.Model
	}

	return buildSettings{
		ignore:           ignore,
		parallel:         resolveBool(flags, parallelFlagName, options.parallel, configured.Parallel, false),
		enumerationBatch: resolveInt(flags, enumerationBatchFlagName, options.enumerationBatch, configured.EnumerationBatch),
		concurrency:      resolveInt(flags, concurrencyFlagName, options.concurrency, configured.Concurrency),
		tokens:           resolveBool(flags, tokensFlagName, options.tokens, configured.Tokens.Enabled, false),
		model:            model,
		content:          resolveBool(flags, contentFlagName, options.content, configured.IncludeContent, false),
		verbose:          resolveBool(flags, verboseFlagName, global.verbose, configured.Verbose, false),
		metrics:          resolveBool(flags, metricsFlagName, options.metrics, configured.Metrics, false),
	}
}

// builtFolder is a finished folder together with the tokenizer that measured it.
type builtFolder struct {
	root  *folder.Folder
	model string
}

// buildFolder constructs the folder at rootPath and waits for it.
func (env environment) buildFolder(ctx context.Context, rootPath string, settings buildSettings, visitor folder.Visitor, logger *zap.Logger) (builtFolder, error) {
	ignorePatterns, ignoreError := config.LoadRecursiveIgnorePatterns(env.filesystem, rootPath, settings.ignore)
	if ignoreError != nil {
		return builtFolder{}, fmt.Errorf(errorLoadIgnorePatternsFormat, rootPath, ignoreError)
	}

	var tokenCounter tokenizer.Counter
	var tokenModel string
	if settings.tokens {
		createdCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: settings.model})
		if counterError != nil {
			return builtFolder{}, counterError
		}
		tokenCounter = createdCounter
		tokenModel = resolvedModel
	}

	builder := folder.NewBuilder(
		filesystem.NewLister(env.filesystem, rootPath, ignorePatterns),
		filesystem.NewLoader(env.filesystem, filesystem.LoaderOptions{
			IncludeContent: settings.content,
			TokenCounter:   tokenCounter,
		}),
		folder.BuilderOptions{
			Visitor:          visitor,
			Parallel:         settings.parallel,
			EnumerationBatch: settings.enumerationBatch,
			Concurrency:      settings.concurrency,
			Logger:           logger,
		},
	)
	root, buildError := builder.Build(ctx, rootPath).WaitFolder(ctx)
	if buildError != nil {
		return builtFolder{}, fmt.Errorf(errorBuildFolderFormat, rootPath, buildError)
	}
	return builtFolder{root: root, model: tokenModel}, nil
}

// newLogger returns the command logger writing to standard error.
func newLogger(verbose bool) (*zap.Logger, error) {
	logger, loggerError := utils.NewApplicationLogger(verbose)
	if loggerError != nil {
		return nil, fmt.Errorf(errorLoggerFormat, loggerError)
	}
	return logger, nil
}

// newBuildVisitor assembles the visitors observing construction: the metrics
// recorder when metrics are on and a document log when verbose. The recorder
// is nil unless metrics are on.
func newBuildVisitor(settings buildSettings, logger *zap.Logger) (folder.Visitor, *telemetry.Recorder) {
	var visitors folder.Visitors
	var recorder *telemetry.Recorder
	if settings.metrics {
		recorder = telemetry.NewRecorder()
		visitors = append(visitors, recorder)
	}
	if settings.verbose {
		visitors = append(visitors, documentLogger(logger))
	}
	if len(visitors) == 0 {
		return nil, recorder
	}
	return visitors, recorder
}

// documentLogger logs the metadata of every loaded document at debug level.
func documentLogger(logger *zap.Logger) folder.Visitor {
	return folder.VisitorFunc(func(entry folder.Entry) {
		document, isDocument := entry.(*folder.Document)
		if !isDocument {
			return
		}
		logger.Debug(logDocumentInspected,
			zap.String(logFieldPath, document.Path()),
			zap.Int64(logFieldBytes, document.Bytes),
			zap.String(logFieldMimeType, document.MimeType),
			zap.Bool(logFieldBinary, document.Binary),
			zap.Int(logFieldTokens, document.Tokens),
		)
	})
}

// writeMetrics prints the recorder to standard error when metrics are enabled.
func (env environment) writeMetrics(recorder *telemetry.Recorder) error {
	if recorder == nil {
		return nil
	}
	if writeError := recorder.Write(env.stderr); writeError != nil {
		return fmt.Errorf(errorWriteMetricsFormat, writeError)
	}
	return nil
}
