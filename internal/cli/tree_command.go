package cli

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/foldertree/internal/output"
	"github.com/temirov/foldertree/internal/types"
	"github.com/temirov/foldertree/internal/utils"
)

// treeResult wraps several trees for XML output, which needs a single root element.
type treeResult struct {
	XMLName xml.Name                `xml:"result"`
	Trees   []*types.TreeOutputNode `xml:"node"`
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(env environment, global *globalOptions) *cobra.Command {
	var build buildFlags
	var format string
	var includeSummary bool

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		RunE: func(command *cobra.Command, arguments []string) error {
			configuration, configurationError := env.loadConfiguration(global.configurationPath)
			if configurationError != nil {
				return configurationError
			}
			treeConfiguration := configuration.Tree
			flags := command.Flags()

			resolvedFormat := resolveString(flags, formatFlagName, format, treeConfiguration.Format)
			if !isSupportedFormat(resolvedFormat) {
				return fmt.Errorf(invalidFormatMessage, resolvedFormat)
			}
			summary := resolveBool(flags, summaryFlagName, includeSummary, treeConfiguration.Summary, true)
			copyOutput := resolveBool(flags, copyFlagName, global.copyOutput, treeConfiguration.Copy, false)
			settings := build.resolve(flags, treeConfiguration.BuildConfiguration, global)

			if len(arguments) == 0 {
				arguments = []string{defaultPath}
			}
			validatedPaths, pathError := env.resolveAndValidatePaths(arguments)
			if pathError != nil {
				return pathError
			}

			logger, loggerError := newLogger(settings.verbose)
			if loggerError != nil {
				return loggerError
			}
			defer func() { _ = logger.Sync() }()

			visitor, recorder := newBuildVisitor(settings, logger)

			nodes := make([]*types.TreeOutputNode, 0, len(validatedPaths))
			for _, validatedPath := range validatedPaths {
				built, buildError := env.buildFolder(command.Context(), validatedPath.AbsolutePath, settings, visitor, logger)
				if buildError != nil {
					return buildError
				}
				nodes = append(nodes, output.NewTreeOutput(built.root, built.model))
			}

			rendered, renderError := renderTree(nodes, resolvedFormat, summary, settings.content)
			if renderError != nil {
				return fmt.Errorf(errorRenderFormat, resolvedFormat, renderError)
			}
			if emitError := env.emit(rendered, copyOutput); emitError != nil {
				return emitError
			}
			return env.writeMetrics(recorder)
		},
	}

	addBuildFlags(treeCommand, &build)
	treeCommand.Flags().StringVar(&format, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(treeCommand.Flags(), &includeSummary, summaryFlagName, true, summaryFlagDescription)
	return treeCommand
}

func renderTree(nodes []*types.TreeOutputNode, format string, includeSummary bool, includeContent bool) (string, error) {
	switch format {
	case types.FormatJSON:
		if len(nodes) == 1 {
			return renderWith(func(buffer *bytes.Buffer) error { return renderInto(buffer, output.RenderJSON, nodes[0]) })
		}
		return renderWith(func(buffer *bytes.Buffer) error { return renderInto(buffer, output.RenderJSON, nodes) })
	case types.FormatXML:
		if len(nodes) == 1 {
			return renderWith(func(buffer *bytes.Buffer) error { return renderInto(buffer, output.RenderXML, nodes[0]) })
		}
		return renderWith(func(buffer *bytes.Buffer) error {
			return renderInto(buffer, output.RenderXML, treeResult{Trees: nodes})
		})
	default:
		return renderWith(func(buffer *bytes.Buffer) error {
			for index, node := range nodes {
				if index > 0 {
					buffer.WriteString("\n")
				}
				output.WriteTreeRaw(buffer, node, includeSummary)
				if includeContent {
					output.WriteContentRaw(buffer, node)
				}
			}
			if includeSummary && len(nodes) > 1 {
				buffer.WriteString(output.FormatSummaryLine(combinedSummary(nodes)))
			}
			return nil
		})
	}
}

func renderInto(buffer *bytes.Buffer, render func(interface{}) (string, error), value interface{}) error {
	rendered, renderError := render(value)
	if renderError != nil {
		return renderError
	}
	buffer.WriteString(rendered)
	return nil
}

// combinedSummary sums the summaries of several trees.
func combinedSummary(nodes []*types.TreeOutputNode) *types.OutputSummary {
	combined := &types.OutputSummary{}
	var totalBytes int64
	for _, node := range nodes {
		summary := output.ComputeSummary(node)
		combined.TotalFolders += summary.TotalFolders
		combined.TotalFiles += summary.TotalFiles
		combined.TotalTokens += summary.TotalTokens
		if combined.Model == "" {
			combined.Model = summary.Model
		}
		totalBytes += node.SizeBytes
	}
	combined.TotalSize = utils.FormatFileSize(totalBytes)
	return combined
}
