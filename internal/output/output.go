// Package output renders finished folders and walks as raw text, JSON or XML.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"

	"github.com/temirov/foldertree/internal/folder"
	"github.com/temirov/foldertree/internal/types"
	"github.com/temirov/foldertree/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	separatorLine = "----------------------------------------"

	xmlHeader = xml.Header

	mimeTypeLabel    = "Mime Type: "
	binaryTreeFormat = "%s[Binary] %s (%s%s)\n"
	walkEntryFormat  = "%6d  %-9s %s\n"

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
)

// NewTreeOutput converts a finished folder into an output tree. Sub-folders
// come first, then documents, each in enumeration order.
func NewTreeOutput(root *folder.Folder, model string) *types.TreeOutputNode {
	if root == nil {
		return nil
	}
	node := &types.TreeOutputNode{
		Path:    root.Path(),
		Name:    filepath.Base(root.Path()),
		Type:    types.NodeTypeDirectory,
		Entries: root.Size(),
	}
	for _, subFolder := range root.SubFolders() {
		if typedFolder, isFolder := subFolder.(*folder.Folder); isFolder {
			node.Children = append(node.Children, NewTreeOutput(typedFolder, model))
		}
	}
	for _, entry := range root.Documents() {
		if document, isDocument := entry.(*folder.Document); isDocument {
			node.Children = append(node.Children, newDocumentNode(document, model))
		}
	}
	files, totalBytes, tokens := summarizeTree(node)
	node.TotalFiles = files
	node.SizeBytes = totalBytes
	node.TotalSize = utils.FormatFileSize(totalBytes)
	node.TotalTokens = tokens
	if tokens > 0 {
		node.Model = model
	}
	return node
}

func newDocumentNode(document *folder.Document, model string) *types.TreeOutputNode {
	node := &types.TreeOutputNode{
		Path:         document.Path(),
		Name:         document.Name,
		Type:         types.NodeTypeFile,
		Size:         utils.FormatFileSize(document.Bytes),
		SizeBytes:    document.Bytes,
		LastModified: utils.FormatTimestamp(document.ModTime),
		MimeType:     document.MimeType,
		Tokens:       document.Tokens,
		Content:      string(document.Content),
	}
	if node.Name == "" {
		node.Name = filepath.Base(document.Path())
	}
	if document.Binary {
		node.Type = types.NodeTypeBinary
	}
	if document.Tokens > 0 {
		node.Model = model
	}
	return node
}

// RenderJSON returns value as indented JSON.
func RenderJSON(value interface{}) (string, error) {
	encoded, err := json.MarshalIndent(value, indentPrefix, indentSpacer)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(encoded), nil
}

// RenderXML returns value as indented XML preceded by the XML header.
func RenderXML(value interface{}) (string, error) {
	encoded, err := xml.MarshalIndent(value, indentPrefix, indentSpacer)
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xmlHeader + string(encoded), nil
}

// ComputeSummary aggregates folder, file, size and token counts of a tree.
func ComputeSummary(node *types.TreeOutputNode) *types.OutputSummary {
	files, totalBytes, tokens := summarizeTree(node)
	return &types.OutputSummary{
		TotalFolders: countFolders(node),
		TotalFiles:   files,
		TotalSize:    utils.FormatFileSize(totalBytes),
		TotalTokens:  tokens,
		Model:        summaryModel(node),
	}
}

// summarizeTree returns the file count, total size, and tokens for a tree node.
func summarizeTree(node *types.TreeOutputNode) (int, int64, int) {
	if node == nil {
		return 0, 0, 0
	}
	var totalFiles int
	var totalBytes int64
	var totalTokens int
	if node.Type == types.NodeTypeFile || node.Type == types.NodeTypeBinary {
		totalFiles++
		totalBytes += node.SizeBytes
		totalTokens += node.Tokens
	}
	for _, child := range node.Children {
		childFiles, childBytes, childTokens := summarizeTree(child)
		totalFiles += childFiles
		totalBytes += childBytes
		totalTokens += childTokens
	}
	return totalFiles, totalBytes, totalTokens
}

func countFolders(node *types.TreeOutputNode) int {
	if node == nil || node.Type != types.NodeTypeDirectory {
		return 0
	}
	count := 1
	for _, child := range node.Children {
		count += countFolders(child)
	}
	return count
}

func summaryModel(node *types.TreeOutputNode) string {
	if node == nil {
		return ""
	}
	if node.Model != "" {
		return node.Model
	}
	for _, child := range node.Children {
		if model := summaryModel(child); model != "" {
			return model
		}
	}
	return ""
}

// directorySummaryLine returns the summary printed under a directory in raw output.
func directorySummaryLine(node *types.TreeOutputNode, includeSummary bool) string {
	if !includeSummary || node == nil || node.Type != types.NodeTypeDirectory {
		return ""
	}
	label := "files"
	if node.TotalFiles == 1 {
		label = "file"
	}
	tokenSuffix := ""
	if node.TotalTokens > 0 {
		tokenSuffix = fmt.Sprintf(", %d tokens", node.TotalTokens)
	}
	return fmt.Sprintf("Summary: %d entries, %d %s, %s%s", node.Entries, node.TotalFiles, label, node.TotalSize, tokenSuffix)
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderTreeNode(writer io.Writer, node *types.TreeOutputNode, prefix string, includeSummary bool, isRoot bool, isLast bool) {
	if node == nil {
		return
	}
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	switch node.Type {
	case types.NodeTypeFile:
		if node.Tokens > 0 {
			fmt.Fprintf(writer, "%s[File] %s (%d tokens)\n", linePrefix, node.Path, node.Tokens)
		} else {
			fmt.Fprintf(writer, "%s[File] %s\n", linePrefix, node.Path)
		}
		return
	case types.NodeTypeBinary:
		fmt.Fprintf(writer, binaryTreeFormat, linePrefix, node.Path, mimeTypeLabel, node.MimeType)
		return
	}
	fmt.Fprintf(writer, "%s%s\n", linePrefix, node.Path)
	summaryLine := directorySummaryLine(node, includeSummary)
	if summaryLine != "" {
		if isRoot {
			fmt.Fprintf(writer, "%s\n", summaryLine)
		} else {
			fmt.Fprintf(writer, "%s%s\n", childPrefix, summaryLine)
		}
	}
	for index, child := range node.Children {
		if child == nil {
			continue
		}
		renderTreeNode(writer, child, childPrefix, includeSummary, false, index == len(node.Children)-1)
	}
}

// WriteTreeRaw renders a directory tree to the provided writer.
func WriteTreeRaw(writer io.Writer, node *types.TreeOutputNode, includeSummary bool) {
	if node == nil {
		return
	}
	renderTreeNode(writer, node, "", includeSummary, true, true)
}

// WriteContentRaw prints the materialized content of every text document of the tree.
func WriteContentRaw(writer io.Writer, node *types.TreeOutputNode) {
	if node == nil {
		return
	}
	if node.Type == types.NodeTypeFile && node.Content != "" {
		fmt.Fprintf(writer, "File: %s\n", node.Path)
		fmt.Fprintln(writer, node.Content)
		fmt.Fprintf(writer, "End of file: %s\n", node.Path)
		fmt.Fprintln(writer, separatorLine)
		return
	}
	for _, child := range node.Children {
		WriteContentRaw(writer, child)
	}
}

// WriteWalkRaw renders a walk result. Sequential walks print one line per entry.
func WriteWalkRaw(writer io.Writer, walk *types.WalkOutput) {
	if walk == nil {
		return
	}
	for _, entry := range walk.Entries {
		fmt.Fprintf(writer, walkEntryFormat, entry.Index, entry.Type, entry.Path)
	}
	fmt.Fprintln(writer, FormatWalkLine(walk))
}

// FormatWalkLine formats the aggregate line of a walk.
func FormatWalkLine(walk *types.WalkOutput) string {
	line := fmt.Sprintf("Walk (%s): %d folders, %d documents", walk.Mode, walk.Folders, walk.Documents)
	if walk.Mode == types.WalkModeParallel {
		line += fmt.Sprintf(", %d batches, parallelism %d, %d workers", walk.Batches, walk.Parallelism, walk.Workers)
	}
	return line
}

// FormatSummaryLine formats an OutputSummary into the raw summary line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	label := "files"
	if summary.TotalFiles == 1 {
		label = "file"
	}
	extra := ""
	if summary.TotalTokens > 0 {
		extra = fmt.Sprintf(", %d tokens", summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d folders, %d %s, %s%s%s", summary.TotalFolders, summary.TotalFiles, label, summary.TotalSize, extra, modelSuffix)
}
