// Package config loads application configuration and ignore files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/temirov/foldertree/internal/utils"
)

const (
	// gitDirectoryPattern represents the pattern that matches the Git directory.
	gitDirectoryPattern = utils.GitDirectoryName + "/"
	// binarySectionHeader opens a section whose patterns are not ignore rules.
	binarySectionHeader = "[binary]"
	// ignoreSectionHeader identifies the section listing ignore patterns.
	ignoreSectionHeader = "[ignore]"
	commentPrefix       = "#"

	errorLoadIgnoreFileFormat = "loading %s from %s: %w"
)

// IgnoreOptions selects the sources of ignore patterns.
type IgnoreOptions struct {
	ExclusionPatterns []string
	UseGitignore      bool
	UseIgnoreFile     bool
	IncludeGit        bool
}

// LoadIgnoreFilePatterns reads one ignore file and returns its ignore
// patterns. A missing file yields no patterns. Lines under a [binary] section
// header are skipped so ignore files shared with other tools stay valid.
func LoadIgnoreFilePatterns(filesystem billy.Filesystem, ignoreFilePath string) (patterns []string, err error) {
	fileHandle, openFileError := filesystem.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil && err == nil {
			err = closeError
		}
	}()

	var ignorePatterns []string
	currentSectionHeader := ignoreSectionHeader
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		if strings.EqualFold(trimmedLine, binarySectionHeader) {
			currentSectionHeader = binarySectionHeader
			continue
		}
		if strings.EqualFold(trimmedLine, ignoreSectionHeader) {
			currentSectionHeader = ignoreSectionHeader
			continue
		}
		if currentSectionHeader == ignoreSectionHeader {
			ignorePatterns = append(ignorePatterns, trimmedLine)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates ignore
// patterns. Patterns from utils.IgnoreFileName and utils.GitIgnoreFileName in
// each nested directory are prefixed with that directory's path relative to
// rootDirectoryPath. The directory named utils.GitDirectoryName is skipped and
// excluded unless IncludeGit is set. Exclusion patterns are appended last.
func LoadRecursiveIgnorePatterns(filesystem billy.Filesystem, rootDirectoryPath string, options IgnoreOptions) ([]string, error) {
	var aggregatedPatterns []string

	ignoreFileNames := make([]string, 0, 2)
	if options.UseIgnoreFile {
		ignoreFileNames = append(ignoreFileNames, utils.IgnoreFileName)
	}
	if options.UseGitignore {
		ignoreFileNames = append(ignoreFileNames, utils.GitIgnoreFileName)
	}

	walkFunction := func(currentDirectoryPath string, fileInfo os.FileInfo, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if !fileInfo.IsDir() {
			return nil
		}
		if !options.IncludeGit && fileInfo.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)
		prefix := ""
		if relativeDirectory != "." {
			prefix = relativeDirectory + "/"
		}

		for _, ignoreFileName := range ignoreFileNames {
			ignoreFilePath := filepath.Join(currentDirectoryPath, ignoreFileName)
			ignorePatterns, loadError := LoadIgnoreFilePatterns(filesystem, ignoreFilePath)
			if loadError != nil {
				return fmt.Errorf(errorLoadIgnoreFileFormat, ignoreFileName, currentDirectoryPath, loadError)
			}
			for _, pattern := range ignorePatterns {
				aggregatedPatterns = append(aggregatedPatterns, prefix+pattern)
			}
		}
		return nil
	}

	if walkError := util.Walk(filesystem, rootDirectoryPath, walkFunction); walkError != nil {
		return nil, walkError
	}

	if !options.IncludeGit {
		aggregatedPatterns = append(aggregatedPatterns, gitDirectoryPattern)
	}

	deduplicatedPatterns := utils.DeduplicatePatterns(aggregatedPatterns)
	for _, pattern := range options.ExclusionPatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !utils.ContainsString(deduplicatedPatterns, trimmedPattern) {
			deduplicatedPatterns = append(deduplicatedPatterns, trimmedPattern)
		}
	}
	return deduplicatedPatterns, nil
}
