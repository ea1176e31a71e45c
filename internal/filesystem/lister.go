// Package filesystem implements the directory lister and document loader the
// folder builder consumes, on top of a billy filesystem.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/temirov/foldertree/internal/folder"
	"github.com/temirov/foldertree/internal/utils"
)

const (
	errorReadDirectoryFormat = "reading directory %s: %w"
	osRootDirectory          = "/"
)

// NewOS returns a billy filesystem rooted at the host root, so absolute host
// paths resolve to themselves.
func NewOS() billy.Filesystem {
	return osfs.New(osRootDirectory)
}

// Lister lists one directory level, skipping paths matched by ignore patterns.
type Lister struct {
	filesystem     billy.Filesystem
	rootPath       string
	ignorePatterns []string
}

// NewLister returns a Lister. Ignore patterns are evaluated against paths
// relative to rootPath.
func NewLister(filesystem billy.Filesystem, rootPath string, ignorePatterns []string) *Lister {
	return &Lister{
		filesystem:     filesystem,
		rootPath:       filepath.Clean(rootPath),
		ignorePatterns: ignorePatterns,
	}
}

// List returns the immediate children of directoryPath in the order the
// filesystem reports them. Symbolic links are reported as documents and never
// followed.
func (lister *Lister) List(ctx context.Context, directoryPath string) ([]folder.Listing, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	fileInfos, readDirectoryError := lister.filesystem.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, directoryPath, readDirectoryError)
	}

	listings := make([]folder.Listing, 0, len(fileInfos))
	for _, fileInfo := range fileInfos {
		childPath := filepath.Join(directoryPath, fileInfo.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, lister.rootPath)
		if utils.ShouldIgnoreByPath(relativeChildPath, lister.ignorePatterns) {
			continue
		}
		isDirectory := fileInfo.IsDir() && fileInfo.Mode()&os.ModeSymlink == 0
		listings = append(listings, folder.Listing{Path: childPath, IsDir: isDirectory})
	}
	return listings, nil
}
