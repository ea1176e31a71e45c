package folder

import (
	"errors"
	"fmt"
)

var (
	// ErrEnumeration reports that listing a directory failed.
	ErrEnumeration = errors.New("enumeration failure")
	// ErrLeafConstruction reports that loading a document failed.
	ErrLeafConstruction = errors.New("leaf construction failure")
	// ErrJoin reports that a child of a folder failed while the folder waited on it.
	ErrJoin = errors.New("join failure")
)

const buildErrorFormat = "%s for %s: %v"

// BuildError carries the kind of a construction failure and the path it
// happened at. Kind is one of ErrEnumeration, ErrLeafConstruction or ErrJoin.
type BuildError struct {
	Kind error
	Path string
	Err  error
}

func newBuildError(kind error, path string, cause error) *BuildError {
	return &BuildError{Kind: kind, Path: path, Err: cause}
}

func (buildError *BuildError) Error() string {
	return fmt.Sprintf(buildErrorFormat, buildError.Kind, buildError.Path, buildError.Err)
}

// Unwrap exposes the underlying cause so nested kinds stay reachable.
func (buildError *BuildError) Unwrap() error {
	return buildError.Err
}

// Is matches the kind of this error.
func (buildError *BuildError) Is(target error) bool {
	return buildError.Kind == target
}
