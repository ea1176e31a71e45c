package folder

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultEnumerationBatch is the number of listings dispatched per batch in parallel mode.
	DefaultEnumerationBatch = 64

	logFieldBuild    = "build"
	logFieldPath     = "path"
	logFieldSize     = "size"
	logFieldFolders  = "folders"
	logFieldDocs     = "documents"
	logFieldBatches  = "batches"
	logBuildStarted  = "folder build started"
	logFolderBuilt   = "folder built"
	logFolderFailed  = "folder build failed"
	logDocumentBuilt = "document loaded"
	logParallelStage = "dispatching listing in parallel batches"

	errorNilDocumentFormat = "loader returned no document for %s"
)

// Listing is one child reported by a Lister.
type Listing struct {
	Path  string
	IsDir bool
}

// Lister enumerates the immediate children of a directory.
type Lister interface {
	List(ctx context.Context, directoryPath string) ([]Listing, error)
}

// DocumentLoader produces a finished document for a file path.
type DocumentLoader interface {
	Load(ctx context.Context, documentPath string) (*Document, error)
}

// BuilderOptions configures a Builder.
type BuilderOptions struct {
	// Visitor is called once for every finished folder and document.
	Visitor Visitor
	// Parallel dispatches the listing of a directory in concurrent batches.
	Parallel bool
	// EnumerationBatch sets the batch size used when Parallel is set.
	EnumerationBatch int
	// Concurrency bounds simultaneous Lister and DocumentLoader calls. Zero means unbounded.
	Concurrency int
	Logger      *zap.Logger
}

// Builder constructs folders concurrently: one goroutine per entry, joined per folder.
type Builder struct {
	lister           Lister
	loader           DocumentLoader
	visitor          Visitor
	parallel         bool
	enumerationBatch int
	slots            *semaphore.Weighted
	logger           *zap.Logger
}

// NewBuilder returns a Builder reading directories through lister and
// documents through loader.
func NewBuilder(lister Lister, loader DocumentLoader, options BuilderOptions) *Builder {
	builder := &Builder{
		lister:           lister,
		loader:           loader,
		visitor:          options.Visitor,
		parallel:         options.Parallel,
		enumerationBatch: options.EnumerationBatch,
		logger:           options.Logger,
	}
	if builder.enumerationBatch <= 0 {
		builder.enumerationBatch = DefaultEnumerationBatch
	}
	if options.Concurrency > 0 {
		builder.slots = semaphore.NewWeighted(int64(options.Concurrency))
	}
	if builder.logger == nil {
		builder.logger = zap.NewNop()
	}
	return builder
}

// Build starts constructing the folder at rootPath and returns immediately.
// The future resolves to the finished *Folder, or to a *BuildError when any
// entry beneath rootPath failed.
func (builder *Builder) Build(ctx context.Context, rootPath string) *Future {
	buildLogger := builder.logger.With(zap.String(logFieldBuild, uuid.NewString()))
	buildLogger.Debug(logBuildStarted, zap.String(logFieldPath, rootPath))
	return builder.buildFolder(ctx, filepath.Clean(rootPath), buildLogger)
}

func (builder *Builder) buildFolder(ctx context.Context, folderPath string, logger *zap.Logger) *Future {
	future := newFuture()
	go func() {
		folder, buildError := builder.constructFolder(ctx, folderPath, logger)
		if buildError != nil {
			logger.Debug(logFolderFailed, zap.String(logFieldPath, folderPath), zap.Error(buildError))
			future.resolve(nil, buildError)
			return
		}
		future.resolve(folder, nil)
	}()
	return future
}

func (builder *Builder) constructFolder(ctx context.Context, folderPath string, logger *zap.Logger) (*Folder, error) {
	listings, listError := builder.list(ctx, folderPath)
	if listError != nil {
		return nil, newBuildError(ErrEnumeration, folderPath, listError)
	}

	childCtx, cancelChildren := context.WithCancel(ctx)
	defer cancelChildren()
	staging := builder.stage(childCtx, excludeSelf(listings, folderPath), logger)

	if joinError := join(ctx, staging.futures()); joinError != nil {
		return nil, newBuildError(ErrJoin, folderPath, joinError)
	}
	folder, freezeError := staging.freeze(folderPath)
	if freezeError != nil {
		return nil, newBuildError(ErrJoin, folderPath, freezeError)
	}

	logger.Debug(logFolderBuilt,
		zap.String(logFieldPath, folderPath),
		zap.Int64(logFieldSize, folder.Size()),
		zap.Int(logFieldFolders, len(folder.subFolders)),
		zap.Int(logFieldDocs, len(folder.documents)),
	)
	if builder.visitor != nil {
		builder.visitor.VisitFolder(folder)
	}
	return folder, nil
}

// stage turns listings into pending entries. In parallel mode each batch is
// staged on its own goroutine and the partial folders are merged in batch
// order, so slot order always equals enumeration order.
func (builder *Builder) stage(ctx context.Context, listings []Listing, logger *zap.Logger) *pendingFolder {
	if !builder.parallel || len(listings) <= builder.enumerationBatch {
		staging := &pendingFolder{}
		builder.dispatch(ctx, staging, listings, logger)
		return staging
	}

	batchCount := (len(listings) + builder.enumerationBatch - 1) / builder.enumerationBatch
	logger.Debug(logParallelStage, zap.Int(logFieldBatches, batchCount))
	partials := make([]*pendingFolder, batchCount)
	var dispatchers sync.WaitGroup
	for batchIndex := 0; batchIndex < batchCount; batchIndex++ {
		start := batchIndex * builder.enumerationBatch
		end := min(start+builder.enumerationBatch, len(listings))
		partials[batchIndex] = &pendingFolder{}
		dispatchers.Add(1)
		go func(partial *pendingFolder, batch []Listing) {
			defer dispatchers.Done()
			builder.dispatch(ctx, partial, batch, logger)
		}(partials[batchIndex], listings[start:end])
	}
	dispatchers.Wait()

	staging := &pendingFolder{}
	for _, partial := range partials {
		staging.merge(partial)
	}
	return staging
}

func (builder *Builder) dispatch(ctx context.Context, staging *pendingFolder, listings []Listing, logger *zap.Logger) {
	for _, listing := range listings {
		childPath := filepath.Clean(listing.Path)
		if listing.IsDir {
			staging.addSubFolder(builder.buildFolder(ctx, childPath, logger))
			continue
		}
		staging.addDocument(builder.loadDocument(ctx, childPath, logger))
	}
}

func (builder *Builder) loadDocument(ctx context.Context, documentPath string, logger *zap.Logger) *Future {
	future := newFuture()
	go func() {
		document, loadError := builder.load(ctx, documentPath)
		if loadError != nil {
			future.resolve(nil, newBuildError(ErrLeafConstruction, documentPath, loadError))
			return
		}
		logger.Debug(logDocumentBuilt, zap.String(logFieldPath, documentPath))
		if builder.visitor != nil {
			builder.visitor.VisitDocument(document)
		}
		future.resolve(document, nil)
	}()
	return future
}

func (builder *Builder) list(ctx context.Context, directoryPath string) ([]Listing, error) {
	if acquireError := builder.acquire(ctx); acquireError != nil {
		return nil, acquireError
	}
	defer builder.release()
	return builder.lister.List(ctx, directoryPath)
}

func (builder *Builder) load(ctx context.Context, documentPath string) (*Document, error) {
	if acquireError := builder.acquire(ctx); acquireError != nil {
		return nil, acquireError
	}
	defer builder.release()
	document, loadError := builder.loader.Load(ctx, documentPath)
	if loadError != nil {
		return nil, loadError
	}
	if document == nil {
		return nil, fmt.Errorf(errorNilDocumentFormat, documentPath)
	}
	if document.path == "" {
		document.path = documentPath
	}
	return document, nil
}

// acquire takes an I/O slot. Slots are never held across a join.
func (builder *Builder) acquire(ctx context.Context) error {
	if builder.slots == nil {
		return ctx.Err()
	}
	return builder.slots.Acquire(ctx, 1)
}

func (builder *Builder) release() {
	if builder.slots != nil {
		builder.slots.Release(1)
	}
}

// join waits for every future of one folder level. The first failure ends
// the remaining waits and is returned; the caller cancels the children.
func join(ctx context.Context, futures []*Future) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, future := range futures {
		group.Go(func() error {
			_, waitError := future.Wait(groupCtx)
			return waitError
		})
	}
	return group.Wait()
}

func excludeSelf(listings []Listing, directoryPath string) []Listing {
	filtered := make([]Listing, 0, len(listings))
	for _, listing := range listings {
		if filepath.Clean(listing.Path) == directoryPath {
			continue
		}
		filtered = append(filtered, listing)
	}
	return filtered
}
