package folder

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	logBatchDetached = "batch detached"
	logFieldEntries  = "entries"
	logFieldBatch    = "batch"
)

// ParallelOptions configures ForEachParallel.
type ParallelOptions struct {
	// Workers bounds the number of batches drained at once. Zero means one per batch.
	Workers int
	// OnBatch, when set, is called with the estimated length of every detached batch.
	OnBatch func(entries int64)
	Logger  *zap.Logger
}

// ForEachParallel splits source until it is exhausted and drains every
// detached batch on its own worker. action runs concurrently for entries of
// different batches. The first error returned by action stops further
// splitting and is returned.
func ForEachParallel(ctx context.Context, source Splitter, options ParallelOptions, action func(Entry) error) error {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	group, groupCtx := errgroup.WithContext(ctx)
	if options.Workers > 0 {
		group.SetLimit(options.Workers)
	}

	batchIndex := 0
	for groupCtx.Err() == nil {
		batch := source.TrySplit()
		if batch == nil {
			break
		}
		logger.Debug(logBatchDetached, zap.Int(logFieldBatch, batchIndex), zap.Int64(logFieldEntries, batch.EstimateSize()))
		batchIndex++
		if options.OnBatch != nil {
			options.OnBatch(batch.EstimateSize())
		}
		group.Go(func() error {
			return drain(groupCtx, batch, action)
		})
	}

	group.Go(func() error {
		return drain(groupCtx, source, action)
	})
	return group.Wait()
}

func drain(ctx context.Context, splitter Splitter, action func(Entry) error) error {
	var actionError error
	for actionError == nil {
		if contextError := ctx.Err(); contextError != nil {
			return contextError
		}
		if !splitter.TryAdvance(func(entry Entry) {
			actionError = action(entry)
		}) {
			break
		}
	}
	return actionError
}
