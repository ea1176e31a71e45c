package folder

import (
	"context"
	"fmt"
	"sync"
)

const errorUnexpectedEntryFormat = "expected folder at %s, got %s"

// Future is a write-once handle to an entry that is still being built.
type Future struct {
	done    chan struct{}
	once    sync.Once
	entry   Entry
	failure error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (future *Future) resolve(entry Entry, failure error) {
	future.once.Do(func() {
		future.entry = entry
		future.failure = failure
		close(future.done)
	})
}

// Done is closed once the entry or its failure is available.
func (future *Future) Done() <-chan struct{} {
	return future.done
}

// Wait blocks until the entry is available or ctx ends.
func (future *Future) Wait(ctx context.Context) (Entry, error) {
	select {
	case <-future.done:
		return future.entry, future.failure
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WaitFolder is Wait for futures returned by Builder.Build.
func (future *Future) WaitFolder(ctx context.Context) (*Folder, error) {
	entry, waitError := future.Wait(ctx)
	if waitError != nil {
		return nil, waitError
	}
	folder, isFolder := entry.(*Folder)
	if !isFolder {
		return nil, fmt.Errorf(errorUnexpectedEntryFormat, entry.Path(), entry.Kind())
	}
	return folder, nil
}

// result reads a resolved future. Callers must have observed Done.
func (future *Future) result() (Entry, error) {
	<-future.done
	return future.entry, future.failure
}
