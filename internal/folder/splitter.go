package folder

import "strings"

// Characteristics describes guarantees a Splitter makes about its entries.
type Characteristics uint8

const (
	// Ordered entries have a defined encounter order.
	Ordered Characteristics = 1 << iota
	// Sized splitters report an exact EstimateSize.
	Sized
	// SubSized splitters only produce Sized sub-splitters.
	SubSized
	// NonNull splitters never produce a nil entry.
	NonNull
	// Immutable entries cannot change while they are traversed.
	Immutable
)

var characteristicNames = []struct {
	flag Characteristics
	name string
}{
	{Ordered, "ordered"},
	{Sized, "sized"},
	{SubSized, "subsized"},
	{NonNull, "nonnull"},
	{Immutable, "immutable"},
}

// Has reports whether every flag in flags is set.
func (characteristics Characteristics) Has(flags Characteristics) bool {
	return characteristics&flags == flags
}

func (characteristics Characteristics) String() string {
	var names []string
	for _, characteristic := range characteristicNames {
		if characteristics.Has(characteristic.flag) {
			names = append(names, characteristic.name)
		}
	}
	return strings.Join(names, "|")
}

// Splitter produces entries one at a time and can detach part of its
// remaining entries for another worker. A Splitter is not safe for
// concurrent use; detached splitters are independent of their source.
type Splitter interface {
	TryAdvance(action func(Entry)) bool
	TrySplit() Splitter
	EstimateSize() int64
	Characteristics() Characteristics
}

// BatchSplitter wraps a Cursor and detaches batches whose size doubles
// after every split.
type BatchSplitter struct {
	cursor    *Cursor
	batchSize int64
	remaining int64
}

// NewBatchSplitter returns a splitter over the entries rooted at root. The
// first batch holds root.Size()/parallelism entries and never less than one.
func NewBatchSplitter(root *Folder, parallelism int) *BatchSplitter {
	if parallelism < 1 {
		parallelism = 1
	}
	batchSize := root.Size() / int64(parallelism)
	if batchSize < 1 {
		batchSize = 1
	}
	return &BatchSplitter{
		cursor:    NewCursor(root),
		batchSize: batchSize,
		remaining: root.Size(),
	}
}

// BatchSize reports how many entries the next TrySplit detaches at most.
func (splitter *BatchSplitter) BatchSize() int64 {
	return splitter.batchSize
}

// TryAdvance hands the next entry to action. It returns false once the
// cursor is exhausted.
func (splitter *BatchSplitter) TryAdvance(action func(Entry)) bool {
	if !splitter.cursor.HasNext() {
		return false
	}
	splitter.remaining--
	action(splitter.cursor.Next())
	return true
}

// TrySplit detaches up to BatchSize entries into a new sequential splitter
// and doubles the batch size. It returns nil once the cursor is exhausted.
func (splitter *BatchSplitter) TrySplit() Splitter {
	if !splitter.cursor.HasNext() {
		return nil
	}
	batch := make([]Entry, 0, min(splitter.batchSize, splitter.remaining))
	for int64(len(batch)) < splitter.batchSize && splitter.cursor.HasNext() {
		batch = append(batch, splitter.cursor.Next())
	}
	splitter.remaining -= int64(len(batch))
	splitter.batchSize += splitter.batchSize
	return &sliceSplitter{entries: batch}
}

// EstimateSize reports the number of entries not yet produced.
func (splitter *BatchSplitter) EstimateSize() int64 {
	return splitter.remaining
}

// Characteristics of the source splitter.
func (splitter *BatchSplitter) Characteristics() Characteristics {
	return NonNull | Immutable
}

// sliceSplitter covers an already materialized batch and never splits.
type sliceSplitter struct {
	entries []Entry
	index   int
}

func (splitter *sliceSplitter) TryAdvance(action func(Entry)) bool {
	if splitter.index >= len(splitter.entries) {
		return false
	}
	entry := splitter.entries[splitter.index]
	splitter.index++
	action(entry)
	return true
}

func (splitter *sliceSplitter) TrySplit() Splitter {
	return nil
}

func (splitter *sliceSplitter) EstimateSize() int64 {
	return int64(len(splitter.entries) - splitter.index)
}

func (splitter *sliceSplitter) Characteristics() Characteristics {
	return Ordered | Sized | SubSized | NonNull | Immutable
}
