// Package telemetry counts what a folder build produced and exports the
// counts in the Prometheus text exposition format.
package telemetry

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/temirov/foldertree/internal/folder"
)

const (
	metricNamespace = "foldertree"

	errorGatherMetricsFormat = "gather metrics: %w"
	errorEncodeMetricsFormat = "encode metric family %s: %w"
)

// Recorder is a folder.Visitor that counts finished entries. It also observes
// the batches detached by a parallel walk. All methods are safe for
// concurrent use.
type Recorder struct {
	registry        *prometheus.Registry
	folders         prometheus.Counter
	documents       prometheus.Counter
	binaryDocuments prometheus.Counter
	documentBytes   prometheus.Counter
	documentTokens  prometheus.Counter
	folderEntries   prometheus.Histogram
	batches         prometheus.Counter
	batchEntries    prometheus.Histogram
	walkedEntries   *prometheus.CounterVec
}

// NewRecorder returns a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		folders: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "folders_built_total",
			Help:      "Folders whose construction finished.",
		}),
		documents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "documents_loaded_total",
			Help:      "Documents whose construction finished.",
		}),
		binaryDocuments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "binary_documents_total",
			Help:      "Documents detected as binary.",
		}),
		documentBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "document_bytes_total",
			Help:      "Sum of document sizes on disk.",
		}),
		documentTokens: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "document_tokens_total",
			Help:      "Sum of counted document tokens.",
		}),
		folderEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "folder_entries",
			Help:      "Entry count of every finished folder, the folder itself included.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "walk_batches_total",
			Help:      "Batches detached by parallel walks.",
		}),
		batchEntries: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricNamespace,
			Name:      "walk_batch_entries",
			Help:      "Estimated length of detached batches.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		walkedEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "walked_entries_total",
			Help:      "Entries produced by sequence walks, by kind.",
		}, []string{"kind"}),
	}
}

// VisitFolder counts a finished folder.
func (recorder *Recorder) VisitFolder(finished *folder.Folder) {
	recorder.folders.Inc()
	recorder.folderEntries.Observe(float64(finished.Size()))
}

// VisitDocument counts a finished document and its byte and token totals.
func (recorder *Recorder) VisitDocument(document *folder.Document) {
	recorder.documents.Inc()
	recorder.documentBytes.Add(float64(document.Bytes))
	recorder.documentTokens.Add(float64(document.Tokens))
	if document.Binary {
		recorder.binaryDocuments.Inc()
	}
}

// ObserveBatch records one batch detached by a parallel walk.
func (recorder *Recorder) ObserveBatch(entries int64) {
	recorder.batches.Inc()
	recorder.batchEntries.Observe(float64(entries))
}

// ObserveWalked records one entry produced by a walk.
func (recorder *Recorder) ObserveWalked(entry folder.Entry) {
	recorder.walkedEntries.WithLabelValues(entry.Kind().String()).Inc()
}

// Registry exposes the underlying registry, for example to serve it over HTTP.
func (recorder *Recorder) Registry() *prometheus.Registry {
	return recorder.registry
}

// Write encodes every gathered metric family to writer in text format.
func (recorder *Recorder) Write(writer io.Writer) error {
	metricFamilies, gatherError := recorder.registry.Gather()
	if gatherError != nil {
		return fmt.Errorf(errorGatherMetricsFormat, gatherError)
	}
	encoder := expfmt.NewEncoder(writer, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, metricFamily := range metricFamilies {
		if encodeError := encoder.Encode(metricFamily); encodeError != nil {
			return fmt.Errorf(errorEncodeMetricsFormat, metricFamily.GetName(), encodeError)
		}
	}
	return nil
}
