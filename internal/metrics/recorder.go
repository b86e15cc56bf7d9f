package metrics

import "time"

// DocumentResult labels the outcome of processing one document.
type DocumentResult string

const (
	DocumentIndexed DocumentResult = "indexed"
	DocumentFailed  DocumentResult = "failed"
)

// Recorder defines observability hooks for indexing. All implementations must
// be safe for concurrent use.
type Recorder interface {
	ObservePassDuration(source string, d time.Duration)
	IncDocumentResult(result DocumentResult)
	ObserveFetchDuration(operation string, d time.Duration, success bool)
	IncCacheResult(hit bool)
	SetLastPassDocuments(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(string, time.Duration)        {}
func (NoopRecorder) IncDocumentResult(DocumentResult)                 {}
func (NoopRecorder) ObserveFetchDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncCacheResult(bool)                              {}
func (NoopRecorder) SetLastPassDocuments(int)                         {}
