package scixtract

import (
	"errors"
	"fmt"
)

// ErrServiceUnavailable reports that the AI service could not be reached or
// did not answer in time. Pipeline passes recover from it locally; it is
// never fatal to a document.
var ErrServiceUnavailable = errors.New("ai service unavailable")

// ErrMalformedResponse reports that the AI service answered but its output
// could not be parsed into the expected shape. The caller falls back to the
// unmodified input rather than re-querying.
var ErrMalformedResponse = errors.New("malformed ai response")

// UnreadableDocumentError indicates a PDF source that cannot produce any
// page text. It is fatal for that document but not for a batch.
type UnreadableDocumentError struct {
	Path string
	Err  error
}

func (e *UnreadableDocumentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unreadable document: %s", e.Path)
	}
	return fmt.Sprintf("unreadable document %s: %v", e.Path, e.Err)
}

func (e *UnreadableDocumentError) Unwrap() error {
	return e.Err
}

// StoreIntegrityError indicates a failed knowledge store ingestion
// transaction. The store is left in its prior state; the caller should
// retry the whole ingest.
type StoreIntegrityError struct {
	FilePath string
	Err      error
}

func (e *StoreIntegrityError) Error() string {
	return fmt.Sprintf("knowledge ingest failed for %s: %v", e.FilePath, e.Err)
}

func (e *StoreIntegrityError) Unwrap() error {
	return e.Err
}
