package chunking

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned when the source PDF has no pages.
var ErrEmptyDocument = errors.New("document has no pages")

// ErrorKind classifies orchestration failures for status reporting.
type ErrorKind string

const (
	KindEmptyDocument     ErrorKind = "empty_document"
	KindSplit             ErrorKind = "split"
	KindStorage           ErrorKind = "storage"
	KindExtractionService ErrorKind = "extraction_service"
	KindUnknown           ErrorKind = "unknown"
)

// Split operations reported by SplitError.
const (
	OpCount   = "count"
	OpExtract = "extract"
)

// SplitError reports that the PDF could not be read (OpCount) or a page window could not be
// extracted (OpExtract). Window is only set for OpExtract.
type SplitError struct {
	Op     string
	Window Window
	Err    error
}

func (e *SplitError) Error() string {
	if e.Op == OpCount {
		return fmt.Sprintf("failed to read pdf: %v", e.Err)
	}
	return fmt.Sprintf("failed to extract pages %s: %v", e.Window, e.Err)
}

func (e *SplitError) Unwrap() error { return e.Err }

// StorageError reports a failed blob store operation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExtractionError reports a failed call to the text extraction service.
type ExtractionError struct {
	URI string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %v", e.URI, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Kind maps an error returned by the orchestrator to its ErrorKind.
func Kind(err error) ErrorKind {
	var (
		splitErr      *SplitError
		storageErr    *StorageError
		extractionErr *ExtractionError
	)
	switch {
	case errors.Is(err, ErrEmptyDocument):
		return KindEmptyDocument
	case errors.As(err, &splitErr):
		return KindSplit
	case errors.As(err, &storageErr):
		return KindStorage
	case errors.As(err, &extractionErr):
		return KindExtractionService
	default:
		return KindUnknown
	}
}
