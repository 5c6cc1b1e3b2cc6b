// Package chunking extracts the full text of a PDF through a text extraction service that
// accepts a limited number of pages per call. Oversized documents are split into page windows,
// each window is uploaded as a temporary chunk, extracted, and removed again.
package chunking

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// DefaultPageLimit is the per-call page ceiling of the extraction service.
const DefaultPageLimit = 15

// segmentSeparator joins the text of consecutive chunks.
const segmentSeparator = "\n\n"

// DocumentRef locates an object in a bucket.
type DocumentRef struct {
	Bucket string
	Key    string
}

// URI returns the gs:// form of the reference.
func (r DocumentRef) URI() string {
	return fmt.Sprintf("gs://%s/%s", r.Bucket, r.Key)
}

// ParseDocumentRef parses a gs://bucket/key URI.
func ParseDocumentRef(uri string) (DocumentRef, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return DocumentRef{}, fmt.Errorf("invalid document uri %q: %w", uri, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "gs" || u.Host == "" || key == "" {
		return DocumentRef{}, fmt.Errorf("invalid document uri %q: expected gs://bucket/key", uri)
	}
	return DocumentRef{Bucket: u.Host, Key: key}, nil
}

// BlobStore stores chunk artifacts. Delete must not fail for a missing object.
type BlobStore interface {
	Upload(ctx context.Context, ref DocumentRef, data []byte) error
	Download(ctx context.Context, ref DocumentRef) ([]byte, error)
	Delete(ctx context.Context, ref DocumentRef) error
}

// PageSplitter reads page counts and cuts page windows out of a PDF.
type PageSplitter interface {
	PageCount(data []byte) (int, error)
	// ExtractPages returns a standalone PDF holding pages [start, end) in original order.
	ExtractPages(data []byte, start, end int) ([]byte, error)
}

// TextExtractor runs OCR over a stored document. Calls are synchronous and idempotent.
type TextExtractor interface {
	Extract(ctx context.Context, ref DocumentRef) (string, error)
}

// Options configures an Orchestrator.
type Options struct {
	// PageLimit defaults to DefaultPageLimit when zero.
	PageLimit int
	// KeyPrefix is the root for chunk keys inside the source bucket.
	KeyPrefix string
	Logger    *slog.Logger
	// NewRunID defaults to uuid.NewString.
	NewRunID func() string
}

// Orchestrator implements full-text extraction over page-limited chunks.
// It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	store     BlobStore
	splitter  PageSplitter
	extractor TextExtractor
	pageLimit int
	keyPrefix string
	logger    *slog.Logger
	newRunID  func() string
}

// NewOrchestrator creates an Orchestrator from its collaborators.
func NewOrchestrator(store BlobStore, splitter PageSplitter, extractor TextExtractor, opts Options) (*Orchestrator, error) {
	if store == nil || splitter == nil || extractor == nil {
		return nil, fmt.Errorf("NewOrchestrator: store, splitter and extractor are required")
	}
	if opts.PageLimit == 0 {
		opts.PageLimit = DefaultPageLimit
	}
	if opts.PageLimit < 0 {
		return nil, fmt.Errorf("NewOrchestrator: page limit must be positive, got %d", opts.PageLimit)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewRunID == nil {
		opts.NewRunID = uuid.NewString
	}

	return &Orchestrator{
		store:     store,
		splitter:  splitter,
		extractor: extractor,
		pageLimit: opts.PageLimit,
		keyPrefix: opts.KeyPrefix,
		logger:    opts.Logger,
		newRunID:  opts.NewRunID,
	}, nil
}

// PageLimit returns the configured page ceiling.
func (o *Orchestrator) PageLimit() int { return o.pageLimit }

// ExtractFullText returns the text of the document at ref. parentID identifies the owning
// record and scopes the keys of any chunk artifacts. Either the complete text is returned or an
// error; every chunk uploaded during the call is deleted before it returns.
func (o *Orchestrator) ExtractFullText(ctx context.Context, ref DocumentRef, parentID string) (string, error) {
	logCtx := o.logger.With("gcsUri", ref.URI(), "parentId", parentID)

	data, err := o.store.Download(ctx, ref)
	if err != nil {
		return "", &StorageError{Op: "download", Key: ref.Key, Err: err}
	}

	totalPages, err := o.splitter.PageCount(data)
	if err != nil {
		return "", &SplitError{Op: OpCount, Err: err}
	}
	if totalPages == 0 {
		return "", ErrEmptyDocument
	}
	logCtx = logCtx.With("totalPages", totalPages, "pageLimit", o.pageLimit)

	if totalPages <= o.pageLimit {
		logCtx.Info("Document is within the page limit. Extracting directly.")
		text, err := o.extractor.Extract(ctx, ref)
		if err != nil {
			return "", &ExtractionError{URI: ref.URI(), Err: err}
		}
		return text, nil
	}

	windows, err := Windows(totalPages, o.pageLimit)
	if err != nil {
		return "", err
	}
	runID := o.newRunID()
	logCtx = logCtx.With("runId", runID, "chunkCount", len(windows))
	logCtx.Info("Document exceeds the page limit. Extracting in chunks.")

	var created []DocumentRef
	defer func() {
		o.cleanup(context.WithoutCancel(ctx), logCtx, created)
	}()

	segments := make([]string, 0, len(windows))
	for _, w := range windows {
		chunk, err := o.splitter.ExtractPages(data, w.Start, w.End)
		if err != nil {
			return "", &SplitError{Op: OpExtract, Window: w, Err: err}
		}

		chunkRef := DocumentRef{Bucket: ref.Bucket, Key: o.chunkKey(parentID, runID, w)}
		// Tracked before the upload so a partially written object is still removed.
		created = append(created, chunkRef)
		if err := o.store.Upload(ctx, chunkRef, chunk); err != nil {
			return "", &StorageError{Op: "upload", Key: chunkRef.Key, Err: err}
		}
		logCtx.Info("Uploaded chunk.", "window", w.String(), "chunkUri", chunkRef.URI())

		text, err := o.extractor.Extract(ctx, chunkRef)
		if err != nil {
			return "", &ExtractionError{URI: chunkRef.URI(), Err: err}
		}
		segments = append(segments, text)
	}

	return strings.Join(segments, segmentSeparator), nil
}

func (o *Orchestrator) chunkKey(parentID, runID string, w Window) string {
	return path.Join(o.keyPrefix, parentID, "chunks", runID, fmt.Sprintf("p%05d.pdf", w.Start+1))
}

// cleanup deletes every chunk independently. Failures are logged, never returned.
func (o *Orchestrator) cleanup(ctx context.Context, logCtx *slog.Logger, chunks []DocumentRef) {
	if len(chunks) == 0 {
		return
	}
	logCtx.Info("Cleaning up temporary chunks.", "count", len(chunks))
	var failed int
	for _, chunk := range chunks {
		if err := o.store.Delete(ctx, chunk); err != nil {
			failed++
			logCtx.Warn("Failed to delete temporary chunk.", "chunkUri", chunk.URI(), "error", err)
		}
	}
	if failed > 0 {
		logCtx.Error("Some temporary chunks were not deleted.", "failed", failed, "total", len(chunks))
	}
}
