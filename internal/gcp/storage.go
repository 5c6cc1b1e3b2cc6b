package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/pitchlens/internal/chunking"
	"google.golang.org/api/googleapi"
)

const (
	uploadMaxRetries     = 4
	uploadInitialBackoff = 1 * time.Second
	uploadAttemptTimeout = 50 * time.Second
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt reads an integer environment variable, returning fallback when it is unset.
func GetEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return n, nil
}

// BlobStore implements chunking.BlobStore on Cloud Storage.
type BlobStore struct {
	client  *storage.Client
	backoff time.Duration
}

// NewBlobStore wraps an existing storage client.
func NewBlobStore(client *storage.Client) *BlobStore {
	return &BlobStore{client: client, backoff: uploadInitialBackoff}
}

// Upload writes data as a PDF object, retrying transient failures with exponential backoff.
func (s *BlobStore) Upload(ctx context.Context, ref chunking.DocumentRef, data []byte) error {
	backoff := s.backoff
	var lastErr error

	for i := 0; i < uploadMaxRetries; i++ {
		err := s.uploadOnce(ctx, ref, data)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			return err
		}

		slog.Warn(
			"Upload failed, will retry.",
			"gcsObject", ref.URI(),
			"attempt", i+1,
			"maxRetries", uploadMaxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upload for %s failed after all retries: %w", ref.URI(), lastErr)
}

func (s *BlobStore) uploadOnce(ctx context.Context, ref chunking.DocumentRef, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, uploadAttemptTimeout)
	defer cancel()

	w := s.client.Bucket(ref.Bucket).Object(ref.Key).NewWriter(writeCtx)
	w.ContentType = "application/pdf"
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("io.Copy to GCS failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
	}
	return nil
}

// Download reads the whole object into memory.
func (s *BlobStore) Download(ctx context.Context, ref chunking.DocumentRef) ([]byte, error) {
	r, err := s.client.Bucket(ref.Bucket).Object(ref.Key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for %s: %w", ref.URI(), err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %s: %w", ref.URI(), err)
	}
	return data, nil
}

// Delete removes the object. A missing object is not an error.
func (s *BlobStore) Delete(ctx context.Context, ref chunking.DocumentRef) error {
	err := s.client.Bucket(ref.Bucket).Object(ref.Key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete %s: %w", ref.URI(), err)
	}
	return nil
}

// isRetryable reports whether an upload error is worth another attempt.
// Client errors other than 408 and 429 are permanent.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusRequestTimeout, gerr.Code == http.StatusTooManyRequests:
			return true
		case gerr.Code >= 400 && gerr.Code < 500:
			return false
		}
	}
	return true
}
