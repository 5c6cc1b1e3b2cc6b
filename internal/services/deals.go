package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/pitchlens/internal/models"
)

// StatusSink records the outcome of a processing step on a deal.
type StatusSink interface {
	SetStatus(ctx context.Context, dealID, status string, payload map[string]any) error
}

// DealStore is a StatusSink that can also look deals up.
type DealStore interface {
	StatusSink
	DealExists(ctx context.Context, dealID string) (bool, error)
}

// DealIDFromSubject returns the document id from a Firestore event subject
// such as "documents/deals/abc123".
func DealIDFromSubject(subject string) (string, error) {
	id := subject[strings.LastIndex(subject, "/")+1:]
	if id == "" {
		return "", fmt.Errorf("no document id in event subject %q", subject)
	}
	return id, nil
}

// handleError logs the failure, marks the deal as errored and returns the wrapped error.
func handleError(ctx context.Context, logCtx *slog.Logger, sink StatusSink, dealID, message string, originalErr error, extra map[string]any) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)

	payload := map[string]any{"error_message": fullError}
	for k, v := range extra {
		payload[k] = v
	}
	if err := sink.SetStatus(ctx, dealID, models.StatusError, payload); err != nil {
		logCtx.Error("CRITICAL: Failed to update Firestore status to error after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}
