package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Lllllllleong/pitchlens/internal/gcp"
	"github.com/Lllllllleong/pitchlens/internal/models"
)

// ErrDealNotFound is returned when the requested deal does not exist.
var ErrDealNotFound = errors.New("deal not found")

// QueueConfig holds configuration for the queue-analysis service.
type QueueConfig struct {
	ProjectID        string
	DealsCollection  string
	WorkflowID       string
	WorkflowLocation string
}

// WorkflowStarter starts a downstream workflow execution.
type WorkflowStarter interface {
	Start(ctx context.Context, argument map[string]any) (string, error)
}

// QueueFunction marks deals as queued for analysis. It serves both the Cloud Function and the
// local development server.
type QueueFunction struct {
	deals DealStore
	// workflow is nil when no workflow is configured.
	workflow WorkflowStarter
}

// NewQueue creates a new QueueFunction instance.
func NewQueue(ctx context.Context) (*QueueFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := QueueConfig{
		ProjectID:        projectID,
		DealsCollection:  gcp.GetEnv("DEALS_COLLECTION", "deals"),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	f := &QueueFunction{deals: gcp.NewDealStore(firestoreClient, config.DealsCollection)}

	if config.WorkflowID != "" {
		trigger, err := gcp.NewWorkflowTrigger(ctx, config.ProjectID, config.WorkflowLocation, config.WorkflowID)
		if err != nil {
			return nil, err
		}
		f.workflow = trigger
	}

	slog.Info("Queue logic initialized.", "workflowId", config.WorkflowID)
	return f, nil
}

// Process queues the deal and, when configured, hands it to the workflow.
func (f *QueueFunction) Process(ctx context.Context, req *models.QueueAnalysisRequest) (*models.QueueAnalysisResponse, error) {
	logCtx := slog.With("dealId", req.DealID)

	exists, err := f.deals.DealExists(ctx, req.DealID)
	if err != nil {
		logCtx.Error("Failed to look up deal", "error", err)
		return nil, err
	}
	if !exists {
		return nil, ErrDealNotFound
	}

	if err := f.deals.SetStatus(ctx, req.DealID, models.StatusQueued, nil); err != nil {
		logCtx.Error("Failed to queue deal", "error", err)
		return nil, err
	}

	res := &models.QueueAnalysisResponse{DealID: req.DealID, Status: models.StatusQueued}
	if f.workflow != nil {
		executionID, err := f.workflow.Start(ctx, map[string]any{"dealId": req.DealID})
		if err != nil {
			return nil, handleError(ctx, logCtx, f.deals, req.DealID, "failed to start workflow", err, nil)
		}
		res.ExecutionID = executionID
	}

	logCtx.Info("Deal queued for analysis.", "executionId", res.ExecutionID)
	return res, nil
}

// ServeHTTP handles POST {"dealId": "..."}.
func (f *QueueFunction) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.QueueAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if req.DealID == "" {
		http.Error(w, "Bad Request: dealId is required", http.StatusBadRequest)
		return
	}

	res, err := f.Process(r.Context(), &req)
	if errors.Is(err, ErrDealNotFound) {
		http.Error(w, "Deal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, res)
}

// HandleHealth reports that the process is serving.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, models.HealthResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
		http.Error(w, "Internal Server Error: failed to encode response", http.StatusInternalServerError)
	}
}
