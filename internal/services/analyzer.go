package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/pitchlens/internal/gcp"
	"github.com/Lllllllleong/pitchlens/internal/models"
	"golang.org/x/sync/errgroup"
)

// AnalyzerConfig holds configuration for the deal-analyzer service.
type AnalyzerConfig struct {
	ProjectID       string
	DealsCollection string
	VertexAIRegion  string
	GeminiModel     string
}

// Analyst generates the analysis sections for a deck's text.
type Analyst interface {
	AssessRisk(ctx context.Context, fullText string) (string, error)
	SummarizeFinancials(ctx context.Context, fullText string) (string, error)
}

// AnalyzerFunction holds dependencies for the analysis logic.
type AnalyzerFunction struct {
	analyst Analyst
	sink    StatusSink
}

// NewAnalyzer creates a new AnalyzerFunction instance.
func NewAnalyzer(ctx context.Context) (*AnalyzerFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := AnalyzerConfig{
		ProjectID:       projectID,
		DealsCollection: gcp.GetEnv("DEALS_COLLECTION", "deals"),
		VertexAIRegion:  gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:     gcp.GetEnv("GEMINI_MODEL", gcp.DefaultGeminiModel),
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	return &AnalyzerFunction{
		analyst: vertexClient,
		sink:    gcp.NewDealStore(firestoreClient, config.DealsCollection),
	}, nil
}

// Process runs the analysis when a deal has just moved to text_extracted.
func (f *AnalyzerFunction) Process(ctx context.Context, dealID string, event models.FirestoreEvent) error {
	logCtx := slog.With("dealId", dealID)

	afterStatus := event.Value.String("status")
	beforeStatus := event.OldValue.String("status")
	if afterStatus != models.StatusTextExtracted || beforeStatus == models.StatusTextExtracted {
		logCtx.Info("Skipping: not a valid trigger.", "status", afterStatus, "previousStatus", beforeStatus)
		return nil
	}

	fullText := event.Value.String("full_text")
	if fullText == "" {
		logCtx.Warn("No full_text found for deal. Aborting.")
		return nil
	}

	logCtx.Info("Starting Gemini analysis.")
	var analysis models.Analysis
	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		risk, err := f.analyst.AssessRisk(gctx, fullText)
		if err != nil {
			return fmt.Errorf("risk assessment: %w", err)
		}
		analysis.Risk = risk
		return nil
	})
	eg.Go(func() error {
		financials, err := f.analyst.SummarizeFinancials(gctx, fullText)
		if err != nil {
			return fmt.Errorf("financial metrics: %w", err)
		}
		analysis.Financials = financials
		return nil
	})
	if err := eg.Wait(); err != nil {
		return handleError(ctx, logCtx, f.sink, dealID, "Gemini analysis failed", err, nil)
	}

	if err := f.sink.SetStatus(ctx, dealID, models.StatusCompleted, map[string]any{"analysis": analysis}); err != nil {
		logCtx.Error("Failed to store analysis", "error", err)
		return err
	}

	logCtx.Info("Successfully generated analysis.")
	return nil
}
