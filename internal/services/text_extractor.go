package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/pitchlens/internal/chunking"
	"github.com/Lllllllleong/pitchlens/internal/gcp"
	"github.com/Lllllllleong/pitchlens/internal/models"
)

// Extraction backends selectable with EXTRACTION_BACKEND.
const (
	BackendDocumentAI = "documentai"
	BackendGemini     = "gemini"
)

var errNoText = errors.New("text extraction returned no text")

// TextExtractorConfig holds configuration for the deal-text-extractor service.
type TextExtractorConfig struct {
	ProjectID       string
	DealsCollection string
	PageLimit       int
	ChunkPrefix     string
	Backend         string
	DocumentAI      gcp.DocumentAIConfig
	VertexAIRegion  string
	GeminiModel     string
}

// FullTextExtractor produces the complete text of a stored PDF.
type FullTextExtractor interface {
	ExtractFullText(ctx context.Context, ref chunking.DocumentRef, parentID string) (string, error)
}

// TextExtractorFunction holds dependencies for the text extraction logic.
type TextExtractorFunction struct {
	extractor FullTextExtractor
	sink      StatusSink
}

// loadTextExtractorConfig loads and validates all environment variables for this service.
func loadTextExtractorConfig() (*TextExtractorConfig, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	pageLimit, err := gcp.GetEnvInt("PAGE_LIMIT", chunking.DefaultPageLimit)
	if err != nil {
		return nil, err
	}
	if pageLimit <= 0 {
		return nil, fmt.Errorf("PAGE_LIMIT must be a positive integer, got %d", pageLimit)
	}
	ratePerMinute, err := gcp.GetEnvInt("EXTRACTION_RATE_PER_MINUTE", 120)
	if err != nil {
		return nil, err
	}

	config := &TextExtractorConfig{
		ProjectID:       projectID,
		DealsCollection: gcp.GetEnv("DEALS_COLLECTION", "deals"),
		PageLimit:       pageLimit,
		ChunkPrefix:     gcp.GetEnv("CHUNK_PREFIX", "deals"),
		Backend:         gcp.GetEnv("EXTRACTION_BACKEND", BackendDocumentAI),
		DocumentAI: gcp.DocumentAIConfig{
			ProjectID:     gcp.GetEnv("DOCAI_PROJECT_ID", projectID),
			Location:      gcp.GetEnv("DOCAI_LOCATION", "us"),
			ProcessorID:   gcp.GetEnv("DOCAI_PROCESSOR_ID", ""),
			RatePerMinute: ratePerMinute,
		},
		VertexAIRegion: gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:    gcp.GetEnv("GEMINI_MODEL", gcp.DefaultGeminiModel),
	}

	switch config.Backend {
	case BackendDocumentAI:
		if config.DocumentAI.ProcessorID == "" {
			return nil, fmt.Errorf("DOCAI_PROCESSOR_ID environment variable must be set for the %s backend", BackendDocumentAI)
		}
	case BackendGemini:
	default:
		return nil, fmt.Errorf("unknown EXTRACTION_BACKEND %q", config.Backend)
	}
	return config, nil
}

// NewTextExtractor creates a new TextExtractorFunction instance.
func NewTextExtractor(ctx context.Context) (*TextExtractorFunction, error) {
	config, err := loadTextExtractorConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	var textExtractor chunking.TextExtractor
	switch config.Backend {
	case BackendGemini:
		vertexClient, err := gcp.NewVertexClient(ctx, config.ProjectID, config.VertexAIRegion, config.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		textExtractor = gcp.NewGeminiExtractor(vertexClient)
	default:
		textExtractor, err = gcp.NewDocumentAIExtractor(ctx, config.DocumentAI)
		if err != nil {
			return nil, fmt.Errorf("failed to create document ai client: %w", err)
		}
	}

	orchestrator, err := chunking.NewOrchestrator(
		gcp.NewBlobStore(storageClient),
		chunking.NewPDFSplitter(),
		textExtractor,
		chunking.Options{PageLimit: config.PageLimit, KeyPrefix: config.ChunkPrefix},
	)
	if err != nil {
		return nil, err
	}

	slog.Info("Text extractor initialized.", "backend", config.Backend, "pageLimit", config.PageLimit)
	return &TextExtractorFunction{
		extractor: orchestrator,
		sink:      gcp.NewDealStore(firestoreClient, config.DealsCollection),
	}, nil
}

// Process extracts the text of a newly created deal's pitch deck and stores it on the deal.
func (f *TextExtractorFunction) Process(ctx context.Context, dealID string, event models.FirestoreEvent) error {
	logCtx := slog.With("dealId", dealID)

	gcsURI := event.Value.String("gcsPath")
	if gcsURI == "" {
		logCtx.Warn("No gcsPath found for deal. Aborting.")
		return nil
	}
	logCtx = logCtx.With("gcsUri", gcsURI)
	logCtx.Info("Processing deal document.")

	ref, err := chunking.ParseDocumentRef(gcsURI)
	if err != nil {
		return handleError(ctx, logCtx, f.sink, dealID, "invalid gcsPath", err, nil)
	}

	fullText, err := f.extractor.ExtractFullText(ctx, ref, dealID)
	if err != nil {
		// Deploy this trigger without retries; a retry would overwrite the recorded error.
		return handleError(ctx, logCtx, f.sink, dealID, "text extraction failed", err, map[string]any{
			"errorKind": string(chunking.Kind(err)),
		})
	}
	if strings.TrimSpace(fullText) == "" {
		return handleError(ctx, logCtx, f.sink, dealID, "text extraction failed", errNoText, nil)
	}

	if err := f.sink.SetStatus(ctx, dealID, models.StatusTextExtracted, map[string]any{"full_text": fullText}); err != nil {
		logCtx.Error("Failed to store extracted text", "error", err)
		return err
	}

	logCtx.Info("Successfully extracted text.", "chars", len(fullText))
	return nil
}
