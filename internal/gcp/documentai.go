package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/Lllllllleong/pitchlens/internal/chunking"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// DocumentAIConfig identifies the OCR processor and its call budget.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
	// RatePerMinute caps ProcessDocument calls per instance; zero disables throttling.
	RatePerMinute int
}

// DocumentAIExtractor implements chunking.TextExtractor with a Document AI OCR processor.
type DocumentAIExtractor struct {
	client        *documentai.DocumentProcessorClient
	processorName string
	limiter       *rate.Limiter
}

// NewDocumentAIExtractor connects to the regional Document AI endpoint.
func NewDocumentAIExtractor(ctx context.Context, cfg DocumentAIConfig) (*DocumentAIExtractor, error) {
	if cfg.ProjectID == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("NewDocumentAIExtractor: project, location and processor id cannot be empty")
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("documentai.NewDocumentProcessorClient: %w", err)
	}

	return &DocumentAIExtractor{
		client:        client,
		processorName: processorName(cfg),
		limiter:       newLimiter(cfg.RatePerMinute),
	}, nil
}

func processorName(cfg DocumentAIConfig) string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", cfg.ProjectID, cfg.Location, cfg.ProcessorID)
}

// newLimiter spaces calls evenly across a minute, allowing no bursts.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
}

// Extract runs OCR synchronously over a PDF stored in Cloud Storage.
func (e *DocumentAIExtractor) Extract(ctx context.Context, ref chunking.DocumentRef) (string, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for extraction quota: %w", err)
		}
	}

	slog.Info("Starting Document AI processing.", "gcsUri", ref.URI(), "processor", e.processorName)
	req := &documentaipb.ProcessRequest{
		Name: e.processorName,
		Source: &documentaipb.ProcessRequest_GcsDocument{
			GcsDocument: &documentaipb.GcsDocument{
				GcsUri:   ref.URI(),
				MimeType: "application/pdf",
			},
		},
		SkipHumanReview: true,
	}
	resp, err := e.client.ProcessDocument(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to process document: %w", err)
	}
	return resp.GetDocument().GetText(), nil
}

func (e *DocumentAIExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
