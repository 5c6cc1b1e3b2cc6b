package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/Lllllllleong/pitchlens/internal/gcp"
	"github.com/Lllllllleong/pitchlens/internal/models"
	"github.com/Lllllllleong/pitchlens/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	analyzerInstance *services.AnalyzerFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Fired by Firestore on every update in the deals collection.
	functions.CloudEvent("GenerateAnalysis", generateAnalysis)
}

func main() {
	port := gcp.GetEnv("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		slog.Error("Functions framework exited", "error", err)
		os.Exit(1)
	}
}

func generateAnalysis(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		analyzerInstance, initErr = services.NewAnalyzer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	dealID, err := services.DealIDFromSubject(e.Subject())
	if err != nil {
		slog.Error("Event has no deal id", "error", err, "eventId", e.ID())
		return err
	}

	var event models.FirestoreEvent
	if err := json.Unmarshal(e.Data(), &event); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "dealId", dealID)
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return analyzerInstance.Process(ctx, dealID, event)
}
