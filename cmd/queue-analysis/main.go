package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/Lllllllleong/pitchlens/internal/gcp"
	"github.com/Lllllllleong/pitchlens/internal/services"
)

var (
	queueInstance *services.QueueFunction
	once          sync.Once
	initErr       error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("QueueAnalysis", handleQueueAnalysis)
}

func main() {
	port := gcp.GetEnv("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		slog.Error("Functions framework exited", "error", err)
		os.Exit(1)
	}
}

// handleQueueAnalysis is the HTTP handler for the queue service.
func handleQueueAnalysis(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		queueInstance, initErr = services.NewQueue(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Queue initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	queueInstance.ServeHTTP(w, r)
}
