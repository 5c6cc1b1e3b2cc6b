package models

// These structs define the JSON payloads of the HTTP endpoints.

// QueueAnalysisRequest is the input for the queue-analysis function.
type QueueAnalysisRequest struct {
	DealID string `json:"dealId"`
}

// QueueAnalysisResponse is the output of the queue-analysis function.
type QueueAnalysisResponse struct {
	DealID      string `json:"dealId"`
	Status      string `json:"status"`
	ExecutionID string `json:"executionId,omitempty"`
}

// HealthResponse is the output of the health check.
type HealthResponse struct {
	Status string `json:"status"`
}
