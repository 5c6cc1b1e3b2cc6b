package models

import "time"

// Deal statuses written to Firestore as a deal moves through the pipeline.
const (
	StatusUploaded      = "uploaded"
	StatusQueued        = "queued"
	StatusTextExtracted = "text_extracted"
	StatusCompleted     = "completed"
	StatusError         = "error"
)

// Deal represents a pitch-deck analysis record in the deals collection.
type Deal struct {
	GCSPath      string    `firestore:"gcsPath,omitempty"`
	Status       string    `firestore:"status,omitempty"`
	FullText     string    `firestore:"full_text,omitempty"`
	ErrorMessage string    `firestore:"error_message,omitempty"`
	ErrorKind    string    `firestore:"errorKind,omitempty"`
	Analysis     *Analysis `firestore:"analysis,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,omitempty"`
}

// Analysis holds the generated outputs for a deal.
type Analysis struct {
	Risk       string `firestore:"risk"`
	Financials string `firestore:"financials"`
}
