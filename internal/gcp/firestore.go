package gcp

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// DealStore persists deal status in a Firestore collection.
type DealStore struct {
	client     *firestore.Client
	collection string
}

func NewDealStore(client *firestore.Client, collection string) *DealStore {
	return &DealStore{client: client, collection: collection}
}

// SetStatus sets the deal's status together with any payload fields.
func (s *DealStore) SetStatus(ctx context.Context, dealID, status string, payload map[string]any) error {
	_, err := s.client.Collection(s.collection).Doc(dealID).Update(ctx, statusUpdates(status, payload))
	if err != nil {
		return fmt.Errorf("failed to update status of deal %s to %s: %w", dealID, status, err)
	}
	return nil
}

// statusUpdates builds the update list in a stable field order.
func statusUpdates(status string, payload map[string]any) []firestore.Update {
	updates := []firestore.Update{{Path: "status", Value: status}}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: payload[k]})
	}
	return updates
}

// DealExists reports whether the deal document exists.
func (s *DealStore) DealExists(ctx context.Context, dealID string) (bool, error) {
	_, err := s.client.Collection(s.collection).Doc(dealID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get deal %s: %w", dealID, err)
	}
	return true, nil
}
