package services

import (
	"context"
	"sync"

	"github.com/Lllllllleong/pitchlens/internal/chunking"
	"github.com/Lllllllleong/pitchlens/internal/models"
)

type statusUpdate struct {
	DealID  string
	Status  string
	Payload map[string]any
}

// fakeDealStore records status updates in memory.
type fakeDealStore struct {
	mu        sync.Mutex
	updates   []statusUpdate
	existing  map[string]bool
	lookupErr error
	setErr    error
}

func (s *fakeDealStore) SetStatus(ctx context.Context, dealID, status string, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, statusUpdate{DealID: dealID, Status: status, Payload: payload})
	return s.setErr
}

func (s *fakeDealStore) DealExists(ctx context.Context, dealID string) (bool, error) {
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	return s.existing[dealID], nil
}

func (s *fakeDealStore) last() statusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.updates) == 0 {
		return statusUpdate{}
	}
	return s.updates[len(s.updates)-1]
}

type fakeFullTextExtractor struct {
	text     string
	err      error
	gotRef   chunking.DocumentRef
	gotDeal  string
	numCalls int
}

func (f *fakeFullTextExtractor) ExtractFullText(ctx context.Context, ref chunking.DocumentRef, parentID string) (string, error) {
	f.numCalls++
	f.gotRef = ref
	f.gotDeal = parentID
	return f.text, f.err
}

type fakeAnalyst struct {
	risk, financials       string
	riskErr, financialsErr error
	mu                     sync.Mutex
	inputs                 []string
}

func (a *fakeAnalyst) AssessRisk(ctx context.Context, fullText string) (string, error) {
	a.record(fullText)
	return a.risk, a.riskErr
}

func (a *fakeAnalyst) SummarizeFinancials(ctx context.Context, fullText string) (string, error) {
	a.record(fullText)
	return a.financials, a.financialsErr
}

func (a *fakeAnalyst) record(s string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputs = append(a.inputs, s)
}

type fakeWorkflow struct {
	args []map[string]any
	err  error
}

func (w *fakeWorkflow) Start(ctx context.Context, argument map[string]any) (string, error) {
	w.args = append(w.args, argument)
	if w.err != nil {
		return "", w.err
	}
	return "executions/exec-1", nil
}

func str(s string) *string { return &s }

func event(after, before map[string]string) models.FirestoreEvent {
	toDoc := func(fields map[string]string) models.FirestoreDocument {
		doc := models.FirestoreDocument{Fields: map[string]models.FirestoreValue{}}
		for k, v := range fields {
			doc.Fields[k] = models.FirestoreValue{StringValue: str(v)}
		}
		return doc
	}
	return models.FirestoreEvent{Value: toDoc(after), OldValue: toDoc(before)}
}
