package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lllllllleong/pitchlens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postQueue(t *testing.T, f *QueueFunction, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/queueAnalysis", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)
	return rec
}

func TestQueueMarksDealQueued(t *testing.T) {
	deals := &fakeDealStore{existing: map[string]bool{"deal-1": true}}
	f := &QueueFunction{deals: deals}

	rec := postQueue(t, f, `{"dealId": "deal-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.QueueAnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, models.QueueAnalysisResponse{DealID: "deal-1", Status: models.StatusQueued}, res)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, models.StatusQueued, deals.last().Status)
}

func TestQueueStartsWorkflowWhenConfigured(t *testing.T) {
	deals := &fakeDealStore{existing: map[string]bool{"deal-1": true}}
	workflow := &fakeWorkflow{}
	f := &QueueFunction{deals: deals, workflow: workflow}

	rec := postQueue(t, f, `{"dealId": "deal-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []map[string]any{{"dealId": "deal-1"}}, workflow.args)
	assert.Contains(t, rec.Body.String(), `"executionId":"executions/exec-1"`)
}

func TestQueueWorkflowFailureMarksDealErrored(t *testing.T) {
	deals := &fakeDealStore{existing: map[string]bool{"deal-1": true}}
	f := &QueueFunction{deals: deals, workflow: &fakeWorkflow{err: errors.New("permission denied")}}

	rec := postQueue(t, f, `{"dealId": "deal-1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, models.StatusError, deals.last().Status)
}

func TestQueueRequestErrors(t *testing.T) {
	tests := []struct {
		name     string
		deals    *fakeDealStore
		body     string
		wantCode int
	}{
		{name: "malformed json", deals: &fakeDealStore{}, body: `{"dealId":`, wantCode: http.StatusBadRequest},
		{name: "missing deal id", deals: &fakeDealStore{}, body: `{}`, wantCode: http.StatusBadRequest},
		{name: "unknown deal", deals: &fakeDealStore{existing: map[string]bool{}}, body: `{"dealId": "nope"}`, wantCode: http.StatusNotFound},
		{name: "lookup failure", deals: &fakeDealStore{lookupErr: errors.New("unavailable")}, body: `{"dealId": "deal-1"}`, wantCode: http.StatusInternalServerError},
		{name: "update failure", deals: &fakeDealStore{existing: map[string]bool{"deal-1": true}, setErr: errors.New("unavailable")}, body: `{"dealId": "deal-1"}`, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postQueue(t, &QueueFunction{deals: tt.deals}, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestQueueRejectsGet(t *testing.T) {
	f := &QueueFunction{deals: &fakeDealStore{}}
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/queueAnalysis", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
