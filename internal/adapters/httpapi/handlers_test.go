package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mikey/email-triage/internal/adapters/store"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, *store.MemoryStore, *core.TriageService) {
	t.Helper()

	logger := zap.NewNop()
	repo := store.NewMemoryStore(logger)
	kb := core.DefaultKnowledgeBase()
	analyzer := core.NewEmailAnalyzer(kb, logger)
	responder := core.NewResponseGenerator(nil, kb, logger)
	service := core.NewTriageService(analyzer, responder, repo, nil, nil, logger)

	return NewServer("127.0.0.1:0", service, repo, logger), repo, service
}

func ingestTestEmail(t *testing.T, service *core.TriageService) *core.EmailRecord {
	t.Helper()

	rec, created, err := service.Ingest(context.Background(), &core.Email{
		SenderEmail: "customer@example.com",
		Subject:     "Cannot login to my account",
		Body:        "I need to reset my password.",
		ReceivedAt:  time.Now().UTC(),
	})
	if err != nil || !created {
		t.Fatalf("Ingest() = created %v, err %v", created, err)
	}
	return rec
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)

	rr := doRequest(s, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rr.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", resp["status"])
	}
}

func TestListEmails(t *testing.T) {
	s, _, service := newTestServer(t)
	ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodGet, "/api/emails/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/emails/ = %d, want 200", rr.Code)
	}

	var records []core.EmailRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(records) != 1 || records[0].SenderEmail != "customer@example.com" {
		t.Errorf("listed %+v, want the ingested record", records)
	}
}

func TestListEmailsRejectsBadFilter(t *testing.T) {
	s, _, _ := newTestServer(t)

	rr := doRequest(s, http.MethodGet, "/api/emails/?processed_filter=maybe", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("GET with bad processed_filter = %d, want 400", rr.Code)
	}
}

func TestGetEmail(t *testing.T) {
	s, _, service := newTestServer(t)
	rec := ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodGet, "/api/emails/1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/emails/1 = %d, want 200", rr.Code)
	}

	var got core.EmailRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("got record %d, want %d", got.ID, rec.ID)
	}

	if rr := doRequest(s, http.MethodGet, "/api/emails/999", ""); rr.Code != http.StatusNotFound {
		t.Errorf("GET unknown email = %d, want 404", rr.Code)
	}
	if rr := doRequest(s, http.MethodGet, "/api/emails/abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("GET bad ID = %d, want 400", rr.Code)
	}
}

func TestGenerateResponseEndpoint(t *testing.T) {
	s, repo, service := newTestServer(t)
	rec := ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodPost, "/api/emails/1/generate-response", `{"custom_context":"VIP customer"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("POST generate-response = %d, want 200", rr.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	draft, _ := resp["draft_response"].(string)
	if !strings.Contains(draft, "Customer Support Team") {
		t.Errorf("draft_response = %q, want template reply", draft)
	}

	stored, err := repo.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.DraftResponse == "" {
		t.Error("draft was not persisted")
	}
}

func TestSendResponseEndpointWithoutSender(t *testing.T) {
	s, _, service := newTestServer(t)
	ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodPost, "/api/emails/1/send-response", `{"custom_response":"manual reply"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("send-response without outbound mail = %d, want 500", rr.Code)
	}
}

func TestMarkProcessedEndpoint(t *testing.T) {
	s, repo, service := newTestServer(t)
	rec := ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodPost, "/api/emails/1/mark-processed", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("POST mark-processed = %d, want 200", rr.Code)
	}

	stored, _ := repo.Get(context.Background(), rec.ID)
	if !stored.Processed {
		t.Error("record not marked processed")
	}
}

func TestUpdateAndDeleteEmail(t *testing.T) {
	s, repo, service := newTestServer(t)
	rec := ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodPut, "/api/emails/1", `{"processed":true,"draft_response":"edited"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT /api/emails/1 = %d, want 200", rr.Code)
	}

	stored, _ := repo.Get(context.Background(), rec.ID)
	if !stored.Processed || stored.DraftResponse != "edited" {
		t.Errorf("update not applied: %+v", stored)
	}

	if rr := doRequest(s, http.MethodDelete, "/api/emails/1", ""); rr.Code != http.StatusOK {
		t.Fatalf("DELETE /api/emails/1 = %d, want 200", rr.Code)
	}
	if rr := doRequest(s, http.MethodGet, "/api/emails/1", ""); rr.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rr.Code)
	}
}

func TestDashboardStatsEndpoint(t *testing.T) {
	s, _, service := newTestServer(t)
	ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodGet, "/api/dashboard/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/dashboard/stats = %d, want 200", rr.Code)
	}

	var stats core.DashboardStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if stats.TotalEmails != 1 {
		t.Errorf("TotalEmails = %d, want 1", stats.TotalEmails)
	}
	if len(stats.Hourly) != 24 {
		t.Errorf("Hourly has %d buckets, want 24", len(stats.Hourly))
	}
}

func TestRecentEmailsEndpoint(t *testing.T) {
	s, _, service := newTestServer(t)
	ingestTestEmail(t, service)

	rr := doRequest(s, http.MethodGet, "/api/dashboard/recent-emails?limit=5", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /api/dashboard/recent-emails = %d, want 200", rr.Code)
	}

	var previews []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &previews); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(previews) != 1 {
		t.Fatalf("got %d previews, want 1", len(previews))
	}
	if previews[0]["sender_email"] != "customer@example.com" {
		t.Errorf("preview = %+v, want the ingested record", previews[0])
	}
}
