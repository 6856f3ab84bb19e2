package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/aqlanhadi/solarpayback/extractor"
	"github.com/aqlanhadi/solarpayback/ledger"
	"github.com/aqlanhadi/solarpayback/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := ledger.NewStore(filepath.Join(t.TempDir(), "ahorro.xlsx"), ledger.DefaultSheet)
	return New(DefaultConfig(), store, session.New(decimal.NewFromInt(1000)))
}

func do(s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func submit(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	return do(s, http.MethodPost, "/periods", strings.NewReader(body))
}

func TestNew(t *testing.T) {
	server := newTestServer(t)

	if server == nil {
		t.Fatal("Expected server to be created")
	}
	if server.mux == nil {
		t.Fatal("Expected mux to be initialized")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected port ':8080', got '%s'", cfg.Port)
	}
	if cfg.MaxUploadMemory != 32<<20 {
		t.Errorf("Expected 32MB upload memory, got %d", cfg.MaxUploadMemory)
	}
}

func TestHealthEndpoint(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/health", nil)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response["status"])
	}
}

func TestExtractEndpoint_MethodNotAllowed(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/extract", nil)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestExtractEndpoint_NoFile(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	req.Header.Set("Content-Type", "multipart/form-data")
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestExtractEndpoint_InvalidFile(t *testing.T) {
	server := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "recibo.pdf")
	part.Write([]byte("not a valid pdf"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", w.Code)
	}
	if server.state.PendingPrefill != nil {
		t.Error("Expected no pending prefill after a failed upload")
	}
}

func TestParseExtractOptions(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/extract?text_only=true", nil)

	if !parseExtractOptions(req).TextOnly {
		t.Error("Expected TextOnly to be true")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("text_only", "false")
	writer.Close()
	req = httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ParseMultipartForm(32 << 20)

	if parseExtractOptions(req).TextOnly {
		t.Error("Expected TextOnly to be false")
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		input    []string
		expected string
	}{
		{[]string{"", "", "third"}, "third"},
		{[]string{"first", "second"}, "first"},
		{[]string{"", ""}, ""},
		{[]string{}, ""},
		{[]string{"only"}, "only"},
	}

	for _, tt := range tests {
		result := coalesce(tt.input...)
		if result != tt.expected {
			t.Errorf("coalesce(%v) = '%s', expected '%s'", tt.input, result, tt.expected)
		}
	}
}

func TestPrefill_NotFound(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/prefill", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestPeriods_SubmitListDelete(t *testing.T) {
	server := newTestServer(t)
	server.state.Stage(extractor.Prefill{PeriodLabel: "Enero"})

	w := submit(t, server, `{"period":"Enero","basic_solar":100,"basic_price":"1","returned_kwh":"120"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if server.state.PendingPrefill != nil {
		t.Error("Expected pending prefill to be cleared after submission")
	}

	w = submit(t, server, `{"period":"Febrero","returned_kwh":"50","basic_price":"1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var created ledger.Period
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.Number != 2 {
		t.Errorf("Expected period number 2, got %d", created.Number)
	}

	w = do(server, http.MethodGet, "/periods", nil)
	var listed periodsResponse
	if err := json.NewDecoder(w.Body).Decode(&listed); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(listed.Periods) != 2 {
		t.Fatalf("Expected 2 periods, got %d", len(listed.Periods))
	}
	if !listed.Periods[0].TotalSavings.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Expected savings 120, got %s", listed.Periods[0].TotalSavings)
	}

	w = do(server, http.MethodDelete, "/periods/last", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	w = do(server, http.MethodDelete, "/periods/last", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	w = do(server, http.MethodDelete, "/periods/last", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409 on empty ledger, got %d", w.Code)
	}
}

func TestPeriods_RejectsBadNumbersWithoutWriting(t *testing.T) {
	server := newTestServer(t)

	w := submit(t, server, `{"period":"Enero","basic_solar":"mucho"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	w = do(server, http.MethodGet, "/periods", nil)
	var listed periodsResponse
	json.NewDecoder(w.Body).Decode(&listed)
	if len(listed.Periods) != 0 {
		t.Errorf("Expected no periods, got %d", len(listed.Periods))
	}
}

func TestSummary_Filtered(t *testing.T) {
	server := newTestServer(t)
	submit(t, server, `{"period":"Enero","basic_price":"1","returned_kwh":"100"}`)
	submit(t, server, `{"period":"Febrero","basic_price":"1","returned_kwh":"300"}`)

	w := do(server, http.MethodGet, "/summary?period=Febrero", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var summary ledger.Summary
	if err := json.NewDecoder(w.Body).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if summary.Periods != 1 {
		t.Errorf("Expected 1 period, got %d", summary.Periods)
	}
	if !summary.Cumulative.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected cumulative 150, got %s", summary.Cumulative)
	}
}

func TestDashboard_Empty(t *testing.T) {
	w := do(newTestServer(t), http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := response["best_period"]; ok {
		t.Error("Expected no best period for an empty ledger")
	}
}

func TestReport(t *testing.T) {
	server := newTestServer(t)
	submit(t, server, `{"period":"Enero","basic_price":"1","returned_kwh":"100"}`)

	w := do(server, http.MethodGet, "/report", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("Expected Content-Type 'application/pdf', got '%s'", w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected a PDF document")
	}
}

func TestGoal(t *testing.T) {
	server := newTestServer(t)

	w := do(server, http.MethodPut, "/goal", strings.NewReader(`{"goal":"250,000"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !server.state.GoalAmount.Equal(decimal.NewFromInt(250000)) {
		t.Errorf("Expected goal 250000, got %s", server.state.GoalAmount)
	}

	w = do(server, http.MethodPut, "/goal", strings.NewReader(`{"goal":-5}`))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	w = do(server, http.MethodGet, "/goal", nil)
	var response map[string]decimal.Decimal
	json.NewDecoder(w.Body).Decode(&response)
	if !response["goal"].Equal(decimal.NewFromInt(250000)) {
		t.Errorf("Expected goal 250000, got %s", response["goal"])
	}
}

func TestMetrics(t *testing.T) {
	server := newTestServer(t)
	do(server, http.MethodGet, "/health", nil)

	w := do(server, http.MethodGet, "/metrics", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `solarpayback_http_requests_total{code="200",route="/health"} 1`) {
		t.Error("Expected request counter for /health")
	}
}

func TestHandler(t *testing.T) {
	server := newTestServer(t)

	if server.Handler() != server.mux {
		t.Error("Expected handler to be the server's mux")
	}
}
