package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rag-visualizer-backend/internal/ai"
	"rag-visualizer-backend/internal/config"
	"rag-visualizer-backend/services"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}

	docs := services.NewDocumentStore()
	gateway := ai.NewGateway(context.Background(), cfg, docs.All(), nil)
	orchestrator := services.NewOrchestrator(gateway, docs, nil, 100, 3)

	router := gin.New()
	SetupVisualizerRoutes(router, cfg, docs, orchestrator)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSampleDataEndpoint(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/api/sample-data", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}

	var body struct {
		Documents []struct {
			ID     int      `json:"id"`
			Chunks []string `json:"chunks"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Documents) != 3 {
		t.Fatalf("expected 3 sample documents, got %d", len(body.Documents))
	}
}

func TestQueryValidationErrors(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/query", `{"question": ""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty question: got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "INVALID_INPUT") {
		t.Errorf("empty question: expected code INVALID_INPUT, body %s", w.Body.String())
	}

	long := strings.Repeat("a", 1001)
	w = doJSON(t, router, http.MethodPost, "/api/query", `{"question": "`+long+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overlong question: got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "QUESTION_TOO_LONG") {
		t.Errorf("overlong question: expected code QUESTION_TOO_LONG, body %s", w.Body.String())
	}
}

func TestQueryMockFallbackAnswer(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/query", `{"question": "What is the time complexity of binary search?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Response      string    `json:"response"`
		QueryVector   []float64 `json:"queryVector"`
		SearchResults []struct {
			Score float64 `json:"score"`
		} `json:"searchResults"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if !strings.Contains(body.Response, "O(log n)") {
		t.Errorf("expected the canned binary search answer, got %q", body.Response)
	}
	if len(body.QueryVector) != 8 {
		t.Errorf("expected 8 transport vector dims, got %d", len(body.QueryVector))
	}
	if len(body.SearchResults) != 3 {
		t.Errorf("expected 3 matches, got %d", len(body.SearchResults))
	}
	for i := 1; i < len(body.SearchResults); i++ {
		if body.SearchResults[i-1].Score < body.SearchResults[i].Score {
			t.Errorf("match scores not descending at rank %d", i)
		}
	}
}

func TestProcessDocumentUnknownID(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/process-document", `{"documentId": 999}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown document: got status %d", w.Code)
	}
}

func TestProcessDocumentChunksAndSteps(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodPost, "/api/process-document", `{"documentId": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		DocumentID int `json:"documentId"`
		Chunks     []struct {
			ID     string    `json:"id"`
			Vector []float64 `json:"vector"`
		} `json:"chunks"`
		ProcessingSteps []struct {
			Step      string `json:"step"`
			Completed bool   `json:"completed"`
		} `json:"processingSteps"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body.DocumentID != 1 {
		t.Errorf("documentId: got %d", body.DocumentID)
	}
	if len(body.Chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(body.Chunks))
	}
	for i, chunk := range body.Chunks {
		if len(chunk.Vector) == 0 {
			t.Errorf("chunk %d missing mock vector", i)
		}
		if chunk.ID == "" {
			t.Errorf("chunk %d missing id", i)
		}
	}
	if len(body.ProcessingSteps) != 4 {
		t.Fatalf("expected 4 processing steps, got %d", len(body.ProcessingSteps))
	}
	for _, step := range body.ProcessingSteps {
		if !step.Completed {
			t.Errorf("step %s not completed", step.Step)
		}
	}
}
