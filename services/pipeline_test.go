package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rag-visualizer-backend/models"
)

// fakeGateway is a deterministic ProviderGateway for orchestrator
// tests.
type fakeGateway struct {
	embedCalls    int
	generateCalls int
}

func (f *fakeGateway) Embed(ctx context.Context, text string) []float32 {
	f.embedCalls++
	return []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
}

func (f *fakeGateway) Search(ctx context.Context, vector []float32, topK int) []models.SearchMatch {
	return []models.SearchMatch{
		{ID: "1", Score: 0.9, Text: "first match text"},
		{ID: "2", Score: 0.8, Text: "second match text"},
	}
}

func (f *fakeGateway) Generate(ctx context.Context, question, contextText string) string {
	f.generateCalls++
	return "generated answer"
}

func newTestOrchestrator(gw ProviderGateway) *Orchestrator {
	return NewOrchestrator(gw, NewDocumentStore(), nil, 100, 3)
}

func TestRunQueryStageOrderAndPairs(t *testing.T) {
	orch := newTestOrchestrator(&fakeGateway{})

	var observed []models.StageResult
	result, err := orch.RunQuery(context.Background(), "what is binary search", RunOptions{
		Observer: func(sr models.StageResult) { observed = append(observed, sr) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(observed) != 2*len(models.QueryStages) {
		t.Fatalf("expected %d transitions, got %d", 2*len(models.QueryStages), len(observed))
	}
	for i, stage := range models.QueryStages {
		processing := observed[2*i]
		completed := observed[2*i+1]
		if processing.Stage != stage || processing.Status != models.StatusProcessing {
			t.Errorf("transition %d: got %s/%s, want %s/processing", 2*i, processing.Stage, processing.Status, stage)
		}
		if completed.Stage != stage || completed.Status != models.StatusCompleted {
			t.Errorf("transition %d: got %s/%s, want %s/completed", 2*i+1, completed.Stage, completed.Status, stage)
		}
	}

	if result.Response != "generated answer" {
		t.Errorf("unexpected response %q", result.Response)
	}
	if len(result.Vector) != 8 {
		t.Errorf("transport vector should be truncated to 8 dims, got %d", len(result.Vector))
	}
	if result.VectorDim != 10 {
		t.Errorf("full vector dimension should be reported, got %d", result.VectorDim)
	}
	if want := "first match text\n\n---\n\nsecond match text"; result.Context != want {
		t.Errorf("context join mismatch: %q", result.Context)
	}
}

func TestRunQueryValidation(t *testing.T) {
	gw := &fakeGateway{}
	orch := newTestOrchestrator(gw)
	ctx := context.Background()

	var validation *ValidationError

	if _, err := orch.RunQuery(ctx, "   ", RunOptions{}); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	} else if validation.Code != CodeInvalidInput {
		t.Errorf("empty question: got code %s", validation.Code)
	}

	if _, err := orch.RunQuery(ctx, strings.Repeat("a", MaxHTTPQuestionLen+1), RunOptions{}); !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	} else if validation.Code != CodeQuestionTooLong {
		t.Errorf("overlong question: got code %s", validation.Code)
	}

	// Validation failures must never reach the gateway.
	if gw.embedCalls != 0 || gw.generateCalls != 0 {
		t.Errorf("gateway called despite validation failure: %d embeds, %d generates", gw.embedCalls, gw.generateCalls)
	}
}

func TestRunIndexingUnknownDocument(t *testing.T) {
	orch := newTestOrchestrator(&fakeGateway{})

	var notFound *NotFoundError
	_, err := orch.RunIndexing(context.Background(), 999, RunOptions{})
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRunIndexingChunksAndStages(t *testing.T) {
	gw := &fakeGateway{}
	orch := newTestOrchestrator(gw)

	var observed []models.StageResult
	result, err := orch.RunIndexing(context.Background(), 2, RunOptions{
		Observer: func(sr models.StageResult) { observed = append(observed, sr) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(observed) != 2*len(models.IndexingStages) {
		t.Fatalf("expected %d transitions, got %d", 2*len(models.IndexingStages), len(observed))
	}
	for i, stage := range models.IndexingStages {
		if observed[2*i].Stage != stage {
			t.Errorf("stage %d: got %s, want %s", i, observed[2*i].Stage, stage)
		}
	}

	if len(result.Chunks) != 3 {
		t.Fatalf("document 2 has 3 pre-split chunks, got %d", len(result.Chunks))
	}
	for i, chunk := range result.Chunks {
		if want := "2-" + string(rune('0'+i)); chunk.ID != want {
			t.Errorf("chunk %d id: got %q, want %q", i, chunk.ID, want)
		}
		if len(chunk.Vector) == 0 {
			t.Errorf("chunk %d missing vector", i)
		}
	}
	if gw.embedCalls != 3 {
		t.Errorf("expected one embed per chunk, got %d", gw.embedCalls)
	}
}
