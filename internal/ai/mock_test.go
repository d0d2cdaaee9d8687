package ai

import (
	"strings"
	"testing"

	"rag-visualizer-backend/models"
)

func TestMockVectorDimensionAndRange(t *testing.T) {
	mock := NewMockDataProvider()

	vec := mock.Vector(MockVectorDim)
	if len(vec) != MockVectorDim {
		t.Fatalf("expected %d components, got %d", MockVectorDim, len(vec))
	}
	for i, v := range vec {
		if v < -1 || v >= 1 {
			t.Errorf("component %d out of [-1, 1): %f", i, v)
		}
	}

	if got := mock.Vector(0); len(got) != MockVectorDim {
		t.Errorf("non-positive dim should fall back to default, got %d components", len(got))
	}
}

func TestMockAnswerDeterministicKeywordMatch(t *testing.T) {
	mock := NewMockDataProvider()

	// "binary search" precedes "time complexity" in the table, so a
	// question containing both always gets the binary search answer.
	question := "What is the time complexity of binary search?"
	first := mock.Answer(question)
	if !strings.Contains(first, "O(log n)") {
		t.Errorf("expected the binary search answer, got %q", first)
	}
	for i := 0; i < 10; i++ {
		if got := mock.Answer(question); got != first {
			t.Fatalf("answer not deterministic: %q vs %q", got, first)
		}
	}

	if got := mock.Answer("Tell me about quicksort"); got != GenericAnswer {
		t.Errorf("unmatched question should get the generic answer, got %q", got)
	}
}

func TestMockMatchesSyntheticScores(t *testing.T) {
	mock := NewMockDataProvider()
	docs := []models.Document{
		{ID: 1, Content: "first"},
		{ID: 2, Content: "second"},
		{ID: 3, Content: "third"},
	}

	matches := mock.Matches(docs, 5)
	if len(matches) != 3 {
		t.Fatalf("topK beyond corpus should clamp, got %d matches", len(matches))
	}
	for i, m := range matches {
		want := float32(0.9 - float64(i)*0.1)
		if m.Score != want {
			t.Errorf("match %d score: got %f, want %f", i, m.Score, want)
		}
		if i > 0 && matches[i-1].Score < m.Score {
			t.Errorf("scores not descending at rank %d", i)
		}
	}
}
