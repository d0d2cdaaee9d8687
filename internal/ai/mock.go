package ai

import (
	"math/rand"
	"strings"

	"rag-visualizer-backend/models"
)

// MockVectorDim is the dimension of fallback vectors. Real provider
// vectors are larger; callers must not assume the two match.
const MockVectorDim = 8

// GenericAnswer is returned when no canned answer keyword matches.
const GenericAnswer = "Based on the provided context about data structures and algorithms, I can help answer questions about arrays, search algorithms, hash tables, and time complexity analysis."

// cannedAnswer pairs a lowercase keyword with its fixed answer. The
// table is an ordered slice, not a map: the first matching keyword
// wins, so entry order is part of the contract.
type cannedAnswer struct {
	keyword string
	answer  string
}

var cannedAnswers = []cannedAnswer{
	{"binary search", "Binary search has O(log n) time complexity. It works by repeatedly dividing the search interval in half."},
	{"hash table", "Hash tables provide O(1) average time complexity for insertions, deletions, and lookups using hash functions."},
	{"array", "Arrays provide O(1) access time when the index is known, but insertions and deletions can be O(n)."},
	{"time complexity", "Time complexity describes how the runtime of an algorithm grows with input size."},
}

// MockDataProvider generates fallback vectors, search matches and
// answers when a real provider is unavailable. It has no dependencies
// and never fails.
type MockDataProvider struct{}

func NewMockDataProvider() *MockDataProvider {
	return &MockDataProvider{}
}

// Vector returns a pseudo-random vector with components in [-1, 1).
// The result is never empty; a non-positive dim falls back to the
// default dimension.
func (m *MockDataProvider) Vector(dim int) []float32 {
	if dim <= 0 {
		dim = MockVectorDim
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32((rand.Float64() - 0.5) * 2)
	}
	return vec
}

// Answer returns the canned answer whose keyword appears first (in
// table order) in the lowercased question, else the generic fallback.
// Deterministic: the same question always yields the same answer.
func (m *MockDataProvider) Answer(question string) string {
	q := strings.ToLower(question)
	for _, entry := range cannedAnswers {
		if strings.Contains(q, entry.keyword) {
			return entry.answer
		}
	}
	return GenericAnswer
}

// Matches ranks the first topK documents with synthetic descending
// scores starting at 0.9 and dropping 0.1 per rank. Scores may go
// negative for large topK; they are illustrative only.
func (m *MockDataProvider) Matches(docs []models.Document, topK int) []models.SearchMatch {
	if topK > len(docs) {
		topK = len(docs)
	}
	matches := make([]models.SearchMatch, 0, topK)
	for i := 0; i < topK; i++ {
		matches = append(matches, models.SearchMatch{
			ID:    intToID(docs[i].ID),
			Score: float32(0.9 - float64(i)*0.1),
			Text:  docs[i].Content,
		})
	}
	return matches
}
