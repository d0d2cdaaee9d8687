package models

// Document is one entry of the in-memory sample corpus. Documents are
// seeded at startup and read-only afterwards, so concurrent access
// needs no locking.
type Document struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Chunks  []string `json:"chunks"`
}

// Chunk is a derived view of a document fragment produced during
// indexing. The vector is filled lazily and never persisted.
type Chunk struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Vector  []float32 `json:"vector,omitempty"`
}

// SearchMatch is one ranked hit from the vector index (real or mock).
// Scores are provider-defined; higher means more relevant, but no
// fixed range is guaranteed across providers.
type SearchMatch struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}
