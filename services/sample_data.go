package services

import "rag-visualizer-backend/models"

// DocumentStore holds the demo corpus. It is seeded once at startup
// and read-only afterwards, so it is safe for concurrent use without
// locking.
type DocumentStore struct {
	docs []models.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: sampleDocuments()}
}

// All returns the full corpus in seed order.
func (s *DocumentStore) All() []models.Document {
	return s.docs
}

// FindByID returns the document with the given id, if present.
func (s *DocumentStore) FindByID(id int) (models.Document, bool) {
	for _, doc := range s.docs {
		if doc.ID == id {
			return doc, true
		}
	}
	return models.Document{}, false
}

func sampleDocuments() []models.Document {
	return []models.Document{
		{
			ID:      1,
			Title:   "Arrays and Time Complexity",
			Content: "Arrays are fundamental data structures that store elements in contiguous memory locations. They provide O(1) access time for elements when the index is known. However, insertion and deletion operations can be O(n) in the worst case.",
			Chunks: []string{
				"Arrays are fundamental data structures that store elements in contiguous memory locations.",
				"They provide O(1) access time for elements when the index is known.",
				"However, insertion and deletion operations can be O(n) in the worst case.",
			},
		},
		{
			ID:      2,
			Title:   "Binary Search Algorithm",
			Content: "Binary search is an efficient algorithm for finding an item from a sorted list of items. It works by repeatedly dividing the search interval in half. Time complexity: O(log n). The algorithm compares the target value to the middle element of the array.",
			Chunks: []string{
				"Binary search is an efficient algorithm for finding an item from a sorted list of items.",
				"It works by repeatedly dividing the search interval in half. Time complexity: O(log n).",
				"The algorithm compares the target value to the middle element of the array.",
			},
		},
		{
			ID:      3,
			Title:   "Hash Tables and Hash Functions",
			Content: "Hash tables use hash functions to compute an index into an array of buckets or slots. They provide average O(1) time complexity for insertions, deletions, and lookups. Collision handling is important for maintaining performance.",
			Chunks: []string{
				"Hash tables use hash functions to compute an index into an array of buckets or slots.",
				"They provide average O(1) time complexity for insertions, deletions, and lookups.",
				"Collision handling is important for maintaining performance.",
			},
		},
	}
}
