package models

import "time"

// Stage names for the two demo pipelines.
const (
	StageLoading    = "loading"
	StageChunking   = "chunking"
	StageEmbedding  = "embedding"
	StageSearch     = "search"
	StageRetrieval  = "retrieval"
	StageGeneration = "generation"
	StageStorage    = "storage"
)

// Stage lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// IndexingStages and QueryStages fix the order stages execute in.
var (
	IndexingStages = []string{StageLoading, StageChunking, StageEmbedding, StageStorage}
	QueryStages    = []string{StageEmbedding, StageSearch, StageRetrieval, StageGeneration}
)

// StageResult records one lifecycle transition of a pipeline stage.
type StageResult struct {
	Stage      string    `json:"step"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	Icon       string    `json:"icon,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// PipelineResult is the aggregate output of one orchestrator run. It
// is owned by the caller for the duration of the invocation; nothing
// is shared across runs.
type PipelineResult struct {
	Question   string        `json:"question,omitempty"`
	DocumentID int           `json:"document_id,omitempty"`
	Title      string        `json:"title,omitempty"`
	Vector     []float32     `json:"vector,omitempty"`
	VectorDim  int           `json:"vector_dimensions,omitempty"`
	Chunks     []Chunk       `json:"chunks,omitempty"`
	Matches    []SearchMatch `json:"matches,omitempty"`
	Context    string        `json:"context,omitempty"`
	Response   string        `json:"response,omitempty"`
	Stages     []StageResult `json:"steps"`
	ElapsedMs  int64         `json:"elapsed_ms"`
}
