package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rag-visualizer-backend/internal/logger"
	"rag-visualizer-backend/internal/telemetry"
	"rag-visualizer-backend/models"
)

// MaxHTTPQuestionLen bounds questions on the synchronous HTTP path.
// The live channel enforces its own, stricter bound; the two limits
// are intentionally distinct.
const MaxHTTPQuestionLen = 1000

const contextSeparator = "\n\n---\n\n"

// transportVectorDim is how many vector components leave the process;
// full provider vectors are too wide to ship to a visualization.
const transportVectorDim = 8

// ProviderGateway is the narrow capability surface the orchestrator
// needs. All three operations are total: they degrade internally and
// never fail.
type ProviderGateway interface {
	Embed(ctx context.Context, text string) []float32
	Search(ctx context.Context, vector []float32, topK int) []models.SearchMatch
	Generate(ctx context.Context, question, contextText string) string
}

// StageObserver receives stage lifecycle transitions as they happen.
// The HTTP path collects them into the response; the live channel
// forwards each one to the client immediately.
type StageObserver func(models.StageResult)

// RunOptions tunes a single orchestrator run. The zero value is what
// the HTTP path uses: no observer, no pacing.
type RunOptions struct {
	Observer StageObserver
	// StageDelay paces each stage for UI feedback on the live path.
	StageDelay time.Duration
}

type stageInfo struct {
	name    string
	message string
	icon    string
}

var indexingStageInfos = []stageInfo{
	{models.StageLoading, "Loading PDF document...", "file-pdf"},
	{models.StageChunking, "Splitting text into chunks...", "cut"},
	{models.StageEmbedding, "Generating vector embeddings...", "vector-square"},
	{models.StageStorage, "Storing vectors in database...", "database"},
}

var queryStageInfos = []stageInfo{
	{models.StageEmbedding, "Converting query to vector...", "vector-square"},
	{models.StageSearch, "Searching similar vectors...", "search"},
	{models.StageRetrieval, "Retrieving relevant context...", "download"},
	{models.StageGeneration, "Generating AI response...", "brain"},
}

// Orchestrator sequences the indexing and query pipelines. Stages run
// strictly in order; each run owns its own result and shares no state
// with other runs.
type Orchestrator struct {
	gateway      ProviderGateway
	docs         *DocumentStore
	metrics      *telemetry.Metrics
	maxChunkSize int
	topK         int
}

func NewOrchestrator(gateway ProviderGateway, docs *DocumentStore, metrics *telemetry.Metrics, maxChunkSize, topK int) *Orchestrator {
	if maxChunkSize <= 0 {
		maxChunkSize = 100
	}
	if topK <= 0 {
		topK = 3
	}
	return &Orchestrator{
		gateway:      gateway,
		docs:         docs,
		metrics:      metrics,
		maxChunkSize: maxChunkSize,
		topK:         topK,
	}
}

// RunQuery executes embedding → search → retrieval → generation for
// one question. Validation happens before any stage runs and is a
// distinct failure class from stage failures; recoverable stage
// failures substitute safe defaults and the run continues.
func (o *Orchestrator) RunQuery(ctx context.Context, question string, opts RunOptions) (*models.PipelineResult, error) {
	if err := ValidateQuestion(question, MaxHTTPQuestionLen); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &models.PipelineResult{Question: question}

	var vector []float32
	o.runStage(ctx, "query", queryStageInfos[0], opts, result, func() error {
		vector = o.gateway.Embed(ctx, question)
		return nil
	})
	if len(vector) == 0 {
		vector = make([]float32, transportVectorDim)
	}
	result.Vector = truncateVector(vector, transportVectorDim)
	result.VectorDim = len(vector)

	var matches []models.SearchMatch
	o.runStage(ctx, "query", queryStageInfos[1], opts, result, func() error {
		matches = o.gateway.Search(ctx, vector, o.topK)
		return nil
	})
	result.Matches = matches

	var contextText string
	o.runStage(ctx, "query", queryStageInfos[2], opts, result, func() error {
		texts := make([]string, 0, len(matches))
		for _, m := range matches {
			texts = append(texts, m.Text)
		}
		contextText = strings.Join(texts, contextSeparator)
		return nil
	})
	result.Context = contextText

	o.runStage(ctx, "query", queryStageInfos[3], opts, result, func() error {
		result.Response = o.gateway.Generate(ctx, question, contextText)
		return nil
	})

	result.ElapsedMs = time.Since(start).Milliseconds()
	o.metrics.RecordRun(ctx, "query", "completed")
	return result, nil
}

// RunIndexing executes loading → chunking → embedding → storage for
// one document. An unknown document id aborts before any stage runs.
func (o *Orchestrator) RunIndexing(ctx context.Context, documentID int, opts RunOptions) (*models.PipelineResult, error) {
	doc, ok := o.docs.FindByID(documentID)
	if !ok {
		o.metrics.RecordRun(ctx, "indexing", "not_found")
		return nil, &NotFoundError{DocumentID: documentID}
	}

	start := time.Now()
	result := &models.PipelineResult{DocumentID: doc.ID, Title: doc.Title}

	o.runStage(ctx, "indexing", indexingStageInfos[0], opts, result, func() error {
		// The corpus is in memory; loading is instantaneous.
		return nil
	})

	var chunks []models.Chunk
	o.runStage(ctx, "indexing", indexingStageInfos[1], opts, result, func() error {
		texts := doc.Chunks
		if len(texts) == 0 {
			texts = ChunkText(doc.Content, o.maxChunkSize)
		}
		chunks = make([]models.Chunk, 0, len(texts))
		for i, text := range texts {
			chunks = append(chunks, models.Chunk{
				ID:      fmt.Sprintf("%d-%d", doc.ID, i),
				Content: text,
			})
		}
		return nil
	})

	o.runStage(ctx, "indexing", indexingStageInfos[2], opts, result, func() error {
		for i := range chunks {
			vec := o.gateway.Embed(ctx, chunks[i].Content)
			chunks[i].Vector = truncateVector(vec, transportVectorDim)
		}
		return nil
	})
	result.Chunks = chunks

	o.runStage(ctx, "indexing", indexingStageInfos[3], opts, result, func() error {
		// Vectors live only for the duration of the demo; storage is
		// presented to the client but intentionally not durable.
		return nil
	})

	result.ElapsedMs = time.Since(start).Milliseconds()
	o.metrics.RecordRun(ctx, "indexing", "completed")
	return result, nil
}

// runStage emits the processing transition, performs the work, then
// emits completed (or failed, if the work errored or panicked). A
// failed stage leaves its output at the caller's safe default and the
// pipeline continues.
func (o *Orchestrator) runStage(ctx context.Context, pipeline string, info stageInfo, opts RunOptions, result *models.PipelineResult, work func() error) {
	o.emit(opts, result, models.StageResult{
		Stage:     info.name,
		Status:    models.StatusProcessing,
		Message:   info.message,
		Icon:      info.icon,
		Timestamp: time.Now(),
	})

	start := time.Now()
	err := runSafely(work)
	if opts.StageDelay > 0 {
		sleepCtx(ctx, opts.StageDelay)
	}
	elapsed := time.Since(start)

	status := models.StatusCompleted
	if err != nil {
		status = models.StatusFailed
		logger.Warn("Pipeline stage failed", "pipeline", pipeline, "stage", info.name, "error", err.Error())
	}

	o.emit(opts, result, models.StageResult{
		Stage:      info.name,
		Status:     status,
		Message:    info.message,
		Icon:       info.icon,
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now(),
	})
	o.metrics.RecordStage(ctx, pipeline, info.name, elapsed.Seconds())
}

func (o *Orchestrator) emit(opts RunOptions, result *models.PipelineResult, sr models.StageResult) {
	result.Stages = append(result.Stages, sr)
	if opts.Observer != nil {
		opts.Observer(sr)
	}
}

// ValidateQuestion applies the pre-stage input checks shared by both
// transports; maxLen differs between them.
func ValidateQuestion(question string, maxLen int) error {
	if strings.TrimSpace(question) == "" {
		return &ValidationError{Code: CodeInvalidInput, Message: "Question is required and must be a non-empty string"}
	}
	if len(question) > maxLen {
		return &ValidationError{Code: CodeQuestionTooLong, Message: fmt.Sprintf("Question too long. Maximum %d characters allowed.", maxLen)}
	}
	return nil
}

func runSafely(work func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()
	return work()
}

func truncateVector(vec []float32, dim int) []float32 {
	if len(vec) <= dim {
		return vec
	}
	return vec[:dim]
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
