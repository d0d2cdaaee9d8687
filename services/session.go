package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"rag-visualizer-backend/internal/logger"
	"rag-visualizer-backend/internal/telemetry"
	"rag-visualizer-backend/models"

	"github.com/google/uuid"
)

// MaxLiveQuestionLen bounds questions on the live channel. Stricter
// than the HTTP bound on purpose; see MaxHTTPQuestionLen.
const MaxLiveQuestionLen = 500

// Per-action trigger names used for rate-limit bookkeeping.
const (
	actionIndexing = "indexing-demo"
	actionQuery    = "query-demo"
)

// Emitter delivers one event frame to the connected client. The
// websocket transport implements it; tests substitute fakes. A
// returned error means the channel is gone.
type Emitter interface {
	Emit(event string, data interface{}) error
}

// SessionConfig carries the per-connection limits and pacing knobs.
type SessionConfig struct {
	IndexingLimit    int
	QueryLimit       int
	RateWindow       time.Duration
	StageDelay       time.Duration
	ProgressInterval time.Duration
}

type actionState struct {
	count       int
	lastRequest time.Time
}

// ConnectionSession binds one live connection to rate-limited demo
// triggers and streams pipeline stage events as they occur. All state
// is owned by the connection's own events; nothing is shared across
// connections.
type ConnectionSession struct {
	ID          string
	ConnectedAt time.Time

	orchestrator *Orchestrator
	emitter      Emitter
	metrics      *telemetry.Metrics
	cfg          SessionConfig

	mu      sync.Mutex
	actions map[string]*actionState
	closed  bool
}

func NewConnectionSession(orchestrator *Orchestrator, emitter Emitter, cfg SessionConfig, metrics *telemetry.Metrics) *ConnectionSession {
	if cfg.IndexingLimit <= 0 {
		cfg.IndexingLimit = 3
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = 5
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	return &ConnectionSession{
		ID:           uuid.NewString(),
		ConnectedAt:  time.Now(),
		orchestrator: orchestrator,
		emitter:      emitter,
		metrics:      metrics,
		cfg:          cfg,
		actions:      make(map[string]*actionState),
	}
}

// StartIndexing runs the live indexing demo, streaming one
// processing/completed event pair per stage plus periodic progress
// ticks, then a single completion event.
func (s *ConnectionSession) StartIndexing(ctx context.Context, documentID int) {
	if !s.allow(actionIndexing, s.cfg.IndexingLimit) {
		return
	}

	label := strconv.Itoa(documentID)
	if documentID == 0 {
		// The trigger payload may omit the id; fall back to the first
		// sample document.
		documentID = 1
		label = "sample-doc"
	}

	_, err := s.orchestrator.RunIndexing(ctx, documentID, RunOptions{
		Observer:   s.indexingObserver(),
		StageDelay: s.cfg.StageDelay,
	})
	if err != nil {
		logger.Warn("Indexing demo failed", "connection", s.ID, "error", err.Error())
		s.emit(models.EventDemoError, models.DemoErrorEvent{
			Type:      "indexing",
			Message:   "An error occurred during the indexing demonstration",
			Timestamp: time.Now(),
		})
		return
	}

	s.emit(models.EventIndexingComplete, models.IndexingCompleteEvent{
		DocumentID:  label,
		TotalSteps:  len(models.IndexingStages),
		CompletedAt: time.Now(),
		Summary:     "Document successfully processed and indexed into vector database",
	})
}

// StartQuery runs the live query demo. Malformed input short-circuits
// with an error event before any stage runs.
func (s *ConnectionSession) StartQuery(ctx context.Context, question string) {
	if err := ValidateQuestion(question, MaxLiveQuestionLen); err != nil {
		s.emit(models.EventDemoError, models.DemoErrorEvent{
			Type:      "query",
			Message:   "Invalid question provided",
			Timestamp: time.Now(),
		})
		return
	}

	if !s.allow(actionQuery, s.cfg.QueryLimit) {
		return
	}

	result, err := s.orchestrator.RunQuery(ctx, question, RunOptions{
		Observer:   s.queryObserver(),
		StageDelay: s.cfg.StageDelay,
	})
	if err != nil {
		logger.Warn("Query demo failed", "connection", s.ID, "error", err.Error())
		s.emit(models.EventDemoError, models.DemoErrorEvent{
			Type:      "query",
			Message:   "An error occurred during the query demonstration",
			Timestamp: time.Now(),
		})
		return
	}

	sources := make([]string, 0, len(result.Matches))
	for i := range result.Matches {
		sources = append(sources, fmt.Sprintf("Document chunk %d", i+1))
	}

	s.emit(models.EventQueryComplete, models.QueryCompleteEvent{
		Question: question,
		Response: result.Response,
		Metadata: models.QueryMetadata{
			ProcessingTimeMs: result.ElapsedMs,
			StepsCompleted:   len(models.QueryStages),
			Confidence:       0.85 + rand.Float64()*0.1,
			Sources:          sources,
		},
		CompletedAt: time.Now(),
	})
}

// Close discards the connection state. Any in-flight run finishes its
// current stage, but its emissions become no-ops.
func (s *ConnectionSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// allow applies the rolling-window limit for one action. Exceeding it
// emits rate-limit-exceeded and reports false; the pipeline must not
// run.
func (s *ConnectionSession) allow(action string, limit int) bool {
	s.mu.Lock()
	state, ok := s.actions[action]
	if !ok {
		state = &actionState{}
		s.actions[action] = state
	}

	now := time.Now()
	if now.Sub(state.lastRequest) > s.cfg.RateWindow {
		state.count = 0
	}
	state.count++
	state.lastRequest = now
	exceeded := state.count > limit
	s.mu.Unlock()

	if exceeded {
		s.metrics.RecordRateLimit(context.Background(), "live")
		s.emit(models.EventRateLimitExceeded, models.RateLimitEvent{
			Message:      fmt.Sprintf("Too many %s requests. Please wait before trying again.", action),
			RetryAfterMs: s.cfg.RateWindow.Milliseconds(),
		})
		return false
	}
	return true
}

// indexingObserver maps stage transitions to processing-step events
// and drives progress ticks while a stage is processing.
func (s *ConnectionSession) indexingObserver() StageObserver {
	var stopProgress chan struct{}
	return func(sr models.StageResult) {
		switch sr.Status {
		case models.StatusProcessing:
			s.emit(models.EventProcessingStep, stepEvent(sr))
			stopProgress = s.startProgress(sr.Stage)
		default:
			if stopProgress != nil {
				close(stopProgress)
				stopProgress = nil
			}
			s.emit(models.EventProcessingStep, stepEvent(sr))
		}
	}
}

func (s *ConnectionSession) queryObserver() StageObserver {
	return func(sr models.StageResult) {
		s.emit(models.EventQueryStep, stepEvent(sr))
	}
}

// startProgress emits step-progress ticks until the returned channel
// is closed. Ticks carry random percentages; they pace the UI and
// carry no real meaning.
func (s *ConnectionSession) startProgress(stage string) chan struct{} {
	if s.cfg.ProgressInterval <= 0 {
		return nil
	}
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.cfg.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.emit(models.EventStepProgress, models.ProgressEvent{
					Step:     stage,
					Progress: rand.Float64() * 100,
				})
			}
		}
	}()
	return stop
}

// emit forwards one frame to the client. After Close, or once a write
// fails, further emissions are silently dropped.
func (s *ConnectionSession) emit(event string, data interface{}) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.emitter.Emit(event, data); err != nil {
		logger.Debug("Emit after disconnect dropped", "connection", s.ID, "event", event)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	}
}

func stepEvent(sr models.StageResult) models.StepEvent {
	return models.StepEvent{
		Step:      sr.Stage,
		Message:   sr.Message,
		Icon:      sr.Icon,
		Status:    sr.Status,
		Timestamp: sr.Timestamp,
	}
}
