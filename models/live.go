package models

import "time"

// Live-channel event names. Client triggers first, then server events.
const (
	EventStartIndexing = "start-indexing-demo"
	EventStartQuery    = "start-query-demo"

	EventProcessingStep    = "processing-step"
	EventStepProgress      = "step-progress"
	EventQueryStep         = "query-step"
	EventIndexingComplete  = "indexing-complete"
	EventQueryComplete     = "query-complete"
	EventDemoError         = "demo-error"
	EventRateLimitExceeded = "rate-limit-exceeded"
)

// ClientFrame is the inbound websocket message shape.
type ClientFrame struct {
	Event string       `json:"event"`
	Data  TriggerInput `json:"data"`
}

// TriggerInput carries the payload of either trigger; unused fields
// stay zero.
type TriggerInput struct {
	DocumentID int    `json:"documentId,omitempty"`
	Question   string `json:"question,omitempty"`
}

// ServerFrame is the outbound websocket message shape.
type ServerFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// StepEvent mirrors one stage lifecycle transition to the client.
type StepEvent struct {
	Step      string    `json:"step"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressEvent is a periodic tick emitted while an indexing stage is
// running.
type ProgressEvent struct {
	Step     string  `json:"step"`
	Progress float64 `json:"progress"`
}

// IndexingCompleteEvent closes a live indexing run.
type IndexingCompleteEvent struct {
	DocumentID  string    `json:"documentId"`
	TotalSteps  int       `json:"totalSteps"`
	CompletedAt time.Time `json:"completedAt"`
	Summary     string    `json:"summary"`
}

// QueryCompleteEvent closes a live query run.
type QueryCompleteEvent struct {
	Question    string        `json:"question"`
	Response    string        `json:"response"`
	Metadata    QueryMetadata `json:"metadata"`
	CompletedAt time.Time     `json:"completedAt"`
}

// QueryMetadata is the aggregate trailer of a live query run. The
// confidence value is synthetic and for display only.
type QueryMetadata struct {
	ProcessingTimeMs int64    `json:"processingTime"`
	StepsCompleted   int      `json:"stepsCompleted"`
	Confidence       float64  `json:"confidence"`
	Sources          []string `json:"sources"`
}

// DemoErrorEvent reports a failed or rejected demo run.
type DemoErrorEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RateLimitEvent tells the client it exceeded a per-connection action
// limit.
type RateLimitEvent struct {
	Message      string `json:"message"`
	RetryAfterMs int64  `json:"retryAfter"`
}
