package ai

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rag-visualizer-backend/internal/config"
	"rag-visualizer-backend/internal/logger"
	"rag-visualizer-backend/internal/telemetry"
	"rag-visualizer-backend/models"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Fallback reasons, logged and counted per degraded call.
const (
	reasonNotConfigured = "not configured"
	reasonProviderError = "provider error"
)

const systemInstruction = `You are a Data Structure and Algorithm Expert.
Answer the user's question based on the provided context.
If the answer is not in the context, say "I could not find the answer in the provided document."
Keep your answers clear, concise, and educational.

Context: %s`

// Gateway isolates the three external capabilities (embed, search,
// generate) behind total operations: each call returns a usable value
// no matter what the underlying provider does. Missing configuration
// or provider errors degrade that one call to the mock provider.
type Gateway struct {
	cfg     *config.Config
	mock    *MockDataProvider
	docs    []models.Document
	metrics *telemetry.Metrics

	genaiClient *genai.Client
	index       *pinecone.IndexConnection

	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGateway builds a gateway from whatever providers the config
// enables. Construction never fails: a provider that cannot be set up
// is logged and left nil, and its calls fall back to mock data.
func NewGateway(ctx context.Context, cfg *config.Config, docs []models.Document, metrics *telemetry.Metrics) *Gateway {
	gw := &Gateway{
		cfg:     cfg,
		mock:    NewMockDataProvider(),
		docs:    docs,
		metrics: metrics,
		limiter: rate.NewLimiter(rate.Limit(10.0/60.0*0.9), 2),
	}

	gw.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	if cfg.EmbeddingsConfigured() {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
		if err != nil {
			logger.Warn("Gemini client init failed, running degraded", "error", err.Error())
		} else {
			gw.genaiClient = client
		}
	}

	if cfg.VectorIndexConfigured() {
		if index, err := connectPinecone(ctx, cfg); err != nil {
			logger.Warn("Pinecone init failed, running degraded", "error", err.Error())
		} else {
			gw.index = index
		}
	}

	return gw
}

func connectPinecone(ctx context.Context, cfg *config.Config) (*pinecone.IndexConnection, error) {
	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.PineconeAPIKey})
	if err != nil {
		return nil, err
	}
	idx, err := pc.DescribeIndex(ctx, cfg.PineconeIndexName)
	if err != nil {
		return nil, err
	}
	return pc.Index(pinecone.NewIndexConnParams{Host: idx.Host})
}

// Embed converts text to a vector. Falls back to a mock vector of
// fixed dimension on missing configuration or any provider failure;
// the two paths are indistinguishable to callers except in dimension.
func (gw *Gateway) Embed(ctx context.Context, text string) []float32 {
	tracer := otel.Tracer("provider-gateway")
	ctx, span := tracer.Start(ctx, "gateway.embed")
	defer span.End()

	if gw.genaiClient == nil {
		gw.fallback(ctx, "embed", reasonNotConfigured, nil)
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Vector(MockVectorDim)
	}

	model := gw.genaiClient.EmbeddingModel(gw.cfg.EmbeddingsModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		gw.fallback(ctx, "embed", reasonProviderError, err)
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Vector(MockVectorDim)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		gw.fallback(ctx, "embed", reasonProviderError, fmt.Errorf("empty embedding"))
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Vector(MockVectorDim)
	}

	span.SetAttributes(attribute.Int("gateway.vector_dim", len(resp.Embedding.Values)))
	return resp.Embedding.Values
}

// Search returns at most topK matches ordered by descending score.
// Without a vector index it ranks the known documents with synthetic
// scores instead.
func (gw *Gateway) Search(ctx context.Context, vector []float32, topK int) []models.SearchMatch {
	tracer := otel.Tracer("provider-gateway")
	ctx, span := tracer.Start(ctx, "gateway.search")
	defer span.End()
	span.SetAttributes(attribute.Int("gateway.top_k", topK))

	if gw.index == nil {
		gw.fallback(ctx, "search", reasonNotConfigured, nil)
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Matches(gw.docs, topK)
	}

	res, err := gw.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		gw.fallback(ctx, "search", reasonProviderError, err)
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Matches(gw.docs, topK)
	}

	matches := make([]models.SearchMatch, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		text := ""
		if m.Vector.Metadata != nil {
			text = m.Vector.Metadata.GetFields()["text"].GetStringValue()
		}
		matches = append(matches, models.SearchMatch{
			ID:    m.Vector.Id,
			Score: m.Score,
			Text:  text,
		})
	}
	span.SetAttributes(attribute.Int("gateway.matches", len(matches)))
	return matches
}

// Generate answers the question from the given context. The real path
// runs through the circuit breaker and RPM limiter; any failure,
// including an open breaker, degrades to the canned-answer table.
func (gw *Gateway) Generate(ctx context.Context, question, contextText string) string {
	tracer := otel.Tracer("provider-gateway")
	ctx, span := tracer.Start(ctx, "gateway.generate")
	defer span.End()

	if gw.genaiClient == nil {
		gw.fallback(ctx, "generate", reasonNotConfigured, nil)
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Answer(question)
	}

	if err := gw.limiter.Wait(ctx); err != nil {
		gw.fallback(ctx, "generate", reasonProviderError, err)
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Answer(question)
	}

	result, err := gw.breaker.Execute(func() (interface{}, error) {
		model := gw.genaiClient.GenerativeModel(gw.cfg.GeminiModel)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(500)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(fmt.Sprintf(systemInstruction, contextText))},
		}

		resp, err := model.GenerateContent(ctx, genai.Text(question))
		if err != nil {
			return nil, err
		}
		text := extractText(resp)
		if text == "" {
			return nil, fmt.Errorf("empty generation response")
		}
		return text, nil
	})
	if err != nil {
		gw.fallback(ctx, "generate", reasonProviderError, err)
		span.SetAttributes(attribute.Bool("gateway.fallback", true))
		return gw.mock.Answer(question)
	}

	span.SetAttributes(attribute.Bool("gateway.success", true))
	return result.(string)
}

func (gw *Gateway) fallback(ctx context.Context, operation, reason string, err error) {
	if reason == reasonNotConfigured {
		logger.Debug("Provider fallback", "operation", operation, "reason", reason)
	} else {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		logger.Warn("Provider fallback", "operation", operation, "reason", reason, "error", msg)
	}
	gw.metrics.RecordFallback(ctx, operation, reason)
}

// Close releases the underlying provider clients.
func (gw *Gateway) Close() error {
	if gw.index != nil {
		gw.index.Close()
	}
	if gw.genaiClient != nil {
		return gw.genaiClient.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	out := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
	}
	return out
}

func intToID(id int) string {
	return strconv.Itoa(id)
}
