package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"rag-visualizer-backend/internal/ai"
	"rag-visualizer-backend/internal/config"
	"rag-visualizer-backend/internal/logger"
	"rag-visualizer-backend/models"
	"rag-visualizer-backend/services"
)

const sampleText = `Arrays are fundamental data structures that store elements in contiguous memory locations. They provide O(1) access time for elements when the index is known. However, insertion and deletion operations can be O(n) in the worst case when elements need to be shifted. Binary search is an efficient algorithm for finding an item from a sorted list of items. It works by repeatedly dividing the search interval in half. The time complexity is O(log n), making it much faster than linear search for large datasets.`

const defaultQuestion = "What is the time complexity of binary search?"

// A one-shot console walkthrough of both demo pipelines, useful for
// checking the pipeline without the web UI.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	ctx := context.Background()
	docs := services.NewDocumentStore()
	gateway := ai.NewGateway(ctx, cfg, docs.All(), nil)
	defer gateway.Close()

	fmt.Println("=== RAG SYSTEM COMPLETE DEMONSTRATION ===")
	fmt.Printf("Embeddings configured: %v, vector index configured: %v\n\n",
		cfg.EmbeddingsConfigured(), cfg.VectorIndexConfigured())

	runDocumentDemo(ctx, gateway, cfg.MaxChunkSize)
	time.Sleep(time.Second)
	runQueryDemo(ctx, docs, gateway, cfg)

	fmt.Println("=== DEMO COMPLETED ===")
	fmt.Println("1. Document processing: document -> chunks -> vectors -> database")
	fmt.Println("2. Query processing: question -> vector -> search -> context -> response")
}

func runDocumentDemo(ctx context.Context, gateway *ai.Gateway, maxChunkSize int) {
	fmt.Println("=== DOCUMENT PROCESSING DEMO ===")

	fmt.Println("1. Document Loading: loading sample document")
	fmt.Println("2. Text Chunking:")
	chunks := services.ChunkText(sampleText, maxChunkSize)
	for i, chunk := range chunks {
		fmt.Printf("   chunk %d: %q\n", i+1, firstN(chunk, 50))
	}

	fmt.Println("3. Vector Embeddings:")
	for i, chunk := range chunks {
		vec := gateway.Embed(ctx, chunk)
		fmt.Printf("   chunk %d vector (dim %d): [%.3f, %.3f, %.3f, %.3f ...]\n",
			i+1, len(vec), vec[0], vec[1], vec[2], vec[3])
	}

	fmt.Println("4. Database Storage: vectors kept in memory for the demo")
	fmt.Println()
}

func runQueryDemo(ctx context.Context, docs *services.DocumentStore, gateway *ai.Gateway, cfg *config.Config) {
	fmt.Println("=== QUERY PROCESSING DEMO ===")
	fmt.Printf("User query: %q\n", defaultQuestion)

	orchestrator := services.NewOrchestrator(gateway, docs, nil, cfg.MaxChunkSize, cfg.SearchTopK)
	result, err := orchestrator.RunQuery(ctx, defaultQuestion, services.RunOptions{
		Observer: func(sr models.StageResult) {
			if sr.Status == models.StatusProcessing {
				fmt.Printf("   %-10s %s\n", sr.Stage, sr.Message)
			}
		},
	})
	if err != nil {
		log.Fatal("Query demo failed:", err)
	}

	for i, m := range result.Matches {
		fmt.Printf("   match %d: score %.3f - %q\n", i+1, m.Score, firstN(m.Text, 60))
	}
	fmt.Printf("   response: %q\n", result.Response)
	fmt.Printf("   total: %dms\n\n", result.ElapsedMs)
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
