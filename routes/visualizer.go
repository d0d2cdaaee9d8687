package routes

import (
	"errors"
	"net/http"
	"time"

	"rag-visualizer-backend/internal/config"
	"rag-visualizer-backend/models"
	"rag-visualizer-backend/services"
	"rag-visualizer-backend/utils"

	"github.com/gin-gonic/gin"
)

const (
	matchPreviewLen   = 100
	contextPreviewLen = 500
)

type processDocumentRequest struct {
	DocumentID int `json:"documentId"`
}

type queryRequest struct {
	Question string `json:"question"`
}

// SetupVisualizerRoutes registers the synchronous HTTP surface of the
// demo: the sample corpus, the indexing walkthrough and the query
// pipeline.
func SetupVisualizerRoutes(router *gin.Engine, cfg *config.Config, docs *services.DocumentStore, orchestrator *services.Orchestrator) {
	api := router.Group("/api")

	api.GET("/sample-data", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"documents": docs.All()})
	})

	api.POST("/process-document", func(c *gin.Context) {
		var req processDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "INVALID_INPUT", "Invalid request data")
			return
		}

		result, err := orchestrator.RunIndexing(c.Request.Context(), req.DocumentID, services.RunOptions{})
		if err != nil {
			var notFound *services.NotFoundError
			if errors.As(err, &notFound) {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			respondProcessingError(c, cfg, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"documentId":      result.DocumentID,
			"title":           result.Title,
			"chunks":          result.Chunks,
			"processingSteps": stepSummaries(result.Stages),
		})
	})

	api.POST("/query", func(c *gin.Context) {
		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, services.CodeInvalidInput, "Question is required and must be a non-empty string")
			return
		}

		result, err := orchestrator.RunQuery(c.Request.Context(), req.Question, services.RunOptions{})
		if err != nil {
			var validation *services.ValidationError
			if errors.As(err, &validation) {
				utils.RespondWithBadRequest(c, validation.Code, validation.Message)
				return
			}
			respondProcessingError(c, cfg, err)
			return
		}

		searchResults := make([]gin.H, 0, len(result.Matches))
		for _, m := range result.Matches {
			searchResults = append(searchResults, gin.H{
				"id":      m.ID,
				"score":   m.Score,
				"content": preview(m.Text, matchPreviewLen),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"question":      result.Question,
			"queryVector":   result.Vector,
			"searchResults": searchResults,
			"context":       preview(result.Context, contextPreviewLen),
			"response":      result.Response,
			"metadata": gin.H{
				"processingTimeMs": result.ElapsedMs,
				"vectorDimensions": result.VectorDim,
				"contextLength":    len(result.Context),
				"timestamp":        time.Now(),
			},
			"processingSteps": stepSummaries(result.Stages),
		})
	})
}

func respondProcessingError(c *gin.Context, cfg *config.Config, err error) {
	detail := err.Error()
	if cfg.IsProduction() {
		detail = "Internal server error"
	}
	utils.RespondWithInternalError(c, "PROCESSING_ERROR", "Query processing failed", gin.H{"details": detail})
}

// stepSummaries collapses the per-stage transition log into one entry
// per stage, keeping the terminal status and measured duration.
func stepSummaries(stages []models.StageResult) []gin.H {
	steps := make([]gin.H, 0, len(stages)/2)
	for _, sr := range stages {
		if sr.Status == models.StatusProcessing {
			continue
		}
		steps = append(steps, gin.H{
			"step":      sr.Stage,
			"completed": sr.Status == models.StatusCompleted,
			"duration":  sr.DurationMs,
		})
	}
	return steps
}

func preview(s string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	return s + "..."
}
