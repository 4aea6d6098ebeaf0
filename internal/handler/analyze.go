package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"tongue-analyzer/internal/model"
	"tongue-analyzer/internal/repository"
	"tongue-analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

// Error strings returned to clients. These are the only failure shapes a
// caller ever sees; raw pipeline errors stay in the logs.
const (
	ErrTokenNotSet     = "Server configuration error: API_TOKEN not set"
	ErrUnauthorized    = "Unauthorized: Invalid or missing API token"
	ErrMissingImageURL = "Missing required field: image_url"
)

// AnalyzeHandler authenticates inbound requests and runs the analysis
// pipeline. The history repository is optional and may be nil.
type AnalyzeHandler struct {
	analyzer *service.Analyzer
	repo     *repository.PostgresRepository
	apiToken string
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzer *service.Analyzer, repo *repository.PostgresRepository, apiToken string) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		repo:     repo,
		apiToken: apiToken,
	}
}

// Analyze handles POST /analyze
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	// Authentication gate runs before any pipeline work.
	if h.apiToken == "" {
		c.JSON(http.StatusInternalServerError, model.APIResponse{Success: false, Error: ErrTokenNotSet})
		return
	}
	if bearerToken(c.GetHeader("Authorization")) != h.apiToken {
		c.JSON(http.StatusUnauthorized, model.APIResponse{Success: false, Error: ErrUnauthorized})
		return
	}

	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		c.JSON(http.StatusBadRequest, model.APIResponse{Success: false, Error: ErrMissingImageURL})
		return
	}

	result, source, err := h.analyzer.Analyze(c.Request.Context(), req.ImageURL)
	if err != nil {
		log.Printf("analysis failed for %s: %v", req.ImageURL, err)
		c.JSON(http.StatusInternalServerError, model.APIResponse{Success: false, Error: "Analysis failed: " + err.Error()})
		return
	}

	h.recordHistory(result, source)

	c.JSON(http.StatusOK, model.APIResponse{Success: true, Data: result})
}

// recordHistory persists the assessment when history is enabled. Failures
// are logged and never affect the response.
func (h *AnalyzeHandler) recordHistory(result *model.AssessmentResult, source string) {
	if h.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.repo.SaveAssessment(ctx, result, source); err != nil {
		log.Printf("Warning: failed to record assessment history: %v", err)
	}
}

// bearerToken extracts the token from an Authorization header, accepting
// both "Bearer <token>" and a bare token.
func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
