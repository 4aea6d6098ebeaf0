package handler

import (
	"net/http"
	"strconv"

	"tongue-analyzer/internal/model"
	"tongue-analyzer/internal/repository"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the optional assessment-history read surface.
type HistoryHandler struct {
	repo         *repository.PostgresRepository
	defaultLimit int
	maxLimit     int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(repo *repository.PostgresRepository) *HistoryHandler {
	return &HistoryHandler{
		repo:         repo,
		defaultLimit: 20,
		maxLimit:     100,
	}
}

// Recent handles GET /api/v1/history/recent
func (h *HistoryHandler) Recent(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History is not enabled"})
		return
	}

	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	records, err := h.repo.RecentAssessments(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessments": records, "count": len(records)})
}

// Similar handles POST /api/v1/history/similar - nearest assessments by
// symptom profile
func (h *HistoryHandler) Similar(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "History is not enabled"})
		return
	}

	var req model.SimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// The stored vectors have one dimension per symptom key; a partial
	// profile would not be comparable.
	for _, key := range model.SymptomKeys {
		v, ok := req.Symptoms[key]
		if !ok || v < 0 || v > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "symptoms must contain all keys with values in [0,1]"})
			return
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	records, err := h.repo.SimilarAssessments(c.Request.Context(), req.Symptoms, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch similar assessments: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessments": records, "count": len(records)})
}
