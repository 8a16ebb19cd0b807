package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Analyzer resolves one item name for a client.
type Analyzer interface {
	Analyze(ctx context.Context, clientID, itemName string) (*domain.AnalysisResult, error)
}

// BaseItem is a catalog entry as served by the base inventory endpoint.
type BaseItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	WeightKg float64         `json:"weight"`
	Category domain.Category `json:"category"`
	Type     string          `json:"type"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer    Analyzer
	baseItems   []BaseItem
	environment string
	logger      zerolog.Logger
}

// NewHandler creates a new HTTP handler. A nil analyzer makes the analyze endpoint unavailable.
func NewHandler(analyzer Analyzer, items []domain.CatalogItem, environment string, logger zerolog.Logger) *Handler {
	base := make([]BaseItem, len(items))
	for i, item := range items {
		base[i] = BaseItem{
			ID:       item.ID,
			Name:     item.Name,
			WeightKg: item.WeightKg,
			Category: item.Category,
			Type:     "base",
		}
	}

	return &Handler{
		analyzer:    analyzer,
		baseItems:   base,
		environment: environment,
		logger:      logger.With().Str("component", "http").Logger(),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// BaseInventory lists the fixed catalog
func (h *Handler) BaseInventory(c *gin.Context) {
	c.JSON(http.StatusOK, h.baseItems)
}

// AnalyzeItem resolves a free-text item name into an inventory record
func (h *Handler) AnalyzeItem(c *gin.Context) {
	if h.analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Item analysis not configured"})
		return
	}

	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item name"})
		return
	}

	result, err := h.analyzer.Analyze(c.Request.Context(), c.ClientIP(), req.ItemName)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("X-Cache", cacheStatus(result.Cached))
	c.JSON(http.StatusOK, result)
}

// writeError maps domain errors to status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	var rateErr *domain.RateLimitError

	switch {
	case errors.Is(err, domain.ErrInvalidItemName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item name"})
	case errors.As(err, &rateErr):
		secs := rateErr.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(secs))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "Too many requests",
			"retryAfter": secs,
		})
	default:
		h.logger.Error().Err(err).Str("request_id", requestID(c)).Msg("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Analysis failed",
			"message": publicMessage(h.environment, err),
		})
	}
}

// publicMessage exposes error details only in development
func publicMessage(environment string, err error) string {
	if environment == "development" && err != nil {
		return err.Error()
	}
	return "Internal server error"
}

func cacheStatus(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}
