package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/productfinder/backend/internal/domain"
	"github.com/productfinder/backend/internal/logging"
	"github.com/productfinder/backend/internal/usecase"
)

const (
	serviceName    = "productfinder-backend"
	serviceVersion = "1.0.0"
)

// Recommender is the recommendation pipeline the handlers serve
type Recommender interface {
	Recommend(ctx context.Context, request *domain.RecommendRequest) ([]domain.Product, error)
	Explain(ctx context.Context, request *domain.RecommendRequest) (*usecase.Explanation, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recommender Recommender
}

// NewHandler creates a new HTTP handler. A nil recommender makes the
// recommendation endpoints answer 503.
func NewHandler(recommender Recommender) *Handler {
	return &Handler{recommender: recommender}
}

// scoredProductResponse is one entry of an explain response
type scoredProductResponse struct {
	Product domain.ProductView `json:"product"`
	Score   int                `json:"score"`
}

// explainResponse shows how a query was read and why each product ranked where it did
type explainResponse struct {
	Intent  domain.QueryIntent      `json:"intent"`
	Results []scoredProductResponse `json:"results"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Recommend handles recommendation requests
// POST /api/v1/recommend
// Request body: {"query": "gaming laptop under 60000", "category": "Electronics", "sub_category": "laptop"}
func (h *Handler) Recommend(c *gin.Context) {
	request, ok := h.bindRequest(c)
	if !ok {
		return
	}

	products, err := h.recommender.Recommend(c.Request.Context(), request)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Views(products))
}

// Explain returns the interpreted intent together with the scored results
// POST /api/v1/recommend/explain
func (h *Handler) Explain(c *gin.Context) {
	request, ok := h.bindRequest(c)
	if !ok {
		return
	}

	explanation, err := h.recommender.Explain(c.Request.Context(), request)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := explainResponse{
		Intent:  explanation.Intent,
		Results: make([]scoredProductResponse, 0, len(explanation.Results)),
	}
	if response.Intent.MatchedFeatures == nil {
		response.Intent.MatchedFeatures = []string{}
	}
	if response.Intent.MatchedUseCases == nil {
		response.Intent.MatchedUseCases = []string{}
	}
	for _, sp := range explanation.Results {
		response.Results = append(response.Results, scoredProductResponse{
			Product: sp.Product.View(),
			Score:   sp.Score,
		})
	}

	c.JSON(http.StatusOK, response)
}

// bindRequest decodes the request body. It writes the error response itself
// and reports false when the handler should stop.
func (h *Handler) bindRequest(c *gin.Context) (*domain.RecommendRequest, bool) {
	if h.recommender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Recommendation service not configured",
		})
		return nil, false
	}

	var request domain.RecommendRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		// An empty body carries no query at all
		if errors.Is(err, io.EOF) {
			h.handleError(c, domain.ErrMissingQuery)
			return nil, false
		}
		logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("invalid request body")
		h.handleError(c, domain.ErrInvalidRequest)
		return nil, false
	}

	return &request, true
}

// handleError maps domain errors to HTTP responses
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingQuery):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing 'query' field",
		})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
	case errors.Is(err, domain.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Product catalog temporarily unavailable",
		})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg("unexpected recommendation error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
