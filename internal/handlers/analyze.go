package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/internal/services"
	"github.com/reviewlens/backend/pkg/response"
)

// AnalyzeHandler exposes the analysis pipeline over HTTP. Three entry points
// share the same engine: URL-based retrieval, manually pasted text, and
// pre-structured review JSON.
type AnalyzeHandler struct {
	engine   *services.Engine
	rapidAPI *services.RapidAPIService
	parser   *services.ParserService
}

func NewAnalyzeHandler(cfg *config.Config) *AnalyzeHandler {
	return &AnalyzeHandler{
		engine:   services.NewEngine(cfg),
		rapidAPI: services.NewRapidAPIService(&cfg.RapidAPI),
		parser:   services.NewParserService(),
	}
}

type analyzeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

type analyzeManualRequest struct {
	Text string `json:"text" binding:"required"`
	URL  string `json:"url"`
}

type analyzeReviewsRequest struct {
	URL     string          `json:"url"`
	Reviews []models.Review `json:"reviews" binding:"required"`
}

// AnalyzeURL fetches reviews for a product URL and runs the full pipeline.
func (h *AnalyzeHandler) AnalyzeURL(c *gin.Context) {
	var req analyzeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "url is required")
		return
	}

	reviews, err := h.rapidAPI.FetchReviews(c.Request.Context(), req.URL)
	if err != nil {
		response.Error(c, err)
		return
	}

	report := h.engine.Run(c.Request.Context(), req.URL, reviews)
	response.Success(c, report)
}

// AnalyzeManual parses pasted review text and runs the pipeline over the
// result. Text that yields no parseable reviews produces an error report
// rather than an HTTP error.
func (h *AnalyzeHandler) AnalyzeManual(c *gin.Context) {
	var req analyzeManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "text is required")
		return
	}

	url := req.URL
	if url == "" {
		url = "manual-input"
	}

	reviews := h.parser.ParseManualReviews(req.Text)
	report := h.engine.Run(c.Request.Context(), url, reviews)
	response.Success(c, report)
}

// AnalyzeReviews runs the pipeline over pre-structured reviews supplied
// directly in the request body.
func (h *AnalyzeHandler) AnalyzeReviews(c *gin.Context) {
	var req analyzeReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "reviews array is required")
		return
	}

	url := req.URL
	if url == "" {
		url = "direct-input"
	}

	report := h.engine.Run(c.Request.Context(), url, req.Reviews)
	response.Success(c, report)
}
