package services

import (
	"context"

	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// Engine runs the full analysis pipeline: normalization, red-flag detection,
// optional AI enrichment, then scoring and report assembly. Each run is an
// independent, synchronous, in-memory batch computation.
type Engine struct {
	analyzer *AnalyzerService
	scorer   *ScorerService
	ai       *AIService
}

func NewEngine(cfg *config.Config) *Engine {
	e := &Engine{
		analyzer: NewAnalyzerService(&cfg.Scoring),
		scorer:   NewScorerService(&cfg.Scoring),
	}
	if cfg.AI.Enabled {
		e.ai = NewAIService(&cfg.AI, &cfg.Scoring)
	}
	return e
}

// Run analyzes the given reviews and returns the final report. An empty
// collection short-circuits to a terminal error report before any detector
// runs. Enrichment, when configured, runs before trust scoring so its
// adjustment can affect the score.
func (e *Engine) Run(ctx context.Context, url string, reviews []models.Review) *models.Report {
	if len(reviews) == 0 {
		logger.Warnf("[Engine] No reviews to analyze for %s", url)
		return NewErrorReport(url, "No reviews found or unable to retrieve")
	}

	reviews = models.NormalizeAll(reviews)

	analysis := e.analyzer.Analyze(reviews)

	if e.ai != nil {
		e.ai.Enrich(ctx, reviews, analysis)
	}

	return e.scorer.BuildReport(reviews, analysis, url)
}
