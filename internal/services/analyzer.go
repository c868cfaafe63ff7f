package services

import (
	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// Canonical detector names. The order of DetectorOrder is the canonical
// ordering used for the triggered-flags list, independent of evaluation order.
const (
	FlagReviewVelocity       = "review_velocity"
	FlagGenericPraise        = "generic_praise"
	FlagSuspiciousReviewers  = "suspicious_reviewers"
	FlagLinguisticAnomalies  = "linguistic_anomalies"
	FlagSentimentImbalance   = "sentiment_imbalance"
	FlagReviewLengthExtremes = "review_length_extremes"
	FlagVerifiedRatio        = "verified_ratio"
	FlagRepetitivePhrases    = "repetitive_phrases"

	// FlagAIManipulation is appended by the enrichment pass, never by a detector.
	FlagAIManipulation = "ai_detected_manipulation"
)

var DetectorOrder = []string{
	FlagReviewVelocity,
	FlagGenericPraise,
	FlagSuspiciousReviewers,
	FlagLinguisticAnomalies,
	FlagSentimentImbalance,
	FlagReviewLengthExtremes,
	FlagVerifiedRatio,
	FlagRepetitivePhrases,
}

// AnalyzerService runs the red-flag detector set over a review collection.
// Detectors are pure functions of the input; the service itself is stateless
// apart from its configuration.
type AnalyzerService struct {
	cfg *config.ScoringConfig
}

func NewAnalyzerService(cfg *config.ScoringConfig) *AnalyzerService {
	return &AnalyzerService{cfg: cfg}
}

func (s *AnalyzerService) detectors() map[string]func([]models.Review) models.Finding {
	return map[string]func([]models.Review) models.Finding{
		FlagReviewVelocity:       s.checkReviewVelocity,
		FlagGenericPraise:        s.checkGenericPraise,
		FlagSuspiciousReviewers:  s.checkSuspiciousReviewers,
		FlagLinguisticAnomalies:  s.checkLinguisticAnomalies,
		FlagSentimentImbalance:   s.checkSentimentImbalance,
		FlagReviewLengthExtremes: s.checkReviewLengthExtremes,
		FlagVerifiedRatio:        s.checkVerifiedRatio,
		FlagRepetitivePhrases:    s.checkRepetitivePhrases,
	}
}

// Analyze runs every detector over the same immutable review collection,
// sums the score impact of triggered findings and collects the names of
// detectors that triggered with a penalty. Bonus triggers contribute to the
// total but are excluded from the triggered-flags list.
func (s *AnalyzerService) Analyze(reviews []models.Review) *models.Analysis {
	logger.Infof("[Analyzer] Running %d detectors on %d reviews", len(DetectorOrder), len(reviews))

	analysis := &models.Analysis{
		TotalReviews: len(reviews),
		RedFlags:     make(map[string]models.Finding, len(DetectorOrder)),
	}

	checks := s.detectors()
	for _, name := range DetectorOrder {
		finding := checks[name](reviews)
		analysis.RedFlags[name] = finding

		if !finding.Triggered {
			continue
		}

		analysis.TotalScoreImpact += finding.ScoreImpact
		if finding.ScoreImpact < 0 {
			analysis.TriggeredFlags = append(analysis.TriggeredFlags, name)
		}
		logger.Infof("[Analyzer] %s triggered: %s (impact %+.1f)", name, finding.Details, finding.ScoreImpact)
	}

	logger.Infof("[Analyzer] Analysis complete: total impact %+.1f, %d flags triggered",
		analysis.TotalScoreImpact, len(analysis.TriggeredFlags))

	return analysis
}
