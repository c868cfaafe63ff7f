package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// ScorerService turns detector output into the trust and quality scores and
// assembles the final report.
type ScorerService struct {
	cfg *config.ScoringConfig
}

func NewScorerService(cfg *config.ScoringConfig) *ScorerService {
	return &ScorerService{cfg: cfg}
}

// CalculateTrustScore converts the aggregated detector impact into a bounded
// trust score. Bonus points are applied separately by BuildReport; this is the
// first of the two clamp passes.
func (s *ScorerService) CalculateTrustScore(analysis *models.Analysis) models.ScoreResult {
	score := clamp(s.cfg.StartingTrustScore+analysis.TotalScoreImpact, 0, 100)

	triggered := len(analysis.TriggeredFlags)

	var summary string
	switch {
	case score >= 90:
		summary = "Highly trustworthy reviews. No significant red flags detected."
	case score >= 75:
		summary = fmt.Sprintf("Generally reliable reviews with %d minor red flag(s) detected.", triggered)
	case score >= 60:
		summary = fmt.Sprintf("Mixed signals detected. %d red flag(s) present. Proceed with caution.", triggered)
	case score >= 45:
		summary = fmt.Sprintf("Significant red flags detected. %d suspicious pattern(s) found.", triggered)
	default:
		summary = fmt.Sprintf("High likelihood of manipulation. %d major red flag(s) triggered.", triggered)
	}

	if triggered > 0 {
		names := make([]string, 0, triggered)
		for _, flag := range analysis.TriggeredFlags {
			names = append(names, humanizeFlag(flag))
		}
		shown := names
		if len(shown) > 3 {
			shown = shown[:3]
		}
		summary += fmt.Sprintf(" Issues include: %s", strings.Join(shown, ", "))
		if len(names) > 3 {
			summary += fmt.Sprintf(", and %d more", len(names)-3)
		}
	}

	return models.ScoreResult{
		Score:   score,
		Grade:   gradeFor(score, s.cfg.GradeScale),
		Summary: summary,
	}
}

// CalculateBonuses computes the trust bonus points over the FULL review set:
// image uploads, detailed-length reviews, and a balanced rating distribution.
func (s *ScorerService) CalculateBonuses(reviews []models.Review) float64 {
	var bonus float64

	imageCount := 0
	detailedCount := 0
	for _, r := range reviews {
		if r.HasImages {
			imageCount++
		}
		if r.Length >= s.cfg.DetailedMinLength && r.Length <= s.cfg.DetailedMaxLength {
			detailedCount++
		}
	}

	if imageCount > 0 {
		imageBonus := float64(imageCount) * s.cfg.ImageBonusPerReview
		bonus += imageBonus
		logger.Infof("[Scorer] Image bonus: %+.1f (%d reviews with images)", imageBonus, imageCount)
	}

	if detailedCount > 0 {
		detailedBonus := float64(detailedCount) * s.cfg.DetailedBonusPerItem
		bonus += detailedBonus
		logger.Infof("[Scorer] Detailed review bonus: %+.1f (%d detailed reviews)", detailedBonus, detailedCount)
	}

	rated := 0
	starCounts := make(map[float64]int)
	for _, r := range reviews {
		if r.HasRating() {
			rated++
			starCounts[r.Rating]++
		}
	}
	if rated > 0 {
		threePct := float64(starCounts[3.0]) / float64(rated)
		fourPct := float64(starCounts[4.0]) / float64(rated)
		fivePct := float64(starCounts[5.0]) / float64(rated)

		if threePct >= s.cfg.BalancedThreeStarMin &&
			fourPct >= s.cfg.BalancedFourStarMin &&
			fivePct <= s.cfg.BalancedFiveStarMax {
			bonus += s.cfg.BalancedBonus
			logger.Infof("[Scorer] Balanced distribution bonus: %+.1f", s.cfg.BalancedBonus)
		}
	}

	return bonus
}

// FilterTrustedReviews removes every review implicated by a triggered finding.
// The deduplication key is the literal body text, so reviews sharing a body
// stand or fall together.
func (s *ScorerService) FilterTrustedReviews(reviews []models.Review, analysis *models.Analysis) []models.Review {
	implicatedBodies := make(map[string]bool)
	for _, finding := range analysis.RedFlags {
		if !finding.Triggered {
			continue
		}
		for _, r := range finding.Implicated {
			implicatedBodies[r.Body] = true
		}
	}

	trusted := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if !implicatedBodies[r.Body] {
			trusted = append(trusted, r)
		}
	}

	logger.Infof("[Scorer] Trust filter: %d total, %d trusted", len(reviews), len(trusted))
	return trusted
}

// CalculateQualityScore computes product quality from the trusted subset only.
func (s *ScorerService) CalculateQualityScore(trusted []models.Review) models.ScoreResult {
	if len(trusted) == 0 {
		return models.ScoreResult{
			Score:   0,
			Grade:   "F",
			Summary: "Insufficient trusted reviews to assess product quality",
		}
	}

	var ratings []float64
	for _, r := range trusted {
		if r.HasRating() {
			ratings = append(ratings, r.Rating)
		}
	}
	if len(ratings) == 0 {
		return models.ScoreResult{
			Score:   0,
			Grade:   "F",
			Summary: "No valid ratings in trusted reviews",
		}
	}

	avgRating := mean(ratings)
	score := avgRating * s.cfg.StarToScoreMultiplier

	ratingStd := stddev(ratings)
	if ratingStd < s.cfg.QualityVarianceThreshold {
		score += s.cfg.QualityConsistentBonus
	} else if ratingStd > s.cfg.QualityHighVariance {
		score += s.cfg.QualityVariancePenalty
	}

	detailedCount := 0
	for _, r := range trusted {
		if r.Length >= s.cfg.DetailedMinLength && r.Length <= s.cfg.DetailedMaxLength {
			detailedCount++
		}
	}
	if float64(detailedCount)/float64(len(trusted)) > s.cfg.QualityDetailedPct {
		score += s.cfg.QualityDetailedBonus
	}

	negativeCount := 0
	for _, r := range trusted {
		text := strings.ToLower(r.Body + " " + r.Title)
		for _, keyword := range s.cfg.NegativeKeywords {
			if strings.Contains(text, keyword) {
				negativeCount++
				break
			}
		}
	}
	if float64(negativeCount)/float64(len(trusted)) > s.cfg.QualityNegativePct {
		score += s.cfg.QualityNegativePenalty
	}

	score = clamp(score, 0, 100)

	var summary string
	switch {
	case score >= 90:
		summary = fmt.Sprintf("Excellent product quality. Trusted reviews show consistent %.1f-star ratings with detailed positive feedback.", avgRating)
	case score >= 75:
		summary = fmt.Sprintf("Good product quality. Based on %d trusted reviews, average %.1f-star rating with generally positive feedback.", len(trusted), avgRating)
	case score >= 60:
		summary = fmt.Sprintf("Decent product quality with some concerns. %d trusted reviews average %.1f stars, with mixed feedback.", len(trusted), avgRating)
	case score >= 45:
		summary = fmt.Sprintf("Below average quality. Trusted reviews show %.1f-star rating with notable complaints.", avgRating)
	default:
		summary = fmt.Sprintf("Poor product quality. Based on %d trusted reviews averaging %.1f stars, with significant negative feedback.", len(trusted), avgRating)
	}

	return models.ScoreResult{
		Score:   score,
		Grade:   gradeFor(score, s.cfg.GradeScale),
		Summary: summary,
	}
}

// BuildReport composes the final report: trust score plus bonuses (second
// clamp pass, after the bonus points are added), the trusted-subset quality
// score, summary counts and humanized flag names.
func (s *ScorerService) BuildReport(reviews []models.Review, analysis *models.Analysis, url string) *models.Report {
	trust := s.CalculateTrustScore(analysis)

	bonus := s.CalculateBonuses(reviews)
	trustScore := clamp(trust.Score+bonus, 0, 100)
	trustGrade := gradeFor(trustScore, s.cfg.GradeScale)

	trusted := s.FilterTrustedReviews(reviews, analysis)
	quality := s.CalculateQualityScore(trusted)

	flags := make([]string, 0, len(analysis.TriggeredFlags))
	for _, flag := range analysis.TriggeredFlags {
		flags = append(flags, humanizeFlag(flag))
	}

	report := &models.Report{
		ID:                     uuid.NewString(),
		URL:                    url,
		GeneratedAt:            time.Now().UTC(),
		TrustScore:             round1(trustScore),
		TrustGrade:             trustGrade,
		TrustSummary:           trust.Summary,
		QualityScore:           round1(quality.Score),
		QualityGrade:           quality.Grade,
		QualitySummary:         quality.Summary,
		TotalReviewsAnalyzed:   len(reviews),
		TrustedReviewsCount:    len(trusted),
		SuspiciousReviewsCount: len(reviews) - len(trusted),
		RedFlagsTriggered:      flags,
		AIInsights:             analysis.AIInsights,
	}

	logger.Infof("[Scorer] Report complete: trust %.1f (%s), quality %.1f (%s), %d/%d trusted",
		report.TrustScore, report.TrustGrade, report.QualityScore, report.QualityGrade,
		report.TrustedReviewsCount, report.TotalReviewsAnalyzed)

	return report
}

// NewErrorReport builds the terminal report returned when retrieval produced
// no reviews at all. This is the only case where the engine short-circuits
// before running detectors.
func NewErrorReport(url, errMsg string) *models.Report {
	return &models.Report{
		ID:                   uuid.NewString(),
		URL:                  url,
		GeneratedAt:          time.Now().UTC(),
		TrustScore:           0,
		TrustGrade:           "F",
		QualityScore:         0,
		QualityGrade:         "F",
		TotalReviewsAnalyzed: 0,
		Error:                errMsg,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
