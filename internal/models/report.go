package models

import "time"

// Finding is the outcome of one red-flag detector over the full review set.
// ScoreImpact is negative for penalties, positive for bonuses, and zero when
// the detector did not trigger. Implicated lists the reviews the finding
// blames; pure-bonus findings implicate nothing.
type Finding struct {
	Triggered   bool     `json:"triggered"`
	ScoreImpact float64  `json:"score_impact"`
	Details     string   `json:"details"`
	Implicated  []Review `json:"-"`
}

// Analysis aggregates all detector findings for one review set.
// TriggeredFlags lists, in canonical detector order, the detectors that
// triggered with a negative impact; bonus-only triggers are excluded.
type Analysis struct {
	TotalReviews     int                `json:"total_reviews"`
	RedFlags         map[string]Finding `json:"red_flags"`
	TotalScoreImpact float64            `json:"total_score_impact"`
	TriggeredFlags   []string           `json:"triggered_flags"`
	AIInsights       *AIInsights        `json:"ai_insights,omitempty"`
}

// ScoreResult is a bounded 0-100 score with its letter grade and summary.
type ScoreResult struct {
	Score   float64 `json:"score"`
	Grade   string  `json:"grade"`
	Summary string  `json:"summary"`
}

// AIInsights is the qualitative output of the optional LLM enrichment pass.
// When the call fails, Error is set and the numeric fields stay at zero
// values; enrichment failures never propagate to the report itself.
type AIInsights struct {
	OverallAuthenticity    float64  `json:"overall_authenticity"`
	ManipulationLikelihood string   `json:"manipulation_likelihood"` // low, medium, high, unknown
	PatternsDetected       []string `json:"patterns_detected"`
	Reasoning              string   `json:"reasoning"`
	SampleSize             int      `json:"sample_size"`
	Error                  string   `json:"error,omitempty"`
}

// Report is the immutable final output of an analysis run. ID and GeneratedAt
// are per-run envelope metadata; every other field except AIInsights is a pure
// function of the input reviews, so repeated runs over the same input agree on
// all analytic fields.
type Report struct {
	ID                     string      `json:"id"`
	URL                    string      `json:"url"`
	GeneratedAt            time.Time   `json:"generated_at"`
	TrustScore             float64     `json:"trust_score"`
	TrustGrade             string      `json:"trust_grade"`
	TrustSummary           string      `json:"trust_summary"`
	QualityScore           float64     `json:"quality_score"`
	QualityGrade           string      `json:"quality_grade"`
	QualitySummary         string      `json:"quality_summary"`
	TotalReviewsAnalyzed   int         `json:"total_reviews_analyzed"`
	TrustedReviewsCount    int         `json:"trusted_reviews_count"`
	SuspiciousReviewsCount int         `json:"suspicious_reviews_count"`
	RedFlagsTriggered      []string    `json:"red_flags_triggered"`
	AIInsights             *AIInsights `json:"ai_insights,omitempty"`
	Error                  string      `json:"error,omitempty"`
}
