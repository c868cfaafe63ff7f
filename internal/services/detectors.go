package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reviewlens/backend/internal/models"
)

var punctuationRunRegex = regexp.MustCompile(`[!?]{4,}`)

// stopwords are ignored by the keyword-stuffing check.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "is": true, "was": true, "are": true, "this": true,
	"that": true, "it": true,
}

// checkReviewVelocity detects suspicious bursts of reviews posted in a short
// timeframe. It slides a fixed-width window anchored at each dated review and
// triggers when the fullest window holds at least the configured fraction of
// all dated reviews.
func (s *AnalyzerService) checkReviewVelocity(reviews []models.Review) models.Finding {
	var dated []models.Review
	for _, r := range reviews {
		if r.Date != nil {
			dated = append(dated, r)
		}
	}
	if len(dated) < s.cfg.VelocityMinDated {
		return models.Finding{Details: "Insufficient data for velocity analysis"}
	}

	sort.Slice(dated, func(i, j int) bool { return dated[i].Date.Before(*dated[j].Date) })

	window := time.Duration(s.cfg.VelocityWindowHours) * time.Hour

	maxInWindow := 0
	var windowReviews []models.Review
	for _, anchor := range dated {
		end := anchor.Date.Add(window)

		var inWindow []models.Review
		for _, r := range dated {
			if !r.Date.Before(*anchor.Date) && r.Date.Before(end) {
				inWindow = append(inWindow, r)
			}
		}

		if len(inWindow) > maxInWindow {
			maxInWindow = len(inWindow)
			windowReviews = inWindow
		}
	}

	fraction := float64(maxInWindow) / float64(len(dated))
	if fraction < s.cfg.VelocityThreshold {
		return models.Finding{}
	}

	return models.Finding{
		Triggered:   true,
		ScoreImpact: s.cfg.VelocityPenalty,
		Details: fmt.Sprintf("%d reviews (%s) posted within %d hours",
			maxInWindow, formatPercentage(fraction), s.cfg.VelocityWindowHours),
		Implicated: windowReviews,
	}
}

// checkGenericPraise flags reviews that are too short to be meaningful or
// consist of little more than a stock praise phrase.
func (s *AnalyzerService) checkGenericPraise(reviews []models.Review) models.Finding {
	var generic []models.Review

	for _, r := range reviews {
		fullText := strings.ToLower(r.FullText())

		if utf8.RuneCountInString(fullText) < s.cfg.GenericMinLength {
			generic = append(generic, r)
			continue
		}

		if len(strings.Fields(fullText)) > s.cfg.GenericMaxWords {
			continue
		}
		for _, phrase := range s.cfg.GenericPhrases {
			if strings.Contains(fullText, strings.ToLower(phrase)) {
				generic = append(generic, r)
				break
			}
		}
	}

	if len(generic) == 0 {
		return models.Finding{}
	}

	count := len(generic)
	return models.Finding{
		Triggered:   true,
		ScoreImpact: s.cfg.GenericPenaltyPerIssue * float64(count),
		Details: fmt.Sprintf("%d reviews (%s) are generic or too short",
			count, formatPercentage(float64(count)/float64(len(reviews)))),
		Implicated: generic,
	}
}

// checkSuspiciousReviewers groups reviews by author and flags authors whose
// rating history is dominated by a single value. Anonymous entries form
// one-review groups each, so the multi-review gate always skips them; they
// still count toward the author-group total. Triggers on the fraction of
// suspicious authors among all authors, not among all reviews.
func (s *AnalyzerService) checkSuspiciousReviewers(reviews []models.Review) models.Finding {
	groups := make(map[string][]models.Review)
	for i, r := range reviews {
		key := r.Author
		if key == "" || key == models.AnonymousAuthor {
			key = fmt.Sprintf("%s#%d", models.AnonymousAuthor, i)
		}
		groups[key] = append(groups[key], r)
	}

	suspiciousAuthors := 0
	var implicated []models.Review

	for _, authorReviews := range groups {
		if len(authorReviews) < s.cfg.ReviewerMinReviews {
			continue
		}

		ratingCounts := make(map[float64]int)
		rated := 0
		for _, r := range authorReviews {
			if r.HasRating() {
				ratingCounts[r.Rating]++
				rated++
			}
		}
		if rated == 0 {
			continue
		}

		modal := 0
		for _, c := range ratingCounts {
			if c > modal {
				modal = c
			}
		}

		if float64(modal)/float64(rated) >= s.cfg.ReviewerSameRatingPct {
			suspiciousAuthors++
			implicated = append(implicated, authorReviews...)
		}
	}

	if suspiciousAuthors == 0 {
		return models.Finding{}
	}

	fraction := float64(suspiciousAuthors) / float64(len(groups))
	if fraction < s.cfg.SuspiciousReviewerThreshold {
		return models.Finding{}
	}

	return models.Finding{
		Triggered:   true,
		ScoreImpact: s.cfg.SuspiciousReviewerPenalty,
		Details: fmt.Sprintf("%d reviewers (%s) show suspicious patterns",
			suspiciousAuthors, formatPercentage(fraction)),
		Implicated: implicated,
	}
}

// checkLinguisticAnomalies flags reviews showing keyword stuffing, excessive
// punctuation runs, or a high uppercase ratio.
func (s *AnalyzerService) checkLinguisticAnomalies(reviews []models.Review) models.Finding {
	var anomalous []models.Review

	for _, r := range reviews {
		words := strings.Fields(strings.ToLower(r.Body))
		if len(words) < s.cfg.LinguisticMinWords {
			continue
		}

		if s.isAnomalous(r.Body, words) {
			anomalous = append(anomalous, r)
		}
	}

	if len(anomalous) == 0 {
		return models.Finding{}
	}

	count := len(anomalous)
	return models.Finding{
		Triggered:   true,
		ScoreImpact: s.cfg.LinguisticPenaltyPerIssue * float64(count),
		Details: fmt.Sprintf("%d reviews (%s) show linguistic anomalies",
			count, formatPercentage(float64(count)/float64(len(reviews)))),
		Implicated: anomalous,
	}
}

func (s *AnalyzerService) isAnomalous(body string, words []string) bool {
	wordCounts := make(map[string]int)
	for _, w := range words {
		wordCounts[w]++
	}
	for w, c := range wordCounts {
		if !stopwords[w] && len(w) > 3 && c >= s.cfg.KeywordStuffingThreshold {
			return true
		}
	}

	if punctuationRunRegex.MatchString(body) {
		return true
	}

	runes := []rune(body)
	if len(runes) > s.cfg.CapsMinLength {
		upper := 0
		for _, ch := range runes {
			if ch >= 'A' && ch <= 'Z' {
				upper++
			}
		}
		if float64(upper)/float64(len(runes)) > s.cfg.CapsRatioThreshold {
			return true
		}
	}

	return false
}

// checkSentimentImbalance detects a 5-star dominated or bimodal 5-star/1-star
// rating distribution. The dominance check runs first; the bimodal check only
// applies when dominance did not. Either way, all 5-star reviews are
// implicated when triggered.
func (s *AnalyzerService) checkSentimentImbalance(reviews []models.Review) models.Finding {
	rated := 0
	fiveStar := 0
	oneStar := 0
	for _, r := range reviews {
		if !r.HasRating() {
			continue
		}
		rated++
		switch r.Rating {
		case 5.0:
			fiveStar++
		case 1.0:
			oneStar++
		}
	}
	if rated == 0 {
		return models.Finding{}
	}

	fivePct := float64(fiveStar) / float64(rated)
	onePct := float64(oneStar) / float64(rated)

	var details string
	switch {
	case fivePct >= s.cfg.FiveStarThreshold:
		details = fmt.Sprintf("Extreme 5-star dominance: %s of reviews are 5-star",
			formatPercentage(fivePct))
	case fivePct >= s.cfg.BimodalThreshold && onePct >= s.cfg.BimodalThreshold &&
		fivePct+onePct > s.cfg.BimodalCombined:
		details = fmt.Sprintf("Bimodal distribution detected: %s 5-star, %s 1-star",
			formatPercentage(fivePct), formatPercentage(onePct))
	default:
		return models.Finding{}
	}

	var implicated []models.Review
	for _, r := range reviews {
		if r.Rating == 5.0 {
			implicated = append(implicated, r)
		}
	}

	return models.Finding{
		Triggered:   true,
		ScoreImpact: s.cfg.SentimentImbalancePenalty,
		Details:     details,
		Implicated:  implicated,
	}
}

// checkReviewLengthExtremes flags reviews whose derived length falls outside
// the configured band.
func (s *AnalyzerService) checkReviewLengthExtremes(reviews []models.Review) models.Finding {
	var extreme []models.Review
	for _, r := range reviews {
		if r.Length < s.cfg.ReviewLengthMin || r.Length > s.cfg.ReviewLengthMax {
			extreme = append(extreme, r)
		}
	}

	if len(extreme) == 0 {
		return models.Finding{}
	}

	count := len(extreme)
	return models.Finding{
		Triggered:   true,
		ScoreImpact: s.cfg.LengthPenaltyPerIssue * float64(count),
		Details: fmt.Sprintf("%d reviews (%s) are extremely short or long",
			count, formatPercentage(float64(count)/float64(len(reviews)))),
		Implicated: extreme,
	}
}

// checkVerifiedRatio penalizes a low verified-purchase ratio and rewards a
// high one. A bonus trigger implicates nothing. Between the two thresholds
// is a dead zone.
func (s *AnalyzerService) checkVerifiedRatio(reviews []models.Review) models.Finding {
	verified := 0
	for _, r := range reviews {
		if r.VerifiedPurchase {
			verified++
		}
	}

	ratio := safeDivide(float64(verified), float64(len(reviews)), 0)

	if ratio < s.cfg.VerifiedLowThreshold {
		var unverified []models.Review
		for _, r := range reviews {
			if !r.VerifiedPurchase {
				unverified = append(unverified, r)
			}
		}
		return models.Finding{
			Triggered:   true,
			ScoreImpact: s.cfg.VerifiedLowPenalty,
			Details: fmt.Sprintf("Low verified purchase rate: only %s are verified",
				formatPercentage(ratio)),
			Implicated: unverified,
		}
	}

	if ratio >= s.cfg.VerifiedHighThreshold {
		return models.Finding{
			Triggered:   true,
			ScoreImpact: s.cfg.VerifiedHighBonus,
			Details: fmt.Sprintf("High verified purchase rate: %s are verified (BONUS)",
				formatPercentage(ratio)),
		}
	}

	return models.Finding{}
}

// checkRepetitivePhrases extracts word n-grams from every review and triggers
// when any phrase is shared by enough distinct reviews. The penalty is fixed
// regardless of how many phrases qualify. Implicated reviews are deduplicated
// by body text.
func (s *AnalyzerService) checkRepetitivePhrases(reviews []models.Review) models.Finding {
	type gramGroup struct {
		gram    string
		reviews []models.Review
	}

	gramIndex := make(map[string]*gramGroup)
	var gramOrder []string

	for _, r := range reviews {
		seen := make(map[string]bool)
		for _, gram := range ngrams(r.Title+" "+r.Body, s.cfg.PhraseNgramSize) {
			if seen[gram] {
				continue
			}
			seen[gram] = true

			g, ok := gramIndex[gram]
			if !ok {
				g = &gramGroup{gram: gram}
				gramIndex[gram] = g
				gramOrder = append(gramOrder, gram)
			}
			g.reviews = append(g.reviews, r)
		}
	}

	var topGram string
	topCount := 0
	var implicated []models.Review
	seenBodies := make(map[string]bool)

	for _, gram := range gramOrder {
		g := gramIndex[gram]
		if len(g.reviews) < s.cfg.PhraseMinReviews {
			continue
		}
		if len(g.reviews) > topCount || (len(g.reviews) == topCount && gram < topGram) {
			topGram = gram
			topCount = len(g.reviews)
		}
		for _, r := range g.reviews {
			if !seenBodies[r.Body] {
				seenBodies[r.Body] = true
				implicated = append(implicated, r)
			}
		}
	}

	if topCount == 0 {
		return models.Finding{}
	}

	return models.Finding{
		Triggered:   true,
		ScoreImpact: s.cfg.PhrasePenalty,
		Details: fmt.Sprintf("Repetitive phrases detected: '%s' appears in %d reviews",
			topGram, topCount),
		Implicated: implicated,
	}
}
