package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// ParserService turns manually pasted review text into structured reviews.
// Blocks are separated by blank lines; each block is parsed independently and
// missing fields fall back to defaults or sentiment inference.
type ParserService struct{}

func NewParserService() *ParserService {
	return &ParserService{}
}

var (
	blockSplitRegex  = regexp.MustCompile(`\n\s*\n`)
	ratingTextRegex  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:out of 5|stars?|/5)`)
	reviewedByRegex  = regexp.MustCompile(`(?:by|from)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)
	authorFirstRegex = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z]\.?)?)\s+reviewed`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:reviewed|posted|on)\s+([A-Z][a-z]+ \d{1,2},? \d{4})`),
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2,4})`),
		regexp.MustCompile(`([A-Z][a-z]+ \d{1,2},? \d{4})`),
	}

	dateLayouts = []string{
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006",
		"Jan 2 2006",
		"1/2/2006",
		"1/2/06",
	}

	metadataMarkers = []string{
		"out of 5 stars",
		"reviewed on",
		"verified purchase",
		"helpful",
		"report",
	}

	positiveWords = []string{
		"amazing", "excellent", "perfect", "love", "great", "awesome",
		"wonderful", "fantastic", "best", "incredible", "outstanding",
	}
	negativeWords = []string{
		"terrible", "awful", "horrible", "worst", "hate", "garbage",
		"useless", "waste", "disappointed", "poor", "bad",
	}
)

// ParseManualReviews splits pasted text on blank lines and parses each block.
// Blocks with no recoverable body text are skipped.
func (p *ParserService) ParseManualReviews(text string) []models.Review {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var reviews []models.Review
	for _, block := range blockSplitRegex.Split(strings.TrimSpace(text), -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		if review, ok := p.parseSingleReview(block); ok {
			reviews = append(reviews, review)
		}
	}

	logger.Infof("[Parser] Parsed %d reviews from pasted text", len(reviews))
	return models.NormalizeAll(reviews)
}

func (p *ParserService) parseSingleReview(text string) (models.Review, bool) {
	review := models.Review{Author: models.AnonymousAuthor}

	review.Rating = extractRating(text)
	review.Date = extractDate(text)
	if author := extractAuthor(text); author != "" {
		review.Author = author
	}
	review.VerifiedPurchase = strings.Contains(strings.ToLower(text), "verified purchase")

	// Keep content lines, dropping short metadata lines. A long line that
	// merely mentions a marker word still counts as content.
	var contentLines []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isMetadataLine(line) && len(line) <= 50 {
			continue
		}
		contentLines = append(contentLines, line)
	}

	if len(contentLines) == 0 {
		return models.Review{}, false
	}

	// A short first line is treated as the title.
	if len(contentLines[0]) < 100 {
		review.Title = contentLines[0]
		if len(contentLines) > 1 {
			review.Body = strings.Join(contentLines[1:], "\n")
		} else {
			review.Body = contentLines[0]
		}
	} else {
		review.Body = strings.Join(contentLines, "\n")
	}

	if strings.TrimSpace(review.Body) == "" {
		return models.Review{}, false
	}

	if review.Rating == 0 {
		review.Rating = inferRatingFromText(review.Body)
	}

	return review, true
}

func extractRating(text string) float64 {
	if m := ratingTextRegex.FindStringSubmatch(text); m != nil {
		if rating, err := strconv.ParseFloat(m[1], 64); err == nil {
			return rating
		}
	}

	stars := strings.Count(text, "⭐")
	if stars == 0 {
		stars = strings.Count(text, "★")
	}
	if stars > 0 {
		if stars > 5 {
			stars = 5
		}
		return float64(stars)
	}
	return 0
}

func extractDate(text string) *time.Time {
	for _, pattern := range datePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, m[1]); err == nil {
				return &parsed
			}
		}
		return nil
	}
	return nil
}

func extractAuthor(text string) string {
	if m := reviewedByRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := authorFirstRegex.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func isMetadataLine(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range metadataMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// inferRatingFromText derives a star rating from sentiment keywords when the
// pasted block carries no explicit rating. Unclear text maps to neutral 3.0.
func inferRatingFromText(text string) float64 {
	lower := strings.ToLower(text)

	positive := 0
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	negative := 0
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative && positive >= 2:
		return 5.0
	case positive > negative:
		return 4.0
	case negative > positive && negative >= 2:
		return 1.0
	case negative > positive:
		return 2.0
	default:
		return 3.0
	}
}
