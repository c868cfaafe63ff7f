package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
	"github.com/reviewlens/backend/pkg/response"
)

// RapidAPIService fetches product reviews through the RapidAPI Amazon data
// gateway. It is the only component that talks to the outside retrieval API.
type RapidAPIService struct {
	cfg    *config.RapidAPIConfig
	client *http.Client
}

func NewRapidAPIService(cfg *config.RapidAPIConfig) *RapidAPIService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RapidAPIService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`[?&]asin=([A-Z0-9]{10})`),
}

// ExtractASIN pulls the 10-character product identifier out of a product URL.
func ExtractASIN(productURL string) (string, bool) {
	for _, pattern := range asinPatterns {
		if m := pattern.FindStringSubmatch(productURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// rapidAPIReview mirrors the wire shape of a single review. Field presence
// varies across gateway endpoints, so several aliases are tried.
type rapidAPIReview struct {
	Rating           json.RawMessage `json:"rating"`
	Stars            json.RawMessage `json:"stars"`
	Title            string          `json:"title"`
	Body             string          `json:"body"`
	Text             string          `json:"text"`
	Date             string          `json:"date"`
	Author           rapidAPIAuthor  `json:"author"`
	VerifiedPurchase bool            `json:"verified_purchase"`
	Images           []string        `json:"images"`
}

type rapidAPIAuthor struct {
	Name string `json:"name"`
}

type rapidAPIResponse struct {
	Data struct {
		Reviews []rapidAPIReview `json:"reviews"`
	} `json:"data"`
	Reviews []rapidAPIReview `json:"reviews"`
	Results []rapidAPIReview `json:"results"`
}

// FetchReviews retrieves up to MaxReviews reviews for the product at the
// given URL. Gateway rate limiting and auth failures come back as typed
// errors so handlers can map them to the right status.
func (s *RapidAPIService) FetchReviews(ctx context.Context, productURL string) ([]models.Review, error) {
	if s.cfg.APIKey == "" {
		return nil, response.NewServerError("RapidAPI key not configured")
	}

	asin, ok := ExtractASIN(productURL)
	if !ok {
		return nil, response.NewBadRequest(fmt.Sprintf("Could not extract ASIN from URL: %s", productURL))
	}

	logger.Infof("[RapidAPI] Fetching reviews for ASIN %s", asin)

	endpoint := fmt.Sprintf("%s/product-reviews", s.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	q := url.Values{}
	q.Set("asin", asin)
	q.Set("country", s.cfg.Country)
	q.Set("page", "1")
	req.URL.RawQuery = q.Encode()

	req.Header.Set("X-RapidAPI-Key", s.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", s.cfg.Host)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, response.NewBadGateway(fmt.Sprintf("API request failed: %v", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		logger.Warn().Msg("RapidAPI rate limit reached")
		return nil, response.NewTooManyRequests("Rate limit exceeded - free tier exhausted for this month")
	case http.StatusForbidden:
		logger.Warn().Msg("RapidAPI authentication failed")
		return nil, response.NewBadGateway("API authentication failed - check your RapidAPI key")
	default:
		return nil, response.NewBadGateway(fmt.Sprintf("API returned status code %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed rapidAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, response.NewBadGateway("Invalid JSON in API response")
	}

	reviews := s.convertReviews(parsed)
	if len(reviews) == 0 {
		return nil, response.NewNotFound("No reviews found in API response")
	}

	if s.cfg.MaxReviews > 0 && len(reviews) > s.cfg.MaxReviews {
		reviews = reviews[:s.cfg.MaxReviews]
	}

	logger.Infof("[RapidAPI] Fetched %d reviews for ASIN %s", len(reviews), asin)
	return models.NormalizeAll(reviews), nil
}

func (s *RapidAPIService) convertReviews(parsed rapidAPIResponse) []models.Review {
	raw := parsed.Data.Reviews
	if len(raw) == 0 {
		raw = parsed.Reviews
	}
	if len(raw) == 0 {
		raw = parsed.Results
	}

	reviews := make([]models.Review, 0, len(raw))
	for _, item := range raw {
		body := item.Body
		if body == "" {
			body = item.Text
		}
		rating := extractWireRating(item.Rating)
		if rating == 0 {
			rating = extractWireRating(item.Stars)
		}
		if body == "" || rating == 0 {
			continue
		}

		review := models.Review{
			Rating:           rating,
			Title:            item.Title,
			Body:             body,
			Author:           item.Author.Name,
			VerifiedPurchase: item.VerifiedPurchase,
			HasImages:        len(item.Images) > 0,
		}
		if parsed := parseWireDate(item.Date); parsed != nil {
			review.Date = parsed
		}
		reviews = append(reviews, review)
	}
	return reviews
}

var wireRatingRegex = regexp.MustCompile(`(\d+\.?\d*)`)

// extractWireRating handles both numeric ratings and strings like
// "5.0 out of 5 stars".
func extractWireRating(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var numeric float64
	if err := json.Unmarshal(raw, &numeric); err == nil {
		return numeric
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0
	}
	if m := wireRatingRegex.FindStringSubmatch(text); m != nil {
		if rating, err := strconv.ParseFloat(m[1], 64); err == nil {
			return rating
		}
	}
	return 0
}

var wireDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
}

func parseWireDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range wireDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	return nil
}
