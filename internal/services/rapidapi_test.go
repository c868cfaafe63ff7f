package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/pkg/response"
)

func TestExtractASIN(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.amazon.com/dp/B08N5WRWNW", "B08N5WRWNW", true},
		{"https://www.amazon.com/product/B08N5WRWNW/ref=xyz", "B08N5WRWNW", true},
		{"https://www.amazon.com/gp/product/B08N5WRWNW", "B08N5WRWNW", true},
		{"https://example.com/lookup?asin=B08N5WRWNW", "B08N5WRWNW", true},
		{"https://www.amazon.com/s?k=kettle", "", false},
		{"https://www.amazon.com/dp/short", "", false},
	}

	for _, tc := range cases {
		got, ok := ExtractASIN(tc.url)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ExtractASIN(%q): expected (%q, %v), got (%q, %v)", tc.url, tc.want, tc.ok, got, ok)
		}
	}
}

func newRapidAPITestService(serverURL string) *RapidAPIService {
	cfg := &config.RapidAPIConfig{
		APIKey:         "test-key",
		BaseURL:        serverURL,
		Host:           "real-time-amazon-data.p.rapidapi.com",
		Country:        "US",
		MaxReviews:     100,
		TimeoutSeconds: 5,
	}
	return NewRapidAPIService(cfg)
}

func TestFetchReviews_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product-reviews" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("asin") != "B08N5WRWNW" {
			t.Errorf("unexpected asin %q", r.URL.Query().Get("asin"))
		}
		if r.Header.Get("X-RapidAPI-Key") != "test-key" {
			t.Error("API key header missing")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"reviews":[
			{"rating":5,"title":"Great","body":"Works well and arrived quickly","date":"2024-01-15","author":{"name":"Sam"},"verified_purchase":true,"images":["a.jpg"]},
			{"rating":"4.0 out of 5 stars","text":"Decent enough for daily use","author":{"name":""}},
			{"rating":3,"body":""}
		]}}`))
	}))
	defer server.Close()

	svc := newRapidAPITestService(server.URL)
	reviews, err := svc.FetchReviews(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The bodyless third entry is dropped
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}

	first := reviews[0]
	if first.Rating != 5 || first.Author != "Sam" || !first.VerifiedPurchase || !first.HasImages {
		t.Errorf("first review mapped wrong: %+v", first)
	}
	if first.Date == nil {
		t.Error("date should be parsed")
	}
	if first.Length == 0 {
		t.Error("length must be derived during normalization")
	}

	second := reviews[1]
	if second.Rating != 4 {
		t.Errorf("string rating should parse to 4, got %v", second.Rating)
	}
	if second.Body != "Decent enough for daily use" {
		t.Errorf("text field should serve as body, got %q", second.Body)
	}
	if second.Author != "Anonymous" {
		t.Errorf("missing author must normalize to Anonymous, got %q", second.Author)
	}
}

func TestFetchReviews_CapsAtMaxReviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reviews":[
			{"rating":4,"body":"first of several reviews"},
			{"rating":4,"body":"second of several reviews"},
			{"rating":4,"body":"third of several reviews"}
		]}`))
	}))
	defer server.Close()

	svc := newRapidAPITestService(server.URL)
	svc.cfg.MaxReviews = 2

	reviews, err := svc.FetchReviews(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("expected the cap to keep 2 reviews, got %d", len(reviews))
	}
}

func TestFetchReviews_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := newRapidAPITestService(server.URL)
	_, err := svc.FetchReviews(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW")
	if err == nil {
		t.Fatal("expected an error")
	}

	appErr, ok := err.(*response.AppError)
	if !ok || appErr.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("expected a 429 AppError, got %v", err)
	}
}

func TestFetchReviews_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := newRapidAPITestService(server.URL)
	_, err := svc.FetchReviews(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW")

	appErr, ok := err.(*response.AppError)
	if !ok || appErr.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected a 502 AppError for auth failure, got %v", err)
	}
}

func TestFetchReviews_NoKey(t *testing.T) {
	svc := NewRapidAPIService(&config.RapidAPIConfig{})
	if _, err := svc.FetchReviews(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW"); err == nil {
		t.Error("a missing API key must fail before any request is made")
	}
}

func TestFetchReviews_BadURL(t *testing.T) {
	svc := newRapidAPITestService("http://127.0.0.1:0")
	_, err := svc.FetchReviews(context.Background(), "https://www.amazon.com/s?k=kettle")

	appErr, ok := err.(*response.AppError)
	if !ok || appErr.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected a 400 AppError for a URL without an ASIN, got %v", err)
	}
}

func TestFetchReviews_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reviews":[]}`))
	}))
	defer server.Close()

	svc := newRapidAPITestService(server.URL)
	_, err := svc.FetchReviews(context.Background(), "https://www.amazon.com/dp/B08N5WRWNW")

	appErr, ok := err.(*response.AppError)
	if !ok || appErr.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected a 404 AppError for an empty review list, got %v", err)
	}
}
