package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/reviewlens/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.POST("/api/analyze", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	router := limitedRouter(NewRateLimiter(10, 10))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/analyze", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRateLimit_BlocksAfterBurst(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 2))

	var lastCode int
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/analyze", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(w, req)
		lastCode = w.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("expected status %d after burst exceeded, got %d", http.StatusTooManyRequests, lastCode)
	}
}

func TestRateLimit_RejectsWithResponseEnvelope(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 1))

	var w *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		w = httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/analyze", nil)
		req.RemoteAddr = "10.0.0.9:12345"
		router.ServeHTTP(w, req)
	}

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("rejection body is not the unified envelope: %v", err)
	}
	if resp.Code != http.StatusTooManyRequests {
		t.Errorf("expected envelope code %d, got %d", http.StatusTooManyRequests, resp.Code)
	}
	if resp.Message == "" {
		t.Error("rejection must carry a message")
	}
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	router := limitedRouter(NewRateLimiter(1, 1))

	for _, addr := range []string{"10.0.0.1:12345", "10.0.0.2:12345"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/analyze", nil)
		req.RemoteAddr = addr
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s first request: expected %d, got %d", addr, http.StatusOK, w.Code)
		}
	}
}
