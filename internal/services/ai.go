package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/pkg/logger"
)

// AIService performs the optional LLM enrichment pass. It samples reviews,
// asks the configured provider for a batch authenticity assessment and merges
// the result into the analysis before trust scoring. Failures never propagate:
// the insights sub-object carries an error marker instead.
type AIService struct {
	cfg     *config.AIConfig
	scoring *config.ScoringConfig
}

func NewAIService(cfg *config.AIConfig, scoring *config.ScoringConfig) *AIService {
	return &AIService{cfg: cfg, scoring: scoring}
}

const batchSystemPrompt = "You are an expert at detecting coordinated fake review campaigns and manipulation patterns across multiple reviews."

// Enrich attaches AI insights to the analysis. When the model reports high
// manipulation likelihood, the configured penalty is applied to the total
// score impact and a synthetic flag is appended, both before trust scoring.
func (s *AIService) Enrich(ctx context.Context, reviews []models.Review, analysis *models.Analysis) {
	insights, err := s.AnalyzeBatch(ctx, reviews)
	if err != nil {
		logger.Warnf("[AI] Enrichment failed: %v", err)
		analysis.AIInsights = &models.AIInsights{
			ManipulationLikelihood: "unknown",
			Error:                  err.Error(),
		}
		return
	}

	analysis.AIInsights = insights
	logger.Infof("[AI] Batch analysis: %.1f/100 authenticity, manipulation %s",
		insights.OverallAuthenticity, insights.ManipulationLikelihood)

	if insights.ManipulationLikelihood == "high" {
		analysis.TotalScoreImpact += s.scoring.AIManipulationPenalty
		analysis.TriggeredFlags = append(analysis.TriggeredFlags, FlagAIManipulation)
		logger.Warnf("[AI] High manipulation likelihood, applying %+.1f adjustment", s.scoring.AIManipulationPenalty)
	}
}

// AnalyzeBatch samples reviews and asks the configured provider for an
// overall authenticity assessment of the dataset.
func (s *AIService) AnalyzeBatch(ctx context.Context, reviews []models.Review) (*models.AIInsights, error) {
	sampled := sampleReviews(reviews, s.cfg.SampleSize)
	prompt := buildBatchPrompt(sampled, len(reviews))

	content, err := s.callLLM(ctx, prompt)
	if err != nil {
		return nil, err
	}

	insights, err := parseInsights(content)
	if err != nil {
		return nil, err
	}
	insights.SampleSize = len(sampled)
	return insights, nil
}

// callLLM dispatches to the provider-specific call based on configuration.
func (s *AIService) callLLM(ctx context.Context, prompt string) (string, error) {
	logger.Infof("[AI] Using provider: %s, model: %s", s.cfg.Provider, s.cfg.Model)

	switch s.cfg.Provider {
	case "anthropic":
		return s.callAnthropic(ctx, prompt)
	case "ollama":
		return s.callOllama(ctx, prompt)
	case "gemini":
		return s.callGemini(ctx, prompt)
	case "azure":
		return s.callAzure(ctx, prompt)
	default:
		// openai and OpenAI-compatible services
		return s.callOpenAI(ctx, prompt)
	}
}

// callOpenAI handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
func (s *AIService) callOpenAI(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(s.cfg.APIKey)
	if s.cfg.BaseURL != "" {
		clientConfig.BaseURL = s.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: batchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(s.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *AIService) callAnthropic(ctx context.Context, prompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(s.cfg.APIKey),
	)

	maxTokens := int64(s.cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	model := s.cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: batchSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return content, nil
}

func (s *AIService) callOllama(ctx context.Context, prompt string) (string, error) {
	baseURL := s.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := s.cfg.Model
	if model == "" {
		model = "llama3"
	}

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "system", Content: batchSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": s.cfg.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}

	return content.String(), nil
}

func (s *AIService) callGemini(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: s.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	model := s.cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(batchSystemPrompt+"\n\n"+prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return resp.Text(), nil
}

// callAzure handles Azure OpenAI; the Model field is the deployment name.
func (s *AIService) callAzure(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultAzureConfig(s.cfg.APIKey, s.cfg.BaseURL)
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: batchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(s.cfg.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("Azure OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from Azure OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// sampleReviews picks up to n reviews at random, preserving the input when it
// already fits.
func sampleReviews(reviews []models.Review, n int) []models.Review {
	if n <= 0 || len(reviews) <= n {
		return reviews
	}
	sampled := make([]models.Review, 0, n)
	for _, idx := range rand.Perm(len(reviews))[:n] {
		sampled = append(sampled, reviews[idx])
	}
	return sampled
}

func buildBatchPrompt(sampled []models.Review, total int) string {
	var summaries []string
	for i, r := range sampled {
		if i >= 10 { // token budget
			break
		}
		body := r.Body
		if runes := []rune(body); len(runes) > 200 {
			body = string(runes[:200])
		}
		summaries = append(summaries, fmt.Sprintf("Review %d: %.1f stars - %s", i+1, r.Rating, body))
	}

	return fmt.Sprintf(`Analyze this sample of product reviews (%d shown, %d total) for patterns of manipulation or fake reviews.

%s

Look for:
1. Repetitive language or phrasing across reviews
2. Suspiciously uniform sentiment
3. Generic praise without specific details
4. Signs of coordinated campaigns
5. Unnatural language patterns

Respond in JSON format:
{
    "overall_authenticity": <0-100, where 100 is highly authentic dataset>,
    "manipulation_likelihood": "<low/medium/high>",
    "patterns_detected": ["<list of suspicious patterns found>"],
    "reasoning": "<2-3 sentence explanation of your assessment>"
}`, len(summaries), total, strings.Join(summaries, "\n"))
}

// parseInsights extracts the JSON object from the model response, tolerating
// surrounding prose or markdown fences.
func parseInsights(content string) (*models.AIInsights, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var insights models.AIInsights
	if err := json.Unmarshal([]byte(content[start:end+1]), &insights); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}

	switch insights.ManipulationLikelihood {
	case "low", "medium", "high":
	default:
		insights.ManipulationLikelihood = "unknown"
	}

	return &insights, nil
}
