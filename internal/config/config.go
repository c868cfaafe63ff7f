package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	AI       AIConfig       `yaml:"ai"`
	RapidAPI RapidAPIConfig `yaml:"rapidapi"`
	Scoring  ScoringConfig  `yaml:"scoring"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test

	// Per-IP limits on the analysis routes
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// AIConfig controls the optional LLM enrichment pass.
type AIConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Provider    string  `yaml:"provider"` // openai, anthropic, ollama, gemini, azure
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	SampleSize  int     `yaml:"sample_size"`
}

// RapidAPIConfig holds settings for the review retrieval API.
type RapidAPIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Host           string `yaml:"host"`
	Country        string `yaml:"country"`
	MaxReviews     int    `yaml:"max_reviews"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GradeBand maps a minimum score to a letter grade. Bands are evaluated in
// descending order of Min; the first band not exceeding the score wins.
type GradeBand struct {
	Min   float64 `yaml:"min"`
	Grade string  `yaml:"grade"`
}

// ScoringConfig carries every detector threshold, penalty and bonus used by
// the analysis engine. All values are overridable via the config file.
type ScoringConfig struct {
	StartingTrustScore float64 `yaml:"starting_trust_score"`

	// Review velocity spike
	VelocityWindowHours int     `yaml:"velocity_window_hours"`
	VelocityThreshold   float64 `yaml:"velocity_threshold"`
	VelocityMinDated    int     `yaml:"velocity_min_dated"`
	VelocityPenalty     float64 `yaml:"velocity_penalty"`

	// Generic praise
	GenericPhrases         []string `yaml:"generic_phrases"`
	GenericMinLength       int      `yaml:"generic_min_length"`
	GenericMaxWords        int      `yaml:"generic_max_words"`
	GenericPenaltyPerIssue float64  `yaml:"generic_penalty_per_review"`

	// Suspicious reviewer profile
	ReviewerMinReviews          int     `yaml:"reviewer_min_reviews"`
	ReviewerSameRatingPct       float64 `yaml:"reviewer_same_rating_pct"`
	SuspiciousReviewerThreshold float64 `yaml:"suspicious_reviewer_threshold"`
	SuspiciousReviewerPenalty   float64 `yaml:"suspicious_reviewer_penalty"`

	// Linguistic anomalies
	LinguisticMinWords        int     `yaml:"linguistic_min_words"`
	KeywordStuffingThreshold  int     `yaml:"keyword_stuffing_threshold"`
	CapsRatioThreshold        float64 `yaml:"caps_ratio_threshold"`
	CapsMinLength             int     `yaml:"caps_min_length"`
	LinguisticPenaltyPerIssue float64 `yaml:"linguistic_penalty_per_review"`

	// Sentiment imbalance
	FiveStarThreshold         float64 `yaml:"five_star_threshold"`
	BimodalThreshold          float64 `yaml:"bimodal_threshold"`
	BimodalCombined           float64 `yaml:"bimodal_combined"`
	SentimentImbalancePenalty float64 `yaml:"sentiment_imbalance_penalty"`

	// Review length extremes
	ReviewLengthMin       int     `yaml:"review_length_min"`
	ReviewLengthMax       int     `yaml:"review_length_max"`
	LengthPenaltyPerIssue float64 `yaml:"length_penalty_per_review"`

	// Verified purchase ratio
	VerifiedLowThreshold  float64 `yaml:"verified_low_threshold"`
	VerifiedHighThreshold float64 `yaml:"verified_high_threshold"`
	VerifiedLowPenalty    float64 `yaml:"verified_low_penalty"`
	VerifiedHighBonus     float64 `yaml:"verified_high_bonus"`

	// Repetitive phrasing
	PhraseNgramSize  int     `yaml:"phrase_ngram_size"`
	PhraseMinReviews int     `yaml:"phrase_min_reviews"`
	PhrasePenalty    float64 `yaml:"phrase_penalty"`

	// Trust score bonuses
	ImageBonusPerReview  float64 `yaml:"image_bonus_per_review"`
	DetailedMinLength    int     `yaml:"detailed_min_length"`
	DetailedMaxLength    int     `yaml:"detailed_max_length"`
	DetailedBonusPerItem float64 `yaml:"detailed_bonus_per_review"`
	BalancedBonus        float64 `yaml:"balanced_bonus"`
	BalancedThreeStarMin float64 `yaml:"balanced_three_star_min"`
	BalancedFourStarMin  float64 `yaml:"balanced_four_star_min"`
	BalancedFiveStarMax  float64 `yaml:"balanced_five_star_max"`

	// Quality score
	StarToScoreMultiplier    float64  `yaml:"star_to_score_multiplier"`
	QualityVarianceThreshold float64  `yaml:"quality_variance_threshold"`
	QualityHighVariance      float64  `yaml:"quality_high_variance"`
	QualityConsistentBonus   float64  `yaml:"quality_consistent_bonus"`
	QualityVariancePenalty   float64  `yaml:"quality_variance_penalty"`
	QualityDetailedBonus     float64  `yaml:"quality_detailed_bonus"`
	QualityDetailedPct       float64  `yaml:"quality_detailed_pct"`
	NegativeKeywords         []string `yaml:"negative_keywords"`
	QualityNegativePct       float64  `yaml:"quality_negative_pct"`
	QualityNegativePenalty   float64  `yaml:"quality_negative_penalty"`

	// AI enrichment adjustment
	AIManipulationPenalty float64 `yaml:"ai_manipulation_penalty"`

	// Grade table, shared by trust and quality scores
	GradeScale []GradeBand `yaml:"grade_scale"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		fileCfg := DefaultConfig()
		if err := yaml.Unmarshal(data, fileCfg); err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "8080",
			Mode:           "debug",
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
		AI: AIConfig{
			Enabled:     false,
			Provider:    "openai",
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   4096,
			SampleSize:  20,
		},
		RapidAPI: RapidAPIConfig{
			BaseURL:        "https://real-time-amazon-data.p.rapidapi.com",
			Host:           "real-time-amazon-data.p.rapidapi.com",
			Country:        "US",
			MaxReviews:     100,
			TimeoutSeconds: 30,
		},
		Scoring: DefaultScoringConfig(),
	}
}

// DefaultScoringConfig returns the stock thresholds for the red-flag engine.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		StartingTrustScore: 100,

		VelocityWindowHours: 72,
		VelocityThreshold:   0.30,
		VelocityMinDated:    10,
		VelocityPenalty:     -15,

		GenericPhrases: []string{
			"great product", "amazing", "best purchase", "highly recommend",
			"love it", "perfect", "excellent", "awesome", "fantastic",
			"incredible", "superb", "wonderful", "exceeded expectations",
		},
		GenericMinLength:       30,
		GenericMaxWords:        10,
		GenericPenaltyPerIssue: -1,

		ReviewerMinReviews:          2,
		ReviewerSameRatingPct:       0.90,
		SuspiciousReviewerThreshold: 0.20,
		SuspiciousReviewerPenalty:   -10,

		LinguisticMinWords:        10,
		KeywordStuffingThreshold:  5,
		CapsRatioThreshold:        0.30,
		CapsMinLength:             20,
		LinguisticPenaltyPerIssue: -0.5,

		FiveStarThreshold:         0.75,
		BimodalThreshold:          0.30,
		BimodalCombined:           0.80,
		SentimentImbalancePenalty: -20,

		ReviewLengthMin:       20,
		ReviewLengthMax:       400,
		LengthPenaltyPerIssue: -0.5,

		VerifiedLowThreshold:  0.50,
		VerifiedHighThreshold: 0.80,
		VerifiedLowPenalty:    -15,
		VerifiedHighBonus:     5,

		PhraseNgramSize:  4,
		PhraseMinReviews: 5,
		PhrasePenalty:    -10,

		ImageBonusPerReview:  0.5,
		DetailedMinLength:    75,
		DetailedMaxLength:    250,
		DetailedBonusPerItem: 0.3,
		BalancedBonus:        10,
		BalancedThreeStarMin: 0.15,
		BalancedFourStarMin:  0.20,
		BalancedFiveStarMax:  0.50,

		StarToScoreMultiplier:    20,
		QualityVarianceThreshold: 0.5,
		QualityHighVariance:      1.0,
		QualityConsistentBonus:   5,
		QualityVariancePenalty:   -3,
		QualityDetailedBonus:     3,
		QualityDetailedPct:       0.5,
		NegativeKeywords: []string{
			"defective", "broke", "broken", "returned", "refund", "disappointed",
			"waste", "terrible", "awful", "poor quality", "cheap", "scam",
		},
		QualityNegativePct:     0.3,
		QualityNegativePenalty: -5,

		AIManipulationPenalty: -10,

		GradeScale: []GradeBand{
			{Min: 90, Grade: "A"},
			{Min: 75, Grade: "B"},
			{Min: 60, Grade: "C"},
			{Min: 45, Grade: "D"},
			{Min: 0, Grade: "F"},
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		c.AI.Provider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.AI.BaseURL = baseURL
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		c.AI.APIKey = apiKey
		c.AI.Enabled = true
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if sample := os.Getenv("AI_SAMPLE_SIZE"); sample != "" {
		if n, err := strconv.Atoi(sample); err == nil && n > 0 {
			c.AI.SampleSize = n
		}
	}
	if apiKey := os.Getenv("RAPIDAPI_KEY"); apiKey != "" {
		c.RapidAPI.APIKey = apiKey
	}
	if maxReviews := os.Getenv("RAPIDAPI_MAX_REVIEWS"); maxReviews != "" {
		if n, err := strconv.Atoi(maxReviews); err == nil && n > 0 {
			c.RapidAPI.MaxReviews = n
		}
	}
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
