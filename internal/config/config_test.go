package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Server.RateLimitRPS != 5 || cfg.Server.RateLimitBurst != 10 {
		t.Errorf("expected default rate limit 5 rps / burst 10, got %v / %d",
			cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}
	if cfg.AI.Enabled {
		t.Error("AI enrichment must default to disabled")
	}
	if cfg.Scoring.StartingTrustScore != 100 {
		t.Errorf("expected starting trust score 100, got %v", cfg.Scoring.StartingTrustScore)
	}
	if len(cfg.Scoring.GradeScale) != 5 {
		t.Errorf("expected 5 grade bands, got %d", len(cfg.Scoring.GradeScale))
	}
	if cfg.RapidAPI.Country != "US" {
		t.Errorf("expected default country US, got %q", cfg.RapidAPI.Country)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
scoring:
  velocity_window_hours: 48
  velocity_penalty: -20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Scoring.VelocityWindowHours != 48 {
		t.Errorf("expected window 48, got %d", cfg.Scoring.VelocityWindowHours)
	}
	if cfg.Scoring.VelocityPenalty != -20 {
		t.Errorf("expected penalty -20, got %v", cfg.Scoring.VelocityPenalty)
	}
	// Untouched values keep their defaults
	if cfg.Scoring.PhraseNgramSize != 4 {
		t.Errorf("unrelated defaults must survive a partial file, got %d", cfg.Scoring.PhraseNgramSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_SAMPLE_SIZE", "5")
	t.Setenv("RAPIDAPI_KEY", "rk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("expected env port 7070, got %q", cfg.Server.Port)
	}
	if !cfg.AI.Enabled || cfg.AI.APIKey != "sk-test" {
		t.Error("an API key in the environment must enable enrichment")
	}
	if cfg.AI.SampleSize != 5 {
		t.Errorf("expected sample size 5, got %d", cfg.AI.SampleSize)
	}
	if cfg.RapidAPI.APIKey != "rk-test" {
		t.Errorf("expected RapidAPI key from env, got %q", cfg.RapidAPI.APIKey)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Scoring.PhraseMinReviews = 7

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Server.Port != "9999" {
		t.Errorf("expected port 9999 after reload, got %q", loaded.Server.Port)
	}
	if loaded.Scoring.PhraseMinReviews != 7 {
		t.Errorf("expected PhraseMinReviews 7 after reload, got %d", loaded.Scoring.PhraseMinReviews)
	}
}
