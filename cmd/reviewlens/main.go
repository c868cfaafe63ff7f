package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/reviewlens/backend/internal/config"
	"github.com/reviewlens/backend/internal/models"
	"github.com/reviewlens/backend/internal/services"
	"github.com/reviewlens/backend/pkg/logger"
)

// Command-line entry point for one-off analyses: reads reviews from a JSON
// file or fetches them for a product URL, prints the report as JSON.
func main() {
	var (
		inputPath  = flag.String("input", "", "path to a JSON file containing an array of reviews")
		outputPath = flag.String("o", "", "write the report to this file instead of stdout")
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "path to the config file")
		quiet      = flag.Bool("q", false, "suppress log output")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *quiet {
		logger.Init("error")
	} else {
		logger.Init(cfg.Log.Level)
	}

	var (
		reviews []models.Review
		target  string
	)

	switch {
	case *inputPath != "":
		data, err := os.ReadFile(*inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &reviews); err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse input file: %v\n", err)
			os.Exit(1)
		}
		target = *inputPath

	case flag.NArg() == 1:
		target = flag.Arg(0)
		rapidAPI := services.NewRapidAPIService(&cfg.RapidAPI)
		reviews, err = rapidAPI.FetchReviews(context.Background(), target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to fetch reviews: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "usage: reviewlens [-input reviews.json | <product-url>] [-o report.json] [-q]")
		os.Exit(2)
	}

	engine := services.NewEngine(cfg)
	report := engine.Run(context.Background(), target, reviews)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode report: %v\n", err)
		os.Exit(1)
	}

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(out))
	}

	if report.Error != "" {
		os.Exit(1)
	}
}
