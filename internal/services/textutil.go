package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/reviewlens/backend/internal/config"
)

// ngrams extracts lowercase word n-grams from text. Returns nil when the
// text has fewer than n words.
func ngrams(text string, n int) []string {
	words := strings.Fields(strings.ToLower(text))
	if len(words) < n || n <= 0 {
		return nil
	}

	grams := make([]string, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		grams = append(grams, strings.Join(words[i:i+n], " "))
	}
	return grams
}

// formatPercentage renders a fraction as a percentage string, e.g. 0.75 -> "75.0%".
func formatPercentage(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// safeDivide divides two numbers, returning def when the denominator is zero.
func safeDivide(num, den, def float64) float64 {
	if den == 0 {
		return def
	}
	return num / den
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev returns the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// gradeFor converts a 0-100 score to a letter grade using the configured
// scale: the highest band whose minimum does not exceed the score wins.
func gradeFor(score float64, scale []config.GradeBand) string {
	score = clamp(score, 0, 100)

	bands := make([]config.GradeBand, len(scale))
	copy(bands, scale)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min > bands[j].Min })

	for _, band := range bands {
		if score >= band.Min {
			return band.Grade
		}
	}
	return "F"
}

// humanizeFlag converts a detector name to its display form,
// e.g. "generic_praise" -> "Generic Praise".
func humanizeFlag(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
