package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// AnonymousAuthor is the sentinel identity for reviews whose author could not
// be determined. Distinct anonymous reviews are independent: the detectors
// never treat this sentinel as a single shared identity.
const AnonymousAuthor = "Anonymous"

// Review is the normalized unit of user feedback every detector and scorer
// operates on. A Rating of 0 means the source had no parseable star rating;
// a nil Date means no parseable timestamp.
type Review struct {
	Rating           float64    `json:"rating"`
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Date             *time.Time `json:"date,omitempty"`
	Author           string     `json:"author"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	HasImages        bool       `json:"has_images"`
	Length           int        `json:"length"`
}

// FullText returns the title and body joined with a single space, trimmed.
func (r *Review) FullText() string {
	return strings.TrimSpace(r.Title + " " + r.Body)
}

// HasRating reports whether the review carries a parsed star rating.
func (r *Review) HasRating() bool {
	return r.Rating > 0
}

// Normalize fills defaults and recomputes the derived Length field. Length is
// always derived from title+" "+body here, counted in characters rather than
// bytes; upstream values are never trusted.
func (r *Review) Normalize() {
	if strings.TrimSpace(r.Author) == "" {
		r.Author = AnonymousAuthor
	}
	r.Length = utf8.RuneCountInString(r.FullText())
}

// NormalizeAll normalizes a batch of reviews in place and returns it.
func NormalizeAll(reviews []Review) []Review {
	for i := range reviews {
		reviews[i].Normalize()
	}
	return reviews
}
