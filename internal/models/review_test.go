package models

import "testing"

func TestReviewNormalize(t *testing.T) {
	r := Review{Rating: 4, Title: " Solid ", Body: "Does the job without fuss"}
	r.Normalize()

	if r.Author != AnonymousAuthor {
		t.Errorf("missing author must become %q, got %q", AnonymousAuthor, r.Author)
	}
	// FullText trims outer whitespace only; the inner gap stays
	if r.Length != len("Solid  Does the job without fuss") {
		t.Errorf("unexpected length %d for %q", r.Length, r.FullText())
	}
}

func TestReviewNormalize_CountsCharactersNotBytes(t *testing.T) {
	r := Review{Rating: 4, Body: "Qualité correcte, très bon achat"}
	r.Normalize()

	// 32 characters, 34 bytes; accented text must not inflate the length
	if r.Length != 32 {
		t.Errorf("expected character count 32, got %d", r.Length)
	}
	if r.Length == len(r.FullText()) {
		t.Error("length must be counted in characters, not bytes")
	}
}

func TestReviewFullText(t *testing.T) {
	r := Review{Title: "Title", Body: "Body"}
	if got := r.FullText(); got != "Title Body" {
		t.Errorf("expected %q, got %q", "Title Body", got)
	}

	bodyOnly := Review{Body: "Body"}
	if got := bodyOnly.FullText(); got != "Body" {
		t.Errorf("title-less text must trim the separator, got %q", got)
	}
}

func TestReviewHasRating(t *testing.T) {
	if (&Review{Rating: 0}).HasRating() {
		t.Error("zero rating must read as absent")
	}
	if !(&Review{Rating: 1}).HasRating() {
		t.Error("rating 1 must read as present")
	}
}

func TestNormalizeAll(t *testing.T) {
	reviews := NormalizeAll([]Review{
		{Rating: 5, Body: "first"},
		{Rating: 3, Body: "second", Author: "Dana"},
	})

	if reviews[0].Author != AnonymousAuthor {
		t.Errorf("expected Anonymous, got %q", reviews[0].Author)
	}
	if reviews[1].Author != "Dana" {
		t.Errorf("existing author must be preserved, got %q", reviews[1].Author)
	}
	if reviews[0].Length != 5 || reviews[1].Length != 6 {
		t.Errorf("lengths not derived: %d, %d", reviews[0].Length, reviews[1].Length)
	}
}
