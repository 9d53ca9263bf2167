package textsource

import (
	"context"
	"strings"
	"testing"
)

// TestFetchDirectText verifies a non-URL reference passes through as the
// story body with no title.
func TestFetchDirectText(t *testing.T) {
	s := &Source{}
	title, body, err := s.Fetch(context.Background(), "  Once upon a time.  ")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if title != "" {
		t.Fatalf("title = %q, want empty", title)
	}
	if body != "Once upon a time." {
		t.Fatalf("body = %q", body)
	}
}

// TestFetchEmptyReference verifies a blank reference is rejected.
func TestFetchEmptyReference(t *testing.T) {
	s := &Source{}
	if _, _, err := s.Fetch(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty reference")
	}
}

// TestFetchRejectsNonRedditURL verifies only reddit hosts are accepted.
func TestFetchRejectsNonRedditURL(t *testing.T) {
	s := &Source{}
	_, _, err := s.Fetch(context.Background(), "https://example.com/stories/1")
	if err == nil || !strings.Contains(err.Error(), "unsupported story source") {
		t.Fatalf("error = %v, want unsupported-source failure", err)
	}
}

// TestRedditPostID verifies the id is extracted from permalink shapes.
func TestRedditPostID(t *testing.T) {
	for _, tc := range []struct {
		url  string
		want string
	}{
		{"https://www.reddit.com/r/stories/comments/abc123/some_title/", "abc123"},
		{"https://reddit.com/r/nosleep/comments/xyz789", "xyz789"},
		{"https://old.reddit.com/r/tifu/comments/q1w2e3/title/extra/", "q1w2e3"},
	} {
		got, err := redditPostID(tc.url)
		if err != nil {
			t.Fatalf("redditPostID(%q): %v", tc.url, err)
		}
		if got != tc.want {
			t.Fatalf("redditPostID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

// TestRedditPostIDMissing verifies a reddit URL without a comments segment
// is rejected.
func TestRedditPostIDMissing(t *testing.T) {
	if _, err := redditPostID("https://www.reddit.com/r/stories/"); err == nil {
		t.Fatal("expected error for URL without a post id")
	}
}
