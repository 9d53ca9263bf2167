package textsource

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// Source resolves a story reference (a reddit post URL or direct text)
// into a title and body.
type Source struct {
	client *reddit.Client
}

// New creates a source. Reddit credentials are read from the environment
// when present; otherwise the read-only reddit client is used.
func New() (*Source, error) {
	clientID := os.Getenv("REDDIT_CLIENT_ID")
	clientSecret := os.Getenv("REDDIT_CLIENT_SECRET")

	var client *reddit.Client
	var err error
	if clientID != "" && clientSecret != "" {
		client, err = reddit.NewClient(reddit.Credentials{
			ID:     clientID,
			Secret: clientSecret,
		})
	} else {
		client, err = reddit.NewReadonlyClient()
	}
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &Source{client: client}, nil
}

// Fetch returns (title, body) for the reference. A reference that is not a
// URL is treated as direct story text with no title.
func (s *Source) Fetch(ctx context.Context, reference string) (string, string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", "", fmt.Errorf("empty story reference")
	}

	if !looksLikeURL(reference) {
		return "", reference, nil
	}

	postID, err := redditPostID(reference)
	if err != nil {
		return "", "", err
	}

	log.Printf("[textsource] fetching reddit post %s", postID)
	pc, _, err := s.client.Post.Get(ctx, postID)
	if err != nil {
		return "", "", fmt.Errorf("fetch reddit post %s: %w", postID, err)
	}
	if pc == nil || pc.Post == nil {
		return "", "", fmt.Errorf("reddit post %s not found", postID)
	}
	body := strings.TrimSpace(pc.Post.Body)
	if body == "" {
		return "", "", fmt.Errorf("reddit post %s has no text body", postID)
	}
	return pc.Post.Title, body, nil
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// redditPostID extracts the post id from a reddit permalink, e.g.
// https://www.reddit.com/r/stories/comments/abc123/some_title/.
func redditPostID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse story url: %w", err)
	}
	if !strings.HasSuffix(u.Host, "reddit.com") {
		return "", fmt.Errorf("unsupported story source %s: only reddit post URLs and direct text are accepted", u.Host)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "comments" && i+1 < len(parts) {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("no post id in reddit url %s", rawURL)
}
