package story

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"storycast/internal/config"
)

const endpoint = "https://api.groq.com/openai/v1/chat/completions"

const systemPrompt = `You are a storyteller writing short narrated stories for video.
Write vivid, plain prose meant to be read aloud. No headings and no
markdown. Respond with only the story text itself.`

// Generator writes story text with the Groq chat API.
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
}

// New creates a story Generator.
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces story text about subject in the given style. maxTokens
// overrides the configured budget when positive.
func (g *Generator) Generate(ctx context.Context, subject, style string, maxTokens int) (string, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GROQ_API_KEY not set")
	}
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("empty story subject")
	}
	if maxTokens <= 0 {
		maxTokens = g.cfg.Story.MaxTokens
	}

	log.Printf("[story] generating story about %q", subject)

	reqBody := chatRequest{
		Model: g.cfg.Story.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(subject, style)},
		},
		Temperature: g.cfg.Story.Temperature,
		MaxTokens:   maxTokens,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("story request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse story response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("story api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("story api returned no choices")
	}

	text := cleanStory(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("story api returned empty text")
	}
	return text, nil
}

func buildUserPrompt(subject, style string) string {
	var sb strings.Builder
	sb.WriteString("Write a short story about: " + subject + "\n")
	if strings.TrimSpace(style) != "" {
		sb.WriteString("Style: " + style + "\n")
	}
	sb.WriteString("Respond with only the story text.")
	return sb.String()
}

// cleanStory strips markdown fences if the model wraps its answer in them.
func cleanStory(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
