package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"storycast/internal/config"
	"storycast/internal/types"
)

// Transcriber converts narration audio into timed transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string, wordTimestamps bool) ([]types.TranscriptSegment, error)
}

// WhisperTranscriber runs the whisper CLI and parses its JSON output.
type WhisperTranscriber struct {
	command string
	model   string
}

// NewWhisperTranscriber creates a transcriber from config.
func NewWhisperTranscriber(cfg *config.Config) *WhisperTranscriber {
	return &WhisperTranscriber{
		command: cfg.Transcribe.Command,
		model:   cfg.Transcribe.Model,
	}
}

// Transcribe runs whisper on audioPath and returns its segments, with
// per-word timings when wordTimestamps is set. The audio file must already
// exist; the CLI is never invoked for a missing input.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath, language string, wordTimestamps bool) ([]types.TranscriptSegment, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("transcribe input %s: %w", audioPath, err)
	}

	workDir, err := os.MkdirTemp("", "storycast-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create whisper workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	args := []string{
		audioPath,
		"--model", t.model,
		"--output_format", "json",
		"--output_dir", workDir,
		"--language", language,
	}
	if wordTimestamps {
		args = append(args, "--word_timestamps", "True")
	}

	cmd := exec.CommandContext(ctx, t.command, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(workDir, base+".json")
	segments, err := parseWhisperJSON(jsonPath)
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// whisperPayload mirrors the whisper JSON output shape: segments, each with
// optional word-level timings.
type whisperPayload struct {
	Segments []types.TranscriptSegment `json:"segments"`
}

func parseWhisperJSON(path string) ([]types.TranscriptSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisper json: %w", err)
	}
	return payload.Segments, nil
}
