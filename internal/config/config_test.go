package config

import (
	"os"
	"path/filepath"
	"testing"

	"storycast/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoad verifies explicit values survive and omitted ones default.
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
paths:
  output_root: /tmp/storycast-out
speech:
  voice: en-GB-RyanNeural
captions:
  max_words_per_cue: 4
  position: top
video:
  crf: 23
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.OutputRoot != "/tmp/storycast-out" {
		t.Fatalf("output root = %q", cfg.Paths.OutputRoot)
	}
	if cfg.Speech.Voice != "en-GB-RyanNeural" {
		t.Fatalf("voice = %q", cfg.Speech.Voice)
	}
	if cfg.Captions.MaxWordsPerCue != 4 {
		t.Fatalf("max words per cue = %d", cfg.Captions.MaxWordsPerCue)
	}
	if cfg.Captions.Position != types.PositionTop {
		t.Fatalf("position = %q", cfg.Captions.Position)
	}
	if cfg.Video.CRF != 23 {
		t.Fatalf("crf = %d", cfg.Video.CRF)
	}
	// Defaults fill what the file omits.
	if cfg.Transcribe.Command != "whisper" || cfg.Transcribe.Model != "base" {
		t.Fatalf("transcribe defaults = %+v", cfg.Transcribe)
	}
	if cfg.Speech.Retries != 3 {
		t.Fatalf("retries = %d", cfg.Speech.Retries)
	}
}

// TestDefault verifies the zero-file config is valid and complete.
func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Captions.Position != types.PositionBottom {
		t.Fatalf("default position = %q", cfg.Captions.Position)
	}
	if cfg.Captions.MaxCharsPerLine != 42 {
		t.Fatalf("default max chars per line = %d", cfg.Captions.MaxCharsPerLine)
	}
	if cfg.Video.Preset != "fast" || cfg.Video.CRF != 20 {
		t.Fatalf("default video = %+v", cfg.Video)
	}
}

// TestLoadRejectsBadValues verifies validation runs at load time.
func TestLoadRejectsBadValues(t *testing.T) {
	for name, content := range map[string]string{
		"negative max words": "captions:\n  max_words_per_cue: -1\n",
		"crf out of range":   "video:\n  crf: 99\n",
		"bad position":       "captions:\n  position: sideways\n",
	} {
		path := writeConfig(t, content)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

// TestLoadMissingFile verifies a missing path is an error, not a silent
// default.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestCaptionStyle verifies the style handed to the burn stage mirrors the
// captions section.
func TestCaptionStyle(t *testing.T) {
	cfg := Default()
	cfg.Captions.Background = true
	cfg.Captions.StrokeWidth = 3

	style := cfg.CaptionStyle()
	if style.Font != cfg.Captions.Font || style.FontSize != cfg.Captions.FontSize {
		t.Fatalf("style font = %q/%d", style.Font, style.FontSize)
	}
	if !style.Background || style.BackgroundColor != "black@0.5" {
		t.Fatalf("style background = %v/%q", style.Background, style.BackgroundColor)
	}
	if style.StrokeWidth != 3 {
		t.Fatalf("style stroke width = %v", style.StrokeWidth)
	}
	if style.MaxLineChars != cfg.Captions.MaxCharsPerLine {
		t.Fatalf("style max line chars = %d", style.MaxLineChars)
	}
}
