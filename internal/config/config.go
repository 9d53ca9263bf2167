package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"storycast/internal/types"
)

type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Speech     SpeechConfig     `yaml:"speech"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Captions   CaptionsConfig   `yaml:"captions"`
	Video      VideoConfig      `yaml:"video"`
	Story      StoryConfig      `yaml:"story"`
}

type PathsConfig struct {
	OutputRoot string `yaml:"output_root"`
}

type SpeechConfig struct {
	Command    string `yaml:"command"` // TTS binary/script; empty falls back to edge-tts
	Voice      string `yaml:"voice"`
	SampleRate int    `yaml:"sample_rate"`
	Retries    int    `yaml:"retries"`
}

type TranscribeConfig struct {
	Command  string `yaml:"command"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type CaptionsConfig struct {
	MaxWordsPerCue  int     `yaml:"max_words_per_cue"`
	Font            string  `yaml:"font"`
	FontSize        int     `yaml:"font_size"`
	Color           string  `yaml:"color"`
	StrokeColor     string  `yaml:"stroke_color"`
	StrokeWidth     float64 `yaml:"stroke_width"`
	Background      bool    `yaml:"background"`
	BackgroundColor string  `yaml:"background_color"`
	Position        string  `yaml:"position"`
	MaxCharsPerLine int     `yaml:"max_chars_per_line"`
}

type VideoConfig struct {
	Preset string `yaml:"preset"`
	CRF    int    `yaml:"crf"`
}

type StoryConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Load reads a yaml config file, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every default applied, used when no config
// file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Paths.OutputRoot == "" {
		c.Paths.OutputRoot = "output"
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = "en-US-GuyNeural"
	}
	if c.Speech.SampleRate == 0 {
		c.Speech.SampleRate = 24000
	}
	if c.Speech.Retries == 0 {
		c.Speech.Retries = 3
	}
	if c.Transcribe.Command == "" {
		c.Transcribe.Command = "whisper"
	}
	if c.Transcribe.Model == "" {
		c.Transcribe.Model = "base"
	}
	if c.Transcribe.Language == "" {
		c.Transcribe.Language = "en"
	}
	if c.Captions.Font == "" {
		c.Captions.Font = "Arial"
	}
	if c.Captions.FontSize == 0 {
		c.Captions.FontSize = 48
	}
	if c.Captions.Color == "" {
		c.Captions.Color = "white"
	}
	if c.Captions.StrokeColor == "" {
		c.Captions.StrokeColor = "black"
	}
	if c.Captions.BackgroundColor == "" {
		c.Captions.BackgroundColor = "black@0.5"
	}
	if c.Captions.Position == "" {
		c.Captions.Position = types.PositionBottom
	}
	if c.Captions.MaxCharsPerLine == 0 {
		c.Captions.MaxCharsPerLine = 42
	}
	if c.Video.Preset == "" {
		c.Video.Preset = "fast"
	}
	if c.Video.CRF == 0 {
		c.Video.CRF = 20
	}
	if c.Story.Model == "" {
		c.Story.Model = "llama-3.3-70b-versatile"
	}
	if c.Story.MaxTokens == 0 {
		c.Story.MaxTokens = 2048
	}
}

// Validate checks config values the pipeline depends on.
func (c *Config) Validate() error {
	if c.Paths.OutputRoot == "" {
		return fmt.Errorf("config: paths.output_root is required")
	}
	if c.Captions.MaxWordsPerCue < 0 {
		return fmt.Errorf("config: captions.max_words_per_cue must not be negative, got %d", c.Captions.MaxWordsPerCue)
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return fmt.Errorf("config: video.crf must be between 0 and 51, got %d", c.Video.CRF)
	}
	return c.CaptionStyle().Validate()
}

// CaptionStyle builds the caption style the burn stage consumes.
func (c *Config) CaptionStyle() types.CaptionStyle {
	return types.CaptionStyle{
		Font:            c.Captions.Font,
		FontSize:        c.Captions.FontSize,
		FillColor:       c.Captions.Color,
		StrokeColor:     c.Captions.StrokeColor,
		StrokeWidth:     c.Captions.StrokeWidth,
		Background:      c.Captions.Background,
		BackgroundColor: c.Captions.BackgroundColor,
		Position:        c.Captions.Position,
		MaxLineChars:    c.Captions.MaxCharsPerLine,
	}
}
