package types

import (
	"fmt"
	"os"
	"strings"
)

// Caption anchor positions.
const (
	PositionTop    = "top"
	PositionCenter = "center"
	PositionBottom = "bottom"
)

// CaptionStyle configures how burned-in captions are rendered.
type CaptionStyle struct {
	Font            string  `json:"font"`
	FontSize        int     `json:"font_size"`
	FillColor       string  `json:"fill_color"`
	StrokeColor     string  `json:"stroke_color"`
	StrokeWidth     float64 `json:"stroke_width"`
	Background      bool    `json:"background"`
	BackgroundColor string  `json:"background_color"`
	Position        string  `json:"position"` // top | center | bottom
	MaxLineChars    int     `json:"max_line_chars"`
}

// Validate rejects style values that would break the ffmpeg drawtext filter.
func (s CaptionStyle) Validate() error {
	if s.FontSize <= 0 {
		return fmt.Errorf("caption style: font size must be positive, got %d", s.FontSize)
	}
	if s.StrokeWidth < 0 {
		return fmt.Errorf("caption style: stroke width must not be negative, got %.2f", s.StrokeWidth)
	}
	switch s.Position {
	case PositionTop, PositionCenter, PositionBottom:
	default:
		return fmt.Errorf("caption style: position must be top, center or bottom, got %q", s.Position)
	}
	return nil
}

// Job is one end-to-end request to produce a narrated, subtitled video.
// A Job is immutable once created; only its file artifacts outlive the run.
type Job struct {
	ID              string       `json:"id"`
	StoryTitle      string       `json:"story_title"`
	StoryText       string       `json:"story_text"`
	Voice           string       `json:"voice"`
	BackgroundVideo string       `json:"background_video"`
	Style           CaptionStyle `json:"style"`
	MaxWordsPerCue  int          `json:"max_words_per_cue"` // 0 means one cue per transcript segment
}

// Validate checks all required inputs before any stage starts and before a
// job id is allocated.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.StoryText) == "" {
		return fmt.Errorf("job: story text is empty")
	}
	if strings.TrimSpace(j.Voice) == "" {
		return fmt.Errorf("job: no voice selected")
	}
	if strings.TrimSpace(j.BackgroundVideo) == "" {
		return fmt.Errorf("job: no background video selected")
	}
	if _, err := os.Stat(j.BackgroundVideo); err != nil {
		return fmt.Errorf("job: background video %s: %w", j.BackgroundVideo, err)
	}
	if j.MaxWordsPerCue < 0 {
		return fmt.Errorf("job: max words per cue must not be negative, got %d", j.MaxWordsPerCue)
	}
	return j.Style.Validate()
}

// Cue is one timed caption entry.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the display duration in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// WordTiming is one word with its spoken interval, as reported by the
// transcription service.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptSegment is one transcription unit. Words may be empty when the
// service was not asked for (or could not produce) word-level timestamps.
type TranscriptSegment struct {
	Start float64      `json:"start"`
	End   float64      `json:"end"`
	Text  string       `json:"text"`
	Words []WordTiming `json:"words,omitempty"`
}

// PipelineState tracks one pipeline run, persisted as JSON next to the
// run's artifacts.
type PipelineState struct {
	JobID        string `json:"job_id"`
	StoryTitle   string `json:"story_title,omitempty"`
	StartedAt    string `json:"started_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
	AudioFile    string `json:"audio_file,omitempty"`
	NarratedFile string `json:"narrated_file,omitempty"`
	CaptionFile  string `json:"caption_file,omitempty"`
	FinalFile    string `json:"final_file,omitempty"`
	FailedStage  string `json:"failed_stage,omitempty"`
	Error        string `json:"error,omitempty"`
}
