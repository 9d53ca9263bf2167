package media

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"storycast/internal/config"
	"storycast/internal/types"
)

// Composer drives ffmpeg and ffprobe for narration merges and caption
// burn-in. It never retries: every failure is surfaced to the caller.
type Composer struct {
	ffmpegPath  string
	ffprobePath string
	preset      string
	crf         int
	runner      commandRunner
}

// NewComposer creates a composer using the system ffmpeg/ffprobe binaries.
func NewComposer(cfg *config.Config) *Composer {
	return &Composer{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		preset:      cfg.Video.Preset,
		crf:         cfg.Video.CRF,
		runner:      execRunner{},
	}
}

// NewComposerForTests creates a composer with an injected command runner.
func NewComposerForTests(runner commandRunner, preset string, crf int) *Composer {
	return &Composer{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		preset:      preset,
		crf:         crf,
		runner:      runner,
	}
}

// Merge replaces videoPath's audio track with the narration at audioPath and
// writes the result to outPath. The output duration equals the narration
// duration exactly: a shorter video is looped from its start, a longer one is
// trimmed from time zero. The output frame rate mirrors the source video's.
func (c *Composer) Merge(ctx context.Context, videoPath, audioPath, outPath string) error {
	for _, path := range []string{videoPath, audioPath} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("merge input %s: %w", path, err)
		}
	}

	videoDur, err := c.Duration(ctx, videoPath)
	if err != nil {
		return err
	}
	if videoDur <= 0 {
		return fmt.Errorf("video %s has non-positive duration %.3fs", videoPath, videoDur)
	}
	audioDur, err := c.Duration(ctx, audioPath)
	if err != nil {
		return err
	}
	if audioDur <= 0 {
		return fmt.Errorf("narration %s has non-positive duration %.3fs", audioPath, audioDur)
	}
	fps, err := c.FrameRate(ctx, videoPath)
	if err != nil {
		return err
	}

	args := []string{"-y"}
	if audioDur > videoDur {
		// Loop the video until it covers the narration, then trim exactly.
		loops := int(audioDur/videoDur) + 1
		log.Printf("[merge] narration %.2fs exceeds video %.2fs, looping video %d time(s)", audioDur, videoDur, loops)
		args = append(args, "-stream_loop", fmt.Sprintf("%d", loops))
	} else if audioDur < videoDur {
		log.Printf("[merge] trimming video %.2fs down to narration %.2fs", videoDur, audioDur)
	}
	args = append(args,
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-t", fmt.Sprintf("%.3f", audioDur),
		"-r", fmt.Sprintf("%.3f", fps),
		"-c:v", "libx264",
		"-preset", c.preset,
		"-crf", fmt.Sprintf("%d", c.crf),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		outPath,
	)

	result, err := c.runner.Run(ctx, c.ffmpegPath, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg merge: %w: %s", err, tail(result.Stderr))
	}
	return nil
}

// Burn composites the cues over videoPath as timed drawtext overlays and
// writes the result to outPath. The video's audio track is copied unchanged.
// Cues without positive duration are skipped; if none survive, Burn fails
// rather than emitting an unsubtitled video.
func (c *Composer) Burn(ctx context.Context, videoPath string, cues []types.Cue, style types.CaptionStyle, outPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("burn input %s: %w", videoPath, err)
	}

	var filters []string
	for _, cue := range cues {
		if cue.Duration() <= 0 {
			log.Printf("[burn] skipping cue %q: non-positive duration %.3fs", cue.Text, cue.Duration())
			continue
		}
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		filters = append(filters, drawtextFilter(cue, style))
	}
	if len(filters) == 0 {
		return fmt.Errorf("no displayable caption cues")
	}

	args := []string{"-y",
		"-i", videoPath,
		"-vf", strings.Join(filters, ","),
		"-c:v", "libx264",
		"-preset", c.preset,
		"-crf", fmt.Sprintf("%d", c.crf),
		"-c:a", "copy",
		outPath,
	}

	result, err := c.runner.Run(ctx, c.ffmpegPath, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg caption burn: %w: %s", err, tail(result.Stderr))
	}
	return nil
}

// drawtextFilter renders one cue as a time-bounded drawtext overlay.
func drawtextFilter(cue types.Cue, style types.CaptionStyle) string {
	var y string
	switch style.Position {
	case types.PositionTop:
		y = "h*0.10"
	case types.PositionCenter:
		y = "(h-text_h)/2"
	default:
		// Bottom-anchored near, not at, the frame edge.
		y = "h*0.85-text_h"
	}

	text := wrapText(cue.Text, style.MaxLineChars)

	var sb strings.Builder
	fmt.Fprintf(&sb, "drawtext=text='%s'", escapeDrawtext(text))
	fmt.Fprintf(&sb, ":font='%s'", style.Font)
	fmt.Fprintf(&sb, ":fontsize=%d", style.FontSize)
	fmt.Fprintf(&sb, ":fontcolor=%s", style.FillColor)
	if style.StrokeWidth > 0 {
		fmt.Fprintf(&sb, ":borderw=%.0f:bordercolor=%s", style.StrokeWidth, style.StrokeColor)
	}
	if style.Background {
		fmt.Fprintf(&sb, ":box=1:boxcolor=%s:boxborderw=8", style.BackgroundColor)
	}
	fmt.Fprintf(&sb, ":x=(w-text_w)/2:y=%s", y)
	fmt.Fprintf(&sb, ":enable='between(t,%.3f,%.3f)'", cue.Start, cue.End)
	return sb.String()
}

// wrapText inserts line breaks so no rendered line exceeds maxChars, keeping
// the overlay within the frame width.
func wrapText(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	words := strings.Fields(text)
	var lines []string
	var line string
	for _, word := range words {
		if line == "" {
			line = word
			continue
		}
		if len(line)+1+len(word) > maxChars {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// escapeDrawtext escapes characters the drawtext filter treats specially.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "%", "\\%")
	return s
}

// tail trims ffmpeg's stderr down to its last few lines for error messages.
func tail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}
