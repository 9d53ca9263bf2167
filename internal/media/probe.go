package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Duration returns a media file's duration in seconds via ffprobe.
func (c *Composer) Duration(ctx context.Context, path string) (float64, error) {
	result, err := c.runner.Run(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %s: %w: %s", path, err, strings.TrimSpace(result.Stderr))
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration of %s: %w", path, err)
	}
	return dur, nil
}

// FrameRate returns the video stream's frame rate via ffprobe. ffprobe
// reports it as a fraction, e.g. 30000/1001.
func (c *Composer) FrameRate(ctx context.Context, path string) (float64, error) {
	result, err := c.runner.Run(ctx, c.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe frame rate %s: %w: %s", path, err, strings.TrimSpace(result.Stderr))
	}
	return parseFrameRate(strings.TrimSpace(result.Stdout))
}

func parseFrameRate(raw string) (float64, error) {
	num, den, found := strings.Cut(raw, "/")
	if !found {
		fps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", raw, err)
		}
		return fps, nil
	}
	n, errN := strconv.ParseFloat(num, 64)
	d, errD := strconv.ParseFloat(den, 64)
	if errN != nil || errD != nil || d == 0 {
		return 0, fmt.Errorf("parse frame rate %q", raw)
	}
	return n / d, nil
}
