package captions

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"storycast/internal/types"
)

// FormatTimestamp renders seconds as an SRT timestamp, HH:MM:SS,mmm.
// Milliseconds are rounded half away from zero before the hour, minute and
// second fields are floor-divided out. Negative offsets are a precondition
// failure.
func FormatTimestamp(seconds float64) (string, error) {
	if seconds < 0 {
		return "", fmt.Errorf("negative timestamp %.3f", seconds)
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms), nil
}

// ParseTimestamp converts an SRT timestamp back into seconds. A period is
// accepted in place of the standard comma.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ".", ","))
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// WriteSRT serializes cues as SRT blocks: 1-based index, timestamp line,
// text, blank line. Cues with empty text are never emitted.
func WriteSRT(w io.Writer, cues []types.Cue) error {
	index := 0
	for _, cue := range cues {
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		start, err := FormatTimestamp(cue.Start)
		if err != nil {
			return fmt.Errorf("cue %d: %w", index+1, err)
		}
		end, err := FormatTimestamp(cue.End)
		if err != nil {
			return fmt.Errorf("cue %d: %w", index+1, err)
		}
		index++
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n", index, start, end, cue.Text); err != nil {
			return fmt.Errorf("write cue %d: %w", index, err)
		}
	}
	return nil
}

// WriteSRTFile writes cues to path. On error the file must not be treated
// as a valid artifact; the caller checks the returned error, not the file.
func WriteSRTFile(path string, cues []types.Cue) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSRT(f, cues); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ReadSRTFile parses an SRT file back into cues. Blocks without a valid
// timestamp line are skipped.
func ReadSRTFile(path string) ([]types.Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cues []types.Cue
	blocks := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		// lines[0] is the index; the timestamp line is the first containing -->
		tsLine := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				tsLine = i
				break
			}
		}
		if tsLine == -1 || tsLine+1 >= len(lines) {
			continue
		}
		parts := strings.SplitN(lines[tsLine], "-->", 2)
		start, errStart := ParseTimestamp(parts[0])
		end, errEnd := ParseTimestamp(parts[1])
		if errStart != nil || errEnd != nil {
			continue
		}
		text := strings.TrimSpace(strings.Join(lines[tsLine+1:], "\n"))
		if text == "" {
			continue
		}
		cues = append(cues, types.Cue{Start: start, End: end, Text: text})
	}
	return cues, nil
}
