package jobs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
)

// idPattern matches artifact filenames that carry a job id, e.g. 017.mp4.
var idPattern = regexp.MustCompile(`^(\d{3,})\.`)

// NextID scans the final-video directory and returns the next free job id,
// zero-padded to at least three digits (wider once the highest id needs more).
// A missing or empty directory bootstraps at "001". A scan failure is an
// error; an id is never guessed, since a reused id would overwrite a
// finished video.
func NextID(finalDir string) (string, error) {
	entries, err := os.ReadDir(finalDir)
	if errors.Is(err, fs.ErrNotExist) {
		return "001", nil
	}
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", finalDir, err)
	}

	maxID := 0
	for _, entry := range entries {
		m := idPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}

	width := 3
	if digits := len(strconv.Itoa(maxID)); digits > width {
		width = digits
	}
	return fmt.Sprintf("%0*d", width, maxID+1), nil
}
