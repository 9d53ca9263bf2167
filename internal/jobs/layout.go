package jobs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Fixed subdirectory names under the output root. Every stage owns exactly
// one of them.
const (
	audioDir    = "audio"
	narratedDir = "videowithvoice"
	captionDir  = "srt"
	finalDir    = "finalvideo"
)

// Layout derives every artifact path from the output root and a job id.
type Layout struct {
	Base string
}

// NewLayout creates a layout rooted at base.
func NewLayout(base string) Layout {
	return Layout{Base: base}
}

// Ensure creates the output root and its four stage directories. Every
// creation is attempted even after a failure; the joined error tells the
// caller which ones are unusable.
func (l Layout) Ensure() error {
	var errs []error
	for _, dir := range []string{l.Base, l.AudioDir(), l.NarratedDir(), l.CaptionDir(), l.FinalDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("[layout] could not create %s: %v", dir, err)
			errs = append(errs, fmt.Errorf("create %s: %w", dir, err))
		}
	}
	return errors.Join(errs...)
}

func (l Layout) AudioDir() string    { return filepath.Join(l.Base, audioDir) }
func (l Layout) NarratedDir() string { return filepath.Join(l.Base, narratedDir) }
func (l Layout) CaptionDir() string  { return filepath.Join(l.Base, captionDir) }
func (l Layout) FinalDir() string    { return filepath.Join(l.Base, finalDir) }

// AudioFile is the speech stage's output for a job.
func (l Layout) AudioFile(id string) string {
	return filepath.Join(l.AudioDir(), id+".wav")
}

// NarratedFile is the narration-merge stage's output for a job.
func (l Layout) NarratedFile(id string) string {
	return filepath.Join(l.NarratedDir(), id+".mp4")
}

// CaptionFile is the caption stage's output for a job.
func (l Layout) CaptionFile(id string) string {
	return filepath.Join(l.CaptionDir(), id+".srt")
}

// FinalFile is the burn stage's output for a job.
func (l Layout) FinalFile(id string) string {
	return filepath.Join(l.FinalDir(), id+".mp4")
}

// StateFile is where the run's pipeline state JSON is saved.
func (l Layout) StateFile(id string) string {
	return filepath.Join(l.Base, id+".json")
}
