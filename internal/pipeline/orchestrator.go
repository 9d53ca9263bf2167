package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"storycast/internal/captions"
	"storycast/internal/config"
	"storycast/internal/jobs"
	"storycast/internal/speech"
	"storycast/internal/types"
)

// Stage names the four pipeline steps.
type Stage string

const (
	StageSpeech  Stage = "speech"
	StageNarrate Stage = "narrate"
	StageCaption Stage = "caption"
	StageBurn    Stage = "burn"
)

// Status is the orchestrator's state-machine position.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSpeech  Status = "speech"
	StatusNarrate Status = "narrate"
	StatusCaption Status = "caption"
	StatusBurn    Status = "burn"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// validTransition enforces the linear stage order: no branching, no skips,
// failure reachable from any active stage.
func validTransition(from, to Status) bool {
	switch from {
	case StatusIdle, StatusDone, StatusFailed:
		return to == StatusSpeech
	case StatusSpeech:
		return to == StatusNarrate || to == StatusFailed
	case StatusNarrate:
		return to == StatusCaption || to == StatusFailed
	case StatusCaption:
		return to == StatusBurn || to == StatusFailed
	case StatusBurn:
		return to == StatusDone || to == StatusFailed
	default:
		return false
	}
}

// Composer is the slice of media operations the orchestrator drives.
type Composer interface {
	Merge(ctx context.Context, videoPath, audioPath, outPath string) error
	Burn(ctx context.Context, videoPath string, cues []types.Cue, style types.CaptionStyle, outPath string) error
}

// Result reports one finished (or failed) pipeline run.
type Result struct {
	JobID        string
	AudioFile    string
	NarratedFile string
	CaptionFile  string
	FinalFile    string
	FailedStage  Stage
	Err          error
}

// Orchestrator runs the four-stage pipeline for one job at a time. It holds
// no history between runs: everything it knows about past jobs comes from
// scanning the output directory.
type Orchestrator struct {
	cfg      *config.Config
	layout   jobs.Layout
	synth    speech.Synthesizer
	scribe   speech.Transcriber
	composer Composer

	mu     sync.Mutex
	status Status
}

// New wires an orchestrator from explicitly constructed services.
func New(cfg *config.Config, layout jobs.Layout, synth speech.Synthesizer, scribe speech.Transcriber, composer Composer) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		layout:   layout,
		synth:    synth,
		scribe:   scribe,
		composer: composer,
		status:   StatusIdle,
	}
}

// Status returns the current state-machine position.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Orchestrator) transition(to Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !validTransition(o.status, to) {
		return fmt.Errorf("invalid stage transition: %s -> %s", o.status, to)
	}
	o.status = to
	return nil
}

// Run executes the full pipeline for job. The job is validated before an id
// is allocated; each stage runs only after the previous one succeeded, and a
// failure stops the run with the failing stage recorded. Artifacts of earlier
// stages are left on disk either way.
func (o *Orchestrator) Run(ctx context.Context, job *types.Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := o.layout.Ensure(); err != nil {
		return nil, fmt.Errorf("output layout: %w", err)
	}

	if job.ID == "" {
		id, err := jobs.NextID(o.layout.FinalDir())
		if err != nil {
			return nil, fmt.Errorf("allocate job id: %w", err)
		}
		job.ID = id
	}

	log.Printf("[pipeline] job %s started", job.ID)
	state := &types.PipelineState{
		JobID:      job.ID,
		StoryTitle: job.StoryTitle,
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	result := &Result{JobID: job.ID}
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		o.saveState(state)
	}()

	fail := func(stage Stage, err error) (*Result, error) {
		if terr := o.transition(StatusFailed); terr != nil {
			log.Printf("[pipeline] %v", terr)
		}
		result.FailedStage = stage
		result.Err = err
		state.FailedStage = string(stage)
		state.Error = err.Error()
		log.Printf("[pipeline] job %s failed at %s: %v", job.ID, stage, err)
		return result, fmt.Errorf("%s stage: %w", stage, err)
	}

	// Stage 1: speech synthesis.
	if err := o.transition(StatusSpeech); err != nil {
		return nil, err
	}
	log.Printf("[pipeline] job %s: synthesizing narration", job.ID)
	audioFile := o.layout.AudioFile(job.ID)
	if err := o.synth.Synthesize(ctx, job.StoryText, job.Voice, audioFile); err != nil {
		return fail(StageSpeech, err)
	}
	result.AudioFile = audioFile
	state.AudioFile = audioFile

	// Stage 2: narration merge.
	if err := o.transition(StatusNarrate); err != nil {
		return nil, err
	}
	log.Printf("[pipeline] job %s: merging narration onto background video", job.ID)
	narratedFile := o.layout.NarratedFile(job.ID)
	if err := o.composer.Merge(ctx, job.BackgroundVideo, audioFile, narratedFile); err != nil {
		return fail(StageNarrate, err)
	}
	result.NarratedFile = narratedFile
	state.NarratedFile = narratedFile

	// Stage 3: caption generation.
	if err := o.transition(StatusCaption); err != nil {
		return nil, err
	}
	log.Printf("[pipeline] job %s: transcribing and segmenting captions", job.ID)
	segments, err := o.scribe.Transcribe(ctx, audioFile, o.cfg.Transcribe.Language, job.MaxWordsPerCue > 0)
	if err != nil {
		return fail(StageCaption, err)
	}
	cues := captions.Segment(segments, job.MaxWordsPerCue)
	captionFile := o.layout.CaptionFile(job.ID)
	if err := captions.WriteSRTFile(captionFile, cues); err != nil {
		return fail(StageCaption, err)
	}
	result.CaptionFile = captionFile
	state.CaptionFile = captionFile

	// Stage 4: caption burn-in. Consumes the caption stage's artifact, not
	// the in-memory cues, so the stage chain stays resumable by file.
	if err := o.transition(StatusBurn); err != nil {
		return nil, err
	}
	log.Printf("[pipeline] job %s: burning %d caption cue(s)", job.ID, len(cues))
	burnCues, err := captions.ReadSRTFile(captionFile)
	if err != nil {
		return fail(StageBurn, err)
	}
	finalFile := o.layout.FinalFile(job.ID)
	if err := o.composer.Burn(ctx, narratedFile, burnCues, job.Style, finalFile); err != nil {
		return fail(StageBurn, err)
	}
	result.FinalFile = finalFile
	state.FinalFile = finalFile

	if err := o.transition(StatusDone); err != nil {
		return nil, err
	}
	log.Printf("[pipeline] job %s done: %s", job.ID, finalFile)
	return result, nil
}

// saveState persists the run state JSON next to the run's artifacts. Losing
// it is not fatal to the run.
func (o *Orchestrator) saveState(state *types.PipelineState) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("[pipeline] could not marshal state for job %s: %v", state.JobID, err)
		return
	}
	path := o.layout.StateFile(state.JobID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[pipeline] could not save %s: %v", path, err)
	}
}
