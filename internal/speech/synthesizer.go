package speech

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"storycast/internal/config"
)

// Synthesizer turns story text into a narration audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, outPath string) error
}

// CommandSynthesizer shells out to a configured TTS command that accepts
//
//	--text "..." --output path/to/file.wav
//
// When no command is configured it falls back to edge-tts. The engine is
// resolved lazily, exactly once, on first use.
type CommandSynthesizer struct {
	command    string
	retries    int
	sampleRate int

	initOnce sync.Once
	initErr  error
	engine   string
}

// NewCommandSynthesizer creates a synthesizer from config.
func NewCommandSynthesizer(cfg *config.Config) *CommandSynthesizer {
	return &CommandSynthesizer{
		command:    strings.TrimSpace(cfg.Speech.Command),
		retries:    cfg.Speech.Retries,
		sampleRate: cfg.Speech.SampleRate,
	}
}

// ensureEngine resolves which TTS engine to run. Guarded by sync.Once so
// concurrent first calls cannot race the resolution.
func (s *CommandSynthesizer) ensureEngine() error {
	s.initOnce.Do(func() {
		if s.command != "" {
			s.engine = s.command
			return
		}
		if _, err := exec.LookPath("edge-tts"); err == nil {
			s.engine = "edge-tts"
			log.Println("[speech] no TTS command configured, using edge-tts")
			return
		}
		s.initErr = fmt.Errorf("no TTS engine found: set speech.command in config or install edge-tts")
	})
	return s.initErr
}

// Synthesize generates narration audio for text, retrying transient engine
// failures a bounded number of times.
func (s *CommandSynthesizer) Synthesize(ctx context.Context, text, voice, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("synthesize: empty text")
	}
	if err := s.ensureEngine(); err != nil {
		return err
	}

	attempts := s.retries
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		cmd := buildSynthesisCommand(ctx, s.engine, text, voice, outPath, s.sampleRate)
		cmd.Stderr = os.Stderr
		err = cmd.Run()
		if err == nil {
			break
		}
		log.Printf("[speech] TTS attempt %d/%d failed: %v", attempt, attempts, err)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}
	}
	if err != nil {
		return fmt.Errorf("tts failed after %d attempt(s): %w", attempts, err)
	}

	if _, statErr := os.Stat(outPath); statErr != nil {
		return fmt.Errorf("tts reported success but wrote no audio: %w", statErr)
	}
	return nil
}

// buildSynthesisCommand maps the engine to its CLI shape. edge-tts picks its
// own sample rate; the other engines are told the configured one.
func buildSynthesisCommand(ctx context.Context, engine, text, voice, outPath string, sampleRate int) *exec.Cmd {
	if engine == "edge-tts" {
		return exec.CommandContext(ctx, "edge-tts",
			"--voice", voice,
			"--text", text,
			"--write-media", outPath,
		)
	}

	args := []string{
		"--text", text,
		"--voice", voice,
		"--output", outPath,
	}
	if sampleRate > 0 {
		args = append(args, "--sample-rate", strconv.Itoa(sampleRate))
	}
	if strings.HasSuffix(engine, ".py") {
		return exec.CommandContext(ctx, "python3", append([]string{engine}, args...)...)
	}
	return exec.CommandContext(ctx, engine, args...)
}
