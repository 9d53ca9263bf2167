package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storycast/internal/types"
)

// fakeRunner answers ffprobe duration queries from a per-path table and
// records every command it is asked to run.
type fakeRunner struct {
	durations map[string]string
	frameRate string
	calls     [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (commandResult, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)

	if name == "ffprobe" {
		path := args[len(args)-1]
		if hasArg(args, "r_frame_rate") {
			return commandResult{Stdout: f.frameRate + "\n"}, nil
		}
		return commandResult{Stdout: f.durations[path] + "\n"}, nil
	}
	return commandResult{}, nil
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if strings.Contains(a, want) {
			return true
		}
	}
	return false
}

func (f *fakeRunner) lastFFmpeg(t *testing.T) []string {
	t.Helper()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i][0] == "ffmpeg" {
			return f.calls[i]
		}
	}
	t.Fatal("no ffmpeg invocation recorded")
	return nil
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestMergeLoopsShortVideo verifies a 10s video under a 15s narration loops
// and the output is trimmed to exactly the narration duration.
func TestMergeLoopsShortVideo(t *testing.T) {
	dir := t.TempDir()
	video := writeStub(t, dir, "background.mp4")
	audio := writeStub(t, dir, "001.mp3")

	runner := &fakeRunner{
		durations: map[string]string{video: "10.0", audio: "15.0"},
		frameRate: "30/1",
	}
	c := NewComposerForTests(runner, "fast", 20)

	if err := c.Merge(context.Background(), video, audio, filepath.Join(dir, "out.mp4")); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	args := runner.lastFFmpeg(t)
	if got := argAfter(args, "-stream_loop"); got != "2" {
		t.Fatalf("-stream_loop = %q, want %q", got, "2")
	}
	if got := argAfter(args, "-t"); got != "15.000" {
		t.Fatalf("-t = %q, want %q", got, "15.000")
	}
	if got := argAfter(args, "-r"); got != "30.000" {
		t.Fatalf("-r = %q, want %q", got, "30.000")
	}
}

// TestMergeTrimsLongVideo verifies a 10s video over a 6s narration is cut to
// the narration duration without looping.
func TestMergeTrimsLongVideo(t *testing.T) {
	dir := t.TempDir()
	video := writeStub(t, dir, "background.mp4")
	audio := writeStub(t, dir, "002.mp3")

	runner := &fakeRunner{
		durations: map[string]string{video: "10.0", audio: "6.0"},
		frameRate: "25/1",
	}
	c := NewComposerForTests(runner, "fast", 20)

	if err := c.Merge(context.Background(), video, audio, filepath.Join(dir, "out.mp4")); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	args := runner.lastFFmpeg(t)
	if argAfter(args, "-stream_loop") != "" {
		t.Fatalf("unexpected -stream_loop in %v", args)
	}
	if got := argAfter(args, "-t"); got != "6.000" {
		t.Fatalf("-t = %q, want %q", got, "6.000")
	}
}

// TestMergeMissingInput verifies a missing input fails before ffmpeg runs.
func TestMergeMissingInput(t *testing.T) {
	dir := t.TempDir()
	audio := writeStub(t, dir, "001.mp3")
	runner := &fakeRunner{}
	c := NewComposerForTests(runner, "fast", 20)

	err := c.Merge(context.Background(), filepath.Join(dir, "missing.mp4"), audio, filepath.Join(dir, "out.mp4"))
	if err == nil {
		t.Fatal("expected error for missing video input")
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no commands, got %d", len(runner.calls))
	}
}

// TestMergeRejectsZeroDuration verifies a container that probes to zero
// duration fails before any loop count is computed.
func TestMergeRejectsZeroDuration(t *testing.T) {
	dir := t.TempDir()
	video := writeStub(t, dir, "background.mp4")
	audio := writeStub(t, dir, "001.mp3")

	runner := &fakeRunner{
		durations: map[string]string{video: "0.0", audio: "15.0"},
		frameRate: "30/1",
	}
	c := NewComposerForTests(runner, "fast", 20)

	err := c.Merge(context.Background(), video, audio, filepath.Join(dir, "out.mp4"))
	if err == nil || !strings.Contains(err.Error(), "non-positive duration") {
		t.Fatalf("error = %v, want non-positive duration failure", err)
	}
	for _, call := range runner.calls {
		if call[0] == "ffmpeg" {
			t.Fatalf("ffmpeg ran despite zero video duration: %v", call)
		}
	}
}

// TestBurnRejectsEmptyCueSet verifies Burn fails without invoking ffmpeg when
// every cue is unusable.
func TestBurnRejectsEmptyCueSet(t *testing.T) {
	dir := t.TempDir()
	video := writeStub(t, dir, "narrated.mp4")
	runner := &fakeRunner{}
	c := NewComposerForTests(runner, "fast", 20)

	cues := []types.Cue{
		{Start: 1.0, End: 1.0, Text: "zero duration"},
		{Start: 2.0, End: 1.0, Text: "negative duration"},
		{Start: 3.0, End: 4.0, Text: "   "},
	}
	err := c.Burn(context.Background(), video, cues, testStyle(), filepath.Join(dir, "out.mp4"))
	if err == nil {
		t.Fatal("expected error when no cues are displayable")
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no commands, got %d", len(runner.calls))
	}
}

// TestBurnSkipsBadCues verifies unusable cues are dropped while good ones
// still render.
func TestBurnSkipsBadCues(t *testing.T) {
	dir := t.TempDir()
	video := writeStub(t, dir, "narrated.mp4")
	runner := &fakeRunner{}
	c := NewComposerForTests(runner, "fast", 20)

	cues := []types.Cue{
		{Start: 1.0, End: 1.0, Text: "dropped"},
		{Start: 1.0, End: 2.5, Text: "kept"},
	}
	if err := c.Burn(context.Background(), video, cues, testStyle(), filepath.Join(dir, "out.mp4")); err != nil {
		t.Fatalf("Burn: %v", err)
	}

	args := runner.lastFFmpeg(t)
	vf := argAfter(args, "-vf")
	if strings.Contains(vf, "dropped") {
		t.Fatalf("dropped cue rendered: %s", vf)
	}
	if !strings.Contains(vf, "kept") {
		t.Fatalf("kept cue missing: %s", vf)
	}
	if !strings.Contains(vf, "enable='between(t,1.000,2.500)'") {
		t.Fatalf("missing enable window: %s", vf)
	}
	if got := argAfter(args, "-c:a"); got != "copy" {
		t.Fatalf("-c:a = %q, want copy", got)
	}
}

// TestDrawtextFilterAnchors verifies the vertical anchor for each position.
func TestDrawtextFilterAnchors(t *testing.T) {
	cue := types.Cue{Start: 0, End: 1, Text: "hi"}
	for _, tc := range []struct {
		position string
		wantY    string
	}{
		{types.PositionTop, "y=h*0.10"},
		{types.PositionCenter, "y=(h-text_h)/2"},
		{types.PositionBottom, "y=h*0.85-text_h"},
	} {
		style := testStyle()
		style.Position = tc.position
		filter := drawtextFilter(cue, style)
		if !strings.Contains(filter, tc.wantY) {
			t.Fatalf("position %q: filter %q missing %q", tc.position, filter, tc.wantY)
		}
		if !strings.Contains(filter, "x=(w-text_w)/2") {
			t.Fatalf("position %q: filter not horizontally centered: %q", tc.position, filter)
		}
	}
}

// TestDrawtextFilterStyle verifies stroke and background toggles.
func TestDrawtextFilterStyle(t *testing.T) {
	cue := types.Cue{Start: 0, End: 1, Text: "styled"}

	style := testStyle()
	style.StrokeWidth = 2
	style.Background = true
	style.BackgroundColor = "black@0.5"
	filter := drawtextFilter(cue, style)
	if !strings.Contains(filter, "borderw=2:bordercolor=black") {
		t.Fatalf("missing stroke: %q", filter)
	}
	if !strings.Contains(filter, "box=1:boxcolor=black@0.5") {
		t.Fatalf("missing box: %q", filter)
	}

	plain := testStyle()
	plain.StrokeWidth = 0
	plain.Background = false
	filter = drawtextFilter(cue, plain)
	if strings.Contains(filter, "borderw") || strings.Contains(filter, "box=1") {
		t.Fatalf("unexpected stroke or box: %q", filter)
	}
}

// TestWrapText verifies greedy wrapping at the character limit.
func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox jumps over", 15)
	want := "the quick brown\nfox jumps over"
	if got != want {
		t.Fatalf("wrapText = %q, want %q", got, want)
	}
	if wrapText("unbroken", 0) != "unbroken" {
		t.Fatal("maxChars 0 must disable wrapping")
	}
}

// TestEscapeDrawtext verifies drawtext metacharacters are escaped.
func TestEscapeDrawtext(t *testing.T) {
	got := escapeDrawtext(`it's 100%: \done`)
	want := `it\'s 100\%\: \\done`
	if got != want {
		t.Fatalf("escapeDrawtext = %q, want %q", got, want)
	}
}

func testStyle() types.CaptionStyle {
	return types.CaptionStyle{
		Font:         "DejaVu Sans",
		FontSize:     42,
		FillColor:    "white",
		StrokeColor:  "black",
		StrokeWidth:  2,
		Position:     types.PositionBottom,
		MaxLineChars: 42,
	}
}
