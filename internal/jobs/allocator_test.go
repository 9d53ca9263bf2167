package jobs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFinal(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// TestNextIDBootstrap verifies the first id on missing and empty directories.
func TestNextIDBootstrap(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	id, err := NextID(missing)
	if err != nil {
		t.Fatalf("NextID on missing dir: %v", err)
	}
	if id != "001" {
		t.Fatalf("id = %q, want 001", id)
	}

	empty := t.TempDir()
	id, err = NextID(empty)
	if err != nil {
		t.Fatalf("NextID on empty dir: %v", err)
	}
	if id != "001" {
		t.Fatalf("id = %q, want 001", id)
	}
}

// TestNextIDMonotonic verifies that writing NNN.mp4 makes NextID return NNN+1.
func TestNextIDMonotonic(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		write string
		want  string
	}{
		{"001.mp4", "002"},
		{"007.mp4", "008"},
		{"042.mp4", "043"},
		{"999.mp4", "1000"},
		{"1000.mp4", "1001"},
	} {
		writeFinal(t, dir, tc.write)
		got, err := NextID(dir)
		if err != nil {
			t.Fatalf("NextID after %s: %v", tc.write, err)
		}
		if got != tc.want {
			t.Fatalf("NextID after %s = %q, want %q", tc.write, got, tc.want)
		}
	}
}

// TestNextIDWidth verifies padding grows with the highest existing id.
func TestNextIDWidth(t *testing.T) {
	dir := t.TempDir()
	writeFinal(t, dir, "12345.mp4")
	got, err := NextID(dir)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if got != "12346" {
		t.Fatalf("NextID = %q, want 12346", got)
	}
}

// TestNextIDIgnoresOtherFiles verifies non-id filenames do not contribute.
func TestNextIDIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notes.txt", "12.mp4", "final.mp4", "0xff.mp4"} {
		writeFinal(t, dir, name)
	}
	got, err := NextID(dir)
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if got != "001" {
		t.Fatalf("NextID = %q, want 001", got)
	}
}

// TestNextIDScanFailure verifies a scan error is surfaced instead of an id
// that could collide.
func TestNextIDScanFailure(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "finalvideo")
	if err := os.WriteFile(notADir, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := NextID(notADir); err == nil {
		t.Fatal("expected error scanning a non-directory")
	}
}
