package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsModification(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "ticket_implementation_plan.md")
	if err := os.WriteFile(planPath, []byte("1. A\n"), 0644); err != nil {
		t.Fatalf("failed to seed plan: %v", err)
	}

	changed := make(chan string, 4)
	w, err := NewWatcher(planPath, func(path string) { changed <- path }, nil)
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Stop()
	w.Start()

	if err := os.WriteFile(planPath, []byte("1. A\n2. B\n"), 0644); err != nil {
		t.Fatalf("failed to modify plan: %v", err)
	}

	select {
	case path := <-changed:
		want, _ := filepath.Abs(planPath)
		if path != want {
			t.Errorf("callback path = %q, want %q", path, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("modification not reported")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.md")
	if err := os.WriteFile(planPath, []byte("1. A\n"), 0644); err != nil {
		t.Fatalf("failed to seed plan: %v", err)
	}

	changed := make(chan string, 4)
	w, err := NewWatcher(planPath, func(path string) { changed <- path }, nil)
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	defer w.Stop()
	w.Start()

	if err := os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write sibling: %v", err)
	}

	select {
	case path := <-changed:
		t.Fatalf("unexpected callback for %q", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.md")
	if err := os.WriteFile(planPath, []byte("1. A\n"), 0644); err != nil {
		t.Fatalf("failed to seed plan: %v", err)
	}

	w, err := NewWatcher(planPath, nil, nil)
	if err != nil {
		t.Fatalf("NewWatcher returned error: %v", err)
	}
	w.Start()
	w.Stop()
	w.Stop()
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "no", "such", "plan.md"), nil, nil)
	if err == nil {
		t.Fatal("expected error for missing parent directory")
	}
}
