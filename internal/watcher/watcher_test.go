package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/watchfire-io/runlog/internal/config"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantType EventType
		wantOK   bool
	}{
		{name: "logs", path: "/x/exp/logs.json", wantType: EventMetricsChanged, wantOK: true},
		{name: "config", path: "/x/exp/config.json", wantType: EventConfigChanged, wantOK: true},
		{name: "temp file", path: "/x/exp/logs.json.tmp", wantOK: false},
		{name: "numbered temp file", path: "/x/exp/logs.json.3829104.tmp", wantOK: false},
		{name: "plot", path: "/x/exp/logs.png", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := classify(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("classify(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got != tt.wantType {
				t.Errorf("classify(%q) = %v, want %v", tt.path, got, tt.wantType)
			}
		})
	}
}

func TestWatcherReportsAtomicRewrite(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.SetDebounce(10 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := config.WriteFileAtomic(filepath.Join(dir, config.LogsFileName), []byte("{}")); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		if ev.Type != EventMetricsChanged {
			t.Errorf("event type = %v, want metrics", ev.Type)
		}
		if filepath.Base(ev.Path) != config.LogsFileName {
			t.Errorf("event path = %q", ev.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.SetDebounce(10 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	w.Stop()
	w.Stop()
}
