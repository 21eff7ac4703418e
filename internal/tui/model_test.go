package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/runlog/internal/metrics"
)

func sampleLog(t *testing.T) *metrics.Log {
	t.Helper()
	l := metrics.NewLog()
	if err := l.Set(map[string]float64{"loss": 0.5}, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.Set(map[string]float64{"eval/acc": 0.75}, 3); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestModelViewEmpty(t *testing.T) {
	m := NewModel("exp", nil)
	if !strings.Contains(m.View(), "No metrics logged yet.") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestModelShowsLatestValues(t *testing.T) {
	var model tea.Model = NewModel("exp", nil)
	model, _ = model.Update(MetricsLoadedMsg{Log: sampleLog(t), PlotPath: "/tmp/logs.png", At: time.Now()})

	view := model.View()
	for _, want := range []string{"eval", "uncategorized", "loss", "0.5", "eval/acc", "0.75", "@ 3", "(1/4 points)", "/tmp/logs.png"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestModelErrorClearedOnLoad(t *testing.T) {
	var model tea.Model = NewModel("exp", nil)
	model, _ = model.Update(ErrorMsg{Err: errors.New("boom")})
	if !strings.Contains(model.View(), "boom") {
		t.Fatal("error not shown")
	}

	model, _ = model.Update(MetricsLoadedMsg{Log: sampleLog(t)})
	if strings.Contains(model.View(), "boom") {
		t.Error("error should clear after a successful load")
	}
}

func TestModelQuitAndReload(t *testing.T) {
	loads := 0
	load := func() tea.Msg {
		loads++
		return MetricsLoadedMsg{Log: metrics.NewLog()}
	}
	var model tea.Model = NewModel("exp", load)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("reload should return a command")
	}
	if _, ok := cmd().(MetricsLoadedMsg); !ok || loads != 1 {
		t.Errorf("reload command did not run the loader (loads=%d)", loads)
	}

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
