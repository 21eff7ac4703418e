package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/watchfire-io/runlog/internal/metrics"
)

// LoadFunc reads the current metric log from disk.
type LoadFunc func() tea.Msg

// Model is the live metrics view.
type Model struct {
	title    string
	load     LoadFunc
	log      *metrics.Log
	plotPath string
	lastLoad string
	err      error
	width    int
}

// NewModel creates the view. load is run on start and on manual reload.
func NewModel(title string, load LoadFunc) Model {
	return Model{title: title, load: load}
}

func (m Model) Init() tea.Cmd {
	if m.load == nil {
		return nil
	}
	return tea.Cmd(m.load)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Reload):
			return m, m.Init()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case MetricsLoadedMsg:
		m.log = msg.Log
		m.err = nil
		if msg.PlotPath != "" {
			m.plotPath = msg.PlotPath
		}
		if !msg.At.IsZero() {
			m.lastLoad = msg.At.Format("15:04:05")
		}
	case ErrorMsg:
		m.err = msg.Err
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.log == nil || m.log.Len() == 0 {
		b.WriteString(dimStyle.Render("No metrics logged yet."))
		b.WriteString("\n")
	} else {
		width := nameWidth(m.log)
		for _, g := range m.log.Groups() {
			b.WriteString(groupStyle.Render(g.Name))
			b.WriteString("\n")
			for _, name := range g.Metrics {
				b.WriteString(renderRow(name, m.log.Series(name), width))
				b.WriteString("\n")
			}
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) statusBar() string {
	parts := []string{keys.Quit.Help().Key + " " + keys.Quit.Help().Desc, keys.Reload.Help().Key + " " + keys.Reload.Help().Desc}
	if m.lastLoad != "" {
		parts = append(parts, "updated "+m.lastLoad)
	}
	if m.plotPath != "" {
		parts = append(parts, "plot "+m.plotPath)
	}
	bar := statusBarStyle
	if m.width > 0 {
		bar = bar.Width(m.width)
	}
	return bar.Render(" " + strings.Join(parts, " · "))
}

func renderRow(name string, s metrics.Series, width int) string {
	step, value, ok := s.Latest()
	latest := dimStyle.Render("—")
	if ok {
		latest = valueStyle.Render(fmt.Sprintf("%g", value)) + dimStyle.Render(fmt.Sprintf(" @ %d", step))
	}
	return fmt.Sprintf("  %s  %s  %s",
		nameStyle.Render(fmt.Sprintf("%-*s", width, name)),
		latest,
		dimStyle.Render(fmt.Sprintf("(%d/%d points)", s.Count(), len(s))),
	)
}

func nameWidth(l *metrics.Log) int {
	w := 0
	for _, name := range l.Names() {
		if len(name) > w {
			w = len(name)
		}
	}
	return w
}
