// Package tui implements the live metrics view for an experiment.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run shows the live view until the user quits. updates is fed by the
// caller (typically from watcher events) and may be nil.
func Run(title string, load LoadFunc, updates <-chan tea.Msg) error {
	ref := &programRef{}
	p := tea.NewProgram(NewModel(title, load), tea.WithAltScreen())
	ref.Set(p)
	defer ref.Clear()

	done := make(chan struct{})
	defer close(done)
	if updates != nil {
		go func() {
			for {
				select {
				case <-done:
					return
				case msg, ok := <-updates:
					if !ok {
						return
					}
					ref.Send(msg)
				}
			}
		}()
	}

	_, err := p.Run()
	return err
}
