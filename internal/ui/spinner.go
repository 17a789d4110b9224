package ui

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type model struct {
	spinner spinner.Model
	status  string
	done    bool
}

func newModel(status string) model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = NewStyle("#7D56F4")
	return model{spinner: s, status: status}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Msg:
		switch msg.kind {
		case MsgStatus:
			m.status = msg.data.(string)
		case MsgStop:
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + styles.Help(m.status) + "\n"
}

// Spinner shows an animated status line until stopped.
//
// Start and Stop may each be called once; Stop blocks until the program has
// restored the terminal. SetStatus is safe to call from any goroutine.
type Spinner struct {
	program *tea.Program
	started chan struct{}
	done    chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSpinner creates a Spinner that renders to out.
func NewSpinner(out io.Writer) *Spinner {
	program := tea.NewProgram(newModel(""),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	return &Spinner{program: program, started: make(chan struct{}), done: make(chan struct{})}
}

// Start begins rendering with the given status.
func (s *Spinner) Start(status string) {
	s.startOnce.Do(func() {
		go func() {
			defer close(s.done)
			_, _ = s.program.Run()
		}()
		close(s.started)
		s.program.Send(statusMsg(status))
	})
}

// SetStatus replaces the status line. It is a no-op before Start and after Stop.
func (s *Spinner) SetStatus(status string) {
	if !s.running() {
		return
	}
	s.program.Send(statusMsg(status))
}

// Stop clears the status line and waits for the program to exit.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		if !s.isStarted() {
			return
		}
		s.program.Send(stopMsg())
		<-s.done
	})
}

func (s *Spinner) isStarted() bool {
	select {
	case <-s.started:
		return true
	default:
		return false
	}
}

func (s *Spinner) running() bool {
	if !s.isStarted() {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
