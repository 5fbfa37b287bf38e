package browser

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tules/tules/pkg/sessions"
)

// Update handles all state transitions.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.state {
		case stateListing:
			return m.updateListing(msg)
		default:
			return m.updateScrollable(msg)
		}
	}
	return m, nil
}

func (m *Model) updateListing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	// Cursor movement clamps at both ends.
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		if len(m.records) > 0 {
			m.cursor = len(m.records) - 1
		}

	case key.Matches(msg, m.keys.View):
		if rec := m.current(); rec != nil {
			m.openDetail(rec)
		}

	case key.Matches(msg, m.keys.Log):
		rec := m.current()
		if rec == nil {
			break
		}
		job := m.correlatedJob(rec)
		if job == nil {
			m.status = "no background job is associated with this session"
			break
		}
		m.openLog(job.LogPath)

	case key.Matches(msg, m.keys.Resume):
		if cmd := m.requestResume(); cmd != nil {
			return m, cmd
		}

	case key.Matches(msg, m.keys.Fork):
		if cmd := m.requestFork(); cmd != nil {
			return m, cmd
		}
	}
	return m, nil
}

// Resume and fork work from the detail and log views too: the cursor still
// points at the session being inspected.
func (m *Model) updateScrollable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Back):
		m.state = stateListing
		return m, nil
	case key.Matches(msg, m.keys.Resume):
		if cmd := m.requestResume(); cmd != nil {
			return m, cmd
		}
		return m, nil
	case key.Matches(msg, m.keys.Fork):
		if cmd := m.requestFork(); cmd != nil {
			return m, cmd
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) requestResume() tea.Cmd {
	rec := m.current()
	if rec == nil {
		return nil
	}
	m.Action = Action{Type: ActionResume, Record: rec}
	return tea.Quit
}

func (m *Model) requestFork() tea.Cmd {
	rec := m.current()
	if rec == nil {
		return nil
	}
	if !m.provider.SupportsFork() {
		m.status = fmt.Sprintf("%s does not support forking sessions", m.provider.Name())
		return nil
	}
	m.Action = Action{Type: ActionFork, Record: rec}
	return tea.Quit
}

func (m *Model) openDetail(rec *sessions.Record) {
	messages, err := sessions.LoadDetail(m.provider, rec)
	if err != nil {
		m.status = fmt.Sprintf("cannot read transcript: %v", err)
		return
	}
	if len(messages) == 0 {
		m.status = "session has no readable messages"
		return
	}
	m.viewport.SetContent(renderTranscript(rec, messages))
	m.viewport.GotoTop()
	m.state = stateDetail
}

func (m *Model) openLog(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		m.status = fmt.Sprintf("cannot read log: %v", err)
		return
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		content = "(log is empty)"
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
	m.state = stateLogView
}
