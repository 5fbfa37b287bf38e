// Package browser is the interactive session browser: a single-threaded
// state machine over discovered sessions, with resume and fork handed off to
// the caller after the UI exits.
package browser

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tules/tules/pkg/provider"
	"github.com/tules/tules/pkg/sessions"
	"github.com/tules/tules/pkg/store"
)

type state int

const (
	stateListing state = iota
	stateDetail
	stateLogView
)

// ActionType says what the caller should do after the browser exits.
type ActionType int

const (
	ActionNone ActionType = iota
	// ActionResume continues the selected session in the foreground.
	ActionResume
	// ActionFork branches a new session from the selected one.
	ActionFork
)

// Action is the browser's exit result. Resume and fork replace the browser
// process, so they are carried out by the caller once the terminal has been
// restored, never from inside the event loop.
type Action struct {
	Type   ActionType
	Record *sessions.Record
}

// Model is the browser state machine. It is single-threaded: all mutation
// happens inside Update.
type Model struct {
	provider provider.Profile
	records  []*sessions.Record
	jobs     []*store.JobRecord

	keys     KeyMap
	state    state
	cursor   int
	viewport viewport.Model
	status   string
	width    int
	height   int
	ready    bool

	// Action is set when the user chose resume or fork; read it after the
	// program returns.
	Action Action
}

// New creates a browser over discovered sessions. Job records are used only
// to correlate sessions with their background-job logs.
func New(p provider.Profile, records []*sessions.Record, jobs []*store.JobRecord) *Model {
	return &Model{
		provider: p,
		records:  records,
		jobs:     jobs,
		keys:     DefaultKeyMap,
	}
}

// Init is the first command executed by the program.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) current() *sessions.Record {
	if len(m.records) == 0 {
		return nil
	}
	return m.records[m.cursor]
}

// correlatedJob finds the background job behind a session, if any. The
// supervisor pins the session id at launch, so the ids match directly; older
// records are matched by prefix.
func (m *Model) correlatedJob(rec *sessions.Record) *store.JobRecord {
	if rec == nil {
		return nil
	}
	for _, job := range m.jobs {
		if job.ID == rec.SessionID ||
			strings.HasPrefix(job.ID, rec.SessionID) ||
			strings.HasPrefix(rec.SessionID, job.ID) {
			return job
		}
	}
	return nil
}
