package browser

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tules/tules/pkg/provider"
	"github.com/tules/tules/pkg/sessions"
	"github.com/tules/tules/pkg/store"
)

// Run starts the interactive browser and blocks until the user exits. The
// returned Action tells the caller whether to hand the terminal over to a
// resume or fork command.
func Run(p provider.Profile, records []*sessions.Record, jobs []*store.JobRecord) (Action, error) {
	m := New(p, records, jobs)
	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return Action{}, err
	}
	if fm, ok := final.(*Model); ok {
		return fm.Action, nil
	}
	return m.Action, nil
}
