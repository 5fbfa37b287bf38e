package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tules/tules/pkg/sessions"
	"github.com/tules/tules/tui/theme"
)

const summaryWidth = 60

// View renders the current state.
func (m *Model) View() string {
	switch m.state {
	case stateDetail:
		return m.viewScrollable("Transcript")
	case stateLogView:
		return m.viewScrollable("Job log")
	default:
		return m.viewListing()
	}
}

func (m *Model) viewListing() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Sessions (%s)", m.provider.Name())))
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(theme.MutedStyle.Render("No sessions found for this directory."))
		b.WriteString("\n")
		return b.String()
	}

	header := fmt.Sprintf("  %-8s  %-5s  %-*s  %-16s", "ID", "KIND", summaryWidth, "SUMMARY", "LAST ACTIVITY")
	b.WriteString(theme.HeaderStyle.Render(header))
	b.WriteString("\n")

	for i, rec := range m.records {
		line := fmt.Sprintf("  %-8s  %-5s  %-*s  %-16s",
			rec.ShortID(),
			rec.Kind,
			summaryWidth, listSummary(rec),
			rec.LastTimestamp.Format("2006-01-02 15:04"),
		)
		if i == m.cursor {
			line = theme.SelectedStyle.Render("▶" + line[1:])
		} else if rec.Kind == sessions.KindAgent {
			line = theme.AgentStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(theme.WarningStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(theme.HelpStyle.Render(
		"↑/↓ move · enter view · l log · r resume · f fork · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewScrollable(title string) string {
	rec := m.current()
	heading := title
	if rec != nil {
		heading = fmt.Sprintf("%s — %s", title, rec.ShortID())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(heading))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(theme.WarningStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(theme.HelpStyle.Render("↑/↓ scroll · r resume · f fork · b/esc back · q quit"))
	return b.String()
}

func renderTranscript(rec *sessions.Record, messages []sessions.Message) string {
	var b strings.Builder
	b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("Session %s · %d messages", rec.SessionID, len(messages))))
	b.WriteString("\n\n")
	for _, msg := range messages {
		style := theme.RoleAssistantStyle
		if msg.Role == "user" {
			style = theme.RoleUserStyle
		}
		b.WriteString(style.Render(strings.ToUpper(msg.Role)))
		if !msg.Timestamp.IsZero() {
			b.WriteString(theme.MutedStyle.Render("  " + msg.Timestamp.Format("15:04:05")))
		}
		b.WriteString("\n")
		b.WriteString(msg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderListing is the non-interactive fallback: a one-shot table for
// callers whose input is not a terminal.
func RenderListing(providerName string, records []*sessions.Record) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Sessions (%s)\n", providerName))
	if len(records) == 0 {
		b.WriteString("No sessions found for this directory.\n")
		return b.String()
	}

	rows := [][]string{{"ID", "KIND", "SUMMARY", "LAST ACTIVITY"}}
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ShortID(),
			string(rec.Kind),
			listSummary(rec),
			rec.LastTimestamp.Format("2006-01-02 15:04"),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func listSummary(rec *sessions.Record) string {
	s := rec.Summary
	if s == "" {
		s = "(no summary)"
	}
	if len(s) > summaryWidth {
		s = s[:summaryWidth-1] + "…"
	}
	return s
}
