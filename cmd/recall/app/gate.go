package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recall/cmd/recall/ui"
	"recall/internal/consent"
)

// The agreement gate runs before the screen set exists. Until the
// stored flag says consent was recorded, every launch lands here; a
// failed save keeps the user on the form so acceptance is never assumed
// without a durable record.

const agreementMarkdown = `# Before recall remembers anything

recall is a memory assistant. To work, it has to keep things:

- **Recordings you feed it are processed by your own recall backend**
  to transcribe what was said and recognize who you met.
- **Transcripts and face snapshots are stored by that backend**, under
  your control. Nothing leaves it.
- Conversations stay until you delete them from the backend's storage.

If that is fine, tick the box and recall will not ask again.
`

// consentCheckedMsg resolves the startup consent lookup.
type consentCheckedMsg struct {
	accepted bool
}

// consentSavedMsg resolves an acceptance write.
type consentSavedMsg struct {
	err error
}

// checkConsent resolves the stored agreement flag. Anything but a clean
// affirmative read shows the form.
func checkConsent(manager *consent.Manager) tea.Cmd {
	return func() tea.Msg {
		return consentCheckedMsg{accepted: manager.CheckStatus(context.Background())}
	}
}

// saveConsent records acceptance. The manager bounds the write with its
// own timeout.
func saveConsent(manager *consent.Manager) tea.Cmd {
	return func() tea.Msg {
		return consentSavedMsg{err: manager.Accept(context.Background())}
	}
}

func (m Model) handleGateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// No decisions while the stored status is still being resolved.
	if m.checking {
		return m, nil
	}

	switch msg.String() {
	case " ":
		if m.accepting {
			return m, nil
		}
		m.ticked = !m.ticked
		return m, nil

	case "enter", "y":
		if !m.ticked {
			// Submitting is disabled until the box is ticked.
			return m, nil
		}
		if m.accepting {
			// A save is already in flight; a second submit must not
			// start another.
			return m, nil
		}
		m.accepting = true
		m.consentErr = nil
		return m, tea.Batch(m.gateSpinner.Tick, saveConsent(m.consent))

	case "esc", "q", "n":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewGate() string {
	s := m.styles

	if m.checking {
		return s.Content.Render(m.gateSpinner.View() + " Checking your agreement status...")
	}

	panel := s.Card.Render(ui.RenderMarkdown(m.gateRender, agreementMarkdown))

	box := "[ ]"
	boxStyle := s.Muted
	if m.ticked {
		box = "[x]"
		boxStyle = s.Bold
	}
	checkbox := boxStyle.Render(box + " I understand and agree")

	var status string
	switch {
	case m.accepting:
		status = m.gateSpinner.View() + " Recording your agreement..."
	case m.consentErr != nil:
		status = lipgloss.JoinVertical(lipgloss.Left,
			s.Error.Render("Could not save your agreement: ")+s.Muted.Render(m.consentErr.Error()),
			s.Muted.Render("enter try again • esc exit"),
		)
	case m.ticked:
		status = s.Muted.Render("enter agree • space untick • esc exit")
	default:
		status = s.Muted.Render("space tick the box • esc exit")
	}

	return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left, panel, "", checkbox, "", status))
}
