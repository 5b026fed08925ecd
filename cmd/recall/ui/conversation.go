package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recall/internal/api"
	"recall/internal/nav"
)

// conversationLoadedMsg delivers one person's full history.
type conversationLoadedMsg struct {
	history api.History
	err     error
}

// ConversationScreen shows everything recalled about one person,
// session by session. When the target carries a highlight it scrolls
// the recorded moment into view on load. Closing it returns to the
// tab underneath.
type ConversationScreen struct {
	styles   Styles
	retro    bool
	client   *api.Client
	target   nav.ConversationTarget
	viewport viewport.Model
	spinner  spinner.Model

	loading bool
	loadErr error
	history api.History

	width  int
	height int
}

// NewConversationScreen builds the standard conversation view.
func NewConversationScreen(deps Deps) *ConversationScreen {
	return newConversationScreen(deps, false)
}

// NewRetroConversationScreen builds the CRT conversation view.
func NewRetroConversationScreen(deps Deps) *ConversationScreen {
	return newConversationScreen(deps, true)
}

func newConversationScreen(deps Deps, retro bool) *ConversationScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	vp := viewport.New(0, 0)

	var target nav.ConversationTarget
	if deps.Nav.Conversation != nil {
		target = deps.Nav.Conversation.Clone()
	}

	return &ConversationScreen{
		styles:   deps.Styles,
		retro:    retro,
		client:   deps.Client,
		target:   target,
		viewport: vp,
		spinner:  sp,
		loading:  true,
	}
}

func (m *ConversationScreen) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadHistory())
}

func (m *ConversationScreen) loadHistory() tea.Cmd {
	client := m.client
	name := m.target.Name
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		h, err := client.Conversation(ctx, name)
		return conversationLoadedMsg{history: h, err: err}
	}
}

func (m *ConversationScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case conversationLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.history = msg.history
		if msg.err == nil {
			m.refreshTranscript(true)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace", "q":
			return m, func() tea.Msg { return CloseConversationMsg{} }
		case "r":
			if !m.loading {
				m.loading = true
				m.loadErr = nil
				return m, tea.Batch(m.spinner.Tick, m.loadHistory())
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ConversationScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = height - lipgloss.Height(m.renderHeader()) - 2
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	if !m.loading && m.loadErr == nil {
		// Re-wrap to the new width; keep the scroll position.
		m.refreshTranscript(false)
	}
}

// refreshTranscript rebuilds the viewport content. When jump is set and
// the target names a recorded moment, that line is scrolled into view.
func (m *ConversationScreen) refreshTranscript(jump bool) {
	content, highlightLine := m.buildTranscript()
	m.viewport.SetContent(content)
	if jump && highlightLine >= 0 {
		offset := highlightLine - m.viewport.Height/3
		if offset < 0 {
			offset = 0
		}
		m.viewport.SetYOffset(offset)
	}
}

// buildTranscript renders the full history and returns the content
// plus the absolute line number of the highlighted moment (-1 when the
// target carries none). Line numbers are tracked chunk by chunk so the
// deep link lands exactly, wrapping included.
func (m *ConversationScreen) buildTranscript() (string, int) {
	s := m.styles
	innerWidth := m.viewport.Width
	if innerWidth <= 0 {
		innerWidth = 76
	}

	hlSession, hlLine := m.highlightPosition()

	var sb strings.Builder
	lineCount := 0
	highlightAt := -1
	appendChunk := func(chunk string) {
		sb.WriteString(chunk)
		sb.WriteString("\n")
		lineCount += strings.Count(chunk, "\n") + 1
	}

	wrap := lipgloss.NewStyle().Width(innerWidth)

	for si, session := range m.history.Sessions {
		if si > 0 {
			appendChunk("")
		}
		appendChunk(s.Subtitle.Render(m.formatSessionTime(session.Timestamp)))
		appendChunk(s.RenderDivider(innerWidth))

		for li, line := range session.Lines {
			marker := "  "
			if si == hlSession && li == hlLine {
				highlightAt = lineCount
				marker = s.Warning.Render("▶ ")
				if m.retro {
					marker = s.Warning.Render(">> ")
				}
			}
			speaker := m.speakerStyle(line.Speaker).Render(line.Speaker + ":")
			appendChunk(wrap.Render(marker + speaker + " " + line.Text))
		}
	}

	if len(m.history.Sessions) == 0 {
		empty := "No conversations recorded with " + m.target.Name + " yet."
		if m.retro {
			empty = ">> NO TAPES ON FILE FOR THIS SUBJECT"
		}
		appendChunk(s.Muted.Render(empty))
	}

	return sb.String(), highlightAt
}

// highlightPosition resolves the target's optional highlight into
// (session index, line index). A timestamp picks the session, falling
// back to the most recent one; the index picks the line within it.
// Returns (-1, -1) when the target carries no highlight.
func (m *ConversationScreen) highlightPosition() (int, int) {
	if !m.target.HasHighlight() || len(m.history.Sessions) == 0 {
		return -1, -1
	}

	sessionIdx := -1
	if m.target.HighlightTimestamp != nil {
		_, sessionIdx = m.history.SessionAt(*m.target.HighlightTimestamp)
	}
	if sessionIdx < 0 {
		// Latest session by timestamp.
		for i, session := range m.history.Sessions {
			if sessionIdx < 0 || session.Timestamp > m.history.Sessions[sessionIdx].Timestamp {
				sessionIdx = i
			}
		}
	}

	lineIdx := 0
	if m.target.HighlightIndex != nil {
		lineIdx = *m.target.HighlightIndex
	}
	if lineIdx < 0 || lineIdx >= len(m.history.Sessions[sessionIdx].Lines) {
		lineIdx = 0
	}
	return sessionIdx, lineIdx
}

func (m *ConversationScreen) speakerStyle(speaker string) lipgloss.Style {
	if speaker == "Me" {
		return m.styles.Info.Bold(true)
	}
	return m.styles.TabHint.Bold(true)
}

func (m *ConversationScreen) formatSessionTime(ts int64) string {
	t := time.Unix(ts, 0)
	if m.retro {
		return "== SESSION " + t.Format("2006-01-02 15:04") + " =="
	}
	return t.Format("Mon, Jan 2 2006 at 3:04 PM")
}

func (m *ConversationScreen) renderHeader() string {
	s := m.styles

	if m.retro {
		header := " SUBJECT: " + strings.ToUpper(m.target.Name)
		if m.target.Headline != "" {
			header += "  (" + strings.ToUpper(m.target.Headline) + ")"
		}
		return s.Bold.Render(header)
	}

	name := s.Title.MarginBottom(0).Render(m.target.Name)
	meta := make([]string, 0, 2)
	if m.target.Headline != "" {
		meta = append(meta, m.target.Headline)
	}
	if m.target.AvatarURL != "" {
		meta = append(meta, m.target.AvatarURL)
	}
	if len(meta) == 0 {
		return name
	}
	return lipgloss.JoinVertical(lipgloss.Left, name, s.Muted.Render(strings.Join(meta, " • ")))
}

func (m *ConversationScreen) View() string {
	s := m.styles

	if m.loading {
		return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			"",
			m.spinner.View()+" Rewinding the tape...",
		))
	}
	if m.loadErr != nil {
		return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			"",
			s.Error.Render("Could not load this conversation."),
			s.Muted.Render(m.loadErr.Error()),
			"",
			s.Muted.Render("r retry • esc back"),
		))
	}

	help := s.Muted.Render(fmt.Sprintf("%d sessions • %d lines • ↑/↓ scroll • esc back",
		len(m.history.Sessions), m.history.TotalLines()))
	if m.retro {
		help = s.Muted.Render(fmt.Sprintf("[%d TAPES / %d LINES]  [ESC] EJECT",
			len(m.history.Sessions), m.history.TotalLines()))
	}

	return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		help,
	))
}
