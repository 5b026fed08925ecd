package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"recall/internal/api"
	"recall/internal/inbox"
)

const welcomeMarkdown = `## Welcome back

recall keeps track of the people you meet and what you talked about.
Drop a recording into the inbox (or upload one from the **Upload** tab)
and it becomes a searchable conversation in your memory bank.
`

// homeStatsMsg carries the dashboard numbers.
type homeStatsMsg struct {
	people  int
	pending int
	err     error
}

// HomeScreen is the landing dashboard: connection info, memory bank
// stats, and the key hints. It is the only screen that advertises the
// theme toggle, since the toggle only works here.
type HomeScreen struct {
	styles   Styles
	retro    bool
	client   *api.Client
	inbox    *inbox.Watcher
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	loading bool
	people  int
	pending int
	loadErr error

	width  int
	height int
}

// NewHomeScreen builds the standard home screen.
func NewHomeScreen(deps Deps) *HomeScreen {
	return newHomeScreen(deps, false)
}

// NewRetroHomeScreen builds the CRT rendition of the home screen.
func NewRetroHomeScreen(deps Deps) *HomeScreen {
	return newHomeScreen(deps, true)
}

func newHomeScreen(deps Deps, retro bool) *HomeScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	return &HomeScreen{
		styles:   deps.Styles,
		retro:    retro,
		client:   deps.Client,
		inbox:    deps.Inbox,
		spinner:  sp,
		renderer: NewMarkdownRenderer(retro, 72),
		loading:  true,
	}
}

func (m *HomeScreen) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadStats())
}

// loadStats asks the backend who it remembers and counts recordings
// waiting in the inbox. The two lookups run concurrently; only the
// backend one can fail the dashboard, inbox trouble just reads as zero.
func (m *HomeScreen) loadStats() tea.Cmd {
	client := m.client
	watcher := m.inbox
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var people, pending int
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			list, err := client.People(gctx)
			if err != nil {
				return err
			}
			people = len(list)
			return nil
		})
		g.Go(func() error {
			if watcher == nil {
				return nil
			}
			if arrivals, err := watcher.Scan(); err == nil {
				pending = len(arrivals)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return homeStatsMsg{err: err}
		}
		return homeStatsMsg{people: people, pending: pending}
	}
}

func (m *HomeScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case homeStatsMsg:
		m.loading = false
		m.people = msg.people
		m.pending = msg.pending
		m.loadErr = msg.err

	case tea.KeyMsg:
		if msg.String() == "r" && !m.loading {
			m.loading = true
			m.loadErr = nil
			return m, tea.Batch(m.spinner.Tick, m.loadStats())
		}
	}
	return m, nil
}

func (m *HomeScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *HomeScreen) View() string {
	if m.retro {
		return m.viewRetro()
	}
	return m.viewStandard()
}

func (m *HomeScreen) viewStandard() string {
	s := m.styles

	welcome := RenderMarkdown(m.renderer, welcomeMarkdown)

	var status string
	switch {
	case m.loading:
		status = m.spinner.View() + " Checking in with the memory bank..."
	case m.loadErr != nil:
		status = s.Error.Render("● Backend unreachable") + " " +
			s.Muted.Render(m.client.BaseURL()) + "\n" +
			s.Muted.Render("  Start the recall backend, then press r to retry.")
	default:
		status = s.Success.Render("● Connected") + " " + s.Muted.Render(m.client.BaseURL())
	}

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Card.Render(fmt.Sprintf("%s\n%s",
			s.Title.Render(fmt.Sprintf("%d", m.people)),
			s.Muted.Render("people remembered"))),
		" ",
		s.Card.Render(fmt.Sprintf("%s\n%s",
			s.Title.Render(fmt.Sprintf("%d", m.pending)),
			s.Muted.Render("recordings waiting"))),
	)
	if m.loading || m.loadErr != nil {
		stats = ""
	}

	hints := s.Muted.Render("2 upload a recording • 4 browse people • t retro mode")

	parts := []string{welcome, status}
	if stats != "" {
		parts = append(parts, "", stats)
	}
	parts = append(parts, "", hints)

	return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *HomeScreen) viewRetro() string {
	s := m.styles

	var sb strings.Builder
	sb.WriteString(Logo(s))
	sb.WriteString("\n")
	sb.WriteString(s.Muted.Render(" PERSONAL MEMORY TERMINAL") + "\n\n")

	switch {
	case m.loading:
		sb.WriteString(" " + m.spinner.View() + " INTERROGATING MEMORY BANK...\n")
	case m.loadErr != nil:
		sb.WriteString(s.Error.Render(" !! MEMORY BANK OFFLINE") + "\n")
		sb.WriteString(s.Muted.Render(" >> "+m.client.BaseURL()) + "\n")
		sb.WriteString(s.Muted.Render(" >> PRESS R TO RETRY") + "\n")
	default:
		sb.WriteString(s.Body.Render(fmt.Sprintf(" >> MEMORY BANK ONLINE: %s", strings.ToUpper(m.client.BaseURL()))) + "\n")
		sb.WriteString(s.Body.Render(fmt.Sprintf(" >> SUBJECTS ON FILE ..... %d", m.people)) + "\n")
		sb.WriteString(s.Body.Render(fmt.Sprintf(" >> TAPES AWAITING ....... %d", m.pending)) + "\n")
		sb.WriteString(s.Success.Render(" >> ALL SYSTEMS NOMINAL") + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(s.Muted.Render(" [T] RESTORE STANDARD DISPLAY"))

	return sb.String()
}
