// Package app wires the recall TUI together: the agreement gate that
// runs before anything else, the navigation coordinator that owns which
// screen is mounted, and the chrome around the screens. Screens report
// intent through ui messages; all navigation state changes happen here.
package app

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"recall/cmd/recall/ui"
	"recall/internal/api"
	"recall/internal/consent"
	"recall/internal/inbox"
	"recall/internal/logging"
	"recall/internal/nav"
)

// Version is stamped at build time.
var Version = "0.1.0"

// Chrome rows around the mounted screen: the header line plus divider,
// the tab bar, and the footer with its top margin.
const (
	headerHeight = 2
	tabBarHeight = 1
	footerHeight = 2
)

// Options carries the app's collaborators. Registry defaults to the
// full ten-slot screen set.
type Options struct {
	Client   *api.Client
	Consent  *consent.Manager
	Inbox    *inbox.Watcher
	Registry *ui.Registry
}

// Model is the root bubbletea model. It runs the agreement gate until
// acceptance is durably recorded, then turns into the navigation
// coordinator for the screen set.
type Model struct {
	styles   ui.Styles
	registry *ui.Registry
	nav      *nav.State
	consent  *consent.Manager
	client   *api.Client
	inbox    *inbox.Watcher

	// Agreement gate
	checking    bool
	hasAccepted bool
	ticked      bool
	accepting   bool
	consentErr  error
	gateSpinner spinner.Model
	gateRender  *glamour.TermRenderer

	screen ui.Screen

	width    int
	height   int
	ready    bool
	quitting bool
}

// New builds the root model. The theme always starts standard; retro is
// a per-launch choice made from the home screen.
func New(opts Options) Model {
	registry := opts.Registry
	if registry == nil {
		registry = ui.DefaultRegistry()
	}

	styles := ui.DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return Model{
		styles:      styles,
		registry:    registry,
		nav:         nav.NewState(),
		consent:     opts.Consent,
		client:      opts.Client,
		inbox:       opts.Inbox,
		checking:    true,
		gateSpinner: sp,
		gateRender:  ui.NewMarkdownRenderer(false, 72),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.gateSpinner.Tick, checkConsent(m.consent))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.screen != nil {
			m.screen.SetSize(m.contentWidth(), m.contentHeight())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.hasAccepted {
			if m.checking || m.accepting {
				var cmd tea.Cmd
				m.gateSpinner, cmd = m.gateSpinner.Update(msg)
				return m, cmd
			}
			return m, nil
		}

	case consentCheckedMsg:
		m.checking = false
		if msg.accepted {
			m.hasAccepted = true
			return m.mountScreen()
		}
		return m, nil

	case consentSavedMsg:
		m.accepting = false
		if msg.err != nil {
			// The write failed: stay on the form so the user can retry.
			m.consentErr = msg.err
			return m, nil
		}
		m.hasAccepted = true
		return m.mountScreen()

	case ui.OpenConversationMsg:
		return m.openConversation(msg)

	case ui.NavigateTabMsg:
		return m.navigateTab(msg.Tab)

	case ui.CloseConversationMsg:
		return m.closeConversation()

	case ui.ToggleThemeMsg:
		if m.canToggleTheme() {
			return m.toggleTheme()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forwardToScreen(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if !m.hasAccepted {
		return m.handleGateKey(msg)
	}

	switch msg.String() {
	case "1", "2", "3", "4":
		tabs := nav.Tabs()
		idx := int(msg.String()[0] - '1')
		if idx < len(tabs) {
			return m.navigateTab(tabs[idx])
		}
	case "tab":
		return m.cycleTab(1)
	case "shift+tab":
		return m.cycleTab(-1)
	case "t":
		// The toggle only exists on the home screen; anywhere else the
		// key belongs to the mounted screen.
		if m.canToggleTheme() {
			return m.toggleTheme()
		}
	}
	return m.forwardToScreen(msg)
}

// ============================================================================
// NAVIGATION
// ============================================================================

func (m Model) navigateTab(tab nav.Tab) (tea.Model, tea.Cmd) {
	if !m.nav.NavigateTab(tab) {
		return m, nil
	}
	logging.Nav("tab: %s", tab)
	logging.Audit().NavEvent(logging.AuditNavTab, string(tab))
	return m.mountScreen()
}

func (m Model) cycleTab(delta int) (tea.Model, tea.Cmd) {
	tabs := nav.Tabs()
	snap := m.nav.Snapshot()
	current := 0
	for i, tab := range tabs {
		if tab == snap.ActiveTab {
			current = i
			break
		}
	}
	next := (current + delta + len(tabs)) % len(tabs)
	return m.navigateTab(tabs[next])
}

func (m Model) openConversation(msg ui.OpenConversationMsg) (tea.Model, tea.Cmd) {
	target := nav.ConversationTarget{
		Name:      msg.Name,
		AvatarURL: msg.AvatarURL,
		Headline:  msg.Headline,
	}
	if msg.HasHighlight {
		ts := msg.HighlightTimestamp
		idx := msg.HighlightIndex
		target.HighlightTimestamp = &ts
		target.HighlightIndex = &idx
	}

	if !m.nav.OpenConversation(target) {
		logging.NavDebug("open conversation ignored: no name in payload")
		return m, nil
	}
	logging.Nav("conversation: %s", msg.Name)
	logging.Audit().NavEvent(logging.AuditNavOpen, msg.Name)
	return m.mountScreen()
}

func (m Model) closeConversation() (tea.Model, tea.Cmd) {
	if !m.nav.CloseConversation() {
		return m, nil
	}
	logging.Nav("conversation closed")
	logging.Audit().NavEvent(logging.AuditNavClose, string(m.nav.Snapshot().ActiveTab))
	return m.mountScreen()
}

func (m Model) canToggleTheme() bool {
	snap := m.nav.Snapshot()
	return snap.ActiveTab == nav.TabHome && !snap.InConversation()
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.nav.ToggleTheme()
	name := "standard"
	if m.nav.Snapshot().RetroTheme {
		name = "retro"
	}
	logging.Nav("theme: %s", name)
	logging.Audit().NavEvent(logging.AuditNavTheme, name)
	return m.mountScreen()
}

// mountScreen tears down whatever is mounted and builds the screen the
// navigation state calls for, in the current theme.
func (m Model) mountScreen() (tea.Model, tea.Cmd) {
	snap := m.nav.Snapshot()
	m.styles = ui.NewStyles(ui.ThemeFor(snap.RetroTheme))
	deps := ui.Deps{
		Styles: m.styles,
		Client: m.client,
		Inbox:  m.inbox,
		Nav:    snap,
		Width:  m.contentWidth(),
		Height: m.contentHeight(),
	}
	m.screen = m.registry.Mount(ui.KindFor(snap), deps)
	return m, m.screen.Init()
}

func (m Model) forwardToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == nil {
		return m, nil
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return m, cmd
}

func (m Model) contentWidth() int {
	if m.width < 20 {
		return 20
	}
	return m.width
}

func (m Model) contentHeight() int {
	h := m.height - headerHeight - tabBarHeight - footerHeight
	if h < 5 {
		return 5
	}
	return h
}

// ============================================================================
// VIEW
// ============================================================================

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.quitting {
		return ""
	}
	if !m.hasAccepted {
		return m.viewGate()
	}
	if m.screen == nil {
		return "Initializing..."
	}

	snap := m.nav.Snapshot()
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(snap),
		ui.RenderTabBar(m.styles, snap, m.width),
		m.screen.View(),
		m.renderFooter(snap),
	)
}

func (m Model) renderHeader(snap nav.Snapshot) string {
	title := m.styles.Header.Render(" recall ")
	version := m.styles.Badge.Render("v" + Version)

	theme := m.styles.Success.Render("● standard")
	if snap.RetroTheme {
		theme = m.styles.Warning.Render("● RETRO")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		theme,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderFooter(snap nav.Snapshot) string {
	var help string
	switch {
	case snap.InConversation():
		help = "esc back • ↑/↓ scroll • ctrl+c exit"
	case snap.ActiveTab == nav.TabHome:
		help = "1-4 tabs • t theme • ctrl+c exit"
	default:
		help = "1-4 tabs • tab cycle • ctrl+c exit"
	}
	if snap.RetroTheme {
		switch {
		case snap.InConversation():
			help = "[ESC] EJECT  [CTRL+C] POWER OFF"
		case snap.ActiveTab == nav.TabHome:
			help = "[1-4] SECTORS  [T] DISPLAY  [CTRL+C] POWER OFF"
		default:
			help = "[1-4] SECTORS  [CTRL+C] POWER OFF"
		}
	}
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(m.styles.Footer.Render(help))
}
