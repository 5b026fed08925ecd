package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recall/internal/api"
)

// peopleLoadedMsg delivers the memory bank roster.
type peopleLoadedMsg struct {
	people []api.Person
	err    error
}

// personItem adapts api.Person to list.Item.
type personItem struct {
	person api.Person
}

func (i personItem) Title() string { return i.person.Name }
func (i personItem) Description() string {
	if i.person.ImageURL == "" {
		return "no face on file"
	}
	return i.person.ImageURL
}
func (i personItem) FilterValue() string { return i.person.Name }

// MemoryScreen lists everyone the backend remembers. Selecting a
// person opens their conversation history.
type MemoryScreen struct {
	styles  Styles
	retro   bool
	client  *api.Client
	list    list.Model
	spinner spinner.Model

	loading bool
	loadErr error

	width  int
	height int
}

// NewMemoryScreen builds the standard people list.
func NewMemoryScreen(deps Deps) *MemoryScreen {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(deps.Styles.Theme.Accent).
		BorderLeftForeground(deps.Styles.Theme.Accent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(deps.Styles.Theme.Muted).
		BorderLeftForeground(deps.Styles.Theme.Accent)
	return newMemoryScreen(deps, d, false)
}

// NewRetroMemoryScreen builds the CRT people list. It swaps the default
// delegate for a dense single-line one that fits the terminal look.
func NewRetroMemoryScreen(deps Deps) *MemoryScreen {
	return newMemoryScreen(deps, retroDelegate{styles: deps.Styles}, true)
}

func newMemoryScreen(deps Deps, delegate list.ItemDelegate, retro bool) *MemoryScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Memory"
	if retro {
		l.Title = "MEMORY BANK"
	}
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = deps.Styles.Title.MarginBottom(0)

	return &MemoryScreen{
		styles:  deps.Styles,
		retro:   retro,
		client:  deps.Client,
		list:    l,
		spinner: sp,
		loading: true,
	}
}

func (m *MemoryScreen) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPeople())
}

func (m *MemoryScreen) loadPeople() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		people, err := client.People(ctx)
		return peopleLoadedMsg{people: people, err: err}
	}
}

func (m *MemoryScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case peopleLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		items := make([]list.Item, 0, len(msg.people))
		for _, p := range msg.people {
			items = append(items, personItem{person: p})
		}
		cmds = append(cmds, m.list.SetItems(items))

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "enter":
				if sel, ok := m.list.SelectedItem().(personItem); ok {
					open := OpenConversationMsg{
						Name:      sel.person.Name,
						AvatarURL: sel.person.ImageURL,
					}
					return m, func() tea.Msg { return open }
				}
				return m, nil
			case "r":
				if !m.loading {
					m.loading = true
					m.loadErr = nil
					return m, tea.Batch(m.spinner.Tick, m.loadPeople())
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *MemoryScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-4, height-3)
}

func (m *MemoryScreen) View() string {
	s := m.styles

	if m.loading {
		return s.Content.Render(m.spinner.View() + " Loading people...")
	}
	if m.loadErr != nil {
		return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.Error.Render("Could not reach the memory bank."),
			s.Muted.Render(m.loadErr.Error()),
			"",
			s.Muted.Render("r retry"),
		))
	}
	if len(m.list.Items()) == 0 {
		empty := "Nobody here yet. Upload a recording and recall will remember who you met."
		if m.retro {
			empty = ">> MEMORY BANK EMPTY. FEED IT A TAPE."
		}
		return s.Content.Render(s.Muted.Render(empty))
	}

	help := s.Muted.Render("enter open • / filter • r refresh")
	if m.retro {
		help = s.Muted.Render("[ENTER] OPEN  [/] SEARCH  [R] RELOAD")
	}
	return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left, m.list.View(), help))
}

// ============================================================================
// RETRO LIST DELEGATE
// ============================================================================

// retroDelegate draws one-line uppercase entries with a "> " cursor,
// shared by the retro list screens.
type retroDelegate struct {
	styles Styles
}

func (d retroDelegate) Height() int  { return 1 }
func (d retroDelegate) Spacing() int { return 0 }

func (d retroDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d retroDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(list.DefaultItem)
	if !ok {
		return
	}
	line := strings.ToUpper(entry.Title())
	if desc := entry.Description(); desc != "" {
		line = fmt.Sprintf("%s  %s", line, d.styles.Muted.Render(strings.ToUpper(desc)))
	}
	if index == m.Index() {
		fmt.Fprint(w, d.styles.TabHint.Render("> ")+d.styles.Bold.Render(line))
		return
	}
	fmt.Fprint(w, "  "+d.styles.Body.Render(line))
}
