package ui

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"recall/internal/api"
)

// Highlight is one notable moment: the latest thing somebody said to
// you, pointing back at the exact session and line it came from.
type Highlight struct {
	PersonName string
	AvatarURL  string
	Timestamp  int64
	Index      int
	Excerpt    string
}

// DeriveHighlights picks one highlight per person: the most recent
// session, excerpted at the first line spoken by the other side (your
// own lines are a poor reminder of who you met). People with no
// recorded sessions contribute nothing. Newest first.
func DeriveHighlights(people []api.Person, histories map[string]api.History) []Highlight {
	highlights := make([]Highlight, 0, len(people))
	for _, p := range people {
		h, ok := histories[p.Name]
		if !ok || len(h.Sessions) == 0 {
			continue
		}

		latest := 0
		for i, session := range h.Sessions {
			if session.Timestamp > h.Sessions[latest].Timestamp {
				latest = i
			}
		}
		session := h.Sessions[latest]
		if len(session.Lines) == 0 {
			continue
		}

		idx := 0
		for i, line := range session.Lines {
			if line.Speaker != "Me" {
				idx = i
				break
			}
		}

		highlights = append(highlights, Highlight{
			PersonName: p.Name,
			AvatarURL:  p.ImageURL,
			Timestamp:  session.Timestamp,
			Index:      idx,
			Excerpt:    session.Lines[idx].Text,
		})
	}

	sort.Slice(highlights, func(i, j int) bool {
		return highlights[i].Timestamp > highlights[j].Timestamp
	})
	return highlights
}

// highlightsLoadedMsg delivers the derived highlights.
type highlightsLoadedMsg struct {
	items []Highlight
	err   error
}

// highlightItem adapts Highlight to list.Item.
type highlightItem struct {
	highlight Highlight
}

func (i highlightItem) Title() string { return "“" + i.highlight.Excerpt + "”" }
func (i highlightItem) Description() string {
	return i.highlight.PersonName + " • " + time.Unix(i.highlight.Timestamp, 0).Format("Jan 2, 2006")
}
func (i highlightItem) FilterValue() string {
	return i.highlight.PersonName + " " + i.highlight.Excerpt
}

// HighlightsScreen surfaces the freshest moment from each person's
// history. Selecting one deep-links into the conversation at that line.
type HighlightsScreen struct {
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

// NewHighlightsScreen builds the standard highlights feed.
func NewHighlightsScreen(deps Deps) *HighlightsScreen {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.
		Foreground(deps.Styles.Theme.Accent).
		BorderLeftForeground(deps.Styles.Theme.Accent)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.
		Foreground(deps.Styles.Theme.Muted).
		BorderLeftForeground(deps.Styles.Theme.Accent)
	return newHighlightsScreen(deps, d, false)
}

// NewRetroHighlightsScreen builds the CRT highlights feed.
func NewRetroHighlightsScreen(deps Deps) *HighlightsScreen {
	return newHighlightsScreen(deps, retroDelegate{styles: deps.Styles}, true)
}

func newHighlightsScreen(deps Deps, delegate list.ItemDelegate, retro bool) *HighlightsScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Highlights"
	if retro {
		l.Title = "LATEST TRANSMISSIONS"
	}
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = deps.Styles.Title.MarginBottom(0)

	return &HighlightsScreen{
		styles:  deps.Styles,
		retro:   retro,
		client:  deps.Client,
		list:    l,
		spinner: sp,
		loading: true,
	}
}

func (m *HighlightsScreen) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadHighlights())
}

// loadHighlights fans out one history fetch per person, a few at a
// time, then derives the feed from whatever came back.
func (m *HighlightsScreen) loadHighlights() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		people, err := client.People(ctx)
		if err != nil {
			return highlightsLoadedMsg{err: err}
		}

		var mu sync.Mutex
		histories := make(map[string]api.History, len(people))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, p := range people {
			g.Go(func() error {
				h, err := client.Conversation(gctx, p.Name)
				if err != nil {
					return err
				}
				mu.Lock()
				histories[p.Name] = h
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return highlightsLoadedMsg{err: err}
		}

		return highlightsLoadedMsg{items: DeriveHighlights(people, histories)}
	}
}

func (m *HighlightsScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case highlightsLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		items := make([]list.Item, 0, len(msg.items))
		for _, hl := range msg.items {
			items = append(items, highlightItem{highlight: hl})
		}
		cmds = append(cmds, m.list.SetItems(items))

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "enter":
				if sel, ok := m.list.SelectedItem().(highlightItem); ok {
					open := OpenConversationMsg{
						Name:               sel.highlight.PersonName,
						AvatarURL:          sel.highlight.AvatarURL,
						HighlightTimestamp: sel.highlight.Timestamp,
						HighlightIndex:     sel.highlight.Index,
						HasHighlight:       true,
					}
					return m, func() tea.Msg { return open }
				}
				return m, nil
			case "r":
				if !m.loading {
					m.loading = true
					m.loadErr = nil
					return m, tea.Batch(m.spinner.Tick, m.loadHighlights())
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

func (m *HighlightsScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width-4, height-3)
}

func (m *HighlightsScreen) View() string {
	s := m.styles

	if m.loading {
		return s.Content.Render(m.spinner.View() + " Gathering highlights...")
	}
	if m.loadErr != nil {
		return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.Error.Render("Could not gather highlights."),
			s.Muted.Render(m.loadErr.Error()),
			"",
			s.Muted.Render("r retry"),
		))
	}
	if len(m.list.Items()) == 0 {
		empty := "Nothing to highlight yet. Conversations show up here once recall has some."
		if m.retro {
			empty = ">> NO TRANSMISSIONS RECORDED"
		}
		return s.Content.Render(s.Muted.Render(empty))
	}

	help := s.Muted.Render("enter jump to moment • / filter • r refresh")
	if m.retro {
		help = s.Muted.Render("[ENTER] REPLAY  [/] SEARCH  [R] RELOAD")
	}
	return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left, m.list.View(), help))
}
