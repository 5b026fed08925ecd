package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"recall/internal/api"
	"recall/internal/inbox"
)

// uploadQueueMsg delivers an inbox scan.
type uploadQueueMsg struct {
	arrivals []inbox.Arrival
	err      error
}

// arrivalMsg delivers one freshly settled recording from the watcher.
type arrivalMsg struct {
	arrival inbox.Arrival
}

// uploadDoneMsg delivers the backend's verdict on a recording.
type uploadDoneMsg struct {
	path   string
	result api.UploadResult
	err    error
}

// UploadScreen feeds recordings to the backend. The inbox queue fills
// from a directory scan plus live watcher arrivals; the file picker
// covers recordings that live anywhere else. Processing runs one
// recording at a time.
type UploadScreen struct {
	styles   Styles
	retro    bool
	client   *api.Client
	inbox    *inbox.Watcher
	picker   filepicker.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	picking       bool
	queue         []inbox.Arrival
	cursor        int
	uploading     bool
	uploadingPath string
	result        *api.UploadResult
	uploadErr     error

	width  int
	height int
}

// NewUploadScreen builds the standard upload screen.
func NewUploadScreen(deps Deps) *UploadScreen {
	return newUploadScreen(deps, false)
}

// NewRetroUploadScreen builds the CRT upload screen.
func NewRetroUploadScreen(deps Deps) *UploadScreen {
	return newUploadScreen(deps, true)
}

func newUploadScreen(deps Deps, retro bool) *UploadScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = deps.Styles.Spinner

	fp := filepicker.New()
	fp.AllowedTypes = []string{".mp4", ".mov", ".m4v", ".mkv", ".webm", ".avi"}
	if deps.Inbox != nil {
		fp.CurrentDirectory = deps.Inbox.Dir()
	}

	return &UploadScreen{
		styles:   deps.Styles,
		retro:    retro,
		client:   deps.Client,
		inbox:    deps.Inbox,
		picker:   fp,
		spinner:  sp,
		renderer: NewMarkdownRenderer(retro, 72),
	}
}

func (m *UploadScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{m.scanInbox()}
	if m.inbox != nil {
		cmds = append(cmds, waitForArrival(m.inbox))
	}
	return tea.Batch(cmds...)
}

func (m *UploadScreen) scanInbox() tea.Cmd {
	watcher := m.inbox
	return func() tea.Msg {
		if watcher == nil {
			return uploadQueueMsg{}
		}
		arrivals, err := watcher.Scan()
		return uploadQueueMsg{arrivals: arrivals, err: err}
	}
}

// waitForArrival blocks on the watcher's channel and resolves to the
// next settled recording. Re-issued after every arrival.
func waitForArrival(w *inbox.Watcher) tea.Cmd {
	return func() tea.Msg {
		a, ok := <-w.Arrivals()
		if !ok {
			return nil
		}
		return arrivalMsg{arrival: a}
	}
}

func (m *UploadScreen) startUpload(path string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		// Processing transcribes and face-matches the whole recording;
		// allow it minutes, not seconds.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		result, err := client.Upload(ctx, path)
		return uploadDoneMsg{path: path, result: result, err: err}
	}
}

func (m *UploadScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.uploading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case uploadQueueMsg:
		if msg.err == nil {
			m.queue = msg.arrivals
			if m.cursor >= len(m.queue) {
				m.cursor = 0
			}
		}
		return m, nil

	case arrivalMsg:
		m.addArrival(msg.arrival)
		if m.inbox == nil {
			return m, nil
		}
		return m, waitForArrival(m.inbox)

	case uploadDoneMsg:
		m.uploading = false
		m.uploadingPath = ""
		m.uploadErr = msg.err
		if msg.err == nil {
			result := msg.result
			m.result = &result
			m.removeFromQueue(msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *UploadScreen) handleKey(msg tea.KeyMsg) (Screen, tea.Cmd) {
	// File picker owns the keyboard while it is open.
	if m.picking {
		if msg.String() == "esc" {
			m.picking = false
			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
			m.picking = false
			return m, m.beginUpload(path)
		}
		if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
			m.uploadErr = fmt.Errorf("%s is not a recording", filepath.Base(path))
			m.picking = false
			return m, nil
		}
		return m, cmd
	}

	// One recording at a time; ignore keys mid-upload except scrolling.
	if m.uploading {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.queue)-1 {
			m.cursor++
		}
	case "enter":
		if m.result != nil {
			// Acknowledge the verdict, then jump to the person.
			result := *m.result
			m.result = nil
			open := OpenConversationMsg{Name: result.PersonName()}
			return m, func() tea.Msg { return open }
		}
		if m.cursor < len(m.queue) {
			return m, m.beginUpload(m.queue[m.cursor].Path)
		}
	case "o":
		m.result = nil
		m.uploadErr = nil
		m.picking = true
		return m, m.picker.Init()
	case "r":
		m.uploadErr = nil
		return m, m.scanInbox()
	}
	return m, nil
}

// beginUpload flips the in-flight guard and kicks off processing. The
// guard stays set until uploadDoneMsg lands, so a second enter cannot
// start a parallel upload of the same recording.
func (m *UploadScreen) beginUpload(path string) tea.Cmd {
	m.uploading = true
	m.uploadingPath = path
	m.uploadErr = nil
	m.result = nil
	return tea.Batch(m.spinner.Tick, m.startUpload(path))
}

func (m *UploadScreen) addArrival(a inbox.Arrival) {
	for _, queued := range m.queue {
		if queued.Path == a.Path {
			return
		}
	}
	// Newest first, matching Scan order.
	m.queue = append([]inbox.Arrival{a}, m.queue...)
}

func (m *UploadScreen) removeFromQueue(path string) {
	kept := m.queue[:0]
	for _, a := range m.queue {
		if a.Path != path {
			kept = append(kept, a)
		}
	}
	m.queue = kept
	if m.cursor >= len(m.queue) {
		m.cursor = 0
	}
}

func (m *UploadScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.picker.Height = height - 6
	if m.picker.Height < 3 {
		m.picker.Height = 3
	}
}

// resultMarkdown summarizes the backend's verdict for the glamour panel.
func resultMarkdown(r api.UploadResult) string {
	name := r.PersonName()

	var face string
	switch r.FaceStatus {
	case "new":
		face = fmt.Sprintf("New face — enrolled as **%s**.", name)
	case "known":
		face = fmt.Sprintf("Recognized **%s** from earlier conversations.", name)
	default:
		face = fmt.Sprintf("Face not recognized; filed under **%s**.", name)
	}

	var sb strings.Builder
	sb.WriteString("## Recording processed\n\n")
	sb.WriteString(face)
	sb.WriteString(fmt.Sprintf("\n\n%d lines captured.\n", len(r.Lines)))
	if len(r.Lines) > 0 {
		sb.WriteString(fmt.Sprintf("\n> %s: %s\n", r.Lines[0].Speaker, r.Lines[0].Text))
	}
	return sb.String()
}

func (m *UploadScreen) View() string {
	s := m.styles

	if m.picking {
		title := s.Title.Render("Pick a recording")
		if m.retro {
			title = s.Bold.Render(">> SELECT TAPE")
		}
		return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			m.picker.View(),
			s.Muted.Render("esc cancel"),
		))
	}

	if m.uploading {
		name := filepath.Base(m.uploadingPath)
		line := m.spinner.View() + " Processing " + name + "... this can take a few minutes."
		if m.retro {
			line = m.spinner.View() + " DIGESTING TAPE: " + strings.ToUpper(name)
		}
		return s.Content.Render(line)
	}

	var sections []string

	if m.result != nil {
		panel := RenderMarkdown(m.renderer, resultMarkdown(*m.result))
		hint := s.Muted.Render("enter view conversation")
		if m.retro {
			hint = s.Muted.Render("[ENTER] REVIEW TRANSCRIPT")
		}
		sections = append(sections, s.Card.Render(panel), hint, "")
	}

	if m.uploadErr != nil {
		sections = append(sections,
			s.Error.Render("Upload failed: ")+s.Muted.Render(m.uploadErr.Error()), "")
	}

	sections = append(sections, m.renderQueue()...)

	help := s.Muted.Render("enter upload • o browse • r rescan")
	if m.retro {
		help = s.Muted.Render("[ENTER] FEED  [O] BROWSE  [R] RESCAN")
	}
	sections = append(sections, "", help)

	return s.Content.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *UploadScreen) renderQueue() []string {
	s := m.styles

	title := s.Title.MarginBottom(0).Render("Inbox")
	if m.retro {
		title = s.Bold.Render("TAPE QUEUE")
	}

	if len(m.queue) == 0 {
		dir := ""
		if m.inbox != nil {
			dir = m.inbox.Dir()
		}
		empty := "No recordings waiting."
		if dir != "" {
			empty += " Drop one into " + dir + " or press o to browse."
		}
		if m.retro {
			empty = ">> QUEUE EMPTY. INSERT TAPE."
		}
		return []string{title, s.Muted.Render(empty)}
	}

	lines := []string{title}
	for i, a := range m.queue {
		name := filepath.Base(a.Path)
		size := humanize.Bytes(uint64(a.Size))
		entry := fmt.Sprintf("%s  %s", name, s.Muted.Render(size))
		if m.retro {
			entry = fmt.Sprintf("%s  %s", strings.ToUpper(name), s.Muted.Render(size))
		}
		if i == m.cursor {
			lines = append(lines, s.TabHint.Render("> ")+s.Bold.Render(entry))
			continue
		}
		lines = append(lines, "  "+s.Body.Render(entry))
	}
	return lines
}
