package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"recall/internal/api"
	"recall/internal/inbox"
	"recall/internal/logging"
	"recall/internal/nav"
)

// ScreenKind identifies one of the five screen families. The four tab
// screens map one-to-one onto nav.Tab; the conversation screen is the
// fifth kind and covers whatever tab is active underneath it.
type ScreenKind int

const (
	KindHome ScreenKind = iota
	KindUpload
	KindHighlights
	KindMemory
	KindConversation
)

// String returns the kind's name for logs.
func (k ScreenKind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindUpload:
		return "upload"
	case KindHighlights:
		return "highlights"
	case KindMemory:
		return "memory"
	case KindConversation:
		return "conversation"
	default:
		return "unknown"
	}
}

// KindForTab maps a tab to its screen kind.
func KindForTab(tab nav.Tab) ScreenKind {
	switch tab {
	case nav.TabUpload:
		return KindUpload
	case nav.TabHighlights:
		return KindHighlights
	case nav.TabMemory:
		return KindMemory
	default:
		return KindHome
	}
}

// KindFor derives the screen kind from a navigation snapshot. A focused
// conversation always wins over the tab underneath it.
func KindFor(snap nav.Snapshot) ScreenKind {
	if snap.InConversation() {
		return KindConversation
	}
	return KindForTab(snap.ActiveTab)
}

// Screen is one mounted view. Screens are presentational: they fetch
// and render their own content, and report navigation intent by
// emitting the messages in messages.go. They never touch navigation
// state directly. A screen lives until the coordinator mounts its
// replacement; there is no reuse across mounts.
type Screen interface {
	// Init starts the screen's own content loading.
	Init() tea.Cmd

	// Update handles messages routed to the mounted screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen into its allotted area.
	View() string

	// SetSize informs the screen of its drawable area.
	SetSize(width, height int)
}

// Deps carries everything a screen needs at mount time. The snapshot
// is a copy; screens cannot reach the live navigation state through it.
type Deps struct {
	Styles Styles
	Client *api.Client
	Inbox  *inbox.Watcher
	Nav    nav.Snapshot
	Width  int
	Height int
}

// ScreenKey addresses one concrete screen implementation: which of the
// five families, in which of the two themes.
type ScreenKey struct {
	Kind  ScreenKind
	Retro bool
}

// Factory builds a fresh screen instance for a mount.
type Factory func(Deps) Screen

// Registry maps (kind, theme) to screen factories. Each mount builds a
// brand-new instance, so switching away from a screen genuinely tears
// it down.
type Registry struct {
	factories map[ScreenKey]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[ScreenKey]Factory)}
}

// Register installs the factory for one (kind, theme) slot. Later
// registrations replace earlier ones.
func (r *Registry) Register(kind ScreenKind, retro bool, f Factory) {
	r.factories[ScreenKey{Kind: kind, Retro: retro}] = f
}

// Has reports whether a factory is registered for the slot.
func (r *Registry) Has(kind ScreenKind, retro bool) bool {
	_, ok := r.factories[ScreenKey{Kind: kind, Retro: retro}]
	return ok
}

// Mount builds the screen for the given kind in the theme carried by
// deps. A theme without its own rendition falls back to the standard
// one; a kind with no factory at all mounts a static notice so the app
// keeps running.
func (r *Registry) Mount(kind ScreenKind, deps Deps) Screen {
	retro := deps.Styles.Theme.IsRetro
	f, ok := r.factories[ScreenKey{Kind: kind, Retro: retro}]
	if !ok && retro {
		f, ok = r.factories[ScreenKey{Kind: kind, Retro: false}]
	}
	if !ok {
		logging.Nav("no screen registered for kind=%s retro=%v", kind, retro)
		return newMissingScreen(deps, kind)
	}
	logging.NavDebug("mounting screen kind=%s retro=%v", kind, retro)
	s := f(deps)
	s.SetSize(deps.Width, deps.Height)
	return s
}

// DefaultRegistry returns the registry with all ten renditions wired:
// five screen families, each in standard and retro form.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(KindHome, false, func(d Deps) Screen { return NewHomeScreen(d) })
	r.Register(KindHome, true, func(d Deps) Screen { return NewRetroHomeScreen(d) })

	r.Register(KindUpload, false, func(d Deps) Screen { return NewUploadScreen(d) })
	r.Register(KindUpload, true, func(d Deps) Screen { return NewRetroUploadScreen(d) })

	r.Register(KindHighlights, false, func(d Deps) Screen { return NewHighlightsScreen(d) })
	r.Register(KindHighlights, true, func(d Deps) Screen { return NewRetroHighlightsScreen(d) })

	r.Register(KindMemory, false, func(d Deps) Screen { return NewMemoryScreen(d) })
	r.Register(KindMemory, true, func(d Deps) Screen { return NewRetroMemoryScreen(d) })

	r.Register(KindConversation, false, func(d Deps) Screen { return NewConversationScreen(d) })
	r.Register(KindConversation, true, func(d Deps) Screen { return NewRetroConversationScreen(d) })

	return r
}

// ============================================================================
// MISSING SCREEN FALLBACK
// ============================================================================

type missingScreen struct {
	styles Styles
	kind   ScreenKind
	width  int
	height int
}

func newMissingScreen(deps Deps, kind ScreenKind) *missingScreen {
	return &missingScreen{styles: deps.Styles, kind: kind}
}

func (m *missingScreen) Init() tea.Cmd { return nil }

func (m *missingScreen) Update(msg tea.Msg) (Screen, tea.Cmd) { return m, nil }

func (m *missingScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *missingScreen) View() string {
	return m.styles.Error.Render("screen unavailable: " + m.kind.String())
}
