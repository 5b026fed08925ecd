// Package ui provides the visual layer for the recall TUI: themes,
// chrome, and the screen set behind the registry. Every screen exists
// in a standard and a retro rendition; the coordinator decides which
// one is mounted.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Standard palette
	StandardBackground = lipgloss.Color("#141724")
	StandardForeground = lipgloss.Color("#e8e9ed")
	StandardPrimary    = lipgloss.Color("#7aa2f7") // Soft blue
	StandardAccent     = lipgloss.Color("#e0af68") // Warm amber
	StandardSecondary  = lipgloss.Color("#1f2335")
	StandardMuted      = lipgloss.Color("#565f89")
	StandardBorder     = lipgloss.Color("#292e42")
	StandardCard       = lipgloss.Color("#1a1e2e")

	// Retro palette (green phosphor CRT)
	RetroBackground = lipgloss.Color("#000000")
	RetroForeground = lipgloss.Color("#33ff33")
	RetroPrimary    = lipgloss.Color("#33ff33")
	RetroAccent     = lipgloss.Color("#ffb000") // Amber
	RetroSecondary  = lipgloss.Color("#002200")
	RetroMuted      = lipgloss.Color("#1f7a1f")
	RetroBorder     = lipgloss.Color("#33ff33")
	RetroCard       = lipgloss.Color("#001a00")

	// Semantic colors (same in both themes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme.
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsRetro    bool
}

// StandardTheme returns the default theme.
func StandardTheme() Theme {
	return Theme{
		Background: StandardBackground,
		Foreground: StandardForeground,
		Primary:    StandardPrimary,
		Accent:     StandardAccent,
		Secondary:  StandardSecondary,
		Muted:      StandardMuted,
		Border:     StandardBorder,
		Card:       StandardCard,
		IsRetro:    false,
	}
}

// RetroTheme returns the alternate CRT theme.
func RetroTheme() Theme {
	return Theme{
		Background: RetroBackground,
		Foreground: RetroForeground,
		Primary:    RetroPrimary,
		Accent:     RetroAccent,
		Secondary:  RetroSecondary,
		Muted:      RetroMuted,
		Border:     RetroBorder,
		Card:       RetroCard,
		IsRetro:    true,
	}
}

// ThemeFor maps the coordinator's theme flag to a palette.
func ThemeFor(retro bool) Theme {
	if retro {
		return RetroTheme()
	}
	return StandardTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	// Layout
	App     lipgloss.Style
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Tab bar
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabHint     lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Status
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Badge   lipgloss.Style
	Divider lipgloss.Style
	Card    lipgloss.Style
}

// NewStyles creates a Styles instance for the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		App: lipgloss.NewStyle().
			Background(theme.Background).
			Foreground(theme.Foreground),

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.Background).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		TabActive: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(theme.Background).
			Padding(0, 2).
			Bold(true),

		TabInactive: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 2),

		TabHint: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(!theme.IsRetro),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(theme.Background).
			Padding(0, 1).
			Bold(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		Card: lipgloss.NewStyle().
			Background(theme.Card).
			Foreground(theme.Foreground).
			Padding(1, 2).
			Border(borderFor(theme)).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the standard theme.
func DefaultStyles() Styles {
	return NewStyles(StandardTheme())
}

func borderFor(theme Theme) lipgloss.Border {
	if theme.IsRetro {
		return lipgloss.DoubleBorder()
	}
	return lipgloss.RoundedBorder()
}

// Border returns the box border matching the theme.
func (s Styles) Border() lipgloss.Border {
	return borderFor(s.Theme)
}

// Logo returns the recall wordmark.
func Logo(s Styles) string {
	logo := `
                      _ _
  _ __ ___  ___ __ _ | | |
 | '__/ _ \/ __/ _` + "`" + ` || | |
 | | |  __/ (_| (_| || | |
 |_|  \___|\___\__,_||_|_|
`
	return s.Title.Foreground(s.Theme.Primary).Render(logo)
}

// RenderDivider returns a horizontal divider sized to the given width.
// The retro theme draws it with the double rule to match its borders.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	rule := "─"
	if s.Theme.IsRetro {
		rule = "═"
	}
	return s.Divider.Render(strings.Repeat(rule, width))
}
