package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeFor(t *testing.T) {
	standard := ThemeFor(false)
	if standard.IsRetro {
		t.Fatalf("expected standard theme for retro=false")
	}
	if standard.Foreground != StandardForeground {
		t.Fatalf("expected standard foreground color")
	}

	retro := ThemeFor(true)
	if !retro.IsRetro {
		t.Fatalf("expected retro theme for retro=true")
	}
	if retro.Foreground != RetroForeground {
		t.Fatalf("expected phosphor foreground color")
	}
}

func TestNewStylesCarriesTheme(t *testing.T) {
	styles := NewStyles(RetroTheme())
	if !styles.Theme.IsRetro {
		t.Fatalf("expected styles to carry the retro theme")
	}
	if DefaultStyles().Theme.IsRetro {
		t.Fatalf("expected default styles to use the standard theme")
	}
}

func TestBorderMatchesTheme(t *testing.T) {
	if NewStyles(StandardTheme()).Border() != lipgloss.RoundedBorder() {
		t.Fatalf("expected rounded border for standard theme")
	}
	if NewStyles(RetroTheme()).Border() != lipgloss.DoubleBorder() {
		t.Fatalf("expected double border for retro theme")
	}
}

func TestRenderDivider(t *testing.T) {
	standard := DefaultStyles()
	div := standard.RenderDivider(12)
	if lipgloss.Width(div) != 12 {
		t.Fatalf("expected divider width 12, got %d", lipgloss.Width(div))
	}
	if !strings.Contains(div, "─") {
		t.Fatalf("expected single rule in standard divider")
	}

	retro := NewStyles(RetroTheme())
	if !strings.Contains(retro.RenderDivider(4), "═") {
		t.Fatalf("expected double rule in retro divider")
	}

	if standard.RenderDivider(0) != "" {
		t.Fatalf("expected empty divider for zero width")
	}
}

func TestLogoMentionsRecall(t *testing.T) {
	// The wordmark is ASCII art; just make sure it renders non-empty in
	// both themes.
	if Logo(DefaultStyles()) == "" {
		t.Fatalf("expected standard logo output")
	}
	if Logo(NewStyles(RetroTheme())) == "" {
		t.Fatalf("expected retro logo output")
	}
}
