package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"recall/internal/nav"
)

// RenderTabBar draws the four-section tab strip. Each tab carries its
// number-key hint; the active tab is highlighted. When a conversation
// is focused no tab is highlighted, since the conversation view covers
// whichever tab sits underneath it.
func RenderTabBar(s Styles, snap nav.Snapshot, width int) string {
	cells := make([]string, 0, len(nav.Tabs()))
	for i, tab := range nav.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, tab.Title())
		if tab == snap.ActiveTab && !snap.InConversation() {
			cells = append(cells, s.TabActive.Render(label))
			continue
		}
		cells = append(cells, s.TabInactive.Render(label))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	if width > lipgloss.Width(bar) {
		bar = lipgloss.NewStyle().Width(width).Render(bar)
	}
	return bar
}
