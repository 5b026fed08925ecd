package ui

import "recall/internal/nav"

// Navigation messages flow upward from screens to the coordinator.
// Screens never mutate navigation state themselves; they emit one of
// these and the coordinator decides what actually changes.

// NavigateTabMsg requests a switch to one of the four top-level tabs.
// The coordinator ignores unknown tabs.
type NavigateTabMsg struct {
	Tab nav.Tab
}

// OpenConversationMsg requests the conversation screen for a person.
// Name is required; the coordinator drops the request without it.
// HighlightTimestamp and HighlightIndex are optional deep-link hints
// used when arriving from the highlights screen.
type OpenConversationMsg struct {
	Name               string
	AvatarURL          string
	Headline           string
	HighlightTimestamp int64
	HighlightIndex     int
	HasHighlight       bool
}

// CloseConversationMsg returns from the conversation screen to the
// tab that was active underneath it.
type CloseConversationMsg struct{}

// ToggleThemeMsg flips between the standard and retro themes. The
// coordinator only honors it from the home screen.
type ToggleThemeMsg struct{}
