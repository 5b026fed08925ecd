// Package nav owns the navigation state of the recall terminal client:
// which tab is active, whether a single conversation is in focus, and
// which visual theme is in effect. All mutation goes through the named
// operations on State; views consume read-only Snapshot copies.
package nav

// Tab identifies one of the top-level sections of the app.
type Tab string

const (
	// TabHome is the landing dashboard.
	TabHome Tab = "home"

	// TabUpload is the recording upload section.
	TabUpload Tab = "upload"

	// TabHighlights lists notable conversation moments.
	TabHighlights Tab = "highlights"

	// TabMemory lists the people recall knows about.
	TabMemory Tab = "memory"
)

// Tabs returns all tabs in display order.
func Tabs() []Tab {
	return []Tab{TabHome, TabUpload, TabHighlights, TabMemory}
}

// Valid reports whether t names a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabHome, TabUpload, TabHighlights, TabMemory:
		return true
	}
	return false
}

// Title returns the label shown in the tab bar.
func (t Tab) Title() string {
	switch t {
	case TabHome:
		return "Home"
	case TabUpload:
		return "Upload"
	case TabHighlights:
		return "Highlights"
	case TabMemory:
		return "Memory"
	default:
		return string(t)
	}
}

// State is the single source of truth for where the user is in the app.
// Exactly one screen is derivable from it at any time: the focused
// conversation when ActiveConversation is set, the active tab's screen
// otherwise. The zero value is not ready for use; construct with NewState.
type State struct {
	ActiveTab          Tab                 `json:"active_tab"`
	ActiveConversation *ConversationTarget `json:"active_conversation,omitempty"`
	RetroTheme         bool                `json:"retro_theme"`
}

// NewState returns the boot state: home tab, no focused conversation,
// standard theme. The theme deliberately starts standard on every launch.
func NewState() *State {
	return &State{ActiveTab: TabHome}
}

// OpenConversation focuses one person's conversation history. The payload
// may be a bare name string or a target-shaped value; anything that does
// not resolve to a non-empty name is ignored. On success the active tab is
// forced to memory so that closing the conversation lands the user in the
// people list. Reports whether the state changed.
func (s *State) OpenConversation(payload any) bool {
	target, ok := NormalizeTarget(payload)
	if !ok {
		return false
	}
	s.ActiveConversation = &target
	s.ActiveTab = TabMemory
	return true
}

// NavigateTab switches the active tab. Any focused conversation is closed
// first so a tab screen and the conversation view can never render at the
// same time. Unknown tabs are ignored. Reports whether the state changed.
func (s *State) NavigateTab(tab Tab) bool {
	if !tab.Valid() {
		return false
	}
	changed := s.ActiveConversation != nil || s.ActiveTab != tab
	s.ActiveConversation = nil
	s.ActiveTab = tab
	return changed
}

// CloseConversation drops the focused conversation and reveals whichever
// tab is active underneath. Reports whether a conversation was open.
func (s *State) CloseConversation() bool {
	if s.ActiveConversation == nil {
		return false
	}
	s.ActiveConversation = nil
	return true
}

// ToggleTheme flips between the standard and retro looks. Tab and
// conversation state are untouched, so toggling twice is a no-op.
func (s *State) ToggleTheme() bool {
	s.RetroTheme = !s.RetroTheme
	return true
}

// Snapshot is a read-only copy of the navigation state handed to views.
// Mutating a snapshot never affects the live State.
type Snapshot struct {
	ActiveTab    Tab
	Conversation *ConversationTarget
	RetroTheme   bool
}

// InConversation reports whether a conversation is in focus.
func (s Snapshot) InConversation() bool {
	return s.Conversation != nil
}

// Snapshot returns a defensive copy of the current state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		ActiveTab:  s.ActiveTab,
		RetroTheme: s.RetroTheme,
	}
	if s.ActiveConversation != nil {
		c := s.ActiveConversation.Clone()
		snap.Conversation = &c
	}
	return snap
}
