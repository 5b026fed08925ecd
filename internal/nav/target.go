package nav

import (
	"strings"
)

// ConversationTarget describes which conversation history to open and,
// optionally, which recorded moment inside it to bring into view. Name is
// the only required field; it keys the backend's conversation lookup.
type ConversationTarget struct {
	// Name of the person whose history to show.
	Name string `json:"name"`

	// HighlightTimestamp selects a session by its unix timestamp.
	HighlightTimestamp *int64 `json:"highlight_timestamp,omitempty"`

	// HighlightIndex selects a line within the highlighted session.
	HighlightIndex *int `json:"highlight_index,omitempty"`

	// AvatarURL is the person's profile image, when known.
	AvatarURL string `json:"avatar_url,omitempty"`

	// Headline is a short descriptor ("CTO at ..."), when known.
	Headline string `json:"headline,omitempty"`
}

// Clone returns a deep copy; highlight pointers are duplicated so the
// copy can be handed across a view boundary safely.
func (t ConversationTarget) Clone() ConversationTarget {
	out := t
	if t.HighlightTimestamp != nil {
		ts := *t.HighlightTimestamp
		out.HighlightTimestamp = &ts
	}
	if t.HighlightIndex != nil {
		idx := *t.HighlightIndex
		out.HighlightIndex = &idx
	}
	return out
}

// HasHighlight reports whether the target points at a specific moment.
func (t ConversationTarget) HasHighlight() bool {
	return t.HighlightTimestamp != nil || t.HighlightIndex != nil
}

// NormalizeTarget converts the loose payloads screens and deep links emit
// into a ConversationTarget. Accepted shapes:
//
//   - string: treated as the person's name
//   - ConversationTarget / *ConversationTarget: taken as-is
//   - map[string]any: decoded field by field (JSON-shaped input)
//
// The name is trimmed; a payload with no resolvable non-empty name, a nil
// payload, or an unsupported type yields ok=false. Callers treat that as
// a silent no-op, so this is the single place payload shape is judged.
func NormalizeTarget(payload any) (ConversationTarget, bool) {
	switch v := payload.(type) {
	case nil:
		return ConversationTarget{}, false
	case string:
		name := strings.TrimSpace(v)
		if name == "" {
			return ConversationTarget{}, false
		}
		return ConversationTarget{Name: name}, true
	case ConversationTarget:
		return normalizeTarget(v)
	case *ConversationTarget:
		if v == nil {
			return ConversationTarget{}, false
		}
		return normalizeTarget(*v)
	case map[string]any:
		return targetFromMap(v)
	default:
		return ConversationTarget{}, false
	}
}

func normalizeTarget(t ConversationTarget) (ConversationTarget, bool) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return ConversationTarget{}, false
	}
	return t.Clone(), true
}

// targetFromMap handles JSON-decoded objects, where numbers arrive as
// float64 and missing keys simply aren't present.
func targetFromMap(m map[string]any) (ConversationTarget, bool) {
	var t ConversationTarget
	if name, ok := m["name"].(string); ok {
		t.Name = strings.TrimSpace(name)
	}
	if t.Name == "" {
		return ConversationTarget{}, false
	}
	if ts, ok := mapInt64(m, "highlight_timestamp"); ok {
		t.HighlightTimestamp = &ts
	}
	if idx, ok := mapInt64(m, "highlight_index"); ok {
		i := int(idx)
		t.HighlightIndex = &i
	}
	if url, ok := m["avatar_url"].(string); ok {
		t.AvatarURL = url
	}
	if headline, ok := m["headline"].(string); ok {
		t.Headline = headline
	}
	return t, true
}

func mapInt64(m map[string]any, key string) (int64, bool) {
	switch n := m[key].(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
