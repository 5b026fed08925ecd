package nav

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestNormalizeTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload any
		want    ConversationTarget
		wantOK  bool
	}{
		{
			name:    "bare name string",
			payload: "Sarah Chen",
			want:    ConversationTarget{Name: "Sarah Chen"},
			wantOK:  true,
		},
		{
			name:    "string is trimmed",
			payload: "  Sarah Chen \n",
			want:    ConversationTarget{Name: "Sarah Chen"},
			wantOK:  true,
		},
		{
			name:    "empty string rejected",
			payload: "",
			wantOK:  false,
		},
		{
			name:    "whitespace string rejected",
			payload: "   ",
			wantOK:  false,
		},
		{
			name:    "nil rejected",
			payload: nil,
			wantOK:  false,
		},
		{
			name:    "struct value taken as-is",
			payload: ConversationTarget{Name: "Marcus", Headline: "CTO at Meridian"},
			want:    ConversationTarget{Name: "Marcus", Headline: "CTO at Meridian"},
			wantOK:  true,
		},
		{
			name: "struct with highlight pointers",
			payload: ConversationTarget{
				Name:               "Marcus",
				HighlightTimestamp: int64Ptr(1756100000),
				HighlightIndex:     intPtr(3),
			},
			want: ConversationTarget{
				Name:               "Marcus",
				HighlightTimestamp: int64Ptr(1756100000),
				HighlightIndex:     intPtr(3),
			},
			wantOK: true,
		},
		{
			name:    "struct name is trimmed",
			payload: ConversationTarget{Name: " Marcus "},
			want:    ConversationTarget{Name: "Marcus"},
			wantOK:  true,
		},
		{
			name:    "struct with empty name rejected",
			payload: ConversationTarget{Headline: "CTO", AvatarURL: "http://x/y.jpg"},
			wantOK:  false,
		},
		{
			name:    "pointer payload",
			payload: &ConversationTarget{Name: "Priya"},
			want:    ConversationTarget{Name: "Priya"},
			wantOK:  true,
		},
		{
			name:    "typed nil pointer rejected",
			payload: (*ConversationTarget)(nil),
			wantOK:  false,
		},
		{
			name: "json-shaped map",
			payload: map[string]any{
				"name":                "Priya",
				"highlight_timestamp": float64(1756100000),
				"highlight_index":     float64(2),
				"avatar_url":          "http://img/priya.jpg",
				"headline":            "Founder",
			},
			want: ConversationTarget{
				Name:               "Priya",
				HighlightTimestamp: int64Ptr(1756100000),
				HighlightIndex:     intPtr(2),
				AvatarURL:          "http://img/priya.jpg",
				Headline:           "Founder",
			},
			wantOK: true,
		},
		{
			name:    "map with int-typed numbers",
			payload: map[string]any{"name": "Priya", "highlight_timestamp": 1756100000, "highlight_index": 2},
			want: ConversationTarget{
				Name:               "Priya",
				HighlightTimestamp: int64Ptr(1756100000),
				HighlightIndex:     intPtr(2),
			},
			wantOK: true,
		},
		{
			name:    "map without name rejected",
			payload: map[string]any{"highlight_timestamp": float64(1756100000)},
			wantOK:  false,
		},
		{
			name:    "map with blank name rejected",
			payload: map[string]any{"name": "  "},
			wantOK:  false,
		},
		{
			name:    "map with non-string name rejected",
			payload: map[string]any{"name": 42},
			wantOK:  false,
		},
		{
			name:    "unsupported payload type rejected",
			payload: 42,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := NormalizeTarget(tt.payload)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("target mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// String and object payloads naming the same person must produce the same
// focused conversation.
func TestNormalizeTarget_StringObjectEquivalence(t *testing.T) {
	t.Parallel()

	fromString, ok := NormalizeTarget("Sarah Chen")
	require.True(t, ok)
	fromStruct, ok := NormalizeTarget(ConversationTarget{Name: "Sarah Chen"})
	require.True(t, ok)
	fromMap, ok := NormalizeTarget(map[string]any{"name": "Sarah Chen"})
	require.True(t, ok)

	if diff := cmp.Diff(fromString, fromStruct); diff != "" {
		t.Errorf("string vs struct (-string +struct):\n%s", diff)
	}
	if diff := cmp.Diff(fromString, fromMap); diff != "" {
		t.Errorf("string vs map (-string +map):\n%s", diff)
	}
}

func TestConversationTarget_Clone(t *testing.T) {
	t.Parallel()

	orig := ConversationTarget{
		Name:               "Marcus",
		HighlightTimestamp: int64Ptr(100),
		HighlightIndex:     intPtr(1),
	}
	clone := orig.Clone()

	*clone.HighlightTimestamp = 999
	*clone.HighlightIndex = 7
	clone.Name = "changed"

	assert.Equal(t, "Marcus", orig.Name)
	assert.Equal(t, int64(100), *orig.HighlightTimestamp)
	assert.Equal(t, 1, *orig.HighlightIndex)
}

func TestConversationTarget_HasHighlight(t *testing.T) {
	t.Parallel()

	assert.False(t, ConversationTarget{Name: "x"}.HasHighlight())
	assert.True(t, ConversationTarget{Name: "x", HighlightTimestamp: int64Ptr(1)}.HasHighlight())
	assert.True(t, ConversationTarget{Name: "x", HighlightIndex: intPtr(0)}.HasHighlight())
}

// Normalization via NormalizeTarget must also deep-copy, so a caller
// holding the original payload cannot mutate the stored target.
func TestNormalizeTarget_CopiesPointers(t *testing.T) {
	t.Parallel()

	payload := ConversationTarget{Name: "Marcus", HighlightTimestamp: int64Ptr(100)}
	got, ok := NormalizeTarget(payload)
	require.True(t, ok)

	*payload.HighlightTimestamp = 999
	assert.Equal(t, int64(100), *got.HighlightTimestamp)
}

func TestConversationTarget_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	orig := ConversationTarget{
		Name:               "Priya",
		HighlightTimestamp: int64Ptr(1756100000),
		HighlightIndex:     intPtr(2),
		AvatarURL:          "http://img/priya.jpg",
		Headline:           "Founder",
	}
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded ConversationTarget
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(orig, decoded); diff != "" {
		t.Errorf("round trip mismatch (-orig +decoded):\n%s", diff)
	}

	// The map form of the same JSON must normalize to the same target.
	var loose map[string]any
	require.NoError(t, json.Unmarshal(data, &loose))
	normalized, ok := NormalizeTarget(loose)
	require.True(t, ok)
	if diff := cmp.Diff(orig, normalized); diff != "" {
		t.Errorf("map normalization mismatch (-orig +normalized):\n%s", diff)
	}
}
