package api

// Person is one entry in the backend's people directory.
type Person struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ConversationLine is a single utterance in a recorded conversation.
// Speaker is either "Me" or the other person's detected name.
type ConversationLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ConversationSession groups the lines captured in one recording.
// Timestamp is Unix seconds, assigned by the backend when it saved
// the session.
type ConversationSession struct {
	Timestamp int64              `json:"timestamp"`
	Lines     []ConversationLine `json:"conversation"`
}

// History is every recorded session for one person, oldest first.
type History struct {
	Name     string                `json:"name"`
	Sessions []ConversationSession `json:"conversation"`
}

// TotalLines counts utterances across all sessions.
func (h History) TotalLines() int {
	n := 0
	for _, s := range h.Sessions {
		n += len(s.Lines)
	}
	return n
}

// SessionAt returns the session matching a Unix-seconds timestamp and
// its index, or -1 when no session carries that timestamp.
func (h History) SessionAt(timestamp int64) (ConversationSession, int) {
	for i, s := range h.Sessions {
		if s.Timestamp == timestamp {
			return s, i
		}
	}
	return ConversationSession{}, -1
}

// UploadResult is the backend's verdict on a processed recording.
type UploadResult struct {
	GuessedName  string             `json:"guessed_name"`
	FaceStatus   string             `json:"face_status"` // "known", "new" or "unknown"
	FaceName     string             `json:"face_name"`
	AutoEnrolled bool               `json:"auto_enrolled"`
	Lines        []ConversationLine `json:"conversation"`
}

// PersonName picks the best display name out of an upload result:
// the transcript's guess wins, then the face match, then "Unknown".
func (r UploadResult) PersonName() string {
	if r.GuessedName != "" {
		return r.GuessedName
	}
	if r.FaceName != "" {
		return r.FaceName
	}
	return "Unknown"
}
