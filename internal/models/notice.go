package models

import "time"

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeDanger  NoticeLevel = "danger"
)

// Notice is a transient or blocking banner shown to the candidate.
// A zero TTL means the notice stays until dismissed or replaced.
type Notice struct {
	ID       string        `json:"id"`
	Level    NoticeLevel   `json:"level"`
	Title    string        `json:"title,omitempty"`
	Message  string        `json:"message"`
	Question int           `json:"question,omitempty"`
	Blocking bool          `json:"blocking,omitempty"`
	TTL      time.Duration `json:"ttl,omitempty"`
}

// Tone is a short audible signal.
type Tone struct {
	Frequency float64       `json:"frequency"`
	Duration  time.Duration `json:"duration"`
}

// WarningTone is played together with time warnings.
var WarningTone = Tone{Frequency: 800, Duration: 500 * time.Millisecond}
