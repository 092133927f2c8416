package events

import (
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents the kinds of session events
type EventType string

const (
	// Answer events
	EventAnswerSelected   EventType = "answer.selected"
	EventAnswerSaved      EventType = "answer.saved"
	EventAnswerSaveFailed EventType = "answer.save_failed"

	// Timer events
	EventTimeWarning EventType = "timer.warning"
	EventTimeExpired EventType = "timer.expired"
	EventTimeSynced  EventType = "timer.synced"

	// Submission
	EventExamSubmitted EventType = "exam.submitted"

	// Audio events
	EventAudioError         EventType = "audio.error"
	EventAudioReplayBlocked EventType = "audio.replay_blocked"

	// Page events
	EventPageVisibility EventType = "page.visibility"
	EventNotice         EventType = "page.notice"
)

const (
	eventSource  = "exam-session-client"
	eventVersion = "1.0"
)

// SessionEvent is the envelope of every event published by the session controllers
type SessionEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	AttemptID string      `json:"attempt_id"`
	Data      interface{} `json:"data"`
}

// NewSessionEvent stamps a payload with id, time, source and version.
func NewSessionEvent(eventType EventType, attemptID string, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		AttemptID: attemptID,
		Data:      data,
	}
}

// Payloads

type AnswerEvent struct {
	QuestionNumber int                    `json:"question_number"`
	Answer         string                 `json:"answer"`
	Source         models.SelectionSource `json:"source,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

type TimeWarningEvent struct {
	Threshold int    `json:"threshold"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

type TimeExpiredEvent struct {
	GraceSeconds int `json:"grace_seconds"`
}

type TimeSyncedEvent struct {
	Previous  int `json:"previous"`
	Remaining int `json:"remaining"`
}

type ExamSubmittedEvent struct {
	Automatic bool   `json:"automatic"`
	Answered  int    `json:"answered"`
	Error     string `json:"error,omitempty"`
}

type AudioEvent struct {
	QuestionNumber int    `json:"question_number"`
	Message        string `json:"message"`
}

type VisibilityEvent struct {
	Hidden bool `json:"hidden"`
}
