package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
)

// View is everything the controllers change on the exam page. Implementations
// must be safe for concurrent use.
type View interface {
	// Timer
	SetTimer(display, color string)
	SetAutoSubmitCountdown(seconds int)

	// Notices and signals
	ShowNotice(notice models.Notice)
	DismissNotice(id string)
	PlayTone(tone models.Tone)
	DisableControls()

	// Answers and navigation
	SetContentChoice(question int, answer string)
	SetSheetChoice(question int, answer string)
	MarkBubbleAnswered(question int)
	SetCurrentQuestion(question int)
	SetProgress(progress models.Progress)
	ShowPart(part int, visible bool)
	SetNavigator(title string, prevDisabled, nextDisabled bool)
	SetUnansweredCount(count int)

	// Audio
	SetAudioButton(question int, button models.AudioButton)
	SetSampleButton(label string, playing bool)
}

// Navigator moves the candidate to a question.
type Navigator interface {
	GoToQuestion(question int) error
}

// Player is a media playback handle for one audio track.
type Player interface {
	Load(ctx context.Context) error
	Play(ctx context.Context) error
	Pause()
	Rewind()
	Paused() bool
	Position() time.Duration
}

// AudioCapabilities answers whether a media type can be decoded.
type AudioCapabilities interface {
	CanPlayType(mimeType string) bool
}
