package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
)

const (
	audioErrorTTL      = 5 * time.Second
	replayBlockedTTL   = 3 * time.Second
	referenceAudioMIME = "audio/mpeg"
)

type AudioConfig struct {
	AttemptID    string
	Layout       *models.ExamLayout
	Mode         models.ExamMode
	AutoAdvance  bool
	AdvanceDelay time.Duration
}

// AudioController keeps at most one tracked player playing at a time and
// applies the replay policy of the exam mode.
type AudioController struct {
	cfg       AudioConfig
	view      View
	publisher events.EventPublisher
	caps      AudioCapabilities
	navigator Navigator
	logger    utils.Logger

	// playMu serializes stop-others and start so two plays cannot overlap.
	playMu sync.Mutex

	mu          sync.Mutex
	players     map[int]Player
	sample      Player
	current     Player
	allowReplay bool
}

func NewAudioController(cfg AudioConfig, view View, publisher events.EventPublisher, caps AudioCapabilities, navigator Navigator, logger utils.Logger) *AudioController {
	return &AudioController{
		cfg:         cfg,
		view:        view,
		publisher:   publisher,
		caps:        caps,
		navigator:   navigator,
		logger:      logger.With("component", "audio"),
		players:     make(map[int]Player),
		allowReplay: cfg.Mode == models.ModePractice,
	}
}

// Register tracks the player of a question.
func (a *AudioController) Register(question int, p Player) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.players[question] = p
}

// RegisterSample tracks the home page sample track.
func (a *AudioController) RegisterSample(p Player) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sample = p
}

// Questions returns the questions with registered audio in ascending order.
func (a *AudioController) Questions() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	qs := make([]int, 0, len(a.players))
	for q := range a.players {
		qs = append(qs, q)
	}
	sort.Ints(qs)
	return qs
}

// SetExamMode switches the replay policy: practice allows replay, exam does not.
func (a *AudioController) SetExamMode(mode models.ExamMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.allowReplay = mode == models.ModePractice
}

// Preload loads every registered track, showing the loading state while each one loads.
func (a *AudioController) Preload(ctx context.Context) {
	for _, q := range a.Questions() {
		if err := a.Load(ctx, q); err != nil && ctx.Err() != nil {
			return
		}
	}
}

// Load fetches one track.
func (a *AudioController) Load(ctx context.Context, question int) error {
	p, err := a.player(question)
	if err != nil {
		return err
	}

	a.view.SetAudioButton(question, models.AudioButtonLoading)
	if err := p.Load(ctx); err != nil {
		a.Failed(ctx, question, err)
		return err
	}
	a.view.SetAudioButton(question, models.AudioButtonReady)
	return nil
}

// Play stops every other track and starts the question's audio, unless replay
// is disallowed and the track has already been played.
func (a *AudioController) Play(ctx context.Context, question int) error {
	p, err := a.player(question)
	if err != nil {
		a.logger.ErrorContext(ctx, "Audio not found for question", "question", question)
		return err
	}

	a.playMu.Lock()
	defer a.playMu.Unlock()
	a.StopAll()

	a.mu.Lock()
	blocked := !a.allowReplay && p.Position() > 0
	a.mu.Unlock()
	if blocked {
		a.view.ShowNotice(models.Notice{
			ID:       fmt.Sprintf("replay-%d", question),
			Level:    models.NoticeWarning,
			Message:  "Audio replay is not allowed in exam mode.",
			Question: question,
			TTL:      replayBlockedTTL,
		})
		a.publish(ctx, events.EventAudioReplayBlocked, events.AudioEvent{QuestionNumber: question, Message: ErrReplayNotAllowed.Error()})
		return ErrReplayNotAllowed
	}

	if err := p.Play(ctx); err != nil {
		a.Failed(ctx, question, err)
		return err
	}

	a.mu.Lock()
	a.current = p
	a.mu.Unlock()
	a.view.SetAudioButton(question, models.AudioButtonPlaying)
	return nil
}

// Pause pauses one question's audio if it is playing.
func (a *AudioController) Pause(question int) error {
	p, err := a.player(question)
	if err != nil {
		return err
	}
	if !p.Paused() {
		p.Pause()
		a.mu.Lock()
		if a.current == p {
			a.current = nil
		}
		a.mu.Unlock()
	}
	a.view.SetAudioButton(question, models.AudioButtonReady)
	return nil
}

// StopAll pauses every tracked player, the sample included.
func (a *AudioController) StopAll() {
	a.mu.Lock()
	var stopped []int
	for q, p := range a.players {
		if !p.Paused() {
			p.Pause()
			stopped = append(stopped, q)
		}
	}
	sampleStopped := false
	if a.sample != nil && !a.sample.Paused() {
		a.sample.Pause()
		sampleStopped = true
	}
	a.current = nil
	a.mu.Unlock()

	for _, q := range stopped {
		a.view.SetAudioButton(q, models.AudioButtonReady)
	}
	if sampleStopped {
		a.view.SetSampleButton(models.SampleLabelPlay, false)
	}
}

// Ended handles a track reaching its end. In listening parts with
// auto-advance enabled the next question is selected after a short delay.
func (a *AudioController) Ended(question int) error {
	p, err := a.player(question)
	if err != nil {
		return err
	}
	p.Pause()
	a.mu.Lock()
	if a.current == p {
		a.current = nil
	}
	a.mu.Unlock()
	a.view.SetAudioButton(question, models.AudioButtonReady)

	part, ok := a.cfg.Layout.Part(a.cfg.Layout.PartOf(question))
	next := question + 1
	if a.cfg.AutoAdvance && ok && part.Listening && a.navigator != nil && a.cfg.Layout.ValidQuestion(next) {
		time.AfterFunc(a.cfg.AdvanceDelay, func() {
			if err := a.navigator.GoToQuestion(next); err != nil {
				a.logger.Warn("Auto-advance failed", "question", next, "error", err)
			}
		})
	}
	return nil
}

// Failed surfaces a playback or loading error for one question.
func (a *AudioController) Failed(ctx context.Context, question int, cause error) {
	a.logger.ErrorContext(ctx, "Audio error for question", "question", question, "error", cause)
	a.view.SetAudioButton(question, models.AudioButtonReady)
	a.view.ShowNotice(models.Notice{
		ID:       fmt.Sprintf("audioError-%d", question),
		Level:    models.NoticeDanger,
		Message:  "Audio failed to load. Please check your connection and try again.",
		Question: question,
		TTL:      audioErrorTTL,
	})
	a.publish(ctx, events.EventAudioError, events.AudioEvent{QuestionNumber: question, Message: cause.Error()})
}

// ToggleSample plays the sample track, or stops and rewinds it when playing.
func (a *AudioController) ToggleSample(ctx context.Context) error {
	a.playMu.Lock()
	defer a.playMu.Unlock()

	a.mu.Lock()
	sample := a.sample
	a.mu.Unlock()
	if sample == nil {
		return ErrSampleNotRegistered
	}

	if !sample.Paused() {
		sample.Pause()
		sample.Rewind()
		a.mu.Lock()
		a.current = nil
		a.mu.Unlock()
		a.view.SetSampleButton(models.SampleLabelPlay, false)
		return nil
	}

	a.StopAll()
	if err := sample.Play(ctx); err != nil {
		a.Failed(ctx, models.SampleAudioQuestion, err)
		return err
	}
	a.mu.Lock()
	a.current = sample
	a.mu.Unlock()
	a.view.SetSampleButton(models.SampleLabelStop, true)
	return nil
}

// Playing returns the questions whose players are not paused.
func (a *AudioController) Playing() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []int
	for q, p := range a.players {
		if !p.Paused() {
			out = append(out, q)
		}
	}
	sort.Ints(out)
	return out
}

// Supported reports whether the reference audio format can be decoded.
func (a *AudioController) Supported() bool {
	return a.caps != nil && a.caps.CanPlayType(referenceAudioMIME)
}

// CheckSupport shows a page-level warning when audio cannot be decoded.
func (a *AudioController) CheckSupport(ctx context.Context) bool {
	if a.Supported() {
		return true
	}
	a.logger.WarnContext(ctx, "Audio not supported by this client")
	a.view.ShowNotice(models.Notice{
		ID:      "audioUnsupported",
		Level:   models.NoticeWarning,
		Title:   "Audio Warning:",
		Message: "Your client may not support audio playback. Please make sure audio/mpeg playback is available.",
	})
	return false
}

func (a *AudioController) player(question int) (Player, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if question == models.SampleAudioQuestion && a.sample != nil {
		return a.sample, nil
	}
	p, ok := a.players[question]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrAudioNotFound, question)
	}
	return p, nil
}

func (a *AudioController) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if err := a.publisher.Publish(ctx, events.NewSessionEvent(eventType, a.cfg.AttemptID, data)); err != nil {
		a.logger.Warn("Failed to publish audio event", "event_type", eventType, "error", err)
	}
}
