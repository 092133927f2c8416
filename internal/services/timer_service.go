package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/api"
	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
)

const (
	timeWarningTTL = 10 * time.Second
	leaveMessage   = "Your exam is still in progress. Are you sure you want to leave?"
)

type TimerConfig struct {
	AttemptID    string
	Initial      int
	TickInterval time.Duration
	SyncInterval time.Duration
	SubmitGrace  time.Duration
}

type threshold struct {
	seconds int
	level   models.NoticeLevel
	message string
}

var warningThresholds = []threshold{
	{models.FirstWarningAt, models.NoticeWarning, "15 minutes remaining!"},
	{models.FinalWarningAt, models.NoticeDanger, "5 minutes remaining! Please review your answers."},
}

// TimerController counts the attempt down once per tick, raises the 15 and
// 5 minute warnings, reconciles with the server and auto-submits at zero.
type TimerController struct {
	cfg       TimerConfig
	api       api.ExamAPI
	view      View
	publisher events.EventPublisher
	submitter *Submitter
	logger    utils.Logger

	mu        sync.Mutex
	remaining int
	status    models.TimerStatus
	warned    map[int]bool
	expired   chan struct{}
	stopped   chan struct{}
	stopGrace chan struct{}
	grace     *time.Timer
}

func NewTimerController(cfg TimerConfig, examAPI api.ExamAPI, view View, publisher events.EventPublisher, submitter *Submitter, logger utils.Logger) *TimerController {
	remaining := cfg.Initial
	if remaining < 0 {
		remaining = 0
	}
	return &TimerController{
		cfg:       cfg,
		api:       examAPI,
		view:      view,
		publisher: publisher,
		submitter: submitter,
		logger:    logger.With("component", "timer"),
		remaining: remaining,
		status:    models.TimerRunning,
		warned:    make(map[int]bool),
		expired:   make(chan struct{}),
		stopped:   make(chan struct{}),
		stopGrace: make(chan struct{}),
	}
}

// Mount renders the initial clock. A timer created with no time left expires immediately.
func (t *TimerController) Mount(ctx context.Context) {
	t.mu.Lock()
	t.renderLocked()
	expire := t.remaining == 0 && t.active()
	t.mu.Unlock()

	if expire {
		t.expire(ctx)
	}
}

// Tick advances the countdown by one second while running.
func (t *TimerController) Tick(ctx context.Context) {
	t.mu.Lock()
	if t.status != models.TimerRunning || t.remaining <= 0 {
		t.mu.Unlock()
		return
	}
	prev := t.remaining
	t.remaining--
	t.renderLocked()
	fired := t.crossedLocked(prev, t.remaining)
	expire := t.remaining == 0
	t.mu.Unlock()

	t.warn(ctx, fired)
	if expire {
		t.expire(ctx)
	}
}

// Sync overwrites the local countdown with the server's remaining time.
func (t *TimerController) Sync(ctx context.Context) error {
	if status := t.Status(); status == models.TimerExpired || status == models.TimerStopped {
		return nil
	}

	state, err := t.api.GetExamState(ctx, t.cfg.AttemptID)
	if err != nil {
		t.logger.WarnContext(ctx, "Failed to sync time with server", "error", err)
		return err
	}
	t.Reconcile(ctx, state)
	return nil
}

// Reconcile applies the time_remaining of a fetched exam state. The server wins.
func (t *TimerController) Reconcile(ctx context.Context, state *models.ExamState) {
	if state == nil || state.TimeRemaining == nil {
		return
	}

	t.mu.Lock()
	if !t.active() {
		t.mu.Unlock()
		return
	}
	prev := t.remaining
	t.remaining = max(*state.TimeRemaining, 0)
	t.renderLocked()
	fired := t.crossedLocked(prev, t.remaining)
	expire := t.remaining == 0
	current := t.remaining
	t.mu.Unlock()

	if prev != current {
		t.logger.DebugContext(ctx, "Timer reconciled with server", "previous", prev, "remaining", current)
		t.publish(ctx, events.EventTimeSynced, events.TimeSyncedEvent{Previous: prev, Remaining: current})
	}
	t.warn(ctx, fired)
	if expire {
		t.expire(ctx)
	}
}

// Pause stops the countdown until Resume.
func (t *TimerController) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == models.TimerRunning {
		t.status = models.TimerPaused
	}
}

// Resume restarts a paused countdown.
func (t *TimerController) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == models.TimerPaused {
		t.status = models.TimerRunning
	}
}

// AddTime extends the remaining time. Warnings already shown stay shown.
func (t *TimerController) AddTime(seconds int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status {
	case models.TimerExpired:
		return ErrTimerExpired
	case models.TimerStopped:
		return ErrExamLocked
	}
	t.remaining = max(t.remaining+seconds, 0)
	t.renderLocked()
	return nil
}

// Stop ends the countdown for an attempt that is already finished. Nothing is
// submitted and leaving the page no longer needs confirmation.
func (t *TimerController) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active() {
		return
	}
	t.status = models.TimerStopped
	close(t.stopped)
}

// SubmitNow skips the rest of the grace countdown after expiry.
func (t *TimerController) SubmitNow(ctx context.Context) error {
	t.mu.Lock()
	if t.grace != nil {
		t.grace.Stop()
	}
	t.mu.Unlock()
	t.closeGrace()
	return t.submitter.Submit(ctx, false)
}

// ConfirmLeave reports whether leaving the page must be confirmed.
func (t *TimerController) ConfirmLeave() (bool, string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == models.TimerRunning && t.remaining > 0 && !t.submitter.Submitted() {
		return true, leaveMessage
	}
	return false, ""
}

// VisibilityChanged records tab switches. The countdown keeps running.
func (t *TimerController) VisibilityChanged(ctx context.Context, hidden bool) {
	if hidden {
		t.logger.InfoContext(ctx, "Tab hidden - timer continues running")
	} else {
		t.logger.InfoContext(ctx, "Tab visible - timer continues")
	}
	t.publish(ctx, events.EventPageVisibility, events.VisibilityEvent{Hidden: hidden})
}

func (t *TimerController) Status() models.TimerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *TimerController) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *TimerController) Snapshot() models.TimerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.TimerSnapshot{
		Status:            t.status,
		Remaining:         t.remaining,
		Display:           models.FormatClock(t.remaining),
		Color:             models.ClockColor(t.remaining),
		FirstWarningShown: t.warned[models.FirstWarningAt],
		FinalWarningShown: t.warned[models.FinalWarningAt],
	}
}

// Expired is closed when the countdown reaches zero.
func (t *TimerController) Expired() <-chan struct{} {
	return t.expired
}

// Run ticks and syncs until ctx is done, the timer expires or the attempt is submitted.
func (t *TimerController) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()
	syncTicker := time.NewTicker(t.cfg.SyncInterval)
	defer syncTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.expired:
			return nil
		case <-t.stopped:
			return nil
		case <-t.submitter.Done():
			return nil
		case <-ticker.C:
			t.Tick(ctx)
		case <-syncTicker.C:
			go t.Sync(ctx)
		}
	}
}

// active reports whether the countdown can still change. Callers hold t.mu.
func (t *TimerController) active() bool {
	return t.status == models.TimerRunning || t.status == models.TimerPaused
}

func (t *TimerController) renderLocked() {
	t.view.SetTimer(models.FormatClock(t.remaining), models.ClockColor(t.remaining))
}

// crossedLocked marks and returns the thresholds passed when moving from prev to cur.
func (t *TimerController) crossedLocked(prev, cur int) []threshold {
	var fired []threshold
	for _, th := range warningThresholds {
		if prev > th.seconds && cur <= th.seconds && !t.warned[th.seconds] {
			t.warned[th.seconds] = true
			fired = append(fired, th)
		}
	}
	return fired
}

func (t *TimerController) warn(ctx context.Context, fired []threshold) {
	for _, th := range fired {
		t.view.ShowNotice(models.Notice{
			ID:      "timeWarning",
			Level:   th.level,
			Title:   "Time Warning:",
			Message: th.message,
			TTL:     timeWarningTTL,
		})
		t.view.PlayTone(models.WarningTone)
		t.publish(ctx, events.EventTimeWarning, events.TimeWarningEvent{
			Threshold: th.seconds,
			Remaining: t.Remaining(),
			Message:   th.message,
		})
	}
}

func (t *TimerController) expire(ctx context.Context) {
	t.mu.Lock()
	if !t.active() {
		t.mu.Unlock()
		return
	}
	t.status = models.TimerExpired
	close(t.expired)
	graceSeconds := int(math.Ceil(t.cfg.SubmitGrace.Seconds()))
	t.grace = time.AfterFunc(t.cfg.SubmitGrace, func() {
		t.closeGrace()
		if err := t.submitter.Submit(context.Background(), true); err != nil && !errors.Is(err, ErrAlreadySubmitted) {
			t.logger.Warn("Auto-submit failed", "error", err)
		}
	})
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "Exam time expired", "attempt_id", t.cfg.AttemptID)
	t.view.ShowNotice(models.Notice{
		ID:       "timeExpired",
		Level:    models.NoticeDanger,
		Title:    "Time Expired",
		Message:  "Test Time Has Expired. Your test will be automatically submitted.",
		Blocking: true,
	})
	t.view.SetAutoSubmitCountdown(graceSeconds)
	t.submitter.Lock()
	t.publish(ctx, events.EventTimeExpired, events.TimeExpiredEvent{GraceSeconds: graceSeconds})

	if graceSeconds > 1 {
		go t.countdown(graceSeconds)
	}
}

func (t *TimerController) countdown(from int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for n := from - 1; n > 0; n-- {
		select {
		case <-ticker.C:
			t.view.SetAutoSubmitCountdown(n)
		case <-t.stopGrace:
			return
		}
	}
}

func (t *TimerController) closeGrace() {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.stopGrace:
	default:
		close(t.stopGrace)
	}
}

func (t *TimerController) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if err := t.publisher.Publish(ctx, events.NewSessionEvent(eventType, t.cfg.AttemptID, data)); err != nil {
		t.logger.Warn("Failed to publish timer event", "event_type", eventType, "error", err)
	}
}
