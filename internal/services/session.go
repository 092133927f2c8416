package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/api"
	"github.com/SAP-F-2025/exam-session-client/internal/cache"
	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
)

type SessionConfig struct {
	AttemptID     string
	TimeRemaining int
	Layout        *models.ExamLayout
	Mode          models.ExamMode
	AutoAdvance   bool
	SaveDebounce  time.Duration
	TickInterval  time.Duration
	SyncInterval  time.Duration
	SubmitGrace   time.Duration
}

type Dependencies struct {
	API          api.ExamAPI
	View         View
	Publisher    events.EventPublisher
	Journal      cache.AnswerJournal
	Capabilities AudioCapabilities
	Logger       utils.Logger
}

// Session is one mounted exam page: the three controllers of an attempt and
// the submitter they share.
type Session struct {
	cfg       SessionConfig
	Timer     *TimerController
	Exam      *ExamController
	Audio     *AudioController
	Submitter *Submitter
	logger    utils.Logger
}

func NewSession(cfg SessionConfig, deps Dependencies) *Session {
	logger := deps.Logger.With("attempt_id", cfg.AttemptID)
	submitter := NewSubmitter(deps.API, deps.View, deps.Publisher, logger, cfg.AttemptID)

	exam := NewExamController(ExamConfig{
		AttemptID:    cfg.AttemptID,
		Layout:       cfg.Layout,
		SaveDebounce: cfg.SaveDebounce,
	}, deps.API, deps.View, deps.Publisher, deps.Journal, submitter, logger)

	timer := NewTimerController(TimerConfig{
		AttemptID:    cfg.AttemptID,
		Initial:      cfg.TimeRemaining,
		TickInterval: cfg.TickInterval,
		SyncInterval: cfg.SyncInterval,
		SubmitGrace:  cfg.SubmitGrace,
	}, deps.API, deps.View, deps.Publisher, submitter, logger)

	audio := NewAudioController(AudioConfig{
		AttemptID:    cfg.AttemptID,
		Layout:       cfg.Layout,
		Mode:         cfg.Mode,
		AutoAdvance:  cfg.AutoAdvance,
		AdvanceDelay: time.Second,
	}, deps.View, deps.Publisher, deps.Capabilities, exam, logger)

	submitter.BeforeSubmit(exam.Flush)
	submitter.AfterSubmit(exam.ClearJournal)
	submitter.AnsweredCount(exam.AnsweredCount)

	return &Session{
		cfg:       cfg,
		Timer:     timer,
		Exam:      exam,
		Audio:     audio,
		Submitter: submitter,
		logger:    logger,
	}
}

// Start mounts the page, restores saved answers and time, and checks audio support.
// A failed restore is logged and the session continues with local state.
func (s *Session) Start(ctx context.Context) {
	s.Exam.Mount()
	s.Audio.CheckSupport(ctx)

	if state, err := s.Exam.LoadSavedAnswers(ctx); err == nil {
		if state.Status != "" && state.Status != models.AttemptInProgress {
			s.logger.WarnContext(ctx, "Attempt is no longer in progress", "status", state.Status)
			s.Submitter.Finished()
			s.Timer.Stop()
		}
		s.Timer.Reconcile(ctx, state)
	}
	s.Timer.Mount(ctx)
}

// Run drives the countdown until ctx is done, time expires or the attempt is submitted.
func (s *Session) Run(ctx context.Context) error {
	return s.Timer.Run(ctx)
}

// Close stops audio and saves whatever is still pending.
func (s *Session) Close(ctx context.Context) {
	s.Audio.StopAll()
	s.Exam.Flush(ctx)
	s.logger.InfoContext(ctx, "Exam session closed")
}
