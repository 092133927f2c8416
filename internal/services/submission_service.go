package services

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/exam-session-client/internal/api"
	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
)

// Submitter locks the page and submits the attempt, at most once per session.
type Submitter struct {
	api       api.ExamAPI
	view      View
	publisher events.EventPublisher
	logger    utils.Logger
	attemptID string

	mu           sync.Mutex
	locked       bool
	submitted    bool
	done         chan struct{}
	beforeSubmit func(ctx context.Context)
	afterSubmit  func(ctx context.Context)
	answered     func() int
}

func NewSubmitter(examAPI api.ExamAPI, view View, publisher events.EventPublisher, logger utils.Logger, attemptID string) *Submitter {
	return &Submitter{
		api:       examAPI,
		view:      view,
		publisher: publisher,
		logger:    logger.With("component", "submitter"),
		attemptID: attemptID,
		done:      make(chan struct{}),
	}
}

// BeforeSubmit registers a hook run after the page is locked and before the
// submission request, used to flush pending answers.
func (s *Submitter) BeforeSubmit(hook func(ctx context.Context)) {
	s.mu.Lock()
	s.beforeSubmit = hook
	s.mu.Unlock()
}

// AfterSubmit registers a hook run once the server accepted the submission.
func (s *Submitter) AfterSubmit(hook func(ctx context.Context)) {
	s.mu.Lock()
	s.afterSubmit = hook
	s.mu.Unlock()
}

// AnsweredCount registers the source of the answered count reported in events.
func (s *Submitter) AnsweredCount(fn func() int) {
	s.mu.Lock()
	s.answered = fn
	s.mu.Unlock()
}

// Lock disables every interactive control. Idempotent.
func (s *Submitter) Lock() {
	s.mu.Lock()
	already := s.locked
	s.locked = true
	s.mu.Unlock()

	if !already {
		s.view.DisableControls()
	}
}

// Finished records an attempt the server already closed: the page locks and
// later Submit calls return ErrAlreadySubmitted without reaching the server.
func (s *Submitter) Finished() {
	s.mu.Lock()
	s.submitted = true
	s.mu.Unlock()
	s.Lock()
}

// Locked reports whether answers may still change.
func (s *Submitter) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Submitted reports whether the submission request has been issued.
func (s *Submitter) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Done is closed once the submission request has been issued.
func (s *Submitter) Done() <-chan struct{} {
	return s.done
}

// Submit issues the submission request. Only the first call reaches the
// server; later calls return ErrAlreadySubmitted. A failed request is not
// retried.
func (s *Submitter) Submit(ctx context.Context, automatic bool) error {
	s.mu.Lock()
	if s.submitted {
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	s.submitted = true
	hook, after, answered := s.beforeSubmit, s.afterSubmit, s.answered
	s.mu.Unlock()

	s.Lock()
	if hook != nil {
		hook(ctx)
	}

	payload := events.ExamSubmittedEvent{Automatic: automatic}
	if answered != nil {
		payload.Answered = answered()
	}

	err := s.api.SubmitExam(ctx, s.attemptID)
	close(s.done)
	if err != nil {
		s.logger.LogError(err, "Exam submission failed", "attempt_id", s.attemptID, "automatic", automatic)
		payload.Error = err.Error()
		s.view.ShowNotice(models.Notice{
			ID:       "submitError",
			Level:    models.NoticeDanger,
			Title:    "Submission failed",
			Message:  "The exam could not be submitted. Please contact the proctor.",
			Blocking: true,
		})
	} else {
		s.logger.Info("Exam submitted", "attempt_id", s.attemptID, "automatic", automatic, "answered", payload.Answered)
		if after != nil {
			after(ctx)
		}
		s.view.ShowNotice(models.Notice{
			ID:       "submitted",
			Level:    models.NoticeSuccess,
			Title:    "Exam submitted",
			Message:  "Exam submitted successfully!",
			Blocking: true,
		})
	}

	if pubErr := s.publisher.Publish(ctx, events.NewSessionEvent(events.EventExamSubmitted, s.attemptID, payload)); pubErr != nil {
		s.logger.Warn("Failed to publish submission event", "error", pubErr)
	}
	return err
}
