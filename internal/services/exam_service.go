package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/api"
	"github.com/SAP-F-2025/exam-session-client/internal/cache"
	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
)

const (
	saveIndicatorTTL = 2 * time.Second
	saveErrorTTL     = 3 * time.Second
)

type ExamConfig struct {
	AttemptID    string
	Layout       *models.ExamLayout
	SaveDebounce time.Duration
}

// ExamController owns the answer map, the part/question pointers and the
// debounced persistence of answers.
type ExamController struct {
	cfg       ExamConfig
	layout    *models.ExamLayout
	api       api.ExamAPI
	view      View
	publisher events.EventPublisher
	journal   cache.AnswerJournal
	submitter *Submitter
	logger    utils.Logger
	debouncer *Debouncer

	mu              sync.Mutex
	answers         models.AnswerMap
	currentPart     int
	currentQuestion int
}

func NewExamController(cfg ExamConfig, examAPI api.ExamAPI, view View, publisher events.EventPublisher, journal cache.AnswerJournal, submitter *Submitter, logger utils.Logger) *ExamController {
	first, _ := cfg.Layout.Part(1)
	return &ExamController{
		cfg:             cfg,
		layout:          cfg.Layout,
		api:             examAPI,
		view:            view,
		publisher:       publisher,
		journal:         journal,
		submitter:       submitter,
		logger:          logger.With("component", "exam"),
		debouncer:       NewDebouncer(cfg.SaveDebounce),
		answers:         make(models.AnswerMap),
		currentPart:     1,
		currentQuestion: first.Start,
	}
}

// Mount renders the first part, the navigator and the progress bar.
func (c *ExamController) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.layout.Parts {
		c.view.ShowPart(p.Part, p.Part == c.currentPart)
	}
	c.renderNavigatorLocked()
	c.view.SetCurrentQuestion(c.currentQuestion)
	c.view.SetProgress(c.progressLocked())
}

// HandleSelection records an answer picked on either UI surface, mirrors it
// onto the other one and schedules its save.
func (c *ExamController) HandleSelection(ctx context.Context, question int, answer string, source models.SelectionSource) error {
	if c.submitter.Locked() {
		return ErrExamLocked
	}
	if !c.layout.ValidQuestion(question) {
		return fmt.Errorf("%w: %d", ErrQuestionOutOfRange, question)
	}
	if answer == "" {
		return ErrEmptyAnswer
	}

	c.logger.DebugContext(ctx, "Answer selected", "question", question, "answer", answer, "source", source)

	c.mu.Lock()
	c.applyLocked(question, answer)
	c.view.SetProgress(c.progressLocked())
	c.mu.Unlock()

	if err := c.journal.Put(ctx, c.cfg.AttemptID, question, answer); err != nil {
		c.logger.WarnContext(ctx, "Failed to journal answer", "question", question, "error", err)
	}
	c.publish(ctx, events.EventAnswerSelected, events.AnswerEvent{QuestionNumber: question, Answer: answer, Source: source})

	c.debouncer.Schedule(question, func() {
		c.persist(context.Background(), question)
	})
	return nil
}

// applyLocked updates the map and both surfaces to the same value.
func (c *ExamController) applyLocked(question int, answer string) {
	c.answers[question] = answer
	c.view.SetContentChoice(question, answer)
	c.view.SetSheetChoice(question, answer)
	c.view.MarkBubbleAnswered(question)
}

// persist saves the latest value of one question.
func (c *ExamController) persist(ctx context.Context, question int) {
	c.mu.Lock()
	answer, ok := c.answers[question]
	c.mu.Unlock()
	if !ok {
		return
	}

	err := c.api.SaveAnswer(ctx, c.cfg.AttemptID, question, answer)
	if err != nil {
		c.logger.WarnContext(ctx, "Error saving answer", "question", question, "error", err)
		c.view.ShowNotice(models.Notice{
			ID:      "saveErrorIndicator",
			Level:   models.NoticeDanger,
			Message: "Save Failed",
			TTL:     saveErrorTTL,
		})
		c.publish(ctx, events.EventAnswerSaveFailed, events.AnswerEvent{QuestionNumber: question, Answer: answer, Error: err.Error()})
		return
	}

	if err := c.journal.Remove(ctx, c.cfg.AttemptID, question, answer); err != nil {
		c.logger.WarnContext(ctx, "Failed to clear journaled answer", "question", question, "error", err)
	}
	c.view.ShowNotice(models.Notice{
		ID:      "saveIndicator",
		Level:   models.NoticeSuccess,
		Message: "Saved",
		TTL:     saveIndicatorTTL,
	})
	c.publish(ctx, events.EventAnswerSaved, events.AnswerEvent{QuestionNumber: question, Answer: answer})
}

// Flush cancels pending debounce timers and saves every unsaved answer now,
// including ones whose earlier save failed.
func (c *ExamController) Flush(ctx context.Context) {
	questions := c.debouncer.Cancel()
	seen := make(map[int]bool, len(questions))
	for _, q := range questions {
		seen[q] = true
	}

	if pending, err := c.journal.Pending(ctx, c.cfg.AttemptID); err != nil {
		c.logger.WarnContext(ctx, "Failed to read answer journal", "error", err)
	} else {
		for q := range pending {
			if !seen[q] {
				seen[q] = true
				questions = append(questions, q)
			}
		}
	}

	for _, q := range questions {
		c.persist(ctx, q)
	}
	if len(questions) > 0 {
		c.logger.InfoContext(ctx, "Flushed pending answers", "count", len(questions))
	}
}

// ClearJournal drops every journaled answer of the attempt.
func (c *ExamController) ClearJournal(ctx context.Context) {
	if err := c.journal.Clear(ctx, c.cfg.AttemptID); err != nil {
		c.logger.WarnContext(ctx, "Failed to clear answer journal", "error", err)
	}
}

// LoadSavedAnswers fetches the saved exam state once and restores its answers.
// Answers that are still waiting to be saved locally keep their local value.
// Journaled answers left by an earlier run are restored and saved again.
func (c *ExamController) LoadSavedAnswers(ctx context.Context) (*models.ExamState, error) {
	state, err := c.api.GetExamState(ctx, c.cfg.AttemptID)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error loading saved answers", "error", err)
		return nil, err
	}

	pending, err := c.journal.Pending(ctx, c.cfg.AttemptID)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to read answer journal", "error", err)
		pending = nil
	}

	c.mu.Lock()
	restored := 0
	for q, a := range models.AnswerMapFromWire(state.Answers) {
		if !c.layout.ValidQuestion(q) {
			continue
		}
		if _, local := pending[q]; local || c.debouncer.Pending(q) {
			continue
		}
		c.applyLocked(q, a)
		restored++
	}
	var replay []int
	for q, a := range pending {
		if !c.layout.ValidQuestion(q) {
			continue
		}
		if !c.debouncer.Pending(q) {
			c.applyLocked(q, a)
			replay = append(replay, q)
		}
	}
	c.view.SetProgress(c.progressLocked())
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Restored saved answers", "restored", restored, "replayed", len(replay))
	for _, q := range replay {
		question := q
		c.debouncer.Schedule(question, func() {
			c.persist(context.Background(), question)
		})
	}
	return state, nil
}

// SwitchToPart hides the current part and shows part n, moving to its first question.
func (c *ExamController) SwitchToPart(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switchToPartLocked(n)
}

func (c *ExamController) switchToPartLocked(n int) error {
	part, ok := c.layout.Part(n)
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidPart, n)
	}

	c.view.ShowPart(c.currentPart, false)
	c.currentPart = n
	c.view.ShowPart(n, true)
	c.renderNavigatorLocked()

	c.currentQuestion = part.Start
	c.view.SetCurrentQuestion(part.Start)
	return nil
}

// NextPart moves forward one part; on the last part it does nothing.
func (c *ExamController) NextPart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPart < c.layout.PartCount() {
		c.switchToPartLocked(c.currentPart + 1)
	}
}

// PrevPart moves back one part; on the first part it does nothing.
func (c *ExamController) PrevPart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentPart > 1 {
		c.switchToPartLocked(c.currentPart - 1)
	}
}

// GoToQuestion makes q the current question, switching part when needed.
func (c *ExamController) GoToQuestion(q int) error {
	if !c.layout.ValidQuestion(q) {
		return fmt.Errorf("%w: %d", ErrQuestionOutOfRange, q)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if part := c.layout.PartOf(q); part != c.currentPart {
		if err := c.switchToPartLocked(part); err != nil {
			return err
		}
	}
	c.currentQuestion = q
	c.view.SetCurrentQuestion(q)
	return nil
}

// ObserveQuestion marks q current because it scrolled into view.
func (c *ExamController) ObserveQuestion(q int) error {
	if !c.layout.ValidQuestion(q) {
		return fmt.Errorf("%w: %d", ErrQuestionOutOfRange, q)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentQuestion = q
	c.view.SetCurrentQuestion(q)
	return nil
}

// SubmitConfirmation renders and returns the number of unanswered questions.
func (c *ExamController) SubmitConfirmation() int {
	c.mu.Lock()
	unanswered := c.layout.TotalQuestions - len(c.answers)
	c.mu.Unlock()

	c.view.SetUnansweredCount(unanswered)
	return unanswered
}

// ConfirmSubmit hands the attempt to the submitter. Pending answers are
// flushed by the submitter's hook before the request goes out.
func (c *ExamController) ConfirmSubmit(ctx context.Context) error {
	return c.submitter.Submit(ctx, false)
}

func (c *ExamController) Progress() models.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *ExamController) Answers() models.AnswerMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers.Clone()
}

func (c *ExamController) AnsweredCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.answers)
}

// Position returns the current part and question.
func (c *ExamController) Position() (part, question int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPart, c.currentQuestion
}

func (c *ExamController) Layout() *models.ExamLayout {
	return c.layout
}

func (c *ExamController) progressLocked() models.Progress {
	return models.NewProgress(len(c.answers), c.layout.TotalQuestions)
}

func (c *ExamController) renderNavigatorLocked() {
	part, _ := c.layout.Part(c.currentPart)
	c.view.SetNavigator(part.Name, c.currentPart == 1, c.currentPart == c.layout.PartCount())
}

func (c *ExamController) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if err := c.publisher.Publish(ctx, events.NewSessionEvent(eventType, c.cfg.AttemptID, data)); err != nil {
		c.logger.Warn("Failed to publish exam event", "event_type", eventType, "error", err)
	}
}
