package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/exam-session-client/internal/cache"
	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
	"github.com/SAP-F-2025/exam-session-client/internal/page"
	"github.com/SAP-F-2025/exam-session-client/internal/utils"
)

// MockExamAPI is a testify mock of api.ExamAPI.
type MockExamAPI struct {
	mock.Mock
}

func (m *MockExamAPI) SaveAnswer(ctx context.Context, attemptID string, question int, answer string) error {
	args := m.Called(ctx, attemptID, question, answer)
	return args.Error(0)
}

func (m *MockExamAPI) GetExamState(ctx context.Context, attemptID string) (*models.ExamState, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamState), args.Error(1)
}

func (m *MockExamAPI) SubmitExam(ctx context.Context, attemptID string) error {
	args := m.Called(ctx, attemptID)
	return args.Error(0)
}

type savedAnswer struct {
	Question int
	Answer   string
}

// fakeExamAPI records saves so tests can wait on them without racing the mock.
type fakeExamAPI struct {
	mu       sync.Mutex
	saves    []savedAnswer
	saveErr  error
	state    *models.ExamState
	stateErr error
	submits  int
}

func (f *fakeExamAPI) SaveAnswer(ctx context.Context, attemptID string, question int, answer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, savedAnswer{Question: question, Answer: answer})
	return nil
}

func (f *fakeExamAPI) GetExamState(ctx context.Context, attemptID string) (*models.ExamState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.stateErr
}

func (f *fakeExamAPI) SubmitExam(ctx context.Context, attemptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	return nil
}

func (f *fakeExamAPI) Saves() []savedAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]savedAnswer(nil), f.saves...)
}

func (f *fakeExamAPI) SetSaveErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *fakeExamAPI) Submits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits
}

// fakePlayer is a Player whose position advances by one second per Play.
type fakePlayer struct {
	mu      sync.Mutex
	playing bool
	pos     time.Duration
	playErr error
	loadErr error
	// delay simulates fetching the asset before playback starts.
	delay time.Duration
}

func (p *fakePlayer) Load(ctx context.Context) error { return p.loadErr }

func (p *fakePlayer) Play(ctx context.Context) error {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = true
	p.pos += time.Second
	return nil
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *fakePlayer) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = 0
}

func (p *fakePlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.playing
}

func (p *fakePlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

type staticCaps map[string]bool

func (c staticCaps) CanPlayType(mimeType string) bool { return c[mimeType] }

type recordingNavigator struct {
	mu   sync.Mutex
	went []int
}

func (n *recordingNavigator) GoToQuestion(q int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.went = append(n.went, q)
	return nil
}

func (n *recordingNavigator) Went() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int(nil), n.went...)
}

const testAttemptID = "42"

type harness struct {
	api       *fakeExamAPI
	page      *page.Page
	publisher *events.MockEventPublisher
	journal   cache.AnswerJournal
	submitter *Submitter
	logger    utils.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := utils.NewNopLogger()
	h := &harness{
		api:       &fakeExamAPI{},
		page:      page.New(),
		publisher: events.NewMockEventPublisher(utils.ToSlogLogger(logger)),
		journal:   cache.NewMemoryJournal(),
		logger:    logger,
	}
	h.submitter = NewSubmitter(h.api, h.page, h.publisher, logger, testAttemptID)
	return h
}

func (h *harness) exam(debounce time.Duration) *ExamController {
	c := NewExamController(ExamConfig{
		AttemptID:    testAttemptID,
		Layout:       models.TOEICLayout(),
		SaveDebounce: debounce,
	}, h.api, h.page, h.publisher, h.journal, h.submitter, h.logger)
	h.submitter.BeforeSubmit(c.Flush)
	h.submitter.AnsweredCount(c.AnsweredCount)
	c.Mount()
	return c
}

func (h *harness) timer(initial int, grace time.Duration) *TimerController {
	return NewTimerController(TimerConfig{
		AttemptID:    testAttemptID,
		Initial:      initial,
		TickInterval: time.Hour,
		SyncInterval: time.Hour,
		SubmitGrace:  grace,
	}, h.api, h.page, h.publisher, h.submitter, h.logger)
}

func intPtr(n int) *int { return &n }
