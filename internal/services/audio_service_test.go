package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exam-session-client/internal/events"
	"github.com/SAP-F-2025/exam-session-client/internal/models"
)

func (h *harness) audio(mode models.ExamMode, nav Navigator, autoAdvance bool) *AudioController {
	return NewAudioController(AudioConfig{
		AttemptID:    testAttemptID,
		Layout:       models.TOEICLayout(),
		Mode:         mode,
		AutoAdvance:  autoAdvance,
		AdvanceDelay: 10 * time.Millisecond,
	}, h.page, h.publisher, staticCaps{"audio/mpeg": true}, nav, h.logger)
}

func TestAudioController_SingleNowPlaying(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModePractice, nil, false)
	p1, p2 := &fakePlayer{}, &fakePlayer{}
	a.Register(1, p1)
	a.Register(2, p2)

	require.NoError(t, a.Play(ctx, 1))
	require.NoError(t, a.Play(ctx, 2))

	assert.True(t, p1.Paused())
	assert.False(t, p2.Paused())
	assert.Equal(t, []int{2}, a.Playing())

	s := h.page.Snapshot()
	assert.Equal(t, models.AudioButtonReady, *s.Questions["question-1"].Audio)
	assert.Equal(t, models.AudioButtonPlaying, *s.Questions["question-2"].Audio)
}

func TestAudioController_ReplayPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("exam mode blocks replay", func(t *testing.T) {
		h := newHarness(t)
		a := h.audio(models.ModeExam, nil, false)
		p := &fakePlayer{}
		a.Register(5, p)

		require.NoError(t, a.Play(ctx, 5))
		require.NoError(t, a.Pause(5))

		err := a.Play(ctx, 5)
		assert.ErrorIs(t, err, ErrReplayNotAllowed)
		assert.True(t, p.Paused())

		notice, shown := h.page.Notice("replay-5")
		require.True(t, shown)
		assert.Equal(t, "Audio replay is not allowed in exam mode.", notice.Message)
		assert.Len(t, h.publisher.EventsOfType(events.EventAudioReplayBlocked), 1)
	})

	t.Run("practice mode allows replay", func(t *testing.T) {
		h := newHarness(t)
		a := h.audio(models.ModeExam, nil, false)
		a.SetExamMode(models.ModePractice)
		p := &fakePlayer{}
		a.Register(5, p)

		require.NoError(t, a.Play(ctx, 5))
		require.NoError(t, a.Pause(5))
		require.NoError(t, a.Play(ctx, 5))
		assert.False(t, p.Paused())
	})
}

func TestAudioController_UnknownQuestion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModeExam, nil, false)

	err := a.Play(ctx, 99)
	assert.ErrorIs(t, err, ErrAudioNotFound)
	assert.True(t, IsNotFound(err))
	assert.Empty(t, h.page.Snapshot().Notices)

	assert.ErrorIs(t, a.Pause(99), ErrAudioNotFound)
	assert.ErrorIs(t, a.Ended(99), ErrAudioNotFound)
}

func TestAudioController_PlayFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModeExam, nil, false)
	a.Register(3, &fakePlayer{playErr: errors.New("decode error")})

	assert.Error(t, a.Play(ctx, 3))

	notice, shown := h.page.Notice("audioError-3")
	require.True(t, shown)
	assert.Equal(t, models.NoticeDanger, notice.Level)
	assert.Equal(t, 3, notice.Question)
	assert.Empty(t, a.Playing())
	assert.Len(t, h.publisher.EventsOfType(events.EventAudioError), 1)
}

func TestAudioController_ConcurrentPlaysLeaveOneTrack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModePractice, nil, false)
	a.Register(1, &fakePlayer{delay: 50 * time.Millisecond})
	a.Register(2, &fakePlayer{delay: 50 * time.Millisecond})

	var wg sync.WaitGroup
	for _, q := range []int{1, 2} {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			assert.NoError(t, a.Play(ctx, q))
		}(q)
	}
	wg.Wait()

	assert.Len(t, a.Playing(), 1)
}

func TestAudioController_EndedPausesTrack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModeExam, nil, false)
	p := &fakePlayer{}
	a.Register(7, p)

	require.NoError(t, a.Play(ctx, 7))
	require.NoError(t, a.Ended(7))

	assert.True(t, p.Paused())
	assert.Empty(t, a.Playing())
	assert.Equal(t, models.AudioButtonReady, *h.page.Snapshot().Questions["question-7"].Audio)
	assert.ErrorIs(t, a.Play(ctx, 7), ErrReplayNotAllowed)
}

func TestAudioController_Load(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModeExam, nil, false)
	a.Register(1, &fakePlayer{})
	a.Register(2, &fakePlayer{loadErr: errors.New("404")})

	a.Preload(ctx)

	s := h.page.Snapshot()
	assert.Equal(t, models.AudioButtonReady, *s.Questions["question-1"].Audio)
	assert.Equal(t, models.AudioButtonReady, *s.Questions["question-2"].Audio)
	_, shown := h.page.Notice("audioError-2")
	assert.True(t, shown)
	_, shown = h.page.Notice("audioError-1")
	assert.False(t, shown)
}

func TestAudioController_EndedAutoAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("listening part advances", func(t *testing.T) {
		h := newHarness(t)
		nav := &recordingNavigator{}
		a := h.audio(models.ModeExam, nav, true)
		a.Register(7, &fakePlayer{})

		require.NoError(t, a.Play(ctx, 7))
		require.NoError(t, a.Ended(7))
		assert.Empty(t, a.Playing())

		assert.Eventually(t, func() bool {
			return len(nav.Went()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{8}, nav.Went())
	})

	t.Run("reading part does not advance", func(t *testing.T) {
		h := newHarness(t)
		nav := &recordingNavigator{}
		a := h.audio(models.ModeExam, nav, true)
		a.Register(120, &fakePlayer{})

		require.NoError(t, a.Ended(120))
		time.Sleep(30 * time.Millisecond)
		assert.Empty(t, nav.Went())
	})

	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t)
		nav := &recordingNavigator{}
		a := h.audio(models.ModeExam, nav, false)
		a.Register(7, &fakePlayer{})

		require.NoError(t, a.Ended(7))
		time.Sleep(30 * time.Millisecond)
		assert.Empty(t, nav.Went())
	})
}

func TestAudioController_ToggleSample(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModeExam, nil, false)

	assert.ErrorIs(t, a.ToggleSample(ctx), ErrSampleNotRegistered)

	sample, question := &fakePlayer{}, &fakePlayer{}
	a.RegisterSample(sample)
	a.Register(1, question)
	require.NoError(t, a.Play(ctx, 1))

	require.NoError(t, a.ToggleSample(ctx))
	assert.False(t, sample.Paused())
	assert.True(t, question.Paused())
	assert.Equal(t, models.SampleLabelStop, h.page.Snapshot().SampleAudio.Label)

	require.NoError(t, a.ToggleSample(ctx))
	assert.True(t, sample.Paused())
	assert.Zero(t, sample.Position())
	assert.Equal(t, models.SampleLabelPlay, h.page.Snapshot().SampleAudio.Label)
}

func TestAudioController_StopAll(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.audio(models.ModePractice, nil, false)
	sample, p := &fakePlayer{}, &fakePlayer{}
	a.RegisterSample(sample)
	a.Register(1, p)
	require.NoError(t, a.ToggleSample(ctx))

	a.StopAll()

	assert.True(t, sample.Paused())
	assert.True(t, p.Paused())
	assert.False(t, h.page.Snapshot().SampleAudio.Playing)
}

func TestAudioController_Support(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	supported := h.audio(models.ModeExam, nil, false)
	assert.True(t, supported.CheckSupport(ctx))
	_, shown := h.page.Notice("audioUnsupported")
	assert.False(t, shown)

	unsupported := NewAudioController(AudioConfig{AttemptID: testAttemptID, Layout: models.TOEICLayout()},
		h.page, h.publisher, staticCaps{"audio/ogg": true}, nil, h.logger)
	assert.False(t, unsupported.Supported())
	assert.False(t, unsupported.CheckSupport(ctx))
	_, shown = h.page.Notice("audioUnsupported")
	assert.True(t, shown)
}
